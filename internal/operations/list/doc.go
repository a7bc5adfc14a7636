// Package list implements the single-directory listing used by the traversal
// engine, together with the partition and ordering rules applied to every
// listed directory.
package list
