// Package scanner discovers the local files of a bulk upload and decides
// which relative paths pass the include and exclude filters of a tree
// transfer.
//
// Relative paths always use forward slashes, on every platform, so the same
// patterns apply to local files and remote entries alike.
package scanner
