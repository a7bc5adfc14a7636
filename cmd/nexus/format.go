package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

// Listing formats.
const (
	formatShort = "short"
	formatLong  = "long"
	formatJSON  = "json"
)

// printer writes listing entries in one of the listing formats.
type printer struct {
	format string
	start  string
	w      io.Writer

	entries []nexustypes.DirEntry
	err     error
}

func newPrinter(format, start string, w io.Writer) (*printer, error) {
	switch format {
	case formatShort, formatLong, formatJSON:
	default:
		return nil, usagef("unknown format %q", format)
	}
	return &printer{format: format, start: nexustypes.AsDirPath(start), w: w}, nil
}

// print is a nexustypes.Sink.
func (p *printer) print(e nexustypes.DirEntry) {
	if p.err != nil {
		return
	}
	switch p.format {
	case formatJSON:
		p.entries = append(p.entries, e)
	case formatLong:
		_, p.err = fmt.Fprintln(p.w, longLine(e))
	default:
		_, p.err = fmt.Fprintln(p.w, shortLine(p.start, e))
	}
}

// flush writes buffered output and reports the first write error.
func (p *printer) flush() error {
	if p.err != nil {
		return p.err
	}
	if p.format != formatJSON {
		return nil
	}
	if p.entries == nil {
		p.entries = []nexustypes.DirEntry{}
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.entries)
}

// shortLine prints the path relative to the listed directory, directories
// with a trailing slash.
func shortLine(start string, e nexustypes.DirEntry) string {
	rel, ok := strings.CutPrefix(e.RelativePath, start)
	if !ok || rel == "" {
		rel = e.Name
	}
	if e.IsDir() {
		return rel + "/"
	}
	return rel
}

// longLine prints the modification time, the size ("/" for directories) and
// the repository path.
func longLine(e nexustypes.DirEntry) string {
	size := "/"
	if !e.IsDir() {
		size = strconv.FormatInt(e.Size, 10)
	}
	return fmt.Sprintf("%s\t%10s\t%s", e.LastModified, size, strings.TrimPrefix(e.RelativePath, "/"))
}
