// Package propfile implements lossless reading and writing of Java
// .properties files.
//
// Unlike a key/value map, the File type keeps every physical line exactly as
// it was read. Lines are grouped into logical entries: a comment or blank
// line is its own entry, while a key/value declaration together with its
// backslash-continued follow-on lines forms one multi-line entry. Each line
// of an entry can be split into a Segment whose prefix and suffix are
// structural and whose value is the only translatable part.
//
// Serialising a File that has not been modified reproduces the input bytes,
// with the newline convention detected on input (CRLF if any CRLF was
// present, LF otherwise).
package propfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	newlineLF   = "\n"
	newlineCRLF = "\r\n"
)

// File represents a parsed .properties file.
type File struct {
	// Lines stores all physical lines in document order, without line
	// terminators. Replacing a line in place is how translations are applied.
	Lines []string
	// Newline is the line terminator used by Marshal.
	Newline string
	// Entries partitions Lines into logical records.
	Entries []Entry
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .properties file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data), nil
}

// Parse parses .properties content from a byte slice. Parsing never fails:
// lines without key/value structure are kept as non-translatable entries.
func Parse(data []byte) *File {
	lines, newline := SplitLines(string(data))
	return &File{
		Lines:   lines,
		Newline: newline,
		Entries: BuildEntries(lines),
	}
}

// SplitLines splits text into physical lines and reports the newline
// convention to use when joining them back.
func SplitLines(text string) ([]string, string) {
	newline := newlineLF
	if strings.Contains(text, newlineCRLF) {
		newline = newlineCRLF
	}

	lines := strings.Split(text, "\n")
	if newline == newlineCRLF {
		for i, ln := range lines {
			lines[i] = strings.TrimSuffix(ln, "\r")
		}
	}
	return lines, newline
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Segments parses the lines of entry e. ok is false when the entry is a
// comment, a blank line, or its first line has no key/value structure.
func (f *File) Segments(e Entry) (segs []Segment, ok bool) {
	first := f.Lines[e.First()]
	if IsCommentOrBlank(first) {
		return nil, false
	}
	seg, ok := ParseFirstLine(first)
	if !ok {
		return nil, false
	}

	segs = make([]Segment, 0, len(e.Indexes))
	segs = append(segs, seg)
	for _, idx := range e.Indexes[1:] {
		segs = append(segs, ParseContinuationLine(f.Lines[idx]))
	}
	return segs, true
}

// Key returns the logical key of entry e, or "" for comments and blanks.
func (f *File) Key(e Entry) string {
	first := f.Lines[e.First()]
	if IsCommentOrBlank(first) {
		return ""
	}
	return KeyOf(first)
}

// Keys returns all entry keys in document order.
func (f *File) Keys() []string {
	var keys []string
	for _, e := range f.Entries {
		if k := f.Key(e); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Value returns the logical (unescaped) value of entry e, with the values
// of continuation lines concatenated.
func (f *File) Value(e Entry) (string, bool) {
	segs, ok := f.Segments(e)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(Unescape(s.Value))
	}
	return b.String(), true
}

// Stats summarises the structure of the file.
type Stats struct {
	Lines     int
	Entries   int
	KeyValues int
	Multiline int
	Comments  int
	Blank     int
}

// Stats returns structural counts for this file.
func (f *File) Stats() Stats {
	st := Stats{Lines: len(f.Lines), Entries: len(f.Entries)}
	for _, e := range f.Entries {
		first := strings.TrimSpace(f.Lines[e.First()])
		switch {
		case first == "":
			st.Blank++
		case first[0] == '#' || first[0] == '!':
			st.Comments++
		default:
			if _, ok := ParseFirstLine(f.Lines[e.First()]); ok {
				st.KeyValues++
				if e.Multiline() {
					st.Multiline++
				}
			}
		}
	}
	return st
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serialises the file back to .properties format.
func (f *File) Marshal() []byte {
	newline := f.Newline
	if newline == "" {
		newline = newlineLF
	}
	return []byte(strings.Join(f.Lines, newline))
}

// WriteFile serialises and writes to path, creating parent directories
// with 0755 permissions.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, f.Marshal(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
