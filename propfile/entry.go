package propfile

import "strings"

// Entry is one logical record: the indexes of the physical lines it spans,
// in ascending order.
type Entry struct {
	Indexes []int
}

// First returns the index of the entry's first line.
func (e Entry) First() int {
	return e.Indexes[0]
}

// Multiline reports whether the entry spans continuation lines.
func (e Entry) Multiline() bool {
	return len(e.Indexes) > 1
}

// LineHasContinuation reports whether the line ends with an unescaped
// backslash, ignoring trailing whitespace.
func LineHasContinuation(line string) bool {
	trimmed := strings.TrimRight(line, " \t\f")
	return countTrailingBackslashes(trimmed)%2 == 1
}

// IsCommentOrBlank reports whether the line is empty or a full-line comment.
func IsCommentOrBlank(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || trimmed[0] == '#' || trimmed[0] == '!'
}

// BuildEntries groups physical lines into logical entries. The result
// partitions the line indexes with no gaps or overlaps, in order.
func BuildEntries(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if IsCommentOrBlank(lines[i]) {
			entries = append(entries, Entry{Indexes: []int{i}})
			continue
		}

		indexes := []int{i}
		for LineHasContinuation(lines[i]) && i+1 < len(lines) {
			i++
			indexes = append(indexes, i)
		}
		entries = append(entries, Entry{Indexes: indexes})
	}
	return entries
}
