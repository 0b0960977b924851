package propfile

import "strings"

// Segment is one physical line's contribution to an entry. Prefix and
// Suffix are copied verbatim to the output; only Value (still in on-disk
// escaped form) is eligible for translation.
//
// For every parsed line, Prefix+Value+Suffix reproduces the line exactly.
type Segment struct {
	Prefix string
	Value  string
	Suffix string
}

// String reassembles the physical line.
func (s Segment) String() string {
	return s.Prefix + s.Value + s.Suffix
}

// Continues reports whether the segment ends with a continuation marker.
func (s Segment) Continues() bool {
	return strings.HasPrefix(s.Suffix, `\`)
}

// isSpace reports whether c is separator-able whitespace in a .properties line.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f'
}

// findSeparatorIndex locates the key/value separator. Unescaped '=' or ':'
// wins; otherwise the first unescaped whitespace after the key starts. It
// returns -1 when the line has no key/value structure.
func findSeparatorIndex(line string) (idx int, whitespace bool) {
	escaped := false
	seenNonSpace := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			seenNonSpace = true
			continue
		}
		if !seenNonSpace && isSpace(c) {
			continue
		}
		if c == '=' || c == ':' {
			return i, false
		}
		seenNonSpace = true
	}

	escaped = false
	seenNonSpace = false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			seenNonSpace = true
			continue
		}
		if isSpace(c) {
			if seenNonSpace {
				return i, true
			}
			continue
		}
		seenNonSpace = true
	}

	return -1, false
}

// skipSpace returns the index of the first non-whitespace byte at or after i.
func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

// ParseFirstLine splits the first line of an entry into key prefix, value
// and suffix. ok is false when no separator can be found; such a line is not
// translatable.
func ParseFirstLine(line string) (seg Segment, ok bool) {
	idx, _ := findSeparatorIndex(line)
	if idx < 0 {
		return Segment{}, false
	}
	start := skipSpace(line, idx+1)
	value, suffix := extractValueAndSuffix(line[start:])
	return Segment{Prefix: line[:start], Value: value, Suffix: suffix}, true
}

// ParseContinuationLine splits a continuation line. Continuation lines carry
// no key; their leading indentation becomes the prefix.
func ParseContinuationLine(line string) Segment {
	start := skipSpace(line, 0)
	value, suffix := extractValueAndSuffix(line[start:])
	return Segment{Prefix: line[:start], Value: value, Suffix: suffix}
}

// extractValueAndSuffix separates the value payload from trailing
// whitespace, the continuation marker and an inline comment.
func extractValueAndSuffix(rest string) (value, suffix string) {
	content, comment := rest, ""
	if i := inlineCommentIndex(rest); i >= 0 {
		content, comment = rest[:i], rest[i:]
	}

	body := strings.TrimRight(content, " \t\f")
	trailing := content[len(body):]

	if countTrailingBackslashes(body)%2 == 1 {
		return body[:len(body)-1], `\` + trailing + comment
	}
	return body, trailing + comment
}

// inlineCommentIndex returns the start of an unescaped '#' or '!' that is
// either the first byte or preceded by whitespace, or -1.
func inlineCommentIndex(s string) int {
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if (c == '#' || c == '!') && (i == 0 || isSpace(s[i-1])) {
			return i
		}
	}
	return -1
}

func countTrailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

// KeyOf returns the logical key of a key/value line, or "" when the line has
// no key/value structure.
func KeyOf(line string) string {
	idx, _ := findSeparatorIndex(line)
	if idx < 0 {
		return ""
	}
	return Unescape(strings.Trim(line[:idx], " \t\f"))
}
