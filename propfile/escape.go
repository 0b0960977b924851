package propfile

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unescape converts an on-disk value into its logical string.
//
// Malformed sequences are never rejected: a "\u" that is not followed by
// four hex digits, and a trailing lone backslash, are emitted literally.
func Unescape(value string) string {
	if strings.IndexByte(value, '\\') < 0 {
		return value
	}

	var b strings.Builder
	b.Grow(len(value))

	// pending holds a high surrogate waiting for its low half.
	var pending rune = -1
	flush := func() {
		if pending >= 0 {
			b.WriteRune(utf8.RuneError)
			pending = -1
		}
	}

	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' {
			flush()
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(value) {
			flush()
			b.WriteByte('\\')
			break
		}

		next := value[i+1]
		if next == 'u' {
			if r, ok := parseHex4(value, i+2); ok {
				i += 5
				switch {
				case utf16.IsSurrogate(r) && r < 0xDC00:
					flush()
					pending = r
				case utf16.IsSurrogate(r):
					if pending >= 0 {
						b.WriteRune(utf16.DecodeRune(pending, r))
						pending = -1
					} else {
						b.WriteRune(utf8.RuneError)
					}
				default:
					flush()
					b.WriteRune(r)
				}
				continue
			}
			flush()
			b.WriteString(`\u`)
			i++
			continue
		}

		flush()
		switch next {
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		default:
			b.WriteByte(next)
		}
		i++
	}
	flush()

	return b.String()
}

func parseHex4(s string, at int) (rune, bool) {
	if at+4 > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(s[at : at+4]) {
		var d byte
		switch {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(d)
	}
	return r, true
}

const hexDigits = "0123456789abcdef"

// Escape converts a logical string into its on-disk form. The structural
// characters = : # ! are always escaped so an escaped value can never be
// re-read as containing a separator or a comment marker.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\\':
			b.WriteString(`\\`)
		case '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r > 0x7E {
				if r > 0xFFFF {
					hi, lo := utf16.EncodeRune(r)
					writeUnicodeEscape(&b, hi)
					writeUnicodeEscape(&b, lo)
				} else {
					writeUnicodeEscape(&b, r)
				}
				continue
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xF])
	b.WriteByte(hexDigits[(r>>8)&0xF])
	b.WriteByte(hexDigits[(r>>4)&0xF])
	b.WriteByte(hexDigits[r&0xF])
}
