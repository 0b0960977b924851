// Package placeholder protects machine-readable tokens embedded in
// translatable text.
//
// Before a value is sent to a natural-language translator, every placeholder
// ({0}, {name}, ${user.name}, %s, %1$d, ...) is replaced with an opaque
// marker of the form __PH_<n>__. After translation the markers are swapped
// back for the original placeholder text, so the literal token survives
// unchanged even if the translator reorders the sentence around it.
package placeholder

import (
	"regexp"
	"strconv"
	"strings"
)

// pattern matches, in order of alternation:
//
//	{...}   word characters, digits and , . # : space
//	${...}  word characters, digits and . : -
//	%...    printf-style: optional n$ index, flags, width, precision, verb
var pattern = regexp.MustCompile(`\{[\w,.#: ]+\}|\$\{[\w.:-]+\}|%(?:\d+\$)?[-#+0,(]*\d*(?:\.\d+)?[a-zA-Z]`)

// markerPattern matches text shaped like a marker.
var markerPattern = regexp.MustCompile(`__PH_(\d+)__`)

// Token pairs a synthetic marker with the placeholder text it replaced.
type Token struct {
	Marker   string
	Original string
}

// Marker returns the marker text for counter value n.
func Marker(n int) string {
	return "__PH_" + strconv.Itoa(n) + "__"
}

// Mask replaces every placeholder in value with a unique marker. Marker
// numbers start at counter, or above any marker-shaped text already in
// value; the returned next is the counter value to pass when masking the
// following segment of the same entry, so markers never collide once
// segments are joined.
func Mask(value string, counter int) (masked string, tokens []Token, next int) {
	next = counter
	for _, m := range markerPattern.FindAllStringSubmatch(value, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= next {
			next = n + 1
		}
	}
	masked = pattern.ReplaceAllStringFunc(value, func(m string) string {
		tok := Token{Marker: Marker(next), Original: m}
		tokens = append(tokens, tok)
		next++
		return tok.Marker
	})
	return masked, tokens, next
}

// HasMarker reports whether value already contains marker-shaped text.
func HasMarker(value string) bool {
	return markerPattern.MatchString(value)
}

// Restore replaces every marker in text with its original placeholder.
// Markers the translator dropped are simply absent; markers with no
// matching token are left untouched.
func Restore(text string, tokens []Token) string {
	if len(tokens) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(tokens))
	for _, tok := range tokens {
		pairs = append(pairs, tok.Marker, tok.Original)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Find returns every placeholder in value, in order.
func Find(value string) []string {
	return pattern.FindAllString(value, -1)
}
