// Package reading turns recognized screen text into validated metric readings.
package reading

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// nonASCII drops every rune above U+007F. Invalid UTF-8 bytes decode to
// RuneError and are dropped with it.
var nonASCII = runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))

// Normalize strips everything OCR produced that is not ASCII. It never fails.
func Normalize(text string) string {
	out, _, err := transform.String(nonASCII, text)
	if err != nil {
		return asciiBytes(text)
	}
	return out
}

func asciiBytes(text string) string {
	b := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] <= unicode.MaxASCII {
			b = append(b, text[i])
		}
	}
	return string(b)
}
