package extract

import (
	"strings"
	"unicode/utf8"
)

// Limits applied to extracted values, in runes.
const (
	MaxTitleRunes   = 500
	MaxContentRunes = 15000
)

// Document is the best-guess title and readable body text of a page.
type Document struct {
	Title string
	Text  string
}

// FromHTML runs the title matcher chain and the text extractor over the
// decoded page markup.
func FromHTML(input string) Document {
	return Document{
		Title: Title(input),
		Text:  Text(input),
	}
}

// truncate cuts s to at most n runes without splitting a multibyte sequence.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// normalizeTitle collapses whitespace runs to single spaces, trims, and caps
// the length.
func normalizeTitle(s string) string {
	return truncate(strings.Join(strings.Fields(s), " "), MaxTitleRunes)
}
