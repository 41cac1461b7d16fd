package recommend

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits tag strings into lowercase terms. A Tokenizer is not safe
// for concurrent use because the underlying caser keeps state.
type Tokenizer struct {
	lower cases.Caser
	stop  StopWords
}

// NewTokenizer returns a Tokenizer dropping the given stop words.
func NewTokenizer(stop StopWords) *Tokenizer {
	return &Tokenizer{
		lower: cases.Lower(language.Und),
		stop:  stop,
	}
}

// Tokenize returns the terms of text in order of appearance, duplicates kept.
// A term is a run of at least two letters, digits or underscores.
func (t *Tokenizer) Tokenize(text string) []string {
	text = t.lower.String(norm.NFKC.String(text))

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_')
	})

	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 || t.stop.Contains(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
