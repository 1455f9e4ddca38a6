package analysis

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	snowballeng "github.com/kljensen/snowball/english"
)

// Analyzer turns raw text into the terms the vectorizer counts.
type Analyzer struct {
	Stemming bool
}

func New(stemming bool) *Analyzer {
	return &Analyzer{Stemming: stemming}
}

// Tokenize yields runs of two or more word characters (letters, digits, underscore).
func Tokenize(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := -1
		for i, char := range content {
			if isWordChar(char) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				token := content[start:i]
				start = -1
				if utf8.RuneCountInString(token) > 1 && !yield(token) {
					return
				}
			}
		}
		if start >= 0 {
			token := content[start:]
			if utf8.RuneCountInString(token) > 1 {
				yield(token)
			}
		}
	}
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func FilterStopWords(seq iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for token := range seq {
			if snowballeng.IsStopWord(token) {
				continue
			}
			if !yield(token) {
				return
			}
		}
	}
}

func Stem(seq iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for token := range seq {
			if !yield(snowballeng.Stem(token, false)) {
				return
			}
		}
	}
}

// Terms - lowercase, tokenize, drop stop words, then stem if enabled.
func (a *Analyzer) Terms(content string) []string {
	tokens := FilterStopWords(Tokenize(strings.ToLower(content)))
	if a.Stemming {
		tokens = Stem(tokens)
	}

	var terms []string
	for token := range tokens {
		terms = append(terms, token)
	}
	return terms
}

// Counts - term frequencies for one document
func (a *Analyzer) Counts(content string) map[string]int {
	counts := make(map[string]int)
	for _, term := range a.Terms(content) {
		counts[term]++
	}
	return counts
}
