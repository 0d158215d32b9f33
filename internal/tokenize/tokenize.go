// Package tokenize splits raw text into words, sentences, and paragraphs.
//
// All functions are pure and deterministic: the same input text always
// produces the same token slices. No normalization beyond case folding is
// performed; callers that need lowercase tokens ask for them explicitly.
package tokenize

import (
	"regexp"
	"strings"
)

var (
	wordRe      = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// Words returns every word token in text, preserving original case.
// A word is a run of letters with an optional internal apostrophe
// (so contractions like "don't" are a single token).
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// LowerWords returns Words(text) folded to lowercase.
func LowerWords(text string) []string {
	words := Words(text)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

// Sentences splits text into sentences on terminal punctuation (.!?).
// Trailing unterminated text counts as a final sentence. Empty and
// whitespace-only fragments are dropped.
func Sentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// Paragraphs splits text on blank lines. Whitespace-only paragraphs are
// dropped.
func Paragraphs(text string) []string {
	raw := paragraphRe.Split(text, -1)
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// WordCount returns the number of word tokens in text.
func WordCount(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}
