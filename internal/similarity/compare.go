// Package similarity scores how close two voices are: weighted composite
// similarity between fingerprints, text-vs-profile similarity with affected
// dimensions, longitudinal drift detection, and cosine similarity over
// persisted fingerprint vectors. Everything here is pure, synchronous, and
// deterministic.
package similarity

import (
	"math"

	"voiceprint/internal/fingerprint"
)

// Sub-similarity weights for CompareVoices. They sum to 1.
const (
	weightVocabulary  = 0.25
	weightSentence    = 0.20
	weightTone        = 0.20
	weightFormality   = 0.15
	weightPunctuation = 0.10
	weightPhrases     = 0.10
)

// sentenceLengthScale normalizes sentence-length deltas, in words.
const sentenceLengthScale = 50.0

// CompareVoices computes the weighted composite similarity between two
// fingerprints on a 0-100 scale. Identical fingerprints score 100.
func CompareVoices(a, b *fingerprint.Traits) int {
	score := weightVocabulary*jaccard(a.Lexical.PreferredWords, b.Lexical.PreferredWords) +
		weightSentence*sentenceStructure(a, b) +
		weightTone*toneMatch(a, b) +
		weightFormality*formalityCloseness(a, b) +
		weightPunctuation*punctuationCloseness(a, b) +
		weightPhrases*jaccard(a.Lexical.CommonPhrases, b.Lexical.CommonPhrases)

	return int(math.Round(score * 100))
}

// jaccard is set overlap over set union. Two empty sets are identical, not
// dissimilar: |∅ ∩ ∅| / |∅ ∪ ∅| is defined as 1 here so reflexivity holds
// for sparse fingerprints.
func jaccard(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func sentenceStructure(a, b *fingerprint.Traits) float64 {
	delta := math.Abs(a.Syntactic.AvgSentenceLength - b.Syntactic.AvgSentenceLength)
	return clamp01(1 - delta/sentenceLengthScale)
}

func toneMatch(a, b *fingerprint.Traits) float64 {
	if a.Semantic.EmotionalTone == b.Semantic.EmotionalTone {
		return 1
	}
	return 0.5
}

func formalityCloseness(a, b *fingerprint.Traits) float64 {
	return clamp01(1 - math.Abs(a.Semantic.FormalityLevel-b.Semantic.FormalityLevel))
}

// punctuationCloseness is 1 minus the mean absolute per-mark rate delta
// across the union of tracked marks.
func punctuationCloseness(a, b *fingerprint.Traits) float64 {
	marks := make(map[string]bool, len(a.Syntactic.PunctuationProfile)+len(b.Syntactic.PunctuationProfile))
	for m := range a.Syntactic.PunctuationProfile {
		marks[m] = true
	}
	for m := range b.Syntactic.PunctuationProfile {
		marks[m] = true
	}
	if len(marks) == 0 {
		return 1
	}

	total := 0.0
	for m := range marks {
		total += math.Abs(a.Syntactic.PunctuationProfile[m] - b.Syntactic.PunctuationProfile[m])
	}
	return clamp01(1 - total/float64(len(marks)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
