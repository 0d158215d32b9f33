package similarity

import (
	"math"

	"voiceprint/internal/fingerprint"
	"voiceprint/internal/stylometry"
)

// Dimension names reported in AffectedDimensions and ChangedDimensions.
const (
	DimVocabulary     = "vocabulary"
	DimSentenceLength = "sentence_length"
	DimFormality      = "formality"
)

// Thresholds above which a dimension counts as affected.
const (
	vocabularyThreshold     = 0.1
	sentenceLengthThreshold = 5.0
	formalityThreshold      = 0.2
)

// Result is the outcome of a text-vs-text similarity check.
type Result struct {
	// Similarity is a 0-100 score.
	Similarity int `json:"similarity"`

	// AffectedDimensions names the dimensions whose delta between the two
	// texts exceeded its threshold.
	AffectedDimensions []string `json:"affected_dimensions"`
}

// VoiceSimilarity scores how much modified still sounds like original.
//
// Without a profile it diffs the two texts' extracted metrics directly for
// a fast score. With a profile, modified is treated as a one-sample
// temporary fingerprint and compared against the profile with CompareVoices.
// Either way the affected dimensions come from the direct metric deltas
// between the two texts.
func VoiceSimilarity(original, modified string, profile *fingerprint.Traits) (*Result, error) {
	origMetrics, err := stylometry.Extract(original)
	if err != nil {
		return nil, err
	}
	modMetrics, err := stylometry.Extract(modified)
	if err != nil {
		return nil, err
	}
	return VoiceSimilarityFromMetrics(origMetrics, modMetrics, profile), nil
}

// VoiceSimilarityFromMetrics is VoiceSimilarity over already-extracted
// metrics, for callers that run extraction elsewhere (e.g. on a bounded
// pool) and must not extract each text a second time.
func VoiceSimilarityFromMetrics(origMetrics, modMetrics *stylometry.Metrics, profile *fingerprint.Traits) *Result {
	vocabDelta := math.Abs(origMetrics.Lexical.VocabularyRichness - modMetrics.Lexical.VocabularyRichness)
	sentenceDelta := math.Abs(origMetrics.Syntactic.AvgSentenceLength - modMetrics.Syntactic.AvgSentenceLength)
	formalityDelta := math.Abs(origMetrics.Semantic.Formality - modMetrics.Semantic.Formality)

	var affected []string
	if vocabDelta > vocabularyThreshold {
		affected = append(affected, DimVocabulary)
	}
	if sentenceDelta > sentenceLengthThreshold {
		affected = append(affected, DimSentenceLength)
	}
	if formalityDelta > formalityThreshold {
		affected = append(affected, DimFormality)
	}

	var score int
	if profile != nil {
		temp := fingerprint.FromMetrics([]*stylometry.Metrics{modMetrics})
		score = CompareVoices(profile, temp)
	} else {
		composite := (clamp01(1-vocabDelta) +
			clamp01(1-sentenceDelta/sentenceLengthScale) +
			clamp01(1-formalityDelta)) / 3
		score = int(math.Round(composite * 100))
	}

	return &Result{Similarity: score, AffectedDimensions: affected}
}
