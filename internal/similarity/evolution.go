package similarity

import (
	"math"

	"voiceprint/internal/fingerprint"
)

// Trend labels for voice evolution.
const (
	TrendStable   = "stable"
	TrendEvolving = "evolving"
	TrendShifting = "shifting"
)

// Trend classification bounds on the vocabulary-richness delta.
const (
	stableBound   = 0.05
	evolvingBound = 0.15
)

// Evolution describes how a voice has drifted between an older and a newer
// set of writing samples. It is derived on demand and never persisted.
type Evolution struct {
	// DriftScore is 100 minus the composite similarity of the two
	// fingerprints: 0 means unchanged, 100 means unrecognizable.
	DriftScore int `json:"drift_score"`

	// ChangedDimensions names dimensions whose delta between the two
	// fingerprints exceeded its threshold.
	ChangedDimensions []string `json:"changed_dimensions"`

	// Trend classifies the drift: stable, evolving, or shifting.
	Trend string `json:"trend"`

	// Recommendations are static guidance strings keyed off the changed
	// dimensions.
	Recommendations []string `json:"recommendations"`
}

var dimensionAdvice = map[string]string{
	DimVocabulary:     "Vocabulary habits have shifted; refresh the voice profile with recent samples so scoring tracks current word choice.",
	DimSentenceLength: "Sentence rhythm has changed; review recent drafts to confirm the new cadence is intentional.",
	DimFormality:      "Register has moved; re-check that the formality of recent writing matches the intended audience.",
}

// DetectEvolution builds a fingerprint from each sample set and measures
// the drift between them. Both sets need at least three samples.
func DetectEvolution(oldSamples, newSamples []string) (*Evolution, error) {
	oldPrint, err := fingerprint.New(oldSamples)
	if err != nil {
		return nil, err
	}
	newPrint, err := fingerprint.New(newSamples)
	if err != nil {
		return nil, err
	}
	return CompareEvolution(oldPrint, newPrint), nil
}

// CompareEvolution measures drift between two already-built fingerprints.
func CompareEvolution(oldPrint, newPrint *fingerprint.Traits) *Evolution {
	drift := 100 - CompareVoices(oldPrint, newPrint)

	vocabDelta := math.Abs(oldPrint.Lexical.VocabularyRichness - newPrint.Lexical.VocabularyRichness)
	sentenceDelta := math.Abs(oldPrint.Syntactic.AvgSentenceLength - newPrint.Syntactic.AvgSentenceLength)
	formalityDelta := math.Abs(oldPrint.Semantic.FormalityLevel - newPrint.Semantic.FormalityLevel)

	var changed []string
	if vocabDelta > vocabularyThreshold {
		changed = append(changed, DimVocabulary)
	}
	if sentenceDelta > sentenceLengthThreshold {
		changed = append(changed, DimSentenceLength)
	}
	if formalityDelta > formalityThreshold {
		changed = append(changed, DimFormality)
	}

	trend := TrendShifting
	switch {
	case vocabDelta < stableBound:
		trend = TrendStable
	case vocabDelta < evolvingBound:
		trend = TrendEvolving
	}

	var recommendations []string
	for _, dim := range changed {
		if advice, ok := dimensionAdvice[dim]; ok {
			recommendations = append(recommendations, advice)
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Voice is consistent with the earlier samples; no action needed.")
	}

	return &Evolution{
		DriftScore:        drift,
		ChangedDimensions: changed,
		Trend:             trend,
		Recommendations:   recommendations,
	}
}
