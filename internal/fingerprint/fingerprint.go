// Package fingerprint aggregates per-sample stylometric metrics into one
// per-user voice fingerprint ("voice DNA") with confidence and consistency
// scores, and owns the flattening of a fingerprint into the persisted
// numeric vector and feature-stats document.
package fingerprint

import (
	"errors"
	"math"
	"sort"

	"voiceprint/internal/stylometry"
)

const (
	// MinSamples is the minimum number of writing samples required to
	// build a fingerprint.
	MinSamples = 3

	// OptimalSamples is the sample count beyond which confidence gains
	// flatten.
	OptimalSamples = 5
)

// ErrInsufficientSamples is returned when fewer than MinSamples samples are
// supplied.
var ErrInsufficientSamples = errors.New("insufficient samples for fingerprint")

// Traits is the aggregated voice fingerprint: one signature per stylometric
// feature group plus overall consistency and confidence, both in [0,1].
type Traits struct {
	Lexical   LexicalSignature   `json:"lexical"`
	Syntactic SyntacticSignature `json:"syntactic"`
	Semantic  SemanticSignature  `json:"semantic"`
	Stylistic StylisticSignature `json:"stylistic"`

	// Consistency measures how stable vocabulary richness is across the
	// samples: 1 - coefficient of variation, floored at 0.
	Consistency float64 `json:"consistency"`

	// Confidence combines consistency with sample volume:
	// consistency*0.7 + min(1, samples/OptimalSamples)*0.3.
	Confidence float64 `json:"confidence"`

	SampleCount int `json:"sample_count"`
}

// LexicalSignature is the aggregated word-choice profile.
type LexicalSignature struct {
	VocabularyRichness float64  `json:"vocabulary_richness"`
	AvgWordLength      float64  `json:"avg_word_length"`
	LexicalDiversity   float64  `json:"lexical_diversity"`
	PreferredWords     []string `json:"preferred_words"`
	CommonPhrases      []string `json:"common_phrases"`
}

// SyntacticSignature is the aggregated sentence-construction profile.
type SyntacticSignature struct {
	AvgSentenceLength   float64            `json:"avg_sentence_length"`
	SentenceLengthStdev float64            `json:"sentence_length_stdev"`
	ClauseComplexity    float64            `json:"clause_complexity"`
	PunctuationProfile  map[string]float64 `json:"punctuation_profile"`
	ParagraphRhythm     float64            `json:"paragraph_rhythm"`
}

// SemanticSignature is the aggregated tone and register profile.
type SemanticSignature struct {
	PositiveSentiment float64  `json:"positive_sentiment"`
	NegativeSentiment float64  `json:"negative_sentiment"`
	NeutralSentiment  float64  `json:"neutral_sentiment"`
	FormalityLevel    float64  `json:"formality_level"`
	EmotionalTone     string   `json:"emotional_tone"`
	Topics            []string `json:"topics"`
	Abstractness      float64  `json:"abstractness"`
}

// StylisticSignature is the aggregated rhetorical-habit profile.
type StylisticSignature struct {
	TransitionRate     float64  `json:"transition_rate"`
	ActivePassiveRatio float64  `json:"active_passive_ratio"`
	ContractionRate    float64  `json:"contraction_rate"`
	FirstPersonRate    float64  `json:"first_person_rate"`
	IdiomRate          float64  `json:"idiom_rate"`
	RhetoricalDevices  []string `json:"rhetorical_devices"`
}

// New extracts metrics from each sample and aggregates them into a Traits
// value. It fails with ErrInsufficientSamples below MinSamples and
// propagates extraction errors (a too-short sample fails the whole
// fingerprint).
func New(samples []string) (*Traits, error) {
	if len(samples) < MinSamples {
		return nil, ErrInsufficientSamples
	}

	metrics := make([]*stylometry.Metrics, len(samples))
	for i, sample := range samples {
		m, err := stylometry.Extract(sample)
		if err != nil {
			return nil, err
		}
		metrics[i] = m
	}
	return FromMetrics(metrics), nil
}

// FromMetrics aggregates already-extracted metrics into a Traits value
// without the minimum-sample guard. Numeric fields are element-wise means
// across samples; word and phrase lists are merged by cross-sample
// frequency; the emotional tone is a majority vote.
func FromMetrics(metrics []*stylometry.Metrics) *Traits {
	n := len(metrics)
	if n == 0 {
		return &Traits{}
	}

	t := &Traits{SampleCount: n}

	richness := make([]float64, n)
	for i, m := range metrics {
		richness[i] = m.Lexical.VocabularyRichness
	}

	t.Lexical = LexicalSignature{
		VocabularyRichness: meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Lexical.VocabularyRichness }),
		AvgWordLength:      meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Lexical.AvgWordLength }),
		LexicalDiversity:   meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Lexical.LexicalDiversity }),
		PreferredWords:     mergeLists(metrics, 20, func(m *stylometry.Metrics) []string { return m.Lexical.TopWords }),
		CommonPhrases:      mergeLists(metrics, 10, func(m *stylometry.Metrics) []string { return m.Lexical.CommonPhrases }),
	}

	t.Syntactic = SyntacticSignature{
		AvgSentenceLength:   meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Syntactic.AvgSentenceLength }),
		SentenceLengthStdev: meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Syntactic.SentenceLengthStdev }),
		ClauseComplexity:    meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Syntactic.ClauseComplexity }),
		PunctuationProfile:  meanPunctuation(metrics),
		ParagraphRhythm:     meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Syntactic.AvgParagraphLength }),
	}

	t.Semantic = SemanticSignature{
		PositiveSentiment: meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Semantic.PositiveSentiment }),
		NegativeSentiment: meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Semantic.NegativeSentiment }),
		NeutralSentiment:  meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Semantic.NeutralSentiment }),
		FormalityLevel:    meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Semantic.Formality }),
		EmotionalTone:     majorityTone(metrics),
		Topics:            mergeLists(metrics, 10, func(m *stylometry.Metrics) []string { return m.Semantic.Topics }),
		Abstractness:      meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Semantic.Abstractness }),
	}

	t.Stylistic = StylisticSignature{
		TransitionRate:     meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Stylistic.TransitionRate }),
		ActivePassiveRatio: meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Stylistic.ActivePassiveRatio }),
		ContractionRate:    meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Stylistic.ContractionRate }),
		FirstPersonRate:    meanOf(metrics, func(m *stylometry.Metrics) float64 { return m.Stylistic.FirstPersonRate }),
		IdiomRate:          meanOf(metrics, func(m *stylometry.Metrics) float64 { return float64(m.Stylistic.IdiomCount) }),
		RhetoricalDevices:  unionDevices(metrics),
	}

	t.Consistency = consistency(richness)
	t.Confidence = confidence(t.Consistency, n)

	return t
}

// consistency is 1 minus the coefficient of variation of vocabulary
// richness across samples, floored at 0.
func consistency(richness []float64) float64 {
	m := meanFloat(richness)
	if m == 0 {
		return 0
	}
	cv := stdevFloat(richness) / m
	// The mean/stdev round-trip leaves a sub-epsilon residue on identical
	// samples; that is float noise, not variation.
	if cv < 1e-9 {
		return 1
	}
	if cv > 1 {
		return 0
	}
	return 1 - cv
}

// confidence blends consistency (70%) with sample volume (30%), where
// volume saturates at OptimalSamples.
func confidence(consistency float64, sampleCount int) float64 {
	volume := float64(sampleCount) / float64(OptimalSamples)
	if volume > 1 {
		volume = 1
	}
	return consistency*0.7 + volume*0.3
}

func meanOf(metrics []*stylometry.Metrics, field func(*stylometry.Metrics) float64) float64 {
	sum := 0.0
	for _, m := range metrics {
		sum += field(m)
	}
	return sum / float64(len(metrics))
}

func meanPunctuation(metrics []*stylometry.Metrics) map[string]float64 {
	profile := make(map[string]float64)
	for _, m := range metrics {
		for mark, density := range m.Syntactic.PunctuationDensity {
			profile[mark] += density
		}
	}
	for mark := range profile {
		profile[mark] /= float64(len(metrics))
	}
	return profile
}

// mergeLists ranks entries by how many samples list them, breaking ties by
// list position and then alphabetically, and keeps the top limit entries.
func mergeLists(metrics []*stylometry.Metrics, limit int, field func(*stylometry.Metrics) []string) []string {
	count := make(map[string]int)
	bestRank := make(map[string]int)
	for _, m := range metrics {
		for rank, entry := range field(m) {
			count[entry]++
			if prev, ok := bestRank[entry]; !ok || rank < prev {
				bestRank[entry] = rank
			}
		}
	}

	entries := make([]string, 0, len(count))
	for entry := range count {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if count[a] != count[b] {
			return count[a] > count[b]
		}
		if bestRank[a] != bestRank[b] {
			return bestRank[a] < bestRank[b]
		}
		return a < b
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func majorityTone(metrics []*stylometry.Metrics) string {
	count := make(map[string]int)
	order := make([]string, 0, len(metrics))
	for _, m := range metrics {
		tone := m.Semantic.EmotionalTone
		if count[tone] == 0 {
			order = append(order, tone)
		}
		count[tone]++
	}
	best := "neutral"
	bestCount := 0
	for _, tone := range order {
		if count[tone] > bestCount {
			best = tone
			bestCount = count[tone]
		}
	}
	return best
}

func unionDevices(metrics []*stylometry.Metrics) []string {
	seen := make(map[string]bool)
	for _, m := range metrics {
		for _, d := range m.Stylistic.RhetoricalDevices {
			seen[d] = true
		}
	}
	devices := make([]string, 0, len(seen))
	for d := range seen {
		devices = append(devices, d)
	}
	sort.Strings(devices)
	return devices
}

func meanFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdevFloat(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := meanFloat(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
