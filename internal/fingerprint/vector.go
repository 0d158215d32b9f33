package fingerprint

// VectorLen is the fixed length of a flattened fingerprint vector. The
// layout below is part of the persisted format: changing the order or
// length invalidates every stored dna_vector.
const VectorLen = 25

// vectorMarks fixes the order in which punctuation densities appear in the
// vector.
var vectorMarks = []string{",", ";", ":", "—", "!", "?"}

// Vector flattens the numeric trait fields into the fixed-layout vector
// persisted as dna_vector and used for cosine similarity between users.
func (t *Traits) Vector() []float64 {
	v := make([]float64, 0, VectorLen)
	v = append(v,
		t.Lexical.VocabularyRichness,
		t.Lexical.AvgWordLength,
		t.Lexical.LexicalDiversity,
		t.Syntactic.AvgSentenceLength,
		t.Syntactic.SentenceLengthStdev,
		t.Syntactic.ClauseComplexity,
		t.Syntactic.ParagraphRhythm,
		t.Semantic.PositiveSentiment,
		t.Semantic.NegativeSentiment,
		t.Semantic.NeutralSentiment,
		t.Semantic.FormalityLevel,
		t.Semantic.Abstractness,
		t.Stylistic.TransitionRate,
		t.Stylistic.ActivePassiveRatio,
		t.Stylistic.ContractionRate,
		t.Stylistic.FirstPersonRate,
		t.Stylistic.IdiomRate,
	)
	for _, mark := range vectorMarks {
		v = append(v, t.Syntactic.PunctuationProfile[mark])
	}
	v = append(v, t.Consistency, t.Confidence)
	return v
}

// Stats builds the nested feature_stats document persisted alongside the
// vector. The store treats it as opaque JSON; the shape is validated by the
// embedded schema in internal/store.
func (t *Traits) Stats() map[string]any {
	punct := make(map[string]any, len(t.Syntactic.PunctuationProfile))
	for mark, density := range t.Syntactic.PunctuationProfile {
		punct[mark] = density
	}
	return map[string]any{
		"lexical": map[string]any{
			"vocabulary_richness": t.Lexical.VocabularyRichness,
			"avg_word_length":     t.Lexical.AvgWordLength,
			"lexical_diversity":   t.Lexical.LexicalDiversity,
			"preferred_words":     toAnySlice(t.Lexical.PreferredWords),
			"common_phrases":      toAnySlice(t.Lexical.CommonPhrases),
		},
		"syntactic": map[string]any{
			"avg_sentence_length":   t.Syntactic.AvgSentenceLength,
			"sentence_length_stdev": t.Syntactic.SentenceLengthStdev,
			"clause_complexity":     t.Syntactic.ClauseComplexity,
			"punctuation_profile":   punct,
			"paragraph_rhythm":      t.Syntactic.ParagraphRhythm,
		},
		"semantic": map[string]any{
			"formality_level": t.Semantic.FormalityLevel,
			"emotional_tone":  t.Semantic.EmotionalTone,
			"topics":          toAnySlice(t.Semantic.Topics),
			"abstractness":    t.Semantic.Abstractness,
		},
		"stylistic": map[string]any{
			"transition_rate":      t.Stylistic.TransitionRate,
			"active_passive_ratio": t.Stylistic.ActivePassiveRatio,
			"contraction_rate":     t.Stylistic.ContractionRate,
			"first_person_rate":    t.Stylistic.FirstPersonRate,
			"rhetorical_devices":   toAnySlice(t.Stylistic.RhetoricalDevices),
		},
		"consistency":  t.Consistency,
		"sample_count": t.SampleCount,
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
