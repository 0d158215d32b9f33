package stylometry

// Metrics is the output of one extraction pass over a single text: the four
// stylometric feature groups plus raw counts. Every rate and ratio field is
// in [0,1] unless noted otherwise.
type Metrics struct {
	Lexical   LexicalFeatures   `json:"lexical"`
	Syntactic SyntacticFeatures `json:"syntactic"`
	Semantic  SemanticFeatures  `json:"semantic"`
	Stylistic StylisticFeatures `json:"stylistic"`
	Metadata  Counts            `json:"metadata"`
}

// LexicalFeatures describes vocabulary and word-form habits.
type LexicalFeatures struct {
	// VocabularyRichness is the type-token ratio: unique words / total words.
	VocabularyRichness float64 `json:"vocabulary_richness"`

	// AvgWordLength and WordLengthStdev describe the word-length
	// distribution in characters.
	AvgWordLength   float64 `json:"avg_word_length"`
	WordLengthStdev float64 `json:"word_length_stdev"`

	// Length buckets: short <=3 chars, medium 4-7, long >7. Fractions of
	// all words.
	ShortWordRate  float64 `json:"short_word_rate"`
	MediumWordRate float64 `json:"medium_word_rate"`
	LongWordRate   float64 `json:"long_word_rate"`

	// TopWords holds the 20 most frequent words, most frequent first.
	TopWords []string `json:"top_words"`

	// CommonPhrases holds up to 10 of the most frequent 2-3 word n-grams
	// that occur more than once.
	CommonPhrases []string `json:"common_phrases"`

	// LexicalDiversity is uniqueWords / sqrt(totalWords). Unlike the rate
	// fields it is not bounded by 1.
	LexicalDiversity float64 `json:"lexical_diversity"`
}

// SyntacticFeatures describes sentence and paragraph construction.
type SyntacticFeatures struct {
	AvgSentenceLength   float64 `json:"avg_sentence_length"`
	SentenceLengthStdev float64 `json:"sentence_length_stdev"`

	// PunctuationDensity maps each tracked mark (, ; : — ! ?) to its mean
	// occurrences per sentence.
	PunctuationDensity map[string]float64 `json:"punctuation_density"`

	// ClauseComplexity is a clause-count proxy: mean comma count per
	// sentence plus one.
	ClauseComplexity float64 `json:"clause_complexity"`

	AvgParagraphLength   float64 `json:"avg_paragraph_length"`
	ParagraphLengthStdev float64 `json:"paragraph_length_stdev"`
}

// SemanticFeatures describes tone, register, and subject matter.
type SemanticFeatures struct {
	// Sentiment fractions over the word count; the three sum to 1.
	PositiveSentiment float64 `json:"positive_sentiment"`
	NegativeSentiment float64 `json:"negative_sentiment"`
	NeutralSentiment  float64 `json:"neutral_sentiment"`

	// Formality is (formal - contractions - informal) / words, shifted and
	// clamped to [0,1]. 0.5 is register-neutral.
	Formality float64 `json:"formality"`

	// Topics are up to 10 deduplicated capitalized words longer than three
	// characters, most frequent first.
	Topics []string `json:"topics"`

	// EmotionalTone is the majority-vote label: joy, sadness, anger, fear,
	// or neutral.
	EmotionalTone string `json:"emotional_tone"`

	// Abstractness is the fraction of words carrying an abstract suffix
	// (-ness, -ity, -tion, -ment, -ism, -ance, -ence).
	Abstractness float64 `json:"abstractness"`
}

// StylisticFeatures describes rhetorical and register habits.
type StylisticFeatures struct {
	// TransitionRate is transition-word occurrences per sentence.
	TransitionRate float64 `json:"transition_rate"`

	// ActivePassiveRatio is 1 minus the fraction of sentences matching the
	// passive-voice pattern; 1 means fully active voice.
	ActivePassiveRatio float64 `json:"active_passive_ratio"`

	ContractionRate float64 `json:"contraction_rate"`
	FirstPersonRate float64 `json:"first_person_rate"`

	// IdiomCount is the number of fixed-list idiom occurrences.
	IdiomCount int `json:"idiom_count"`

	// RhetoricalDevices flags detected devices: rhetorical_questions,
	// anaphora, parallelism.
	RhetoricalDevices []string `json:"rhetorical_devices"`
}

// Counts holds raw size metadata for the analyzed text.
type Counts struct {
	WordCount      int `json:"word_count"`
	SentenceCount  int `json:"sentence_count"`
	ParagraphCount int `json:"paragraph_count"`
	CharCount      int `json:"char_count"`
	UniqueWords    int `json:"unique_words"`
}
