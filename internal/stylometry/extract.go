// Package stylometry extracts quantitative writing-style features from raw
// text. All detectors are regex and keyword heuristics with fixed lexicons;
// extraction is deterministic given identical input.
package stylometry

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"voiceprint/internal/tokenize"
)

// MinSampleWords is the minimum word count for a valid extraction.
const MinSampleWords = 50

// ErrSampleTooShort is returned when the trimmed text has fewer than
// MinSampleWords words.
var ErrSampleTooShort = errors.New("sample too short for stylometric analysis")

const (
	topWordLimit = 20
	phraseLimit  = 10
	topicLimit   = 10
)

// punctuationMarks are the marks tracked for per-sentence density.
var punctuationMarks = []string{",", ";", ":", "—", "!", "?"}

var (
	passiveRe     = regexp.MustCompile(`(?i)\b(am|is|are|was|were|be|been|being)\s+(\w+ed|born|known|given|taken|seen|made|done|found|told|shown|held|kept|left|written)\b`)
	contractionRe = regexp.MustCompile(`\b[A-Za-z]+'[A-Za-z]+\b`)
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-z]{3,}\b`)
	abstractRe    = regexp.MustCompile(`(?i)(ness|ity|tion|ment|ism|ance|ence)$`)
)

// Extract computes the full stylometric feature set for a single text.
// It fails with ErrSampleTooShort when the trimmed text has fewer than 50
// words.
func Extract(text string) (*Metrics, error) {
	trimmed := strings.TrimSpace(text)
	words := tokenize.Words(trimmed)
	if len(words) < MinSampleWords {
		return nil, ErrSampleTooShort
	}

	lowerWords := make([]string, len(words))
	for i, w := range words {
		lowerWords[i] = strings.ToLower(w)
	}
	sentences := tokenize.Sentences(trimmed)
	paragraphs := tokenize.Paragraphs(trimmed)
	if len(paragraphs) == 0 {
		paragraphs = []string{trimmed}
	}

	return &Metrics{
		Lexical:   extractLexical(lowerWords),
		Syntactic: extractSyntactic(sentences, paragraphs),
		Semantic:  extractSemantic(trimmed, lowerWords),
		Stylistic: extractStylistic(trimmed, lowerWords, sentences),
		Metadata: Counts{
			WordCount:      len(words),
			SentenceCount:  len(sentences),
			ParagraphCount: len(paragraphs),
			CharCount:      len(trimmed),
			UniqueWords:    countUnique(lowerWords),
		},
	}, nil
}

func countUnique(words []string) int {
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}
	return len(seen)
}

func extractLexical(words []string) LexicalFeatures {
	total := float64(len(words))

	freq := make(map[string]int, len(words))
	lengths := make([]float64, len(words))
	var short, medium, long int
	for i, w := range words {
		freq[w]++
		n := len(w)
		lengths[i] = float64(n)
		switch {
		case n <= 3:
			short++
		case n <= 7:
			medium++
		default:
			long++
		}
	}
	unique := float64(len(freq))

	return LexicalFeatures{
		VocabularyRichness: unique / total,
		AvgWordLength:      mean(lengths),
		WordLengthStdev:    stdev(lengths),
		ShortWordRate:      float64(short) / total,
		MediumWordRate:     float64(medium) / total,
		LongWordRate:       float64(long) / total,
		TopWords:           topByFrequency(freq, topWordLimit, 1),
		CommonPhrases:      commonPhrases(words),
		LexicalDiversity:   unique / math.Sqrt(total),
	}
}

// topByFrequency returns up to limit keys with count >= minCount, ordered by
// descending count with alphabetical tie-break for determinism.
func topByFrequency(freq map[string]int, limit, minCount int) []string {
	keys := make([]string, 0, len(freq))
	for k, c := range freq {
		if c >= minCount {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

// commonPhrases finds the most frequent 2- and 3-word n-grams that occur
// more than once.
func commonPhrases(words []string) []string {
	freq := make(map[string]int)
	for i := 0; i+1 < len(words); i++ {
		freq[words[i]+" "+words[i+1]]++
		if i+2 < len(words) {
			freq[words[i]+" "+words[i+1]+" "+words[i+2]]++
		}
	}
	return topByFrequency(freq, phraseLimit, 2)
}

func extractSyntactic(sentences, paragraphs []string) SyntacticFeatures {
	sentenceLengths := make([]float64, len(sentences))
	commaCounts := make([]float64, len(sentences))
	punctPerSentence := make(map[string][]float64, len(punctuationMarks))
	for _, m := range punctuationMarks {
		punctPerSentence[m] = make([]float64, len(sentences))
	}

	for i, s := range sentences {
		sentenceLengths[i] = float64(tokenize.WordCount(s))
		for _, m := range punctuationMarks {
			punctPerSentence[m][i] = float64(strings.Count(s, m))
		}
		commaCounts[i] = float64(strings.Count(s, ",")) + 1
	}

	density := make(map[string]float64, len(punctuationMarks))
	for _, m := range punctuationMarks {
		density[m] = mean(punctPerSentence[m])
	}

	paragraphLengths := make([]float64, len(paragraphs))
	for i, p := range paragraphs {
		paragraphLengths[i] = float64(tokenize.WordCount(p))
	}

	return SyntacticFeatures{
		AvgSentenceLength:    mean(sentenceLengths),
		SentenceLengthStdev:  stdev(sentenceLengths),
		PunctuationDensity:   density,
		ClauseComplexity:     mean(commaCounts),
		AvgParagraphLength:   mean(paragraphLengths),
		ParagraphLengthStdev: stdev(paragraphLengths),
	}
}

func extractSemantic(text string, words []string) SemanticFeatures {
	total := float64(len(words))

	var positive, negative, abstract, formal, informal int
	for _, w := range words {
		if positiveWords[w] {
			positive++
		}
		if negativeWords[w] {
			negative++
		}
		if abstractRe.MatchString(w) {
			abstract++
		}
		if formalWords[w] {
			formal++
		}
		if informalMarkers[w] {
			informal++
		}
	}
	contractions := len(contractionRe.FindAllString(text, -1))

	positiveRate := float64(positive) / total
	negativeRate := float64(negative) / total

	// Register score centered at 0.5: formal markers push up, contractions
	// and informal markers push down.
	formality := clamp01(0.5 + float64(formal-contractions-informal)/total)

	return SemanticFeatures{
		PositiveSentiment: positiveRate,
		NegativeSentiment: negativeRate,
		NeutralSentiment:  clamp01(1 - positiveRate - negativeRate),
		Formality:         formality,
		Topics:            extractTopics(text),
		EmotionalTone:     classifyTone(words),
		Abstractness:      float64(abstract) / total,
	}
}

// extractTopics collects capitalized words longer than three characters,
// deduplicated, most frequent first.
func extractTopics(text string) []string {
	freq := make(map[string]int)
	for _, w := range capitalizedRe.FindAllString(text, -1) {
		freq[w]++
	}
	return topByFrequency(freq, topicLimit, 1)
}

// classifyTone runs a majority vote over the emotion keyword sets. Ties go
// to the earlier entry in emotionOrder; no hits at all means neutral.
func classifyTone(words []string) string {
	best := "neutral"
	bestScore := 0
	for _, emotion := range emotionOrder {
		set := emotionKeywords[emotion]
		score := 0
		for _, w := range words {
			if set[w] {
				score++
			}
		}
		if score > bestScore {
			best = emotion
			bestScore = score
		}
	}
	return best
}

func extractStylistic(text string, words []string, sentences []string) StylisticFeatures {
	totalWords := float64(len(words))
	totalSentences := float64(len(sentences))
	if totalSentences == 0 {
		totalSentences = 1
	}

	var transitions, firstPerson int
	for _, w := range words {
		if transitionWords[w] {
			transitions++
		}
		if firstPersonPronouns[w] {
			firstPerson++
		}
	}

	passiveSentences := 0
	for _, s := range sentences {
		if passiveRe.MatchString(s) {
			passiveSentences++
		}
	}

	lower := strings.ToLower(text)
	idiomCount := 0
	for _, idiom := range idioms {
		idiomCount += strings.Count(lower, idiom)
	}

	contractions := len(contractionRe.FindAllString(text, -1))

	return StylisticFeatures{
		TransitionRate:     float64(transitions) / totalSentences,
		ActivePassiveRatio: clamp01(1 - float64(passiveSentences)/totalSentences),
		ContractionRate:    clamp01(float64(contractions) / totalWords),
		FirstPersonRate:    float64(firstPerson) / totalWords,
		IdiomCount:         idiomCount,
		RhetoricalDevices:  detectRhetoricalDevices(sentences),
	}
}

// detectRhetoricalDevices flags three devices:
// rhetorical_questions when any sentence ends in "?", anaphora when any two
// sentences open with the same word, parallelism when adjacent sentence
// lengths differ by fewer than two words.
func detectRhetoricalDevices(sentences []string) []string {
	var devices []string

	for _, s := range sentences {
		if strings.HasSuffix(s, "?") {
			devices = append(devices, "rhetorical_questions")
			break
		}
	}

	openers := make(map[string]int)
	for _, s := range sentences {
		words := tokenize.LowerWords(s)
		if len(words) == 0 {
			continue
		}
		openers[words[0]]++
		if openers[words[0]] == 2 {
			devices = append(devices, "anaphora")
			break
		}
	}

	for i := 1; i < len(sentences); i++ {
		a := tokenize.WordCount(sentences[i-1])
		b := tokenize.WordCount(sentences[i])
		if diff := a - b; diff > -2 && diff < 2 {
			devices = append(devices, "parallelism")
			break
		}
	}

	return devices
}
