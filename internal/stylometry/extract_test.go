package stylometry

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// neutralSample is a plain descriptive text comfortably above the minimum
// word count.
const neutralSample = `The river moves slowly through the valley, carrying silt from the
mountains toward the distant sea. Farmers along the banks have worked this
land for generations, planting in spring and harvesting in autumn. The
village itself sits on a low rise above the floodplain, its narrow streets
winding between stone houses. Most mornings a thin mist settles over the
water before the sun climbs high enough to burn it away.`

func TestExtractTooShort(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
		{name: "a few words", text: "This is not nearly enough text."},
		{name: "forty nine words", text: strings.Repeat("word ", 49)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			if !errors.Is(err, ErrSampleTooShort) {
				t.Errorf("Extract(%q) error = %v, want ErrSampleTooShort", tt.name, err)
			}
		})
	}
}

func TestExtractExactlyMinimum(t *testing.T) {
	text := strings.Repeat("word ", MinSampleWords)
	m, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract at minimum length failed: %v", err)
	}
	if m.Metadata.WordCount != MinSampleWords {
		t.Errorf("WordCount = %d, want %d", m.Metadata.WordCount, MinSampleWords)
	}
}

func TestExtractRatiosInRange(t *testing.T) {
	m, err := Extract(neutralSample)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if m.Metadata.WordCount <= 0 {
		t.Fatal("WordCount must be positive")
	}

	ratios := map[string]float64{
		"vocabulary_richness":  m.Lexical.VocabularyRichness,
		"short_word_rate":      m.Lexical.ShortWordRate,
		"medium_word_rate":     m.Lexical.MediumWordRate,
		"long_word_rate":       m.Lexical.LongWordRate,
		"positive_sentiment":   m.Semantic.PositiveSentiment,
		"negative_sentiment":   m.Semantic.NegativeSentiment,
		"neutral_sentiment":    m.Semantic.NeutralSentiment,
		"formality":            m.Semantic.Formality,
		"abstractness":         m.Semantic.Abstractness,
		"active_passive_ratio": m.Stylistic.ActivePassiveRatio,
		"contraction_rate":     m.Stylistic.ContractionRate,
		"first_person_rate":    m.Stylistic.FirstPersonRate,
	}
	for name, v := range ratios {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, want value in [0,1]", name, v)
		}
	}

	bucketSum := m.Lexical.ShortWordRate + m.Lexical.MediumWordRate + m.Lexical.LongWordRate
	if bucketSum < 0.999 || bucketSum > 1.001 {
		t.Errorf("word length buckets sum to %v, want 1", bucketSum)
	}
}

func TestExtractDeterministic(t *testing.T) {
	a, err := Extract(neutralSample)
	if err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}
	b, err := Extract(neutralSample)
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Extract is not deterministic for identical input")
	}
}

func TestExtractTopWordsLimit(t *testing.T) {
	m, err := Extract(neutralSample)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(m.Lexical.TopWords) > 20 {
		t.Errorf("TopWords has %d entries, want at most 20", len(m.Lexical.TopWords))
	}
	if len(m.Lexical.TopWords) == 0 {
		t.Error("TopWords is empty")
	}
	// "the" dominates the sample.
	if m.Lexical.TopWords[0] != "the" {
		t.Errorf("most frequent word = %q, want %q", m.Lexical.TopWords[0], "the")
	}
}

func TestEmotionalTone(t *testing.T) {
	tests := []struct {
		name     string
		filler   string
		expected string
	}{
		{
			name:     "joyful text",
			filler:   "We were happy and full of joy, ready to celebrate and laugh together with delight. ",
			expected: "joy",
		},
		{
			name:     "fearful text",
			filler:   "A deep fear took hold, the panic and dread of a threat we were afraid to name. ",
			expected: "fear",
		},
		{
			name:     "neutral text",
			filler:   "The committee reviewed the quarterly figures and approved the budget without comment. ",
			expected: "neutral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat(tt.filler, 5)
			m, err := Extract(text)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if m.Semantic.EmotionalTone != tt.expected {
				t.Errorf("EmotionalTone = %q, want %q", m.Semantic.EmotionalTone, tt.expected)
			}
		})
	}
}

func TestFormalityOrdering(t *testing.T) {
	formal := strings.Repeat("The committee shall convene accordingly; furthermore, the aforementioned resolution is therefore adopted pursuant to the charter. ", 5)
	informal := strings.Repeat("Yeah it's kinda cool, we're gonna grab stuff and it'll be totally awesome, okay. ", 5)

	fm, err := Extract(formal)
	if err != nil {
		t.Fatalf("Extract formal failed: %v", err)
	}
	im, err := Extract(informal)
	if err != nil {
		t.Fatalf("Extract informal failed: %v", err)
	}

	if fm.Semantic.Formality <= im.Semantic.Formality {
		t.Errorf("formal text formality %v should exceed informal %v",
			fm.Semantic.Formality, im.Semantic.Formality)
	}
	if im.Stylistic.ContractionRate <= fm.Stylistic.ContractionRate {
		t.Errorf("informal contraction rate %v should exceed formal %v",
			im.Stylistic.ContractionRate, fm.Stylistic.ContractionRate)
	}
}

func TestRhetoricalDevices(t *testing.T) {
	questions := strings.Repeat("Who would believe such a thing could happen in a quiet town like this one? ", 5)
	m, err := Extract(questions)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !contains(m.Stylistic.RhetoricalDevices, "rhetorical_questions") {
		t.Errorf("expected rhetorical_questions in %v", m.Stylistic.RhetoricalDevices)
	}
	// Identical repeated sentences share an opener and a length.
	if !contains(m.Stylistic.RhetoricalDevices, "anaphora") {
		t.Errorf("expected anaphora in %v", m.Stylistic.RhetoricalDevices)
	}
	if !contains(m.Stylistic.RhetoricalDevices, "parallelism") {
		t.Errorf("expected parallelism in %v", m.Stylistic.RhetoricalDevices)
	}
}

func TestPassiveVoiceLowersRatio(t *testing.T) {
	active := strings.Repeat("The dog chased the ball across the yard and brought it back every time. ", 5)
	passive := strings.Repeat("The ball was chased by the dog, and the stick was carried back to the porch. ", 5)

	am, err := Extract(active)
	if err != nil {
		t.Fatalf("Extract active failed: %v", err)
	}
	pm, err := Extract(passive)
	if err != nil {
		t.Fatalf("Extract passive failed: %v", err)
	}

	if pm.Stylistic.ActivePassiveRatio >= am.Stylistic.ActivePassiveRatio {
		t.Errorf("passive text ratio %v should be below active %v",
			pm.Stylistic.ActivePassiveRatio, am.Stylistic.ActivePassiveRatio)
	}
}

func TestIdiomCount(t *testing.T) {
	text := strings.Repeat("Getting started was a piece of cake once we managed to break the ice with the new team. ", 4)
	m, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if m.Stylistic.IdiomCount != 8 {
		t.Errorf("IdiomCount = %d, want 8", m.Stylistic.IdiomCount)
	}
}

func TestTopicsCapitalized(t *testing.T) {
	m, err := Extract(neutralSample)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, topic := range m.Semantic.Topics {
		if len(topic) <= 3 {
			t.Errorf("topic %q is too short", topic)
		}
		if topic[0] < 'A' || topic[0] > 'Z' {
			t.Errorf("topic %q is not capitalized", topic)
		}
	}
	if len(m.Semantic.Topics) > 10 {
		t.Errorf("Topics has %d entries, want at most 10", len(m.Semantic.Topics))
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
