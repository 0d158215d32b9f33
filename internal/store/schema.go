package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// featureStatsSchema describes the persisted feature_stats document. The
// store refuses to write a record whose stats don't validate; a corrupt
// document would poison every later incremental merge.
const featureStatsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "lexical": {
      "type": "object",
      "properties": {
        "vocabulary_richness": {"type": "number", "minimum": 0, "maximum": 1},
        "avg_word_length": {"type": "number", "minimum": 0},
        "lexical_diversity": {"type": "number", "minimum": 0},
        "preferred_words": {"type": "array", "items": {"type": "string"}},
        "common_phrases": {"type": "array", "items": {"type": "string"}}
      }
    },
    "syntactic": {
      "type": "object",
      "properties": {
        "avg_sentence_length": {"type": "number", "minimum": 0},
        "sentence_length_stdev": {"type": "number", "minimum": 0},
        "clause_complexity": {"type": "number", "minimum": 0},
        "punctuation_profile": {
          "type": "object",
          "additionalProperties": {"type": "number", "minimum": 0}
        },
        "paragraph_rhythm": {"type": "number", "minimum": 0}
      }
    },
    "semantic": {
      "type": "object",
      "properties": {
        "formality_level": {"type": "number", "minimum": 0, "maximum": 1},
        "emotional_tone": {
          "type": "string",
          "enum": ["joy", "sadness", "anger", "fear", "neutral"]
        },
        "topics": {"type": "array", "items": {"type": "string"}},
        "abstractness": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "stylistic": {
      "type": "object",
      "properties": {
        "transition_rate": {"type": "number", "minimum": 0},
        "active_passive_ratio": {"type": "number", "minimum": 0, "maximum": 1},
        "contraction_rate": {"type": "number", "minimum": 0, "maximum": 1},
        "first_person_rate": {"type": "number", "minimum": 0, "maximum": 1},
        "rhetorical_devices": {"type": "array", "items": {"type": "string"}}
      }
    },
    "consistency": {"type": "number", "minimum": 0, "maximum": 1},
    "sample_count": {"type": "integer", "minimum": 0}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// ValidateFeatureStats checks a feature_stats document against the embedded
// schema. A nil document is valid (records created by the incremental path
// may start without stats).
func ValidateFeatureStats(stats map[string]any) error {
	if stats == nil {
		return nil
	}

	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("feature_stats.schema.json", bytes.NewReader([]byte(featureStatsSchema))); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("feature_stats.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("compile feature_stats schema: %w", schemaErr)
	}

	// Round-trip through JSON so numeric Go types normalize to what the
	// validator expects.
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal feature_stats: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal feature_stats: %w", err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid feature_stats: %w", err)
	}
	return nil
}
