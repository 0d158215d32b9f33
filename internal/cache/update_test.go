package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCreatesRecord(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})

	vector := []float64{0.6, 4.8, 18, 1.6}
	stats := map[string]any{"consistency": 0.9}

	rec := c.Update(context.Background(), "user-1", vector, stats)
	require.NotNil(t, rec)
	assert.Equal(t, vector, rec.DNAVector)
	assert.Equal(t, initialConfidence, rec.Confidence)
	assert.Equal(t, 1, rec.SamplesAnalyzed)
	assert.Equal(t, 0.9, rec.FeatureStats["consistency"])
}

func TestUpdateBlendsVectorByEMA(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})
	ctx := context.Background()

	existing := []float64{1, 2, 3}
	incoming := []float64{2, 2, 1}
	require.NotNil(t, c.Save(ctx, testDNA("user-1", existing...)))

	rec := c.Update(ctx, "user-1", incoming, nil)
	require.NotNil(t, rec)

	for i := range existing {
		expected := existing[i]*0.9 + incoming[i]*0.1
		assert.InDelta(t, expected, rec.DNAVector[i], 1e-12, "vector element %d", i)
	}
	assert.Equal(t, 4, rec.SamplesAnalyzed)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-12)
}

func TestUpdateConfidenceCapsAtOne(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})
	ctx := context.Background()

	seed := testDNA("user-1")
	seed.Confidence = 0.98
	require.NotNil(t, c.Save(ctx, seed))

	rec := c.Update(ctx, "user-1", seed.DNAVector, nil)
	require.NotNil(t, rec)
	assert.Equal(t, 1.0, rec.Confidence)

	// Further updates stay pinned.
	rec = c.Update(ctx, "user-1", seed.DNAVector, nil)
	require.NotNil(t, rec)
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestUpdateVectorLengthMismatchReplaces(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})
	ctx := context.Background()

	require.NotNil(t, c.Save(ctx, testDNA("user-1", 1, 2, 3)))

	incoming := []float64{5, 6, 7, 8}
	rec := c.Update(ctx, "user-1", incoming, nil)
	require.NotNil(t, rec)
	assert.Equal(t, incoming, rec.DNAVector)
	assert.Equal(t, 4, rec.SamplesAnalyzed)
}

func TestUpdateMergesStats(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})
	ctx := context.Background()

	seed := testDNA("user-1")
	seed.FeatureStats = map[string]any{
		"lexical":     map[string]any{"vocabulary_richness": 0.6, "avg_word_length": 4.8},
		"consistency": 0.9,
	}
	require.NotNil(t, c.Save(ctx, seed))

	patch := map[string]any{
		"lexical":     map[string]any{"vocabulary_richness": 0.65},
		"consistency": 0.92,
	}
	rec := c.Update(ctx, "user-1", seed.DNAVector, patch)
	require.NotNil(t, rec)

	lexical := rec.FeatureStats["lexical"].(map[string]any)
	assert.Equal(t, 0.65, lexical["vocabulary_richness"], "patched field adopts the new value")
	assert.Equal(t, 4.8, lexical["avg_word_length"], "unpatched field survives the merge")
	assert.Equal(t, 0.92, rec.FeatureStats["consistency"])
}

func TestMergeStats(t *testing.T) {
	tests := []struct {
		name     string
		stats    map[string]any
		patch    map[string]any
		expected map[string]any
	}{
		{
			name:     "nil patch keeps stats",
			stats:    map[string]any{"a": 1},
			patch:    nil,
			expected: map[string]any{"a": 1},
		},
		{
			name:     "nil stats adopts patch",
			stats:    nil,
			patch:    map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "scalar replaced",
			stats:    map[string]any{"a": 1},
			patch:    map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name:     "nested objects merge",
			stats:    map[string]any{"g": map[string]any{"x": 1, "y": 2}},
			patch:    map[string]any{"g": map[string]any{"y": 3}},
			expected: map[string]any{"g": map[string]any{"x": 1, "y": 3}},
		},
		{
			name:     "object replaces scalar",
			stats:    map[string]any{"g": 1},
			patch:    map[string]any{"g": map[string]any{"x": 1}},
			expected: map[string]any{"g": map[string]any{"x": 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mergeStats(tt.stats, tt.patch))
		})
	}
}

func TestConcurrentUpdatesCompose(t *testing.T) {
	backend := newCountingStore()
	c := newTestCache(t, backend, Config{})
	ctx := context.Background()

	vector := []float64{1, 1, 1}
	const updates = 5

	var wg sync.WaitGroup
	for range updates {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(ctx, "user-1", vector, nil)
		}()
	}
	wg.Wait()

	rec := c.Get(ctx, "user-1")
	require.NotNil(t, rec)
	assert.Equal(t, updates, rec.SamplesAnalyzed, "serialized updates must each count")
	assert.InDelta(t, initialConfidence+confidenceStep*(updates-1), rec.Confidence, 1e-12)
	for i, v := range rec.DNAVector {
		assert.InDelta(t, vector[i], v, 1e-9, "blending identical vectors must not drift")
	}
}
