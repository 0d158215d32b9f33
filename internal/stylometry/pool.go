package stylometry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPoolSize bounds concurrent extractions when no size is given.
const DefaultPoolSize = 4

// DefaultMemoSize is the number of memoized extraction results.
const DefaultMemoSize = 256

// Pool runs extractions on a bounded number of goroutines so CPU-bound
// feature extraction cannot monopolize the caller's threads, and memoizes
// results by text hash so repeated scoring of the same draft is free.
type Pool struct {
	sem  chan struct{}
	memo *lru.Cache[string, *Metrics]
}

// NewPool creates a Pool with the given concurrency bound and memo size.
// Non-positive arguments fall back to the defaults.
func NewPool(size, memoSize int) (*Pool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, *Metrics](memoSize)
	if err != nil {
		return nil, err
	}
	return &Pool{
		sem:  make(chan struct{}, size),
		memo: memo,
	}, nil
}

// Extract runs Extract(text) on the pool. It blocks while all workers are
// busy and returns early if ctx is cancelled first. The returned Metrics
// is the caller's to mutate; the memoized entry stays untouched.
func (p *Pool) Extract(ctx context.Context, text string) (*Metrics, error) {
	key := textKey(text)
	if m, ok := p.memo.Get(key); ok {
		return m.clone(), nil
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	m, err := Extract(text)
	if err != nil {
		return nil, err
	}
	p.memo.Add(key, m)
	return m.clone(), nil
}

// clone deep-copies m so callers cannot reach the memoized slices and maps.
func (m *Metrics) clone() *Metrics {
	c := *m
	c.Lexical.TopWords = slices.Clone(m.Lexical.TopWords)
	c.Lexical.CommonPhrases = slices.Clone(m.Lexical.CommonPhrases)
	c.Syntactic.PunctuationDensity = maps.Clone(m.Syntactic.PunctuationDensity)
	c.Semantic.Topics = slices.Clone(m.Semantic.Topics)
	c.Stylistic.RhetoricalDevices = slices.Clone(m.Stylistic.RhetoricalDevices)
	return &c
}

func textKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
