// Package voiceprint is the caller-facing boundary of the voice profile
// subsystem. A Service owns the feature-extraction pool, the two-tier
// fingerprint cache, and the persistent store; the surrounding application
// constructs one Service at startup and passes it to whatever needs
// scoring. There is no wire protocol here: HTTP framing belongs to the host.
package voiceprint

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"voiceprint/internal/cache"
	"voiceprint/internal/config"
	"voiceprint/internal/fingerprint"
	"voiceprint/internal/logging"
	"voiceprint/internal/metrics"
	"voiceprint/internal/similarity"
	"voiceprint/internal/store"
	"voiceprint/internal/stylometry"
)

// Service is the voice profile subsystem. Construct with New or NewWithStore
// and release with Close.
type Service struct {
	cfg      *config.Config
	log      *logging.Logger
	met      *metrics.Metrics
	registry *prometheus.Registry
	pool     *stylometry.Pool
	backend  store.Store
	cache    *cache.Cache
}

// New builds a Service from configuration, opening the configured store.
// A nil cfg uses defaults.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	backend, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(cfg, backend)
}

// NewWithStore builds a Service over a caller-supplied store. The Service
// takes ownership of the store and closes it on Close.
func NewWithStore(cfg *config.Config, backend store.Store) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	format, _ := logging.ParseFormat(cfg.Logging.Format)
	log := logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		Component: "voiceprint",
	})

	met, registry := metrics.New("voiceprint")

	pool, err := stylometry.NewPool(cfg.Extraction.Workers, cfg.Extraction.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("create extraction pool: %w", err)
	}

	c := cache.New(backend, cache.Config{
		TTL:           time.Duration(cfg.Cache.TTLSec) * time.Second,
		MaxEntries:    cfg.Cache.MaxEntries,
		SweepInterval: time.Duration(cfg.Cache.SweepIntervalSec) * time.Second,
		StoreTimeout:  time.Duration(cfg.Storage.TimeoutSec) * time.Second,
	}, log.WithComponent("cache"), met)

	return &Service{
		cfg:      cfg,
		log:      log,
		met:      met,
		registry: registry,
		pool:     pool,
		backend:  backend,
		cache:    c,
	}, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return store.OpenPostgres(ctx, cfg.Storage.DatabaseURL)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.OpenSQLite(cfg.Storage.Path)
	}
}

// Close stops the cache sweep and closes the store.
func (s *Service) Close() error {
	s.cache.Close()
	return s.backend.Close()
}

// MetricsHandler returns a Prometheus scrape handler for this Service's
// instruments. Serving it is the host application's choice.
func (s *Service) MetricsHandler() http.Handler {
	return metrics.Handler(s.registry)
}

// Analyze extracts the stylometric metrics for one text on the bounded
// extraction pool.
func (s *Service) Analyze(ctx context.Context, text string) (*stylometry.Metrics, error) {
	start := time.Now()
	m, err := s.pool.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	s.met.ObserveExtract(time.Since(start))
	return m, nil
}

// CreateFingerprint builds a voice fingerprint from at least three writing
// samples.
func (s *Service) CreateFingerprint(ctx context.Context, samples []string) (*fingerprint.Traits, error) {
	if len(samples) < fingerprint.MinSamples {
		return nil, fingerprint.ErrInsufficientSamples
	}

	extracted := make([]*stylometry.Metrics, len(samples))
	for i, sample := range samples {
		m, err := s.Analyze(ctx, sample)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i+1, err)
		}
		extracted[i] = m
	}
	return fingerprint.FromMetrics(extracted), nil
}

// CompareVoices scores the similarity of two fingerprints on a 0-100 scale.
func (s *Service) CompareVoices(a, b *fingerprint.Traits) int {
	return similarity.CompareVoices(a, b)
}

// VoiceSimilarity scores how much modified still sounds like original,
// optionally against a stored profile.
func (s *Service) VoiceSimilarity(ctx context.Context, original, modified string, profile *fingerprint.Traits) (*similarity.Result, error) {
	origMetrics, err := s.Analyze(ctx, original)
	if err != nil {
		return nil, err
	}
	modMetrics, err := s.Analyze(ctx, modified)
	if err != nil {
		return nil, err
	}
	return similarity.VoiceSimilarityFromMetrics(origMetrics, modMetrics, profile), nil
}

// DetectEvolution measures voice drift between an older and a newer set of
// writing samples. Both sets need at least three samples.
func (s *Service) DetectEvolution(ctx context.Context, oldSamples, newSamples []string) (*similarity.Evolution, error) {
	oldPrint, err := s.CreateFingerprint(ctx, oldSamples)
	if err != nil {
		return nil, fmt.Errorf("old samples: %w", err)
	}
	newPrint, err := s.CreateFingerprint(ctx, newSamples)
	if err != nil {
		return nil, fmt.Errorf("new samples: %w", err)
	}
	return similarity.CompareEvolution(oldPrint, newPrint), nil
}

// Profile returns the user's stored voice DNA, or nil when none exists or
// the store is unavailable.
func (s *Service) Profile(ctx context.Context, userID string) *store.VoiceDNA {
	return s.cache.Get(ctx, userID)
}

// SaveProfile persists a fingerprint as the user's voice DNA record and
// returns the stored form, or nil when the store is unavailable.
func (s *Service) SaveProfile(ctx context.Context, userID string, traits *fingerprint.Traits) *store.VoiceDNA {
	return s.cache.Save(ctx, &store.VoiceDNA{
		UserID:          userID,
		DNAVector:       traits.Vector(),
		FeatureStats:    traits.Stats(),
		Confidence:      traits.Confidence,
		SamplesAnalyzed: traits.SampleCount,
	})
}

// UpdateProfile blends a new fingerprint vector into the user's record by
// exponential moving average, creating the record when absent.
func (s *Service) UpdateProfile(ctx context.Context, userID string, vector []float64, statsPatch map[string]any) *store.VoiceDNA {
	return s.cache.Update(ctx, userID, vector, statsPatch)
}

// RecordSample folds one new writing sample into the user's voice DNA: the
// sample is extracted, flattened as a one-sample fingerprint, and blended
// into the stored vector.
func (s *Service) RecordSample(ctx context.Context, userID, text string) (*store.VoiceDNA, error) {
	m, err := s.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	traits := fingerprint.FromMetrics([]*stylometry.Metrics{m})
	return s.cache.Update(ctx, userID, traits.Vector(), traits.Stats()), nil
}

// Profiles returns the stored records for the given users; absent users
// are missing from the result.
func (s *Service) Profiles(ctx context.Context, userIDs []string) map[string]*store.VoiceDNA {
	return s.cache.BatchGet(ctx, userIDs)
}

// SimilarProfiles returns other users whose fingerprint vectors score at or
// above threshold against this user's, highest first. Threshold <= 0 uses
// the default 0.85.
func (s *Service) SimilarProfiles(ctx context.Context, userID string, threshold float64) []cache.SimilarProfile {
	return s.cache.FindSimilarProfiles(ctx, userID, threshold)
}
