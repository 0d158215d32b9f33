// Package cache is the two-tier voice DNA cache: a bounded in-process L1
// map with TTL expiry in front of the persistent store (L2). It is the
// consumer-facing entry point for profile reads, writes, incremental
// updates, batch retrieval, and cross-user similarity search.
//
// Store failures never propagate to callers: a failed L2 call is logged,
// counted, and surfaced as a cache miss so UI-facing code can fall back to
// its no-profile path.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"voiceprint/internal/logging"
	"voiceprint/internal/metrics"
	"voiceprint/internal/similarity"
	"voiceprint/internal/store"
)

// Defaults for Config.
const (
	DefaultTTL                 = 5 * time.Minute
	DefaultMaxEntries          = 100
	DefaultSweepInterval       = 60 * time.Second
	DefaultStoreTimeout        = 5 * time.Second
	DefaultEMAAlpha            = 0.1
	DefaultSimilarityThreshold = 0.85

	// confidenceStep is the fixed confidence gain per incremental update.
	confidenceStep = 0.05

	// initialConfidence is assigned when an update creates a record.
	initialConfidence = 0.5
)

// Config tunes the cache. Zero values fall back to the defaults above.
type Config struct {
	// TTL is the maximum age of an L1 entry.
	TTL time.Duration

	// MaxEntries caps the L1 map; overflow evicts the entry with the
	// oldest refresh timestamp.
	MaxEntries int

	// SweepInterval is how often the background sweep drops expired
	// entries regardless of capacity pressure.
	SweepInterval time.Duration

	// StoreTimeout is the deadline applied to every L2 call.
	StoreTimeout time.Duration

	// EMAAlpha is the blend rate for incremental vector updates.
	EMAAlpha float64
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	if c.EMAAlpha <= 0 || c.EMAAlpha >= 1 {
		c.EMAAlpha = DefaultEMAAlpha
	}
	return c
}

// entry wraps a record with its L1 lifecycle state. The timestamp is the
// insert/refresh time, not the last access: eviction at capacity keys off
// the oldest refresh, so the policy is closer to FIFO-by-refresh than true
// LRU.
type entry struct {
	record      *store.VoiceDNA
	timestamp   time.Time
	accessCount int
}

// SimilarProfile is one hit from a cross-user similarity scan.
type SimilarProfile struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Cache is the two-tier cache. Construct with New and release with Close;
// there is no package-level instance.
type Cache struct {
	cfg     Config
	backend store.Store
	log     *logging.Logger
	met     *metrics.Metrics

	mu        sync.Mutex
	entries   map[string]*entry
	userLocks map[string]*sync.Mutex

	stop     chan struct{}
	sweeping sync.WaitGroup
}

// New creates a Cache over the given store and starts the TTL sweep.
// A nil logger uses the package default; metrics may be nil.
func New(backend store.Store, cfg Config, log *logging.Logger, met *metrics.Metrics) *Cache {
	if log == nil {
		log = logging.Default().WithComponent("cache")
	}
	c := &Cache{
		cfg:       cfg.withDefaults(),
		backend:   backend,
		log:       log,
		met:       met,
		entries:   make(map[string]*entry),
		userLocks: make(map[string]*sync.Mutex),
		stop:      make(chan struct{}),
	}

	c.sweeping.Add(1)
	go c.sweepLoop()

	return c
}

// Close stops the background sweep. The underlying store is owned by the
// caller and is not closed here.
func (c *Cache) Close() {
	close(c.stop)
	c.sweeping.Wait()
}

// Get returns the user's record from L1 when fresh, falling back to L2 on
// a miss. A store failure or absent record returns nil; cache miss is not
// an error to the caller.
func (c *Cache) Get(ctx context.Context, userID string) *store.VoiceDNA {
	c.mu.Lock()
	if e, ok := c.entries[userID]; ok && c.fresh(e) {
		e.accessCount++
		rec := e.record.Clone()
		c.mu.Unlock()
		c.countHit()
		return rec
	}
	c.mu.Unlock()
	c.countMiss()

	rec, err := c.storeGet(ctx, userID)
	if err != nil {
		c.storeError("get", err)
		return nil
	}
	if rec == nil {
		return nil
	}

	c.put(rec)
	return rec.Clone()
}

// Save upserts the record to L2 and mirrors it into L1. Returns the stored
// form, or nil when the store call failed.
func (c *Cache) Save(ctx context.Context, rec *store.VoiceDNA) *store.VoiceDNA {
	stored, err := c.storeUpsert(ctx, rec)
	if err != nil {
		c.storeError("upsert", err)
		return nil
	}

	c.put(stored)
	return stored.Clone()
}

// BatchGet returns records for the given users, serving fresh L1 entries
// directly and fetching the rest in a single L2 query. Users without a
// record are absent from the result. A failed L2 call degrades to the
// cached subset.
func (c *Cache) BatchGet(ctx context.Context, userIDs []string) map[string]*store.VoiceDNA {
	result := make(map[string]*store.VoiceDNA, len(userIDs))
	var uncached []string

	c.mu.Lock()
	for _, id := range userIDs {
		if e, ok := c.entries[id]; ok && c.fresh(e) {
			e.accessCount++
			result[id] = e.record.Clone()
			continue
		}
		uncached = append(uncached, id)
	}
	c.mu.Unlock()

	if hits := len(result); hits > 0 {
		c.countHits(hits)
	}
	if len(uncached) == 0 {
		return result
	}
	c.countMisses(len(uncached))

	fetched, err := c.storeBatchGet(ctx, uncached)
	if err != nil {
		c.storeError("batch_get", err)
		return result
	}
	for _, rec := range fetched {
		c.put(rec)
		result[rec.UserID] = rec.Clone()
	}
	return result
}

// FindSimilarProfiles scans every other stored vector, scoring cosine
// similarity against the given user's vector and returning hits at or
// above threshold, highest first. This is a full linear scan over L2 and
// does not scale past small populations; threshold <= 0 uses the default
// 0.85.
func (c *Cache) FindSimilarProfiles(ctx context.Context, userID string, threshold float64) []SimilarProfile {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	target := c.Get(ctx, userID)
	if target == nil {
		return nil
	}

	vectors, err := c.storeListVectors(ctx, userID)
	if err != nil {
		c.storeError("list_vectors", err)
		return nil
	}
	if c.met != nil {
		c.met.SimilarityScans.Inc()
	}

	var matches []SimilarProfile
	for _, uv := range vectors {
		score := similarity.Cosine(target.DNAVector, uv.Vector)
		if score >= threshold {
			matches = append(matches, SimilarProfile{UserID: uv.UserID, Similarity: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].UserID < matches[j].UserID
	})
	return matches
}

// fresh reports whether an entry is inside its TTL. Caller holds c.mu.
func (c *Cache) fresh(e *entry) bool {
	return time.Since(e.timestamp) < c.cfg.TTL
}

// put inserts or refreshes an L1 entry, evicting the oldest entry when the
// tier is full. Refreshing resets the timestamp and access count.
func (c *Cache) put(rec *store.VoiceDNA) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[rec.UserID]; !ok && len(c.entries) >= c.cfg.MaxEntries {
		c.evictOldestLocked()
	}
	c.entries[rec.UserID] = &entry{
		record:    rec.Clone(),
		timestamp: time.Now(),
	}
	c.setSizeLocked()
}

// evictOldestLocked removes the entry with the oldest refresh timestamp.
// Caller holds c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range c.entries {
		if oldestID == "" || e.timestamp.Before(oldest) {
			oldestID = id
			oldest = e.timestamp
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
		if c.met != nil {
			c.met.CacheEvictions.WithLabelValues("capacity").Inc()
		}
	}
}

func (c *Cache) sweepLoop() {
	defer c.sweeping.Done()
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep drops every expired L1 entry.
func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, id)
			removed++
		}
	}
	if removed > 0 {
		if c.met != nil {
			c.met.CacheEvictions.WithLabelValues("ttl").Add(float64(removed))
		}
		c.log.Debug("swept expired cache entries", "removed", removed, "remaining", len(c.entries))
	}
	c.setSizeLocked()
}

func (c *Cache) setSizeLocked() {
	if c.met != nil {
		c.met.CacheSize.Set(float64(len(c.entries)))
	}
}

// Len returns the current number of L1 entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// AccessCount returns the access count for a cached user, or 0 when the
// user is not in L1.
func (c *Cache) AccessCount(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[userID]; ok {
		return e.accessCount
	}
	return 0
}

func (c *Cache) countHit()  { c.countHits(1) }
func (c *Cache) countMiss() { c.countMisses(1) }

func (c *Cache) countHits(n int) {
	if c.met != nil {
		c.met.CacheHits.Add(float64(n))
	}
}

func (c *Cache) countMisses(n int) {
	if c.met != nil {
		c.met.CacheMisses.Add(float64(n))
	}
}

func (c *Cache) storeError(op string, err error) {
	c.log.Warn("store call failed, treating as cache miss", "op", op, "error", err)
	if c.met != nil {
		c.met.StoreErrors.WithLabelValues(op).Inc()
	}
}

// Store calls, each under the configured deadline. A hung store call must
// not hang the caller past StoreTimeout.

func (c *Cache) storeGet(ctx context.Context, userID string) (*store.VoiceDNA, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	return c.backend.GetByUser(ctx, userID)
}

func (c *Cache) storeUpsert(ctx context.Context, rec *store.VoiceDNA) (*store.VoiceDNA, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	return c.backend.Upsert(ctx, rec)
}

func (c *Cache) storeBatchGet(ctx context.Context, userIDs []string) ([]*store.VoiceDNA, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	return c.backend.BatchGet(ctx, userIDs)
}

func (c *Cache) storeListVectors(ctx context.Context, userID string) ([]store.UserVector, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()
	return c.backend.ListVectorsExcept(ctx, userID)
}
