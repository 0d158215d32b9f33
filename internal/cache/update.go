package cache

import (
	"context"
	"sync"

	"voiceprint/internal/store"
)

// Update applies an incremental fingerprint update for one user.
//
// When no record exists, a new one is created with confidence 0.5 and a
// single analyzed sample. Otherwise the stored vector is blended with the
// new one by exponential moving average (alpha = Config.EMAAlpha), the
// feature-stats patch is merged field by field, the sample counter is
// incremented, and confidence moves toward 1 by a fixed step, never
// decreasing. A vector-length mismatch logs a warning and adopts the new
// vector wholesale instead of blending.
//
// Updates for the same user serialize on a per-user lock, so concurrent
// updates compose instead of racing on read-modify-write. Returns the
// stored record, or nil when the store was unavailable.
func (c *Cache) Update(ctx context.Context, userID string, newVector []float64, statsPatch map[string]any) *store.VoiceDNA {
	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing := c.Get(ctx, userID)
	if existing == nil {
		return c.Save(ctx, &store.VoiceDNA{
			UserID:          userID,
			DNAVector:       append([]float64(nil), newVector...),
			FeatureStats:    statsPatch,
			Confidence:      initialConfidence,
			SamplesAnalyzed: 1,
		})
	}

	updated := existing.Clone()
	if len(existing.DNAVector) != len(newVector) {
		c.log.Warn("dna vector length mismatch, replacing instead of blending",
			"user_id", userID, "existing_len", len(existing.DNAVector), "new_len", len(newVector))
		updated.DNAVector = append([]float64(nil), newVector...)
	} else {
		alpha := c.cfg.EMAAlpha
		for i := range updated.DNAVector {
			updated.DNAVector[i] = existing.DNAVector[i]*(1-alpha) + newVector[i]*alpha
		}
	}

	updated.FeatureStats = mergeStats(updated.FeatureStats, statsPatch)
	updated.SamplesAnalyzed++
	if next := updated.Confidence + confidenceStep; next < 1 {
		updated.Confidence = next
	} else {
		updated.Confidence = 1
	}

	return c.Save(ctx, updated)
}

// mergeStats merges patch into stats field by field. When both sides hold
// a nested object for the same key the objects merge one level deep;
// otherwise the patch value replaces the stored one.
func mergeStats(stats, patch map[string]any) map[string]any {
	if patch == nil {
		return stats
	}
	if stats == nil {
		stats = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		patchNested, patchIsMap := v.(map[string]any)
		statsNested, statsIsMap := stats[k].(map[string]any)
		if patchIsMap && statsIsMap {
			for nk, nv := range patchNested {
				statsNested[nk] = nv
			}
			continue
		}
		stats[k] = v
	}
	return stats
}

// userLock returns the mutex serializing updates for one user, creating it
// on first use. Locks are never removed; the population of users a single
// process updates is small.
func (c *Cache) userLock(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.userLocks[userID] = lock
	}
	return lock
}
