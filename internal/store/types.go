// Package store persists voice DNA records: one fingerprint vector and
// feature-stats document per user. It is the L2 tier behind the cache; two
// implementations exist, SQLite (default) and Postgres, behind one
// interface.
package store

import (
	"context"
	"time"
)

// VoiceDNA is the persisted fingerprint record. One record per user, owned
// exclusively by that user, mutated only through the cache's incremental
// update path.
type VoiceDNA struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	DNAVector       []float64      `json:"dna_vector"`
	FeatureStats    map[string]any `json:"feature_stats"`
	Confidence      float64        `json:"confidence"`
	SamplesAnalyzed int            `json:"samples_analyzed"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so cached records cannot be mutated through
// returned pointers.
func (v *VoiceDNA) Clone() *VoiceDNA {
	if v == nil {
		return nil
	}
	out := *v
	out.DNAVector = append([]float64(nil), v.DNAVector...)
	if v.FeatureStats != nil {
		out.FeatureStats = cloneStats(v.FeatureStats)
	}
	return &out
}

func cloneStats(stats map[string]any) map[string]any {
	out := make(map[string]any, len(stats))
	for k, v := range stats {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneStats(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// UserVector pairs a user ID with that user's stored fingerprint vector,
// for cross-user similarity scans.
type UserVector struct {
	UserID string
	Vector []float64
}

// Store is the persistent-store collaborator. An absent record is
// (nil, nil), not an error.
type Store interface {
	// GetByUser returns the record for userID, or (nil, nil) when absent.
	GetByUser(ctx context.Context, userID string) (*VoiceDNA, error)

	// Upsert inserts or replaces the record keyed by user_id
	// (last-write-wins) and returns the stored form.
	Upsert(ctx context.Context, rec *VoiceDNA) (*VoiceDNA, error)

	// BatchGet returns the records for the given user IDs; absent users
	// are simply missing from the result.
	BatchGet(ctx context.Context, userIDs []string) ([]*VoiceDNA, error)

	// ListVectorsExcept returns every stored (user_id, vector) pair except
	// the given user's.
	ListVectorsExcept(ctx context.Context, userID string) ([]UserVector, error)

	// Close releases the underlying connection.
	Close() error
}
