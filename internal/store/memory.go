package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*VoiceDNA
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*VoiceDNA)}
}

// GetByUser returns the record for userID, or (nil, nil) when absent.
func (s *MemoryStore) GetByUser(_ context.Context, userID string) (*VoiceDNA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[userID].Clone(), nil
}

// Upsert inserts or replaces the record keyed by user_id.
func (s *MemoryStore) Upsert(_ context.Context, rec *VoiceDNA) (*VoiceDNA, error) {
	if err := ValidateFeatureStats(rec.FeatureStats); err != nil {
		return nil, err
	}

	stored := rec.Clone()
	now := time.Now().UTC()
	stored.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[stored.UserID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
	}
	s.records[stored.UserID] = stored
	return stored.Clone(), nil
}

// BatchGet returns the stored records among the given user IDs.
func (s *MemoryStore) BatchGet(_ context.Context, userIDs []string) ([]*VoiceDNA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []*VoiceDNA
	for _, id := range userIDs {
		if rec, ok := s.records[id]; ok {
			records = append(records, rec.Clone())
		}
	}
	return records, nil
}

// ListVectorsExcept returns every stored (user_id, vector) pair except the
// given user's.
func (s *MemoryStore) ListVectorsExcept(_ context.Context, userID string) ([]UserVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var vectors []UserVector
	for id, rec := range s.records {
		if id == userID {
			continue
		}
		vectors = append(vectors, UserVector{
			UserID: id,
			Vector: append([]float64(nil), rec.DNAVector...),
		})
	}
	return vectors, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
