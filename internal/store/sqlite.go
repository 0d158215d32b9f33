package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Schema for the voice DNA store.
const schema = `
CREATE TABLE IF NOT EXISTS voice_dna (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL UNIQUE,
    dna_vector       TEXT NOT NULL,
    feature_stats    TEXT NOT NULL,
    confidence       REAL NOT NULL,
    samples_analyzed INTEGER NOT NULL,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voice_dna_updated ON voice_dna(updated_at);
`

// SQLiteStore is the default L2 implementation backed by a local SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database at the given path and
// applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetByUser retrieves a record by user ID, or (nil, nil) when absent.
func (s *SQLiteStore) GetByUser(ctx context.Context, userID string) (*VoiceDNA, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at
		FROM voice_dna WHERE user_id = ?`, userID,
	)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voice dna: %w", err)
	}
	return rec, nil
}

// Upsert inserts or replaces the record keyed by user_id. The existing
// record's id and created_at survive an update; everything else is
// last-write-wins.
func (s *SQLiteStore) Upsert(ctx context.Context, rec *VoiceDNA) (*VoiceDNA, error) {
	if err := ValidateFeatureStats(rec.FeatureStats); err != nil {
		return nil, err
	}

	stored := rec.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	vectorJSON, err := json.Marshal(stored.DNAVector)
	if err != nil {
		return nil, fmt.Errorf("marshal dna vector: %w", err)
	}
	statsJSON, err := json.Marshal(stored.FeatureStats)
	if err != nil {
		return nil, fmt.Errorf("marshal feature stats: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO voice_dna (id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			dna_vector = excluded.dna_vector,
			feature_stats = excluded.feature_stats,
			confidence = excluded.confidence,
			samples_analyzed = excluded.samples_analyzed,
			updated_at = excluded.updated_at`,
		stored.ID, stored.UserID, string(vectorJSON), string(statsJSON),
		stored.Confidence, stored.SamplesAnalyzed,
		stored.CreatedAt.UnixNano(), stored.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert voice dna: %w", err)
	}

	// Re-read so the caller sees the surviving id/created_at after a
	// conflict update.
	return s.GetByUser(ctx, stored.UserID)
}

// BatchGet retrieves records for the given user IDs in one query.
func (s *SQLiteStore) BatchGet(ctx context.Context, userIDs []string) ([]*VoiceDNA, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at
		FROM voice_dna WHERE user_id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("batch get voice dna: %w", err)
	}
	defer rows.Close()

	var records []*VoiceDNA
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan voice dna: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate voice dna: %w", err)
	}
	return records, nil
}

// ListVectorsExcept returns every stored (user_id, vector) pair except the
// given user's.
func (s *SQLiteStore) ListVectorsExcept(ctx context.Context, userID string) ([]UserVector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, dna_vector FROM voice_dna WHERE user_id != ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	defer rows.Close()

	var vectors []UserVector
	for rows.Next() {
		var uv UserVector
		var vectorJSON string
		if err := rows.Scan(&uv.UserID, &vectorJSON); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		if err := json.Unmarshal([]byte(vectorJSON), &uv.Vector); err != nil {
			return nil, fmt.Errorf("unmarshal vector for %s: %w", uv.UserID, err)
		}
		vectors = append(vectors, uv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vectors: %w", err)
	}
	return vectors, nil
}

// scanRecord scans one voice_dna row via the given scan function.
func scanRecord(scan func(...any) error) (*VoiceDNA, error) {
	var rec VoiceDNA
	var vectorJSON, statsJSON string
	var createdNs, updatedNs int64

	if err := scan(&rec.ID, &rec.UserID, &vectorJSON, &statsJSON,
		&rec.Confidence, &rec.SamplesAnalyzed, &createdNs, &updatedNs); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(vectorJSON), &rec.DNAVector); err != nil {
		return nil, fmt.Errorf("unmarshal dna vector: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &rec.FeatureStats); err != nil {
		return nil, fmt.Errorf("unmarshal feature stats: %w", err)
	}

	rec.CreatedAt = time.Unix(0, createdNs).UTC()
	rec.UpdatedAt = time.Unix(0, updatedNs).UTC()
	return &rec, nil
}
