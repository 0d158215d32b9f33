package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is an L2 implementation for deployments that already run
// Postgres. Same contract as SQLiteStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS voice_dna (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			dna_vector DOUBLE PRECISION[] NOT NULL,
			feature_stats JSONB NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			samples_analyzed INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_voice_dna_updated ON voice_dna (updated_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init voice_dna schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetByUser retrieves a record by user ID, or (nil, nil) when absent.
func (s *PostgresStore) GetByUser(ctx context.Context, userID string) (*VoiceDNA, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at
		FROM voice_dna WHERE user_id = $1`, userID,
	)
	rec, err := scanPgRecord(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get voice dna: %w", err)
	}
	return rec, nil
}

// Upsert inserts or replaces the record keyed by user_id.
func (s *PostgresStore) Upsert(ctx context.Context, rec *VoiceDNA) (*VoiceDNA, error) {
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

	statsJSON, err := json.Marshal(stored.FeatureStats)
	if err != nil {
		return nil, fmt.Errorf("marshal feature stats: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO voice_dna (id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id) DO UPDATE SET
			dna_vector = EXCLUDED.dna_vector,
			feature_stats = EXCLUDED.feature_stats,
			confidence = EXCLUDED.confidence,
			samples_analyzed = EXCLUDED.samples_analyzed,
			updated_at = EXCLUDED.updated_at`,
		stored.ID, stored.UserID, stored.DNAVector, statsJSON,
		stored.Confidence, stored.SamplesAnalyzed, stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert voice dna: %w", err)
	}

	return s.GetByUser(ctx, stored.UserID)
}

// BatchGet retrieves records for the given user IDs in one query.
func (s *PostgresStore) BatchGet(ctx context.Context, userIDs []string) ([]*VoiceDNA, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, dna_vector, feature_stats, confidence, samples_analyzed, created_at, updated_at
		FROM voice_dna WHERE user_id = ANY($1)`, userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("batch get voice dna: %w", err)
	}
	defer rows.Close()

	var records []*VoiceDNA
	for rows.Next() {
		rec, err := scanPgRecord(rows.Scan)
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
func (s *PostgresStore) ListVectorsExcept(ctx context.Context, userID string) ([]UserVector, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, dna_vector FROM voice_dna WHERE user_id <> $1`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	defer rows.Close()

	var vectors []UserVector
	for rows.Next() {
		var uv UserVector
		if err := rows.Scan(&uv.UserID, &uv.Vector); err != nil {
			return nil, fmt.Errorf("scan vector: %w", err)
		}
		vectors = append(vectors, uv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vectors: %w", err)
	}
	return vectors, nil
}

func scanPgRecord(scan func(...any) error) (*VoiceDNA, error) {
	var rec VoiceDNA
	var statsJSON []byte

	if err := scan(&rec.ID, &rec.UserID, &rec.DNAVector, &statsJSON,
		&rec.Confidence, &rec.SamplesAnalyzed, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsJSON, &rec.FeatureStats); err != nil {
		return nil, fmt.Errorf("unmarshal feature stats: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return &rec, nil
}
