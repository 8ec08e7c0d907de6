package sequence

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore allocates sequence values from a counters table using a
// single atomic upsert, so two concurrent submissions can never observe the
// same value.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Next(ctx context.Context, period string) (int64, error) {
	query := `
		INSERT INTO application_sequences (period, value)
		VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET
			value = application_sequences.value + 1
		RETURNING value
	`
	var value int64
	if err := s.db.QueryRowContext(ctx, query, period).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence for period %s: %w", period, err)
	}
	return value, nil
}
