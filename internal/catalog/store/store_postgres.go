package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const serviceColumns = `id, title, description, category, required_documents,
	processing_time, fees, is_active, created_by, created_at, updated_at`

// PostgresStore persists catalog entries in Postgres.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, svc *models.Service) error {
	docs, err := json.Marshal(svc.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("marshal required documents: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		svc.ID.String(), svc.Title, svc.Description, svc.Category, docs,
		svc.ProcessingTime, svc.Fees, svc.IsActive, svc.CreatedBy.String(),
		svc.CreatedAt, svc.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ServiceID) (*models.Service, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id.String())
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select service: %w", err)
	}
	return svc, nil
}

func (s *PostgresStore) List(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY title`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var out []*models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, svc *models.Service) error {
	docs, err := json.Marshal(svc.RequiredDocuments)
	if err != nil {
		return fmt.Errorf("marshal required documents: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE services
		SET title = $2, description = $3, category = $4, required_documents = $5,
			processing_time = $6, fees = $7, is_active = $8, updated_at = $9
		WHERE id = $1`,
		svc.ID.String(), svc.Title, svc.Description, svc.Category, docs,
		svc.ProcessingTime, svc.Fees, svc.IsActive, svc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ServiceID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*models.Service, error) {
	var (
		svc       models.Service
		id        string
		createdBy string
		docs      []byte
	)
	if err := row.Scan(&id, &svc.Title, &svc.Description, &svc.Category, &docs,
		&svc.ProcessingTime, &svc.Fees, &svc.IsActive, &createdBy,
		&svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, err
	}

	parsedID, err := domain.ParseServiceID(id)
	if err != nil {
		return nil, err
	}
	svc.ID = parsedID
	parsedBy, err := domain.ParseUserID(createdBy)
	if err != nil {
		return nil, err
	}
	svc.CreatedBy = parsedBy

	if err := json.Unmarshal(docs, &svc.RequiredDocuments); err != nil {
		return nil, fmt.Errorf("unmarshal required documents: %w", err)
	}
	return &svc, nil
}
