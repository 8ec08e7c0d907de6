package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

// PostgresStore persists applications in PostgreSQL. Documents and remarks
// travel with their application as JSONB: they are owned exclusively by one
// record, only ever appended, and always read together with it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

// Create inserts a new application. The unique index on application_number is
// the authoritative collision check; a violation surfaces as
// sentinel.ErrConflict so the service can retry number generation.
func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	documents, remarks, paymentDetails, err := marshalEmbedded(app)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO applications
			(id, application_number, service_id, applicant_id, status,
			 documents, remarks, payment_status, payment_details,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(app.ID), app.Number, uuid.UUID(app.Service), uuid.UUID(app.Applicant),
		string(app.Status), documents, remarks, string(app.PaymentStatus), paymentDetails,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	query := selectColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

// Execute runs validate then mutate on one application inside a transaction
// holding a row lock, so the status write and its remark append land
// atomically. Concurrent updates to the same application serialize on the
// lock; every update's remark is retained.
func (s *PostgresStore) Execute(
	ctx context.Context,
	id domain.ApplicationID,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (app *models.Application, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := selectColumns + ` FROM applications WHERE id = $1 FOR UPDATE`
	app, err = scanApplication(tx.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	if err = validate(app); err != nil {
		return nil, err
	}
	mutate(app)

	documents, remarks, paymentDetails, err := marshalEmbedded(app)
	if err != nil {
		return nil, err
	}
	update := `
		UPDATE applications
		SET status = $2, documents = $3, remarks = $4,
		    payment_status = $5, payment_details = $6, updated_at = $7
		WHERE id = $1
	`
	if _, err = tx.ExecContext(ctx, update,
		uuid.UUID(app.ID), string(app.Status), documents, remarks,
		string(app.PaymentStatus), paymentDetails, app.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicant domain.UserID) ([]*models.Application, error) {
	query := selectColumns + `
		FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC
	`
	return s.queryList(ctx, query, uuid.UUID(applicant))
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Application, error) {
	query := selectColumns + ` FROM applications WHERE TRUE`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND application_number ILIKE $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	return s.queryList(ctx, query, args...)
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM applications WHERE status = $1`
	if err := s.db.QueryRowContext(ctx, query, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count applications by status: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*models.Application, error) {
	query := selectColumns + ` FROM applications ORDER BY created_at DESC LIMIT $1`
	return s.queryList(ctx, query, limit)
}

func (s *PostgresStore) CountByService(ctx context.Context, limit int) ([]ServiceCount, error) {
	query := `
		SELECT service_id, COUNT(*) AS application_count
		FROM applications
		GROUP BY service_id
		ORDER BY application_count DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("count applications by service: %w", err)
	}
	defer rows.Close()

	var out []ServiceCount
	for rows.Next() {
		var svc uuid.UUID
		var n int64
		if err := rows.Scan(&svc, &n); err != nil {
			return nil, fmt.Errorf("scan service count: %w", err)
		}
		out = append(out, ServiceCount{Service: domain.ServiceID(svc), Count: n})
	}
	return out, rows.Err()
}

func (s *PostgresStore) queryList(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, application_number, service_id, applicant_id, status,
	       documents, remarks, payment_status, payment_details,
	       created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app            models.Application
		id             uuid.UUID
		service        uuid.UUID
		applicant      uuid.UUID
		status         string
		documents      []byte
		remarks        []byte
		paymentStatus  string
		paymentDetails []byte
	)
	err := row.Scan(&id, &app.Number, &service, &applicant, &status,
		&documents, &remarks, &paymentStatus, &paymentDetails,
		&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	app.ID = domain.ApplicationID(id)
	app.Service = domain.ServiceID(service)
	app.Applicant = domain.UserID(applicant)
	app.Status = models.Status(status)
	app.PaymentStatus = models.PaymentStatus(paymentStatus)
	if err := json.Unmarshal(documents, &app.Documents); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if err := json.Unmarshal(remarks, &app.Remarks); err != nil {
		return nil, fmt.Errorf("decode remarks: %w", err)
	}
	if len(paymentDetails) > 0 {
		if err := json.Unmarshal(paymentDetails, &app.PaymentDetails); err != nil {
			return nil, fmt.Errorf("decode payment details: %w", err)
		}
	}
	return &app, nil
}

func marshalEmbedded(app *models.Application) (documents, remarks, paymentDetails []byte, err error) {
	if documents, err = json.Marshal(app.Documents); err != nil {
		return nil, nil, nil, fmt.Errorf("encode documents: %w", err)
	}
	if remarks, err = json.Marshal(app.Remarks); err != nil {
		return nil, nil, nil, fmt.Errorf("encode remarks: %w", err)
	}
	if app.PaymentDetails != nil {
		if paymentDetails, err = json.Marshal(app.PaymentDetails); err != nil {
			return nil, nil, nil, fmt.Errorf("encode payment details: %w", err)
		}
	}
	return documents, remarks, paymentDetails, nil
}
