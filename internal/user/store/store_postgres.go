package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, phone, address,
	aadhar_number, created_at, updated_at`

// PostgresStore persists accounts in Postgres. Email and aadhar uniqueness
// ride on the table's unique indexes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, string(u.Role),
		u.Phone, u.Address, u.AadharNumber, u.CreatedAt, u.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, role = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $1`,
		u.ID.String(), u.Name, string(u.Role), u.Phone, u.Address, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
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

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		id     string
		role   string
		aadhar sql.NullString
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.Phone, &u.Address, &aadhar, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	parsedID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, err
	}
	u.ID = parsedID
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsedRole
	u.AadharNumber = aadhar.String
	return &u, nil
}
