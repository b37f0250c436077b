package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/mobile-signup/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, mobile_number, is_verified, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByMobile(ctx context.Context, mobileNumber string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile_number = $1`
	return scanUser(r.pool.QueryRow(ctx, query, mobileNumber))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// Create inserts a verified user. A concurrent insert for the same number
// hits the unique constraint and returns no row; the existing row is read back.
func (r *UserRepository) Create(ctx context.Context, mobileNumber string) (*domain.User, error) {
	query := `
		INSERT INTO users (mobile_number, is_verified)
		VALUES ($1, TRUE)
		ON CONFLICT (mobile_number) DO NOTHING
		RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, mobileNumber))
	if errors.Is(err, domain.ErrUserNotFound) {
		return r.FindByMobile(ctx, mobileNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.MobileNumber, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
