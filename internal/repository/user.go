package repository

import (
	"context"

	"github.com/ErlanBelekov/mobile-signup/internal/domain"
)

// UserRepository is the user store. The usecase depends on this interface so
// tests can swap in a fake and the store can move off Postgres later.
type UserRepository interface {
	FindByMobile(ctx context.Context, mobileNumber string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Create inserts a verified user. If the number was registered
	// concurrently, the existing row is returned instead of an error.
	Create(ctx context.Context, mobileNumber string) (*domain.User, error)
}
