// Package repository stores user records.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lesechos/accounts/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("stored role is invalid")
)

// parseStoredRole maps a persisted role onto models.Role. Legacy lowercase
// values are accepted; anything else fails with ErrInvalidRole.
func parseStoredRole(raw string) (models.Role, error) {
	role, err := models.ParseRole(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return role, nil
}

// Repository is the user directory. Every method returns stored records,
// password hash included; callers sanitize before exposing them.
type Repository interface {
	// CreateUser assigns ID and timestamps and stores the user.
	// A taken username yields ErrUserExists.
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, q models.ListQuery) ([]*models.User, error)
	// UpdateUser applies patch and returns the stored result.
	UpdateUser(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error)
	// DeleteUser removes the user and returns what was removed.
	DeleteUser(ctx context.Context, id string) (*models.User, error)
}
