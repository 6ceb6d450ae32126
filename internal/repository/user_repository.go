package repository

import (
	"fmt"

	"github.com/lshigami/quizx/internal/model"
	"github.com/lshigami/quizx/internal/store"
)

// UserRepository persists the active user and a per-identity profile that
// survives logout, so entitlements come back on the next sign-in.
type UserRepository interface {
	Active() *model.User
	SaveActive(user *model.User) error
	ClearActive() error
	Profile(userID string) *model.User
}

type userRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Active() *model.User {
	var user model.User
	if !readJSON(r.store, KeyUser, &user) || user.ID == "" {
		return nil
	}
	return &user
}

// SaveActive writes the active user and mirrors it into the identity's profile.
func (r *userRepository) SaveActive(user *model.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("cannot persist user without id")
	}
	if err := writeJSON(r.store, KeyUser, user); err != nil {
		return fmt.Errorf("failed to persist active user: %w", err)
	}
	if err := writeJSON(r.store, KeyProfilePrefix+user.ID, user); err != nil {
		return fmt.Errorf("failed to persist profile for %s: %w", user.ID, err)
	}
	return nil
}

func (r *userRepository) ClearActive() error {
	return r.store.Remove(KeyUser)
}

func (r *userRepository) Profile(userID string) *model.User {
	if userID == "" {
		return nil
	}
	var user model.User
	if !readJSON(r.store, KeyProfilePrefix+userID, &user) {
		return nil
	}
	return &user
}
