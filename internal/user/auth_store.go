package user

import (
	"context"
	"errors"

	"github.com/keterhq/keter-rest/internal/auth"
)

// authStore adapts the user repository to the narrow storage capability the
// auth service consumes.
type authStore struct {
	repo Repo
}

func NewAuthStore(repo Repo) auth.UserStore {
	return &authStore{repo: repo}
}

func (s *authStore) GetByEmail(ctx context.Context, email string) (*auth.StoredUser, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.StoredUser{ID: u.ID, Email: u.Email, Password: u.Password}, nil
}

func (s *authStore) GetWithPermissions(ctx context.Context, id int32) (*auth.StoredUser, error) {
	u, err := s.repo.GetWithPermissions(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &auth.StoredUser{
		ID:          u.ID,
		Email:       u.Email,
		Password:    u.Password,
		Permissions: u.Permissions,
	}, nil
}
