package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/keterhq/keter-rest/internal/config"
	"github.com/keterhq/keter-rest/internal/permission"
	"github.com/keterhq/keter-rest/internal/token"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RootUserID is the reserved subject id of the built-in administrative
// identity. The users table generates ids from 1, so no stored row can ever
// take it.
const RootUserID int32 = 0

// Service is the only component that mints tokens or maps a token back to
// an authorized identity.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
	ResolveIdentity(ctx context.Context, raw string) (Identity, error)
}

type service struct {
	tokens    *token.Service
	users     UserStore
	rootEmail string
	rootHash  string
	logger    *zap.Logger
}

func NewService(tokens *token.Service, users UserStore, root *config.RootConfig, logger *zap.Logger) (Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(root.Password), root.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash root password: %w", err)
	}
	return &service{
		tokens:    tokens,
		users:     users,
		rootEmail: root.Email,
		rootHash:  string(hash),
		logger:    logger,
	}, nil
}

// Login checks the credentials against the stored (or root) hash and issues
// an access token. A password mismatch always maps to ErrInvalidCredentials
// regardless of which candidate failed.
func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	candidateID := RootUserID
	candidateEmail := s.rootEmail
	candidateHash := s.rootHash

	if email != s.rootEmail {
		existing, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return "", ErrUserNotFound
			}
			s.logger.Error("login lookup failed", zap.Error(err))
			return "", err
		}
		candidateID = existing.ID
		candidateEmail = existing.Email
		candidateHash = existing.Password
	}

	if err := bcrypt.CompareHashAndPassword([]byte(candidateHash), []byte(password)); err != nil {
		s.logger.Debug("password verification failed", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(candidateID, candidateEmail)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	return signed, nil
}

// ResolveIdentity verifies the token, re-fetches the subject from storage
// and cross-checks the claims against the row. Resolution is all-or-nothing;
// no partial identity is ever returned.
func (s *service) ResolveIdentity(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return Identity{}, ErrExpiredToken
		}
		return Identity{}, ErrInvalidToken
	}

	// The root identity has no storage row and cannot be revoked by
	// deleting one.
	if claims.UserID == RootUserID {
		return rootIdentity(claims.Email), nil
	}

	stored, err := s.users.GetWithPermissions(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// A deleted account's still-valid token must not resolve.
			return Identity{}, ErrInvalidToken
		}
		s.logger.Error("identity lookup failed", zap.Int32("user_id", claims.UserID), zap.Error(err))
		return Identity{}, err
	}

	// The token is bound to the email it was issued for, not just the id.
	if stored.Email != claims.Email {
		s.logger.Debug("token email mismatch", zap.Int32("user_id", claims.UserID))
		return Identity{}, ErrInvalidToken
	}

	return NewIdentity(stored.ID, stored.Email, stored.Permissions), nil
}

func rootIdentity(email string) Identity {
	set := make(map[permission.Kind]struct{})
	for _, k := range permission.All() {
		set[k] = struct{}{}
	}
	return Identity{UserID: RootUserID, Email: email, Permissions: set}
}
