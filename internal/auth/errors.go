package auth

import "errors"

var (
	ErrUserNotFound       = errors.New("no user found with that email")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid authorization token")
	ErrExpiredToken       = errors.New("expired authorization token")
	ErrTokenCreation      = errors.New("failed to create access token")
)
