package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/keterhq/keter-rest/internal/config"
	"go.uber.org/zap"
)

var (
	// ErrExpired is returned when the token signature is valid but the
	// expiry has passed. It is the only verification failure callers may
	// distinguish; everything else collapses into ErrInvalid.
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// Service signs and verifies access tokens with a shared HS256 secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source. Useful for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg *config.JWTConfig, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		secret: []byte(cfg.Secret),
		ttl:    cfg.AccessTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for the given user. The claims carry issued-at and
// expiry as unix seconds; expiry is issued-at plus the configured TTL.
func (s *Service) Issue(userID int32, email string) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return "", err
	}
	return signed, nil
}

// Verify parses and validates a token string and returns its claims.
func (s *Service) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	return &claims, nil
}
