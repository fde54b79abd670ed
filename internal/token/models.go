package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload of an access token. The subject is the
// numeric user id; permissions are never embedded, they are re-resolved
// from storage on every request.
type Claims struct {
	UserID    int32  `json:"sub"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c Claims) GetIssuer() (string, error) { return "", nil }

func (c Claims) GetSubject() (string, error) { return "", nil }

func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }
