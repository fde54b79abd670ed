package token

import (
	"errors"
	"testing"
	"time"

	"github.com/keterhq/keter-rest/internal/config"
	"go.uber.org/zap"
)

func newTestService(secret string, ttl time.Duration, now *time.Time) *Service {
	cfg := &config.JWTConfig{Secret: secret, AccessTTL: ttl}
	return NewService(cfg, zap.NewNop(), WithClock(func() time.Time { return *now }))
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService("test-secret", time.Hour, &now)

	signed, err := svc.Issue(7, "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("unexpected subject: %d", claims.UserID)
	}
	if claims.Email != "a@b.com" {
		t.Fatalf("unexpected email: %s", claims.Email)
	}
	if claims.IssuedAt != now.Unix() {
		t.Fatalf("unexpected iat: %d", claims.IssuedAt)
	}
	if claims.ExpiresAt != now.Add(time.Hour).Unix() {
		t.Fatalf("unexpected exp: %d", claims.ExpiresAt)
	}
}

func TestVerifyExpiryBoundaries(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	ttl := 30 * time.Minute
	svc := newTestService("test-secret", ttl, &now)

	signed, err := svc.Issue(7, "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = issuedAt.Add(ttl - time.Second)
	if _, err := svc.Verify(signed); err != nil {
		t.Fatalf("token should still be valid just before expiry: %v", err)
	}

	now = issuedAt.Add(ttl + time.Second)
	if _, err := svc.Verify(signed); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired past expiry, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService("issuing-secret", time.Hour, &now)
	verifier := newTestService("other-secret", time.Hour, &now)

	signed, err := issuer.Issue(7, "a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for mismatched secret, got %v", err)
	}

	// Even an expired token must fail as invalid when the secret does not
	// match; the signature check decides first.
	now = now.Add(48 * time.Hour)
	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService("test-secret", time.Hour, &now)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := svc.Verify(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", raw, err)
		}
	}
}
