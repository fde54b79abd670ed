package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keterhq/keter-rest/internal/httpx"
	"github.com/keterhq/keter-rest/internal/permission"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	identity Identity
	err      error
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

func (f *fakeAuthService) ResolveIdentity(_ context.Context, _ string) (Identity, error) {
	return f.identity, f.err
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateMissingHeader(t *testing.T) {
	handler := Authenticate(&fakeAuthService{}, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "Missing authorization token" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestAuthenticateMalformedScheme(t *testing.T) {
	handler := Authenticate(&fakeAuthService{}, zap.NewNop())(okHandler())

	for _, header := range []string{"Basic abc", "Bearer", "Bearer   ", "token xyz"} {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rr.Code)
		}
		if body := decodeError(t, rr); body.Message != "Invalid authorization token" {
			t.Fatalf("header %q: unexpected message: %q", header, body.Message)
		}
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	handler := Authenticate(&fakeAuthService{err: ErrExpiredToken}, zap.NewNop())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "Expired authorization token" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestAuthenticateAttachesIdentity(t *testing.T) {
	identity := NewIdentity(7, "a@b.com", []string{"user.read"})
	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		seen = got
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(&fakeAuthService{identity: identity}, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if seen.UserID != 7 || seen.Email != "a@b.com" {
		t.Fatalf("unexpected identity: %+v", seen)
	}
}

func TestRequirePermissionForbidden(t *testing.T) {
	handler := RequirePermission(permission.CreateUser)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), NewIdentity(7, "a@b.com", []string{"user.read"})))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "Missing required permission: user.create" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestRequirePermissionAllows(t *testing.T) {
	handler := RequirePermission(permission.ReadUser)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), NewIdentity(7, "a@b.com", []string{"user.read"})))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequirePermissionConjunctive(t *testing.T) {
	handler := RequirePermission(permission.ReadUser, permission.UpdateUser)(okHandler())

	req := httptest.NewRequest(http.MethodPut, "/users/7", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), NewIdentity(7, "a@b.com", []string{"user.read"})))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when one of the listed permissions is absent, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "Missing required permission: user.update" {
		t.Fatalf("unexpected message: %q", body.Message)
	}

	req = httptest.NewRequest(http.MethodPut, "/users/7", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), NewIdentity(7, "a@b.com", []string{"user.read", "user.update"})))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with all permissions present, got %d", rr.Code)
	}
}

func TestRequirePermissionWithoutIdentity(t *testing.T) {
	handler := RequirePermission(permission.ReadUser)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an authenticate layer, got %d", rr.Code)
	}
}

func TestUnknownIdentityFailsEveryCheck(t *testing.T) {
	identity := NewIdentity(7, "a@b.com", []string{"not-in-catalog"})
	for _, k := range permission.All() {
		handler := RequirePermission(k)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req = req.WithContext(ContextWithIdentity(req.Context(), identity))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Fatalf("permission %s: expected 403, got %d", k, rr.Code)
		}
	}
}
