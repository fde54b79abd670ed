package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeLoginService struct {
	token string
	err   error
	email string
}

func (f *fakeLoginService) Login(_ context.Context, email, _ string) (string, error) {
	f.email = email
	return f.token, f.err
}

func (f *fakeLoginService) ResolveIdentity(_ context.Context, _ string) (Identity, error) {
	return Identity{}, nil
}

func postLogin(t *testing.T, h Handler, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	return rr
}

func TestLoginReturnsAccessToken(t *testing.T) {
	svc := &fakeLoginService{token: "signed-token"}
	h := NewHandler(svc, zap.NewNop())

	rr := postLogin(t, h, "application/json", `{"email":"a@b.com","password":"secret"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var envelope struct {
		Data loginResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "signed-token" {
		t.Fatalf("unexpected token: %q", envelope.Data.AccessToken)
	}
	if svc.email != "a@b.com" {
		t.Fatalf("service received email %q", svc.email)
	}
}

func TestLoginUnknownEmailIs404(t *testing.T) {
	h := NewHandler(&fakeLoginService{err: ErrUserNotFound}, zap.NewNop())

	rr := postLogin(t, h, "application/json", `{"email":"ghost@b.com","password":"secret"}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "No user found with email: ghost@b.com" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestLoginBadPasswordIs401(t *testing.T) {
	h := NewHandler(&fakeLoginService{err: ErrInvalidCredentials}, zap.NewNop())

	rr := postLogin(t, h, "application/json", `{"email":"a@b.com","password":"wrong"}`)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "Invalid username or password" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestLoginRejectsWrongContentType(t *testing.T) {
	h := NewHandler(&fakeLoginService{}, zap.NewNop())

	rr := postLogin(t, h, "text/plain", `{"email":"a@b.com","password":"secret"}`)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
}

func TestLoginValidation(t *testing.T) {
	h := NewHandler(&fakeLoginService{}, zap.NewNop())

	cases := []struct {
		name string
		body string
	}{
		{"missing password", `{"email":"a@b.com"}`},
		{"bad email", `{"email":"not-an-email","password":"secret"}`},
		{"unknown field", `{"email":"a@b.com","password":"secret","extra":1}`},
		{"trailing data", `{"email":"a@b.com","password":"secret"}{}`},
		{"not json", `email=a@b.com`},
	}
	for _, tc := range cases {
		rr := postLogin(t, h, "application/json", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rr.Code)
		}
	}
}
