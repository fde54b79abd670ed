package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/keterhq/keter-rest/internal/httpx"
	"github.com/keterhq/keter-rest/internal/permission"
	"go.uber.org/zap"
)

const bearerScheme = "Bearer "

// Authenticate resolves the bearer token on every request and attaches the
// identity to the request context. On any failure the wrapped handler never
// runs.
func Authenticate(svc Service, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "Missing authorization token")
				return
			}

			raw, ok := bearerToken(header)
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "Invalid authorization token")
				return
			}

			identity, err := svc.ResolveIdentity(r.Context(), raw)
			if err != nil {
				switch {
				case errors.Is(err, ErrExpiredToken):
					httpx.WriteError(w, http.StatusUnauthorized, "Expired authorization token")
				case errors.Is(err, ErrInvalidToken):
					httpx.WriteError(w, http.StatusUnauthorized, "Invalid authorization token")
				default:
					logger.Error("identity resolution failed", zap.Error(err))
					httpx.WriteError(w, http.StatusInternalServerError, err.Error())
				}
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission builds a route interceptor that admits the request only
// when the identity holds every listed permission. It must be composed after
// Authenticate; without an identity in context it rejects with 401.
func RequirePermission(kinds ...permission.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "Missing authorization token")
				return
			}
			for _, k := range kinds {
				if !identity.HasPermission(k) {
					httpx.WriteError(w, http.StatusForbidden, "Missing required permission: "+k.String())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(bearerScheme):])
	if raw == "" {
		return "", false
	}
	return raw, true
}
