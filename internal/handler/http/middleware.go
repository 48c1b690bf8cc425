package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/emmanuelnwankwo/api-template/internal/auth"
	"github.com/emmanuelnwankwo/api-template/pkg/httputil"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the verified token claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// tokenFromRequest extracts the session token, checking in precedence order:
// Authorization bearer header, "token" cookie, x-access-token header, then a
// "token" field in the JSON body. The body is restored after reading so
// handlers can still decode it.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}

	if h := r.Header.Get("x-access-token"); h != "" {
		return h
	}

	if r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err == nil {
			r.Body = io.NopCloser(bytes.NewReader(body))
			var payload struct {
				Token string `json:"token"`
			}
			if json.Unmarshal(body, &payload) == nil {
				return payload.Token
			}
		}
	}

	return ""
}

// Authenticate gates routes behind a valid session token. When the route
// carries a userId parameter, the token's identity must match it: a valid
// token for a different account is rejected.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				httputil.Fail(w, http.StatusUnauthorized, "Access denied, Token required")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				httputil.Fail(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			if userID := chi.URLParam(r, "userId"); userID != "" && userID != claims.ID {
				httputil.Fail(w, http.StatusUnauthorized, "Access denied, check Url")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				httputil.Fail(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
