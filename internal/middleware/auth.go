// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const userKey ctxKey = "user"

// APIKey rejects requests whose apikey header does not carry key.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("apikey") != key {
				WriteError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerAuth is a middleware that authenticates the bearer token of a request.
//
// A token equal to anonKey passes as an anonymous request. Any other token
// must be an HS256 JWT signed with secret and not expired at now(); its
// subject is stored in the request context as the authenticated user ID.
func BearerAuth(secret []byte, anonKey string, now func() time.Time) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
		jwt.WithExpirationRequired(),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if token == anonKey {
				next.ServeHTTP(w, r)
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			})
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				WriteError(w, http.StatusUnauthorized, "JWT expired")
				return
			case err != nil || claims.Subject == "":
				WriteError(w, http.StatusUnauthorized, "invalid JWT")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the user ID (the token subject) from the
// request context. Returns an empty string for anonymous requests.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WriteError writes a JSON error body in the shape the REST API uses.
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
