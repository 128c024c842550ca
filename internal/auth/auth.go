// Package auth verifies sessions issued by the managed auth service and
// gates mutating endpoints behind an allow-list of admin identities.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Session identifies the signed-in user for the current request.
type Session struct {
	UserID string
	Email  string
}

type contextKey int

const sessionKey contextKey = iota

// sessionClaims is the subset of the auth service's JWT payload we consume.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ParseToken validates a bearer token against the project's JWT secret and
// returns the session it carries.
func ParseToken(tokenString, secret string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return &Session{UserID: claims.Subject, Email: claims.Email}, nil
}

// Sessions is middleware that attaches the session to the request context
// when a valid bearer token is present. Requests without one proceed
// anonymously; reads are public and writes are rejected later by
// RequireMutate.
func Sessions(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				next.ServeHTTP(w, r)
				return
			}
			session, err := ParseToken(tokenString, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentSession returns the session attached to ctx, if any.
func CurrentSession(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey).(*Session)
	return session, ok && session != nil
}

// Authorizer decides whether a session may mutate records.
type Authorizer func(Session) bool

// AllowEmails builds an Authorizer from the configured admin emails,
// compared case-insensitively.
func AllowEmails(emails []string) Authorizer {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = struct{}{}
		}
	}
	return func(s Session) bool {
		_, ok := allowed[strings.ToLower(s.Email)]
		return ok
	}
}

// RequireMutate gates write endpoints: no session yields 401, a session the
// authorizer refuses yields 403.
func RequireMutate(canMutate Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := CurrentSession(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !canMutate(*session) {
				writeAuthError(w, http.StatusForbidden, "read-only access")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}
