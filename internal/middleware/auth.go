// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/dkorobov/taskdeck/internal/security"
	"github.com/dkorobov/taskdeck/internal/session"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Auth is a middleware that resolves the caller's identity from the session
// cookie. The token is decoded and validated; on success the identity is
// stored in the request context for downstream handlers.
//
// Every failure (missing cookie, corrupt token, expired token) produces the
// same 401 response with a bearer challenge, so a caller cannot tell which
// check rejected it.
func Auth(codec *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := session.Read(r)
			if !ok {
				Unauthorized(w)
				return
			}
			identity, ok := codec.Decode(token)
			if !ok {
				Unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Unauthorized writes the uniform authentication-failure response.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"could not validate credentials"}`))
}

// IdentityFromContext extracts the resolved identity from the request
// context. ok is false if the request did not pass the Auth middleware.
func IdentityFromContext(ctx context.Context) (security.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(security.Identity)
	return identity, ok
}
