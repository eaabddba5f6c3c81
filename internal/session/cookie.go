// Package session binds a session token to HTTP requests and responses
// via a cookie.
package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the cookie carrying the session token.
const CookieName = "access_token"

// Carrier writes and clears the session cookie. The cookie is HttpOnly and
// Secure, with SameSite=None so credentialed cross-origin requests work,
// scoped to the whole application, and expires together with the token.
type Carrier struct {
	ttl time.Duration
}

// NewCarrier creates a Carrier whose cookies live for ttl.
func NewCarrier(ttl time.Duration) Carrier {
	return Carrier{ttl: ttl}
}

// Write attaches the token to the response.
func (c Carrier) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Clear expires the cookie on the client. The token itself, if captured
// earlier, stays valid until its natural expiry: there is no revocation list.
func (c Carrier) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Read extracts the token from an incoming request. A missing cookie is not
// an error at this layer; it is reported as "no credential present".
func Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
