// Package session implements the session stores behind ports.SessionStore.
// Both stores attach the session to the same cookie and differ only in what
// the cookie value holds.
package session

import (
	"net/http"
	"time"
)

const (
	DefaultCookieName = "user"
	DefaultTTL        = 7 * 24 * time.Hour
)

// CookieOptions describes the session cookie attributes.
type CookieOptions struct {
	Name string
	TTL  time.Duration
	// Secure is enabled in production only so local HTTP development works.
	Secure bool
}

// DefaultCookieOptions returns the standard cookie for the given environment.
func DefaultCookieOptions(production bool) CookieOptions {
	return CookieOptions{Name: DefaultCookieName, TTL: DefaultTTL, Secure: production}
}

func (o CookieOptions) withDefaults() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	return o
}

func (o CookieOptions) write(w http.ResponseWriter, value string, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		Expires:  now.Add(o.TTL),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// value returns the cookie value, or "" when the cookie is absent.
func (o CookieOptions) value(r *http.Request) string {
	c, err := r.Cookie(o.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
