package auth

import (
	"net/http"
	"strings"
	"time"
)

const DefaultCookieName = "token"

// CookieConfig describes how the session cookie is scoped.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
}

func (c CookieConfig) CookieName() string {
	if strings.TrimSpace(c.Name) == "" {
		return DefaultCookieName
	}
	return c.Name
}

func ParseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// SessionCookie carries token until expiresAt.
func (c CookieConfig) SessionCookie(token string, expiresAt time.Time, now time.Time) *http.Cookie {
	ck := c.base()
	ck.Value = token
	ck.Expires = expiresAt.UTC()
	if maxAge := int(expiresAt.Sub(now).Seconds()); maxAge > 0 {
		ck.MaxAge = maxAge
	}
	return ck
}

// DeletionCookie instructs the client to drop the session cookie.
func (c CookieConfig) DeletionCookie() *http.Cookie {
	ck := c.base()
	ck.Expires = time.Unix(0, 0).UTC()
	ck.MaxAge = -1
	return ck
}

func (c CookieConfig) base() *http.Cookie {
	ck := &http.Cookie{
		Name:     c.CookieName(),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: ParseSameSite(c.SameSite),
	}
	if strings.TrimSpace(c.Domain) != "" {
		ck.Domain = c.Domain
	}
	return ck
}
