package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookies splits a player token into a script-readable "auth" cookie
// (header and payload) and an HttpOnly "sign" cookie (signature).
type Cookies struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	jwt      *JWT
}

func NewCookies(j *JWT) (*Cookies, error) {
	domain, err := lookup("COOKIES_DOMAIN")
	if err != nil {
		return nil, err
	}

	secureStr, err := lookup("COOKIES_SECURE")
	if err != nil {
		return nil, err
	}

	sameSiteStr, err := lookup("COOKIES_SAMESITE")
	if err != nil {
		return nil, err
	}
	sameSite, err := parseSameSite(sameSiteStr)
	if err != nil {
		return nil, err
	}

	return NewCookiesWith(j, domain, secureStr != "0", sameSite), nil
}

func NewCookiesWith(j *JWT, domain string, secure bool, sameSite http.SameSite) *Cookies {
	return &Cookies{
		Domain:   domain,
		Secure:   secure,
		SameSite: sameSite,
		jwt:      j,
	}
}

func parseSameSite(s string) (http.SameSite, error) {
	switch strings.ToUpper(s) {
	case "DEFAULT":
		return http.SameSiteDefaultMode, nil
	case "LAX":
		return http.SameSiteLaxMode, nil
	case "STRICT":
		return http.SameSiteStrictMode, nil
	case "NONE":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("COOKIES_SAMESITE must be one of default, lax, strict, none")
	}
}

func (c *Cookies) set(w http.ResponseWriter, name, value string, expires time.Time, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     "/",
		Value:    value,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Domain:   c.Domain,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	})
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	c.set(w, "auth", "delete", time.Time{}, -1, false)
	c.set(w, "sign", "delete", time.Time{}, -1, true)
}

// Refresh signs claims and stores the token in the response cookies.
func (c *Cookies) Refresh(w http.ResponseWriter, claims *PlayerClaims) error {
	token, err := c.jwt.Sign(claims)
	if err != nil {
		return fmt.Errorf("unable to sign player claims: %w", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("malformed JWT token generated")
	}
	header, payload, signature := parts[0], parts[1], parts[2]
	expires := time.Now().Add(c.jwt.TokenLifetime)
	c.set(w, "auth", header+"."+payload, expires, 0, false)
	c.set(w, "sign", signature, expires, 0, true)
	return nil
}

func (c *Cookies) ParsePlayerClaims(r *http.Request) (*PlayerClaims, error) {
	authCookie, err := r.Cookie("auth")
	if err != nil {
		return nil, err
	}
	signCookie, err := r.Cookie("sign")
	if err != nil {
		return nil, err
	}
	token, err := c.jwt.ParseWithClaims(
		authCookie.Value+"."+signCookie.Value, &PlayerClaims{},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*PlayerClaims)
	if !ok {
		return nil, fmt.Errorf("malformed claims")
	}
	return claims, nil
}
