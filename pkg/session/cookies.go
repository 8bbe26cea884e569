// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const RefreshCookieName = "refresh_token"

type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// ParseSameSite maps the configured policy name to http.SameSite, matching is case insensitive
func ParseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax", "":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("unknown samesite policy %q", v)
	}
}

// CookieManager carries the refresh token between client and server
type CookieManager struct {
	cfg CookieConfig
}

func (c *CookieManager) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, c.cookie(token, int(ttl.Seconds())))
}

// Clear instructs the client to drop the cookie immediately
func (c *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

// Read returns the refresh token sent by the client, empty when absent
func (c *CookieManager) Read(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *CookieManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Domain:   c.cfg.Domain,
		Path:     c.cfg.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.cfg.SameSite,
	}
}

func NewCookieManager(cfg CookieConfig) (*CookieManager, error) {
	if cfg.SameSite == http.SameSiteNoneMode && !cfg.Secure {
		return nil, errors.New("samesite=none requires secure cookies")
	}

	if cfg.Path == "" {
		cfg.Path = "/"
	}

	return &CookieManager{cfg: cfg}, nil
}
