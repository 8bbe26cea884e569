// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tokens signs and verifies the access and refresh tokens issued by the service.
package tokens

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/tenant-auth/internal/apierror"
)

const (
	MinSecretLength = 32

	claimSubject     = "sub"
	claimAuthorities = "authorities"
	claimJTI         = "jti"
	claimIssuedAt    = "iat"
	claimExpiresAt   = "exp"
)

var reservedClaims = []string{claimSubject, claimAuthorities, claimJTI, claimIssuedAt, claimExpiresAt, "nbf", "aud", "iss"}

type Option func(*Codec)

// WithClock replaces the time source used for issuing and validating tokens
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// Codec issues and verifies HS256 tokens, it holds no state besides the key
type Codec struct {
	secret      []byte
	tenantClaim string
	now         func() time.Time
}

func (c *Codec) IssueAccess(subject, tenant string, authorities []string, ttl time.Duration) (string, error) {
	claims, err := c.baseClaims(subject, tenant, ttl)
	if err != nil {
		return "", err
	}

	claims[claimAuthorities] = normalize(authorities)

	return c.sign(claims)
}

func (c *Codec) IssueRefresh(subject, tenant, jti string, ttl time.Duration) (string, error) {
	if jti == "" {
		return "", errors.New("refresh token requires a jti")
	}

	claims, err := c.baseClaims(subject, tenant, ttl)
	if err != nil {
		return "", err
	}

	claims[claimJTI] = jti

	return c.sign(claims)
}

// Verify checks signature, algorithm and expiry and returns the claims of either token kind
func (c *Codec) Verify(token string) (*Claims, error) {
	parsed, err := jwt.Parse(
		token,
		c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindTokenInvalid, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, apierror.ErrTokenInvalid
	}

	claims, err := c.fromMapClaims(mc)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindTokenInvalid, err)
	}

	return claims, nil
}

// VerifyAccess is Verify restricted to access tokens, a refresh token is rejected
func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return c.verifyKind(token, KindAccess)
}

// VerifyRefresh is Verify restricted to refresh tokens, an access token is rejected
func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	return c.verifyKind(token, KindRefresh)
}

func (c *Codec) ExtractTenant(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Tenant, nil
}

func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) ExtractJTI(token string) (string, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.JTI, nil
}

func (c *Codec) verifyKind(token string, kind Kind) (*Claims, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return nil, err
	}

	if claims.Kind != kind {
		return nil, apierror.Wrap(apierror.KindTokenInvalid, fmt.Errorf("expected %s token, got %s", kind, claims.Kind))
	}

	return claims, nil
}

func (c *Codec) baseClaims(subject, tenant string, ttl time.Duration) (jwt.MapClaims, error) {
	if subject == "" {
		return nil, errors.New("token subject is required")
	}

	if tenant == "" {
		return nil, errors.New("token tenant is required")
	}

	now := c.now()

	return jwt.MapClaims{
		claimSubject:   subject,
		c.tenantClaim:  tenant,
		claimIssuedAt:  jwt.NewNumericDate(now),
		claimExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}, nil
}

func (c *Codec) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (c *Codec) keyFunc(_ *jwt.Token) (interface{}, error) {
	return c.secret, nil
}

func (c *Codec) fromMapClaims(mc jwt.MapClaims) (*Claims, error) {
	claims := new(Claims)

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, errors.New("missing subject")
	}
	claims.Subject = sub

	if raw, ok := mc[c.tenantClaim]; ok {
		tenant, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("claim %q is not a string", c.tenantClaim)
		}
		claims.Tenant = tenant
	}

	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing expiry")
	}
	claims.ExpiresAt = exp.Time

	rawAuthorities, hasAuthorities := mc[claimAuthorities]
	rawJTI, hasJTI := mc[claimJTI]

	switch {
	case hasAuthorities && !hasJTI:
		list, ok := rawAuthorities.([]interface{})
		if !ok {
			return nil, errors.New("authorities claim is not an array")
		}

		claims.Authorities = make([]string, 0, len(list))
		for _, a := range list {
			s, ok := a.(string)
			if !ok {
				return nil, errors.New("authorities claim holds a non string value")
			}
			claims.Authorities = append(claims.Authorities, s)
		}
		claims.Kind = KindAccess
	case hasJTI && !hasAuthorities:
		jti, ok := rawJTI.(string)
		if !ok || jti == "" {
			return nil, errors.New("jti claim is empty")
		}
		claims.JTI = jti
		claims.Kind = KindRefresh
	default:
		return nil, errors.New("token is neither an access nor a refresh token")
	}

	return claims, nil
}

// normalize returns a sorted copy without duplicates, never nil
func normalize(authorities []string) []string {
	out := make([]string, 0, len(authorities))
	out = append(out, authorities...)
	slices.Sort(out)
	return slices.Compact(out)
}

// NewCodec returns a codec signing with secret, tenantClaim names the claim carrying the tenant
func NewCodec(secret, tenantClaim string, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}

	if tenantClaim == "" || slices.Contains(reservedClaims, tenantClaim) {
		return nil, fmt.Errorf("invalid tenant claim name %q", tenantClaim)
	}

	c := &Codec{
		secret:      []byte(secret),
		tenantClaim: tenantClaim,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
