// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SecurityLogger writes structured security events, each carrying a "type" of security
// and an OWASP event name
type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) SystemStartup() {
	s.log(zapcore.InfoLevel, "sys_startup", "application started")
}

func (s *SecurityLogger) SystemShutdown() {
	s.log(zapcore.InfoLevel, "sys_shutdown", "application shutting down")
}

func (s *SecurityLogger) AuthnLoginSuccess(tenant, user string) {
	s.log(zapcore.InfoLevel, fmt.Sprintf("authn_login_success:%s", user), "user logged in", zap.String("tenant", tenant))
}

func (s *SecurityLogger) AuthnLoginFail(tenant, user string) {
	s.log(zapcore.WarnLevel, fmt.Sprintf("authn_login_fail:%s", user), "user login failed", zap.String("tenant", tenant))
}

func (s *SecurityLogger) AuthnTokenReuse(tenant, user string) {
	s.log(zapcore.WarnLevel, fmt.Sprintf("authn_token_reuse:%s", user), "revoked refresh token presented", zap.String("tenant", tenant))
}

func (s *SecurityLogger) AuthnTokenRevoked(tenant, user string) {
	s.log(zapcore.InfoLevel, fmt.Sprintf("authn_token_revoked:%s", user), "refresh token revoked", zap.String("tenant", tenant))
}

func (s *SecurityLogger) AuthzFailure(user, resource string) {
	s.log(zapcore.WarnLevel, fmt.Sprintf("authz_fail:%s,%s", user, resource), "access denied")
}

func (s *SecurityLogger) log(level zapcore.Level, event, description string, fields ...zap.Field) {
	fields = append(fields, zap.String("type", "security"), zap.String("event", event))

	if ce := s.l.Check(level, description); ce != nil {
		ce.Write(fields...)
	}
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l}
}
