// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugLogger(t *testing.T) {
	logger := NewLogger("DEBUG")

	if !logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestInvalidLevel(t *testing.T) {
	logger := NewLogger("invalid")

	if logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected unknown level to fall back to error")
	}
}

func TestSecurityLoggerEvents(t *testing.T) {
	tests := []struct {
		name          string
		emit          func(SecurityLoggerInterface)
		expectedEvent string
		expectedLevel zapcore.Level
	}{
		{
			name:          "login success",
			emit:          func(s SecurityLoggerInterface) { s.AuthnLoginSuccess("default", "admin") },
			expectedEvent: "authn_login_success:admin",
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "login failure",
			emit:          func(s SecurityLoggerInterface) { s.AuthnLoginFail("default", "admin") },
			expectedEvent: "authn_login_fail:admin",
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "token reuse",
			emit:          func(s SecurityLoggerInterface) { s.AuthnTokenReuse("acme", "user") },
			expectedEvent: "authn_token_reuse:user",
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "authorization failure",
			emit:          func(s SecurityLoggerInterface) { s.AuthzFailure("user", "GET /api/users") },
			expectedEvent: "authz_fail:user,GET /api/users",
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "startup",
			emit:          func(s SecurityLoggerInterface) { s.SystemStartup() },
			expectedEvent: "sys_startup",
			expectedLevel: zapcore.InfoLevel,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			s := newSecurityLogger(zap.New(core))

			test.emit(s)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}

			entry := entries[0]
			if entry.Level != test.expectedLevel {
				t.Errorf("expected level %v, got %v", test.expectedLevel, entry.Level)
			}

			fields := entry.ContextMap()
			if fields["event"] != test.expectedEvent {
				t.Errorf("expected event %q, got %v", test.expectedEvent, fields["event"])
			}
			if fields["type"] != "security" {
				t.Errorf("expected type security, got %v", fields["type"])
			}
		})
	}
}

func TestNoopLogger(t *testing.T) {
	logger := NewNoopLogger()

	logger.Infof("discarded %s", "entry")
	logger.Security().AuthnLoginFail("default", "admin")

	if err := logger.Sync(); err != nil {
		t.Fatalf("unexpected sync error: %v", err)
	}
}
