// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/canonical/tenant-auth/pkg/tokens"
)

func TestVerifyToken(t *testing.T) {
	codec, err := tokens.NewCodec("0123456789abcdef0123456789abcdef", "tenant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	access, _ := codec.IssueAccess("admin", "acme", []string{"ROLE_ADMIN"}, time.Minute)
	refresh, _ := codec.IssueRefresh("admin", "acme", "jti-1", time.Minute)

	tests := []struct {
		name     string
		token    string
		expected claimsOutput
		wantErr  bool
	}{
		{name: "access", token: access, expected: claimsOutput{Kind: tokens.KindAccess.String(), Subject: "admin", Tenant: "acme", Authorities: []string{"ROLE_ADMIN"}}},
		{name: "refresh", token: refresh, expected: claimsOutput{Kind: tokens.KindRefresh.String(), Subject: "admin", Tenant: "acme", JTI: "jti-1"}},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := new(bytes.Buffer)

			err := verifyToken(codec, test.token, out)
			if test.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var got claimsOutput
			if err := json.Unmarshal(out.Bytes(), &got); err != nil {
				t.Fatalf("failed to decode output: %v", err)
			}

			if got.Kind != test.expected.Kind || got.Subject != test.expected.Subject || got.Tenant != test.expected.Tenant || got.JTI != test.expected.JTI {
				t.Fatalf("expected %+v, got %+v", test.expected, got)
			}

			if len(got.Authorities) != len(test.expected.Authorities) {
				t.Fatalf("expected authorities %v, got %v", test.expected.Authorities, got.Authorities)
			}

			if !got.ExpiresAt.After(got.IssuedAt) {
				t.Fatalf("expected expiry after issuance, got %v / %v", got.IssuedAt, got.ExpiresAt)
			}
		})
	}
}

func TestMigrateArgs(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{args: nil},
		{args: []string{"up"}},
		{args: []string{"down", "3"}},
		{args: []string{"status"}},
		{args: []string{"sideways"}, wantErr: true},
		{args: []string{"up", "3"}, wantErr: true},
		{args: []string{"down", "-1"}, wantErr: true},
	}

	validate := customValidArgs()

	for _, test := range tests {
		if err := validate(migrateCmd, test.args); (err != nil) != test.wantErr {
			t.Errorf("args %v: expected error %v, got %v", test.args, test.wantErr, err)
		}
	}
}
