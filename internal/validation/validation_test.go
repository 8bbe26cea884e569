// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canonical/tenant-auth/internal/apierror"
)

type request struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Password string `json:"password" validate:"required"`
}

func TestValidator_DecodeJSON(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectErr       bool
		expectedDetails map[string]any
	}{
		{
			name: "valid",
			body: `{"username":"admin","password":"secret"}`,
		},
		{
			name:            "malformed",
			body:            `{"username":`,
			expectErr:       true,
			expectedDetails: map[string]any{"body": "malformed JSON"},
		},
		{
			name:            "unknown field",
			body:            `{"username":"admin","password":"secret","admin":true}`,
			expectErr:       true,
			expectedDetails: map[string]any{"body": "malformed JSON"},
		},
		{
			name:            "rules broken",
			body:            `{"username":"ab"}`,
			expectErr:       true,
			expectedDetails: map[string]any{"username": "min=3", "password": "required"},
		},
	}

	v := NewValidator()

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(test.body))

			var dst request
			err := v.DecodeJSON(req, &dst)

			if !test.expectErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var apiErr *apierror.Error
			if !errors.As(err, &apiErr) || apiErr.Kind != apierror.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}

			for k, v := range test.expectedDetails {
				if apiErr.Details[k] != v {
					t.Errorf("expected detail %s=%v, got %v", k, v, apiErr.Details[k])
				}
			}
		})
	}
}
