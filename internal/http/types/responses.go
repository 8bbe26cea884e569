// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the standard json body of every failed request
type ErrorResponse struct {
	Timestamp string         `json:"timestamp"`
	Status    int            `json:"status"`
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

func NewErrorResponse(status int, code, message string, details map[string]any, now time.Time) *ErrorResponse {
	return &ErrorResponse{
		Timestamp: now.UTC().Format(time.RFC3339),
		Status:    status,
		Code:      code,
		Message:   message,
		Details:   details,
	}
}

// WriteJSON encodes v with the given status, a nil v only writes the status line
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	if v == nil {
		w.WriteHeader(status)
		return nil
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}
