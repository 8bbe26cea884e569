// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package apierror

import (
	"net/http"
	"time"

	"google.golang.org/grpc/status"

	"github.com/canonical/tenant-auth/internal/http/types"
	"github.com/canonical/tenant-auth/internal/logging"
)

// Write renders err as the standard error response, internal errors are logged and
// their cause is hidden from the client
func Write(w http.ResponseWriter, err error, logger logging.LoggerInterface) {
	e := From(err)

	if e.Kind == KindInternal {
		logger.Errorf("request failed: %v", err)
	}

	response := types.NewErrorResponse(e.Status(), string(e.Kind), e.Message(), e.Details, time.Now())

	if err := types.WriteJSON(w, e.Status(), response); err != nil {
		logger.Errorf("failed to encode error response: %v", err)
	}
}

// GRPCStatus converts err into a gRPC status error carrying the kind as message prefix
func GRPCStatus(err error) error {
	e := From(err)
	return status.Errorf(Code(e.Kind), "%s: %s", e.Kind, e.Message())
}
