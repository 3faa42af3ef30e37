// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package handlers exposes the service over HTTP and NATS.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "error encoding response body", logging.ErrKey, err)
	}
}

// httpStatusFor maps the semantic error taxonomy onto HTTP status codes.
func httpStatusFor(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := httpStatusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", logging.ErrKey, err)
		// Internal detail stays out of the response body.
		writeJSON(ctx, w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	slog.WarnContext(ctx, "request rejected", logging.ErrKey, err)
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

func decodeJSONBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("invalid request body", err)
	}
	return nil
}
