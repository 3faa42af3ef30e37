// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package middleware holds the HTTP middleware chain.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/pkg/constants"
)

// RequestIDMiddleware tags every request with a correlation ID. An inbound
// X-Request-Id is honored so callers can trace across services; otherwise a
// fresh UUID is generated. The ID is echoed on the response and attached to
// every log line of the request.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, constants.RequestIDContextKey, requestID)
			ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))

			w.Header().Set(constants.RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
