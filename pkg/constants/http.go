// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package constants defines shared constant values.
package constants

// RequestIDHeader carries the per-request correlation identifier.
const RequestIDHeader = "X-Request-Id"

// Webhook headers sent by the call provider.
const (
	// WebhookSignatureHeader holds the hex HMAC-SHA256 of the raw body.
	WebhookSignatureHeader = "X-Signature"
	// WebhookAPIKeyHeader echoes the API key the webhook was signed for.
	WebhookAPIKeyHeader = "X-Api-Key"
)

type contextKey string

// RequestIDContextKey stores the request ID in a request context.
const RequestIDContextKey contextKey = "request_id"
