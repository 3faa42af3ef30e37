// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package webhook verifies inbound call-provider webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// StreamWebhookValidator verifies call-provider webhook signatures. The
// provider signs the raw request body with HMAC-SHA256 using the API secret
// and echoes the API key in a companion header.
type StreamWebhookValidator struct {
	apiKey    string
	apiSecret string
}

// NewStreamWebhookValidator creates a webhook validator for the given credentials.
func NewStreamWebhookValidator(apiKey, apiSecret string) *StreamWebhookValidator {
	return &StreamWebhookValidator{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// ValidateSignature verifies the hex HMAC-SHA256 signature over the raw body
// and checks the echoed API key. Verification happens before the body is
// parsed, so a tampered payload never reaches the event decoder.
func (v *StreamWebhookValidator) ValidateSignature(body []byte, signature, apiKey string) error {
	if v.apiSecret == "" {
		return fmt.Errorf("webhook secret not configured")
	}

	if signature == "" {
		return fmt.Errorf("missing webhook signature")
	}

	if apiKey == "" {
		return fmt.Errorf("missing webhook api key")
	}

	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(v.apiKey)) != 1 {
		return fmt.Errorf("webhook api key mismatch")
	}

	h := hmac.New(sha256.New, []byte(v.apiSecret))
	h.Write(body)
	expected := hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("invalid webhook signature")
	}

	return nil
}
