// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// MeetingLifecycleSender publishes meeting state transitions for downstream
// processors.
type MeetingLifecycleSender interface {
	SendMeetingStarted(ctx context.Context, data models.MeetingLifecycleMessage) error
	SendMeetingProcessing(ctx context.Context, data models.MeetingLifecycleMessage) error
}

// WebhookValidator authenticates inbound webhook deliveries against the raw
// request body.
type WebhookValidator interface {
	// ValidateSignature verifies the signature over the raw, unparsed body.
	// Any missing input or verification failure is an error (fails closed).
	ValidateSignature(body []byte, signature, apiKey string) error
}
