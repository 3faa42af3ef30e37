// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package messaging publishes domain messages to the NATS server.
package messaging

import (
	"context"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

// INatsConn is the subset of the NATS connection API the builder needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder encodes domain messages and publishes them to the NATS server.
// Lifecycle messages are msgpack-encoded for the downstream processors.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	if err := m.NatsConn.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

func (m *MessageBuilder) sendLifecycleMessage(ctx context.Context, subject string, data models.MeetingLifecycleMessage) error {
	messageBytes, err := msgpack.Marshal(data)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling lifecycle message", logging.ErrKey, err, "subject", subject)
		return err
	}

	slog.DebugContext(ctx, "publishing meeting lifecycle message",
		"subject", subject,
		"meeting_uid", data.MeetingUID,
		"status", data.Status,
	)

	return m.sendMessage(ctx, subject, messageBytes)
}

// SendMeetingStarted announces that a meeting transitioned to active.
func (m *MessageBuilder) SendMeetingStarted(ctx context.Context, data models.MeetingLifecycleMessage) error {
	return m.sendLifecycleMessage(ctx, models.MeetingStartedSubject, data)
}

// SendMeetingProcessing announces that a meeting left the call and entered
// post-call processing.
func (m *MessageBuilder) SendMeetingProcessing(ctx context.Context, data models.MeetingLifecycleMessage) error {
	return m.sendLifecycleMessage(ctx, models.MeetingProcessingSubject, data)
}
