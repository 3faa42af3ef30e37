// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
)

// NatsMessage adapts a *nats.Msg to the domain.Message interface so handlers
// stay decoupled from the NATS client types.
type NatsMessage struct {
	msg *nats.Msg
}

// NewNatsMessage wraps an incoming NATS message.
func NewNatsMessage(msg *nats.Msg) *NatsMessage {
	return &NatsMessage{msg: msg}
}

// Subject returns the subject the message was received on.
func (m *NatsMessage) Subject() string {
	return m.msg.Subject
}

// Data returns the raw message payload.
func (m *NatsMessage) Data() []byte {
	return m.msg.Data
}

// Respond sends a reply if the message carries a reply subject.
func (m *NatsMessage) Respond(data []byte) error {
	return m.msg.Respond(data)
}

// HasReply reports whether the sender expects a response.
func (m *NatsMessage) HasReply() bool {
	return m.msg.Reply != ""
}

var _ domain.Message = (*NatsMessage)(nil)
