// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
)

type fakeNatsConn struct {
	connected  bool
	publishErr error

	subjects []string
	payloads [][]byte
}

func (f *fakeNatsConn) IsConnected() bool { return f.connected }

func (f *fakeNatsConn) Publish(subj string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestMessageBuilderSendMeetingStarted(t *testing.T) {
	conn := &fakeNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	now := time.Now().UTC().Truncate(time.Second)
	msg := models.MeetingLifecycleMessage{
		MeetingUID: "meeting-1",
		AgentUID:   "agent-1",
		Status:     models.MeetingStatusActive,
		OccurredAt: now,
	}

	err := builder.SendMeetingStarted(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, conn.subjects, 1)
	assert.Equal(t, models.MeetingStartedSubject, conn.subjects[0])

	var decoded models.MeetingLifecycleMessage
	require.NoError(t, msgpack.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, msg.MeetingUID, decoded.MeetingUID)
	assert.Equal(t, msg.Status, decoded.Status)
}

func TestMessageBuilderSendMeetingProcessing(t *testing.T) {
	conn := &fakeNatsConn{connected: true}
	builder := NewMessageBuilder(conn)

	err := builder.SendMeetingProcessing(context.Background(), models.MeetingLifecycleMessage{
		MeetingUID: "meeting-1",
		Status:     models.MeetingStatusProcessing,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, conn.subjects, 1)
	assert.Equal(t, models.MeetingProcessingSubject, conn.subjects[0])
}

func TestMessageBuilderPublishError(t *testing.T) {
	conn := &fakeNatsConn{connected: true, publishErr: errors.New("nats down")}
	builder := NewMessageBuilder(conn)

	err := builder.SendMeetingStarted(context.Background(), models.MeetingLifecycleMessage{MeetingUID: "meeting-1"})
	assert.Error(t, err)
}
