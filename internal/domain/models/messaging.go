// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects used by the meeting service.
const (
	// MeetingStartedSubject announces that a meeting went active.
	MeetingStartedSubject = "meetai.meetings.started"

	// MeetingProcessingSubject announces that a call ended and the meeting is
	// awaiting post-processing (transcription, summarization).
	MeetingProcessingSubject = "meetai.meetings.processing"

	// MeetingGetTitleSubject is the request/reply subject for meeting title lookups.
	MeetingGetTitleSubject = "meetai.meetings.get_title"

	// AgentGetNameSubject is the request/reply subject for agent name lookups.
	AgentGetNameSubject = "meetai.agents.get_name"

	// MeetingReconcileSubject triggers a sweep that repairs meetings stranded
	// in the active state after a partial failure.
	MeetingReconcileSubject = "meetai.meetings.reconcile"
)

// MeetingLifecycleMessage is published on meeting state transitions so that
// downstream processors can react without polling the store. Encoded with
// msgpack on the wire.
type MeetingLifecycleMessage struct {
	MeetingUID string        `msgpack:"meeting_uid"`
	AgentUID   string        `msgpack:"agent_uid"`
	Status     MeetingStatus `msgpack:"status"`
	OccurredAt time.Time     `msgpack:"occurred_at"`
	// Tags are search terms the indexer stores alongside the transition.
	Tags []string `msgpack:"tags,omitempty"`
}
