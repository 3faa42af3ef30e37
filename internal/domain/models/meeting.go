// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// MeetingStatus is the lifecycle state of a meeting.
type MeetingStatus string

const (
	MeetingStatusUpcoming   MeetingStatus = "upcoming"
	MeetingStatusActive     MeetingStatus = "active"
	MeetingStatusProcessing MeetingStatus = "processing"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s MeetingStatus) Terminal() bool {
	return s == MeetingStatusCompleted || s == MeetingStatusCancelled
}

// Meeting is the key-value store representation of a meeting.
type Meeting struct {
	UID       string        `json:"uid"`
	AgentUID  string        `json:"agent_uid"`
	Title     string        `json:"title"`
	Status    MeetingStatus `json:"status"`
	StartedAt *time.Time    `json:"started_at,omitempty"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	CreatedAt *time.Time    `json:"created_at,omitempty"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// CanStart is the session-started transition guard: a meeting may only go
// active when it is not already live, being processed, or in a terminal state.
// Cancellation before the session starts therefore wins over a late webhook.
func (m *Meeting) CanStart() bool {
	switch m.Status {
	case MeetingStatusActive, MeetingStatusProcessing, MeetingStatusCompleted, MeetingStatusCancelled:
		return false
	}
	return true
}

// CanCancel reports whether the meeting may be cancelled by a user action.
func (m *Meeting) CanCancel() bool {
	return m.Status == MeetingStatusUpcoming
}

// CanFinish is the call-ended transition guard. A leave event may arrive
// before the session-started webhook (lost or delayed), so an upcoming
// meeting finishes the same way an active one does; only meetings already
// past the live phase ignore it.
func (m *Meeting) CanFinish() bool {
	switch m.Status {
	case MeetingStatusProcessing, MeetingStatusCompleted, MeetingStatusCancelled:
		return false
	}
	return true
}

// CanDelete reports whether the meeting may be removed. Live and processing
// meetings are never deleted, their records anchor the call teardown.
func (m *Meeting) CanDelete() bool {
	switch m.Status {
	case MeetingStatusActive, MeetingStatusProcessing:
		return false
	}
	return true
}

// Tags generates the tag list used to search for a meeting.
func (m *Meeting) Tags() []string {
	tags := []string{}

	if m.UID != "" {
		tags = append(tags, m.UID, "meeting_uid:"+m.UID)
	}
	if m.AgentUID != "" {
		tags = append(tags, "agent_uid:"+m.AgentUID)
	}
	if m.Title != "" {
		tags = append(tags, m.Title)
	}

	return tags
}
