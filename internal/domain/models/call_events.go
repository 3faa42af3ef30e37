// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// Call event types delivered by the video provider's webhook.
const (
	CallEventSessionStarted  = "call.session_started"
	CallEventParticipantLeft = "call.session_participant_left"
)

// Classification failures. A malformed body is distinct from a recognized
// event that is missing its correlation key; both map to a client error at the
// HTTP boundary.
var (
	ErrMalformedEvent   = errors.New("malformed webhook event")
	ErrMissingMeetingID = errors.New("missing meeting id in webhook event")
)

// CallEvent is the closed set of webhook events the orchestrator understands.
// Unknown event types classify as UnhandledEvent, which is acknowledged
// without action.
type CallEvent interface {
	EventType() string
}

// SessionStartedEvent signals that the first participant joined the call.
// The meeting id travels in the call's custom metadata.
type SessionStartedEvent struct {
	MeetingUID string
}

func (e SessionStartedEvent) EventType() string { return CallEventSessionStarted }

// ParticipantLeftEvent signals that a participant disconnected from the call.
// The meeting id is the second segment of the composite call identifier
// (`<callType>:<meetingID>`).
type ParticipantLeftEvent struct {
	MeetingUID string
	UserID     string
}

func (e ParticipantLeftEvent) EventType() string { return CallEventParticipantLeft }

// UnhandledEvent is any well-formed webhook event outside the closed set.
type UnhandledEvent struct {
	Type string
}

func (e UnhandledEvent) EventType() string { return e.Type }

// rawCallEvent is the wire shape shared by all provider webhook events; only
// the fields the classifier needs are decoded.
type rawCallEvent struct {
	Type    string `json:"type"`
	CallCID string `json:"call_cid"`
	Call    struct {
		Custom map[string]any `json:"custom"`
	} `json:"call"`
	User struct {
		ID string `json:"id"`
	} `json:"user"`
}

// ClassifyCallEvent parses a raw webhook body into a typed call event.
// The body must be the raw request bytes; it is never re-serialized.
func ClassifyCallEvent(raw []byte) (CallEvent, error) {
	var event rawCallEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}

	switch event.Type {
	case CallEventSessionStarted:
		meetingUID, _ := event.Call.Custom["meetingId"].(string)
		if meetingUID == "" {
			return nil, ErrMissingMeetingID
		}
		return SessionStartedEvent{MeetingUID: meetingUID}, nil

	case CallEventParticipantLeft:
		meetingUID := meetingUIDFromCallCID(event.CallCID)
		if meetingUID == "" {
			return nil, ErrMissingMeetingID
		}
		return ParticipantLeftEvent{MeetingUID: meetingUID, UserID: event.User.ID}, nil

	default:
		return UnhandledEvent{Type: event.Type}, nil
	}
}

// meetingUIDFromCallCID extracts the meeting id from a composite call
// identifier of the form `<callType>:<meetingID>`.
func meetingUIDFromCallCID(callCID string) string {
	parts := strings.SplitN(callCID, ":", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
