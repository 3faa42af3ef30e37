// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package domain

import "context"

// CallParticipant is one member of a live call session.
type CallParticipant struct {
	UserID string
	Name   string
}

// CallState is a point-in-time snapshot of a call's live session.
type CallState struct {
	Participants []CallParticipant
	Ended        bool
}

// RealtimeSessionConfig is the configuration pushed into a realtime voice
// session. All fields have service-level defaults; Instructions is always
// sourced fresh from the agent record at join time.
type RealtimeSessionConfig struct {
	Instructions       string
	Voice              string
	VADThreshold       float64
	PrefixPaddingMs    int
	SilenceDurationMs  int
	InputAudioFormat   string
	OutputAudioFormat  string
	TranscriptionModel string
}

// RealtimeSession is a live connection between a call and the AI voice
// backend. It exists only for the duration of one call and is never persisted.
type RealtimeSession interface {
	UpdateSession(ctx context.Context, config RealtimeSessionConfig) error
	Close() error
}

// CallProvider is the call-control port to the video infrastructure. All
// operations are network-bound; callers sequence them where a later step
// depends on an earlier one (join must precede connect).
type CallProvider interface {
	// JoinCall adds a member to the call without creating it if absent.
	JoinCall(ctx context.Context, meetingUID string, userID string) error

	// ConnectRealtimeAgent attaches the AI voice backend to the call under the
	// given participant identity and returns the live session handle.
	ConnectRealtimeAgent(ctx context.Context, meetingUID string, agentUserID string) (RealtimeSession, error)

	// GetCallState returns the call's current session snapshot.
	GetCallState(ctx context.Context, meetingUID string) (*CallState, error)

	// EndCall ends the call for all participants.
	EndCall(ctx context.Context, meetingUID string) error
}
