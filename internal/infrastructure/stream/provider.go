// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package stream

import (
	"context"
	"fmt"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/stream/api"
)

// DefaultCallType is the Stream call type meetings run on. A call's CID is
// "<type>:<id>", with the meeting UID as the call id.
const DefaultCallType = "default"

// CallProvider implements domain.CallProvider on the Stream Video API.
type CallProvider struct {
	client   api.ClientAPI
	dialer   RealtimeDialer
	callType string
}

var _ domain.CallProvider = (*CallProvider)(nil)

// NewCallProvider creates a call provider using the given API client and
// realtime dialer.
func NewCallProvider(client api.ClientAPI, dialer RealtimeDialer) *CallProvider {
	return &CallProvider{
		client:   client,
		dialer:   dialer,
		callType: DefaultCallType,
	}
}

func (p *CallProvider) callCID(meetingUID string) string {
	return p.callType + ":" + meetingUID
}

// JoinCall adds the user as a member of the meeting's call. The call must
// already exist; joining never creates it.
func (p *CallProvider) JoinCall(ctx context.Context, meetingUID string, userID string) error {
	request := &api.UpdateCallMembersRequest{
		UpdateMembers: []api.CallMemberRequest{
			{UserID: userID},
		},
	}
	if err := p.client.UpdateCallMembers(ctx, p.callType, meetingUID, request); err != nil {
		return fmt.Errorf("joining call for meeting %s: %w", meetingUID, err)
	}
	return nil
}

// ConnectRealtimeAgent attaches the AI voice backend to the meeting's call
// under the agent's participant identity.
func (p *CallProvider) ConnectRealtimeAgent(ctx context.Context, meetingUID string, agentUserID string) (domain.RealtimeSession, error) {
	session, err := p.dialer.DialSession(ctx, p.callCID(meetingUID), agentUserID)
	if err != nil {
		return nil, fmt.Errorf("connecting realtime agent for meeting %s: %w", meetingUID, err)
	}
	return session, nil
}

// GetCallState returns the live session snapshot of the meeting's call.
func (p *CallProvider) GetCallState(ctx context.Context, meetingUID string) (*domain.CallState, error) {
	resp, err := p.client.GetCall(ctx, p.callType, meetingUID)
	if err != nil {
		return nil, fmt.Errorf("getting call state for meeting %s: %w", meetingUID, err)
	}

	state := &domain.CallState{
		Ended: resp.Call.EndedAt != nil,
	}
	if resp.Call.Session != nil {
		if resp.Call.Session.EndedAt != nil {
			state.Ended = true
		}
		for _, participant := range resp.Call.Session.Participants {
			state.Participants = append(state.Participants, domain.CallParticipant{
				UserID: participant.User.ID,
				Name:   participant.User.Name,
			})
		}
	}
	return state, nil
}

// EndCall ends the meeting's call for every participant.
func (p *CallProvider) EndCall(ctx context.Context, meetingUID string) error {
	if err := p.client.EndCall(ctx, p.callType, meetingUID); err != nil {
		return fmt.Errorf("ending call for meeting %s: %w", meetingUID, err)
	}
	return nil
}
