// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package stream

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/stream/api"
	"github.com/shashi162003/meetai-meeting-service/pkg/utils"
)

type fakeStreamClient struct {
	updateMembersErr error
	getCallResp      *api.GetCallResponse
	getCallErr       error
	endCallErr       error

	updateMembersCalls []api.UpdateCallMembersRequest
	endedCallIDs       []string
}

func (f *fakeStreamClient) UpdateCallMembers(ctx context.Context, callType, callID string, request *api.UpdateCallMembersRequest) error {
	if f.updateMembersErr != nil {
		return f.updateMembersErr
	}
	f.updateMembersCalls = append(f.updateMembersCalls, *request)
	return nil
}

func (f *fakeStreamClient) GetCall(ctx context.Context, callType, callID string) (*api.GetCallResponse, error) {
	return f.getCallResp, f.getCallErr
}

func (f *fakeStreamClient) EndCall(ctx context.Context, callType, callID string) error {
	if f.endCallErr != nil {
		return f.endCallErr
	}
	f.endedCallIDs = append(f.endedCallIDs, callID)
	return nil
}

type fakeDialer struct {
	session domain.RealtimeSession
	err     error

	dialedCIDs []string
}

func (f *fakeDialer) DialSession(ctx context.Context, callCID string, agentUserID string) (domain.RealtimeSession, error) {
	f.dialedCIDs = append(f.dialedCIDs, callCID)
	return f.session, f.err
}

type noopSession struct{}

func (noopSession) UpdateSession(ctx context.Context, config domain.RealtimeSessionConfig) error {
	return nil
}
func (noopSession) Close() error { return nil }

func TestCallProviderJoinCall(t *testing.T) {
	t.Run("adds member to existing call", func(t *testing.T) {
		client := &fakeStreamClient{}
		provider := NewCallProvider(client, &fakeDialer{})

		err := provider.JoinCall(context.Background(), "meeting-1", "agent_abc")
		require.NoError(t, err)
		require.Len(t, client.updateMembersCalls, 1)
		require.Len(t, client.updateMembersCalls[0].UpdateMembers, 1)
		assert.Equal(t, "agent_abc", client.updateMembersCalls[0].UpdateMembers[0].UserID)
	})

	t.Run("propagates API error", func(t *testing.T) {
		client := &fakeStreamClient{updateMembersErr: errors.New("call not found")}
		provider := NewCallProvider(client, &fakeDialer{})

		err := provider.JoinCall(context.Background(), "meeting-1", "agent_abc")
		assert.Error(t, err)
	})
}

func TestCallProviderConnectRealtimeAgent(t *testing.T) {
	t.Run("dials with call cid", func(t *testing.T) {
		dialer := &fakeDialer{session: noopSession{}}
		provider := NewCallProvider(&fakeStreamClient{}, dialer)

		session, err := provider.ConnectRealtimeAgent(context.Background(), "meeting-1", "agent_abc")
		require.NoError(t, err)
		assert.NotNil(t, session)
		require.Len(t, dialer.dialedCIDs, 1)
		assert.Equal(t, "default:meeting-1", dialer.dialedCIDs[0])
	})

	t.Run("propagates dial error", func(t *testing.T) {
		dialer := &fakeDialer{err: errors.New("handshake failed")}
		provider := NewCallProvider(&fakeStreamClient{}, dialer)

		_, err := provider.ConnectRealtimeAgent(context.Background(), "meeting-1", "agent_abc")
		assert.Error(t, err)
	})
}

func TestCallProviderGetCallState(t *testing.T) {
	t.Run("maps session participants", func(t *testing.T) {
		resp := &api.GetCallResponse{}
		resp.Call.Session = &api.CallSessionResponse{}
		resp.Call.Session.Participants = []api.CallSessionParticipant{
			{User: api.CallUserResponse{ID: "user-1", Name: "Ada"}},
			{User: api.CallUserResponse{ID: "agent_abc", Name: "Notetaker"}},
		}

		provider := NewCallProvider(&fakeStreamClient{getCallResp: resp}, &fakeDialer{})

		state, err := provider.GetCallState(context.Background(), "meeting-1")
		require.NoError(t, err)
		require.Len(t, state.Participants, 2)
		assert.Equal(t, "user-1", state.Participants[0].UserID)
		assert.False(t, state.Ended)
	})

	t.Run("ended session", func(t *testing.T) {
		resp := &api.GetCallResponse{}
		resp.Call.Session = &api.CallSessionResponse{EndedAt: utils.Ptr("2026-08-29T10:00:00Z")}

		provider := NewCallProvider(&fakeStreamClient{getCallResp: resp}, &fakeDialer{})

		state, err := provider.GetCallState(context.Background(), "meeting-1")
		require.NoError(t, err)
		assert.True(t, state.Ended)
	})
}

func TestCallProviderEndCall(t *testing.T) {
	client := &fakeStreamClient{}
	provider := NewCallProvider(client, &fakeDialer{})

	err := provider.EndCall(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"meeting-1"}, client.endedCallIDs)
}
