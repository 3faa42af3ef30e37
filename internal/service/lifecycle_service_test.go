// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/mocks"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
)

type lifecycleServiceFixture struct {
	service      *MeetingLifecycleService
	meetingRepo  *mocks.MockMeetingRepository
	agentRepo    *mocks.MockAgentRepository
	callProvider *mocks.MockCallProvider
	sender       *mocks.MockMessageBuilder
}

func newLifecycleServiceFixture() *lifecycleServiceFixture {
	meetingRepo := new(mocks.MockMeetingRepository)
	agentRepo := new(mocks.MockAgentRepository)
	callProvider := new(mocks.MockCallProvider)
	sender := new(mocks.MockMessageBuilder)

	return &lifecycleServiceFixture{
		service:      NewMeetingLifecycleService(meetingRepo, agentRepo, callProvider, sender, ServiceConfig{}),
		meetingRepo:  meetingRepo,
		agentRepo:    agentRepo,
		callProvider: callProvider,
		sender:       sender,
	}
}

func (f *lifecycleServiceFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.meetingRepo.AssertExpectations(t)
	f.agentRepo.AssertExpectations(t)
	f.callProvider.AssertExpectations(t)
	f.sender.AssertExpectations(t)
}

func TestHandleSessionStarted(t *testing.T) {
	ctx := context.Background()

	t.Run("upcoming meeting goes active and agent joins", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{
			UID:      "m1",
			AgentUID: "a1",
			Title:    "Planning",
			Status:   models.MeetingStatusUpcoming,
		}
		agent := &models.Agent{UID: "a1", Name: "Notetaker", Instructions: "Be polite."}
		session := new(mocks.MockRealtimeSession)

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(3), nil)
		f.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.UID == "m1" && m.Status == models.MeetingStatusActive && m.StartedAt != nil
		}), uint64(3)).Return(nil)
		f.agentRepo.On("Get", mock.Anything, "a1").Return(agent, nil)
		f.callProvider.On("JoinCall", mock.Anything, "m1", "agent_a1").Return(nil)
		f.callProvider.On("ConnectRealtimeAgent", mock.Anything, "m1", "agent_a1").Return(session, nil)
		session.On("UpdateSession", mock.Anything, mock.MatchedBy(func(c domain.RealtimeSessionConfig) bool {
			return c.Instructions == "Be polite." &&
				c.Voice == DefaultRealtimeVoice &&
				c.VADThreshold == DefaultRealtimeVADThreshold &&
				c.PrefixPaddingMs == DefaultRealtimePrefixPaddingMs &&
				c.SilenceDurationMs == DefaultRealtimeSilenceDurationMs &&
				c.InputAudioFormat == "pcm16" &&
				c.TranscriptionModel == "whisper-1"
		})).Return(nil)
		f.sender.On("SendMeetingStarted", mock.Anything, mock.MatchedBy(func(m models.MeetingLifecycleMessage) bool {
			return m.MeetingUID == "m1" && m.Status == models.MeetingStatusActive
		})).Return(nil)

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "m1"})
		require.NoError(t, err)
		f.assertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("already active meeting is acknowledged without action", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(4), nil)

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "m1"})
		require.NoError(t, err)
		f.meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.callProvider.AssertNotCalled(t, "JoinCall", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelled meeting never starts", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusCancelled}
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(2), nil)

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "m1"})
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "JoinCall", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown meeting is an error", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		f.meetingRepo.On("GetWithRevision", mock.Anything, "ghost").Return(nil, uint64(0), domain.ErrMeetingNotFound)

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	})

	t.Run("losing the claim race is a no-op", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusUpcoming}
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(3), nil)
		f.meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(3)).Return(domain.ErrRevisionMismatch)

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "m1"})
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "JoinCall", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("agent join failure surfaces after the claim", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusUpcoming}
		agent := &models.Agent{UID: "a1", Instructions: "Be polite."}

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(3), nil)
		f.meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(3)).Return(nil)
		f.agentRepo.On("Get", mock.Anything, "a1").Return(agent, nil)
		f.callProvider.On("JoinCall", mock.Anything, "m1", "agent_a1").Return(errors.New("provider down"))

		err := f.service.HandleSessionStarted(ctx, models.SessionStartedEvent{MeetingUID: "m1"})
		assert.Error(t, err)
		f.sender.AssertNotCalled(t, "SendMeetingStarted", mock.Anything, mock.Anything)
	})
}

func TestHandleParticipantLeft(t *testing.T) {
	ctx := context.Background()

	t.Run("last human leaving finishes the meeting", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusActive}
		state := &domain.CallState{Participants: []domain.CallParticipant{
			{UserID: "user-1", Name: "Ada"},
			{UserID: "agent_a1", Name: "Notetaker"},
		}}

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(5), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(state, nil)
		f.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Status == models.MeetingStatusProcessing && m.EndedAt != nil
		}), uint64(5)).Return(nil)
		f.callProvider.On("EndCall", mock.Anything, "m1").Return(nil)
		f.sender.On("SendMeetingProcessing", mock.Anything, mock.MatchedBy(func(m models.MeetingLifecycleMessage) bool {
			return m.MeetingUID == "m1" && m.Status == models.MeetingStatusProcessing
		})).Return(nil)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "m1", UserID: "user-1"})
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("out-of-order leave finishes an upcoming meeting", func(t *testing.T) {
		// The leave event beat the session-started webhook; the call is over
		// regardless of what the row says, so the meeting still finishes.
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusUpcoming}
		state := &domain.CallState{Participants: []domain.CallParticipant{
			{UserID: "agent_a1", Name: "Notetaker"},
		}}

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(3), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(state, nil)
		f.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.Status == models.MeetingStatusProcessing && m.EndedAt != nil
		}), uint64(3)).Return(nil)
		f.callProvider.On("EndCall", mock.Anything, "m1").Return(nil)
		f.sender.On("SendMeetingProcessing", mock.Anything, mock.Anything).Return(nil)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "m1", UserID: "user-1"})
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("remaining humans keep the meeting active", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}
		state := &domain.CallState{Participants: []domain.CallParticipant{
			{UserID: "user-1"},
			{UserID: "user-2"},
			{UserID: "agent_a1"},
		}}

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(5), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(state, nil)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "m1", UserID: "user-1"})
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "EndCall", mock.Anything, mock.Anything)
		f.meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale event for finished meeting is a no-op", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusProcessing}
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(6), nil)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "m1", UserID: "user-1"})
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "GetCallState", mock.Anything, mock.Anything)
	})

	t.Run("unknown meeting is an error", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		f.meetingRepo.On("GetWithRevision", mock.Anything, "ghost").Return(nil, uint64(0), domain.ErrMeetingNotFound)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "ghost", UserID: "user-1"})
		assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
	})

	t.Run("losing the finish race is a no-op", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}
		state := &domain.CallState{Participants: []domain.CallParticipant{{UserID: "user-1"}}}

		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(meeting, uint64(5), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(state, nil)
		f.meetingRepo.On("Update", mock.Anything, mock.Anything, uint64(5)).Return(domain.ErrRevisionMismatch)

		err := f.service.HandleParticipantLeft(ctx, models.ParticipantLeftEvent{MeetingUID: "m1", UserID: "user-1"})
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "EndCall", mock.Anything, mock.Anything)
	})
}

func TestConnectAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("joins active meeting", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusActive}
		agent := &models.Agent{UID: "a1", Name: "Notetaker", Instructions: "Summarize."}
		session := new(mocks.MockRealtimeSession)

		f.meetingRepo.On("Get", mock.Anything, "m1").Return(meeting, nil)
		f.agentRepo.On("Get", mock.Anything, "a1").Return(agent, nil)
		f.callProvider.On("JoinCall", mock.Anything, "m1", "agent_a1").Return(nil)
		f.callProvider.On("ConnectRealtimeAgent", mock.Anything, "m1", "agent_a1").Return(session, nil)
		session.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

		got, err := f.service.ConnectAgent(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.UID)
		f.assertExpectations(t)
	})

	t.Run("joins meeting whose row still reads upcoming", func(t *testing.T) {
		// A lost session-started webhook leaves the row upcoming while the
		// call is live; manual join must not be gated on status.
		f := newLifecycleServiceFixture()

		meeting := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusUpcoming}
		agent := &models.Agent{UID: "a1", Name: "Notetaker", Instructions: "Summarize."}
		session := new(mocks.MockRealtimeSession)

		f.meetingRepo.On("Get", mock.Anything, "m1").Return(meeting, nil)
		f.agentRepo.On("Get", mock.Anything, "a1").Return(agent, nil)
		f.callProvider.On("JoinCall", mock.Anything, "m1", "agent_a1").Return(nil)
		f.callProvider.On("ConnectRealtimeAgent", mock.Anything, "m1", "agent_a1").Return(session, nil)
		session.On("UpdateSession", mock.Anything, mock.Anything).Return(nil)

		got, err := f.service.ConnectAgent(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.UID)
		f.meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReconcileActiveMeetings(t *testing.T) {
	ctx := context.Background()

	t.Run("finishes stranded active meetings", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		active := &models.Meeting{UID: "m1", AgentUID: "a1", Status: models.MeetingStatusActive}
		upcoming := &models.Meeting{UID: "m2", Status: models.MeetingStatusUpcoming}

		f.meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{active, upcoming}, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(active, uint64(7), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(&domain.CallState{Ended: true}, nil)
		f.meetingRepo.On("Update", mock.Anything, mock.MatchedBy(func(m *models.Meeting) bool {
			return m.UID == "m1" && m.Status == models.MeetingStatusProcessing
		}), uint64(7)).Return(nil)
		f.callProvider.On("EndCall", mock.Anything, "m1").Return(nil)
		f.sender.On("SendMeetingProcessing", mock.Anything, mock.Anything).Return(nil)

		err := f.service.ReconcileActiveMeetings(ctx)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("leaves live meetings alone", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		active := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}

		f.meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{active}, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(active, uint64(7), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(&domain.CallState{
			Participants: []domain.CallParticipant{{UserID: "user-1"}},
		}, nil)

		err := f.service.ReconcileActiveMeetings(ctx)
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "EndCall", mock.Anything, mock.Anything)
	})

	t.Run("counts a participant with no user id as human", func(t *testing.T) {
		f := newLifecycleServiceFixture()

		active := &models.Meeting{UID: "m1", Status: models.MeetingStatusActive}

		f.meetingRepo.On("ListAll", mock.Anything).Return([]*models.Meeting{active}, nil)
		f.meetingRepo.On("GetWithRevision", mock.Anything, "m1").Return(active, uint64(7), nil)
		f.callProvider.On("GetCallState", mock.Anything, "m1").Return(&domain.CallState{
			Participants: []domain.CallParticipant{{UserID: ""}},
		}, nil)

		err := f.service.ReconcileActiveMeetings(ctx)
		require.NoError(t, err)
		f.callProvider.AssertNotCalled(t, "EndCall", mock.Anything, mock.Anything)
		f.meetingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
