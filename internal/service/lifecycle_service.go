// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/pkg/concurrent"
)

// MeetingLifecycleService drives meetings through their lifecycle in response
// to call webhook events. Webhook delivery is at-least-once and unordered, so
// every transition is a guarded compare-and-set on the meeting record: the
// first delivery to claim a transition wins and every duplicate or stale
// delivery degrades to an acknowledged no-op.
type MeetingLifecycleService struct {
	MeetingRepository domain.MeetingRepository
	AgentRepository   domain.AgentRepository
	CallProvider      domain.CallProvider
	LifecycleSender   domain.MeetingLifecycleSender
	Config            ServiceConfig

	sessionsMu sync.Mutex
	sessions   map[string]domain.RealtimeSession
}

// NewMeetingLifecycleService creates a new MeetingLifecycleService.
func NewMeetingLifecycleService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
	callProvider domain.CallProvider,
	lifecycleSender domain.MeetingLifecycleSender,
	config ServiceConfig,
) *MeetingLifecycleService {
	return &MeetingLifecycleService{
		MeetingRepository: meetingRepository,
		AgentRepository:   agentRepository,
		CallProvider:      callProvider,
		LifecycleSender:   lifecycleSender,
		Config:            config,
		sessions:          make(map[string]domain.RealtimeSession),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingLifecycleService) ServiceReady() bool {
	return s.MeetingRepository != nil &&
		s.AgentRepository != nil &&
		s.CallProvider != nil &&
		s.LifecycleSender != nil
}

func (s *MeetingLifecycleService) realtimeConfig(instructions string) domain.RealtimeSessionConfig {
	return domain.RealtimeSessionConfig{
		Instructions:       instructions,
		Voice:              s.Config.voice(),
		VADThreshold:       s.Config.vadThreshold(),
		PrefixPaddingMs:    s.Config.prefixPaddingMs(),
		SilenceDurationMs:  s.Config.silenceDurationMs(),
		InputAudioFormat:   realtimeAudioFormat,
		OutputAudioFormat:  realtimeAudioFormat,
		TranscriptionModel: realtimeTranscriptionModel,
	}
}

func (s *MeetingLifecycleService) storeSession(meetingUID string, session domain.RealtimeSession) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if existing, ok := s.sessions[meetingUID]; ok {
		_ = existing.Close()
	}
	s.sessions[meetingUID] = session
}

func (s *MeetingLifecycleService) closeSession(meetingUID string) {
	s.sessionsMu.Lock()
	session, ok := s.sessions[meetingUID]
	delete(s.sessions, meetingUID)
	s.sessionsMu.Unlock()
	if ok {
		_ = session.Close()
	}
}

// CloseAllSessions tears down every live realtime session. Called on shutdown.
func (s *MeetingLifecycleService) CloseAllSessions() {
	s.sessionsMu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]domain.RealtimeSession)
	s.sessionsMu.Unlock()
	for _, session := range sessions {
		_ = session.Close()
	}
}

// HandleSessionStarted processes a session-started webhook. The meeting is
// claimed active with a compare-and-set before any external call is made, so
// concurrent deliveries of the same event race on the store and every loser
// becomes a no-op. A delivery for an unknown meeting is an error; a delivery
// for a meeting that cannot start (already active, processing, completed, or
// cancelled) is acknowledged without action.
func (s *MeetingLifecycleService) HandleSessionStarted(ctx context.Context, event models.SessionStartedEvent) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", event.MeetingUID))

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, event.MeetingUID)
	if err != nil {
		return err
	}

	if !meeting.CanStart() {
		slog.InfoContext(ctx, "ignoring session started for meeting that cannot start",
			"status", meeting.Status,
		)
		return nil
	}

	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusActive
	meeting.StartedAt = &now
	meeting.UpdatedAt = &now

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		if errors.Is(err, domain.ErrRevisionMismatch) {
			slog.InfoContext(ctx, "lost session started race to concurrent delivery")
			return nil
		}
		return err
	}

	agent, err := s.AgentRepository.Get(ctx, meeting.AgentUID)
	if err != nil {
		slog.ErrorContext(ctx, "meeting went active but agent lookup failed",
			logging.ErrKey, err,
			"agent_uid", meeting.AgentUID,
			logging.PriorityCritical(),
		)
		return err
	}

	if err := s.joinAgent(ctx, meeting, agent); err != nil {
		// The meeting stays active; the reconcile sweep repairs it if the
		// call never materializes.
		slog.ErrorContext(ctx, "meeting went active but agent join failed",
			logging.ErrKey, err,
			"agent_uid", agent.UID,
			logging.PriorityCritical(),
		)
		return err
	}

	if err := s.LifecycleSender.SendMeetingStarted(ctx, models.MeetingLifecycleMessage{
		MeetingUID: meeting.UID,
		AgentUID:   meeting.AgentUID,
		Status:     meeting.Status,
		OccurredAt: now,
		Tags:       meeting.Tags(),
	}); err != nil {
		slog.ErrorContext(ctx, "error publishing meeting started message", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "meeting started", "agent_uid", meeting.AgentUID)
	return nil
}

func (s *MeetingLifecycleService) joinAgent(ctx context.Context, meeting *models.Meeting, agent *models.Agent) error {
	agentUserID := agent.CallUserID()

	if err := s.CallProvider.JoinCall(ctx, meeting.UID, agentUserID); err != nil {
		return err
	}

	session, err := s.CallProvider.ConnectRealtimeAgent(ctx, meeting.UID, agentUserID)
	if err != nil {
		return err
	}

	if err := session.UpdateSession(ctx, s.realtimeConfig(agent.Instructions)); err != nil {
		_ = session.Close()
		return err
	}

	s.storeSession(meeting.UID, session)
	return nil
}

// ConnectAgent attaches the meeting's agent to its call. Serves the explicit
// agent-join operation, which never touches meeting status. No status guard:
// the manual join exists precisely for calls whose session-started webhook
// was lost, where the row may still read upcoming.
func (s *MeetingLifecycleService) ConnectAgent(ctx context.Context, meetingUID string) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := s.MeetingRepository.Get(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	agent, err := s.AgentRepository.Get(ctx, meeting.AgentUID)
	if err != nil {
		return nil, err
	}

	if err := s.joinAgent(ctx, meeting, agent); err != nil {
		slog.ErrorContext(ctx, "agent join failed", logging.ErrKey, err, "agent_uid", agent.UID)
		return nil, err
	}

	slog.InfoContext(ctx, "agent joined meeting", "agent_uid", agent.UID)
	return agent, nil
}

// HandleParticipantLeft processes a participant-left webhook. When the last
// human participant is gone the call is ended, the realtime session is torn
// down, and the meeting moves to processing. The departing participant may
// still appear in the call state snapshot, so it is excluded alongside agent
// users when counting remaining humans.
func (s *MeetingLifecycleService) HandleParticipantLeft(ctx context.Context, event models.ParticipantLeftEvent) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", event.MeetingUID))

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, event.MeetingUID)
	if err != nil {
		return err
	}

	if !meeting.CanFinish() {
		slog.InfoContext(ctx, "ignoring participant left for finished meeting",
			"status", meeting.Status,
		)
		return nil
	}

	state, err := s.CallProvider.GetCallState(ctx, event.MeetingUID)
	if err != nil {
		return err
	}

	if !state.Ended && s.humansRemaining(state, event.UserID) {
		slog.DebugContext(ctx, "human participants remain in call", "left_user_id", event.UserID)
		return nil
	}

	return s.finishMeeting(ctx, meeting, revision)
}

// humansRemaining reports whether any human participant other than the one
// that just left is still in the call. leftUserID is empty on the reconcile
// sweep, where there is no departing participant to exclude.
func (s *MeetingLifecycleService) humansRemaining(state *domain.CallState, leftUserID string) bool {
	for _, participant := range state.Participants {
		if models.IsAgentUser(participant.UserID) {
			continue
		}
		if leftUserID != "" && participant.UserID == leftUserID {
			continue
		}
		return true
	}
	return false
}

// finishMeeting claims the active-to-processing transition and tears down the
// call. The compare-and-set comes first so only one delivery performs the
// teardown.
func (s *MeetingLifecycleService) finishMeeting(ctx context.Context, meeting *models.Meeting, revision uint64) error {
	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusProcessing
	meeting.EndedAt = &now
	meeting.UpdatedAt = &now

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		if errors.Is(err, domain.ErrRevisionMismatch) {
			slog.InfoContext(ctx, "lost meeting finish race to concurrent delivery")
			return nil
		}
		return err
	}

	s.closeSession(meeting.UID)

	if err := s.CallProvider.EndCall(ctx, meeting.UID); err != nil {
		// The transition already happened; ending the call again is the
		// provider's problem to dedupe, so log and keep going.
		slog.ErrorContext(ctx, "error ending call for finished meeting", logging.ErrKey, err)
	}

	if err := s.LifecycleSender.SendMeetingProcessing(ctx, models.MeetingLifecycleMessage{
		MeetingUID: meeting.UID,
		AgentUID:   meeting.AgentUID,
		Status:     meeting.Status,
		OccurredAt: now,
		Tags:       meeting.Tags(),
	}); err != nil {
		slog.ErrorContext(ctx, "error publishing meeting processing message", logging.ErrKey, err)
		return err
	}

	slog.InfoContext(ctx, "meeting moved to processing")
	return nil
}

// ReconcileActiveMeetings sweeps every active meeting and finishes the ones
// whose call has already ended. Repairs meetings stranded active by a missed
// webhook or a partial failure after the session-started claim.
func (s *MeetingLifecycleService) ReconcileActiveMeetings(ctx context.Context) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	meetings, err := s.MeetingRepository.ListAll(ctx)
	if err != nil {
		return err
	}

	var tasks []func() error
	for _, meeting := range meetings {
		if meeting.Status != models.MeetingStatusActive {
			continue
		}
		tasks = append(tasks, func() error {
			return s.reconcileMeeting(ctx, meeting.UID)
		})
	}

	if len(tasks) == 0 {
		slog.DebugContext(ctx, "no active meetings to reconcile")
		return nil
	}

	pool := concurrent.NewWorkerPool(s.Config.reconcileWorkers())
	errs := pool.RunAll(ctx, tasks...)
	for _, err := range errs {
		slog.ErrorContext(ctx, "error reconciling active meeting", logging.ErrKey, err)
	}

	slog.InfoContext(ctx, "reconciled active meetings",
		"swept", len(tasks),
		"failed", len(errs),
	)
	return nil
}

func (s *MeetingLifecycleService) reconcileMeeting(ctx context.Context, meetingUID string) error {
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}
	if meeting.Status != models.MeetingStatusActive {
		return nil
	}

	state, err := s.CallProvider.GetCallState(ctx, meetingUID)
	if err != nil {
		return err
	}
	if !state.Ended && s.humansRemaining(state, "") {
		return nil
	}

	slog.InfoContext(ctx, "finishing stranded active meeting")
	return s.finishMeeting(ctx, meeting, revision)
}
