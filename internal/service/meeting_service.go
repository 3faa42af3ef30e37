// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/pkg/utils"
)

// MeetingService owns the meeting CRUD operations.
type MeetingService struct {
	MeetingRepository domain.MeetingRepository
	AgentRepository   domain.AgentRepository
	Config            ServiceConfig
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(
	meetingRepository domain.MeetingRepository,
	agentRepository domain.AgentRepository,
	config ServiceConfig,
) *MeetingService {
	return &MeetingService{
		MeetingRepository: meetingRepository,
		AgentRepository:   agentRepository,
		Config:            config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *MeetingService) ServiceReady() bool {
	return s.MeetingRepository != nil && s.AgentRepository != nil
}

// CreateMeetingRequest carries the caller-supplied fields of a new meeting.
type CreateMeetingRequest struct {
	Title    string `json:"title"`
	AgentUID string `json:"agent_uid"`
}

// CreateMeeting creates a meeting in the upcoming state bound to an existing
// agent persona.
func (s *MeetingService) CreateMeeting(ctx context.Context, payload *CreateMeetingRequest) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if payload == nil || payload.Title == "" || payload.AgentUID == "" {
		return nil, domain.NewValidationError("title and agent_uid are required")
	}

	if _, err := s.AgentRepository.Get(ctx, payload.AgentUID); err != nil {
		return nil, err
	}

	uid, err := utils.NewID()
	if err != nil {
		slog.ErrorContext(ctx, "error generating meeting uid", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	now := time.Now().UTC()
	meeting := &models.Meeting{
		UID:       uid,
		AgentUID:  payload.AgentUID,
		Title:     payload.Title,
		Status:    models.MeetingStatusUpcoming,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	if err := s.MeetingRepository.Create(ctx, meeting); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "created meeting", "meeting_uid", meeting.UID, "agent_uid", meeting.AgentUID)
	return meeting, nil
}

// GetMeeting fetches one meeting by UID.
func (s *MeetingService) GetMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.MeetingRepository.Get(ctx, meetingUID)
}

// GetMeetings fetches all meetings.
func (s *MeetingService) GetMeetings(ctx context.Context) ([]*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.MeetingRepository.ListAll(ctx)
}

// UpdateMeetingRequest carries the mutable fields of a meeting.
type UpdateMeetingRequest struct {
	Title    string `json:"title"`
	AgentUID string `json:"agent_uid"`
}

// UpdateMeeting changes a meeting's title or agent. Lifecycle status is never
// writable through this operation.
func (s *MeetingService) UpdateMeeting(ctx context.Context, meetingUID string, payload *UpdateMeetingRequest) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if payload == nil || (payload.Title == "" && payload.AgentUID == "") {
		return nil, domain.NewValidationError("nothing to update")
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	if payload.Title != "" {
		meeting.Title = payload.Title
	}
	if payload.AgentUID != "" {
		if _, err := s.AgentRepository.Get(ctx, payload.AgentUID); err != nil {
			return nil, err
		}
		meeting.AgentUID = payload.AgentUID
	}
	now := time.Now().UTC()
	meeting.UpdatedAt = &now

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return nil, err
	}
	return meeting, nil
}

// CancelMeeting transitions an upcoming meeting to cancelled. A cancelled
// meeting never goes active, even if a stale session-started webhook arrives
// afterwards.
func (s *MeetingService) CancelMeeting(ctx context.Context, meetingUID string) (*models.Meeting, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return nil, err
	}

	if !meeting.CanCancel() {
		return nil, domain.NewConflictError("only upcoming meetings can be cancelled")
	}

	now := time.Now().UTC()
	meeting.Status = models.MeetingStatusCancelled
	meeting.UpdatedAt = &now

	if err := s.MeetingRepository.Update(ctx, meeting, revision); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "cancelled meeting", "meeting_uid", meeting.UID)
	return meeting, nil
}

// DeleteMeeting removes a meeting.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	meeting, revision, err := s.MeetingRepository.GetWithRevision(ctx, meetingUID)
	if err != nil {
		return err
	}

	if !meeting.CanDelete() {
		return domain.NewConflictError("live meetings cannot be deleted")
	}

	return s.MeetingRepository.Delete(ctx, meetingUID, revision)
}
