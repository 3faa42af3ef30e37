// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/service"
)

// MeetingHandler serves the meeting CRUD endpoints and meeting-related NATS
// messages.
type MeetingHandler struct {
	meetingService   *service.MeetingService
	lifecycleService *service.MeetingLifecycleService
}

// NewMeetingHandler creates a new MeetingHandler.
func NewMeetingHandler(meetingService *service.MeetingService, lifecycleService *service.MeetingLifecycleService) *MeetingHandler {
	return &MeetingHandler{
		meetingService:   meetingService,
		lifecycleService: lifecycleService,
	}
}

// HandlerReady reports whether the handler can serve requests.
func (h *MeetingHandler) HandlerReady() bool {
	return h.meetingService != nil && h.meetingService.ServiceReady() &&
		h.lifecycleService != nil && h.lifecycleService.ServiceReady()
}

// CreateMeeting handles POST /api/meetings.
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload service.CreateMeetingRequest
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := h.meetingService.CreateMeeting(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, meeting)
}

// GetMeetings handles GET /api/meetings.
func (h *MeetingHandler) GetMeetings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	meetings, err := h.meetingService.GetMeetings(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meetings)
}

// GetMeeting handles GET /api/meetings/{uid}.
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	meeting, err := h.meetingService.GetMeeting(ctx, uid)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

// UpdateMeeting handles PUT /api/meetings/{uid}.
func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	var payload service.UpdateMeetingRequest
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	meeting, err := h.meetingService.UpdateMeeting(ctx, uid, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

// CancelMeeting handles POST /api/meetings/{uid}/cancel.
func (h *MeetingHandler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	meeting, err := h.meetingService.CancelMeeting(ctx, uid)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, meeting)
}

// DeleteMeeting handles DELETE /api/meetings/{uid}.
func (h *MeetingHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	if err := h.meetingService.DeleteMeeting(ctx, uid); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMessage implements domain.MessageHandler for meeting subjects.
func (h *MeetingHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.MeetingGetTitleSubject:  h.HandleMeetingGetTitle,
		models.MeetingReconcileSubject: h.HandleMeetingReconcile,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		h.respond(ctx, msg, nil)
		return
	}
	h.respond(ctx, msg, response)
}

func (h *MeetingHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// HandleMeetingGetTitle replies with the title of the meeting whose UID is the
// message payload.
func (h *MeetingHandler) HandleMeetingGetTitle(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.meetingService.ServiceReady() {
		return nil, fmt.Errorf("meeting service not ready")
	}

	meetingUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("meeting_uid", meetingUID))

	meeting, err := h.meetingService.GetMeeting(ctx, meetingUID)
	if err != nil {
		return nil, err
	}
	return []byte(meeting.Title), nil
}

// HandleMeetingReconcile triggers a sweep of active meetings.
func (h *MeetingHandler) HandleMeetingReconcile(ctx context.Context, msg domain.Message) ([]byte, error) {
	if err := h.lifecycleService.ReconcileActiveMeetings(ctx); err != nil {
		return nil, err
	}
	return []byte("ok"), nil
}
