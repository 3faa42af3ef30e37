// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/service"
	"github.com/shashi162003/meetai-meeting-service/pkg/constants"
)

// maxWebhookBodyBytes bounds how much of a webhook delivery is read.
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives call lifecycle events from the video provider.
type WebhookHandler struct {
	lifecycleService *service.MeetingLifecycleService
	validator        domain.WebhookValidator
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(lifecycleService *service.MeetingLifecycleService, validator domain.WebhookValidator) *WebhookHandler {
	return &WebhookHandler{
		lifecycleService: lifecycleService,
		validator:        validator,
	}
}

// HandlerReady reports whether the handler can process deliveries.
func (h *WebhookHandler) HandlerReady() bool {
	return h.lifecycleService != nil && h.lifecycleService.ServiceReady() && h.validator != nil
}

// HandleWebhook is the POST endpoint for provider webhook deliveries. The
// signature is verified over the raw body before any parsing. Replies follow
// the provider's redelivery contract: 2xx acknowledges (including recognized
// events that legitimately no-op), anything else triggers redelivery.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("error reading request body", err))
		return
	}

	signature := r.Header.Get(constants.WebhookSignatureHeader)
	apiKey := r.Header.Get(constants.WebhookAPIKeyHeader)
	if signature == "" || apiKey == "" {
		writeError(ctx, w, domain.NewValidationError("missing webhook authentication headers"))
		return
	}

	if err := h.validator.ValidateSignature(body, signature, apiKey); err != nil {
		writeError(ctx, w, domain.NewUnauthorizedError("webhook signature verification failed", err))
		return
	}

	event, err := models.ClassifyCallEvent(body)
	if err != nil {
		writeError(ctx, w, domain.NewValidationError("unprocessable webhook event", err))
		return
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", event.EventType()))

	switch e := event.(type) {
	case models.SessionStartedEvent:
		err = h.lifecycleService.HandleSessionStarted(ctx, e)
	case models.ParticipantLeftEvent:
		err = h.lifecycleService.HandleParticipantLeft(ctx, e)
	default:
		slog.DebugContext(ctx, "acknowledging unhandled webhook event")
	}

	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// agentJoinRequest is the body of the agent-join operation.
type agentJoinRequest struct {
	MeetingID string `json:"meetingId"`
}

// HandleAgentJoin re-attaches a meeting's agent to its live call. Joining does
// not alter the meeting status.
func (h *WebhookHandler) HandleAgentJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload agentJoinRequest
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if payload.MeetingID == "" {
		writeError(ctx, w, domain.NewValidationError("meetingId is required"))
		return
	}

	agent, err := h.lifecycleService.ConnectAgent(ctx, payload.MeetingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	slog.DebugContext(ctx, "agent joined via agent-join endpoint", "agent_uid", agent.UID)
	writeJSON(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}
