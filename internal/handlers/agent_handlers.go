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

// AgentHandler serves the agent CRUD endpoints and agent-related NATS messages.
type AgentHandler struct {
	agentService *service.AgentService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(agentService *service.AgentService) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
	}
}

// HandlerReady reports whether the handler can serve requests.
func (h *AgentHandler) HandlerReady() bool {
	return h.agentService != nil && h.agentService.ServiceReady()
}

// CreateAgent handles POST /api/agents.
func (h *AgentHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload service.CreateAgentRequest
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := h.agentService.CreateAgent(ctx, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, agent)
}

// GetAgents handles GET /api/agents.
func (h *AgentHandler) GetAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agents, err := h.agentService.GetAgents(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agents)
}

// GetAgent handles GET /api/agents/{uid}.
func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	agent, err := h.agentService.GetAgent(ctx, uid)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

// UpdateAgent handles PUT /api/agents/{uid}.
func (h *AgentHandler) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	var payload service.UpdateAgentRequest
	if err := decodeJSONBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	agent, err := h.agentService.UpdateAgent(ctx, uid, &payload)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, agent)
}

// DeleteAgent handles DELETE /api/agents/{uid}.
func (h *AgentHandler) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := chi.URLParam(r, "uid")

	if err := h.agentService.DeleteAgent(ctx, uid); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMessage implements domain.MessageHandler for agent subjects.
func (h *AgentHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	if subject != models.AgentGetNameSubject {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := h.HandleAgentGetName(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		h.respond(ctx, msg, nil)
		return
	}
	h.respond(ctx, msg, response)
}

func (h *AgentHandler) respond(ctx context.Context, msg domain.Message, response []byte) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(response); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// HandleAgentGetName replies with the name of the agent whose UID is the
// message payload.
func (h *AgentHandler) HandleAgentGetName(ctx context.Context, msg domain.Message) ([]byte, error) {
	if !h.agentService.ServiceReady() {
		return nil, fmt.Errorf("agent service not ready")
	}

	agentUID := string(msg.Data())
	ctx = logging.AppendCtx(ctx, slog.String("agent_uid", agentUID))

	agent, err := h.agentService.GetAgent(ctx, agentUID)
	if err != nil {
		return nil, err
	}
	return []byte(agent.Name), nil
}
