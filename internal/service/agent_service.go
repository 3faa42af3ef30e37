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

// AgentService owns the agent persona CRUD operations.
type AgentService struct {
	AgentRepository domain.AgentRepository
	Config          ServiceConfig
}

// NewAgentService creates a new AgentService.
func NewAgentService(agentRepository domain.AgentRepository, config ServiceConfig) *AgentService {
	return &AgentService{
		AgentRepository: agentRepository,
		Config:          config,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *AgentService) ServiceReady() bool {
	return s.AgentRepository != nil
}

// CreateAgentRequest carries the caller-supplied fields of a new agent.
type CreateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// CreateAgent creates a new agent persona.
func (s *AgentService) CreateAgent(ctx context.Context, payload *CreateAgentRequest) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if payload == nil || payload.Name == "" || payload.Instructions == "" {
		return nil, domain.NewValidationError("name and instructions are required")
	}

	uid, err := utils.NewID()
	if err != nil {
		slog.ErrorContext(ctx, "error generating agent uid", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	now := time.Now().UTC()
	agent := &models.Agent{
		UID:          uid,
		Name:         payload.Name,
		Instructions: payload.Instructions,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}

	if err := s.AgentRepository.Create(ctx, agent); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "created agent", "agent_uid", agent.UID)
	return agent, nil
}

// GetAgent fetches one agent by UID.
func (s *AgentService) GetAgent(ctx context.Context, agentUID string) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.AgentRepository.Get(ctx, agentUID)
}

// GetAgents fetches all agents.
func (s *AgentService) GetAgents(ctx context.Context) ([]*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}
	return s.AgentRepository.ListAll(ctx)
}

// UpdateAgentRequest carries the mutable fields of an agent.
type UpdateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

// UpdateAgent changes an agent's name or instructions. Live sessions are not
// reconfigured; new instructions apply from the next session-started join.
func (s *AgentService) UpdateAgent(ctx context.Context, agentUID string, payload *UpdateAgentRequest) (*models.Agent, error) {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return nil, domain.ErrServiceUnavailable
	}

	if payload == nil || (payload.Name == "" && payload.Instructions == "") {
		return nil, domain.NewValidationError("nothing to update")
	}

	agent, revision, err := s.AgentRepository.GetWithRevision(ctx, agentUID)
	if err != nil {
		return nil, err
	}

	if payload.Name != "" {
		agent.Name = payload.Name
	}
	if payload.Instructions != "" {
		agent.Instructions = payload.Instructions
	}
	now := time.Now().UTC()
	agent.UpdatedAt = &now

	if err := s.AgentRepository.Update(ctx, agent, revision); err != nil {
		return nil, err
	}
	return agent, nil
}

// DeleteAgent removes an agent persona.
func (s *AgentService) DeleteAgent(ctx context.Context, agentUID string) error {
	if !s.ServiceReady() {
		slog.ErrorContext(ctx, "service not initialized", logging.PriorityCritical())
		return domain.ErrServiceUnavailable
	}

	_, revision, err := s.AgentRepository.GetWithRevision(ctx, agentUID)
	if err != nil {
		return err
	}

	return s.AgentRepository.Delete(ctx, agentUID, revision)
}
