// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
)

// MeetingRepository is the persistence port for meetings. Updates are guarded
// by the revision returned from reads: a write with a stale revision fails
// with ErrRevisionMismatch, which makes the lifecycle transitions a true
// compare-and-set.
type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	Exists(ctx context.Context, meetingUID string) (bool, error)
	Get(ctx context.Context, meetingUID string) (*models.Meeting, error)
	GetWithRevision(ctx context.Context, meetingUID string) (*models.Meeting, uint64, error)
	Update(ctx context.Context, meeting *models.Meeting, revision uint64) error
	Delete(ctx context.Context, meetingUID string, revision uint64) error
	ListAll(ctx context.Context) ([]*models.Meeting, error)
}

// AgentRepository is the persistence port for agent personas. The lifecycle
// orchestrator only ever reads from it.
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	Get(ctx context.Context, agentUID string) (*models.Agent, error)
	GetWithRevision(ctx context.Context, agentUID string) (*models.Agent, uint64, error)
	Update(ctx context.Context, agent *models.Agent, revision uint64) error
	Delete(ctx context.Context, agentUID string, revision uint64) error
	ListAll(ctx context.Context) ([]*models.Agent, error)
}
