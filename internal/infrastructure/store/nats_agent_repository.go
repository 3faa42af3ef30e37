// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

// KVBucketNameAgents is the name of the KV bucket holding agent personas.
const KVBucketNameAgents = "agents"

// NatsAgentRepository stores agent personas in a NATS KV bucket keyed by UID.
type NatsAgentRepository struct {
	Agents INatsKeyValue
}

// NewNatsAgentRepository creates an agent repository backed by the given bucket.
func NewNatsAgentRepository(agents INatsKeyValue) *NatsAgentRepository {
	return &NatsAgentRepository{
		Agents: agents,
	}
}

func (r *NatsAgentRepository) getEntry(ctx context.Context, agentUID string) (jetstream.KeyValueEntry, error) {
	if r.Agents == nil {
		return nil, domain.ErrServiceUnavailable
	}
	return r.Agents.Get(ctx, agentUID)
}

func (r *NatsAgentRepository) unmarshalEntry(ctx context.Context, entry jetstream.KeyValueEntry) (*models.Agent, error) {
	var agent models.Agent
	if err := json.Unmarshal(entry.Value(), &agent); err != nil {
		slog.ErrorContext(ctx, "error unmarshaling agent", logging.ErrKey, err)
		return nil, domain.ErrUnmarshal
	}
	return &agent, nil
}

// Get fetches an agent by UID.
func (r *NatsAgentRepository) Get(ctx context.Context, agentUID string) (*models.Agent, error) {
	agent, _, err := r.GetWithRevision(ctx, agentUID)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// GetWithRevision fetches an agent along with the KV revision of its entry.
func (r *NatsAgentRepository) GetWithRevision(ctx context.Context, agentUID string) (agent *models.Agent, revision uint64, err error) {
	ctx, span := startKVSpan(ctx, "get", "agent", agentUID)
	defer func() { endKVSpan(span, err) }()

	entry, err := r.getEntry(ctx, agentUID)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.WarnContext(ctx, "agent not found", logging.ErrKey, domain.ErrAgentNotFound, "agent_uid", agentUID)
			return nil, 0, domain.ErrAgentNotFound
		}
		slog.ErrorContext(ctx, "error getting agent from NATS KV", logging.ErrKey, err)
		return nil, 0, err
	}

	agent, err = r.unmarshalEntry(ctx, entry)
	if err != nil {
		return nil, 0, err
	}

	return agent, entry.Revision(), nil
}

// ListAll returns every stored agent.
func (r *NatsAgentRepository) ListAll(ctx context.Context) (agents []*models.Agent, err error) {
	ctx, span := startKVSpan(ctx, "list", "agent", "")
	defer func() { endKVSpan(span, err) }()

	if r.Agents == nil {
		return nil, domain.ErrServiceUnavailable
	}

	keysLister, err := r.Agents.ListKeys(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error listing agent keys from NATS KV", logging.ErrKey, err)
		return nil, domain.ErrInternal
	}

	agents = []*models.Agent{}
	for key := range keysLister.Keys() {
		entry, err := r.getEntry(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			slog.ErrorContext(ctx, "error getting agent from NATS KV", logging.ErrKey, err, "agent_uid", key)
			return nil, domain.ErrInternal
		}

		agent, err := r.unmarshalEntry(ctx, entry)
		if err != nil {
			slog.ErrorContext(ctx, "error unmarshaling agent from NATS KV", logging.ErrKey, err, "agent_uid", key)
			return nil, domain.ErrUnmarshal
		}

		agents = append(agents, agent)
	}

	return agents, nil
}

// Create stores a new agent persona.
func (r *NatsAgentRepository) Create(ctx context.Context, agent *models.Agent) (err error) {
	ctx, span := startKVSpan(ctx, "put", "agent", agent.UID)
	defer func() { endKVSpan(span, err) }()

	if r.Agents == nil {
		return domain.ErrServiceUnavailable
	}

	jsonData, err := json.Marshal(agent)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling agent", logging.ErrKey, err)
		return domain.ErrInternal
	}

	if _, err := r.Agents.Put(ctx, agent.UID, jsonData); err != nil {
		slog.ErrorContext(ctx, "error putting agent into NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}

// Update writes the agent only if the entry is still at the given revision.
func (r *NatsAgentRepository) Update(ctx context.Context, agent *models.Agent, revision uint64) (err error) {
	ctx, span := startKVSpan(ctx, "update", "agent", agent.UID)
	defer func() { endKVSpan(span, err) }()

	if r.Agents == nil {
		return domain.ErrServiceUnavailable
	}

	jsonData, err := json.Marshal(agent)
	if err != nil {
		slog.ErrorContext(ctx, "error marshaling agent", logging.ErrKey, err)
		return domain.ErrInternal
	}

	if _, err := r.Agents.Update(ctx, agent.UID, jsonData, revision); err != nil {
		if strings.Contains(err.Error(), "wrong last sequence") {
			slog.WarnContext(ctx, "revision mismatch updating agent", logging.ErrKey, err, "agent_uid", agent.UID)
			return domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, "error updating agent in NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}

// Delete removes the agent entry, guarded by revision.
func (r *NatsAgentRepository) Delete(ctx context.Context, agentUID string, revision uint64) (err error) {
	ctx, span := startKVSpan(ctx, "delete", "agent", agentUID)
	defer func() { endKVSpan(span, err) }()

	if r.Agents == nil {
		return domain.ErrServiceUnavailable
	}

	err = r.Agents.Delete(ctx, agentUID, jetstream.LastRevision(revision))
	if err != nil {
		if strings.Contains(err.Error(), "wrong last sequence") {
			slog.WarnContext(ctx, "revision mismatch deleting agent", logging.ErrKey, err, "agent_uid", agentUID)
			return domain.ErrRevisionMismatch
		}
		slog.ErrorContext(ctx, "error deleting agent from NATS KV", logging.ErrKey, err)
		return domain.ErrInternal
	}

	return nil
}
