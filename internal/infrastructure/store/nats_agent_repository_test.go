// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
)

func seedAgent(t *testing.T, kv *mockNatsKeyValue, agent *models.Agent) uint64 {
	t.Helper()
	data, err := json.Marshal(agent)
	require.NoError(t, err)
	revision, err := kv.Put(context.Background(), agent.UID, data)
	require.NoError(t, err)
	return revision
}

func TestNatsAgentRepositoryGet(t *testing.T) {
	t.Run("returns stored agent", func(t *testing.T) {
		kv := newMockNatsKeyValue()
		repo := NewNatsAgentRepository(kv)
		seedAgent(t, kv, &models.Agent{UID: "agent-1", Name: "Notetaker", Instructions: "Be concise."})

		agent, err := repo.Get(context.Background(), "agent-1")
		require.NoError(t, err)
		assert.Equal(t, "Notetaker", agent.Name)
		assert.Equal(t, "Be concise.", agent.Instructions)
	})

	t.Run("maps missing key to not found", func(t *testing.T) {
		repo := NewNatsAgentRepository(newMockNatsKeyValue())

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	})

	t.Run("nil bucket is unavailable", func(t *testing.T) {
		repo := NewNatsAgentRepository(nil)

		_, err := repo.Get(context.Background(), "any")
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})
}

func TestNatsAgentRepositoryUpdate(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsAgentRepository(kv)
	rev := seedAgent(t, kv, &models.Agent{UID: "agent-1", Name: "Notetaker"})

	err := repo.Update(context.Background(), &models.Agent{UID: "agent-1", Name: "Scribe"}, rev)
	require.NoError(t, err)

	err = repo.Update(context.Background(), &models.Agent{UID: "agent-1", Name: "Scribe"}, rev)
	assert.ErrorIs(t, err, domain.ErrRevisionMismatch)
}

func TestNatsAgentRepositoryListAll(t *testing.T) {
	kv := newMockNatsKeyValue()
	repo := NewNatsAgentRepository(kv)
	seedAgent(t, kv, &models.Agent{UID: "agent-1"})
	seedAgent(t, kv, &models.Agent{UID: "agent-2"})

	agents, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, agents, 2)
}
