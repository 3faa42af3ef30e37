// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package models

import (
	"strings"
	"time"
)

// AgentUserPrefix prefixes the call-participant identity of every AI agent so
// that it can be told apart from human participants.
const AgentUserPrefix = "agent_"

// Agent is the key-value store representation of an AI agent persona.
type Agent struct {
	UID          string     `json:"uid"`
	Name         string     `json:"name"`
	Instructions string     `json:"instructions"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// CallUserID is the identity the agent joins calls with.
func (a *Agent) CallUserID() string {
	return AgentUserPrefix + a.UID
}

// IsAgentUser reports whether a call participant identifier belongs to an AI
// agent rather than a human.
func IsAgentUser(userID string) bool {
	return strings.HasPrefix(userID, AgentUserPrefix)
}
