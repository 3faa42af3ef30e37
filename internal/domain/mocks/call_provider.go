// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
)

// MockCallProvider implements domain.CallProvider for testing
type MockCallProvider struct {
	mock.Mock
}

func (m *MockCallProvider) JoinCall(ctx context.Context, meetingUID string, userID string) error {
	args := m.Called(ctx, meetingUID, userID)
	return args.Error(0)
}

func (m *MockCallProvider) ConnectRealtimeAgent(ctx context.Context, meetingUID string, agentUserID string) (domain.RealtimeSession, error) {
	args := m.Called(ctx, meetingUID, agentUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RealtimeSession), args.Error(1)
}

func (m *MockCallProvider) GetCallState(ctx context.Context, meetingUID string) (*domain.CallState, error) {
	args := m.Called(ctx, meetingUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CallState), args.Error(1)
}

func (m *MockCallProvider) EndCall(ctx context.Context, meetingUID string) error {
	args := m.Called(ctx, meetingUID)
	return args.Error(0)
}

// MockRealtimeSession implements domain.RealtimeSession for testing
type MockRealtimeSession struct {
	mock.Mock
}

func (m *MockRealtimeSession) UpdateSession(ctx context.Context, config domain.RealtimeSessionConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockRealtimeSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
