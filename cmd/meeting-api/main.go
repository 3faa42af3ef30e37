// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package main is the meeting service API that provides a RESTful API for
// managing meetings and agents, receives video provider webhooks, and handles
// NATS messages for the meeting service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/shashi162003/meetai-meeting-service/internal/handlers"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/messaging"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/stream"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/stream/api"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/webhook"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection
	natsConn, err := setupNATS(ctx, env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	// Get the key-value stores for the service.
	repos, err := getKeyValueStores(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error getting key-value stores")
		return
	}

	// Initialize the video provider clients.
	streamClient := api.NewClient(api.Config{
		APIKey:    env.Stream.APIKey,
		APISecret: env.Stream.APISecret,
	})
	realtimeDialer := stream.NewOpenAIRealtimeDialer(env.OpenAI.APIKey)
	callProvider := stream.NewCallProvider(streamClient, realtimeDialer)
	webhookValidator := webhook.NewStreamWebhookValidator(env.Stream.APIKey, env.Stream.APISecret)

	// Initialize services
	serviceConfig := env.serviceConfig()
	messageBuilder := messaging.NewMessageBuilder(natsConn)
	meetingService := service.NewMeetingService(
		repos.Meeting,
		repos.Agent,
		serviceConfig,
	)
	agentService := service.NewAgentService(
		repos.Agent,
		serviceConfig,
	)
	lifecycleService := service.NewMeetingLifecycleService(
		repos.Meeting,
		repos.Agent,
		callProvider,
		messageBuilder,
		serviceConfig,
	)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(lifecycleService, webhookValidator)
	meetingHandler := handlers.NewMeetingHandler(meetingService, lifecycleService)
	agentHandler := handlers.NewAgentHandler(agentService)
	healthHandler := handlers.NewHealthHandler(webhookHandler, meetingHandler, agentHandler)

	httpServer := setupHTTPServer(flags, apiHandlers{
		Webhook: webhookHandler,
		Meeting: meetingHandler,
		Agent:   agentHandler,
		Health:  healthHandler,
	}, &gracefulCloseWG)

	// Create NATS subscriptions for the service.
	err = createNatsSubcriptions(ctx, natsSubjectHandlers(meetingHandler, agentHandler), natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, lifecycleService, &gracefulCloseWG, cancel)
}
