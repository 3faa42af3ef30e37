// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shashi162003/meetai-meeting-service/internal/handlers"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/middleware"
)

// apiHandlers groups the HTTP handlers mounted on the router.
type apiHandlers struct {
	Webhook *handlers.WebhookHandler
	Meeting *handlers.MeetingHandler
	Agent   *handlers.AgentHandler
	Health  *handlers.HealthHandler
}

// newRouter builds the chi router with all service routes mounted.
func newRouter(h apiHandlers) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/webhooks/stream", h.Webhook.HandleWebhook)

	router.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Post("/agent-join", h.Webhook.HandleAgentJoin)

		apiRouter.Route("/meetings", func(meetingRouter chi.Router) {
			meetingRouter.Post("/", h.Meeting.CreateMeeting)
			meetingRouter.Get("/", h.Meeting.GetMeetings)
			meetingRouter.Get("/{uid}", h.Meeting.GetMeeting)
			meetingRouter.Put("/{uid}", h.Meeting.UpdateMeeting)
			meetingRouter.Post("/{uid}/cancel", h.Meeting.CancelMeeting)
			meetingRouter.Delete("/{uid}", h.Meeting.DeleteMeeting)
		})

		apiRouter.Route("/agents", func(agentRouter chi.Router) {
			agentRouter.Post("/", h.Agent.CreateAgent)
			agentRouter.Get("/", h.Agent.GetAgents)
			agentRouter.Get("/{uid}", h.Agent.GetAgent)
			agentRouter.Put("/{uid}", h.Agent.UpdateAgent)
			agentRouter.Delete("/{uid}", h.Agent.DeleteAgent)
		})
	})

	router.Get("/livez", h.Health.Livez)
	router.Get("/readyz", h.Health.Readyz)

	return router
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, h apiHandlers, gracefulCloseWG *sync.WaitGroup) *http.Server {
	var handler http.Handler = newRouter(h)

	handler = otelhttp.NewHandler(handler, "meetai-meeting-service")

	// Add HTTP middleware
	// Note: Order matters - RequestIDMiddleware should come first in the chain,
	// so it should be the last middleware added to the handler since it is executed in reverse order.
	handler = middleware.RequestLoggerMiddleware()(handler)
	handler = middleware.RequestIDMiddleware()(handler)

	// Set up http listener in a goroutine using provided command line parameters.
	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}
	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// Because ErrServerClosed is *immediately* returned when Shutdown is
		// called, not when Shutdown completes, this must not yet decrement
		// the wait group.
	}()

	return httpServer
}
