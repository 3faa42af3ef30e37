// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/domain/models"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/messaging"
	"github.com/shashi162003/meetai-meeting-service/internal/infrastructure/store"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/service"
)

const (
	// natsQueueName is the queue group shared by all service replicas so each
	// message is handled by exactly one instance.
	natsQueueName = "meetai-meeting-service"

	// natsConnectTimeout is the timeout for establishing the NATS connection.
	natsConnectTimeout = 10 * time.Second

	// natsShutdownTimeout is the timeout for draining the NATS connection.
	natsShutdownTimeout = 25 * time.Second

	// httpShutdownTimeout is the timeout for the HTTP server shutdown.
	httpShutdownTimeout = 25 * time.Second
)

// repositories holds the key-value backed repositories used by the services.
type repositories struct {
	Meeting domain.MeetingRepository
	Agent   domain.AgentRepository
}

// setupNATS establishes the NATS connection with reconnect handling. The
// connection participates in graceful shutdown via the wait group, and an
// unexpected close signals the done channel so the process exits.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)

	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsShutdownTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.With("url", c.ConnectedUrl()).Info("reconnected to NATS server")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("disconnected from NATS server")
			}
		}),
		nats.ClosedHandler(func(c *nats.Conn) {
			gracefulCloseWG.Done()
			if ctx.Err() == nil {
				// Connection closed without a shutdown being requested.
				slog.With(logging.ErrKey, c.LastError()).Error("NATS connection closed unexpectedly")
				done <- os.Interrupt
			}
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, err
	}

	slog.With("url", env.NatsURL).Debug("connected to NATS server")

	return natsConn, nil
}

// getKeyValueStores creates the JetStream key-value buckets for the service
// and wraps them in the domain repositories.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return repositories{}, err
	}

	meetingsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVBucketNameMeetings,
	})
	if err != nil {
		return repositories{}, err
	}

	agentsKV, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: store.KVBucketNameAgents,
	})
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		Meeting: store.NewNatsMeetingRepository(meetingsKV),
		Agent:   store.NewNatsAgentRepository(agentsKV),
	}, nil
}

// createNatsSubcriptions subscribes the message handlers to their subjects.
// All subscriptions use the same queue group so replicas share the load.
func createNatsSubcriptions(ctx context.Context, handlers map[string]domain.MessageHandler, natsConn *nats.Conn) error {
	for subject, handler := range handlers {
		_, err := natsConn.QueueSubscribe(subject, natsQueueName, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, messaging.NewNatsMessage(msg))
		})
		if err != nil {
			slog.With(logging.ErrKey, err, "subject", subject).Error("error subscribing to NATS subject")
			return err
		}
		slog.With("subject", subject, "queue", natsQueueName).Debug("subscribed to NATS subject")
	}
	return nil
}

// natsSubjectHandlers maps each subscribed subject to its message handler.
func natsSubjectHandlers(meetingHandler, agentHandler domain.MessageHandler) map[string]domain.MessageHandler {
	return map[string]domain.MessageHandler{
		models.MeetingGetTitleSubject:  meetingHandler,
		models.MeetingReconcileSubject: meetingHandler,
		models.AgentGetNameSubject:     agentHandler,
	}
}

// gracefulShutdown stops the HTTP server, tears down live voice sessions,
// drains the NATS connection, and waits for everything to finish.
func gracefulShutdown(
	httpServer *http.Server,
	natsConn *nats.Conn,
	lifecycleService *service.MeetingLifecycleService,
	gracefulCloseWG *sync.WaitGroup,
	cancel context.CancelFunc,
) {
	slog.Info("shutting down meeting service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.With(logging.ErrKey, err).Error("error shutting down http server")
	}
	// The HTTP listener goroutine holds a wait group slot which is released
	// here, after Shutdown has completed.
	gracefulCloseWG.Done()

	lifecycleService.CloseAllSessions()

	// Cancel the context before draining so the closed handler knows the
	// shutdown was requested.
	cancel()

	if !natsConn.IsClosed() {
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
		}
	}

	gracefulCloseWG.Wait()
	slog.Info("meeting service stopped")
}
