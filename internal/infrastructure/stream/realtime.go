// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package stream implements call control on the Stream Video API and the
// realtime voice backend.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashi162003/meetai-meeting-service/internal/domain"
	"github.com/shashi162003/meetai-meeting-service/internal/logging"
)

const (
	// RealtimeBaseURL is the websocket endpoint of the realtime voice API.
	RealtimeBaseURL = "wss://api.openai.com/v1/realtime"
	// DefaultRealtimeModel is the realtime model used for agent sessions.
	DefaultRealtimeModel = "gpt-4o-realtime-preview"

	realtimeHandshakeTimeout = 10 * time.Second
	realtimeWriteTimeout     = 10 * time.Second
)

// RealtimeDialer opens realtime voice sessions. Pulled out as an interface so
// the provider can be tested without a live websocket.
type RealtimeDialer interface {
	DialSession(ctx context.Context, callCID string, agentUserID string) (domain.RealtimeSession, error)
}

// OpenAIRealtimeDialer dials the OpenAI realtime API over websocket.
type OpenAIRealtimeDialer struct {
	apiKey  string
	baseURL string
	model   string
}

// NewOpenAIRealtimeDialer creates a realtime dialer with the given API key.
func NewOpenAIRealtimeDialer(apiKey string) *OpenAIRealtimeDialer {
	return &OpenAIRealtimeDialer{
		apiKey:  apiKey,
		baseURL: RealtimeBaseURL,
		model:   DefaultRealtimeModel,
	}
}

// DialSession opens a realtime websocket session for the given call. The
// returned session is live until Close is called or the peer disconnects.
func (d *OpenAIRealtimeDialer) DialSession(ctx context.Context, callCID string, agentUserID string) (domain.RealtimeSession, error) {
	if d.apiKey == "" {
		return nil, fmt.Errorf("realtime api key not configured")
	}

	endpoint, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing realtime url: %w", err)
	}
	query := endpoint.Query()
	query.Set("model", d.model)
	endpoint.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+d.apiKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{
		HandshakeTimeout: realtimeHandshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, fmt.Errorf("dialing realtime session (status %d): %w", status, err)
	}

	session := &realtimeSession{
		conn:        conn,
		callCID:     callCID,
		agentUserID: agentUserID,
		done:        make(chan struct{}),
	}
	go session.readLoop()

	slog.DebugContext(ctx, "realtime session established",
		"call_cid", callCID,
		"agent_user_id", agentUserID,
	)
	return session, nil
}

// realtimeSession is a live realtime websocket connection.
type realtimeSession struct {
	conn        *websocket.Conn
	callCID     string
	agentUserID string

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// sessionUpdateEvent is the session.update frame of the realtime protocol.
type sessionUpdateEvent struct {
	Type    string               `json:"type"`
	Session sessionUpdatePayload `json:"session"`
}

type sessionUpdatePayload struct {
	Instructions            string              `json:"instructions"`
	Voice                   string              `json:"voice,omitempty"`
	TurnDetection           *turnDetection      `json:"turn_detection,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string              `json:"output_audio_format,omitempty"`
	InputAudioTranscription *audioTranscription `json:"input_audio_transcription,omitempty"`
}

type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs int     `json:"silence_duration_ms,omitempty"`
}

type audioTranscription struct {
	Model string `json:"model"`
}

// UpdateSession pushes the agent configuration into the live session.
func (s *realtimeSession) UpdateSession(ctx context.Context, config domain.RealtimeSessionConfig) error {
	event := sessionUpdateEvent{
		Type: "session.update",
		Session: sessionUpdatePayload{
			Instructions: config.Instructions,
			Voice:        config.Voice,
			TurnDetection: &turnDetection{
				Type:              "server_vad",
				Threshold:         config.VADThreshold,
				PrefixPaddingMs:   config.PrefixPaddingMs,
				SilenceDurationMs: config.SilenceDurationMs,
			},
			InputAudioFormat:  config.InputAudioFormat,
			OutputAudioFormat: config.OutputAudioFormat,
			InputAudioTranscription: &audioTranscription{
				Model: config.TranscriptionModel,
			},
		},
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return fmt.Errorf("realtime session closed")
	default:
	}

	deadline := time.Now().Add(realtimeWriteTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}

	if err := s.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("sending session update: %w", err)
	}
	return nil
}

// readLoop drains incoming frames until the connection dies. The service does
// not consume realtime events; audio flows between the call and the voice
// backend out of band.
func (s *realtimeSession) readLoop() {
	defer close(s.done)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("realtime session read error",
					logging.ErrKey, err,
					"call_cid", s.callCID,
					"agent_user_id", s.agentUserID,
				)
			}
			return
		}
	}
}

// Close tears down the websocket connection. Safe to call more than once.
func (s *realtimeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		deadline := time.Now().Add(realtimeWriteTimeout)
		_ = s.conn.SetWriteDeadline(deadline)
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		err = s.conn.Close()
	})
	return err
}
