// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

// Package service holds the business logic of the meeting service.
package service

// Service is the base interface every service implements.
type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the services.
type ServiceConfig struct {
	// RealtimeVoice is the voice the agent speaks with.
	RealtimeVoice string
	// RealtimeVADThreshold tunes the server-side voice activity detector.
	RealtimeVADThreshold float64
	// RealtimePrefixPaddingMs is the audio padding kept before detected speech.
	RealtimePrefixPaddingMs int
	// RealtimeSilenceDurationMs is the silence window that ends a turn.
	RealtimeSilenceDurationMs int
	// ReconcileWorkers bounds the parallelism of the reconcile sweep.
	ReconcileWorkers int
}

// Realtime session defaults applied when a config value is unset.
const (
	DefaultRealtimeVoice             = "alloy"
	DefaultRealtimeVADThreshold      = 0.5
	DefaultRealtimePrefixPaddingMs   = 300
	DefaultRealtimeSilenceDurationMs = 500
	DefaultReconcileWorkers          = 4

	realtimeAudioFormat        = "pcm16"
	realtimeTranscriptionModel = "whisper-1"
)

func (c ServiceConfig) voice() string {
	if c.RealtimeVoice == "" {
		return DefaultRealtimeVoice
	}
	return c.RealtimeVoice
}

func (c ServiceConfig) vadThreshold() float64 {
	if c.RealtimeVADThreshold == 0 {
		return DefaultRealtimeVADThreshold
	}
	return c.RealtimeVADThreshold
}

func (c ServiceConfig) prefixPaddingMs() int {
	if c.RealtimePrefixPaddingMs == 0 {
		return DefaultRealtimePrefixPaddingMs
	}
	return c.RealtimePrefixPaddingMs
}

func (c ServiceConfig) silenceDurationMs() int {
	if c.RealtimeSilenceDurationMs == 0 {
		return DefaultRealtimeSilenceDurationMs
	}
	return c.RealtimeSilenceDurationMs
}

func (c ServiceConfig) reconcileWorkers() int {
	if c.ReconcileWorkers <= 0 {
		return DefaultReconcileWorkers
	}
	return c.ReconcileWorkers
}
