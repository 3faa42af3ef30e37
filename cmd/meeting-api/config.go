// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/shashi162003/meetai-meeting-service/internal/logging"
	"github.com/shashi162003/meetai-meeting-service/internal/service"
)

// flags are the command line flags for the meeting service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the meeting service.
type environment struct {
	Port     string
	NatsURL  string
	Stream   streamConfig
	OpenAI   openAIConfig
	Realtime realtimeConfig
}

// streamConfig holds the video provider API credentials.
type streamConfig struct {
	APIKey    string
	APISecret string
}

// openAIConfig holds the realtime voice provider credentials.
type openAIConfig struct {
	APIKey string
}

// realtimeConfig holds the tunable voice session parameters.
type realtimeConfig struct {
	Voice             string
	VADThreshold      float64
	PrefixPaddingMs   int
	SilenceDurationMs int
	ReconcileWorkers  int
}

// parseFlags parses command line flags for the meeting service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the meeting service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	return environment{
		Port:     port,
		NatsURL:  natsURL,
		Stream:   parseStreamConfig(),
		OpenAI:   parseOpenAIConfig(),
		Realtime: parseRealtimeConfig(),
	}
}

// parseStreamConfig parses the video provider credentials from environment variables
func parseStreamConfig() streamConfig {
	apiKey := os.Getenv("STREAM_API_KEY")
	if apiKey == "" {
		slog.Error("STREAM_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	apiSecret := os.Getenv("STREAM_API_SECRET")
	if apiSecret == "" {
		slog.Error("STREAM_API_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	return streamConfig{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
}

// parseOpenAIConfig parses the realtime voice provider credentials from environment variables
func parseOpenAIConfig() openAIConfig {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		slog.Error("OPENAI_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	return openAIConfig{
		APIKey: apiKey,
	}
}

// parseRealtimeConfig parses the optional voice session overrides from environment variables
func parseRealtimeConfig() realtimeConfig {
	config := realtimeConfig{
		Voice:             os.Getenv("REALTIME_VOICE"),
		VADThreshold:      parseFloatEnv("REALTIME_VAD_THRESHOLD"),
		PrefixPaddingMs:   parseIntEnv("REALTIME_PREFIX_PADDING_MS"),
		SilenceDurationMs: parseIntEnv("REALTIME_SILENCE_DURATION_MS"),
		ReconcileWorkers:  parseIntEnv("RECONCILE_WORKERS"),
	}
	return config
}

// serviceConfig maps the environment onto the service configuration, leaving
// zero values for the service defaults to fill in.
func (e environment) serviceConfig() service.ServiceConfig {
	return service.ServiceConfig{
		RealtimeVoice:             e.Realtime.Voice,
		RealtimeVADThreshold:      e.Realtime.VADThreshold,
		RealtimePrefixPaddingMs:   e.Realtime.PrefixPaddingMs,
		RealtimeSilenceDurationMs: e.Realtime.SilenceDurationMs,
		ReconcileWorkers:          e.Realtime.ReconcileWorkers,
	}
}

func parseIntEnv(name string) int {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid integer environment variable, using default")
		return 0
	}
	return val
}

func parseFloatEnv(name string) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.With(logging.ErrKey, err, "name", name, "value", raw).Error("invalid float environment variable, using default")
		return 0
	}
	return val
}
