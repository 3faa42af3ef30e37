// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		APIKey:         "test-key",
		APISecret:      "test-secret",
		BaseURL:        baseURL,
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestClientAuthentication(t *testing.T) {
	var gotAPIKey, gotAuthType, gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.URL.Query().Get("api_key")
		gotAuthType = r.Header.Get("Stream-Auth-Type")
		gotToken = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"call":{"cid":"default:meeting-1","type":"default","id":"meeting-1"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetCall(context.Background(), "default", "meeting-1")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "jwt", gotAuthType)

	parsed, err := jwt.Parse(gotToken, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.EndCall(context.Background(), "default", "meeting-1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":16,"message":"call not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.EndCall(context.Background(), "default", "meeting-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call not found")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClientUpdateCallMembers(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.UpdateCallMembers(context.Background(), "default", "meeting-1", &UpdateCallMembersRequest{
		UpdateMembers: []CallMemberRequest{{UserID: "agent_abc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/video/call/default/meeting-1/members", gotPath)
}

type trackedBody struct {
	io.Reader
	closed *atomic.Bool
}

func (b *trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

type sequencedTransport struct {
	statuses []int
	bodies   []*atomic.Bool
	attempt  atomic.Int32
}

func (t *sequencedTransport) RoundTrip(*http.Request) (*http.Response, error) {
	i := int(t.attempt.Add(1)) - 1
	closed := &atomic.Bool{}
	t.bodies = append(t.bodies, closed)
	return &http.Response{
		StatusCode: t.statuses[i],
		Body:       &trackedBody{Reader: strings.NewReader(`{}`), closed: closed},
		Header:     make(http.Header),
	}, nil
}

func TestClientClosesRetriedResponseBodies(t *testing.T) {
	transport := &sequencedTransport{statuses: []int{http.StatusInternalServerError, http.StatusOK}}

	client := newTestClient("http://stream.local")
	client.httpClient = &http.Client{Transport: transport}

	resp, err := client.doRequest(context.Background(), http.MethodGet, "/video/call/default/meeting-1", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	require.Len(t, transport.bodies, 2)
	assert.True(t, transport.bodies[0].Load(), "failed attempt body should be closed")
	assert.True(t, transport.bodies[1].Load())
}
