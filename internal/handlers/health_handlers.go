// Copyright The Meet.AI Authors.
// SPDX-License-Identifier: MIT

package handlers

import (
	"net/http"
)

// ReadyChecker reports whether a component can take traffic.
type ReadyChecker interface {
	HandlerReady() bool
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []ReadyChecker
}

// NewHealthHandler creates a health handler over the given components.
func NewHealthHandler(checkers ...ReadyChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Livez handles GET /livez.
func (h *HealthHandler) Livez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Readyz handles GET /readyz. Ready only when every component is ready.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	for _, checker := range h.checkers {
		if !checker.HandlerReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT READY"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
