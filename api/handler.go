// Copyright 2026 The Warren Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/warren-foundation/warren/lifecycle"
)

// Handler routes the container API to the lifecycle core.
type Handler struct {
	provisioner *lifecycle.Provisioner
	registry    *lifecycle.Registry
	logger      *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(provisioner *lifecycle.Provisioner, registry *lifecycle.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{provisioner: provisioner, registry: registry, logger: logger}
}

// Routes returns the API mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/container", h.handleCreate)
	mux.HandleFunc("GET /api/containers", h.handleList)
	mux.HandleFunc("GET /api/container/{id}", h.handleGet)
	mux.HandleFunc("DELETE /api/container/{id}", h.handleDelete)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, errorResponse{Error: message})
}

func respondErrorf(w http.ResponseWriter, statusCode int, format string, args ...any) {
	respondError(w, statusCode, fmt.Sprintf(format, args...))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session, err := h.provisioner.Provision(r.Context())
	switch {
	case errors.Is(err, lifecycle.ErrCapacityExceeded):
		respondError(w, http.StatusServiceUnavailable, "capacity exceeded, retry later")
		return
	case err != nil:
		h.logger.Error("provisioning session", "error", err)
		respondError(w, http.StatusInternalServerError, "provisioning failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"sessionId":     session.ID,
		"workspacePath": session.WorkspacePath,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.registry.ListAll(r.Context())
	if err != nil {
		h.logger.Error("listing sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "listing sessions failed")
		return
	}
	if sessions == nil {
		sessions = []*lifecycle.Session{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, status, err := h.provisioner.Describe(r.Context(), id)
	switch {
	case errors.Is(err, lifecycle.ErrSessionNotFound):
		respondErrorf(w, http.StatusNotFound, "unknown session %s", id)
		return
	case errors.Is(err, lifecycle.ErrSandboxGone):
		respondErrorf(w, http.StatusGone, "sandbox for session %s is gone", id)
		return
	case err != nil:
		h.logger.Error("describing session", "session_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "describing session failed")
		return
	}

	state := "running"
	if !status.Running {
		state = "exited"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessionId":     session.ID,
		"sandboxName":   session.SandboxName,
		"workspacePath": session.WorkspacePath,
		"status":        state,
		"createdAt":     session.CreatedAt,
		"lastActive":    session.LastActive,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.provisioner.Deprovision(r.Context(), id)
	switch {
	case errors.Is(err, lifecycle.ErrSessionNotFound):
		respondErrorf(w, http.StatusNotFound, "unknown session %s", id)
		return
	case err != nil:
		h.logger.Error("deleting session", "session_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "deleting session failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":   "session deleted",
		"sessionId": id,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
