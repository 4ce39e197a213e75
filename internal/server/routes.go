package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/llm"
)

type answerRequest struct {
	Query string `json:"query"`
	Role  string `json:"role"`
}

type answerResponse struct {
	Answer        string `json:"answer"`
	Role          string `json:"role"`
	BackendActive bool   `json:"backend_active"`
}

type backendRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	BaseURL  string `json:"base_url"`
}

type backendResponse struct {
	Active bool   `json:"active"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// RegisterRoutes mounts the answer and backend endpoints under /api.
func RegisterRoutes(r chi.Router, a *assistant.Assistant) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/answer", handleAnswer(a))
		r.Get("/backend", handleBackendStatus(a))
		r.Put("/backend", handleBackendEnable(a))
		r.Delete("/backend", handleBackendDisable(a))
	})
}

func handleAnswer(a *assistant.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		if req.Role == "" {
			req.Role = string(assistant.Customer)
		}
		role, err := assistant.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx := assistant.WithSurface(r.Context(), assistant.SurfaceHTTP)
		answer := a.Answer(ctx, req.Query, role)
		writeJSON(w, http.StatusOK, answerResponse{
			Answer:        answer,
			Role:          string(role),
			BackendActive: a.BackendActive(),
		})
	}
}

func handleBackendStatus(a *assistant.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, backendStatus(a))
	}
}

func handleBackendEnable(a *assistant.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Provider == "" {
			writeError(w, http.StatusBadRequest, "provider is required")
			return
		}

		err := a.EnableBackend(req.Provider, llm.Options{Model: req.Model, BaseURL: req.BaseURL})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, backendStatus(a))
	}
}

func handleBackendDisable(a *assistant.Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.DisableBackend()
		writeJSON(w, http.StatusOK, backendStatus(a))
	}
}

func backendStatus(a *assistant.Assistant) backendResponse {
	return backendResponse{
		Active: a.BackendActive(),
		Name:   a.BackendName(),
		Status: a.BackendStatus(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
