// Package http exposes the controller over a small JSON API: element status,
// manual trigger injection, configuration diagnostics and a live SSE stream
// of state-change notifications.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/shift/pkg/domain"
	"github.com/aretw0/shift/pkg/ports"
)

// Controller defines the surface of the shift composition root consumed by
// this adapter.
type Controller interface {
	Elements() []domain.ElementStatus
	StateOf(id string) (domain.ElementStatus, error)
	Fire(ctx context.Context, id string) error
	Diagnostics() map[string][]domain.Diagnostic
	Bus() ports.Bus
}

// Server routes HTTP requests onto a Controller.
type Server struct {
	ctrl   Controller
	logger *slog.Logger
}

// NewHandler creates an HTTP handler for the controller.
func NewHandler(ctrl Controller, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ctrl: ctrl, logger: logger}

	r := chi.NewRouter()
	r.Get("/elements", s.listElements)
	r.Get("/elements/{id}", s.getElement)
	r.Post("/elements/{id}/trigger", s.trigger)
	r.Get("/diagnostics", s.diagnostics)
	r.Get("/events", s.subscribeEvents)
	return r
}

func (s *Server) listElements(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ctrl.Elements())
}

func (s *Server) getElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := s.ctrl.StateOf(id)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownElement) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, status)
}

func (s *Server) trigger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ctrl.Fire(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUnknownElement) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ctrl.Diagnostics())
}

// subscribeEvents streams state-change notifications as SSE, fed by a
// wildcard subscription on the cascade bus.
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := make(chan *domain.StateChangedEvent, 16)
	cancel, err := s.ctrl.Bus().Subscribe(ports.SubscribeAll, func(evt *domain.StateChangedEvent) {
		select {
		case events <- evt:
		default:
			// Slow consumer: drop rather than block the publisher.
		}
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Subscribe error: %v", err), http.StatusInternalServerError)
		return
	}
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-events:
			data, err := json.Marshal(evt)
			if err != nil {
				s.logger.Warn("failed to encode event", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}
