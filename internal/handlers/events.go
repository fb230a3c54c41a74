package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joslsmit/ratm-app/internal/logger"
)

const keepaliveInterval = 30 * time.Second

// EventsSSE streams the caller's draft kit changes as Server-Sent Events
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.pubsub == nil {
		http.Error(w, "Events not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flush := func() {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	clientID := uuid.NewString()
	logger.Debug("SSE client connected", "client", clientID, "user", s.UserID)

	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"clientId\":%q}\n\n", clientID)
	flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event.UserID != s.UserID {
				continue
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error("Failed to marshal SSE event", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\ndata: %s\n\n", event.ID, data)
			flush()
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected", "client", clientID)
			return
		case <-keepalive.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flush()
		}
	}
}
