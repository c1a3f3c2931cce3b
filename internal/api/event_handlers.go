package api

import (
	"net/http"
	"strconv"

	"github.com/technosupport/ts-shopguard/internal/events"
)

type EventsHandler struct {
	Sink events.Sink
}

func NewEventsHandler(sink events.Sink) *EventsHandler {
	return &EventsHandler{Sink: sink}
}

// GET /api/v1/events?limit=N returns the newest events first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}

	evts, err := h.Sink.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not load events")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": evts})
}
