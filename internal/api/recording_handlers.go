package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/technosupport/ts-shopguard/internal/recording"
)

type RecordingsHandler struct {
	Sink  recording.Sink
	Blobs recording.BlobStore
}

func NewRecordingsHandler(sink recording.Sink, blobs recording.BlobStore) *RecordingsHandler {
	return &RecordingsHandler{Sink: sink, Blobs: blobs}
}

// GET /api/v1/recordings
func (h *RecordingsHandler) List(w http.ResponseWriter, r *http.Request) {
	arts, err := h.Sink.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not load recordings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"recordings": arts})
}

// DELETE /api/v1/recordings/{id}
func (h *RecordingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid recording id")
		return
	}

	if err := h.Sink.Remove(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "Could not delete recording")
		return
	}
	if err := h.Blobs.Delete(id); err != nil {
		// The listing entry is gone; an orphaned media file is tolerable.
		log.Printf("[WARN] Recordings: delete media %s: %v", id, err)
	}
	w.WriteHeader(http.StatusNoContent)
}
