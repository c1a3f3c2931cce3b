package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/technosupport/ts-shopguard/internal/camera"
	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/surveillance"
	"github.com/technosupport/ts-shopguard/internal/users"
)

// FramePusher accepts dashboard-captured JPEG snapshots and serves back the
// latest one as the preview image.
type FramePusher interface {
	Push(jpegData []byte) error
	Snapshot() ([]byte, bool)
}

type CameraHandler struct {
	Controller *surveillance.Controller
	Users      *users.Service
	Frames     FramePusher
}

func NewCameraHandler(c *surveillance.Controller, u *users.Service, frames FramePusher) *CameraHandler {
	return &CameraHandler{Controller: c, Users: u, Frames: frames}
}

// POST /api/v1/camera/start
func (h *CameraHandler) Start(w http.ResponseWriter, r *http.Request) {
	err := h.Controller.Start(r.Context())
	if errors.Is(err, camera.ErrPermissionDenied) {
		respondError(w, http.StatusForbidden, "Camera permission denied")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Could not start surveillance")
		return
	}
	respondJSON(w, http.StatusOK, h.Controller.Status())
}

// POST /api/v1/camera/stop
func (h *CameraHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.Controller.Stop()
	respondJSON(w, http.StatusOK, h.Controller.Status())
}

// GET /api/v1/camera/status
func (h *CameraHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Controller.Status())
}

type sensitivityRequest struct {
	Sensitivity int `json:"sensitivity"`
}

// PUT /api/v1/camera/sensitivity
func (h *CameraHandler) SetSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.Controller.SetSensitivity(req.Sensitivity); err != nil {
		respondError(w, http.StatusConflict, "Sensitivity is only adjustable while surveillance is active")
		return
	}

	// Persist the preference so it survives a restart. Best effort: the live
	// value is already applied.
	if ac, ok := middleware.GetAuthContext(r.Context()); ok {
		if _, err := h.Users.UpdateSensitivity(r.Context(), ac.Email, req.Sensitivity); err != nil {
			log.Printf("[WARN] Camera: persist sensitivity: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, h.Controller.Status())
}

// maxFrameBytes bounds a single pushed snapshot.
const maxFrameBytes = 2 << 20

// POST /api/v1/camera/frame ingests one JPEG snapshot from the dashboard.
func (h *CameraHandler) IngestFrame(w http.ResponseWriter, r *http.Request) {
	if h.Frames == nil {
		respondError(w, http.StatusServiceUnavailable, "Frame ingest not configured")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxFrameBytes {
		respondError(w, http.StatusBadRequest, "Invalid frame payload")
		return
	}

	if err := h.Frames.Push(data); err != nil {
		respondError(w, http.StatusBadRequest, "Frame rejected")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// GET /api/v1/camera/snapshot serves the latest ingested frame.
func (h *CameraHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.Frames == nil {
		respondError(w, http.StatusServiceUnavailable, "Frame ingest not configured")
		return
	}

	data, ok := h.Frames.Snapshot()
	if !ok {
		respondError(w, http.StatusNotFound, "No frame received yet")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

type respondRequest struct {
	Present         bool `json:"present"`
	DurationMinutes int  `json:"duration_minutes"`
}

// POST /api/v1/camera/respond answers a ringing alarm.
func (h *CameraHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.Controller.Respond(req.Present, req.DurationMinutes); err != nil {
		respondError(w, http.StatusConflict, "No alarm awaiting a response")
		return
	}
	respondJSON(w, http.StatusOK, h.Controller.Status())
}
