package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/devbar/viera2mqtt/internal/remote"
)

// statusProbeTimeout bounds the TV probe behind the status endpoint.
const statusProbeTimeout = 5 * time.Second

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mqttStatus := "unknown"
	if s.mqtt != nil {
		mqttStatus = "disconnected"
		if s.mqtt.IsConnected() {
			mqttStatus = "connected"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"mqtt":    mqttStatus,
		"tv":      s.tv.Host(),
	})
}

// statusResponse is the body of the status endpoint.
type statusResponse struct {
	Power  string `json:"power"`
	Volume *int   `json:"volume,omitempty"`
	Mute   *bool  `json:"mute,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// handleStatus probes the TV and returns its live state.
// An unreachable TV is a normal answer (power off), not an error.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), statusProbeTimeout)
	defer cancel()

	volume, err := s.tv.GetVolume(ctx)
	var mute bool
	if err == nil {
		mute, err = s.tv.GetMute(ctx)
	}

	if err != nil {
		if errors.Is(err, remote.ErrUnreachable) {
			writeJSON(w, http.StatusOK, statusResponse{
				Power:  "off",
				Reason: "TV switched off",
			})
			return
		}
		writeError(w, http.StatusBadGateway, ErrCodeTVError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Power:  "on",
		Volume: &volume,
		Mute:   &mute,
	})
}

// handleHistory returns recent command history entries.
// Query parameters:
//   - limit: maximum entries to return (default 50, capped at 200)
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "command history is not enabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("history query failed", "error", err)
		writeInternalError(w, "failed to query command history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleKeys returns the remote control key catalogue.
func (s *Server) handleKeys(w http.ResponseWriter, _ *http.Request) {
	keys := remote.KeyCatalogue()
	writeJSON(w, http.StatusOK, map[string]any{
		"keys":  keys,
		"count": len(keys),
	})
}
