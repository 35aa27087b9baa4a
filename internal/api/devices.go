package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/khawasu/cloud-bridge/internal/alice"
	"github.com/khawasu/cloud-bridge/internal/translate"
)

// handleUnlink revokes the access token the request was made with.
// Unlinking twice is fine; the platform retries on flaky networks.
func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := s.auth.RevokeAccess(r.Context(), token); err != nil {
		s.logger.Error("revoking access token failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	s.logger.Info("account unlinked", "username", usernameFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{
		"request_id": requestIDFrom(r.Context()),
	})
}

// handleListDevices returns the discovery payload with every mesh
// device translated into a platform descriptor.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	raws, err := s.directory.All(r.Context())
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "device directory unavailable")
		return
	}

	devices := make([]alice.Device, 0, len(raws))
	for _, raw := range raws {
		devices = append(devices, translate.Translate(raw))
	}

	writeJSON(w, http.StatusOK, alice.Response{
		RequestID: requestIDFrom(r.Context()),
		Payload: alice.DevicesPayload{
			UserID:  usernameFrom(r.Context()),
			Devices: devices,
		},
	})
}

// handleQueryDevices reports current state for the requested devices.
// Unknown device IDs are left out of the payload rather than failing
// the whole query.
func (s *Server) handleQueryDevices(w http.ResponseWriter, r *http.Request) {
	var req alice.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed query body")
		return
	}

	states := make([]alice.DeviceState, 0, len(req.Devices))
	for _, d := range req.Devices {
		raw, err := s.directory.Get(r.Context(), d.ID)
		if err != nil {
			if errors.Is(err, translate.ErrUnknownDevice) {
				s.logger.Warn("query for unknown device", "device", d.ID)
				continue
			}
			s.logger.Error("device lookup failed", "device", d.ID, "error", err)
			writeInternalError(w, "device directory unavailable")
			return
		}
		states = append(states, s.translator.Query(r.Context(), raw))
	}

	writeJSON(w, http.StatusOK, alice.Response{
		RequestID: requestIDFrom(r.Context()),
		Payload:   alice.QueryPayload{Devices: states},
	})
}

// handleActionDevices dispatches capability changes to the mesh and
// reports a per-capability outcome.
func (s *Server) handleActionDevices(w http.ResponseWriter, r *http.Request) {
	var req alice.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed action body")
		return
	}

	results := make([]alice.DeviceActionResult, 0, len(req.Payload.Devices))
	for _, d := range req.Payload.Devices {
		raw, err := s.directory.Get(r.Context(), d.ID)
		if err != nil {
			if errors.Is(err, translate.ErrUnknownDevice) {
				s.logger.Warn("action for unknown device", "device", d.ID)
				continue
			}
			s.logger.Error("device lookup failed", "device", d.ID, "error", err)
			writeInternalError(w, "device directory unavailable")
			return
		}
		results = append(results, s.translator.Apply(r.Context(), raw, d.Capabilities))
	}

	writeJSON(w, http.StatusOK, alice.Response{
		RequestID: requestIDFrom(r.Context()),
		Payload:   alice.ActionPayload{Devices: results},
	})
}
