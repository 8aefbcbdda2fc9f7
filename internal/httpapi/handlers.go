package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/netmonitor/internal/config"
	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/repo"
)

// maxBody caps replacement payloads.
const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type configView struct {
	Servers    []domain.Server   `json:"servers"`
	Uplinks    []domain.Uplink   `json:"uplinks"`
	Monitoring config.Monitoring `json:"monitoring"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rep, err := s.Monitor.HealthCheck()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.ListServerStatuses(r.Context()))
}

func (s *Server) handleUplinkStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.ListUplinkStatuses(r.Context()))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.Latest())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Monitor.GetMetricsSummary())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tr := repo.ParseTimeRange(r.URL.Query().Get("timeRange"))
	res, err := s.Monitor.GetHistory(kind, chi.URLParam(r, "id"), tr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	snap := s.Monitor.Targets()
	view := configView{Servers: snap.Servers, Uplinks: snap.Uplinks, Monitoring: s.Monitoring}
	if view.Servers == nil {
		view.Servers = []domain.Server{}
	}
	if view.Uplinks == nil {
		view.Uplinks = []domain.Uplink{}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleReplaceServers(w http.ResponseWriter, r *http.Request) {
	var servers []domain.Server
	if err := decodeBody(w, r, &servers); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Monitor.ReplaceServers(servers); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(servers)})
}

func (s *Server) handleReplaceUplinks(w http.ResponseWriter, r *http.Request) {
	var uplinks []domain.Uplink
	if err := decodeBody(w, r, &uplinks); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Monitor.ReplaceUplinks(uplinks); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "count": len(uplinks)})
}

var errBadPayload = errors.New("bad payload")

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadPayload),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrInvalidTargets):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTargetNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRegistryUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.Logger.Error("http_error", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
