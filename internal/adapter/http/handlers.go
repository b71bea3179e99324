package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/session"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
)

// eventRequest is the wire form of a map interaction.
type eventRequest struct {
	Type       string            `json:"type"`
	ProvinceID domain.ProvinceID `json:"province_id"`
	Zoom       *int              `json:"zoom"`
	Lat        *float64          `json:"lat"`
	Lon        *float64          `json:"lon"`
}

type eventResponse struct {
	Map       session.MapView     `json:"map"`
	Reframe   *geoselect.Viewport `json:"reframe,omitempty"`
	Cleared   string              `json:"cleared,omitempty"`
	Violation string              `json:"violation,omitempty"`
}

var errBadEvent = errors.New("invalid map event")

func (req eventRequest) toEvent() (geoselect.Event, error) {
	switch req.Type {
	case "hover":
		return geoselect.ProvinceHovered{Province: req.ProvinceID}, nil
	case "hover_end":
		return geoselect.ProvinceHoverEnded{Province: req.ProvinceID}, nil
	case "click":
		return geoselect.ProvinceClicked{Province: req.ProvinceID}, nil
	case "map_click":
		if req.Lat == nil || req.Lon == nil {
			return nil, fmt.Errorf("%w: map_click needs lat and lon", errBadEvent)
		}
		return geoselect.MapClicked{At: domain.Geo{Lat: *req.Lat, Lon: *req.Lon}}, nil
	case "zoom":
		if req.Zoom == nil {
			return nil, fmt.Errorf("%w: zoom needs a zoom level", errBadEvent)
		}
		return geoselect.ZoomChanged{Zoom: *req.Zoom}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadEvent, req.Type)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.MapView())
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", errBadEvent, err))
		return
	}
	ev, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t, mv, err := s.svc.Dispatch(r.Context(), ev)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	resp := eventResponse{Map: mv, Reframe: t.Reframe, Cleared: string(t.Cleared)}
	if t.Violation != nil {
		resp.Violation = t.Violation.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RefreshSnapshot(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	ref, err := domain.ParseStationRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dv, err := s.svc.SelectStation(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dv)
}

// handleOpenDetail opens or switches the station detail and starts its
// history fetch. Reopening the station already shown only changes the range.
func (s *Server) handleOpenDetail(w http.ResponseWriter, r *http.Request) {
	ref, err := domain.ParseStationRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rng, err := timeseries.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dv, err := s.svc.OpenDetail(r.Context(), ref, rng)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dv)
}

// handleChart is read-only: it returns the open detail when it shows ref.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ref, err := domain.ParseStationRef(r.PathValue("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dv := s.svc.DetailView()
	if !dv.Open || dv.Ref != ref {
		writeError(w, http.StatusNotFound, fmt.Errorf("chart %s: %w", ref, session.ErrNoDetail))
		return
	}
	writeJSON(w, http.StatusOK, dv)
}

func (s *Server) handleSetRange(w http.ResponseWriter, r *http.Request) {
	rng, err := timeseries.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dv, err := s.svc.SetRange(r.Context(), rng)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dv)
}

func (s *Server) handleCloseDetail(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CloseDetail(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoStation), errors.Is(err, session.ErrNoDetail):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidStationRef):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, session.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("view request failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
	}
}
