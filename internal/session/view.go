package session

import (
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
)

// LoadState is the rendering state of a view backed by a fetch.
type LoadState string

const (
	StateLoading   LoadState = "loading"
	StateError     LoadState = "error"
	StateEmpty     LoadState = "empty"
	StatePopulated LoadState = "populated"
)

// MapView is the published map: view state, render plan, and snapshot status.
// A failed refresh keeps drawing the last good snapshot.
type MapView struct {
	State     LoadState            `json:"state"`
	Error     string               `json:"error,omitempty"`
	View      geoselect.ViewState  `json:"view"`
	Plan      geoselect.RenderPlan `json:"plan"`
	Stations  int                  `json:"station_count"`
	FetchedAt *time.Time           `json:"fetched_at,omitempty"`
	Version   uint64               `json:"version"`
}

// DetailView is the published per-station chart. Open is false when no
// station detail is shown.
type DetailView struct {
	Open        bool              `json:"open"`
	Ref         domain.StationRef `json:"ref"`
	StationName string            `json:"station_name,omitempty"`
	Range       timeseries.Range  `json:"range"`
	State       LoadState         `json:"state,omitempty"`
	Error       string            `json:"error,omitempty"`
	Chart       *timeseries.Chart `json:"chart,omitempty"`
	Version     uint64            `json:"version"`
}
