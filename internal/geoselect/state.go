package geoselect

import "github.com/couchcryptid/floodwatch-map-service/internal/domain"

// ViewState is the ephemeral map state. Selected and Hovered are
// domain.NoProvince when unset.
type ViewState struct {
	Selected domain.ProvinceID `json:"selected_province_id"`
	Hovered  domain.ProvinceID `json:"hovered_province_id"`
	Zoom     int               `json:"zoom"`
	Center   domain.Geo        `json:"center"`
}

// HasSelection reports whether a province is selected.
func (s ViewState) HasSelection() bool {
	return s.Selected != domain.NoProvince
}

// Event is a map interaction delivered to Controller.Apply.
type Event interface {
	Type() string
}

// ProvinceHovered reports the pointer entering a province outline.
type ProvinceHovered struct {
	Province domain.ProvinceID
}

// ProvinceHoverEnded reports the pointer leaving a province outline.
type ProvinceHoverEnded struct {
	Province domain.ProvinceID
}

// ProvinceClicked reports a click on a province outline.
type ProvinceClicked struct {
	Province domain.ProvinceID
}

// MapClicked reports a click at a coordinate; it is resolved to the province
// containing it, if any.
type MapClicked struct {
	At domain.Geo
}

// ZoomChanged reports the map settling at a new zoom level.
type ZoomChanged struct {
	Zoom int
}

func (ProvinceHovered) Type() string    { return "hover" }
func (ProvinceHoverEnded) Type() string { return "hover_end" }
func (ProvinceClicked) Type() string    { return "click" }
func (MapClicked) Type() string         { return "map_click" }
func (ZoomChanged) Type() string        { return "zoom" }

// ClearReason says why a transition cleared the selection.
type ClearReason string

const (
	ClearNone      ClearReason = ""
	ClearToggle    ClearReason = "toggle"
	ClearZoomOut   ClearReason = "zoom_out"
	ClearInvariant ClearReason = "invariant"
)

// Transition is the result of applying one event.
type Transition struct {
	State ViewState
	// Reframe is set when the map must move to fit a province.
	Reframe *Viewport
	// Cleared is set when this event removed a selection.
	Cleared ClearReason
	// Violation wraps domain.ErrUnknownProvince when the event or the prior
	// state named a province outside the boundary set. The state is still valid.
	Violation error
}
