package geoselect

import (
	"fmt"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// Mode is how a province outline is drawn.
type Mode string

const (
	ModeNormal      Mode = "normal"
	ModeHighlighted Mode = "highlighted"
	ModeSelected    Mode = "selected"
	ModeFaded       Mode = "faded"
)

// Style is the stroke, fill, and interactivity of a province outline.
type Style struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fill_opacity"`
	Interactive bool    `json:"interactive"`
}

var styles = map[Mode]Style{
	ModeNormal:      {Color: "#2563eb", Weight: 1, FillOpacity: 0.2, Interactive: true},
	ModeHighlighted: {Color: "#1d4ed8", Weight: 3, FillOpacity: 0.4, Interactive: true},
	// The selected outline stays filled but lets clicks through to the
	// station markers drawn on top of it.
	ModeSelected: {Color: "#1d4ed8", Weight: 2, FillOpacity: 0.2, Interactive: false},
	ModeFaded:    {Color: "#2563eb", Weight: 1, FillOpacity: 0, Interactive: true},
}

// StyleFor returns the style descriptor for a mode.
func StyleFor(m Mode) Style {
	return styles[m]
}

// Tooltip is the hover text attached to a province outline.
type Tooltip struct {
	Text         string `json:"text"`
	StationCount int    `json:"station_count"`
}

// ProvincePlan is the drawing instruction for one province.
type ProvincePlan struct {
	ID      domain.ProvinceID `json:"id"`
	Name    string            `json:"name"`
	Mode    Mode              `json:"mode"`
	Style   Style             `json:"style"`
	Tooltip *Tooltip          `json:"tooltip,omitempty"`
}

// StationMarker is a station drawn inside the selected province.
type StationMarker struct {
	Ref         domain.StationRef `json:"ref"`
	Name        string            `json:"name"`
	Geo         domain.Geo        `json:"geo"`
	Color       domain.ColorToken `json:"color"`
	Danger      domain.Danger     `json:"danger"`
	DangerLabel string            `json:"danger_label"`
	Level       *float64          `json:"level"`
	Unit        domain.Unit       `json:"unit"`
	BankLevel   float64           `json:"bank_level"`
	MeasuredAt  *time.Time        `json:"measured_at"`
	Flooded     *bool             `json:"is_flooded"`
	Image       string            `json:"image,omitempty"`
}

// RenderPlan is everything the map draws for one view state.
type RenderPlan struct {
	Zoom         int               `json:"zoom"`
	Center       domain.Geo        `json:"center"`
	Selected     domain.ProvinceID `json:"selected_province_id"`
	ShowTooltips bool              `json:"show_tooltips"`
	Provinces    []ProvincePlan    `json:"provinces"`
	Markers      []StationMarker   `json:"markers"`
}

// ComputeRenderPlan derives the render plan from the boundaries, the station
// snapshot, and the view state. It has no side effects and its output depends
// only on its inputs.
func ComputeRenderPlan(boundaries *domain.BoundarySet, stations []domain.Station, s ViewState, cfg Config) RenderPlan {
	plan := RenderPlan{
		Zoom:         s.Zoom,
		Center:       s.Center,
		Selected:     s.Selected,
		ShowTooltips: s.Zoom <= cfg.DisclosureZoom,
		Provinces:    make([]ProvincePlan, 0, boundaries.Len()),
		Markers:      []StationMarker{},
	}

	counts := make(map[domain.ProvinceID]int)
	for _, st := range stations {
		counts[st.ProvinceID]++
	}

	for _, b := range boundaries.All() {
		mode := modeFor(b.ID, s)
		p := ProvincePlan{
			ID:    b.ID,
			Name:  b.Name,
			Mode:  mode,
			Style: StyleFor(mode),
		}
		if plan.ShowTooltips {
			p.Tooltip = &Tooltip{
				Text:         tooltipText(b.Name, counts[b.ID]),
				StationCount: counts[b.ID],
			}
		}
		plan.Provinces = append(plan.Provinces, p)
	}

	if s.HasSelection() && boundaries.Has(s.Selected) {
		for _, st := range stations {
			if st.ProvinceID != s.Selected {
				continue
			}
			plan.Markers = append(plan.Markers, markerFor(st))
		}
	}
	return plan
}

// modeFor applies the precedence selected > faded > highlighted > normal.
func modeFor(id domain.ProvinceID, s ViewState) Mode {
	switch {
	case s.Selected == id:
		return ModeSelected
	case s.HasSelection():
		return ModeFaded
	case s.Hovered == id:
		return ModeHighlighted
	default:
		return ModeNormal
	}
}

func tooltipText(name string, stations int) string {
	if stations == 1 {
		return fmt.Sprintf("%s (1 station)", name)
	}
	return fmt.Sprintf("%s (%d stations)", name, stations)
}

func markerFor(st domain.Station) StationMarker {
	d := st.Latest.Danger
	return StationMarker{
		Ref:         st.Ref(),
		Name:        st.Name,
		Geo:         st.Geo,
		Color:       d.Color(),
		Danger:      d,
		DangerLabel: d.Label(),
		Level:       st.Latest.Level,
		Unit:        st.Unit,
		BankLevel:   st.BankLevel,
		MeasuredAt:  st.Latest.MeasuredAt,
		Flooded:     st.Latest.Flooded,
		Image:       st.Latest.Image,
	}
}
