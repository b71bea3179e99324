package geoselect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/google/uuid"
)

// Controller applies map events to view state. It holds no view state of its
// own; callers pass the current state in and keep the returned one.
type Controller struct {
	boundaries *domain.BoundarySet
	cfg        Config
	nav        Navigator
	logger     *slog.Logger
}

// NewController creates a Controller over a fixed boundary set.
func NewController(boundaries *domain.BoundarySet, cfg Config, nav Navigator, logger *slog.Logger) *Controller {
	return &Controller{
		boundaries: boundaries,
		cfg:        cfg,
		nav:        nav,
		logger:     logger,
	}
}

// Config returns the controller's map parameters.
func (c *Controller) Config() Config {
	return c.cfg
}

// Boundaries returns the boundary set the controller was built with.
func (c *Controller) Boundaries() *domain.BoundarySet {
	return c.boundaries
}

// Initial returns the starting view state: nothing selected, zoom clamped.
func (c *Controller) Initial(center domain.Geo, zoom int) ViewState {
	return ViewState{Zoom: c.cfg.ClampZoom(zoom), Center: center}
}

// Apply reduces one event onto s. Unknown event types leave s unchanged.
func (c *Controller) Apply(s ViewState, ev Event) Transition {
	var t Transition
	switch e := ev.(type) {
	case ProvinceHovered:
		t = Transition{State: c.hover(s, e.Province)}
	case ProvinceHoverEnded:
		if s.Hovered == e.Province {
			s.Hovered = domain.NoProvince
		}
		t = Transition{State: s}
	case ProvinceClicked:
		t = c.click(s, e.Province)
	case MapClicked:
		b, ok := c.boundaries.ProvinceAt(e.At.Lat, e.At.Lon)
		if !ok {
			t = Transition{State: s}
			break
		}
		t = c.click(s, b.ID)
	case ZoomChanged:
		t = c.zoom(s, e.Zoom)
	default:
		t = Transition{State: s}
	}
	return c.normalize(t)
}

// Hover applies a ProvinceHovered event.
func (c *Controller) Hover(s ViewState, id domain.ProvinceID) ViewState {
	return c.Apply(s, ProvinceHovered{Province: id}).State
}

// HoverEnd applies a ProvinceHoverEnded event.
func (c *Controller) HoverEnd(s ViewState, id domain.ProvinceID) ViewState {
	return c.Apply(s, ProvinceHoverEnded{Province: id}).State
}

// Click applies a ProvinceClicked event.
func (c *Controller) Click(s ViewState, id domain.ProvinceID) Transition {
	return c.Apply(s, ProvinceClicked{Province: id})
}

// ZoomTo applies a ZoomChanged event.
func (c *Controller) ZoomTo(s ViewState, zoom int) ViewState {
	return c.Apply(s, ZoomChanged{Zoom: zoom}).State
}

// Plan derives the render plan for s against a station snapshot.
func (c *Controller) Plan(s ViewState, stations []domain.Station) RenderPlan {
	return ComputeRenderPlan(c.boundaries, stations, s, c.cfg)
}

// SelectStation emits a navigation intent for the station. View state is untouched.
func (c *Controller) SelectStation(ctx context.Context, st domain.Station) error {
	ref := st.Ref()
	if ref.IsZero() {
		return fmt.Errorf("select station %q: %w", st.Name, domain.ErrInvalidStationRef)
	}
	if ref.Deprecated() {
		c.logger.Warn("station addressed by legacy location id", "station_ref", ref.String(), "station", st.Name)
	}
	intent := domain.NavigationIntent{
		ID:          uuid.NewString(),
		Ref:         ref,
		StationName: st.Name,
		RequestedAt: domain.Now(),
	}
	if err := c.nav.OpenStation(ctx, intent); err != nil {
		return fmt.Errorf("open station %s: %w", ref, err)
	}
	return nil
}

// hover highlights id unless a different province is drilled into.
func (c *Controller) hover(s ViewState, id domain.ProvinceID) ViewState {
	if !s.HasSelection() || s.Selected == id {
		s.Hovered = id
	} else {
		s.Hovered = domain.NoProvince
	}
	return s
}

func (c *Controller) click(s ViewState, id domain.ProvinceID) Transition {
	b, ok := c.boundaries.Get(id)
	if !ok {
		t := Transition{
			State:     s,
			Violation: fmt.Errorf("click on province %d: %w", id, domain.ErrUnknownProvince),
		}
		if s.HasSelection() {
			t.State.Selected = domain.NoProvince
			t.Cleared = ClearInvariant
		}
		return t
	}

	fit := FitBounds(b.Bound, c.cfg)
	t := Transition{}
	if s.Selected == id {
		s.Selected = domain.NoProvince
		t.Cleared = ClearToggle
	} else {
		s.Selected = id
		// Selecting lands at or above the disclosure zoom so the
		// province's stations are revealed.
		fit.Zoom = max(fit.Zoom, c.cfg.DisclosureZoom)
	}
	s.Zoom = fit.Zoom
	s.Center = fit.Center
	t.State = s
	t.Reframe = &fit
	return t
}

func (c *Controller) zoom(s ViewState, zoom int) Transition {
	s.Zoom = c.cfg.ClampZoom(zoom)
	t := Transition{State: s}
	if s.Zoom < c.cfg.DisclosureZoom && s.HasSelection() {
		t.State.Selected = domain.NoProvince
		t.Cleared = ClearZoomOut
	}
	return t
}

// normalize enforces the view-state invariants on every transition.
func (c *Controller) normalize(t Transition) Transition {
	s := &t.State
	if s.HasSelection() && !c.boundaries.Has(s.Selected) {
		if t.Violation == nil {
			t.Violation = fmt.Errorf("selected province %d: %w", s.Selected, domain.ErrUnknownProvince)
		}
		s.Selected = domain.NoProvince
		t.Cleared = ClearInvariant
	}
	if s.Zoom < c.cfg.DisclosureZoom && s.HasSelection() {
		s.Selected = domain.NoProvince
		t.Cleared = ClearZoomOut
	}
	if s.Hovered != domain.NoProvince && s.HasSelection() && s.Hovered != s.Selected {
		s.Hovered = domain.NoProvince
	}
	return t
}
