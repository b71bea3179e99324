package geoselect

import (
	"math"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const tileSize = 256

// worldMeters is the Web-Mercator world width at the equator.
var worldMeters = 2 * math.Pi * orb.EarthRadius

// Viewport is a reframing instruction for the map.
type Viewport struct {
	SouthWest domain.Geo `json:"south_west"`
	NorthEast domain.Geo `json:"north_east"`
	Center    domain.Geo `json:"center"`
	Zoom      int        `json:"zoom"`
	Padding   int        `json:"padding"`
	MaxZoom   int        `json:"max_zoom"`
}

// FitBounds computes the highest whole zoom at which the bound fits inside the
// viewport minus padding, capped at FitMaxZoom and clamped to the zoom range.
// A degenerate (point) bound lands at FitMaxZoom.
func FitBounds(b orb.Bound, cfg Config) Viewport {
	sw := project.Point(b.Min, project.WGS84.ToMercator)
	ne := project.Point(b.Max, project.WGS84.ToMercator)
	dx := ne[0] - sw[0]
	dy := ne[1] - sw[1]

	zoom := cfg.FitMaxZoom
	availW := float64(cfg.ViewportWidth - 2*cfg.FitPadding)
	availH := float64(cfg.ViewportHeight - 2*cfg.FitPadding)
	scale := math.Inf(1)
	if dx > 0 {
		scale = min(scale, availW*worldMeters/(tileSize*dx))
	}
	if dy > 0 {
		scale = min(scale, availH*worldMeters/(tileSize*dy))
	}
	if !math.IsInf(scale, 1) {
		zoom = min(zoom, int(math.Floor(math.Log2(scale))))
	}
	zoom = cfg.ClampZoom(zoom)

	center := project.Point(orb.Point{(sw[0] + ne[0]) / 2, (sw[1] + ne[1]) / 2}, project.Mercator.ToWGS84)
	// The projection round trip drifts by an ulp; the center stays inside b.
	lon := min(max(center.Lon(), b.Min.Lon()), b.Max.Lon())
	lat := min(max(center.Lat(), b.Min.Lat()), b.Max.Lat())

	return Viewport{
		SouthWest: domain.Geo{Lat: b.Min.Lat(), Lon: b.Min.Lon()},
		NorthEast: domain.Geo{Lat: b.Max.Lat(), Lon: b.Max.Lon()},
		Center:    domain.Geo{Lat: lat, Lon: lon},
		Zoom:      zoom,
		Padding:   cfg.FitPadding,
		MaxZoom:   cfg.FitMaxZoom,
	}
}
