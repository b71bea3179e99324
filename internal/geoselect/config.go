package geoselect

import "fmt"

// Config holds the zoom and viewport parameters of the map.
type Config struct {
	DisclosureZoom int
	MinZoom        int
	MaxZoom        int
	FitPadding     int // pixels on each side when reframing to a province
	FitMaxZoom     int
	ViewportWidth  int
	ViewportHeight int
}

// DefaultConfig returns the reference map parameters.
func DefaultConfig() Config {
	return Config{
		DisclosureZoom: 10,
		MinZoom:        5,
		MaxZoom:        18,
		FitPadding:     50,
		FitMaxZoom:     11,
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
}

// Validate checks that the zoom levels nest and the viewport leaves room
// after padding.
func (c Config) Validate() error {
	if c.MinZoom < 0 || c.MinZoom > c.MaxZoom {
		return fmt.Errorf("zoom bounds [%d, %d] are invalid", c.MinZoom, c.MaxZoom)
	}
	if c.DisclosureZoom < c.MinZoom || c.DisclosureZoom > c.MaxZoom {
		return fmt.Errorf("disclosure zoom %d outside [%d, %d]", c.DisclosureZoom, c.MinZoom, c.MaxZoom)
	}
	if c.FitMaxZoom < c.DisclosureZoom || c.FitMaxZoom > c.MaxZoom {
		return fmt.Errorf("fit max zoom %d outside [%d, %d]", c.FitMaxZoom, c.DisclosureZoom, c.MaxZoom)
	}
	if c.FitPadding < 0 {
		return fmt.Errorf("fit padding %d is negative", c.FitPadding)
	}
	if c.ViewportWidth <= 2*c.FitPadding || c.ViewportHeight <= 2*c.FitPadding {
		return fmt.Errorf("viewport %dx%d leaves no room for %dpx padding", c.ViewportWidth, c.ViewportHeight, c.FitPadding)
	}
	return nil
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func (c Config) ClampZoom(z int) int {
	return max(c.MinZoom, min(z, c.MaxZoom))
}
