package domain

import (
	"encoding/json"
	"strings"
)

// Danger is a reading's severity relative to its station's bank level.
type Danger int

const (
	DangerUnknown Danger = iota
	DangerSafe
	DangerWatch
	DangerDanger
	DangerCritical
)

// ColorToken names a marker color understood by the map renderer.
type ColorToken string

const (
	ColorRed    ColorToken = "red"
	ColorOrange ColorToken = "orange"
	ColorYellow ColorToken = "yellow"
	ColorGreen  ColorToken = "green"
	ColorGray   ColorToken = "gray"
)

// ParseDanger maps an upstream danger string onto the enumeration.
// Matching ignores case and surrounding whitespace; anything else is DangerUnknown.
func ParseDanger(s string) Danger {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return DangerCritical
	case "DANGER":
		return DangerDanger
	case "WATCH":
		return DangerWatch
	case "SAFE":
		return DangerSafe
	default:
		return DangerUnknown
	}
}

// String returns the upstream wire form, e.g. "CRITICAL".
func (d Danger) String() string {
	switch d {
	case DangerCritical:
		return "CRITICAL"
	case DangerDanger:
		return "DANGER"
	case DangerWatch:
		return "WATCH"
	case DangerSafe:
		return "SAFE"
	default:
		return "UNKNOWN"
	}
}

// Color returns the marker color for the classification.
func (d Danger) Color() ColorToken {
	switch d {
	case DangerCritical:
		return ColorRed
	case DangerDanger:
		return ColorOrange
	case DangerWatch:
		return ColorYellow
	case DangerSafe:
		return ColorGreen
	default:
		return ColorGray
	}
}

// Label returns a human-readable label for stat cards and tooltips.
func (d Danger) Label() string {
	switch d {
	case DangerCritical:
		return "Critical"
	case DangerDanger:
		return "Danger"
	case DangerWatch:
		return "Watch"
	case DangerSafe:
		return "Safe"
	default:
		return "Unknown"
	}
}

// Known reports whether d is one of the named classifications.
func (d Danger) Known() bool {
	return d >= DangerSafe && d <= DangerCritical
}

// MarshalJSON encodes known classifications as their wire string and
// DangerUnknown as null.
func (d Danger) MarshalJSON() ([]byte, error) {
	if !d.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a danger string or null.
func (d *Danger) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DangerUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDanger(s)
	return nil
}
