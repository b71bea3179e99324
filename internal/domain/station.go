package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is the unit a station reports its levels in.
type Unit string

const (
	UnitCentimeters Unit = "cm"
	UnitMSL         Unit = "msl"
)

// AddressScheme identifies which upstream key a StationRef uses.
type AddressScheme string

const (
	// SchemeStation addresses a station by station_id. Canonical.
	SchemeStation AddressScheme = "station"
	// SchemeLocation addresses a station by location_id. Deprecated.
	SchemeLocation AddressScheme = "location"
)

// StationRef identifies a station under one of the addressing schemes.
type StationRef struct {
	Scheme AddressScheme `json:"scheme"`
	ID     int64         `json:"id"`
}

// String returns the text form, e.g. "station:12".
func (r StationRef) String() string {
	return fmt.Sprintf("%s:%d", r.Scheme, r.ID)
}

// Deprecated reports whether r uses the legacy location-keyed scheme.
func (r StationRef) Deprecated() bool {
	return r.Scheme == SchemeLocation
}

// IsZero reports whether r is unset.
func (r StationRef) IsZero() bool {
	return r.ID == 0
}

// ParseStationRef parses "station:12", "location:28", or a bare positive
// number (canonical scheme).
func ParseStationRef(s string) (StationRef, error) {
	s = strings.TrimSpace(s)
	scheme := SchemeStation
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		switch AddressScheme(prefix) {
		case SchemeStation, SchemeLocation:
			scheme = AddressScheme(prefix)
		default:
			return StationRef{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidStationRef, prefix)
		}
		s = rest
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return StationRef{}, fmt.Errorf("%w: %q", ErrInvalidStationRef, s)
	}
	return StationRef{Scheme: scheme, ID: id}, nil
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Reading is a single water-level observation. Nil pointers mean the value
// was not reported.
type Reading struct {
	MeasuredAt *time.Time `json:"measured_at"`
	Level      *float64   `json:"level"`
	Danger     Danger     `json:"danger"`
	Flooded    *bool      `json:"is_flooded"`
	Note       string     `json:"note,omitempty"`
	Image      string     `json:"image,omitempty"`
	Source     string     `json:"source,omitempty"`
}

// Station is a monitoring station with its latest reading, as delivered by a
// snapshot fetch.
type Station struct {
	StationID   int64      `json:"station_id,omitempty"`
	LocationID  int64      `json:"location_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Geo         Geo        `json:"geo"`
	ProvinceID  ProvinceID `json:"province_id"`
	Active      bool       `json:"is_active"`
	Unit        Unit       `json:"unit"`
	BankLevel   float64    `json:"bank_level"`
	Latest      Reading    `json:"latest"`
}

// Ref returns the station's canonical reference, falling back to the legacy
// location scheme when the upstream record carries no station id.
func (s Station) Ref() StationRef {
	if s.StationID != 0 {
		return StationRef{Scheme: SchemeStation, ID: s.StationID}
	}
	return StationRef{Scheme: SchemeLocation, ID: s.LocationID}
}

// Snapshot is the full set of stations from one fetch.
type Snapshot struct {
	Stations  []Station `json:"stations"`
	FetchedAt time.Time `json:"fetched_at"`
}

// StationHistory is the chronological reading list for one station, with its
// fixed bank level.
type StationHistory struct {
	Ref       StationRef `json:"ref"`
	Threshold float64    `json:"threshold"`
	Readings  []Reading  `json:"readings"`
}

// NavigationIntent asks the navigation collaborator to open the detail view
// for a station. ID is unique per request so consumers can drop redeliveries.
type NavigationIntent struct {
	ID          string     `json:"id"`
	Ref         StationRef `json:"ref"`
	StationName string     `json:"station_name,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
}
