package waterapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// Water API response types.

type markersResponse struct {
	Markers []marker `json:"markers"`
}

type marker struct {
	StationID           flexInt       `json:"station_id"`
	LocationID          flexInt       `json:"location_id"`
	LocationName        string        `json:"location_name"`
	LocationDescription *string       `json:"location_description"`
	Latitude            float64       `json:"latitude"`
	Longitude           float64       `json:"longitude"`
	IsActive            bool          `json:"is_active"`
	ProvinceID          int           `json:"province_id"`
	Unit                string        `json:"unit"`
	BankLevel           float64       `json:"bank_level"`
	LevelCM             *float64      `json:"level_cm"`
	Image               *string       `json:"image"`
	Danger              domain.Danger `json:"danger"`
	IsFlooded           *bool         `json:"is_flooded"`
	MeasuredAt          *string       `json:"measured_at"`
	Note                *string       `json:"note"`
}

type detailResponse struct {
	Markers detailMarkers `json:"markers"`
}

type detailMarkers struct {
	StationID flexInt         `json:"station_id"`
	BankLevel float64         `json:"bank_level"`
	Detail    []detailReading `json:"detail"`
}

type detailReading struct {
	LevelCM    *float64      `json:"level_cm"`
	Image      *string       `json:"image"`
	Danger     domain.Danger `json:"danger"`
	IsFlooded  *bool         `json:"is_flooded"`
	Source     *nullString   `json:"source"`
	MeasuredAt *string       `json:"measured_at"`
	Note       *string       `json:"note"`
}

// nullString is the {String, Valid} shape of a SQL nullable text column.
type nullString struct {
	String string `json:"String"`
	Valid  bool   `json:"Valid"`
}

// flexInt decodes ids sent either as JSON numbers or numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("id %s is not an integer", data)
	}
	*f = flexInt(n)
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTime accepts RFC 3339 and the zone-less layouts the API emits for
// legacy rows, which are taken as UTC. Unparseable values are treated as absent.
func parseTime(s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseUnit(s string) domain.Unit {
	if strings.EqualFold(strings.TrimSpace(s), string(domain.UnitMSL)) {
		return domain.UnitMSL
	}
	return domain.UnitCentimeters
}

// DecodeSnapshot parses a /markers response body, such as a recorded fixture.
func DecodeSnapshot(data []byte, fetchedAt time.Time) (domain.Snapshot, error) {
	var resp markersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode markers: %w", err)
	}
	snap, _ := resp.toSnapshot(fetchedAt)
	return snap, nil
}

// toSnapshot converts the markers, skipping those with neither id.
func (r markersResponse) toSnapshot(fetchedAt time.Time) (domain.Snapshot, int) {
	snap := domain.Snapshot{
		Stations:  make([]domain.Station, 0, len(r.Markers)),
		FetchedAt: fetchedAt,
	}
	skipped := 0
	for _, m := range r.Markers {
		st := m.toStation()
		if st.Ref().IsZero() {
			skipped++
			continue
		}
		snap.Stations = append(snap.Stations, st)
	}
	return snap, skipped
}

func (m marker) toStation() domain.Station {
	return domain.Station{
		StationID:   int64(m.StationID),
		LocationID:  int64(m.LocationID),
		Name:        m.LocationName,
		Description: deref(m.LocationDescription),
		Geo:         domain.Geo{Lat: m.Latitude, Lon: m.Longitude},
		ProvinceID:  domain.ProvinceID(m.ProvinceID),
		Active:      m.IsActive,
		Unit:        parseUnit(m.Unit),
		BankLevel:   m.BankLevel,
		Latest: domain.Reading{
			MeasuredAt: parseTime(m.MeasuredAt),
			Level:      m.LevelCM,
			Danger:     m.Danger,
			Flooded:    m.IsFlooded,
			Note:       deref(m.Note),
			Image:      deref(m.Image),
		},
	}
}

func (d detailReading) toReading() domain.Reading {
	r := domain.Reading{
		MeasuredAt: parseTime(d.MeasuredAt),
		Level:      d.LevelCM,
		Danger:     d.Danger,
		Flooded:    d.IsFlooded,
		Note:       deref(d.Note),
		Image:      deref(d.Image),
	}
	if d.Source != nil && d.Source.Valid {
		r.Source = d.Source.String
	}
	return r
}
