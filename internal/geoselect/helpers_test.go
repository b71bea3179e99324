package geoselect

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

const (
	provinceA domain.ProvinceID = 13
	provinceB domain.ProvinceID = 30
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

// testBoundaries returns a small province A and a large province B.
func testBoundaries(t *testing.T) *domain.BoundarySet {
	t.Helper()
	set, err := domain.NewBoundarySet([]domain.Boundary{
		{ID: provinceA, Name: "Pathum Thani", Geometry: square(100.3, 13.9, 100.9, 14.3)},
		{ID: provinceB, Name: "Nakhon Ratchasima", Geometry: square(101, 14, 103, 16)},
	})
	require.NoError(t, err)
	return set
}

func testStations() []domain.Station {
	crit := domain.DangerCritical
	level := 1.8
	return []domain.Station{
		{StationID: 1, Name: "Khlong Rangsit", ProvinceID: provinceA, Geo: domain.Geo{Lat: 14.0, Lon: 100.6}, BankLevel: 1.29,
			Latest: domain.Reading{Danger: crit, Level: &level}},
		{StationID: 2, Name: "Lam Takhong", ProvinceID: provinceB, Geo: domain.Geo{Lat: 14.9, Lon: 102.1}},
		{LocationID: 28, Name: "Chao Phraya Pier", ProvinceID: provinceA, Geo: domain.Geo{Lat: 14.1, Lon: 100.5},
			Latest: domain.Reading{Danger: domain.DangerSafe}},
		{StationID: 4, Name: "Unplaced", ProvinceID: 77},
	}
}

type recordingNavigator struct {
	mu      sync.Mutex
	intents []domain.NavigationIntent
	err     error
}

func (n *recordingNavigator) OpenStation(_ context.Context, intent domain.NavigationIntent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, intent)
	return n.err
}

func newTestController(t *testing.T) (*Controller, *recordingNavigator) {
	t.Helper()
	nav := &recordingNavigator{}
	return NewController(testBoundaries(t), DefaultConfig(), nav, discardLogger()), nav
}
