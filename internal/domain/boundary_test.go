package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square returns a closed ring polygon spanning [minLon,maxLon]x[minLat,maxLat].
func square(minLon, minLat, maxLon, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}}
}

func TestNewBoundarySet(t *testing.T) {
	set, err := NewBoundarySet([]Boundary{
		{ID: 30, Name: "Nakhon Ratchasima", Geometry: square(101, 14, 103, 16)},
		{ID: 13, Name: "Pathum Thani", Geometry: square(100.3, 13.9, 100.9, 14.3)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	all := set.All()
	assert.Equal(t, ProvinceID(13), all[0].ID)
	assert.Equal(t, ProvinceID(30), all[1].ID)

	b, ok := set.Get(13)
	require.True(t, ok)
	assert.Equal(t, orb.Point{100.3, 13.9}, b.Bound.Min, "bound derived from geometry")
	assert.False(t, set.Has(99))
}

func TestNewBoundarySet_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		boundaries []Boundary
		errPart    string
	}{
		{"zero id", []Boundary{{ID: 0, Geometry: square(0, 0, 1, 1)}}, "positive"},
		{"duplicate id", []Boundary{{ID: 1, Geometry: square(0, 0, 1, 1)}, {ID: 1, Geometry: square(2, 2, 3, 3)}}, "duplicate"},
		{"point geometry", []Boundary{{ID: 1, Geometry: orb.Point{1, 1}}}, "unsupported geometry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBoundarySet(tt.boundaries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestBoundarySet_ProvinceAt(t *testing.T) {
	set, err := NewBoundarySet([]Boundary{
		{ID: 13, Name: "A", Geometry: square(100, 13, 101, 14)},
		{ID: 30, Name: "B", Geometry: orb.MultiPolygon{square(102, 14, 103, 15), square(104, 14, 105, 15)}},
	})
	require.NoError(t, err)

	b, ok := set.ProvinceAt(13.5, 100.5)
	require.True(t, ok)
	assert.Equal(t, ProvinceID(13), b.ID)

	b, ok = set.ProvinceAt(14.5, 104.5)
	require.True(t, ok)
	assert.Equal(t, ProvinceID(30), b.ID, "second polygon of multipolygon")

	_, ok = set.ProvinceAt(14.5, 103.5)
	assert.False(t, ok, "gap between multipolygon parts")

	var nilSet *BoundarySet
	_, ok = nilSet.ProvinceAt(13.5, 100.5)
	assert.False(t, ok)
	assert.Equal(t, 0, nilSet.Len())
}
