// Package geojson loads province boundaries from a GeoJSON FeatureCollection.
package geojson

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Load reads and parses a boundary file.
func Load(path string) (*domain.BoundarySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a FeatureCollection whose features carry a province id in
// properties.id (or the feature id) and a display name in properties.name.
func Parse(data []byte) (*domain.BoundarySet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	boundaries := make([]domain.Boundary, 0, len(fc.Features))
	for i, f := range fc.Features {
		id, err := featureID(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		geom := f.Geometry
		switch g := geom.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("feature %d (province %d): geometry %T is not a polygon", i, id, g)
		}
		boundaries = append(boundaries, domain.Boundary{
			ID:         id,
			Name:       f.Properties.MustString("name", ""),
			Country:    f.Properties.MustString("country", ""),
			RegionCode: f.Properties.MustString("region_code", ""),
			Geometry:   geom,
			Bound:      geom.Bound(),
		})
	}
	return domain.NewBoundarySet(boundaries)
}

func featureID(f *geojson.Feature) (domain.ProvinceID, error) {
	if v, ok := f.Properties["id"]; ok {
		return toProvinceID(v)
	}
	if f.ID != nil {
		return toProvinceID(f.ID)
	}
	return 0, fmt.Errorf("missing province id")
}

func toProvinceID(v any) (domain.ProvinceID, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || x <= 0 {
			return 0, fmt.Errorf("province id %v is not a positive integer", x)
		}
		return domain.ProvinceID(x), nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("province id %q is not a positive integer", x)
		}
		return domain.ProvinceID(n), nil
	default:
		return 0, fmt.Errorf("province id has type %T", v)
	}
}
