package domain

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ProvinceID identifies a province boundary. Valid ids are positive.
type ProvinceID int

// NoProvince means no province is selected or hovered.
const NoProvince ProvinceID = 0

// Boundary is a province outline with its display metadata.
type Boundary struct {
	ID         ProvinceID
	Name       string
	Country    string
	RegionCode string
	Geometry   orb.Geometry // orb.Polygon or orb.MultiPolygon
	Bound      orb.Bound
}

// Contains reports whether the coordinate lies inside the boundary.
func (b Boundary) Contains(lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	if !b.Bound.Contains(pt) {
		return false
	}
	switch g := b.Geometry.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}

// BoundarySet is an immutable, id-ordered collection of province boundaries.
type BoundarySet struct {
	byID  map[ProvinceID]Boundary
	order []ProvinceID
}

// NewBoundarySet validates and indexes boundaries. Ids must be positive and
// unique, and each geometry must be a polygon or multipolygon.
func NewBoundarySet(boundaries []Boundary) (*BoundarySet, error) {
	s := &BoundarySet{byID: make(map[ProvinceID]Boundary, len(boundaries))}
	for _, b := range boundaries {
		if b.ID <= NoProvince {
			return nil, fmt.Errorf("boundary %q: province id must be positive, got %d", b.Name, b.ID)
		}
		if _, dup := s.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate province id %d", b.ID)
		}
		switch b.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("province %d: unsupported geometry %T", b.ID, b.Geometry)
		}
		if b.Bound.IsZero() {
			b.Bound = b.Geometry.Bound()
		}
		s.byID[b.ID] = b
		s.order = append(s.order, b.ID)
	}
	sort.Slice(s.order, func(i, j int) bool { return s.order[i] < s.order[j] })
	return s, nil
}

// Get returns the boundary for id.
func (s *BoundarySet) Get(id ProvinceID) (Boundary, bool) {
	if s == nil {
		return Boundary{}, false
	}
	b, ok := s.byID[id]
	return b, ok
}

// Has reports whether id is a loaded province.
func (s *BoundarySet) Has(id ProvinceID) bool {
	_, ok := s.Get(id)
	return ok
}

// All returns the boundaries in ascending id order.
func (s *BoundarySet) All() []Boundary {
	if s == nil {
		return nil
	}
	out := make([]Boundary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of boundaries.
func (s *BoundarySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// ProvinceAt returns the first boundary, in id order, containing the coordinate.
func (s *BoundarySet) ProvinceAt(lat, lon float64) (Boundary, bool) {
	if s == nil {
		return Boundary{}, false
	}
	for _, id := range s.order {
		if b := s.byID[id]; b.Contains(lat, lon) {
			return b, true
		}
	}
	return Boundary{}, false
}
