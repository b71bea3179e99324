// Command validate checks the province boundary file against a recorded
// station snapshot: boundary integrity, station placement, the axis tick
// contract for every station threshold, and render plan marker parity.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -boundaries data/provinces.geojson \
//	  -snapshot data/markers.json
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/adapter/geojson"
	"github.com/couchcryptid/floodwatch-map-service/internal/adapter/waterapi"
	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	boundariesPath := flag.String("boundaries", "data/provinces.geojson", "province boundary GeoJSON file")
	snapshotPath := flag.String("snapshot", "", "recorded /markers response JSON")
	flag.Parse()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *boundariesPath, *snapshotPath); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, boundariesPath, snapshotPath string) int {
	// Fixed clock so the fixture's fetch time is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Fprintln(out, "=== Flood Map Data Validation ===")
	fmt.Fprintln(out)

	boundaries, err := geojson.Load(boundariesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load boundaries: %v\n", err)
		return 1
	}

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read snapshot: %v\n", err)
		return 1
	}
	snap, err := waterapi.DecodeSnapshot(data, domain.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: decode snapshot: %v\n", err)
		return 1
	}

	cfg := geoselect.DefaultConfig()
	phases := []*phase{
		validateBoundaries(boundaries),
		validatePlacement(boundaries, snap.Stations),
		validateTicks(snap.Stations),
		validateMarkerParity(boundaries, snap.Stations, cfg),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d provinces, %d stations\n", boundaries.Len(), len(snap.Stations))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: boundaries ──

func validateBoundaries(set *domain.BoundarySet) *phase {
	p := &phase{name: "Boundary integrity"}
	if set.Len() == 0 {
		p.errorf("no provinces loaded")
	}
	for _, b := range set.All() {
		if b.Name == "" {
			p.errorf("province %d: missing name", b.ID)
		}
		if b.Bound.Min.Lon() >= b.Bound.Max.Lon() || b.Bound.Min.Lat() >= b.Bound.Max.Lat() {
			p.errorf("province %d: degenerate bound %v", b.ID, b.Bound)
		}
		for i, ring := range rings(b.Geometry) {
			if len(ring) < 4 {
				p.errorf("province %d ring %d: %d points, need at least 4", b.ID, i, len(ring))
				continue
			}
			if !ring.Closed() {
				p.errorf("province %d ring %d: not closed", b.ID, i)
			}
		}
	}
	return p
}

func rings(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Polygon:
		return v
	case orb.MultiPolygon:
		var out []orb.Ring
		for _, poly := range v {
			out = append(out, poly...)
		}
		return out
	default:
		return nil
	}
}

// ── Phase 2: placement ──

func validatePlacement(set *domain.BoundarySet, stations []domain.Station) *phase {
	p := &phase{name: "Station placement"}
	for _, st := range stations {
		b, ok := set.Get(st.ProvinceID)
		if !ok {
			p.errorf("%s (%s): province %d not in boundary set", st.Name, st.Ref(), st.ProvinceID)
			continue
		}
		if !b.Contains(st.Geo.Lat, st.Geo.Lon) {
			p.errorf("%s (%s): %.4f,%.4f lies outside %s", st.Name, st.Ref(), st.Geo.Lat, st.Geo.Lon, b.Name)
		}
	}
	return p
}

// ── Phase 3: tick contract ──

func validateTicks(stations []domain.Station) *phase {
	p := &phase{name: "Axis tick contract"}
	seen := make(map[float64]bool)
	for _, st := range stations {
		t := st.BankLevel
		if seen[t] {
			continue
		}
		seen[t] = true
		for _, problem := range tickProblems(t, timeseries.GenerateAxisTicks(t)) {
			p.errorf("threshold %g (%s): %s", t, st.Name, problem)
		}
	}
	return p
}

func tickProblems(t float64, ticks []float64) []string {
	var problems []string
	if len(ticks) == 0 {
		return []string{"no ticks"}
	}
	if !slices.IsSorted(ticks) {
		problems = append(problems, fmt.Sprintf("ticks not ascending: %v", ticks))
	}
	if ticks[0] != 0 {
		problems = append(problems, fmt.Sprintf("first tick %g, want 0", ticks[0]))
	}
	if t <= 0 {
		return problems
	}
	if !slices.Contains(ticks, t) {
		problems = append(problems, "threshold is not a tick")
	}
	if last := ticks[len(ticks)-1]; math.Abs(last-(t+1)) > 1e-9 {
		problems = append(problems, fmt.Sprintf("last tick %g, want %g", last, t+1))
	}
	for _, v := range ticks {
		onGrid := math.Abs(v/timeseries.TickStep-math.Round(v/timeseries.TickStep)) < 1e-9
		if !onGrid && v != t && math.Abs(v-(t+1)) > 1e-9 {
			problems = append(problems, fmt.Sprintf("tick %g is neither on the %.1f grid nor the threshold", v, timeseries.TickStep))
		}
	}
	return problems
}

// ── Phase 4: marker parity ──

func validateMarkerParity(set *domain.BoundarySet, stations []domain.Station, cfg geoselect.Config) *phase {
	p := &phase{name: "Render plan marker parity"}

	idle := geoselect.ComputeRenderPlan(set, stations, geoselect.ViewState{Zoom: cfg.MinZoom}, cfg)
	if len(idle.Markers) != 0 {
		p.errorf("idle plan draws %d markers, want 0", len(idle.Markers))
	}

	for _, b := range set.All() {
		want := 0
		for _, st := range stations {
			if st.ProvinceID == b.ID {
				want++
			}
		}
		state := geoselect.ViewState{Selected: b.ID, Zoom: cfg.DisclosureZoom}
		plan := geoselect.ComputeRenderPlan(set, stations, state, cfg)
		if len(plan.Markers) != want {
			p.errorf("province %d (%s): %d markers, want %d", b.ID, b.Name, len(plan.Markers), want)
		}
		for _, m := range plan.Markers {
			if m.Color != m.Danger.Color() {
				p.errorf("%s: marker color %s does not match danger %s", m.Name, m.Color, m.Danger)
			}
		}
	}
	return p
}
