package timeseries

import (
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// Chart is everything the detail view renders for one station and range.
type Chart struct {
	Range     Range        `json:"range"`
	Threshold float64      `json:"threshold"`
	Points    []ChartPoint `json:"points"`
	Stats     *Statistics  `json:"stats"`
	Ticks     []float64    `json:"ticks"`
	Empty     bool         `json:"empty"`
}

// Analyze filters the history to the range and derives the chart. Ticks depend
// only on the threshold and are present even when no reading survives.
func Analyze(h domain.StationHistory, r Range, now time.Time, loc *time.Location) Chart {
	filtered := FilterByRange(h.Readings, r, now)
	points := BuildChartSeries(filtered, h.Threshold, loc)
	return Chart{
		Range:     r,
		Threshold: h.Threshold,
		Points:    points,
		Stats:     ComputeStatistics(filtered),
		Ticks:     GenerateAxisTicks(h.Threshold),
		Empty:     len(points) == 0,
	}
}
