package timeseries

import (
	"iter"
	"slices"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// WarningMargin is how far below the threshold a level starts to plot in the
// warning color. Same unit as the level.
const WarningMargin = 0.25

const (
	shortTimeLayout = "15:04"
	fullTimeLayout  = "02 Jan 2006 15:04"
)

// PointColor is the marker color of a plotted reading.
type PointColor string

const (
	PointNormal  PointColor = "normal"
	PointWarning PointColor = "warning"
	PointDanger  PointColor = "danger"
)

// ChartPoint is one plotted reading. Threshold is constant across a series
// and draws the reference line.
type ChartPoint struct {
	Time          time.Time     `json:"time"`
	TimeLabel     string        `json:"time_label"`
	DateTimeLabel string        `json:"datetime_label"`
	Threshold     float64       `json:"threshold"`
	Level         *float64      `json:"level"`
	Danger        domain.Danger `json:"danger"`
	Color         PointColor    `json:"color"`
}

// ColorFor classifies a level against the threshold.
func ColorFor(level *float64, threshold float64) PointColor {
	if level == nil {
		return PointNormal
	}
	switch v := *level; {
	case v > threshold:
		return PointDanger
	case v >= threshold-WarningMargin:
		return PointWarning
	default:
		return PointNormal
	}
}

// BuildChartSeries sorts a copy of the readings by timestamp, oldest first,
// and maps each onto a ChartPoint. Readings without a timestamp cannot sit on
// a time axis and are dropped. Equal timestamps keep their input order.
// A nil loc formats labels in UTC.
func BuildChartSeries(readings iter.Seq[domain.Reading], threshold float64, loc *time.Location) []ChartPoint {
	if loc == nil {
		loc = time.UTC
	}

	var timed []domain.Reading
	for rd := range readings {
		if rd.MeasuredAt != nil {
			timed = append(timed, rd)
		}
	}
	slices.SortStableFunc(timed, func(a, b domain.Reading) int {
		return a.MeasuredAt.Compare(*b.MeasuredAt)
	})

	points := make([]ChartPoint, 0, len(timed))
	for _, rd := range timed {
		local := rd.MeasuredAt.In(loc)
		points = append(points, ChartPoint{
			Time:          *rd.MeasuredAt,
			TimeLabel:     local.Format(shortTimeLayout),
			DateTimeLabel: local.Format(fullTimeLayout),
			Threshold:     threshold,
			Level:         rd.Level,
			Danger:        rd.Danger,
			Color:         ColorFor(rd.Level, threshold),
		})
	}
	return points
}
