package timeseries

import (
	"slices"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func reading(ts string, level *float64) domain.Reading {
	rd := domain.Reading{Level: level}
	if ts != "" {
		rd.MeasuredAt = at(ts)
	}
	return rd
}

func collect(readings []domain.Reading, r Range, now time.Time) []domain.Reading {
	return slices.Collect(FilterByRange(readings, r, now))
}
