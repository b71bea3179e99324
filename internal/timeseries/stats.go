package timeseries

import (
	"iter"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// Statistics summarizes the non-null levels of a filtered reading set.
type Statistics struct {
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// ComputeStatistics returns nil when no reading carries a level.
func ComputeStatistics(readings iter.Seq[domain.Reading]) *Statistics {
	var (
		s   Statistics
		sum float64
	)
	for rd := range readings {
		if rd.Level == nil {
			continue
		}
		v := *rd.Level
		if s.Count == 0 || v > s.Max {
			s.Max = v
		}
		if s.Count == 0 || v < s.Min {
			s.Min = v
		}
		sum += v
		s.Count++
	}
	if s.Count == 0 {
		return nil
	}
	s.Mean = sum / float64(s.Count)
	return &s
}
