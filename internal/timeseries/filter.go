// Package timeseries turns a station's reading history into chart-ready
// series, summary statistics, and axis ticks aligned to the bank level.
package timeseries

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
)

// ErrInvalidRange is returned by ParseRange for an unrecognized range name.
var ErrInvalidRange = errors.New("invalid date range")

// Range is a date-range filter relative to "now".
type Range string

const (
	RangeAll   Range = "all"
	RangeDay   Range = "1day"
	RangeWeek  Range = "7days"
	RangeMonth Range = "30days"
)

// ParseRange parses a range name. Empty input selects RangeAll.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeDay, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Window returns the look-back duration. ok is false for RangeAll, which has
// no lower bound.
func (r Range) Window() (d time.Duration, ok bool) {
	switch r {
	case RangeDay:
		return 24 * time.Hour, true
	case RangeWeek:
		return 7 * 24 * time.Hour, true
	case RangeMonth:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// FilterByRange yields the readings measured at or after now minus the range
// window, in input order. Readings without a timestamp are dropped under every
// range, RangeAll included. The sequence reads readings afresh on each
// iteration, so it reflects the slice as it is when ranged over.
func FilterByRange(readings []domain.Reading, r Range, now time.Time) iter.Seq[domain.Reading] {
	window, bounded := r.Window()
	cutoff := now.Add(-window)

	return func(yield func(domain.Reading) bool) {
		for _, rd := range readings {
			if rd.MeasuredAt == nil {
				continue
			}
			if bounded && rd.MeasuredAt.Before(cutoff) {
				continue
			}
			if !yield(rd) {
				return
			}
		}
	}
}
