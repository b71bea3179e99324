package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResult marks a fetch that succeeded but carried no stations or
	// readings. It is not a failure.
	ErrEmptyResult = errors.New("no data")

	// ErrUnknownProvince is returned when a province id is not present in the
	// loaded boundary set.
	ErrUnknownProvince = errors.New("province not in boundary set")

	// ErrInvalidStationRef is returned when a station reference cannot be parsed.
	ErrInvalidStationRef = errors.New("invalid station reference")
)

// DataFetchError reports a network, status, or decode failure while fetching
// from the water-level data source.
type DataFetchError struct {
	Op  string
	Err error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}

// IsDataFetchError reports whether err wraps a *DataFetchError.
func IsDataFetchError(err error) bool {
	var fe *DataFetchError
	return errors.As(err, &fe)
}
