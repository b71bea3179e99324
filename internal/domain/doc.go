// Package domain models water-level telemetry from river monitoring stations
// and the province boundaries they are grouped under.
//
// # Data Source
//
// Station snapshots and per-station histories come from the water-level API
// (see package waterapi). A snapshot is immutable for its lifetime and is
// replaced wholesale on the next fetch; histories are fetched per station
// when a detail view opens.
//
// # Station Addressing
//
// Two addressing schemes exist in the upstream data:
//
//	station:<station_id>   canonical, used by the detail endpoint
//	location:<location_id> legacy, from the original location-keyed markers
//
// [StationRef] carries the scheme explicitly. New code addresses stations by
// station id; [StationRef.Deprecated] reports refs that still use the legacy
// scheme so callers can log them.
//
// # Danger Classification
//
// Upstream danger strings ("CRITICAL", "danger", "Watch", ...) are parsed
// case-insensitively into the closed [Danger] enumeration. Anything outside
// the known set becomes [DangerUnknown]. Color and label mappings are total:
//
//	CRITICAL → red | DANGER → orange | WATCH → yellow | SAFE → green | unknown → gray
//
// # Units
//
// Levels are reported either in centimeters above the gauge datum or in
// meters above mean sea level (MSL). A station's bank level uses the same unit
// as its readings, so threshold comparisons never convert.
//
// # Province Boundaries
//
// Boundaries are static polygons or multipolygons keyed by a positive province
// id and loaded once at startup. [BoundarySet.ProvinceAt] hit-tests a
// coordinate against them. [NoProvince] (zero) is never a valid id and means
// "no selection".
package domain
