package session

import (
	"context"
	"errors"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
)

// Dispatch applies a map event and returns the transition with the map view
// it produced.
func (s *Session) Dispatch(ctx context.Context, ev geoselect.Event) (geoselect.Transition, MapView, error) {
	var t geoselect.Transition
	err := s.do(ctx, func(context.Context) {
		t = s.applyEvent(ev)
	})
	if err != nil {
		return geoselect.Transition{}, MapView{}, err
	}
	return t, s.MapView(), nil
}

// RefreshSnapshot starts a new snapshot fetch, superseding any in flight.
func (s *Session) RefreshSnapshot(ctx context.Context) error {
	return s.do(ctx, s.startSnapshotFetch)
}

func (s *Session) applyEvent(ev geoselect.Event) geoselect.Transition {
	t := s.ctrl.Apply(s.view, ev)
	s.metrics.ViewEvents.WithLabelValues(ev.Type()).Inc()
	if t.Cleared != geoselect.ClearNone {
		s.metrics.SelectionCleared.WithLabelValues(string(t.Cleared)).Inc()
	}
	if t.Violation != nil {
		s.metrics.InvariantViolations.Inc()
		s.logger.Warn("map event referenced unknown province", "event", ev.Type(), "error", t.Violation)
	}
	s.view = t.State
	s.publishMap()
	return t
}

func (s *Session) startSnapshotFetch(loopCtx context.Context) {
	if s.snapCancel != nil {
		s.snapCancel()
	}
	s.snapSeq++
	seq := s.snapSeq

	fetchCtx, cancel := context.WithCancel(loopCtx)
	s.snapCancel = cancel
	if !s.hasSnap {
		s.snapState = StateLoading
		s.publishMap()
	}

	go func() {
		snap, err := s.source.FetchStationSnapshot(fetchCtx)
		s.post(loopCtx, func(context.Context) {
			s.handleSnapshot(seq, snap, err)
		})
	}()
}

func (s *Session) handleSnapshot(seq uint64, snap domain.Snapshot, err error) {
	if seq != s.snapSeq {
		s.metrics.StaleResults.WithLabelValues("snapshot").Inc()
		s.logger.Debug("dropping superseded snapshot", "seq", seq, "current", s.snapSeq)
		return
	}
	s.snapCancel()
	s.snapCancel = nil

	if err != nil && !isEmpty(err) {
		s.metrics.SnapshotFetches.WithLabelValues("error").Inc()
		s.logger.Error("snapshot fetch failed", "error", err)
		s.snapState = StateError
		s.snapErr = err
		s.publishMap()
		return
	}

	s.snapshot = snap
	s.hasSnap = true
	s.metrics.StationsLoaded.Set(float64(len(snap.Stations)))
	if len(snap.Stations) == 0 {
		s.metrics.SnapshotFetches.WithLabelValues("empty").Inc()
		s.snapState = StateEmpty
		s.snapErr = domain.ErrEmptyResult
	} else {
		s.metrics.SnapshotFetches.WithLabelValues("success").Inc()
		s.snapState = StatePopulated
		s.snapErr = nil
	}
	s.ready.Store(true)
	s.logger.Info("snapshot loaded", "stations", len(snap.Stations))

	// A detail opened before the snapshot arrived picks up its name now.
	if s.detail.open && s.detail.name == "" {
		if st, ok := s.stationByRef(s.detail.ref); ok {
			s.detail.name = st.Name
			s.publishDetail()
		}
	}
	s.publishMap()
}

// stationByRef finds a station in the current snapshot under either scheme.
func (s *Session) stationByRef(ref domain.StationRef) (domain.Station, bool) {
	for _, st := range s.snapshot.Stations {
		switch {
		case ref.Scheme == domain.SchemeStation && st.StationID == ref.ID:
			return st, true
		case ref.Scheme == domain.SchemeLocation && st.LocationID == ref.ID:
			return st, true
		}
	}
	return domain.Station{}, false
}

// isEmpty reports whether err marks a fetch with no data rather than a failure.
func isEmpty(err error) bool {
	return errors.Is(err, domain.ErrEmptyResult)
}
