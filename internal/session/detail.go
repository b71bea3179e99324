package session

import (
	"context"
	"fmt"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
)

// OpenDetail shows the chart for ref under range r. Reopening the station
// already shown only changes the range; any other station supersedes the
// in-flight history fetch.
func (s *Session) OpenDetail(ctx context.Context, ref domain.StationRef, r timeseries.Range) (DetailView, error) {
	if ref.IsZero() {
		return DetailView{}, fmt.Errorf("open detail: %w", domain.ErrInvalidStationRef)
	}
	err := s.do(ctx, func(loopCtx context.Context) {
		if s.detail.open && s.detail.ref == ref && s.detail.state != StateError {
			s.detail.rng = r
			s.publishDetail()
			return
		}
		s.startHistoryFetch(loopCtx, ref, r)
	})
	if err != nil {
		return DetailView{}, err
	}
	return s.DetailView(), nil
}

// SetRange re-derives the open chart under a new range without refetching.
func (s *Session) SetRange(ctx context.Context, r timeseries.Range) (DetailView, error) {
	open := false
	err := s.do(ctx, func(context.Context) {
		if !s.detail.open {
			return
		}
		open = true
		s.detail.rng = r
		s.publishDetail()
	})
	if err != nil {
		return DetailView{}, err
	}
	if !open {
		return DetailView{}, ErrNoDetail
	}
	return s.DetailView(), nil
}

// CloseDetail hides the chart. A history fetch still in flight is cancelled
// and its result dropped.
func (s *Session) CloseDetail(ctx context.Context) error {
	return s.do(ctx, func(context.Context) {
		if s.detail.cancel != nil {
			s.detail.cancel()
		}
		// Bumping seq makes any late result stale.
		s.detail = detailState{seq: s.detail.seq + 1}
		s.publishDetail()
	})
}

// SelectStation emits the navigation intent for a station in the current
// snapshot and opens its detail view.
func (s *Session) SelectStation(ctx context.Context, ref domain.StationRef) (DetailView, error) {
	var (
		st    domain.Station
		found bool
	)
	if err := s.do(ctx, func(context.Context) {
		st, found = s.stationByRef(ref)
	}); err != nil {
		return DetailView{}, err
	}
	if !found {
		return DetailView{}, fmt.Errorf("select %s: %w", ref, ErrNoStation)
	}

	if err := s.ctrl.SelectStation(ctx, st); err != nil {
		s.metrics.NavigationRequests.WithLabelValues("error").Inc()
		return DetailView{}, err
	}
	s.metrics.NavigationRequests.WithLabelValues("success").Inc()
	return s.OpenDetail(ctx, st.Ref(), timeseries.RangeAll)
}

func (s *Session) startHistoryFetch(loopCtx context.Context, ref domain.StationRef, r timeseries.Range) {
	if s.detail.cancel != nil {
		s.detail.cancel()
	}
	fetchCtx, cancel := context.WithCancel(loopCtx)
	seq := s.detail.seq + 1

	name := ""
	if st, ok := s.stationByRef(ref); ok {
		name = st.Name
	}
	s.detail = detailState{
		open:   true,
		ref:    ref,
		name:   name,
		rng:    r,
		state:  StateLoading,
		seq:    seq,
		cancel: cancel,
	}
	s.publishDetail()

	go func() {
		h, err := s.source.FetchStationHistory(fetchCtx, ref)
		s.post(loopCtx, func(context.Context) {
			s.handleHistory(seq, h, err)
		})
	}()
}

func (s *Session) handleHistory(seq uint64, h domain.StationHistory, err error) {
	if !s.detail.open || seq != s.detail.seq {
		s.metrics.StaleResults.WithLabelValues("history").Inc()
		s.logger.Debug("dropping superseded history", "seq", seq, "current", s.detail.seq)
		return
	}
	s.detail.cancel()
	s.detail.cancel = nil

	if err != nil && !isEmpty(err) {
		s.metrics.HistoryFetches.WithLabelValues("error").Inc()
		s.logger.Error("history fetch failed", "station_ref", s.detail.ref.String(), "error", err)
		s.detail.state = StateError
		s.detail.err = err
		s.publishDetail()
		return
	}

	outcome := "success"
	if len(h.Readings) == 0 {
		outcome = "empty"
	}
	s.metrics.HistoryFetches.WithLabelValues(outcome).Inc()
	if h.Ref.IsZero() {
		h.Ref = s.detail.ref
	}
	s.detail.history = &h
	s.detail.state = StatePopulated
	s.detail.err = nil
	s.publishDetail()
}
