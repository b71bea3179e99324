// Package session owns the live map and station detail state. A single
// goroutine started by Run applies every event in delivery order; fetches run
// concurrently and report back as events tagged with a sequence number so a
// superseded result is never applied.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/observability"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
)

// ErrStopped is returned by calls made after Run has returned.
var ErrStopped = errors.New("session stopped")

// ErrNoStation is returned when a station ref is not in the current snapshot.
var ErrNoStation = errors.New("station not in snapshot")

// ErrNoDetail is returned by SetRange when no station detail is open.
var ErrNoDetail = errors.New("no station detail open")

// DataSource fetches station data.
type DataSource interface {
	FetchStationSnapshot(ctx context.Context) (domain.Snapshot, error)
	FetchStationHistory(ctx context.Context, ref domain.StationRef) (domain.StationHistory, error)
}

type command func(ctx context.Context)

// Session serializes map interaction, snapshot refresh, and station detail
// loading onto one goroutine.
type Session struct {
	ctrl    *geoselect.Controller
	source  DataSource
	loc     *time.Location
	logger  *slog.Logger
	metrics *observability.Metrics

	cmds    chan command
	stopped chan struct{}
	ready   atomic.Bool

	// Published copies, read by any goroutine.
	mu        sync.RWMutex
	published MapView
	detailPub DetailView

	// Owned by the Run goroutine.
	view       geoselect.ViewState
	snapshot   domain.Snapshot
	hasSnap    bool
	snapState  LoadState
	snapErr    error
	snapSeq    uint64
	snapCancel context.CancelFunc
	version    uint64
	detail     detailState
}

type detailState struct {
	open    bool
	ref     domain.StationRef
	name    string
	rng     timeseries.Range
	state   LoadState
	err     error
	history *domain.StationHistory
	seq     uint64
	cancel  context.CancelFunc
}

// New creates a Session. initial is the starting view state; loc is the
// display timezone for chart labels.
func New(ctrl *geoselect.Controller, source DataSource, initial geoselect.ViewState, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Session {
	s := &Session{
		ctrl:      ctrl,
		source:    source,
		loc:       loc,
		logger:    logger,
		metrics:   metrics,
		cmds:      make(chan command),
		stopped:   make(chan struct{}),
		view:      initial,
		snapState: StateLoading,
	}
	s.publishMap()
	s.publishDetail()
	return s
}

// Run applies events until ctx is cancelled. It starts the first snapshot
// fetch immediately.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("session started")
	s.metrics.SessionRunning.Set(1)
	defer s.metrics.SessionRunning.Set(0)
	defer close(s.stopped)

	s.startSnapshotFetch(ctx)

	for {
		select {
		case <-ctx.Done():
			s.cancelFetches()
			s.logger.Info("session stopping", "reason", ctx.Err())
			return nil
		case cmd := <-s.cmds:
			cmd(ctx)
		}
	}
}

// CheckReadiness returns nil once a snapshot has loaded.
func (s *Session) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("station snapshot has not loaded yet")
	}
	return nil
}

// MapView returns the current published map.
func (s *Session) MapView() MapView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}

// DetailView returns the current published station detail.
func (s *Session) DetailView() DetailView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailPub
}

// do runs fn on the Run goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn command) error {
	done := make(chan struct{})
	wrapped := func(loopCtx context.Context) {
		defer close(done)
		fn(loopCtx)
	}
	select {
	case s.cmds <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrStopped
	}
}

// post delivers fn from a fetch goroutine without blocking past shutdown.
func (s *Session) post(ctx context.Context, fn command) {
	select {
	case s.cmds <- fn:
	case <-ctx.Done():
	case <-s.stopped:
	}
}

func (s *Session) cancelFetches() {
	if s.snapCancel != nil {
		s.snapCancel()
		s.snapCancel = nil
	}
	if s.detail.cancel != nil {
		s.detail.cancel()
		s.detail.cancel = nil
	}
}

func (s *Session) publishMap() {
	s.version++
	mv := MapView{
		State:    s.snapState,
		View:     s.view,
		Plan:     s.ctrl.Plan(s.view, s.snapshot.Stations),
		Stations: len(s.snapshot.Stations),
		Version:  s.version,
	}
	if s.snapErr != nil {
		mv.Error = s.snapErr.Error()
	}
	if s.hasSnap {
		at := s.snapshot.FetchedAt
		mv.FetchedAt = &at
	}
	s.mu.Lock()
	s.published = mv
	s.mu.Unlock()
}

func (s *Session) publishDetail() {
	s.version++
	d := s.detail
	dv := DetailView{
		Open:        d.open,
		Ref:         d.ref,
		StationName: d.name,
		Range:       d.rng,
		State:       d.state,
		Version:     s.version,
	}
	if d.err != nil {
		dv.Error = d.err.Error()
	}
	if d.open && d.history != nil {
		chart := timeseries.Analyze(*d.history, d.rng, domain.Now(), s.loc)
		dv.Chart = &chart
		dv.State = StatePopulated
		if chart.Empty {
			dv.State = StateEmpty
			dv.Error = domain.ErrEmptyResult.Error()
		}
	}
	s.mu.Lock()
	s.detailPub = dv
	s.mu.Unlock()
}
