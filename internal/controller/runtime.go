package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/nicolastakashi/stats-viewer/internal/statsclient"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Fetcher performs the two remote reads the controller needs.
type Fetcher interface {
	Statistics(ctx context.Context, path string) (*models.StatisticsResponse, error)
	Databases(ctx context.Context, path string) (*models.DatabaseList, error)
}

// View is the widget surface the controller renders into.
type View interface {
	AppendOptions(dropdown DropdownID, options []Option)
	ClearTable(redraw bool)
	AddRows(rows []models.Row, redraw bool)
	SetTitle(title string)
	Alert(message string)
}

// ApplyEffects performs the view effects in order and returns the IO
// effects it skipped.
func ApplyEffects(v View, effects []Effect) []Effect {
	var io []Effect
	for _, eff := range effects {
		switch e := eff.(type) {
		case AppendOptions:
			v.AppendOptions(e.Dropdown, e.Options)
		case ClearTable:
			v.ClearTable(e.Redraw)
		case AddRows:
			v.AddRows(e.Rows, e.Redraw)
		case SetTitle:
			v.SetTitle(e.Text)
		case ShowAlert:
			v.Alert(e.Message)
		default:
			io = append(io, eff)
		}
	}
	return io
}

// Runtime hosts the controller: it owns the State, feeds events through
// Update and performs the resulting effects. Handle must only be called
// from a single goroutine, the host's UI loop.
type Runtime struct {
	state       State
	fetcher     Fetcher
	view        View
	metrics     *Metrics
	synchronous bool
	now         func() time.Time

	results  chan Event
	inflight sync.WaitGroup
}

type RuntimeOption func(*Runtime)

func WithMetrics(m *Metrics) RuntimeOption {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithSynchronousEffects performs fetches inline inside Handle instead of
// in background goroutines.
func WithSynchronousEffects() RuntimeOption {
	return func(r *Runtime) {
		r.synchronous = true
	}
}

func WithResultBuffer(size int) RuntimeOption {
	return func(r *Runtime) {
		r.results = make(chan Event, size)
	}
}

func WithClock(now func() time.Time) RuntimeOption {
	return func(r *Runtime) {
		r.now = now
	}
}

func NewRuntime(settings Settings, fetcher Fetcher, view View, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		state:   NewState(settings),
		fetcher: fetcher,
		view:    view,
		now:     time.Now,
		results: make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics(prometheus.NewRegistry())
	}
	return r
}

func (r *Runtime) State() State {
	return r.state
}

// Results delivers completed fetches. The host passes them back to Handle.
func (r *Runtime) Results() <-chan Event {
	return r.results
}

// Init populates the selectors and starts the database discovery.
func (r *Runtime) Init(ctx context.Context) {
	r.Handle(ctx, Initialized{Now: r.now()})
}

func (r *Runtime) Handle(ctx context.Context, ev Event) {
	if token, ok := responseToken(ev); ok && token != r.state.Token {
		r.metrics.fetchesTotal.WithLabelValues(fetchKindStatistics, outcomeStale).Inc()
		slog.Debug("discarding stale statistics response", "token", token, "latest", r.state.Token)
		return
	}

	next, effects := Update(r.state, ev)
	r.state = next

	for _, eff := range ApplyEffects(r.view, effects) {
		r.perform(ctx, eff)
	}
}

// Run handles input events and fetch results until ctx is done or input is closed.
func (r *Runtime) Run(ctx context.Context, input <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-input:
			if !ok {
				return nil
			}
			r.Handle(ctx, ev)
		case ev := <-r.results:
			r.Handle(ctx, ev)
		}
	}
}

// Wait blocks until every background fetch has delivered its result.
func (r *Runtime) Wait() {
	r.inflight.Wait()
}

func (r *Runtime) perform(ctx context.Context, eff Effect) {
	if r.synchronous {
		if ev := r.execute(ctx, eff); ev != nil {
			r.Handle(ctx, ev)
		}
		return
	}

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		ev := r.execute(ctx, eff)
		if ev == nil {
			return
		}
		select {
		case r.results <- ev:
		case <-ctx.Done():
		}
	}()
}

func (r *Runtime) execute(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case FetchDatabases:
		start := time.Now()
		ctx, span := otel.Tracer("controller").Start(ctx, "fetch_databases")
		defer span.End()
		span.SetAttributes(attribute.String("path", e.Path))

		list, err := r.fetcher.Databases(ctx, e.Path)
		r.metrics.fetchDuration.WithLabelValues(fetchKindDatabases).Observe(time.Since(start).Seconds())
		if err != nil {
			r.observeError(fetchKindDatabases, e.Path, err)
			span.RecordError(err)
			return DatabasesFailed{Err: err}
		}
		if list == nil || len(list.Bases) == 0 {
			r.metrics.fetchesTotal.WithLabelValues(fetchKindDatabases, outcomeEmpty).Inc()
		} else {
			r.metrics.fetchesTotal.WithLabelValues(fetchKindDatabases, outcomeOK).Inc()
		}
		return DatabasesLoaded{List: list}

	case FetchStatistics:
		start := time.Now()
		ctx, span := otel.Tracer("controller").Start(ctx, "fetch_statistics")
		defer span.End()
		span.SetAttributes(attribute.String("path", e.Path), attribute.Int64("token", int64(e.Token)))

		resp, err := r.fetcher.Statistics(ctx, e.Path)
		r.metrics.fetchDuration.WithLabelValues(fetchKindStatistics).Observe(time.Since(start).Seconds())
		if err != nil {
			r.observeError(fetchKindStatistics, e.Path, err)
			span.RecordError(err)
			return StatisticsFailed{Token: e.Token, Selection: e.Selection, Err: err}
		}
		if resp.HasData() {
			r.metrics.fetchesTotal.WithLabelValues(fetchKindStatistics, outcomeOK).Inc()
		} else {
			r.metrics.fetchesTotal.WithLabelValues(fetchKindStatistics, outcomeEmpty).Inc()
		}
		return StatisticsLoaded{Token: e.Token, Selection: e.Selection, Response: resp}
	}

	slog.Warn("ignoring unknown effect", "effect", eff)
	return nil
}

func (r *Runtime) observeError(kind, path string, err error) {
	if errors.Is(err, statsclient.ErrNotFound) {
		r.metrics.fetchesTotal.WithLabelValues(kind, outcomeNotFound).Inc()
		slog.Debug("document not found", "kind", kind, "path", path)
		return
	}
	r.metrics.fetchesTotal.WithLabelValues(kind, outcomeError).Inc()
	slog.Error("unable to fetch document", "kind", kind, "path", path, "err", err)
}

func responseToken(ev Event) (uint64, bool) {
	switch e := ev.(type) {
	case StatisticsLoaded:
		return e.Token, true
	case StatisticsFailed:
		return e.Token, true
	}
	return 0, false
}
