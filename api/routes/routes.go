package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/metalmatze/signal/server/signalhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/nicolastakashi/stats-viewer/api/response"
	_ "github.com/nicolastakashi/stats-viewer/docs"
	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/statsclient"
	"github.com/nicolastakashi/stats-viewer/internal/table"
)

const indexTemplate = "templates/index.html"

type routes struct {
	mux *http.ServeMux

	settings controller.Settings
	fetcher  controller.Fetcher
	metrics  *controller.Metrics
	columns  []table.Column
	statsDir string
	now      func() time.Time

	page *template.Template
}

type Option func(*routes)

func WithSettings(settings controller.Settings) Option {
	return func(r *routes) {
		r.settings = settings
	}
}

func WithFetcher(fetcher controller.Fetcher) Option {
	return func(r *routes) {
		r.fetcher = fetcher
	}
}

func WithMetrics(metrics *controller.Metrics) Option {
	return func(r *routes) {
		r.metrics = metrics
	}
}

func WithColumns(columns []table.Column) Option {
	return func(r *routes) {
		r.columns = columns
	}
}

// WithStatsDirectory serves dir read-only under /stats/.
func WithStatsDirectory(dir string) Option {
	return func(r *routes) {
		r.statsDir = dir
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *routes) {
		r.now = now
	}
}

func WithHandlers(uiFS fs.FS, registry *prometheus.Registry, isTracingEnabled bool) Option {
	return func(r *routes) {
		page, err := template.ParseFS(uiFS, indexTemplate)
		if err != nil {
			slog.Error("unable to parse page template", "err", err)
		}
		r.page = page

		i := signalhttp.NewHandlerInstrumenter(registry, []string{"handler"})
		instrument := func(name string, h http.HandlerFunc) http.Handler {
			var handler http.Handler = h
			if isTracingEnabled {
				handler = otelhttp.NewHandler(handler, name)
			}
			return i.NewHandler(prometheus.Labels{"handler": name}, handler)
		}

		static, err := fs.Sub(uiFS, "static")
		if err != nil {
			slog.Error("unable to open static assets", "err", err)
			static = uiFS
		}

		mux := http.NewServeMux()
		mux.Handle("/{$}", instrument("page", r.index))
		mux.Handle("/static/", http.StripPrefix("/static", r.ui(static)))
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.Handle("/swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
		mux.Handle("/-/healthy", http.HandlerFunc(r.healthy))
		mux.Handle("/-/ready", http.HandlerFunc(r.ready))
		mux.Handle("/api/v1/intervals", instrument("intervals", r.intervals))
		mux.Handle("/api/v1/databases", instrument("databases", r.databases))
		mux.Handle("/api/v1/view", instrument("view", r.view))
		mux.Handle("/stats/", instrument("stats", r.stats))
		r.mux = mux
	}
}

func NewRoutes(opts ...Option) (*routes, error) {
	r := &routes{
		mux: http.NewServeMux(),
		settings: controller.Settings{
			Variant:       controller.DatabaseVariant,
			DatabasesPath: "databases.json",
			FloorYear:     controller.DefaultFloorYear,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.fetcher == nil {
		return nil, fmt.Errorf("a statistics fetcher is required")
	}
	if r.metrics == nil {
		r.metrics = controller.NewMetrics(prometheus.NewRegistry())
	}

	return r, nil
}

func (r *routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	response.WithRequestLogging(r.mux).ServeHTTP(w, req)
}

func writeJSONResponse(req *http.Request, w http.ResponseWriter, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode JSON response", "err", err)
		writeErrorResponse(req, w, fmt.Errorf("failed to encode response: %w", err), http.StatusInternalServerError)
		return
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	TraceID string `json:"traceId,omitempty"`
}

func writeErrorResponse(r *http.Request, w http.ResponseWriter, err error, status int) {
	response := errorResponse{
		Error: err.Error(),
		Code:  status,
	}
	if sc := trace.SpanFromContext(r.Context()).SpanContext(); sc.HasTraceID() {
		response.TraceID = sc.TraceID().String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err = json.NewEncoder(w).Encode(response)
	if err != nil {
		slog.Error("failed to encode JSON response", "err", err)
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (r *routes) healthy(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (r *routes) ready(w http.ResponseWriter, req *http.Request) {
	if r.page == nil {
		writeErrorResponse(req, w, errors.New("page template not loaded"), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// intervals godoc
//
//	@Summary	List selectable months and days
//	@Tags		selectors
//	@Produce	json
//	@Success	200	{object}	controller.IntervalOptions
//	@Router		/api/v1/intervals [get]
func (r *routes) intervals(w http.ResponseWriter, req *http.Request) {
	writeJSONResponse(req, w, controller.ComputeIntervalOptions(r.now(), r.floorYear()))
}

// databases godoc
//
//	@Summary	List selectable databases
//	@Tags		selectors
//	@Produce	json
//	@Success	200	{array}		controller.Option
//	@Failure	404	{object}	errorResponse
//	@Failure	502	{object}	errorResponse
//	@Router		/api/v1/databases [get]
func (r *routes) databases(w http.ResponseWriter, req *http.Request) {
	if !r.settings.Variant.HasDatabaseSelector {
		writeErrorResponse(req, w, errors.New("database selection is disabled"), http.StatusNotFound)
		return
	}

	list, err := r.fetcher.Databases(req.Context(), r.settings.DatabasesPath)
	if errors.Is(err, statsclient.ErrNotFound) {
		writeErrorResponse(req, w, errors.New(controller.MessageDatabasesNotFound), http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("unable to fetch databases", "err", err)
		writeErrorResponse(req, w, fmt.Errorf("unable to fetch databases: %w", err), http.StatusBadGateway)
		return
	}

	opts := controller.DatabaseOptions(list)
	if opts == nil {
		opts = []controller.Option{}
	}
	writeJSONResponse(req, w, opts)
}

// view godoc
//
//	@Summary	Load statistics for a selection
//	@Tags		statistics
//	@Produce	json
//	@Param		database	query		[]string	false	"Database paths, concatenated in order"
//	@Param		month		query		string		false	"Month, YYYYMM"
//	@Param		day			query		string		false	"Day, DD; empty selects the whole month"
//	@Param		metric		query		string		false	"Metric identifier"
//	@Success	200			{object}	viewResponse
//	@Success	304
//	@Router		/api/v1/view [get]
func (r *routes) view(w http.ResponseWriter, req *http.Request) {
	res := r.runView(req.Context(), req.URL.Query(), true)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(res); err != nil {
		slog.Error("failed to encode JSON response", "err", err)
		writeErrorResponse(req, w, fmt.Errorf("failed to encode response: %w", err), http.StatusInternalServerError)
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(buf.Bytes()))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(req.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// etagMatches reports whether an If-None-Match header value lists etag.
// Comparison is weak, so W/ prefixes are ignored.
func etagMatches(header, etag string) bool {
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (r *routes) index(w http.ResponseWriter, req *http.Request) {
	if r.page == nil {
		writeErrorResponse(req, w, errors.New("page template not loaded"), http.StatusInternalServerError)
		return
	}
	if err := req.ParseForm(); err != nil {
		writeErrorResponse(req, w, fmt.Errorf("invalid form: %w", err), http.StatusBadRequest)
		return
	}

	res := r.runView(req.Context(), req.Form, req.Form.Has("go"))

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, newPageData(res, r.columns)); err != nil {
		slog.Error("unable to render page", "err", err)
		writeErrorResponse(req, w, fmt.Errorf("unable to render page: %w", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (r *routes) stats(w http.ResponseWriter, req *http.Request) {
	if r.statsDir == "" || strings.HasSuffix(req.URL.Path, "/") {
		http.NotFound(w, req)
		return
	}
	http.StripPrefix("/stats", http.FileServer(http.Dir(r.statsDir))).ServeHTTP(w, req)
}

// runView runs one controller cycle: initialize, apply the requested
// selection and, when submit is set, load the statistics.
func (r *routes) runView(ctx context.Context, values url.Values, submit bool) viewResponse {
	view := newPageView(r.columns)
	fetcher := &capturingFetcher{Fetcher: r.fetcher}
	rt := controller.NewRuntime(r.settings, fetcher, view,
		controller.WithSynchronousEffects(),
		controller.WithMetrics(r.metrics),
		controller.WithClock(r.now),
	)

	rt.Init(ctx)
	for _, id := range controller.Dropdowns() {
		vals, ok := values[id.String()]
		// Browsers omit a multiple select with nothing selected.
		if ok || (submit && id.Multiple()) {
			rt.Handle(ctx, controller.SelectedValues{Dropdown: id, Values: vals})
		}
	}
	if submit {
		rt.Handle(ctx, controller.GoClicked{})
	}

	return newViewResponse(rt.State(), view, fetcher.err)
}

func (r *routes) floorYear() int {
	if r.settings.FloorYear > 0 {
		return r.settings.FloorYear
	}
	return controller.DefaultFloorYear
}

func (r *routes) ui(uiFS fs.FS) http.HandlerFunc {
	uiHandler := http.ServeMux{}
	err := fs.WalkDir(uiFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		b, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("failed to read ui file %s: %w", path, err)
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to receive file info %s: %w", path, err)
		}

		uiHandler.HandleFunc(fmt.Sprintf("/%s", path), func(w http.ResponseWriter, r *http.Request) {
			http.ServeContent(w, r, d.Name(), fi.ModTime(), bytes.NewReader(b))
		})
		return nil
	})
	if err != nil {
		slog.Error("failed to walk ui directory", "err", err)
		return http.NotFound
	}

	return uiHandler.ServeHTTP
}

// capturingFetcher remembers the last failure that has no dedicated UI
// handling, so it can be reported to API clients.
type capturingFetcher struct {
	controller.Fetcher
	err error
}

func (f *capturingFetcher) Statistics(ctx context.Context, path string) (*models.StatisticsResponse, error) {
	resp, err := f.Fetcher.Statistics(ctx, path)
	f.capture(err)
	return resp, err
}

func (f *capturingFetcher) Databases(ctx context.Context, path string) (*models.DatabaseList, error) {
	list, err := f.Fetcher.Databases(ctx, path)
	f.capture(err)
	return list, err
}

func (f *capturingFetcher) capture(err error) {
	if err != nil && !errors.Is(err, statsclient.ErrNotFound) {
		f.err = err
	}
}
