package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-graphview/pkg/health"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
)

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Router serves /metrics and the probes of checker on /healthz, /readyz and
// /livez. A nil checker reports healthy.
func (r *Registry) Router(checker *health.Checker, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if checker == nil {
		checker = health.NewChecker()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(r.instrument(logger))

	router.Handle("/metrics", r.Handler())
	router.Get("/healthz", checker.HTTPHandler())
	router.Get("/readyz", checker.ReadinessHandler())
	router.Get("/livez", checker.LivenessHandler())

	return router
}

// instrument records every request and logs it at debug level
func (r *Registry) instrument(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			r.RecordHTTPRequest(req.Method, routeLabel(req), status, elapsed)
			logger.Debug("http request",
				logging.String("method", req.Method),
				logging.Path(req.URL.Path),
				logging.Int("status", status),
				logging.Latency(elapsed),
				logging.RequestID(chimiddleware.GetReqID(req.Context())),
			)
		})
	}
}

// routeLabel returns the matched route pattern so arbitrary paths cannot grow
// the path label set
func routeLabel(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Serve runs the ops endpoint on addr until ctx is cancelled, refreshing the
// system gauges every interval
func (r *Registry) Serve(ctx context.Context, addr string, interval time.Duration, checker *health.Checker, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Router(checker, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		r.UpdateSystemMetrics()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.UpdateSystemMetrics()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
