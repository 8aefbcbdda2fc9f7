package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/netmonitor/internal/config"
	"github.com/hamed0406/netmonitor/internal/domain"
	apimw "github.com/hamed0406/netmonitor/internal/httpapi/middleware"
	"github.com/hamed0406/netmonitor/internal/monitor"
	"github.com/hamed0406/netmonitor/internal/registry"
	"github.com/hamed0406/netmonitor/internal/repo"
)

// Monitor is the part of monitor.Service the API needs.
type Monitor interface {
	ListServerStatuses(ctx context.Context) []domain.EntityStatus
	ListUplinkStatuses(ctx context.Context) []domain.EntityStatus
	Latest() monitor.LatestStatus
	GetHistory(kind domain.Kind, id string, r repo.TimeRange) (repo.HistoryResult, error)
	GetMetricsSummary() monitor.MetricsSummary
	ReplaceServers(servers []domain.Server) error
	ReplaceUplinks(uplinks []domain.Uplink) error
	Targets() registry.Snapshot
	HealthCheck() (monitor.HealthReport, error)
}

type Server struct {
	Logger     *zap.Logger
	Monitor    Monitor
	Monitoring config.Monitoring
}

func NewServer(l *zap.Logger, m Monitor, monitoring config.Monitoring) *Server {
	return &Server{Logger: l, Monitor: m, Monitoring: monitoring}
}

type RouterOptions struct {
	AllowedOrigins []string // empty allows any origin
	PublicRPM      int
	PublicBurst    int
}

func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.StripSlashes)
	r.Use(s.recoverer)
	r.Use(corsHandler(opts.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.accessLog)
		r.Use(apimw.RateLimit(opts.PublicRPM, opts.PublicBurst))

		r.Get("/health", s.handleHealth)
		r.Get("/servers/status", s.handleServerStatus)
		r.Get("/uplinks/status", s.handleUplinkStatus)
		r.Get("/mpls/status", s.handleUplinkStatus)
		r.Get("/status/latest", s.handleLatest)

		r.Get("/metrics/summary", s.handleSummary)
		r.Get("/metrics/{kind}/{id}", s.handleHistory)

		r.Get("/config", s.handleConfig)
		r.Post("/config/servers", s.handleReplaceServers)
		r.Post("/config/uplinks", s.handleReplaceUplinks)
		r.Post("/config/mpls", s.handleReplaceUplinks)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Info("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.Logger.Error("http_panic",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
