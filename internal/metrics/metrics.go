package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// SessionsClosed counts completed voice sessions written to storage.
	SessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voicetime_sessions_closed_total",
			Help: "Total number of completed voice sessions persisted",
		},
	)

	// FallbackSessions counts leave events with no tracked join, closed as
	// synthetic 1-second sessions.
	FallbackSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voicetime_fallback_sessions_total",
			Help: "Leave events recovered as synthetic 1-second sessions",
		},
	)

	// AdjustmentsApplied counts manual ledger adjustments by direction.
	AdjustmentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicetime_adjustments_applied_total",
			Help: "Manual time adjustments applied to the ledger",
		},
		[]string{"direction"},
	)

	// CommandsTotal counts handled chat commands.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voicetime_commands_total",
			Help: "Chat commands handled",
		},
		[]string{"command"},
	)

	// NotifyFailures counts swallowed notification-send failures.
	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "voicetime_notify_failures_total",
			Help: "Notification sends that failed and were dropped",
		},
	)
)

// Register registers all metrics with the default Prometheus registry.
func Register() {
	prometheus.MustRegister(
		SessionsClosed,
		FallbackSessions,
		AdjustmentsApplied,
		CommandsTotal,
		NotifyFailures,
	)
}

// Server exposes the /metrics endpoint.
type Server struct {
	server *http.Server
	logger zerolog.Logger
}

// NewServer creates a metrics HTTP server listening on the given port.
func NewServer(port int, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start begins serving metrics in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.server.Addr).Msg("Metrics server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}

// Stop shuts the metrics server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
