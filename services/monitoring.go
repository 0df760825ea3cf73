// services/monitoring.go
package services

import (
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MonitoringService exposes prometheus metrics on a side port and provides
// the fiber middleware that times every API request.
type MonitoringService struct {
	context.DefaultService

	logger zerolog.Logger
	app    *fiber.App
	port   int

	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	sessionsStarted      prometheus.Counter
	sessionsCompleted    prometheus.Counter
	perfectSessions      prometheus.Counter
	achievementsUnlocked prometheus.Counter
	mirrorFallbackReads  prometheus.Counter
}

const MONITORING_SVC = "monitoring_svc"

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	svc.logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", svc.Id()).Logger()

	svc.port = 2112
	if v := os.Getenv("METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			svc.port = port
		}
	}

	svc.registry = prometheus.NewRegistry()

	svc.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "API requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	svc.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	svc.sessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_started_total",
		Help: "Daily quiz sessions started.",
	})
	svc.sessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_completed_total",
		Help: "Daily quiz sessions completed.",
	})
	svc.perfectSessions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_sessions_perfect_total",
		Help: "Completed sessions with every answer correct.",
	})
	svc.achievementsUnlocked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "achievements_unlocked_total",
		Help: "Achievement unlocks recorded.",
	})
	svc.mirrorFallbackReads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progress_mirror_fallback_reads_total",
		Help: "Progress reads served from the local mirror.",
	})

	svc.registry.MustRegister(
		svc.httpRequests,
		svc.httpDuration,
		svc.sessionsStarted,
		svc.sessionsCompleted,
		svc.perfectSessions,
		svc.achievementsUnlocked,
		svc.mirrorFallbackReads,
	)

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	svc.app = fiber.New(fiber.Config{DisableStartupMessage: true})
	svc.app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(svc.registry, promhttp.HandlerOpts{})))

	go func() {
		addr := ":" + strconv.Itoa(svc.port)
		svc.logger.Info().Str("addr", addr).Msg("Metrics server listening")
		if err := svc.app.Listen(addr); err != nil {
			svc.logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// Middleware records request count and latency per route.
func (svc *MonitoringService) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}

		svc.httpRequests.WithLabelValues(
			c.Method(), route, strconv.Itoa(c.Response().StatusCode())).Inc()
		svc.httpDuration.WithLabelValues(c.Method(), route).
			Observe(time.Since(start).Seconds())

		return err
	}
}

// ==================== DOMAIN COUNTERS ====================

func (svc *MonitoringService) RecordSessionStarted() {
	svc.sessionsStarted.Inc()
}

func (svc *MonitoringService) RecordSessionCompleted(perfect bool) {
	svc.sessionsCompleted.Inc()
	if perfect {
		svc.perfectSessions.Inc()
	}
}

func (svc *MonitoringService) RecordAchievementUnlocked() {
	svc.achievementsUnlocked.Inc()
}

func (svc *MonitoringService) RecordMirrorFallback() {
	svc.mirrorFallbackReads.Inc()
}
