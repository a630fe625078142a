package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bitebalance"

// Recorder owns a private registry so tests can build isolated instances.
type Recorder struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	estimates       *prometheus.CounterVec
	mealLogs        *prometheus.CounterVec
	challengeRuns   *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	foodCacheLookup *prometheus.CounterVec
}

func New() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
		estimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "estimates_total",
				Help:      "Daily calorie estimates computed, by goal.",
			},
			[]string{"goal"},
		),
		mealLogs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_logs_total",
				Help:      "Meal log entries created, by meal type.",
			},
			[]string{"meal_type"},
		),
		challengeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "challenge_evaluations_total",
				Help:      "Scheduled challenge evaluations, by outcome.",
			},
			[]string{"success"},
		),
		aiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "requests_total",
				Help:      "Text generation calls, by kind and outcome.",
			},
			[]string{"kind", "success"},
		),
		foodCacheLookup: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "foods",
				Name:      "cache_lookups_total",
				Help:      "Food search cache lookups, by result.",
			},
			[]string{"result"},
		),
	}

	recorder.registry.MustRegister(
		recorder.httpRequests,
		recorder.httpDuration,
		recorder.estimates,
		recorder.mealLogs,
		recorder.challengeRuns,
		recorder.aiRequests,
		recorder.foodCacheLookup,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return recorder
}

func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

// Handler exposes the registry on a fiber route.
func (recorder *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(recorder.registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency keyed by the matched route
// pattern, so path parameters do not explode label cardinality.
func (recorder *Recorder) Middleware(c *fiber.Ctx) error {
	if c.Path() == "/metrics" {
		return c.Next()
	}

	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	route := "unmatched"
	if matched := c.Route(); matched != nil && matched.Path != "" && matched.Path != "/" {
		route = matched.Path
	} else if c.Path() == "/" {
		route = "/"
	}

	method := c.Method()
	recorder.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	recorder.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	return err
}

func (recorder *Recorder) ObserveEstimate(goal string) {
	if recorder == nil {
		return
	}
	recorder.estimates.WithLabelValues(goal).Inc()
}

func (recorder *Recorder) ObserveMealLog(mealType string) {
	if recorder == nil {
		return
	}
	recorder.mealLogs.WithLabelValues(mealType).Inc()
}

func (recorder *Recorder) ObserveChallengeRun(success bool) {
	if recorder == nil {
		return
	}
	recorder.challengeRuns.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (recorder *Recorder) ObserveAIRequest(kind string, success bool) {
	if recorder == nil {
		return
	}
	recorder.aiRequests.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

func (recorder *Recorder) ObserveFoodCache(hit bool) {
	if recorder == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	recorder.foodCacheLookup.WithLabelValues(result).Inc()
}
