// Package metrics records Prometheus metrics for facade calls.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/martinemde/aiface/unifiedllm"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Collector holds the facade call metrics.
type Collector struct {
	Calls    *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewCollector registers the facade metrics with reg. A nil reg uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiface_calls_total",
			Help: "Total number of facade calls by provider, adapter and outcome",
		}, []string{"provider", "adapter", "outcome"}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aiface_call_errors_total",
			Help: "Total number of backend errors by provider and error type",
		}, []string{"provider", "error_type"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aiface_call_duration_seconds",
			Help:    "Backend call latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}, // LLM replies can take minutes
		}, []string{"provider", "adapter"}),
	}
}

// Middleware returns a facade middleware that records every call. It sees
// backend errors even for adapters whose errors the facade swallows.
func (c *Collector) Middleware() unifiedllm.Middleware {
	return func(ctx context.Context, call unifiedllm.Call, next unifiedllm.CallFunc) (string, error) {
		start := time.Now()
		text, err := next(ctx, call)
		provider := string(call.Provider)

		c.Duration.WithLabelValues(provider, call.Adapter).Observe(time.Since(start).Seconds())

		outcome := OutcomeSuccess
		switch {
		case err != nil:
			outcome = OutcomeError
			c.Errors.WithLabelValues(provider, ErrorType(err)).Inc()
		case text == "":
			outcome = OutcomeEmpty
		}
		c.Calls.WithLabelValues(provider, call.Adapter, outcome).Inc()

		return text, err
	}
}

// Middleware registers a Collector with reg and returns its middleware.
func Middleware(reg prometheus.Registerer) unifiedllm.Middleware {
	return NewCollector(reg).Middleware()
}

// ErrorType returns a short label for err's class.
func ErrorType(err error) string {
	var (
		authErr    *unifiedllm.AuthenticationError
		deniedErr  *unifiedllm.AccessDeniedError
		notFound   *unifiedllm.NotFoundError
		invalidErr *unifiedllm.InvalidRequestError
		rateErr    *unifiedllm.RateLimitError
		serverErr  *unifiedllm.ServerError
		filterErr  *unifiedllm.ContentFilterError
		lengthErr  *unifiedllm.ContextLengthError
		timeoutErr *unifiedllm.RequestTimeoutError
		netErr     *unifiedllm.NetworkError
		cfgErr     *unifiedllm.ConfigurationError
		provErr    *unifiedllm.ProviderError
	)
	switch {
	case errors.As(err, &authErr):
		return "authentication"
	case errors.As(err, &deniedErr):
		return "access_denied"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &invalidErr):
		return "invalid_request"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &serverErr):
		return "server"
	case errors.As(err, &filterErr):
		return "content_filter"
	case errors.As(err, &lengthErr):
		return "context_length"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &provErr):
		return "provider"
	default:
		return "unknown"
	}
}
