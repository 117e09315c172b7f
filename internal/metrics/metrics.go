// Package metrics registra las métricas Prometheus del core.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Auth
	loginsTotal       *prometheus.CounterVec
	tokensIssuedTotal *prometheus.CounterVec
	authzDenialsTotal *prometheus.CounterVec
	resetFlowsTotal   *prometheus.CounterVec
)

// Register inicializa las métricas en el registry dado (o el default) y
// devuelve el handler para /metrics. Idempotente.
func Register(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portero_http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portero_http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portero_logins_total",
			Help: "Intentos de login por resultado",
		}, []string{"result"}) // ok|invalid_credentials|error

		tokensIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portero_tokens_issued_total",
			Help: "Tokens emitidos por tipo",
		}, []string{"type"}) // access|refresh|password_reset

		authzDenialsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portero_authz_denials_total",
			Help: "Denegaciones de autorización por causa",
		}, []string{"cause"}) // permission|membership|tenant_status

		resetFlowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portero_password_reset_total",
			Help: "Flujos de password reset por etapa y resultado",
		}, []string{"stage", "result"}) // stage: request|confirm

		reg.MustRegister(
			httpRequestsTotal, httpRequestDuration,
			loginsTotal, tokensIssuedTotal, authzDenialsTotal, resetFlowsTotal,
		)
	})
	return promhttp.Handler()
}

func ObserveHTTP(method, path, status string, dur time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(dur.Seconds())
}

func Login(result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(result).Inc()
	}
}

func TokenIssued(tokenType string) {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.WithLabelValues(tokenType).Inc()
	}
}

func AuthzDenied(cause string) {
	if authzDenialsTotal != nil {
		authzDenialsTotal.WithLabelValues(cause).Inc()
	}
}

func ResetFlow(stage, result string) {
	if resetFlowsTotal != nil {
		resetFlowsTotal.WithLabelValues(stage, result).Inc()
	}
}
