// Package metrics — коллекторы Prometheus для HTTP-слоя и событий аутентификации.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// События аутентификации (значение метки event).
const (
	EventRegister        = "register"
	EventLoginSuccess    = "login_success"
	EventLoginFailure    = "login_failure"
	EventLockout         = "lockout"
	EventRefresh         = "refresh"
	EventRefreshDenied   = "refresh_denied"
	EventLogout          = "logout"
	EventLogoutAll       = "logout_all"
	EventPasswordChanged = "password_changed"
	EventAccountRecovery = "account_recovery"
	EventPasswordReset   = "password_reset"
	EventEmailVerified   = "email_verified"
	EventEmailChanged    = "email_changed"
	EventGuardDenied     = "guard_denied"
)

const namespace = "blog_auth"

// Metrics объединяет коллекторы сервиса. Методы безопасны для nil-получателя.
type Metrics struct {
	Requests   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	InFlight   prometheus.Gauge
	AuthEvents *prometheus.CounterVec
}

// New создаёт коллекторы и регистрирует их в reg (nil — prometheus.DefaultRegisterer).
// Повторная регистрация возвращает уже существующие коллекторы.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests partitioned by method, route, and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Histogram of HTTP request latencies in seconds partitioned by method, route, and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	inFlight, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	}))
	if err != nil {
		return nil, err
	}

	events, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Authentication and session lifecycle events.",
	}, []string{"event"}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		Requests:   requests,
		Duration:   duration,
		InFlight:   inFlight,
		AuthEvents: events,
	}, nil
}

// AuthEvent увеличивает счётчик события.
func (m *Metrics) AuthEvent(event string) {
	if m == nil || m.AuthEvents == nil {
		return
	}

	m.AuthEvents.WithLabelValues(event).Inc()
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}

			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}

		return c, fmt.Errorf("register collector: %w", err)
	}

	return c, nil
}
