package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-blog-auth/internal/metrics"
)

// routeUnmatched — метка маршрута для запросов, не попавших ни в один шаблон.
const routeUnmatched = "unmatched"

// Metrics считает запросы, их длительность и число одновременных запросов.
// Маршрут берётся из шаблона chi, чтобы не плодить метки по сырым путям.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.InFlight.Inc()
			defer m.InFlight.Dec()

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := routeUnmatched
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			status := strconv.Itoa(sw.Status())
			m.Requests.WithLabelValues(r.Method, route, status).Inc()
			m.Duration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		})
	}
}
