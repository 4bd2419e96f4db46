package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records one served HTTP request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Metrics reports every request to o, labelled by its route template.
func Metrics(o RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := NewStatusRecorder(w)
			next.ServeHTTP(rec, r)
			o.ObserveRequest(r.Method, RouteTemplate(r), rec.Status, time.Since(start))
		})
	}
}
