package httpmiddleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"speech_to_act/backend/go/pkg/circuitbreaker"
	"speech_to_act/backend/go/pkg/ratelimiter"
)

// Stages reported by the resilience middleware in the standard error envelope.
const (
	StageRateLimit      = "rate_limit"
	StageCircuitBreaker = "circuit_breaker"
)

func writeEnvelope(w http.ResponseWriter, status int, stage, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"stage":   stage,
		"error":   message,
	})
}

// RateLimit is a middleware that applies rate limiting to an HTTP handler.
func RateLimit(limiter ratelimiter.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeEnvelope(w, http.StatusTooManyRequests, StageRateLimit, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// CircuitBreak is a middleware that applies the circuit breaker pattern to an HTTP handler.
// Only 500 and above count as failures; a 503 reporting an unreachable downstream is
// a failure too, so a dead backend eventually sheds load at the edge.
func CircuitBreak(breaker circuitbreaker.CircuitBreaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			_, err := breaker.Execute(func() (interface{}, error) {
				next.ServeHTTP(rw, r)
				if rw.statusCode >= http.StatusInternalServerError {
					return nil, fmt.Errorf("server error: status code %d", rw.statusCode)
				}
				return nil, nil
			})

			if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
				writeEnvelope(w, http.StatusServiceUnavailable, StageCircuitBreaker, "Service Unavailable: Circuit Breaker is open")
			}
			// Any other error has already been written to the response by next.
		})
	}
}
