package httpapi

import (
	"net/http"
	"time"

	"climate-server/internal/config"
)

// NewServer wraps handler in the middleware chain. Outermost first: request
// ID, request logger, panic recovery, then the optional rate limit.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	if cfg.RateLimitRPM > 0 {
		handler = rateLimitByIP(cfg.RateLimitRPM)(handler)
	}
	handler = recovery(handler)
	handler = requestLogger(handler)
	handler = RequestID(handler)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
