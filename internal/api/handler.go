package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/middleware"
)

// Chain wraps h with the server middleware, outermost first: request
// logging, security headers, CORS, no-store for /api, locale.
func Chain(h http.Handler, cors *middleware.CORS, log *zap.Logger) http.Handler {
	h = middleware.LocaleMiddleware(h)
	h = middleware.NoStore("/api")(h)
	h = cors.Handler(h)
	h = middleware.SecureHeaders(h)
	return middleware.RequestLogger(log)(h)
}
