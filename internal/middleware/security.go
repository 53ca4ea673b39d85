package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders adds standard security headers.
func SecureHeaders(next http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionsPolicy:  "camera=(), microphone=(), geolocation=()",
	})
	return sm.Handler(next)
}
