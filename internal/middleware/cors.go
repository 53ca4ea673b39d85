package middleware

import (
	"net/http"
	"sync"
)

// CORS answers cross-origin requests for a configurable origin list. "*"
// allows any origin; the list can be swapped at runtime.
type CORS struct {
	mu      sync.RWMutex
	any     bool
	allowed map[string]struct{}
}

func NewCORS(origins []string) *CORS {
	c := &CORS{}
	c.SetOrigins(origins)
	return c
}

func (c *CORS) SetOrigins(origins []string) {
	allowed := make(map[string]struct{}, len(origins))
	anyOrigin := false
	for _, o := range origins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[o] = struct{}{}
	}
	c.mu.Lock()
	c.any, c.allowed = anyOrigin, allowed
	c.mu.Unlock()
}

func (c *CORS) allow(origin string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.any {
		return "*", true
	}
	if _, ok := c.allowed[origin]; ok && origin != "" {
		return origin, true
	}
	return "", false
}

func (c *CORS) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		if v, ok := c.allow(r.Header.Get("Origin")); ok {
			// no credentials with a wildcard origin
			w.Header().Set("Access-Control-Allow-Origin", v)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
