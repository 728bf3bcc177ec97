// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects the usual hardening headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only, plus frame-src for the chart host
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Hosted charts are embedded as iframes from the chart host, so its origin
//   is the one frame source allowed besides 'self'.
// • Headers are set before next.ServeHTTP; handlers that set their own value
//   win because they write later.

package middleware

import (
	"net/http"
	"strings"
)

// Security returns middleware that sets security headers.  frameHosts are
// origins allowed in frame-src (the chart host).
func Security(frameHosts ...string) func(http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains; preload"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
		perm  = "geolocation=(), microphone=(), camera=()"
	)
	csp := "default-src 'self'; img-src 'self' data:; object-src 'none'; " +
		"base-uri 'self'; frame-ancestors 'none'; frame-src 'self'"
	for _, h := range frameHosts {
		if h = strings.TrimSpace(h); h != "" {
			csp += " " + h
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := w.Header()
			hdr.Set("Strict-Transport-Security", hsts)
			hdr.Set("Content-Security-Policy", csp)
			hdr.Set("X-Frame-Options", xfo)
			hdr.Set("X-Content-Type-Options", nosn)
			hdr.Set("Referrer-Policy", refer)
			hdr.Set("Permissions-Policy", perm)
			next.ServeHTTP(w, r)
		})
	}
}
