// modules/debug/debug.go
//
// Debug module that echoes the caller's session: id, registered apps, and
// the serialized value of every tracked widget.  Mounted at /debug only
// for loopback callers.
package debug

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/yanizio/adept-charts/internal/app"
	"github.com/yanizio/adept-charts/internal/session"
)

// Handler returns the /debug handler for sessions in m.
func Handler(m *session.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{
			"ip":       clientIP(r),
			"apps":     app.Names(),
			"sessions": m.Len(),
		}
		if sess, err := m.FromRequest(r); err == nil {
			widgets, err := sess.Widgets.Snapshot()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			out["session"] = sess.ID
			out["widgets"] = widgets
		}

		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	})
}

// LocalOnly rejects requests not coming from the loopback interface.
func LocalOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := net.ParseIP(clientIP(r))
		if ip == nil || !ip.IsLoopback() {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// clientIP grabs the remote address without port.
func clientIP(r *http.Request) string {
	h, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return h
}
