// internal/api/handler.go
//
// HTTP surface for running apps and delivering selection events.
//
// Routes (mounted under /api/apps)
// --------------------------------
//
//	GET  /                         – registered app names.
//	GET  /{app}                    – run one cycle, return the element tree.
//	POST /{app}/widgets/{id}       – apply a selection event; rerun if the
//	                                 widget asks for it.
//
// Every cycle response carries a CSRF token bound to the session cookie;
// event posts must echo it in X-CSRF-Token.
//
// Notes
// -----
// • Sessions are created on the first GET.  A POST without a live session
//   is rejected.
// • An event for a widget that did not render in the last cycle is a 404.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/adept-charts/internal/app"
	"github.com/yanizio/adept-charts/internal/logger"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/runner"
	"github.com/yanizio/adept-charts/internal/session"
	"github.com/yanizio/adept-charts/internal/widget"
)

// CSRFHeader carries the token on event posts.
const CSRFHeader = "X-CSRF-Token"

const maxEventBytes = 1 << 20

// Handler serves the app routes.
type Handler struct {
	Sessions *session.Manager
	Runner   *runner.Runner
	CSRF     *session.CSRF
	Lookup   func(name string) runner.Script // defaults to app.Lookup
}

// CycleResponse is the body of a successful run.
type CycleResponse struct {
	Session  string       `json:"session"`
	CSRF     string       `json:"csrf"`
	Rerun    bool         `json:"rerun"`
	Elements *output.Tree `json:"elements,omitempty"`
}

// Routes returns the router to mount under /api/apps.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.listApps)
	r.Get("/{app}", h.runApp)
	r.Post("/{app}/widgets/{id}", h.widgetEvent)
	return r
}

func (h *Handler) lookup(name string) runner.Script {
	if h.Lookup != nil {
		return h.Lookup(name)
	}
	return app.Lookup(name)
}

func (h *Handler) listApps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"apps": app.Names()})
}

func (h *Handler) runApp(w http.ResponseWriter, r *http.Request) {
	script := h.lookup(chi.URLParam(r, "app"))
	if script == nil {
		http.NotFound(w, r)
		return
	}
	sess := h.Sessions.Ensure(w, r)
	ctx := logger.WithContext(r.Context(), logger.FromContext(r.Context()).With("app", chi.URLParam(r, "app")))

	tree, err := h.Runner.Run(ctx, sess, script)
	if err != nil {
		logger.FromContext(ctx).Errorw("app cycle failed", "session", sess.ID, "err", err)
		http.Error(w, "app failed", http.StatusInternalServerError)
		return
	}
	h.respond(w, sess, tree)
}

func (h *Handler) widgetEvent(w http.ResponseWriter, r *http.Request) {
	script := h.lookup(chi.URLParam(r, "app"))
	if script == nil {
		http.NotFound(w, r)
		return
	}
	sess, err := h.Sessions.FromRequest(r)
	if err != nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	if !h.CSRF.Verify(sess.ID, r.Header.Get(CSRFHeader)) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad widget id", http.StatusBadRequest)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	tree, err := h.Runner.Event(r.Context(), sess, id, raw, script)
	switch {
	case errors.Is(err, widget.ErrUnknownWidget):
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	case errors.Is(err, widget.ErrRejected):
		http.Error(w, "selection rejected", http.StatusBadRequest)
		return
	case err != nil:
		logger.FromContext(r.Context()).Errorw("widget event failed", "session", sess.ID, "widget", id, "err", err)
		http.Error(w, "event failed", http.StatusInternalServerError)
		return
	}
	h.respond(w, sess, tree)
}

func (h *Handler) respond(w http.ResponseWriter, sess *session.Session, tree *output.Tree) {
	tok, err := h.CSRF.Generate(sess.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, CycleResponse{
		Session:  sess.ID,
		CSRF:     tok,
		Rerun:    tree != nil,
		Elements: tree,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
