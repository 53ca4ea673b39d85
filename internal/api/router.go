package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/middleware"
	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/presentation"
	"github.com/soaringjerry/SheHuMaan/internal/results"
	"github.com/soaringjerry/SheHuMaan/internal/services"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type Router struct {
	store      SessionStore
	provider   results.Provider
	classifier services.Classifier
	sessions   *middleware.Sessions
	steps      []intake.Step
	log        *zap.Logger
	now        func() time.Time
}

// Options configure a Router. Steps may be nil for the built-in layout.
type Options struct {
	Provider   results.Provider
	Classifier services.Classifier
	Sessions   *middleware.Sessions
	Steps      []intake.Step
	Log        *zap.Logger
}

func NewRouter(opts Options) *Router {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	steps := opts.Steps
	if steps == nil {
		steps = intake.DefaultSteps()
	}
	return &Router{
		store:      newMemoryStore(steps, nil),
		provider:   opts.Provider,
		classifier: opts.Classifier,
		sessions:   opts.Sessions,
		steps:      steps,
		log:        log,
		now:        time.Now,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{$}", rt.handleBanner)
	mux.HandleFunc("GET /api/resources", rt.handleResources)
	mux.HandleFunc("POST /api/sessions", rt.handleCreateSession)

	auth := func(h http.HandlerFunc) http.Handler {
		return rt.sessions.WithSession(middleware.RequireSession(h))
	}
	mux.Handle("GET /api/intake", auth(rt.handleIntake))
	mux.Handle("GET /api/intake/steps", auth(rt.handleSteps))
	mux.Handle("POST /api/intake/restart", auth(rt.handleRestart))
	mux.Handle("POST /api/intake/field", auth(rt.handleField))
	mux.Handle("POST /api/intake/toggle", auth(rt.handleToggle))
	mux.Handle("POST /api/intake/next", auth(rt.handleNext))
	mux.Handle("POST /api/intake/prev", auth(rt.handlePrev))
	mux.Handle("POST /api/intake/submit", auth(rt.handleSubmit))
	mux.Handle("GET /api/dashboard", auth(rt.handleDashboard))
	mux.Handle("DELETE /api/dashboard", auth(rt.handleClearDashboard))
}

// purger is implemented by providers that can drop records by age.
type purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunJanitor drops sessions idle longer than ttl, together with their
// stored results, until ctx is done. Providers that can purge by age also
// lose records older than ttl; their tokens have expired.
func (rt *Router) RunJanitor(ctx context.Context, ttl, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.expire(ctx, ttl)
		}
	}
}

func (rt *Router) expire(ctx context.Context, ttl time.Duration) {
	cutoff := rt.now().Add(-ttl)
	for _, id := range rt.store.CleanupBefore(cutoff) {
		if err := rt.provider.Forget(id); err != nil {
			rt.log.Warn("Failed to forget expired session", zap.String("session_id", id), zap.Error(err))
		}
	}
	p, ok := rt.provider.(purger)
	if !ok {
		return
	}
	n, err := p.PurgeBefore(ctx, cutoff)
	if err != nil {
		rt.log.Warn("Failed to purge expired results", zap.Error(err))
		return
	}
	if n > 0 {
		rt.log.Info("Purged expired results", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}

func (rt *Router) session(r *http.Request) *Session {
	id, _ := middleware.SessionIDFromContext(r.Context())
	return rt.store.GetOrCreate(id)
}

func (rt *Router) submitterFor(sess *Session) (*services.SubmissionService, *outbox) {
	sess.once.Do(func() {
		sess.out = &outbox{}
		sess.submitter = services.NewSubmissionService(
			rt.classifier,
			rt.provider.ForSession(sess.ID),
			sess.out, sess.out,
			rt.log.With(zap.String("session_id", sess.ID)),
		)
	})
	return sess.submitter, sess.out
}

// GET /api/
func (rt *Router) handleBanner(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"message": utils.T(locale, "api.banner"), "status": "active"})
}

// GET /api/resources
func (rt *Router) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, directory)
}

// POST /api/sessions
func (rt *Router) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := rt.store.Create()
	tok, err := rt.sessions.Sign(sess.ID)
	if err != nil {
		rt.log.Error("Failed to sign session token", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"token":      tok,
		"expires_in": int(rt.sessions.TTL().Seconds()),
	})
}

// GET /api/intake
func (rt *Router) handleIntake(w http.ResponseWriter, r *http.Request) {
	sess := rt.session(r)
	sess.mu.Lock()
	snap := sess.machine.Snapshot()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// GET /api/intake/steps
func (rt *Router) handleSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"total_steps": intake.TotalSteps, "steps": rt.steps})
}

// POST /api/intake/restart
func (rt *Router) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess := rt.session(r)
	sess.mu.Lock()
	sess.machine = intake.NewMachine(rt.steps)
	snap := sess.machine.Snapshot()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

type fieldRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(dst)
}

// POST /api/intake/field {key, value}
func (rt *Router) handleField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeBody(w, r, &req); err != nil {
		rt.writeError(w, r, services.NewInvalidError(err.Error()))
		return
	}
	rt.mutate(w, r, func(m *intake.Machine) error { return m.UpdateField(req.Key, req.Value) })
}

// POST /api/intake/toggle {key, value}
func (rt *Router) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		rt.writeError(w, r, services.NewInvalidError(err.Error()))
		return
	}
	rt.mutate(w, r, func(m *intake.Machine) error { return m.ToggleSetMember(req.Key, req.Value) })
}

// POST /api/intake/next
func (rt *Router) handleNext(w http.ResponseWriter, r *http.Request) {
	rt.mutate(w, r, func(m *intake.Machine) error { m.Advance(); return nil })
}

// POST /api/intake/prev
func (rt *Router) handlePrev(w http.ResponseWriter, r *http.Request) {
	rt.mutate(w, r, func(m *intake.Machine) error { m.Retreat(); return nil })
}

func (rt *Router) mutate(w http.ResponseWriter, r *http.Request, fn func(m *intake.Machine) error) {
	sess := rt.session(r)
	sess.mu.Lock()
	err := fn(sess.machine)
	snap := sess.machine.Snapshot()
	sess.mu.Unlock()
	if err != nil {
		if errors.Is(err, intake.ErrUnknownField) {
			rt.writeError(w, r, services.NewNotFoundError(err.Error()))
			return
		}
		rt.writeError(w, r, services.NewInvalidError(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// POST /api/intake/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := rt.session(r)
	submitter, out := rt.submitterFor(sess)

	sess.mu.Lock()
	in := sess.machine.Input()
	sess.mu.Unlock()

	res, err := submitter.Submit(r.Context(), in)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	effects := out.drain()

	sess.mu.Lock()
	sess.machine = intake.NewMachine(rt.steps)
	sess.mu.Unlock()

	locale := middleware.LocaleFromContext(r.Context())
	resp := map[string]any{
		"ok":        true,
		"result_id": res.ID,
		"redirect":  string(effects.Target),
	}
	if len(effects.Notifications) > 0 {
		resp["notification"] = renderNotification(locale, effects.Notifications[0])
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/dashboard
func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := rt.session(r)
	rec := &nav.Recorder{}
	guard := presentation.NewGuard(rec, rec, rt.log.With(zap.String("session_id", sess.ID)))

	if guard.Boot(r.Context(), rt.provider.ForSession(sess.ID)) == presentation.Present {
		writeJSON(w, http.StatusOK, map[string]any{
			"state":     presentation.Present,
			"dashboard": guard.Dashboard(),
		})
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	resp := map[string]any{
		"state":    presentation.AbsentRedirecting,
		"redirect": string(rec.Target),
	}
	if len(rec.Notifications) > 0 {
		n := renderNotification(locale, rec.Notifications[0])
		resp["warning"] = n.Message
		resp["notification"] = n
	}
	writeJSON(w, http.StatusNotFound, resp)
}

// DELETE /api/dashboard
func (rt *Router) handleClearDashboard(w http.ResponseWriter, r *http.Request) {
	sess := rt.session(r)
	if err := rt.provider.ForSession(sess.ID).Clear(r.Context()); err != nil {
		rt.writeError(w, r, services.NewStorageError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
