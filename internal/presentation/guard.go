package presentation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// GuardState is the dashboard entry state.
type GuardState string

const (
	Loading           GuardState = "loading"
	Present           GuardState = "present"
	AbsentRedirecting GuardState = "absent_redirecting"
)

// MissingResultKey is the notification shown when the dashboard has nothing
// to render.
const MissingResultKey = "result.missing"

// Guard decides, once, whether the dashboard can render. Loading moves to
// Present or AbsentRedirecting; both are terminal.
type Guard struct {
	state     GuardState
	dashboard *Dashboard
	navigator nav.Navigator
	notifier  nav.Notifier
	log       *zap.Logger
}

func NewGuard(navigator nav.Navigator, notifier nav.Notifier, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{state: Loading, navigator: navigator, notifier: notifier, log: log}
}

// State returns the current state.
func (g *Guard) State() GuardState { return g.state }

// Dashboard returns the built dashboard; nil unless Present.
func (g *Guard) Dashboard() *Dashboard { return g.dashboard }

// Boot loads the stored result and settles the guard. Calls after the first
// return the settled state without side effects.
func (g *Guard) Boot(ctx context.Context, store results.Store) GuardState {
	if g.state != Loading {
		return g.state
	}
	r, err := store.Load(ctx)
	if err != nil {
		if !errors.Is(err, results.ErrAbsent) {
			g.log.Error("Failed to load assessment result", zap.Error(err))
		} else if errors.Is(err, results.ErrMalformed) {
			g.log.Warn("Discarding malformed assessment result", zap.Error(err))
		}
		return g.redirect()
	}
	d, err := BuildDashboard(r)
	if err != nil {
		g.log.Warn("Discarding unrenderable assessment result", zap.Error(err))
		return g.redirect()
	}
	g.dashboard = d
	g.state = Present
	return g.state
}

func (g *Guard) redirect() GuardState {
	g.state = AbsentRedirecting
	if g.notifier != nil {
		g.notifier.Notify(nav.Notification{Level: nav.LevelWarning, Key: MissingResultKey})
	}
	if g.navigator != nil {
		g.navigator.Navigate(nav.Intake)
	}
	return g.state
}
