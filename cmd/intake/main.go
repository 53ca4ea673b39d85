// Command intake runs the assessment in a terminal: it walks the intake
// steps, submits to the classifier and shows the dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/config"
	"github.com/soaringjerry/SheHuMaan/internal/copyack"
	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/logging"
	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/presentation"
	"github.com/soaringjerry/SheHuMaan/internal/results"
	"github.com/soaringjerry/SheHuMaan/internal/services"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

func main() {
	root := flag.String("root", ".", "project root holding config/config.yaml")
	showDashboard := flag.Bool("dashboard", false, "show the last result instead of starting an intake")
	flag.Parse()

	loader, err := config.Load(*root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg := loader.Current()
	if cfg.Logging.Level == "debug" || cfg.Logging.Level == "info" {
		// keep the console readable
		cfg.Logging.Level = "warn"
	}
	log, _, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app, err := newApp(cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.ack.Close()

	if err := app.run(ctx, *showDashboard); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	term      *terminal
	steps     []intake.Step
	store     results.Store
	submitter *services.SubmissionService
	ack       *copyack.Controller
	log       *zap.Logger
	target    nav.View
}

func newApp(cfg *config.Config, log *zap.Logger, in io.Reader, out io.Writer) (*app, error) {
	steps, err := intake.LoadSteps(cfg.Intake.StepsFile)
	if err != nil {
		return nil, err
	}
	a := &app{
		term:  newTerminal(in, out),
		steps: steps,
		store: results.NewFileStore(filepath.Join(cfg.Store.Dir, "terminal.json")),
		ack:   copyack.New(copyack.ClipboardFunc(clipboard.WriteAll), nil),
		log:   log,
	}
	a.submitter = services.NewSubmissionService(
		services.NewClassifierClient(cfg.Classifier.URL, cfg.Classifier.APIKey, cfg.Classifier.Timeout, nil),
		a.store,
		nav.NavigatorFunc(func(v nav.View) { a.target = v }),
		nav.NotifierFunc(a.notify),
		log,
	)
	return a, nil
}

func (a *app) notify(n nav.Notification) {
	a.term.printf("\n%s\n", utils.T(utils.DefaultLocale, n.Key))
}

func (a *app) run(ctx context.Context, dashboardFirst bool) error {
	a.target = nav.Intake
	if dashboardFirst {
		a.target = nav.Results
	}
	for {
		switch a.target {
		case nav.Results:
			if a.dashboard(ctx) {
				return nil
			}
		default:
			if err := a.intake(ctx); err != nil {
				return err
			}
		}
	}
}

// intake runs the steps until a submission succeeds.
func (a *app) intake(ctx context.Context) error {
	m := intake.NewMachine(a.steps)
	for {
		err := a.term.runStep(m)
		if errors.Is(err, errBack) {
			m.Retreat()
			continue
		}
		if err != nil {
			return err
		}
		if m.Step() < intake.TotalSteps {
			m.Advance()
			continue
		}

		a.term.printf("\nAnalyzing...\n")
		_, err = a.submitter.Submit(ctx, m.Input())
		if err == nil {
			return nil
		}
		se, ok := services.AsServiceError(err)
		if !ok {
			return err
		}
		a.term.printf("\n%s\n", utils.T(utils.DefaultLocale, se.NotificationKey()))
		if se.Code != services.ErrorValidation {
			// retry from the last step
			continue
		}
		a.term.printf("Check: %v\n", se.Fields)
		if len(se.Fields) > 0 {
			for m.Step() > 1 && m.Step() > stepOf(a.steps, se.Fields[0]) {
				m.Retreat()
			}
		}
	}
}

// dashboard renders the stored result; false when the guard redirected.
func (a *app) dashboard(ctx context.Context) bool {
	g := presentation.NewGuard(
		nav.NavigatorFunc(func(v nav.View) { a.target = v }),
		nav.NotifierFunc(a.notify),
		a.log,
	)
	if g.Boot(ctx, a.store) != presentation.Present {
		return false
	}
	a.term.renderDashboard(g.Dashboard())
	a.term.copyLoop(g.Dashboard(), a.ack)
	return true
}
