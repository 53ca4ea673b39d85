package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/api"
	"github.com/soaringjerry/SheHuMaan/internal/config"
	"github.com/soaringjerry/SheHuMaan/internal/intake"
	"github.com/soaringjerry/SheHuMaan/internal/logging"
	"github.com/soaringjerry/SheHuMaan/internal/middleware"
	"github.com/soaringjerry/SheHuMaan/internal/services"
	"github.com/soaringjerry/SheHuMaan/internal/utils"
)

func main() {
	root := os.Getenv("SHEHUMAAN_ROOT")
	if root == "" {
		root = "."
	}

	loader, err := config.Load(root)
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	cfg := loader.Current()

	log, level, err := logging.New(cfg.Logging)
	if err != nil {
		_, _ = os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(root, loader, log, level); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

func run(root string, loader *config.Loader, log *zap.Logger, level zap.AtomicLevel) error {
	cfg := loader.Current()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cors := middleware.NewCORS(cfg.Server.CORSOrigins)
	loader.Watch(log, func(next *config.Config) {
		if err := logging.SetLevel(level, next.Logging.Level); err != nil {
			log.Warn("Ignoring logging level change", zap.Error(err))
		}
		cors.SetOrigins(next.Server.CORSOrigins)
	})

	steps, err := intake.LoadSteps(cfg.Intake.StepsFile)
	if err != nil {
		return err
	}
	if cfg.Session.Secret == "" {
		log.Warn("session.secret is empty; tokens will not survive a restart")
	}
	sessions, err := middleware.NewSessions(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return err
	}
	provider, err := openProvider(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	router := api.NewRouter(api.Options{
		Provider:   provider,
		Classifier: services.NewClassifierClient(cfg.Classifier.URL, cfg.Classifier.APIKey, cfg.Classifier.Timeout, nil),
		Sessions:   sessions,
		Steps:      steps,
		Log:        log,
	})
	go router.RunJanitor(ctx, cfg.Session.TTL, time.Minute)

	mux := http.NewServeMux()
	router.Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		locale := middleware.LocaleFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":         true,
			"name":       "SheHuMaan API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"commit":     cfg.Server.Commit,
			"build_time": cfg.Server.BuildTime,
		})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"commit":     cfg.Server.Commit,
			"build_time": cfg.Server.BuildTime,
		})
	})
	if cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Chain(mux, cors, log),
		ReadHeaderTimeout: 10 * time.Second,
		// submissions wait on the classifier
		WriteTimeout: cfg.Classifier.Timeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("SheHuMaan server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("config", loader.ConfigFile()),
			zap.String("root", root),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
