package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/soaringjerry/SheHuMaan/internal/config"
	dbstore "github.com/soaringjerry/SheHuMaan/internal/db"
	"github.com/soaringjerry/SheHuMaan/internal/results"
)

// openProvider returns the result provider selected by store.driver.
func openProvider(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (results.Provider, error) {
	switch cfg.Driver {
	case "memory":
		return results.NewMemoryProvider(), nil
	case "file":
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create result dir: %w", err)
		}
		return results.NewFileProvider(cfg.Dir), nil
	case dbstore.DriverCgo, dbstore.DriverPureGo:
		fresh, err := isFresh(cfg.Path)
		if err != nil {
			return nil, err
		}
		st, err := dbstore.Open(ctx, cfg.Driver, cfg.Path, "", log)
		if err != nil {
			return nil, err
		}
		if fresh {
			if err := importFileResults(ctx, cfg.Dir, st, log); err != nil {
				_ = st.Close()
				return nil, fmt.Errorf("import file results: %w", err)
			}
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func isFresh(sqlitePath string) (bool, error) {
	if _, err := os.Stat(sqlitePath); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("check sqlite file: %w", err)
	}
	return true, nil
}

// importFileResults copies records written by the file store into a newly
// created database, so switching drivers keeps existing dashboards.
// Unreadable records are skipped.
func importFileResults(ctx context.Context, dir string, dst results.Provider, log *zap.Logger) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read result dir: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		r, err := results.NewFileStore(filepath.Join(dir, name)).Load(ctx)
		if err != nil {
			log.Warn("Skipping unreadable result file", zap.String("file", name), zap.Error(err))
			continue
		}
		if err := dst.ForSession(strings.TrimSuffix(name, ".json")).Save(ctx, r); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}
		imported++
	}
	if imported > 0 {
		log.Info("Imported file results into sqlite", zap.Int("count", imported), zap.String("dir", dir))
	}
	return nil
}
