// Package config loads settings from defaults, config/config.yaml and
// SHEHUMAAN_* environment variables, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix namespaces environment overrides, e.g. SHEHUMAAN_SERVER_ADDR.
const EnvPrefix = "SHEHUMAAN"

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Store      StoreConfig      `mapstructure:"store"`
	Session    SessionConfig    `mapstructure:"session"`
	Intake     IntakeConfig     `mapstructure:"intake"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	StaticDir   string   `mapstructure:"static_dir"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	Commit      string   `mapstructure:"commit"`
	BuildTime   string   `mapstructure:"build_time"`
}

// ClassifierConfig points at the remote assessment classifier.
type ClassifierConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects where results live. Driver is one of memory, file,
// sqlite3 (cgo) or sqlite (pure Go).
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	Dir    string `mapstructure:"dir"`
}

// SessionConfig signs session tokens. An empty secret makes the server
// generate one per process.
type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// IntakeConfig overrides the built-in questionnaire layout.
type IntakeConfig struct {
	StepsFile string `mapstructure:"steps_file"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

var storeDrivers = map[string]bool{"memory": true, "file": true, "sqlite3": true, "sqlite": true}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Classifier.URL) == "" {
		errs = append(errs, errors.New("classifier.url is required"))
	}
	if c.Classifier.Timeout <= 0 {
		errs = append(errs, errors.New("classifier.timeout must be positive"))
	}
	if !storeDrivers[c.Store.Driver] {
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, file, sqlite3, sqlite", c.Store.Driver))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.commit", "dev")
	v.SetDefault("server.build_time", "")

	v.SetDefault("classifier.url", "http://localhost:8001/api/assessment/analyze")
	v.SetDefault("classifier.api_key", "")
	v.SetDefault("classifier.timeout", 30*time.Second)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "data/results.db")
	v.SetDefault("store.dir", "data/results")

	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("intake.steps_file", "")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // MB
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)     // days
	v.SetDefault("logging.compress", true)
}

// Loader owns the viper instance and the current decoded Config.
type Loader struct {
	v *viper.Viper

	mu  sync.RWMutex
	cur *Config
}

// Load reads <projectRoot>/config/config.yaml if present, then applies
// environment overrides. A missing file is not an error.
func Load(projectRoot string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Loader{v: v, cur: cfg}, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Server.CORSOrigins = splitOrigins(cfg.Server.CORSOrigins)
	return &cfg, nil
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Current returns the latest valid configuration.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// ConfigFile is the file in use, or "" when running on defaults.
func (l *Loader) ConfigFile() string { return l.v.ConfigFileUsed() }

// Watch reloads on file changes. An invalid edit is logged and ignored;
// onChange sees only valid configurations.
func (l *Loader) Watch(log *zap.Logger, onChange func(*Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		cfg, err := decode(l.v)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		l.mu.Lock()
		l.cur = cfg
		l.mu.Unlock()
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}
