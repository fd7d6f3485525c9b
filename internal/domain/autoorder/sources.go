package autoorder

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"stockroom/pkg/logger"
)

// Lookuper is the in-memory global settings object.
type Lookuper interface {
	Lookup(key string) (any, bool)
}

// SettingsSource reads the interval from already loaded settings.
type SettingsSource struct {
	settings Lookuper
}

// NewSettingsSource wraps a settings snapshot.
func NewSettingsSource(settings Lookuper) *SettingsSource {
	return &SettingsSource{settings: settings}
}

func (s *SettingsSource) Name() string { return "settings" }

func (s *SettingsSource) MinIntervalMinutes(_ context.Context) (int, bool) {
	if s.settings == nil {
		return 0, false
	}
	v, ok := s.settings.Lookup(SettingsKey)
	if !ok {
		return 0, false
	}
	return toMinutes(v)
}

// fileConfig is the layout of the auto-order config file.
type fileConfig struct {
	MinIntervalMinutes *int `yaml:"min_interval_minutes"`
}

// FileSource reads min_interval_minutes from a YAML file.
type FileSource struct {
	path string
}

// DefaultConfigFile is the deployment-relative path of the auto-order config.
const DefaultConfigFile = "config/autoorders.yaml"

// NewFileSource creates a file source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) MinIntervalMinutes(ctx context.Context) (int, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn(ctx, "auto-order config file unreadable", "path", s.path, "error", err)
		}
		return 0, false
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		logger.Warn(ctx, "auto-order config file malformed", "path", s.path, "error", err)
		return 0, false
	}
	if cfg.MinIntervalMinutes == nil {
		return 0, false
	}
	return *cfg.MinIntervalMinutes, true
}

// envConfig maps AUTOORDERS_MIN_INTERVAL_MINUTES.
type envConfig struct {
	MinIntervalMinutes *int `envconfig:"MIN_INTERVAL_MINUTES"`
}

// EnvSource reads AUTOORDERS_MIN_INTERVAL_MINUTES.
type EnvSource struct{}

func (EnvSource) Name() string { return "env" }

func (EnvSource) MinIntervalMinutes(ctx context.Context) (int, bool) {
	var cfg envConfig
	if err := envconfig.Process("AUTOORDERS", &cfg); err != nil {
		logger.Warn(ctx, "auto-order interval env var ignored", "error", err)
		return 0, false
	}
	if cfg.MinIntervalMinutes == nil {
		return 0, false
	}
	return *cfg.MinIntervalMinutes, true
}

// DefaultSources returns the standard precedence: settings, file, env.
func DefaultSources(settings Lookuper, configFile string) []Source {
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	return []Source{
		NewSettingsSource(settings),
		NewFileSource(configFile),
		EnvSource{},
	}
}

func toMinutes(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
