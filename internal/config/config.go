// Package config loads process configuration from STOCKROOM_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"stockroom/internal/domain/capture"
	"stockroom/internal/infrastructure/storage/sqlstore"
)

// Prefix is the environment prefix for all settings.
const Prefix = "STOCKROOM"

type Database struct {
	Driver          string        `default:"pgx" envconfig:"DRIVER"`
	DSN             string        `required:"true" envconfig:"DSN"`
	MaxOpenConns    int           `default:"25" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `default:"5" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `default:"1h" envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `default:"30m" envconfig:"CONN_MAX_IDLE_TIME"`
}

// Store converts the section to a sqlstore.Config.
func (d Database) Store() sqlstore.Config {
	return sqlstore.Config{
		Driver:          d.Driver,
		DSN:             d.DSN,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}
}

type Log struct {
	Level       string `default:"info" envconfig:"LEVEL"`
	Development bool   `default:"false" envconfig:"DEVELOPMENT"`
}

type AutoOrders struct {
	ConfigFile string `default:"config/autoorders.yaml" envconfig:"CONFIG_FILE"`

	// Location is the zone for stored timestamps without an offset.
	Location string `default:"UTC" envconfig:"LOCATION"`
}

// TimeLocation loads Location.
func (a AutoOrders) TimeLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Location)
	if err != nil {
		return nil, fmt.Errorf("auto-order location %q: %w", a.Location, err)
	}
	return loc, nil
}

type Scheduler struct {
	Tick      time.Duration `default:"1m" envconfig:"TICK"`
	BatchSize int           `default:"100" envconfig:"BATCH_SIZE"`
}

type Capture struct {
	ScanPolicy string `default:"reopen_on_scan" envconfig:"SCAN_POLICY"`
}

// Policy parses ScanPolicy.
func (c Capture) Policy() (capture.ScanPolicy, error) {
	return capture.ParseScanPolicy(c.ScanPolicy)
}

type Metrics struct {
	Addr string `default:":2112" envconfig:"ADDR"`
}

type Config struct {
	Database   Database
	Log        Log
	AutoOrders AutoOrders
	Scheduler  Scheduler
	Capture    Capture
	Metrics    Metrics
}

// Load reads configuration with the STOCKROOM prefix.
func Load() (Config, error) {
	return LoadWithPrefix(Prefix)
}

// LoadWithPrefix reads configuration with a custom prefix.
func LoadWithPrefix(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	if _, err := c.Capture.Policy(); err != nil {
		return Config{}, err
	}
	return c, nil
}
