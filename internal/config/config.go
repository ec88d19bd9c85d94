// Package config assembles the grading backend's configuration by
// layering flags over environment variables over defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything a CLI surface needs to connect to Postgres
// and to drive its own process loop.
type Config struct {
	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDatabase string

	// ListenAddr is the bind address:port for the notification listener.
	ListenAddr string

	// PollInterval is how long queue-depth sleeps between reports.
	PollInterval time.Duration

	// BuildRoot is the directory worker pipelines clone projects into.
	BuildRoot string

	// Verbose enables debug-level logging.
	Verbose bool
}

// DefaultConfig holds the values used when neither an environment
// variable nor a flag supplies one.
var DefaultConfig = Config{
	PGHost:       "localhost",
	PGPort:       5432,
	PGDatabase:   "postgres",
	ListenAddr:   ":1337",
	PollInterval: 10 * time.Second,
	BuildRoot:    "/tmp/gradr-builds",
	Verbose:      false,
}

// ConnectionString renders the Postgres connection parameters pgx
// expects, in key=value form.
func (c Config) ConnectionString() string {
	s := "host=" + c.PGHost + " port=" + strconv.Itoa(c.PGPort) + " dbname=" + c.PGDatabase
	if c.PGUser != "" {
		s += " user=" + c.PGUser
	}
	if c.PGPassword != "" {
		s += " password=" + c.PGPassword
	}
	return s
}

// LoadConfig layers PG* environment variables over DefaultConfig.
// Priority: flags (applied afterward via ApplyFlagsToConfig) override
// env vars override defaults.
func LoadConfig() *Config {
	cfg := DefaultConfig

	if host := os.Getenv("PGHOST"); host != "" {
		cfg.PGHost = host
	}
	if portStr := os.Getenv("PGPORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.PGPort = port
		}
	}
	if user := os.Getenv("PGUSER"); user != "" {
		cfg.PGUser = user
	}
	if password := os.Getenv("PGPASSWORD"); password != "" {
		cfg.PGPassword = password
	}
	if database := os.Getenv("PGDATABASE"); database != "" {
		cfg.PGDatabase = database
	}

	return &cfg
}

// ApplyFlagsToConfig overlays non-zero-value CLI flags onto cfg, the
// final and highest-priority layer.
func ApplyFlagsToConfig(c *Config, host string, port int, user, password, database, listenAddr, buildRoot string,
	pollInterval time.Duration, verbose bool) {
	if host != "" {
		c.PGHost = host
	}
	if port != 0 {
		c.PGPort = port
	}
	if user != "" {
		c.PGUser = user
	}
	if password != "" {
		c.PGPassword = password
	}
	if database != "" {
		c.PGDatabase = database
	}
	if listenAddr != "" {
		c.ListenAddr = listenAddr
	}
	if buildRoot != "" {
		c.BuildRoot = buildRoot
	}
	if pollInterval != 0 {
		c.PollInterval = pollInterval
	}
	if verbose {
		c.Verbose = verbose
	}
}
