// Package config loads dotpipe settings from a TOML file and the
// environment.
//
// Settings are resolved in this order, later sources winning:
//
//  1. Built-in defaults (see Default)
//  2. The first config file found: the explicit path, then
//     $XDG_CONFIG_HOME/dotpipe/config.toml, then ./dotpipe.toml
//  3. DOTPIPE_* environment variables
//
// Example config.toml:
//
//	engine = "neato"
//	format = "svg"
//	timeout = "30s"
//
//	[cache]
//	ttl = "24h"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotpipe/pkg/backend"
	"github.com/matzehuels/dotpipe/pkg/cache"
	"github.com/matzehuels/dotpipe/pkg/errors"
	"github.com/matzehuels/dotpipe/pkg/history"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "DOTPIPE_"

// Config holds all dotpipe settings.
type Config struct {
	Binary          string   `toml:"binary"`
	UnflattenBinary string   `toml:"unflatten_binary"`
	Engine          string   `toml:"engine"`
	Format          string   `toml:"format"`
	Encoding        string   `toml:"encoding"`
	Timeout         Duration `toml:"timeout"` // zero means no timeout

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// CacheConfig controls output caching.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"` // empty means the user cache directory
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// ServerConfig controls "dotpipe serve".
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MaxBodySize int64  `toml:"max_body_size"`
	HistorySize int    `toml:"history_size"`
	MongoURI    string `toml:"mongo_uri"`
	Database    string `toml:"database"`
	Collection  string `toml:"collection"`
}

// Duration is a time.Duration written as a string such as "30s" or "1h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Binary:          backend.DotBinary,
		UnflattenBinary: backend.UnflattenBinary,
		Engine:          backend.DefaultEngine,
		Format:          backend.DefaultFormat,
		Encoding:        backend.DefaultEncoding,
		Cache: CacheConfig{
			TTL: Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxBodySize: 10 << 20,
			HistorySize: history.DefaultCapacity,
		},
	}
}

// Load resolves the configuration. An explicit path must exist; the
// default locations are skipped when absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := findFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		md, err := toml.DecodeFile(file, cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", file)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config key %q in %s", undecoded[0].String(), file)
		}
		cfg.Path = file
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "config file %s", explicit)
		}
		return explicit, nil
	}

	var candidates []string
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "dotpipe", "config.toml"))
	}
	candidates = append(candidates, "dotpipe.toml")

	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

// applyEnv overrides fields from DOTPIPE_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BINARY":           &c.Binary,
		"UNFLATTEN_BINARY": &c.UnflattenBinary,
		"ENGINE":           &c.Engine,
		"FORMAT":           &c.Format,
		"ENCODING":         &c.Encoding,
		"CACHE_DIR":        &c.Cache.Dir,
		"REDIS_URL":        &c.Cache.RedisURL,
		"ADDR":             &c.Server.Addr,
		"MONGO_URI":        &c.Server.MongoURI,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*Duration{
		"TIMEOUT":   &c.Timeout,
		"CACHE_TTL": &c.Cache.TTL,
	}
	for name, dst := range durations {
		if v, ok := lookup(EnvPrefix + name); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, name)
			}
		}
	}

	if v, ok := lookup(EnvPrefix + "NO_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%sNO_CACHE", EnvPrefix)
		}
		c.Cache.Disabled = b
	}
	return nil
}

// Validate checks values against the capability registry and normalizes
// engine and format to lower case.
func (c *Config) Validate() error {
	var err error
	if c.Engine, err = backend.CheckEngine(c.Engine); err != nil {
		return err
	}
	if c.Format, err = backend.CheckFormat(c.Format); err != nil {
		return err
	}
	if _, err := backend.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if strings.TrimSpace(c.Binary) == "" {
		return errors.New(errors.ErrCodeRequiredArgument, "binary is required")
	}
	if c.Timeout.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	if c.Server.MaxBodySize <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max_body_size must be positive")
	}
	return nil
}

// Defaults returns a defaults holder seeded with the configured engine and
// format.
func (c *Config) Defaults() (*backend.Defaults, error) {
	d := backend.NewDefaults()
	if _, err := d.SetEngine(c.Engine); err != nil {
		return nil, err
	}
	if _, err := d.SetFormat(c.Format); err != nil {
		return nil, err
	}
	return d, nil
}

// Client returns a backend client for the configured binaries.
func (c *Config) Client(logger *log.Logger) *backend.Client {
	client := backend.New(logger)
	if c.Binary != "" {
		client.Binary = c.Binary
	}
	if c.UnflattenBinary != "" {
		client.UnflattenBinary = c.UnflattenBinary
	}
	return client
}

// WithTimeout derives a context bounded by the configured timeout.
func (c *Config) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout.Duration <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout.Duration)
}

// OpenCache returns the configured cache: Redis when a URL is set,
// otherwise a file cache, or a no-op cache when caching is disabled.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.Cache.Disabled:
		return cache.NewNullCache(), nil
	case c.Cache.RedisURL != "":
		return cache.NewRedisCache(ctx, c.Cache.RedisURL, "dotpipe:")
	}

	dir := c.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			return nil, err
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// OpenHistory returns the run history store: MongoDB when a URI is set,
// otherwise an in-memory ring.
func (c *Config) OpenHistory(ctx context.Context) (history.Store, error) {
	if c.Server.MongoURI != "" {
		store, err := history.NewMongoStore(ctx, c.Server.MongoURI, c.Server.Database, c.Server.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return history.NewMemoryStore(c.Server.HistorySize), nil
}
