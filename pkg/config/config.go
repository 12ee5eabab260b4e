package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// Enabled toggles the HTTP server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// PublicURL is the public URL of the HTTP server.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled toggles the stats server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// FeedConfig is the configuration of the upstream campus events feed.
type FeedConfig struct {
	// URL is the events list endpoint, without query parameters.
	URL string `env:"URL" yaml:"url"`

	// Limit is the maximum number of records requested per fetch.
	Limit int `env:"LIMIT" yaml:"limit"`

	// IDField is the record key carrying the upstream event id.
	IDField string `env:"ID_FIELD" yaml:"id_field"`

	// Timeout bounds a single fetch.
	Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`
}

// CalendarConfig is the configuration of the external calendar provider.
type CalendarConfig struct {
	// CalendarID is the calendar entries are written to.
	CalendarID string `env:"CALENDAR_ID" yaml:"calendar_id"`

	// Endpoint overrides the Calendar API base URL. Leave empty for Google.
	Endpoint string `env:"ENDPOINT" yaml:"endpoint"`

	// UserinfoEndpoint overrides the OAuth2 userinfo API base URL.
	UserinfoEndpoint string `env:"USERINFO_ENDPOINT" yaml:"userinfo_endpoint"`

	// TokenURI is the token endpoint stored on new users.
	TokenURI string `env:"TOKEN_URI" yaml:"token_uri"`

	// ClientID is the OAuth client id stored on new users.
	ClientID string `env:"CLIENT_ID" yaml:"client_id"`

	// ClientSecret is the OAuth client secret stored on new users.
	ClientSecret string `env:"CLIENT_SECRET" yaml:"client_secret"`

	// Scopes are the OAuth scopes stored on new users.
	Scopes []string `env:"SCOPES" envSeparator:"," yaml:"scopes"`

	// Timeout bounds a single provider call, token refresh included.
	Timeout time.Duration `env:"TIMEOUT" yaml:"timeout"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	// Ingest is the cron spec of the feed ingestion job. Empty disables it.
	Ingest string `env:"INGEST" yaml:"ingest"`
}

// Config is the configuration for BearTracks.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Feed is the upstream feed configuration.
	Feed FeedConfig `envPrefix:"FEED_" yaml:"feed"`

	// Calendar is the calendar provider configuration.
	Calendar CalendarConfig `envPrefix:"CALENDAR_" yaml:"calendar"`

	// Jobs is the configuration for cron jobs.
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where BearTracks will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	if c == nil {
		return nil
	}

	return []string{
		fmt.Sprintf("BEARTRACKS_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("BEARTRACKS_NAME=%s", c.Name),
		fmt.Sprintf("BEARTRACKS_HTTP_ENABLED=%t", c.HTTP.Enabled),
		fmt.Sprintf("BEARTRACKS_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("BEARTRACKS_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("BEARTRACKS_STATS_ENABLED=%t", c.Stats.Enabled),
		fmt.Sprintf("BEARTRACKS_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("BEARTRACKS_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("BEARTRACKS_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("BEARTRACKS_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("BEARTRACKS_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("BEARTRACKS_FEED_URL=%s", c.Feed.URL),
		fmt.Sprintf("BEARTRACKS_FEED_LIMIT=%d", c.Feed.Limit),
		fmt.Sprintf("BEARTRACKS_FEED_ID_FIELD=%s", c.Feed.IDField),
		fmt.Sprintf("BEARTRACKS_FEED_TIMEOUT=%s", c.Feed.Timeout),
		fmt.Sprintf("BEARTRACKS_CALENDAR_CALENDAR_ID=%s", c.Calendar.CalendarID),
		fmt.Sprintf("BEARTRACKS_CALENDAR_TOKEN_URI=%s", c.Calendar.TokenURI),
		fmt.Sprintf("BEARTRACKS_CALENDAR_SCOPES=%s", strings.Join(c.Calendar.Scopes, ",")),
		fmt.Sprintf("BEARTRACKS_CALENDAR_TIMEOUT=%s", c.Calendar.Timeout),
		fmt.Sprintf("BEARTRACKS_JOBS_INGEST=%s", c.Jobs.Ingest),
	}
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("BEARTRACKS_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("BEARTRACKS_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "BEARTRACKS_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the BEARTRACKS_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("BEARTRACKS_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
// BEARTRACKS_CONFIG_LOCATION takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("BEARTRACKS_CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "BearTracks",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			Enabled:    true,
			ListenAddr: ":8080",
			PublicURL:  "http://localhost:8080",
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:8081",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "beartracks.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Feed: FeedConfig{
			URL:     "https://cornell.campusgroups.com/mobile_ws/v17/mobile_events_list",
			Limit:   40,
			IDField: "p0",
			Timeout: 10 * time.Second,
		},
		Calendar: CalendarConfig{
			CalendarID: "primary",
			TokenURI:   "https://oauth2.googleapis.com/token",
			Scopes:     []string{"https://www.googleapis.com/auth/calendar"},
			Timeout:    10 * time.Second,
		},
		Jobs: JobsConfig{
			Ingest: "@every 1h",
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	if c.Feed.URL != "" {
		if _, err := url.ParseRequestURI(c.Feed.URL); err != nil {
			return fmt.Errorf("invalid feed url: %w", err)
		}
	}

	if c.Feed.Limit < 0 {
		return fmt.Errorf("invalid feed limit: %d", c.Feed.Limit)
	}

	if c.Feed.Timeout < 0 || c.Calendar.Timeout < 0 {
		return errors.New("timeouts must not be negative")
	}

	return nil
}
