// Package config loads hookwatch settings from a YAML file.
//
// Every field has a default, so a missing file is not an error. Unknown keys
// are rejected so typos surface instead of being silently ignored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // display.timezone must resolve on hosts without a zoneinfo database

	"gopkg.in/yaml.v3"

	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/pager"
)

// TokenEnv names the environment variable that overrides gateway.token.
const TokenEnv = "HOOKWATCH_TOKEN"

// Config is the full settings tree.
type Config struct {
	Gateway  Gateway `yaml:"gateway"`
	Store    Store   `yaml:"store"`
	Display  Display `yaml:"display"`
	Metrics  Metrics `yaml:"metrics"`
	LogLevel string  `yaml:"log_level"`
}

// Gateway locates the messaging gateway.
type Gateway struct {
	// URL is the REST base, e.g. http://localhost:3000.
	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	// PushURL is the WebSocket endpoint. Derived from URL when empty.
	PushURL string `yaml:"push_url,omitempty"`
}

// Store selects the persistence backend and its keys.
type Store struct {
	DSN         string `yaml:"dsn"`
	HistoryKey  string `yaml:"history_key"`
	PageSizeKey string `yaml:"page_size_key"`
}

// Display controls how timestamps and the event log are shown.
type Display struct {
	Locale     string `yaml:"locale"`
	Timezone   string `yaml:"timezone"`
	EventLimit int    `yaml:"event_limit"`
}

// Metrics configures the Prometheus endpoint. Empty Addr disables it.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Gateway: Gateway{URL: "http://localhost:3000"},
		Store: Store{
			DSN:         "sqlite://hookwatch.db",
			HistoryKey:  history.DefaultKey,
			PageSizeKey: pager.DefaultKey,
		},
		Display: Display{
			Locale:     "id-ID",
			Timezone:   "Local",
			EventLimit: 50,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path, or a path that does not
// exist when optional is true, yields the defaults.
// TokenEnv, when set, replaces gateway.token.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && optional:
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := decode(data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	if token, ok := os.LookupEnv(TokenEnv); ok {
		cfg.Gateway.Token = token
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Validate checks field values.
func (c Config) Validate() error {
	u, err := url.Parse(c.Gateway.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gateway.url must be an http(s) URL, got %q", c.Gateway.URL)
	}
	if c.Gateway.PushURL != "" {
		p, err := url.Parse(c.Gateway.PushURL)
		if err != nil || p.Host == "" {
			return fmt.Errorf("gateway.push_url is not a URL: %q", c.Gateway.PushURL)
		}
	}
	if c.Store.HistoryKey == "" || c.Store.PageSizeKey == "" {
		return fmt.Errorf("store keys must not be empty")
	}
	if c.Display.EventLimit < 1 {
		return fmt.Errorf("display.event_limit must be positive, got %d", c.Display.EventLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// Location resolves display.timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return nil, fmt.Errorf("display.timezone: %w", err)
	}
	return loc, nil
}

// ResolvedPushURL returns gateway.push_url, or gateway.url with a ws scheme
// and a /ws path.
func (c Config) ResolvedPushURL() string {
	if c.Gateway.PushURL != "" {
		return c.Gateway.PushURL
	}
	u, err := url.Parse(c.Gateway.URL)
	if err != nil {
		return ""
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
