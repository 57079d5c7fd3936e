// Package config loads the dailyquote settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1set/dailyquote"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DAILYQUOTE_"
	// DirName is the folder under the user config dir holding config.yaml.
	DirName = "dailyquote"
	// FileName is the config file name.
	FileName = "config.yaml"
)

// Config is the full CLI configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	Timeout   time.Duration   `yaml:"timeout"`
	Endpoints EndpointsConfig `yaml:"endpoints"`
	Scheme    SchemeConfig    `yaml:"scheme"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Device    DeviceConfig    `yaml:"device"`
}

// EndpointsConfig overrides the public endpoints.
type EndpointsConfig struct {
	Quote       string `yaml:"quote"`
	RandomColor string `yaml:"random_color"`
	Scheme      string `yaml:"scheme"`
}

// SchemeConfig tunes the colour scheme request.
type SchemeConfig struct {
	Mode  string `yaml:"mode"`
	Count int    `yaml:"count"`
}

// TerminalConfig controls the terminal card.
type TerminalConfig struct {
	Width int `yaml:"width"`
}

// DeviceConfig holds the optional Quote/0 target.
type DeviceConfig struct {
	Token    string `yaml:"token"`
	DeviceID string `yaml:"device_id"`
	BaseURL  string `yaml:"base_url"`
	Mode     string `yaml:"mode"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataDir:  dailyquote.DefaultDir(),
		LogLevel: "warn",
		Timeout:  30 * time.Second,
		Endpoints: EndpointsConfig{
			Quote:       dailyquote.DefaultQuoteURL,
			RandomColor: dailyquote.DefaultRandomColorURL,
			Scheme:      dailyquote.DefaultSchemeURL,
		},
		Scheme: SchemeConfig{
			Mode:  dailyquote.DefaultSchemeMode,
			Count: dailyquote.DefaultSchemeCount,
		},
		Terminal: TerminalConfig{Width: dailyquote.DefaultTerminalWidth},
		Device: DeviceConfig{
			BaseURL: dailyquote.DefaultDeviceBaseURL,
			Mode:    string(dailyquote.PushText),
		},
	}
}

// DefaultPath is <user config dir>/dailyquote/config.yaml.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, DirName, FileName)
}

// Load applies, in order: defaults, the YAML file at path (DefaultPath when empty; a missing
// default file is fine, a missing explicit file is not), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, &Error{Path: path, Err: err}
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, &Error{Path: path, Err: err}
		}
	}
	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from DAILYQUOTE_* variables. The device token and serial also
// honour QUOTE0_TOKEN and QUOTE0_DEVICE.
func applyEnv(cfg *Config, getenv func(string) string) error {
	str := map[string]*string{
		"DATA_DIR":         &cfg.DataDir,
		"LOG_LEVEL":        &cfg.LogLevel,
		"QUOTE_URL":        &cfg.Endpoints.Quote,
		"RANDOM_COLOR_URL": &cfg.Endpoints.RandomColor,
		"SCHEME_URL":       &cfg.Endpoints.Scheme,
		"SCHEME_MODE":      &cfg.Scheme.Mode,
		"DEVICE_BASE_URL":  &cfg.Device.BaseURL,
		"DEVICE_MODE":      &cfg.Device.Mode,
	}
	for k, dst := range str {
		if v := strings.TrimSpace(getenv(EnvPrefix + k)); v != "" {
			*dst = v
		}
	}
	if v := getenv("QUOTE0_TOKEN"); v != "" {
		cfg.Device.Token = v
	}
	if v := getenv("QUOTE0_DEVICE"); v != "" {
		cfg.Device.DeviceID = v
	}
	if v := getenv(EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: "timeout", Err: err}
		}
		cfg.Timeout = d
	}
	if v := getenv(EnvPrefix + "TERMINAL_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "terminal.width", Err: err}
		}
		cfg.Terminal.Width = n
	}
	return nil
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &Error{Field: "log_level", Err: err}
	}
	if c.Timeout <= 0 {
		return &Error{Field: "timeout", Err: errors.New("must be positive")}
	}
	if c.Scheme.Count < dailyquote.DefaultSchemeCount {
		return &Error{Field: "scheme.count", Err: fmt.Errorf("must be at least %d", dailyquote.DefaultSchemeCount)}
	}
	switch dailyquote.PushMode(c.Device.Mode) {
	case dailyquote.PushText, dailyquote.PushImage:
	default:
		return &Error{Field: "device.mode", Err: fmt.Errorf("unknown mode %q", c.Device.Mode)}
	}
	return nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return l, nil
}

// Error reports a configuration problem tied to a file or a field.
type Error struct {
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "":
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	case e.Field != "":
		return fmt.Sprintf("config field %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("config: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }
