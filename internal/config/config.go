package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is used for the config directory.
const AppName = "lazyrope"

// Config holds every tunable of the application.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	Data   DataConfig   `yaml:"data"`
	Log    LogConfig    `yaml:"log"`
	Parse  ParseConfig  `yaml:"parse"`
	UI     UIConfig     `yaml:"ui"`
}

// SerialConfig controls the connection and reader loop.
type SerialConfig struct {
	BaudRate     int           `yaml:"baud_rate"`
	BaudRates    []int         `yaml:"baud_rates"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	IdlePoll     time.Duration `yaml:"idle_poll"`
	ErrorBackoff time.Duration `yaml:"error_backoff"`
	StopTimeout  time.Duration `yaml:"stop_timeout"`
}

// DataConfig controls where session data goes.
type DataConfig struct {
	Dir     string `yaml:"dir"`
	Archive bool   `yaml:"archive"`
}

// LogConfig controls the diagnostic log file.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ParseConfig controls line validation.
type ParseConfig struct {
	Strict bool `yaml:"strict"`
}

// UIConfig controls presentation.
type UIConfig struct {
	Theme string `yaml:"theme"`
}

// Themes lists the accepted ui.theme values.
var Themes = []string{"default", "mono"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Serial: SerialConfig{
			BaudRate:     115200,
			BaudRates:    []int{9600, 115200, 230400},
			ReadTimeout:  50 * time.Millisecond,
			IdlePoll:     20 * time.Millisecond,
			ErrorBackoff: 100 * time.Millisecond,
			StopTimeout:  time.Second,
		},
		Data: DataConfig{
			Dir:     "JumpRopeData",
			Archive: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "lazyrope.log",
		},
		UI: UIConfig{Theme: "default"},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the app cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Serial.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate))
	}
	for _, b := range c.Serial.BaudRates {
		if b <= 0 {
			errs = append(errs, fmt.Errorf("serial.baud_rates must be positive, got %d", b))
		}
	}
	durations := map[string]time.Duration{
		"serial.read_timeout":  c.Serial.ReadTimeout,
		"serial.idle_poll":     c.Serial.IdlePoll,
		"serial.error_backoff": c.Serial.ErrorBackoff,
		"serial.stop_timeout":  c.Serial.StopTimeout,
	}
	for _, key := range []string{"serial.read_timeout", "serial.idle_poll", "serial.error_backoff", "serial.stop_timeout"} {
		if durations[key] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, durations[key]))
		}
	}
	if c.Data.Dir == "" {
		errs = append(errs, errors.New("data.dir must not be empty"))
	}
	if !slices.Contains(Themes, c.UI.Theme) {
		errs = append(errs, fmt.Errorf("ui.theme must be one of %v, got %q", Themes, c.UI.Theme))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// BaudChoices returns the selectable baud rates, always including BaudRate.
func (c Config) BaudChoices() []int {
	choices := append([]int(nil), c.Serial.BaudRates...)
	for _, b := range choices {
		if b == c.Serial.BaudRate {
			return choices
		}
	}
	return append(choices, c.Serial.BaudRate)
}

// LogPath returns the log file location inside the data directory.
func (c Config) LogPath() string {
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.Data.Dir, c.Log.File)
}
