// Package config loads the YAML configuration shared by the CLI and the
// HTTP server. A missing path yields Default().
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gorevolve/evaluate"
	"github.com/njchilds90/gorevolve/integrate"
	"github.com/njchilds90/gorevolve/scan"
	"github.com/njchilds90/gorevolve/validate"
)

// MaxFileSize bounds the config file read by Load.
const MaxFileSize = 1 << 20

type Config struct {
	Engine  Engine  `yaml:"engine"`
	Scan    Scan    `yaml:"scan"`
	Solid   Solid   `yaml:"solid"`
	Locale  string  `yaml:"locale"`
	History History `yaml:"history"`
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
}

type Engine struct {
	IntegrationSteps int    `yaml:"integration_steps"`
	IntegrationRule  string `yaml:"integration_rule"`
	Evaluator        string `yaml:"evaluator"`
}

type Scan struct {
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Step      float64 `yaml:"step"`
	Tolerance float64 `yaml:"tolerance"`
	Mode      string  `yaml:"mode"`
}

type Solid struct {
	Steps int `yaml:"steps"`
}

type History struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
	MaxItems int    `yaml:"max_items"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			IntegrationSteps: integrate.DefaultSteps,
			IntegrationRule:  integrate.LeftRiemann.String(),
			Evaluator:        evaluate.BackendTree,
		},
		Scan: Scan{
			Min:       scan.DefaultMin,
			Max:       scan.DefaultMax,
			Step:      scan.DefaultStep,
			Tolerance: scan.DefaultTolerance,
			Mode:      scan.Threshold.String(),
		},
		Solid:   Solid{Steps: 50},
		Locale:  validate.LocaleEN,
		History: History{InMemory: true, MaxItems: 50},
		Server:  Server{Addr: ":8080"},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, validates the result and logs it.
// An empty path returns the defaults.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if len(data) > MaxFileSize {
			return Config{}, fmt.Errorf("config: %s exceeds %d bytes", path, MaxFileSize)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if logger != nil {
		logger.Info("config loaded",
			"path", path,
			"integration_steps", cfg.Engine.IntegrationSteps,
			"integration_rule", cfg.Engine.IntegrationRule,
			"evaluator", cfg.Engine.Evaluator,
			"scan_mode", cfg.Scan.Mode,
			"solid_steps", cfg.Solid.Steps,
			"locale", cfg.Locale,
			"history_in_memory", cfg.History.InMemory)
	}
	return cfg, nil
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.IntegrationSteps < 1 {
		errs = append(errs, fmt.Errorf("engine.integration_steps must be positive, got %d", c.Engine.IntegrationSteps))
	}
	if _, err := integrate.ParseRule(c.Engine.IntegrationRule); err != nil {
		errs = append(errs, fmt.Errorf("engine.integration_rule: %w", err))
	}
	if _, err := evaluate.New(c.Engine.Evaluator); err != nil {
		errs = append(errs, fmt.Errorf("engine.evaluator: %w", err))
	}
	if c.Scan.Min >= c.Scan.Max {
		errs = append(errs, fmt.Errorf("scan.min (%g) must be below scan.max (%g)", c.Scan.Min, c.Scan.Max))
	}
	if c.Scan.Step <= 0 {
		errs = append(errs, fmt.Errorf("scan.step must be positive, got %g", c.Scan.Step))
	}
	if c.Scan.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("scan.tolerance must be positive, got %g", c.Scan.Tolerance))
	}
	if _, err := scan.ParseMode(c.Scan.Mode); err != nil {
		errs = append(errs, fmt.Errorf("scan.mode: %w", err))
	}
	if c.Solid.Steps < 2 {
		errs = append(errs, fmt.Errorf("solid.steps must be at least 2, got %d", c.Solid.Steps))
	}
	if !validate.SupportedLocale(c.Locale) {
		errs = append(errs, fmt.Errorf("locale %q is not supported", c.Locale))
	}
	if c.History.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("history.max_items must be positive, got %d", c.History.MaxItems))
	}
	if !c.History.InMemory && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required unless history.in_memory is set"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the slog logger described by l.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
