package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/config"
	"github.com/njchilds90/gorevolve/history"
	"github.com/njchilds90/gorevolve/validate"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	jsonOut    bool
	locale     string
	evaluator  string
	rule       string
	steps      int
	historyDir string

	cfg    config.Config
	logger *slog.Logger
	engine *gorevolve.Engine
	store  *history.Store
}

// localizedError shows a validation failure in the configured language.
type localizedError struct {
	msg string
	err error
}

func (e *localizedError) Error() string { return e.msg }
func (e *localizedError) Unwrap() error { return e.err }

func (a *app) userErr(err error) error {
	var ve *validate.Error
	if errors.As(err, &ve) {
		msg := ve.Message(a.cfg.Locale)
		if ve.Detail != "" {
			msg += ": " + ve.Detail
		}
		return &localizedError{msg: msg, err: err}
	}
	return err
}

// newRootCmd returns the command tree and a func that releases what the
// executed command opened.
func newRootCmd() (*cobra.Command, func() error) {
	a := &app{}
	root := &cobra.Command{
		Use:           "revolve",
		Short:         "Arc length, surface area and volume of solids of revolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.BoolVar(&a.jsonOut, "json", false, "print JSON instead of styled text")
	f.StringVar(&a.locale, "locale", "", "message language (en, id)")
	f.StringVar(&a.evaluator, "evaluator", "", "evaluation backend (tree, govaluate)")
	f.StringVar(&a.rule, "rule", "", "integration rule (left_riemann, trapezoid)")
	f.IntVar(&a.steps, "steps", 0, "integration steps")
	f.StringVar(&a.historyDir, "history", "", "persist history in this directory")

	root.AddCommand(
		computeCmd(a),
		deriveCmd(a),
		scanCmd(a),
		solidCmd(a),
		convertCmd(a),
		presetsCmd(a),
		historyCmd(a),
		batchCmd(a),
	)
	return root, a.close
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// setup loads the config, applies flag overrides and builds the engine.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, nil)
	if err != nil {
		return err
	}
	if a.locale != "" {
		cfg.Locale = a.locale
	}
	if a.evaluator != "" {
		cfg.Engine.Evaluator = a.evaluator
	}
	if a.rule != "" {
		cfg.Engine.IntegrationRule = a.rule
	}
	if a.steps != 0 {
		cfg.Engine.IntegrationSteps = a.steps
	}
	if a.historyDir != "" {
		cfg.History.Path = a.historyDir
		cfg.History.InMemory = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger

	a.store, err = history.Open(history.Options{
		Path:     cfg.History.Path,
		InMemory: cfg.History.InMemory,
		MaxItems: cfg.History.MaxItems,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	a.engine, err = gorevolve.New(cfg, gorevolve.WithLogger(logger), gorevolve.WithRecorder(a.store))
	if err != nil {
		a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

// print writes v as indented JSON when --json is set, otherwise text.
func (a *app) print(w io.Writer, v interface{}, text string) error {
	if a.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
