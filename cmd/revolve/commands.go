package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/validate"
)

func computeCmd(a *app) *cobra.Command {
	var lower, upper string
	cmd := &cobra.Command{
		Use:   "compute FUNC",
		Short: "Arc length, surface area and volume of f(x) rotated about the x-axis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, r := validate.ParseBounds(lower, upper)
			if !r.Valid {
				return a.userErr(r.AsError())
			}
			res, err := a.engine.ComputeAllContext(cmd.Context(), args[0], iv.Lower, iv.Upper)
			if err != nil {
				return a.userErr(err)
			}
			return a.print(cmd.OutOrStdout(), res, renderResult(res))
		},
	}
	cmd.Flags().StringVar(&lower, "lower", "0", "lower bound a")
	cmd.Flags().StringVar(&upper, "upper", "1", "upper bound b")
	return cmd
}

func deriveCmd(a *app) *cobra.Command {
	var second bool
	cmd := &cobra.Command{
		Use:   "derive FUNC",
		Short: "Symbolic derivative with respect to x",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			derive := a.engine.Derive
			if second {
				derive = a.engine.Derive2
			}
			d, err := derive(args[0])
			if err != nil {
				return a.userErr(err)
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"derivative": d}, d)
		},
	}
	cmd.Flags().BoolVar(&second, "second", false, "second derivative")
	return cmd
}

func scanCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "scan FUNC",
		Short: "Critical and inflection points over the configured domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if at != "" {
				x, err := strconv.ParseFloat(at, 64)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				c, err := a.engine.Concavity(args[0], x)
				if err != nil {
					return a.userErr(err)
				}
				m, err := a.engine.Monotonicity(args[0], x)
				if err != nil {
					return a.userErr(err)
				}
				out := map[string]string{"concavity": string(c), "monotonicity": string(m)}
				return a.print(cmd.OutOrStdout(), out, fmt.Sprintf("at x=%g: concave %s, %s", x, c, m))
			}
			ps, err := a.engine.Points(args[0])
			if err != nil {
				return a.userErr(err)
			}
			return a.print(cmd.OutOrStdout(), ps, renderPoints(args[0], ps))
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "classify concavity and monotonicity at this x instead")
	return cmd
}

func solidCmd(a *app) *cobra.Command {
	var lower, upper string
	var steps int
	cmd := &cobra.Command{
		Use:   "solid FUNC",
		Short: "Sample the surface of revolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, r := validate.ParseBounds(lower, upper)
			if !r.Valid {
				return a.userErr(r.AsError())
			}
			p, err := a.engine.Solid(args[0], iv.Lower, iv.Upper, steps)
			if err != nil {
				return a.userErr(err)
			}
			text := fmt.Sprintf("%d x %d points, max radius %.5f", len(p.X), len(p.Theta), p.MaxRadius())
			return a.print(cmd.OutOrStdout(), p, text)
		},
	}
	cmd.Flags().StringVar(&lower, "lower", "0", "lower bound a")
	cmd.Flags().StringVar(&upper, "upper", "1", "upper bound b")
	cmd.Flags().IntVar(&steps, "points", 0, "points per axis (default solid.steps)")
	return cmd
}

func convertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert KIND VALUE FROM TO",
		Short: "Convert a length, area or volume between units",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("value: %w", err)
			}
			kind := gorevolve.UnitKind(args[0])
			out, err := gorevolve.ConvertUnits(kind, v, args[2], args[3])
			if err != nil {
				if units := gorevolve.Units(kind); len(units) > 0 {
					return fmt.Errorf("%w (known: %s)", err, strings.Join(units, ", "))
				}
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]float64{"value": out}, fmt.Sprintf("%g %s", out, args[3]))
		},
	}
}

func presetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the example functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := gorevolve.Presets()
			lines := make([]string, len(ps))
			for i, p := range ps {
				lines[i] = row(p.Name, p.Function)
			}
			return a.print(cmd.OutOrStdout(), ps, strings.Join(lines, "\n"))
		},
	}
}

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear stored computations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored computations, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				recs, err := a.store.List(cmd.Context())
				if err != nil {
					return err
				}
				lines := make([]string, len(recs))
				for i, r := range recs {
					lines[i] = fmt.Sprintf("%s  %-20s [%g, %g]  L=%.5f S=%.5f V=%.5f",
						r.Timestamp.Format("2006-01-02 15:04:05"), r.Function, r.LowerBound, r.UpperBound,
						r.Results.ArcLength, r.Results.SurfaceArea, r.Results.Volume)
				}
				text := strings.Join(lines, "\n")
				if len(recs) == 0 {
					text = styles.Muted.Render("no history")
				}
				return a.print(cmd.OutOrStdout(), recs, text)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every stored computation",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.Clear(cmd.Context()); err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), map[string]bool{"cleared": true}, "history cleared")
			},
		},
	)
	return cmd
}
