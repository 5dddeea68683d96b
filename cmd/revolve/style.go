package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/gorevolve"
	"github.com/njchilds90/gorevolve/scan"
)

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#2C4A54")
	colorWarn   = lipgloss.Color("#F4D03F")
	colorError  = lipgloss.Color("#E74C3C")
)

var styles = struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Muted lipgloss.Style
	Warn  lipgloss.Style
	Error lipgloss.Style
	Box   lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label: lipgloss.NewStyle().Width(16),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
	Warn:  lipgloss.NewStyle().Foreground(colorWarn),
	Error: lipgloss.NewStyle().Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1),
}

func row(label, value string) string {
	return styles.Label.Render(label) + value
}

func renderResult(r gorevolve.Result) string {
	d := r.Derivative
	if d == "" {
		d = styles.Warn.Render("unavailable")
	}
	lines := []string{
		styles.Title.Render(fmt.Sprintf("f(x) = %s on [%g, %g]", r.Function, r.Lower, r.Upper)),
		row("f'(x)", d),
		row("arc length", fmt.Sprintf("%.5f", r.ArcLength)),
		row("surface area", fmt.Sprintf("%.5f", r.SurfaceArea)),
		row("volume", fmt.Sprintf("%.5f", r.Volume)),
	}
	if r.Steps.ArcLengthIntegrand != "" {
		lines = append(lines,
			styles.Muted.Render("L = ∫ "+r.Steps.ArcLengthIntegrand+" dx"),
			styles.Muted.Render("S = ∫ "+r.Steps.SurfaceAreaIntegrand+" dx"))
	}
	lines = append(lines, styles.Muted.Render("V = ∫ "+r.Steps.VolumeIntegrand+" dx"))
	if r.Error != "" {
		lines = append(lines, styles.Warn.Render("warning: "+r.Error))
	}
	return styles.Box.Render(strings.Join(lines, "\n"))
}

func renderPoints(fn string, ps []scan.Point) string {
	var crit, infl []string
	for _, p := range ps {
		s := fmt.Sprintf("%g", p.X)
		if p.Kind == scan.Critical {
			crit = append(crit, s)
		} else {
			infl = append(infl, s)
		}
	}
	join := func(xs []string) string {
		if len(xs) == 0 {
			return styles.Muted.Render("none")
		}
		return strings.Join(xs, ", ")
	}
	return styles.Box.Render(strings.Join([]string{
		styles.Title.Render("f(x) = " + fn),
		row("critical", join(crit)),
		row("inflection", join(infl)),
	}, "\n"))
}
