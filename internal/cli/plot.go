package cli

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"

	plot "github.com/DeltaTestSoftware/cliqueplot"
	"github.com/DeltaTestSoftware/cliqueplot/internal/results"
)

// Fixed names and labels of the results figure.
const (
	InputFile  = "results.csv"
	OutputFile = "results.png"

	GuidedLabel = "Guided Decod. 4 Iter."
	BlindLabel  = "Blind Decod."
	XAxisLabel  = "Number of Stored Messages"
	YAxisLabel  = "Retrieval Error Rate"
)

// ResultsFigure plots the guided and blind error rates of m against its
// message-count column. The x axis runs from the last row's message count to
// the first row's; the rows are not sorted.
func ResultsFigure(m *results.Matrix) (*plot.Figure, error) {
	if m.Len() == 0 {
		return nil, results.ErrNoData
	}
	if m.Width() <= results.ColBlind {
		return nil, fmt.Errorf("results have %d columns, need at least %d", m.Width(), results.ColBlind+1)
	}

	left, right := m.At(m.Len()-1, results.ColMessages), m.At(0, results.ColMessages)
	if left == right {
		// a single distinct message count would give an empty axis
		d := 0.05 * math.Abs(left)
		if d == 0 {
			d = 0.05
		}
		left, right = left-d, right+d
	}

	x := m.Col(results.ColMessages)
	f := plot.NewFigure().
		SetXLim(left, right).
		SetYLim(-0.05, 1.05).
		XLabel(XAxisLabel).
		YLabel(YAxisLabel)
	f.Scatter(x, m.Col(results.ColGuided)).Label(GuidedLabel).Marker(plot.Triangle)
	f.Scatter(x, m.Col(results.ColBlind)).Label(BlindLabel).Marker(plot.Square)
	f.Legend().Grid()
	return f, nil
}

func runPlot(opts *RootOptions) error {
	in := filepath.Join(opts.Dir, InputFile)
	out := filepath.Join(opts.Dir, OutputFile)

	m, err := results.Load(in)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load results", err)
	}
	slog.Debug("results loaded", "path", in, "rows", m.Len(), "columns", m.Width())

	fig, err := ResultsFigure(m)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build figure", err)
	}
	if err := fig.Save(out); err != nil {
		return WrapExitError(ExitFailure, "failed to save figure", err)
	}
	slog.Info("figure saved", "path", out)

	if opts.Show == nil {
		return nil
	}
	if err := opts.Show(fig); err != nil {
		return WrapExitError(ExitFailure, "failed to show figure", err)
	}
	return nil
}
