// Package plots renders the standard figures of a learning campaign:
// best-so-far curves and parity plots. Output format follows the file
// extension (.png, .svg, .pdf).
package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/citrinelab/citrine/learn"
	"github.com/citrinelab/citrine/metrics"
	"github.com/citrinelab/citrine/pkg/errors"
)

const (
	defaultWidth  = 6 * vg.Inch
	defaultHeight = 4 * vg.Inch
)

// BestSoFar plots the best measured value after each iteration.
func BestSoFar(h *learn.History) (*plot.Plot, error) {
	if h == nil || len(h.Iterations) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "best-so-far plot")
	}

	series := h.BestSeries()
	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i + 1)
		pts[i].Y = v
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Best measured value (%s)", h.Goal)
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Best value"

	if err := plotutil.AddLinePoints(p, "best", pts); err != nil {
		return nil, errors.Wrap(err, "best-so-far plot")
	}
	return p, nil
}

// SaveBestSoFar renders the best-so-far curve to path.
func SaveBestSoFar(h *learn.History, path string) error {
	p, err := BestSoFar(h)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(defaultWidth, defaultHeight, path), "saving %s", path)
}

// parityPoints pairs coordinates with their uncertainty bars.
type parityPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Parity plots predicted against measured values with uncertainty
// bars and the ideal y = x line. The subtitle reports RMSE and the
// non-dimensional error.
func Parity(measured, predicted, sigma []float64) (*plot.Plot, error) {
	n := len(measured)
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "parity plot")
	}
	if len(predicted) != n || (sigma != nil && len(sigma) != n) {
		return nil, errors.NewDimensionError("parity plot", n, len(predicted), 0)
	}

	pts := parityPoints{
		XYs:     make(plotter.XYs, n),
		YErrors: make(plotter.YErrors, n),
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		pts.XYs[i].X = measured[i]
		pts.XYs[i].Y = predicted[i]
		if sigma != nil {
			pts.YErrors[i].Low = sigma[i]
			pts.YErrors[i].High = sigma[i]
		}
		lo = math.Min(lo, math.Min(measured[i], predicted[i]))
		hi = math.Max(hi, math.Max(measured[i], predicted[i]))
	}

	p := plot.New()
	p.Title.Text = "Parity"
	p.X.Label.Text = "Measured"
	p.Y.Label.Text = "Predicted"

	scatter, err := plotter.NewScatter(pts.XYs)
	if err != nil {
		return nil, errors.Wrap(err, "parity plot")
	}
	p.Add(scatter)

	if sigma != nil {
		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return nil, errors.Wrap(err, "parity plot")
		}
		p.Add(bars)
	}

	ideal := plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}}
	line, err := plotter.NewLine(ideal)
	if err != nil {
		return nil, errors.Wrap(err, "parity plot")
	}
	p.Add(line)

	if stats := paritySubtitle(measured, predicted); stats != "" {
		p.Title.Text += "\n" + stats
	}
	return p, nil
}

func paritySubtitle(measured, predicted []float64) string {
	yTrue := mat.NewVecDense(len(measured), append([]float64{}, measured...))
	yPred := mat.NewVecDense(len(predicted), append([]float64{}, predicted...))
	rmse, err := metrics.RMSE(yTrue, yPred)
	if err != nil {
		return ""
	}
	nde, err := metrics.NDE(yTrue, yPred)
	if err != nil {
		return fmt.Sprintf("RMSE = %.3g", rmse)
	}
	return fmt.Sprintf("RMSE = %.3g, NDE = %.3g", rmse, nde)
}

// SaveParity renders a parity plot to path.
func SaveParity(measured, predicted, sigma []float64, path string) error {
	p, err := Parity(measured, predicted, sigma)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(defaultWidth, defaultHeight, path), "saving %s", path)
}
