package web

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/optic-ml/optic/train"
)

// renderCurves draws the train and validation accuracy of a run as an
// SVG line chart.
func renderCurves(epochs []train.EpochStats) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "accuracy"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "accuracy"
	p.Y.Min, p.Y.Max = 0, 1
	p.Legend.Top = true

	trainPts := make(plotter.XYs, len(epochs))
	validPts := make(plotter.XYs, len(epochs))
	for i, s := range epochs {
		trainPts[i].X = float64(s.Epoch)
		trainPts[i].Y = s.TrainAcc
		validPts[i].X = float64(s.Epoch)
		validPts[i].Y = s.ValidAcc
	}

	if err := plotutil.AddLinePoints(p, "train", trainPts, "valid", validPts); err != nil {
		return nil, fmt.Errorf("web: plot curves: %w", err)
	}

	canvas := vgsvg.New(8*vg.Inch, 4*vg.Inch)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := canvas.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("web: write svg: %w", err)
	}
	return buf.Bytes(), nil
}
