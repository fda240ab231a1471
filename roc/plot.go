package roc

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	curveColor  = drawing.Color{R: 255, G: 127, B: 14, A: 255}
	chanceColor = drawing.Color{R: 0, G: 0, B: 128, A: 255}
)

// PlotCurve renders the ROC curve of s, with the chance diagonal, as a PNG.
func PlotCurve(w io.Writer, s Score) error {
	if s.Err != nil {
		return s.Err
	}

	fpr := make([]float64, len(s.Curve))
	tpr := make([]float64, len(s.Curve))
	for i, p := range s.Curve {
		fpr[i] = p.FPR
		tpr[i] = p.TPR
	}

	graph := chart.Chart{
		Title:  "ROC curve for " + s.Column,
		Width:  640,
		Height: 480,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  "False Positive Rate",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:  "True Positive Rate",
			Range: &chart.ContinuousRange{Min: 0, Max: 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    fmt.Sprintf("%s (area=%.2f, cor=%.2f)", s.Column, s.AUC, s.PearsonR),
				Style:   chart.Style{StrokeColor: curveColor, StrokeWidth: 2},
				XValues: fpr,
				YValues: tpr,
			},
			chart.ContinuousSeries{
				Name:    "chance",
				Style:   chart.Style{StrokeColor: chanceColor, StrokeWidth: 2, StrokeDashArray: []float64{5, 5}},
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
