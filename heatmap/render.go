package heatmap

import (
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"
)

type RenderOptions struct {
	// Min and Max bound the colour scale. Values outside are clamped.
	Min float64
	Max float64

	CellWidth  int
	CellHeight int
}

func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Min: 0.5, Max: 1, CellWidth: 64, CellHeight: 22}
}

const margin = 12

// Render draws the matrix as an annotated colour grid and writes it as PNG.
// Feature names label the rows and cutoff labels the columns.
func (m *Matrix) Render(w io.Writer, opts RenderOptions) error {
	return m.draw(opts).EncodePNG(w)
}

// RenderPNG is Render to a file.
func (m *Matrix) RenderPNG(path string, opts RenderOptions) error {
	return m.draw(opts).SavePNG(path)
}

func (m *Matrix) draw(opts RenderOptions) *gg.Context {
	d := DefaultRenderOptions()
	if opts.CellWidth <= 0 {
		opts.CellWidth = d.CellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = d.CellHeight
	}
	if opts.Max <= opts.Min {
		opts.Min, opts.Max = d.Min, d.Max
	}

	// Measure labels on a scratch context; the default face is fixed width.
	scratch := gg.NewContext(1, 1)
	labelWidth, labelHeight := 0.0, 0.0
	for _, f := range m.Features {
		w, h := scratch.MeasureString(f)
		labelWidth = math.Max(labelWidth, w)
		labelHeight = math.Max(labelHeight, h)
	}
	headerHeight := labelHeight
	for _, c := range m.Cutoffs {
		_, h := scratch.MeasureString(c)
		headerHeight = math.Max(headerHeight, h)
	}

	left := float64(margin) + labelWidth + margin
	top := float64(margin) + headerHeight + margin
	cw, ch := float64(opts.CellWidth), float64(opts.CellHeight)

	width := int(left + cw*float64(len(m.Cutoffs)) + margin)
	height := int(top + ch*float64(len(m.Features)) + margin)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0, 0, 0)
	for j, c := range m.Cutoffs {
		dc.DrawStringAnchored(c, left+cw*(float64(j)+0.5), top-margin, 0.5, 0)
	}

	for i, f := range m.Features {
		y := top + ch*float64(i)

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(f, left-margin, y+ch/2, 1, 0.35)

		for j, v := range m.AUC[i] {
			x := left + cw*float64(j)

			t := scale(v, opts.Min, opts.Max)
			if math.IsNaN(t) {
				dc.SetRGB(0.8, 0.8, 0.8)
			} else {
				dc.SetRGB(reds(t))
			}
			dc.DrawRectangle(x, y, cw, ch)
			dc.Fill()

			// Grid lines.
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(2)
			dc.DrawRectangle(x, y, cw, ch)
			dc.Stroke()

			if math.IsNaN(v) {
				continue
			}
			if t > 0.5 {
				dc.SetRGB(1, 1, 1)
			} else {
				dc.SetRGB(0, 0, 0)
			}
			dc.DrawStringAnchored(strconv.FormatFloat(v, 'f', 3, 64), x+cw/2, y+ch/2, 0.5, 0.35)
		}
	}

	return dc
}

// scale maps v onto [0, 1]. NaN stays NaN.
func scale(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
}

// reds interpolates from near-white to dark red.
func reds(t float64) (r, g, b float64) {
	const (
		r0, g0, b0 = 1.0, 0.96, 0.94
		r1, g1, b1 = 0.40, 0.0, 0.05
	)
	return r0 + (r1-r0)*t, g0 + (g1-g0)*t, b0 + (b1-b0)*t
}
