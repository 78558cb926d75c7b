package plotting

import (
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultAxisTicks is the number of ticks requested on numeric axes.
const DefaultAxisTicks = 15

func newPlot(title, xLabel, yLabel string, ticks int) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	if ticks <= 0 {
		ticks = DefaultAxisTicks
	}
	p.X.Tick.Marker = hplot.Ticks{N: ticks}
	p.Y.Tick.Marker = hplot.Ticks{N: ticks}
	p.Legend.Top = true
	configureFontSizes(p)
	return p
}

func configureFontSizes(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.X.Tick.Label.Font.Size = vg.Points(9)
	p.Y.Tick.Label.Font.Size = vg.Points(9)
	p.Legend.TextStyle.Font.Size = vg.Points(9)
}

// seriesStyle gives series i the same color and dashes in every panel.
func seriesStyle(i int) draw.LineStyle {
	return draw.LineStyle{
		Color:  plotutil.Color(i),
		Width:  vg.Points(1),
		Dashes: plotutil.Dashes(i),
	}
}

func tiles(rows, cols int) draw.Tiles {
	return draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
}
