package plotting

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/stats"
)

// Panel is one cell of a page. Its plots are stacked from top to bottom and
// aligned with the plots of the other panels of the page.
type Panel interface {
	Title() string
	Plots() ([]*plot.Plot, error)
}

// Series is one experiment inside a panel. XYs feed the time series, Values
// the distributions. Both must already hold finite values only.
type Series struct {
	Label  string
	XYs    plotter.XYs
	Values []float64
}

// Empty reports whether the series has nothing to draw.
func (s Series) Empty() bool {
	return len(s.XYs) == 0 && len(s.Values) == 0
}

func allEmpty(series []Series) bool {
	for _, s := range series {
		if !s.Empty() {
			return false
		}
	}
	return true
}

// QualityPanel draws the time series of a quality metric above its
// cumulative histogram, one line per series.
type QualityPanel struct {
	Name   string
	XLabel string
	YLabel string
	Series []Series
	Ticks  int
}

func (q *QualityPanel) Title() string { return q.Name }

func (q *QualityPanel) Plots() ([]*plot.Plot, error) {
	if allEmpty(q.Series) {
		return placeholder(q.Name, q.Ticks), nil
	}
	series := newPlot(q.Name, q.XLabel, q.YLabel, q.Ticks)
	if err := addLines(series, q.Series, timeSeries, plotter.NoStep); err != nil {
		return nil, err
	}

	cdf := newPlot("", q.YLabel, "P(x)", q.Ticks)
	if err := addLines(cdf, q.Series, cumulativeSteps, plotter.PostStep); err != nil {
		return nil, err
	}
	cdf.Y.Min = 0
	cdf.Y.Max = 1
	return []*plot.Plot{series, cdf}, nil
}

// cumulativeSteps turns the cumulative histogram of a series into the points
// of a post step line outlining the bars.
func cumulativeSteps(s Series) (plotter.XYs, error) {
	bins, err := stats.CumulativeHistogram(s.Values)
	if err != nil {
		return nil, err
	}
	xys := make(plotter.XYs, 0, len(bins)+1)
	for _, b := range bins {
		xys = append(xys, plotter.XY{X: b.Min, Y: b.Weight})
	}
	last := bins[len(bins)-1]
	return append(xys, plotter.XY{X: last.Max, Y: last.Weight}), nil
}

func timeSeries(s Series) (plotter.XYs, error) {
	return s.XYs, nil
}

func addLines(p *plot.Plot, series []Series, points func(Series) (plotter.XYs, error), step plotter.StepKind) error {
	for i, s := range series {
		if s.Empty() {
			continue
		}
		xys, err := points(s)
		if errors.Is(err, stats.ErrEmpty) || (err == nil && len(xys) == 0) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s.Label, err)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Label, err)
		}
		l.LineStyle = seriesStyle(i)
		l.StepStyle = step
		p.Add(l)
		p.Legend.Add(s.Label, l)
	}
	return nil
}

// BoxPanel draws one box per series with the median in the tick label.
// WhiskerMin and WhiskerMax move the whiskers to the given percentiles, the
// values beyond them are drawn as outliers. Zero keeps the 1.5 IQR rule.
type BoxPanel struct {
	Name                string
	XLabel              string
	YLabel              string
	Series              []Series
	PercentilesToRemove int
	WhiskerMin          int
	WhiskerMax          int
	Ticks               int
}

func (b *BoxPanel) Title() string { return b.Name }

func (b *BoxPanel) Plots() ([]*plot.Plot, error) {
	if allEmpty(b.Series) {
		return placeholder(b.Name, b.Ticks), nil
	}
	p := newPlot(b.Name, b.XLabel, b.YLabel, b.Ticks)
	min, max, err := boxPlots(p, b.Series, b.PercentilesToRemove, b.WhiskerMin, b.WhiskerMax)
	if err != nil {
		return nil, err
	}
	p.Y.Min = min
	p.Y.Max = max
	return []*plot.Plot{p}, nil
}

// boxPlots adds the boxes to p and returns the Y limits once the requested
// percentiles are removed at both ends.
func boxPlots(p *plot.Plot, series []Series, percentilesToRemove, whiskerMin, whiskerMax int) (float64, float64, error) {
	var nominals []string
	min, max := math.Inf(1), math.Inf(-1)
	w := vg.Points(40)
	for i, s := range series {
		if len(s.Values) == 0 {
			nominals = append(nominals, s.Label+" (no data)")
			continue
		}
		values := append(plotter.Values(nil), s.Values...)
		sort.Float64s(values)
		box, err := plotter.NewBoxPlot(w, float64(i), values)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", s.Label, err)
		}
		box.BoxStyle.Color = seriesStyle(i).Color
		setWhiskers(box, values, whiskerMin, whiskerMax)
		nominals = append(nominals, s.Label+" (Median:"+strconv.FormatFloat(box.Median, 'f', 2, 64)+")")
		p.Add(box)

		lo, hi, err := stats.Limits(values, percentilesToRemove)
		if err != nil {
			return 0, 0, err
		}
		min = math.Min(min, lo)
		max = math.Max(max, hi)
	}
	p.NominalX(nominals...)
	if math.IsInf(min, 0) {
		return 0, 1, nil
	}
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return min - pad, max + pad, nil
}

// setWhiskers moves the whiskers of a box built from sorted to the given
// percentiles and recomputes the outliers.
func setWhiskers(box *plotter.BoxPlot, sorted []float64, whiskerMin, whiskerMax int) {
	if len(sorted) == 0 || whiskerMin == 0 && whiskerMax == 0 {
		return
	}
	last := float64(len(sorted) - 1)
	if whiskerMin > 0 {
		box.AdjLow = math.Min(sorted[int(last*float64(whiskerMin)/100)], box.Quartile1)
	}
	if whiskerMax > 0 {
		box.AdjHigh = math.Max(sorted[int(math.Ceil(last*float64(whiskerMax)/100))], box.Quartile3)
	}
	box.Outside = box.Outside[:0]
	for i, v := range sorted {
		if v < box.AdjLow || v > box.AdjHigh {
			box.Outside = append(box.Outside, i)
		}
	}
}

// LinePanel draws the time series of several series, as used for the
// congestion control telemetry.
type LinePanel struct {
	Name   string
	XLabel string
	YLabel string
	Series []Series
	Ticks  int
}

func (l *LinePanel) Title() string { return l.Name }

func (l *LinePanel) Plots() ([]*plot.Plot, error) {
	if allEmpty(l.Series) {
		return placeholder(l.Name, l.Ticks), nil
	}
	p := newPlot(l.Name, l.XLabel, l.YLabel, l.Ticks)
	if err := addLines(p, l.Series, timeSeries, plotter.NoStep); err != nil {
		return nil, err
	}
	return []*plot.Plot{p}, nil
}

// PlaceholderSuffix is appended to the title of a panel without data.
const PlaceholderSuffix = " (no finite samples)"

func placeholder(title string, ticks int) []*plot.Plot {
	p := newPlot(title+PlaceholderSuffix, "", "", ticks)
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	p.HideAxes()
	return []*plot.Plot{p}
}
