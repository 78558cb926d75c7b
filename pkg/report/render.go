package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"k8s.io/klog/v2"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/experiment"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/logparse"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/plotting"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/settings"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/stats"
)

var yLabels = map[string]string{
	settings.MetricSSIM: "SSIM",
	settings.MetricPSNR: "PSNR (dB)",
}

// Run plots every configured metric of the benchmark under root and returns
// the written files. A metric or document that fails is logged and skipped;
// the failures are joined into the returned error.
func Run(root string, s settings.Settings) ([]string, error) {
	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return nil, err
	}
	opts := plotting.Options{Width: vg.Length(s.PageWidth), Height: vg.Length(s.PageHeight), Format: s.Format}

	var written []string
	var errs []error
	for _, metric := range s.Metrics {
		plans, err := Plan(root, metric, s)
		if err != nil {
			klog.Errorf("Skipping %s: %v", metric, err)
			errs = append(errs, fmt.Errorf("planning %s: %w", metric, err))
			continue
		}
		for _, plan := range plans {
			klog.Infof("Plotting %s for %s (%d pages, %d panels)", metric, plan.File, len(plan.Pages), plan.PanelCount())
			paths, err := write(plan, s, opts)
			written = append(written, paths...)
			if err != nil {
				klog.Errorf("Skipping %s: %v", plan.Name, err)
				errs = append(errs, fmt.Errorf("%s: %w", plan.Name, err))
			}
		}
	}
	return written, errors.Join(errs...)
}

func write(plan DocumentPlan, s settings.Settings, opts plotting.Options) ([]string, error) {
	doc, err := Render(plan, s)
	if err != nil {
		return nil, err
	}
	return plotting.Write(doc, s.OutputDir, opts)
}

// Render loads the logs of a plan and builds its document.
func Render(plan DocumentPlan, s settings.Settings) (plotting.Document, error) {
	l := &loader{settings: s, metric: plan.Metric}
	doc := plotting.Document{Name: plan.Name}
	for _, pp := range plan.Pages {
		page := plotting.Page{Heading: pp.Heading}
		for _, panel := range pp.Panels {
			p, err := l.panel(pp, panel)
			if err != nil {
				return doc, err
			}
			page.Panels = append(page.Panels, p)
		}
		if plan.Metric == settings.MetricScream {
			page.Cols = 2
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// loader parses each log of a document once.
type loader struct {
	settings settings.Settings
	metric   string
	quality  map[string]plotting.Series
	scream   map[string][]logparse.ScreamRecord
}

func (l *loader) panel(page PagePlan, pp PanelPlan) (plotting.Panel, error) {
	ticks := l.settings.AxisTicks
	if l.metric == settings.MetricScream {
		series, err := l.screamSeries(pp)
		if err != nil {
			return nil, err
		}
		return &plotting.LinePanel{Name: pp.Title, XLabel: "time (s)", Series: series, Ticks: ticks}, nil
	}

	var series []plotting.Series
	for _, log := range pp.Logs {
		s, err := l.qualitySeries(log)
		if err != nil {
			return nil, err
		}
		s.Label = label(log.Descriptor, pp.LabelFrom)
		series = append(series, s)
	}
	if page.Box {
		return &plotting.BoxPanel{
			Name:                pp.Title,
			YLabel:              yLabels[l.metric],
			Series:              series,
			PercentilesToRemove: l.settings.PercentilesToRemove,
			WhiskerMin:          l.settings.WhiskerMin,
			WhiskerMax:          l.settings.WhiskerMax,
			Ticks:               ticks,
		}, nil
	}
	return &plotting.QualityPanel{Name: pp.Title, XLabel: "frame", YLabel: yLabels[l.metric], Series: series, Ticks: ticks}, nil
}

func (l *loader) qualitySeries(log experiment.LogFile) (plotting.Series, error) {
	if s, ok := l.quality[log.Path]; ok {
		return s, nil
	}
	records, err := logparse.ParseMetric(log.Path, logparse.Metric(l.metric))
	if err != nil {
		return plotting.Series{}, err
	}
	var s plotting.Series
	for _, r := range records {
		if stats.IsFinite(r.Value) {
			s.XYs = append(s.XYs, plotter.XY{X: r.N, Y: r.Value})
		}
	}
	s.Values = stats.Finite(logparse.Values(records))
	logSummary(log, l.metric, logparse.Values(records))

	if l.quality == nil {
		l.quality = make(map[string]plotting.Series)
	}
	l.quality[log.Path] = s
	return s, nil
}

func (l *loader) screamSeries(pp PanelPlan) ([]plotting.Series, error) {
	var series []plotting.Series
	for _, log := range pp.Logs {
		records, err := l.screamRecords(log)
		if err != nil {
			return nil, err
		}
		for _, col := range pp.Columns {
			s := plotting.Series{Label: col}
			for _, r := range records {
				v, _ := r.Column(col)
				if stats.IsFinite(v) && stats.IsFinite(r.Time) {
					s.XYs = append(s.XYs, plotter.XY{X: r.Time, Y: v})
					s.Values = append(s.Values, v)
				}
			}
			if s.Empty() {
				klog.Warningf("%v", fmt.Errorf("%w: %s column %s", experiment.ErrEmptySeries, log.Path, col))
			}
			series = append(series, s)
		}
	}
	return series, nil
}

func (l *loader) screamRecords(log experiment.LogFile) ([]logparse.ScreamRecord, error) {
	if r, ok := l.scream[log.Path]; ok {
		return r, nil
	}
	schema, err := logparse.LookupSchema(l.settings.ScreamSchema)
	if err != nil {
		return nil, err
	}
	records, err := logparse.ParseScream(log.Path, schema)
	if err != nil {
		return nil, err
	}
	logparse.SortByTime(records)
	if l.scream == nil {
		l.scream = make(map[string][]logparse.ScreamRecord)
	}
	l.scream[log.Path] = records
	return records, nil
}

func logSummary(log experiment.LogFile, metric string, values []float64) {
	sum, err := stats.Summarize(values)
	if errors.Is(err, stats.ErrEmpty) {
		klog.Warningf("%v", fmt.Errorf("%w: %s has %d %s samples, none finite", experiment.ErrEmptySeries, log.Path, sum.Count, metric))
		return
	}
	klog.V(1).Infof("%s %s: %d samples, %d finite, median %.3f [%.3f, %.3f]",
		log.Descriptor, strings.ToUpper(metric), sum.Count, sum.Finite, sum.Median, sum.Min, sum.Max)
}
