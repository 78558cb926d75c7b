package report

import (
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/experiment"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/logparse"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/settings"
)

// PanelPlan lists the experiments charted by one panel. Columns is only set
// for scream panels.
type PanelPlan struct {
	Title   string
	Logs    []experiment.LogFile
	Columns []string
	// LabelFrom is the first descriptor field shown in series labels.
	LabelFrom experiment.Field
}

// PagePlan is one page of a document.
type PagePlan struct {
	Heading string
	Box     bool
	Panels  []PanelPlan
}

// DocumentPlan is the layout of one output document, computed before any log
// content is read.
type DocumentPlan struct {
	Name   string
	Metric string
	File   string
	Pages  []PagePlan
}

// PanelCount sums the panels of every page.
func (d DocumentPlan) PanelCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Panels)
	}
	return n
}

// Plan discovers the logs of metric under root and lays out one document per
// file id.
func Plan(root, metric string, s settings.Settings) ([]DocumentPlan, error) {
	logs, err := experiment.Discover(root, metric)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		klog.Warningf("No %s logs found under %s", metric, root)
		return nil, nil
	}
	values := experiment.ValuesOf(logs)
	experiments, err := matrixLogs(root, values, logs, metric)
	if err != nil {
		return nil, err
	}

	var plans []DocumentPlan
	for _, file := range values.Fields[experiment.FileID] {
		var plan DocumentPlan
		if metric == settings.MetricScream {
			plan, err = screamPlan(file, experiments, s)
		} else {
			plan = qualityPlan(file, metric, experiments, values, s)
		}
		if err != nil {
			return nil, err
		}
		if len(plan.Pages) == 0 {
			klog.Warningf("Nothing to plot for %s %s", file, metric)
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// matrixLogs returns the log of every experiment of the cartesian matrix. An
// experiment directory without the metric log is an error.
func matrixLogs(root string, values experiment.Values, logs []experiment.LogFile, metric string) ([]experiment.LogFile, error) {
	idx := experiment.Index(logs)
	matrix := experiment.CartesianMatrix(root, values)
	out := make([]experiment.LogFile, 0, len(matrix))
	for _, d := range matrix {
		if metric == settings.MetricScream && d.CongestionControl() == "none" {
			continue
		}
		l, ok := idx[d]
		if !ok {
			return nil, fmt.Errorf("%w: %v has no %s.log", experiment.ErrMissingExperiment, d, metric)
		}
		out = append(out, l)
	}
	return out, nil
}

func qualityPlan(file, metric string, logs []experiment.LogFile, values experiment.Values, s settings.Settings) DocumentPlan {
	plan := DocumentPlan{Name: file + "-" + metric, Metric: metric, File: file}
	transports := orderTransports(values.Fields[experiment.Transport], s.Transports)

	for _, bw := range values.Fields[experiment.Bandwidth] {
		page := PagePlan{Heading: fmt.Sprintf("%s %s, bandwidth %s", file, strings.ToUpper(metric), bw)}
		for _, tr := range transports {
			g := experiment.GroupLogs(logs, experiment.Selector{
				experiment.FileID:    file,
				experiment.Transport: tr,
				experiment.Bandwidth: bw,
			}, experiment.CongestionControl)
			if g.Len() == 0 {
				continue
			}
			klog.V(2).Infof("Group %v by %v: %d experiments", g.Fixed, g.SortKey, g.Len())
			page.Panels = append(page.Panels, PanelPlan{Title: tr, Logs: g.Logs, LabelFrom: experiment.CongestionControl})
		}
		if len(page.Panels) > 0 {
			plan.Pages = append(plan.Pages, page)
		}
	}

	box := PagePlan{Heading: fmt.Sprintf("%s %s distribution", file, strings.ToUpper(metric)), Box: true}
	for _, tr := range transports {
		g := experiment.GroupLogs(logs, experiment.Selector{
			experiment.FileID:    file,
			experiment.Transport: tr,
		}, experiment.Bandwidth)
		if g.Len() == 0 {
			continue
		}
		klog.V(2).Infof("Group %v by %v: %d experiments", g.Fixed, g.SortKey, g.Len())
		box.Panels = append(box.Panels, PanelPlan{Title: tr, Logs: g.Logs, LabelFrom: experiment.Bandwidth})
	}
	if len(box.Panels) > 0 {
		plan.Pages = append(plan.Pages, box)
	}
	return plan
}

func screamPlan(file string, logs []experiment.LogFile, s settings.Settings) (DocumentPlan, error) {
	schema, err := logparse.LookupSchema(s.ScreamSchema)
	if err != nil {
		return DocumentPlan{}, err
	}
	last := logparse.ColFastStart
	if schema.Has(logparse.ColRTT) {
		last = logparse.ColRTT
	}
	plan := DocumentPlan{Name: file + "-" + settings.MetricScream, Metric: settings.MetricScream, File: file}
	g := experiment.GroupLogs(logs, experiment.Selector{experiment.FileID: file}, experiment.Transport)
	for _, l := range g.Logs {
		one := []experiment.LogFile{l}
		plan.Pages = append(plan.Pages, PagePlan{
			Heading: l.Descriptor.String(),
			Panels: []PanelPlan{
				{Title: "Queue", Logs: one, Columns: []string{logparse.ColQueueLen, logparse.ColQueueDelay}},
				{Title: "Congestion window", Logs: one, Columns: []string{logparse.ColCwnd, logparse.ColBytesInFlight}},
				{Title: "Bitrate", Logs: one, Columns: []string{logparse.ColTargetBitrate, logparse.ColRateTransmitted}},
				{Title: columnTitles[last], Logs: one, Columns: []string{last}},
			},
		})
	}
	return plan, nil
}

var columnTitles = map[string]string{
	logparse.ColRTT:       "Round trip time",
	logparse.ColFastStart: "Fast start",
}

// orderTransports keeps the observed transports, in the configured order when
// one is given.
func orderTransports(observed, configured []string) []string {
	if len(configured) == 0 {
		return observed
	}
	seen := make(map[string]bool, len(observed))
	for _, t := range observed {
		seen[t] = true
	}
	var out []string
	for _, t := range configured {
		if seen[t] {
			out = append(out, t)
			delete(seen, t)
		}
	}
	for _, t := range observed {
		if seen[t] {
			klog.V(1).Infof("Transport %s not in settings, skipped", t)
		}
	}
	return out
}

func label(d experiment.Descriptor, from experiment.Field) string {
	return strings.Join(d[from:], "-")
}
