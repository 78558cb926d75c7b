package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/logparse"
)

type Settings struct {
	Metrics             []string `yaml:"metrics"`
	OutputDir           string   `yaml:"output_dir"`
	Format              string   `yaml:"format"`        // pdf or png
	ScreamSchema        string   `yaml:"scream_schema"` // v1, v2 or dated
	PercentilesToRemove int      `yaml:"percentiles_to_remove"`
	WhiskerMin          int      `yaml:"whisker_min"` // percentile, 0 for the 1.5 IQR rule
	WhiskerMax          int      `yaml:"whisker_max"`
	Transports          []string `yaml:"transports"`  // order of the panels, all when empty
	PageWidth           float64  `yaml:"page_width"`  // in points
	PageHeight          float64  `yaml:"page_height"` // in points
	AxisTicks           int      `yaml:"axis_ticks"`
}

const (
	FormatPDF = "pdf"
	FormatPNG = "png"

	MetricSSIM   = "ssim"
	MetricPSNR   = "psnr"
	MetricScream = "scream"
)

// Default returns the settings used when no file is given.
func Default() Settings {
	return Settings{
		Metrics:             []string{MetricSSIM, MetricPSNR, MetricScream},
		OutputDir:           ".",
		Format:              FormatPDF,
		ScreamSchema:        logparse.SchemaV1.Name,
		PercentilesToRemove: 0,
		PageWidth:           1500,
		PageHeight:          1000,
		AxisTicks:           15,
	}
}

// Load reads a YAML settings file. Keys missing in the file keep the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	file, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(file, &s); err != nil {
		return s, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	if len(s.Metrics) == 0 {
		return fmt.Errorf("no metrics requested")
	}
	for _, m := range s.Metrics {
		switch m {
		case MetricSSIM, MetricPSNR, MetricScream:
		default:
			return fmt.Errorf("unknown metric %q", m)
		}
	}
	if s.Format != FormatPDF && s.Format != FormatPNG {
		return fmt.Errorf("unknown output format %q", s.Format)
	}
	if _, err := logparse.LookupSchema(s.ScreamSchema); err != nil {
		return err
	}
	if s.PercentilesToRemove < 0 || s.PercentilesToRemove >= 50 {
		return fmt.Errorf("percentiles_to_remove must be in [0, 50), got %d", s.PercentilesToRemove)
	}
	if s.WhiskerMin < 0 || s.WhiskerMin >= 50 {
		return fmt.Errorf("whisker_min must be in [0, 50), got %d", s.WhiskerMin)
	}
	if s.WhiskerMax != 0 && (s.WhiskerMax <= 50 || s.WhiskerMax > 100) {
		return fmt.Errorf("whisker_max must be 0 or in (50, 100], got %d", s.WhiskerMax)
	}
	if s.PageWidth <= 0 || s.PageHeight <= 0 {
		return fmt.Errorf("page size must be positive, got %vx%v", s.PageWidth, s.PageHeight)
	}
	if s.AxisTicks <= 0 {
		return fmt.Errorf("axis_ticks must be positive, got %d", s.AxisTicks)
	}
	return nil
}
