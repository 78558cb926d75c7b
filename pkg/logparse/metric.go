package logparse

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/experiment"
)

// Metric is a video quality metric written by ffmpeg.
type Metric string

const (
	SSIM Metric = "ssim"
	PSNR Metric = "psnr"
)

// Token positions after splitting an ffmpeg log line on whitespace and ':'.
//
//	n:1 Y:0.99 U:0.99 V:0.99 All:0.99 (21.1)
//	n:1 mse_avg:0.5 mse_y:0.6 mse_u:0.2 mse_v:0.3 psnr_avg:51.2 psnr_y:50.3 ...
const (
	indexToken = 1
	ssimToken  = 9
	psnrToken  = 11
)

// ValueToken returns the token position holding the metric value.
func (m Metric) ValueToken() (int, error) {
	switch m {
	case SSIM:
		return ssimToken, nil
	case PSNR:
		return psnrToken, nil
	default:
		return 0, fmt.Errorf("unknown quality metric %q", string(m))
	}
}

// MetricRecord is one frame of a quality log.
type MetricRecord struct {
	N     float64
	Value float64
}

// ParseMetric reads a quality log. Non finite values are kept; callers filter
// them before aggregating. Empty lines are ignored.
func ParseMetric(path string, m Metric) ([]MetricRecord, error) {
	valuePos, err := m.ValueToken()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []MetricRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		tokens := tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) <= valuePos {
			return nil, fmt.Errorf("%w: %s:%d has %d tokens, expected more than %d",
				experiment.ErrMalformedRecord, path, line, len(tokens), valuePos)
		}
		n, err := strconv.ParseFloat(tokens[indexToken], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d invalid frame index %q", experiment.ErrMalformedRecord, path, line, tokens[indexToken])
		}
		v, err := strconv.ParseFloat(tokens[valuePos], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d invalid %s %q", experiment.ErrMalformedRecord, path, line, m, tokens[valuePos])
		}
		records = append(records, MetricRecord{N: n, Value: v})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Values returns the metric values in file order.
func Values(records []MetricRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Value
	}
	return out
}

func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ':' || unicode.IsSpace(r)
	})
}
