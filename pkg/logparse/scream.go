package logparse

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/experiment"
)

// Column names of a SCReAM statistics log.
const (
	ColDate            = "date"
	ColTime            = "time"
	ColQueueLen        = "queueLen"
	ColRTT             = "rtt"
	ColCwnd            = "cwnd"
	ColBytesInFlight   = "bytesInFlight"
	ColFastStart       = "fastStart"
	ColQueueDelay      = "queueDelay"
	ColTargetBitrate   = "targetBitrate"
	ColRateTransmitted = "rateTransmitted"
)

// Schema binds the columns of a SCReAM log by name. Logs carry no version
// marker, so the schema is always chosen explicitly.
type Schema struct {
	Name    string
	Columns []string
	// TimeScale converts the logged time column to seconds.
	TimeScale float64
}

var (
	// SchemaV1 is the eight column layout.
	SchemaV1 = Schema{Name: "v1", Columns: []string{
		ColTime, ColQueueLen, ColCwnd, ColBytesInFlight, ColFastStart, ColQueueDelay, ColTargetBitrate, ColRateTransmitted,
	}, TimeScale: 1}
	// SchemaV2 adds the smoothed RTT after the queue length and logs the
	// time in milliseconds since the sender started.
	SchemaV2 = Schema{Name: "v2", Columns: []string{
		ColTime, ColQueueLen, ColRTT, ColCwnd, ColBytesInFlight, ColFastStart, ColQueueDelay, ColTargetBitrate, ColRateTransmitted,
	}, TimeScale: 0.001}
	// SchemaDated is the v1 layout preceded by a date column, which is ignored.
	SchemaDated = Schema{Name: "dated", Columns: []string{
		ColDate, ColTime, ColQueueLen, ColCwnd, ColBytesInFlight, ColFastStart, ColQueueDelay, ColTargetBitrate, ColRateTransmitted,
	}, TimeScale: 1}
)

var schemas = map[string]Schema{
	SchemaV1.Name:    SchemaV1,
	SchemaV2.Name:    SchemaV2,
	SchemaDated.Name: SchemaDated,
}

// LookupSchema returns the schema registered under name.
func LookupSchema(name string) (Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("unknown scream log schema %q", name)
	}
	return s, nil
}

// SchemaNames lists the registered schemas.
func SchemaNames() []string {
	names := make([]string, 0, len(schemas))
	for n := range schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the schema carries the column.
func (s Schema) Has(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ScreamRecord is one sample of the SCReAM sender state. Time is in seconds.
type ScreamRecord struct {
	Time            float64
	QueueLen        float64
	RTT             float64
	Cwnd            float64
	BytesInFlight   float64
	FastStart       float64
	QueueDelay      float64
	TargetBitrate   float64
	RateTransmitted float64
}

// Column returns the value bound to the named column.
func (r ScreamRecord) Column(col string) (float64, bool) {
	switch col {
	case ColTime:
		return r.Time, true
	case ColQueueLen:
		return r.QueueLen, true
	case ColRTT:
		return r.RTT, true
	case ColCwnd:
		return r.Cwnd, true
	case ColBytesInFlight:
		return r.BytesInFlight, true
	case ColFastStart:
		return r.FastStart, true
	case ColQueueDelay:
		return r.QueueDelay, true
	case ColTargetBitrate:
		return r.TargetBitrate, true
	case ColRateTransmitted:
		return r.RateTransmitted, true
	}
	return 0, false
}

func (r *ScreamRecord) set(col string, v float64) {
	switch col {
	case ColTime:
		r.Time = v
	case ColQueueLen:
		r.QueueLen = v
	case ColRTT:
		r.RTT = v
	case ColCwnd:
		r.Cwnd = v
	case ColBytesInFlight:
		r.BytesInFlight = v
	case ColFastStart:
		r.FastStart = v
	case ColQueueDelay:
		r.QueueDelay = v
	case ColTargetBitrate:
		r.TargetBitrate = v
	case ColRateTransmitted:
		r.RateTransmitted = v
	}
}

// ParseScream reads a SCReAM statistics log laid out as schema, with the time
// converted to seconds. The records are returned in file order; use
// SortByTime before plotting.
func ParseScream(path string, schema Schema) ([]ScreamRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ScreamRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(schema.Columns) {
			return nil, fmt.Errorf("%w: %s:%d has %d columns, schema %s expects %d",
				experiment.ErrMalformedRecord, path, line, len(fields), schema.Name, len(schema.Columns))
		}
		var r ScreamRecord
		for i, col := range schema.Columns {
			if col == ColDate {
				continue
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d invalid %s %q", experiment.ErrMalformedRecord, path, line, col, fields[i])
			}
			r.set(col, v)
		}
		if schema.TimeScale != 0 {
			r.Time *= schema.TimeScale
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SortByTime orders records by time, keeping the file order of equal times.
func SortByTime(records []ScreamRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time < records[j].Time
	})
}
