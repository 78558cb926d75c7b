package experiment

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Field identifies one of the five positions of an experiment directory name.
type Field int

const (
	FileID Field = iota
	Transport
	Bandwidth
	CongestionControl
	FeedbackFrequency
)

// FieldCount is the number of hyphen separated tokens of a directory name.
const FieldCount = 5

var fieldNames = [FieldCount]string{"file", "transport", "bandwidth", "congestion_control", "feedback_frequency"}

func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return "field(" + strconv.Itoa(int(f)) + ")"
	}
	return fieldNames[f]
}

// Descriptor holds the experiment parameters encoded in a directory name:
// <file>-<transport>-<bandwidth>-<congestion_control>-<feedback_frequency>
type Descriptor [FieldCount]string

// ParseDescriptor splits a directory name into its five fields.
func ParseDescriptor(name string) (Descriptor, error) {
	var d Descriptor
	parts := strings.Split(name, "-")
	if len(parts) != FieldCount {
		return d, fmt.Errorf("%w: %q has %d fields, expected %d", ErrMalformedDescriptor, name, len(parts), FieldCount)
	}
	for i, p := range parts {
		if p == "" {
			return d, fmt.Errorf("%w: %q has an empty %v", ErrMalformedDescriptor, name, Field(i))
		}
		d[i] = p
	}
	return d, nil
}

// String rebuilds the directory name.
func (d Descriptor) String() string {
	return strings.Join(d[:], "-")
}

func (d Descriptor) File() string              { return d[FileID] }
func (d Descriptor) Transport() string         { return d[Transport] }
func (d Descriptor) Bandwidth() string         { return d[Bandwidth] }
func (d Descriptor) CongestionControl() string { return d[CongestionControl] }
func (d Descriptor) FeedbackFrequency() string { return d[FeedbackFrequency] }

// Label is the descriptor without the file id, used in chart titles.
func (d Descriptor) Label() string {
	return strings.Join(d[Transport:], "-")
}

// Less orders descriptors by file, transport, numeric bandwidth, congestion
// control and numeric feedback frequency.
func (d Descriptor) Less(o Descriptor) bool {
	for f := Field(0); f < FieldCount; f++ {
		if c := CompareField(f, d[f], o[f]); c != 0 {
			return c < 0
		}
	}
	return false
}

// CompareField compares two values of the same field. Bandwidth and feedback
// frequency compare by numeric value, the other fields lexically.
func CompareField(f Field, a, b string) int {
	if a == b {
		return 0
	}
	if f == Bandwidth || f == FeedbackFrequency {
		ka, okA := NumericKey(a)
		kb, okB := NumericKey(b)
		switch {
		case okA && okB && ka != kb:
			if ka < kb {
				return -1
			}
			return 1
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// NumericKey returns the ordering value of a parameter such as "1000000",
// "100ms" or "1.5s". Durations are expressed in milliseconds. Values with
// another unit suffix have the suffix stripped.
func NumericKey(v string) (float64, bool) {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n, !math.IsNaN(n)
	}
	if d, err := time.ParseDuration(v); err == nil {
		return float64(d) / float64(time.Millisecond), true
	}
	num := strings.TrimRightFunc(v, unicode.IsLetter)
	if num == "" || num == v {
		return 0, false
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LogFile is a discovered log together with its experiment parameters.
type LogFile struct {
	Path       string
	Descriptor Descriptor
}

// Dir is the experiment directory holding the log.
func (l LogFile) Dir() string {
	return filepath.Dir(l.Path)
}
