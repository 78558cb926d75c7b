package experiment

import (
	"sort"
	"strings"
)

// Selector pins descriptor fields to fixed values.
type Selector map[Field]string

// Matches reports whether d carries every value of the selector.
func (s Selector) Matches(d Descriptor) bool {
	for f, v := range s {
		if d[f] != v {
			return false
		}
	}
	return true
}

func (s Selector) String() string {
	var parts []string
	for f := Field(0); f < FieldCount; f++ {
		if v, ok := s[f]; ok {
			parts = append(parts, f.String()+"="+v)
		}
	}
	return strings.Join(parts, ",")
}

// Group is an ordered set of logs sharing the values of Fixed.
type Group struct {
	Fixed   Selector
	SortKey Field
	Logs    []LogFile
}

// GroupLogs keeps the logs matching fixed and orders them by the numeric
// value of sortKey. Ties fall back to the full descriptor order.
func GroupLogs(logs []LogFile, fixed Selector, sortKey Field) Group {
	g := Group{Fixed: fixed, SortKey: sortKey}
	for _, l := range logs {
		if fixed.Matches(l.Descriptor) {
			g.Logs = append(g.Logs, l)
		}
	}
	sort.SliceStable(g.Logs, func(i, j int) bool {
		a, b := g.Logs[i].Descriptor, g.Logs[j].Descriptor
		if c := CompareField(sortKey, a[sortKey], b[sortKey]); c != 0 {
			return c < 0
		}
		return a.Less(b)
	})
	return g
}

func (g Group) Len() int {
	return len(g.Logs)
}

// Descriptors returns the descriptors of the group in order.
func (g Group) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(g.Logs))
	for _, l := range g.Logs {
		out = append(out, l.Descriptor)
	}
	return out
}

// SortValues orders raw field values the way GroupLogs orders descriptors.
func SortValues(f Field, values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return CompareField(f, values[i], values[j]) < 0
	})
}
