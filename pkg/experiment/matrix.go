package experiment

import (
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
	"k8s.io/klog/v2"
)

// Values holds the distinct values observed for each descriptor field and the
// directories in which experiment directories were found.
type Values struct {
	Fields [FieldCount][]string
	Dirs   []string
}

// ValuesOf collects the distinct field values of the given logs, each list in
// field order.
func ValuesOf(logs []LogFile) Values {
	var v Values
	var seen [FieldCount]map[string]bool
	for i := range seen {
		seen[i] = make(map[string]bool)
	}
	dirs := make(map[string]bool)
	for _, l := range logs {
		for f := Field(0); f < FieldCount; f++ {
			val := l.Descriptor[f]
			if !seen[f][val] {
				seen[f][val] = true
				v.Fields[f] = append(v.Fields[f], val)
			}
		}
		parent := filepath.Dir(l.Dir())
		if !dirs[parent] {
			dirs[parent] = true
			v.Dirs = append(v.Dirs, parent)
		}
	}
	for f := Field(0); f < FieldCount; f++ {
		SortValues(f, v.Fields[f])
	}
	sort.Strings(v.Dirs)
	return v
}

// CartesianMatrix returns every combination of the field values, in
// descriptor order, for which an experiment directory exists. Directories are
// looked up in values.Dirs, or directly under root when no directory is known.
func CartesianMatrix(root string, values Values) []Descriptor {
	lens := make([]int, FieldCount)
	for f := range lens {
		lens[f] = len(values.Fields[f])
		if lens[f] == 0 {
			return nil
		}
	}
	dirs := values.Dirs
	if len(dirs) == 0 {
		dirs = []string{root}
	}

	var matrix []Descriptor
	gen := combin.NewCartesianGenerator(lens)
	p := make([]int, FieldCount)
	for gen.Next() {
		p = gen.Product(p)
		var d Descriptor
		for f := range d {
			d[f] = values.Fields[f][p[f]]
		}
		if !experimentExists(dirs, d) {
			klog.V(2).Infof("Skipping %v: never run", d)
			continue
		}
		matrix = append(matrix, d)
	}
	sort.SliceStable(matrix, func(i, j int) bool {
		return matrix[i].Less(matrix[j])
	})
	return matrix
}

func experimentExists(dirs []string, d Descriptor) bool {
	for _, dir := range dirs {
		if fi, err := os.Stat(filepath.Join(dir, d.String())); err == nil && fi.IsDir() {
			return true
		}
	}
	return false
}
