package experiment

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"
)

// Discover walks root and returns every file whose name ends with
// "<suffix>.log", with the descriptor parsed from its parent directory.
// A parent directory that is not a valid descriptor aborts the discovery.
func Discover(root, suffix string) ([]LogFile, error) {
	if suffix == "" {
		return nil, fmt.Errorf("empty log suffix")
	}
	name := suffix + ".log"
	var logs []LogFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), name) {
			return nil
		}
		parent := filepath.Base(filepath.Dir(path))
		desc, err := ParseDescriptor(parent)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logs = append(logs, LogFile{Path: path, Descriptor: desc})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].Descriptor == logs[j].Descriptor {
			return logs[i].Path < logs[j].Path
		}
		return logs[i].Descriptor.Less(logs[j].Descriptor)
	})
	klog.V(1).Infof("Discovered %d %s logs under %s", len(logs), suffix, root)
	return logs, nil
}

// Index maps descriptors to their log files.
func Index(logs []LogFile) map[Descriptor]LogFile {
	idx := make(map[Descriptor]LogFile, len(logs))
	for _, l := range logs {
		if _, dup := idx[l.Descriptor]; dup {
			klog.Warningf("Experiment %v found more than once, using %s", l.Descriptor, idx[l.Descriptor].Path)
			continue
		}
		idx[l.Descriptor] = l
	}
	return idx
}
