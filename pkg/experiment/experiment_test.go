package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkExperiment(t *testing.T, root, name string, logs ...string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, os.ModePerm))
	for _, l := range logs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, l), []byte("n:1 Y:1 U:1 V:1 All:1 (inf)\n"), 0o644))
	}
}

func mustDescriptor(t *testing.T, name string) Descriptor {
	t.Helper()
	d, err := ParseDescriptor(name)
	require.NoError(t, err)
	return d
}

func TestDescriptorRoundTrip(t *testing.T) {
	for _, name := range []string{
		"video.mkv-udp-1000000-none-0s",
		"video.mkv-datagram-50000000-scream-100ms",
		"a-streamperframe-1-scream-1ms",
	} {
		d, err := ParseDescriptor(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, d.String())
	}
}

func TestParseDescriptorFields(t *testing.T) {
	d := mustDescriptor(t, "video.mkv-datagram-3000000-scream-500ms")
	assert.Equal(t, "video.mkv", d.File())
	assert.Equal(t, "datagram", d.Transport())
	assert.Equal(t, "3000000", d.Bandwidth())
	assert.Equal(t, "scream", d.CongestionControl())
	assert.Equal(t, "500ms", d.FeedbackFrequency())
	assert.Equal(t, "datagram-3000000-scream-500ms", d.Label())
}

func TestParseDescriptorMalformed(t *testing.T) {
	for _, name := range []string{
		"video.mkv-udp-1000000-none",
		"video-final.mkv-udp-1000000-none-0s",
		"video.mkv-udp--none-0s",
		"",
	} {
		_, err := ParseDescriptor(name)
		assert.ErrorIs(t, err, ErrMalformedDescriptor, name)
	}
}

func TestNumericOrderingDiffersFromLexical(t *testing.T) {
	values := []string{"100ms", "20ms"}
	SortValues(FeedbackFrequency, values)
	assert.Equal(t, []string{"20ms", "100ms"}, values)

	values = []string{"500ms", "100ms", "200ms", "0s", "1s"}
	SortValues(FeedbackFrequency, values)
	assert.Equal(t, []string{"0s", "100ms", "200ms", "500ms", "1s"}, values)

	values = []string{"50000000", "1000000", "3000000"}
	SortValues(Bandwidth, values)
	assert.Equal(t, []string{"1000000", "3000000", "50000000"}, values)
}

func TestNumericKey(t *testing.T) {
	k, ok := NumericKey("100ms")
	require.True(t, ok)
	assert.Equal(t, 100.0, k)

	k, ok = NumericKey("1000000")
	require.True(t, ok)
	assert.Equal(t, 1e6, k)

	k, ok = NumericKey("10Mbps")
	require.True(t, ok)
	assert.Equal(t, 10.0, k)

	_, ok = NumericKey("none")
	assert.False(t, ok)
}

func TestGroupFixedFields(t *testing.T) {
	var logs []LogFile
	for _, name := range []string{
		"v-udp-5000000-none-0s",
		"v-udp-1000000-none-0s",
		"v-datagram-1000000-none-0s",
		"v-udp-1000000-scream-100ms",
		"v-udp-20000000-none-0s",
	} {
		logs = append(logs, LogFile{Path: name + "/ssim.log", Descriptor: mustDescriptor(t, name)})
	}

	g := GroupLogs(logs, Selector{Transport: "udp", CongestionControl: "none"}, Bandwidth)
	var got []string
	for _, d := range g.Descriptors() {
		assert.Equal(t, "udp", d.Transport())
		assert.Equal(t, "none", d.CongestionControl())
		got = append(got, d.Bandwidth())
	}
	assert.Equal(t, []string{"1000000", "5000000", "20000000"}, got)
}

func TestGroupByFeedbackFrequency(t *testing.T) {
	var logs []LogFile
	for _, name := range []string{
		"v-udp-1-scream-100ms",
		"v-udp-1-scream-20ms",
		"v-udp-1-scream-1s",
	} {
		logs = append(logs, LogFile{Descriptor: mustDescriptor(t, name)})
	}
	g := GroupLogs(logs, Selector{CongestionControl: "scream"}, FeedbackFrequency)
	require.Equal(t, 3, g.Len())
	assert.Equal(t, "20ms", g.Logs[0].Descriptor.FeedbackFrequency())
	assert.Equal(t, "100ms", g.Logs[1].Descriptor.FeedbackFrequency())
	assert.Equal(t, "1s", g.Logs[2].Descriptor.FeedbackFrequency())
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	mkExperiment(t, root, "data/c0ffee/host/vid-udp-1000000-none-0s", "ssim.log", "psnr.log")
	mkExperiment(t, root, "data/c0ffee/host/vid-datagram-1000000-scream-100ms", "ssim.log", "scream.log")
	mkExperiment(t, root, "data/c0ffee/host/vid-udp-500000-none-0s", "psnr.log")

	logs, err := Discover(root, "ssim")
	require.NoError(t, err)
	var names []string
	for _, l := range logs {
		assert.Equal(t, "ssim.log", filepath.Base(l.Path))
		assert.Equal(t, filepath.Base(l.Dir()), l.Descriptor.String())
		names = append(names, l.Descriptor.String())
	}
	want := []string{"vid-datagram-1000000-scream-100ms", "vid-udp-1000000-none-0s"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("discovered descriptors mismatch (-want +got):\n%s", diff)
	}

	logs, err = Discover(root, "psnr")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "500000", logs[0].Descriptor.Bandwidth())
}

func TestDiscoverMalformedDirectory(t *testing.T) {
	root := t.TempDir()
	mkExperiment(t, root, "vid-udp-1000000-none-0s", "ssim.log")
	mkExperiment(t, root, "vid-udp-1000000", "ssim.log")

	_, err := Discover(root, "ssim")
	assert.ErrorIs(t, err, ErrMalformedDescriptor)
}

func TestCartesianMatrixDropsMissingExperiments(t *testing.T) {
	root := t.TempDir()
	mkExperiment(t, root, "a-udp-1-none-0s")

	var values Values
	values.Fields[FileID] = []string{"a"}
	values.Fields[Transport] = []string{"udp", "datagram"}
	values.Fields[Bandwidth] = []string{"1", "2"}
	values.Fields[CongestionControl] = []string{"none"}
	values.Fields[FeedbackFrequency] = []string{"0s"}

	matrix := CartesianMatrix(root, values)
	require.Len(t, matrix, 1)
	assert.Equal(t, "a-udp-1-none-0s", matrix[0].String())
}

func TestCartesianMatrixOrder(t *testing.T) {
	root := t.TempDir()
	names := []string{
		"v-udp-20000000-scream-100ms",
		"v-udp-1000000-scream-500ms",
		"v-udp-1000000-scream-20ms",
		"v-datagram-1000000-none-0s",
		"v-udp-1000000-none-0s",
	}
	var logs []LogFile
	for _, n := range names {
		mkExperiment(t, root, n, "ssim.log")
		logs = append(logs, LogFile{Path: filepath.Join(root, n, "ssim.log"), Descriptor: mustDescriptor(t, n)})
	}

	values := ValuesOf(logs)
	assert.Equal(t, []string{root}, values.Dirs)
	assert.Equal(t, []string{"0s", "20ms", "100ms", "500ms"}, values.Fields[FeedbackFrequency])

	var got []string
	for _, d := range CartesianMatrix(root, values) {
		got = append(got, d.String())
	}
	want := []string{
		"v-datagram-1000000-none-0s",
		"v-udp-1000000-none-0s",
		"v-udp-1000000-scream-20ms",
		"v-udp-1000000-scream-500ms",
		"v-udp-20000000-scream-100ms",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestCartesianMatrixEmpty(t *testing.T) {
	assert.Empty(t, CartesianMatrix(t.TempDir(), Values{}))
}

func TestGroupRecordsSelection(t *testing.T) {
	fixed := Selector{CongestionControl: "scream", Transport: "udp"}
	g := GroupLogs(nil, fixed, Bandwidth)
	assert.Equal(t, fixed, g.Fixed)
	assert.Equal(t, Bandwidth, g.SortKey)
	assert.Zero(t, g.Len())
	assert.Equal(t, "transport=udp,congestion_control=scream", g.Fixed.String())
	assert.Equal(t, "bandwidth", g.SortKey.String())
}

func TestIndexKeepsFirstOfDuplicates(t *testing.T) {
	root := t.TempDir()
	mkExperiment(t, root, "data/aaa/host/vid-udp-1-none-0s", "ssim.log")
	mkExperiment(t, root, "data/bbb/host/vid-udp-1-none-0s", "ssim.log")

	logs, err := Discover(root, "ssim")
	require.NoError(t, err)
	require.Len(t, logs, 2)

	idx := Index(logs)
	require.Len(t, idx, 1)
	l := idx[mustDescriptor(t, "vid-udp-1-none-0s")]
	assert.Equal(t, filepath.Join(root, "data/aaa/host/vid-udp-1-none-0s/ssim.log"), l.Path)
}
