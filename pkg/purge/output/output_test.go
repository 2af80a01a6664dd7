package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var movedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleReport() *types.Report {
	return &types.Report{
		RunID:       "0b6f6a1e-8f4c-4c1a-9a51-5c3a2e0d9f10",
		Roots:       []string{"/data"},
		DirsScanned: 1200,
		Matched:     3,
		Skipped:     5,
		Moved:       2,
		BytesMoved:  3 * types.MiB,
		Denied:      1,
		Moves: []types.MoveRecord{
			{Source: "/data/a.pdf", Destination: "/q/ROOT/data/a__1a2b3c4d.pdf", Size: types.MiB, AgeDays: 9, MovedAt: movedAt},
			{Source: "/data/b.zip", Destination: "/q/ROOT/data/b__5e6f7a8b.zip", Size: 2 * types.MiB, AgeDays: 40, MovedAt: movedAt},
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

func sampleResult() *Result {
	rep := sampleReport()
	return &Result{
		Title:  "Scan",
		Report: FromReport(rep),
		Files:  FilesFromMoves(rep.Moves),
	}
}

func TestFromReport(t *testing.T) {
	rep := FromReport(sampleReport())
	require.NotNil(t, rep)

	assert.Equal(t, "3.0 MiB", rep.BytesHuman)
	assert.Equal(t, "1.5s", rep.ElapsedHuman)
	assert.Equal(t, int64(1), rep.Failures())
	assert.Nil(t, FromReport(nil))
}

func TestFilesFromMoves(t *testing.T) {
	files := FilesFromMoves(sampleReport().Moves)
	require.Len(t, files, 2)
	assert.Equal(t, "1.0 MiB", files[0].SizeHuman)
	assert.Equal(t, "/q/ROOT/data/b__5e6f7a8b.zip", files[1].Destination)
	assert.Equal(t, 40, files[1].AgeDays)
}

func TestResultTotalSize(t *testing.T) {
	assert.Equal(t, 3*types.MiB, sampleResult().TotalSize())
	assert.Equal(t, int64(0), (&Result{}).TotalSize())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func() Formatter { return &PlainFormatter{} })

	f, err := r.Get("test")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = r.Get("missing")
	assert.Error(t, err)

	assert.Equal(t, []string{"test"}, r.Available())
}

func TestDefaultRegistry(t *testing.T) {
	for _, name := range []string{"json", "jsonl", "paths", "plain", "pretty", "template", "yaml"} {
		_, err := Get(name)
		assert.NoError(t, err, "formatter %q should be registered", name)
	}
	assert.Contains(t, Available(), "pretty")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Contains(t, decoded, "report")
	assert.Contains(t, decoded, "files")
	assert.NotContains(t, decoded, "volumes")

	report := decoded["report"].(map[string]any)
	assert.Equal(t, "1.5s", report["elapsed"])
	assert.Equal(t, float64(2), report["moved"])
}

func TestJSONLFormatter(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult()
	result.Volumes = []Volume{{Path: "/"}}
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, result))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"source":"/data/a.pdf"`)
	assert.Contains(t, lines[2], `"path":"/"`)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "report")
	assert.Contains(t, buf.String(), "destination: /q/ROOT/data/a__1a2b3c4d.pdf")
	assert.Contains(t, buf.String(), "# purge: Scan")

	buf.Reset()
	require.NoError(t, (&YAMLFormatter{}).Format(&buf, &Result{Volumes: []Volume{{Path: "/"}}}))
	assert.NotContains(t, buf.String(), "#")
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult()
	result.Volumes = []Volume{
		{Path: "/", FSType: "ext4", Available: true, Total: 4 * uint64(types.GiB), Used: uint64(types.GiB), Free: 3 * uint64(types.GiB)},
		{Path: "/mnt/gone"},
	}
	result.History = []Run{{ID: "0b6f6a1e-8f4c", Operation: "scan", DryRun: true, Timestamp: movedAt, Files: 2}}
	require.NoError(t, (&PlainFormatter{}).Format(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "MOVED")
	assert.Contains(t, out, "2 (3.0 MiB)")
	assert.Contains(t, out, "4.0 GiB")
	assert.Contains(t, out, "/mnt/gone")
	assert.Contains(t, out, "scan (dry-run)")
	assert.Contains(t, out, "0b6f6a1e ")
	assert.Contains(t, out, "/data/b.zip")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain ANSI escapes")
}

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Scan")
	assert.Contains(t, out, "0b6f6a1e")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "/data/a.pdf")
	assert.Contains(t, out, "-> /q/ROOT/data/a__1a2b3c4d.pdf")
	assert.Contains(t, out, "1 failures")
	assert.NotContains(t, out, "[dry run]")

	buf.Reset()
	dry := sampleResult()
	dry.Report.DryRun = true
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, dry))
	assert.Contains(t, buf.String(), "[dry run]")
}

func TestPrettyFormatter_Quarantine(t *testing.T) {
	var buf bytes.Buffer
	result := &Result{Quarantine: &Quarantine{
		Dir:     "/srv/purge/Quarantine",
		Files:   4,
		Bytes:   4096,
		Indexed: 4,
		Locked:  true,
		LockPID: 4242,
		Volumes: []QuarantineVolume{{Tag: "ROOT", Files: 4, Bytes: 4096}},
	}}
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "/srv/purge/Quarantine")
	assert.Contains(t, out, "4.0 KiB")
	assert.Contains(t, out, "pid 4242")
	assert.Contains(t, out, "ROOT")
}

func TestPrettyFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, &Result{Warnings: []string{"index disabled"}}))
	assert.Contains(t, buf.String(), "Nothing to show")
	assert.Contains(t, buf.String(), "index disabled")
}

func TestPathsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PathsFormatter{}).Format(&buf, sampleResult()))
	assert.Equal(t, "/q/ROOT/data/a__1a2b3c4d.pdf\n/q/ROOT/data/b__5e6f7a8b.zip\n", buf.String())

	buf.Reset()
	require.NoError(t, (&PathsFormatter{}).Format(&buf, &Result{Volumes: []Volume{{Path: "/"}, {Path: "/mnt/usb"}}}))
	assert.Equal(t, "/\n/mnt/usb\n", buf.String())
}

func TestTemplateFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTemplateFormatter(`{{range .Files}}{{bytes .Size}} {{date .MovedAt "2006-01-02"}}
{{end}}total={{bytes .TotalSize}}`)
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, "1.0 MiB 2026-03-01\n2.0 MiB 2026-03-01\ntotal=3.0 MiB", buf.String())

	bad := NewTemplateFormatter("{{.Nope")
	assert.Error(t, bad.Format(&bytes.Buffer{}, sampleResult()))
}

func TestTemplateFormatter_Helpers(t *testing.T) {
	result := sampleResult()
	result.Files = []File{
		{Source: "/data/a.pdf", Destination: "/pd/Quarantine/ROOT/data/a__1a2b3c4d.pdf", RunID: "0b6f6a1e-8f4c-4c1a"},
		{Source: "/x/b.pdf", Destination: "/elsewhere/b.pdf"},
	}

	var buf bytes.Buffer
	f := NewTemplateFormatter(`{{range .Files}}[{{tag .Destination}}] {{short .RunID}}
{{end}}{{.FileCount}} files, {{.Failures}} failures`)
	require.NoError(t, f.Format(&buf, result))
	assert.Equal(t, "[ROOT] 0b6f6a1e\n[] \n2 files, 1 failures", buf.String())
}

func TestVolumeTagOf(t *testing.T) {
	tests := []struct {
		dest string
		want string
	}{
		{"/pd/Quarantine/C/Users/x__00000000.pdf", "C"},
		{"/pd/Quarantine/ROOT/home/Quarantine/x__00000000.pdf", "ROOT"},
		{"/pd/Quarantine/x.pdf", ""},
		{"/tmp/x.pdf", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, volumeTagOf(tt.dest), tt.dest)
	}
}

func TestUsagePercent(t *testing.T) {
	assert.Equal(t, "0%", usagePercent(0, 0))
	assert.Equal(t, "25%", usagePercent(1, 4))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
