package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jamesainslie/purge/pkg/purge/event"
	"github.com/jamesainslie/purge/pkg/purge/quarantine"
	"github.com/jamesainslie/purge/pkg/purge/types"
	"github.com/jamesainslie/purge/pkg/purge/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// writeAged creates path with content and a modification time age before fixedNow.
func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("content of "+filepath.Base(path)), 0o644))
	mt := fixedNow.Add(-age)
	require.NoError(t, os.Chtimes(path, mt, mt))
}

// testEnv is a data root plus a separate program data directory.
type testEnv struct {
	root       string
	quarantine string
	rec        *event.Recorder
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	return &testEnv{
		root:       root,
		quarantine: filepath.Join(base, "ProgramData", "Quarantine"),
		rec:        &event.Recorder{},
	}
}

func (e *testEnv) options() Options {
	return Options{
		Roots:         []string{e.root},
		QuarantineDir: e.quarantine,
		Extensions:    []string{".pdf", ".docx", ".jpg"},
		RetentionDays: 1,
		RunID:         "test-run",
		Sink:          e.rec,
		Now:           func() time.Time { return fixedNow },
		DiskUsage:     func(string) (volume.Usage, bool) { return volume.Usage{}, false },
		PseudoMounts:  func() []string { return nil },
	}
}

func runScan(t *testing.T, s *Scanner) *types.Report {
	t.Helper()
	report, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

// itemTags returns the recorded tags without the run-structure events.
func itemTags(r *event.Recorder) []event.Tag {
	var out []event.Tag
	for _, tag := range r.Tags() {
		switch tag {
		case event.TagStart, event.TagUsage, event.TagEnd, event.TagReclaim:
			continue
		}
		out = append(out, tag)
	}
	return out
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing quarantine", opts: Options{}},
		{name: "relative quarantine", opts: Options{QuarantineDir: "Quarantine"}},
		{name: "negative retention", opts: Options{QuarantineDir: filepath.Join(t.TempDir(), "q"), RetentionDays: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}

	opts := Options{QuarantineDir: filepath.Join(t.TempDir(), "q")}
	require.NoError(t, opts.Validate())
	assert.NotNil(t, opts.Sink)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Now)
	assert.NotNil(t, opts.Mover)
	assert.NotNil(t, opts.ListRoots)
	assert.NotNil(t, opts.PseudoMounts)
	assert.NotNil(t, opts.DiskUsage)
	assert.Len(t, opts.RunID, 36)
}

func TestRun_MovesQualifyingFile(t *testing.T) {
	env := newEnv(t)
	src := filepath.Join(env.root, "reports", "q1.pdf")
	writeAged(t, src, 2*day)

	s := New(env.options())
	report := runScan(t, s)

	assert.Equal(t, []event.Tag{event.TagScan, event.TagScan, event.TagMatch, event.TagMove}, itemTags(env.rec))

	moves := env.rec.WithTag(event.TagMove)
	require.Len(t, moves, 1)
	assert.Equal(t, src, moves[0].Path)
	assert.Equal(t, 2, moves[0].AgeDays)

	want, err := quarantine.BuildDestination(env.quarantine, src)
	require.NoError(t, err)
	assert.Equal(t, want, moves[0].Destination)

	assert.NoFileExists(t, src)
	assert.FileExists(t, want)

	assert.Equal(t, types.StateCompleted, report.State)
	assert.Equal(t, types.StateCompleted, s.State())
	assert.Equal(t, int64(1), report.Moved)
	assert.Equal(t, int64(1), report.Matched)
	assert.Equal(t, int64(2), report.DirsScanned)
	assert.Equal(t, int64(len("content of q1.pdf")), report.BytesMoved)
	require.Len(t, report.Moves, 1)
	assert.Equal(t, want, report.Moves[0].Destination)
	assert.Equal(t, "test-run", report.RunID)
	assert.Equal(t, []string{env.root}, report.Roots)
}

func TestRun_DryRun(t *testing.T) {
	env := newEnv(t)
	src := filepath.Join(env.root, "q1.pdf")
	writeAged(t, src, 2*day)

	opts := env.options()
	opts.DryRun = true
	report := runScan(t, New(opts))

	assert.Equal(t, []event.Tag{event.TagScan, event.TagMatch}, itemTags(env.rec))
	assert.FileExists(t, src)
	assert.True(t, report.DryRun)
	assert.Zero(t, report.Moved)

	entries, err := os.ReadDir(env.quarantine)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_DryRunIdempotent(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "old.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "new.docx"), time.Hour)
	writeAged(t, filepath.Join(env.root, "sub", "photo.JPG"), 3*day)
	writeAged(t, filepath.Join(env.root, "sub", "notes.txt"), 30*day)

	opts := env.options()
	opts.DryRun = true

	first := &event.Recorder{}
	opts.Sink = first
	runScan(t, New(opts))

	second := &event.Recorder{}
	opts.Sink = second
	runScan(t, New(opts))

	assert.Equal(t, first.Paths(event.TagMatch), second.Paths(event.TagMatch))
	assert.Equal(t, first.Paths(event.TagSkip), second.Paths(event.TagSkip))
	assert.Equal(t, itemTags(first), itemTags(second))
	assert.Len(t, first.WithTag(event.TagMatch), 2)
	assert.Len(t, first.WithTag(event.TagSkip), 1)
}

func TestRun_RetentionBoundary(t *testing.T) {
	env := newEnv(t)
	exact := filepath.Join(env.root, "exact.pdf")
	older := filepath.Join(env.root, "older.pdf")
	fresh := filepath.Join(env.root, "fresh.pdf")
	writeAged(t, exact, day)
	writeAged(t, older, day+time.Second)
	writeAged(t, fresh, 0)

	opts := env.options()
	opts.DryRun = true
	runScan(t, New(opts))

	assert.Equal(t, []string{older}, env.rec.Paths(event.TagMatch))
	assert.Equal(t, []string{exact, fresh}, env.rec.Paths(event.TagSkip))

	skips := env.rec.WithTag(event.TagSkip)
	assert.Equal(t, 1, skips[0].AgeDays)
	assert.Equal(t, 0, skips[1].AgeDays)
	assert.True(t, skips[1].HasAge)
}

func TestRun_ZeroRetentionMatchesPastFiles(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "a.pdf"), time.Minute)

	opts := env.options()
	opts.RetentionDays = 0
	opts.DryRun = true
	runScan(t, New(opts))

	assert.Len(t, env.rec.WithTag(event.TagMatch), 1)
}

func TestRun_UnselectedExtensionsAreSilent(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "notes.txt"), 100*day)
	writeAged(t, filepath.Join(env.root, ".bashrc"), 100*day)
	writeAged(t, filepath.Join(env.root, "archive.tar.gz"), 100*day)

	report := runScan(t, New(env.options()))

	assert.Equal(t, []event.Tag{event.TagScan}, itemTags(env.rec))
	assert.Zero(t, report.Matched)
	assert.FileExists(t, filepath.Join(env.root, "notes.txt"))
}

func TestRun_ExclusionPruning(t *testing.T) {
	env := newEnv(t)
	excluded := filepath.Join(env.root, "excluded")
	writeAged(t, filepath.Join(excluded, "old.pdf"), 10*day)
	writeAged(t, filepath.Join(excluded, "deep", "older.pdf"), 20*day)
	writeAged(t, filepath.Join(env.root, "excluded2", "kept.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "node_modules", "pkg", "doc.pdf"), 10*day)

	opts := env.options()
	opts.Exclude = []string{excluded}
	opts.ExcludePatterns = []string{"node_*"}
	opts.DryRun = true
	runScan(t, New(opts))

	for _, e := range env.rec.Events() {
		if e.Path == "" {
			continue
		}
		assert.NotContains(t, e.Path, excluded+string(filepath.Separator), "event under excluded dir: %s", e)
		assert.NotEqual(t, excluded, e.Path)
		assert.NotContains(t, e.Path, "node_modules")
	}

	assert.Equal(t, []string{filepath.Join(env.root, "excluded2", "kept.pdf")}, env.rec.Paths(event.TagMatch))
}

func TestRun_QuarantineNeverTraversed(t *testing.T) {
	env := newEnv(t)
	env.quarantine = filepath.Join(env.root, "Quarantine")
	writeAged(t, filepath.Join(env.quarantine, "ROOT", "x", "old__deadbeef.pdf"), 50*day)
	writeAged(t, filepath.Join(env.root, "old.pdf"), 5*day)

	runScan(t, New(env.options()))

	assert.Equal(t, []string{env.root}, env.rec.Paths(event.TagScan))
	assert.Equal(t, []string{filepath.Join(env.root, "old.pdf")}, env.rec.Paths(event.TagMatch))
	assert.Len(t, env.rec.WithTag(event.TagMove), 1)
}

func TestRun_PreOrderLexical(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "b", "c", "z.pdf"), 0)
	writeAged(t, filepath.Join(env.root, "a", "y.pdf"), 0)
	writeAged(t, filepath.Join(env.root, "m.pdf"), 0)
	writeAged(t, filepath.Join(env.root, "b", "x.pdf"), 0)

	opts := env.options()
	opts.DryRun = true
	runScan(t, New(opts))

	var order []string
	for _, e := range env.rec.Events() {
		if e.Tag == event.TagScan || e.Tag == event.TagSkip {
			rel, err := filepath.Rel(env.root, e.Path)
			require.NoError(t, err)
			order = append(order, string(e.Tag)+" "+filepath.ToSlash(rel))
		}
	}

	assert.Equal(t, []string{
		"SCAN .",
		"SKIP m.pdf",
		"SCAN a",
		"SKIP a/y.pdf",
		"SCAN b",
		"SKIP b/x.pdf",
		"SCAN b/c",
		"SKIP b/c/z.pdf",
	}, order)
}

func TestRun_SymlinksIgnored(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	env := newEnv(t)
	outside := filepath.Join(t.TempDir(), "outside")
	writeAged(t, filepath.Join(outside, "target.pdf"), 30*day)
	require.NoError(t, os.Symlink(filepath.Join(outside, "target.pdf"), filepath.Join(env.root, "link.pdf")))
	require.NoError(t, os.Symlink(outside, filepath.Join(env.root, "linkdir")))

	runScan(t, New(env.options()))

	assert.Equal(t, []event.Tag{event.TagScan}, itemTags(env.rec))
	assert.FileExists(t, filepath.Join(outside, "target.pdf"))
}

func TestRun_StatFailures(t *testing.T) {
	env := newEnv(t)
	gone := filepath.Join(env.root, "gone.pdf")
	denied := filepath.Join(env.root, "denied.pdf")
	broken := filepath.Join(env.root, "broken.pdf")
	fine := filepath.Join(env.root, "fine.pdf")
	for _, p := range []string{gone, denied, broken, fine} {
		writeAged(t, p, 10*day)
	}

	opts := env.options()
	opts.DryRun = true
	s := New(opts)
	s.stat = func(path string) (fs.FileInfo, error) {
		switch path {
		case gone:
			return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
		case denied:
			return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrPermission}
		case broken:
			return nil, errors.New("i/o error")
		}
		return os.Stat(path)
	}
	report := runScan(t, s)

	assert.Equal(t, []string{gone}, env.rec.Paths(event.TagGone))
	assert.Equal(t, []string{denied}, env.rec.Paths(event.TagDenied))
	assert.Equal(t, []string{broken}, env.rec.Paths(event.TagError))
	assert.Equal(t, []string{fine}, env.rec.Paths(event.TagMatch))

	var statErr *types.StatError
	require.ErrorAs(t, env.rec.WithTag(event.TagDenied)[0].Err, &statErr)
	assert.Equal(t, denied, statErr.Path)

	assert.Equal(t, int64(1), report.Gone)
	assert.Equal(t, int64(1), report.Denied)
	assert.Equal(t, int64(1), report.Errors)
	assert.Equal(t, types.StateCompleted, report.State)
}

func TestRun_MoveFailures(t *testing.T) {
	env := newEnv(t)
	locked := filepath.Join(env.root, "locked.pdf")
	clash := filepath.Join(env.root, "clash.pdf")
	fine := filepath.Join(env.root, "fine.pdf")
	for _, p := range []string{locked, clash, fine} {
		writeAged(t, p, 10*day)
	}

	opts := env.options()
	opts.Mover = func(src, dst string) error {
		switch src {
		case locked:
			return &fs.PathError{Op: "rename", Path: src, Err: fs.ErrPermission}
		case clash:
			return &types.CollisionError{Source: src, Destination: dst}
		}
		return quarantine.Move(src, dst)
	}
	report := runScan(t, New(opts))

	denied := env.rec.WithTag(event.TagDenied)
	require.Len(t, denied, 1)
	assert.Equal(t, locked, denied[0].Path)
	assert.Equal(t, event.OpMove, denied[0].Op)

	errs := env.rec.WithTag(event.TagError)
	require.Len(t, errs, 1)
	assert.Equal(t, clash, errs[0].Path)
	assert.ErrorIs(t, errs[0].Err, types.ErrCollision)
	var moveErr *types.MoveError
	require.ErrorAs(t, errs[0].Err, &moveErr)
	assert.Equal(t, clash, moveErr.Source)

	assert.Equal(t, []string{fine}, env.rec.Paths(event.TagMove))
	assert.FileExists(t, locked)
	assert.FileExists(t, clash)
	assert.Equal(t, int64(3), report.Matched)
	assert.Equal(t, int64(1), report.Moved)
}

func TestRun_ExistingDestinationIsNotOverwritten(t *testing.T) {
	env := newEnv(t)
	src := filepath.Join(env.root, "report.pdf")
	writeAged(t, src, 10*day)

	dest, err := quarantine.BuildDestination(env.quarantine, src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
	require.NoError(t, os.WriteFile(dest, []byte("earlier run"), 0o644))

	runScan(t, New(env.options()))

	errs := env.rec.WithTag(event.TagError)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Err, types.ErrCollision)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(data))
	assert.FileExists(t, src)
}

func TestRun_UnreadableDirectory(t *testing.T) {
	env := newEnv(t)
	private := filepath.Join(env.root, "private")
	writeAged(t, filepath.Join(private, "secret.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "open.pdf"), 10*day)

	opts := env.options()
	opts.DryRun = true
	s := New(opts)
	s.readDir = func(dir string) ([]fs.DirEntry, error) {
		if dir == private {
			return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrPermission}
		}
		return os.ReadDir(dir)
	}
	runScan(t, s)

	assert.Equal(t, []string{private}, env.rec.Paths(event.TagDenied))
	assert.Equal(t, []string{env.root}, env.rec.Paths(event.TagScan))
	assert.Equal(t, []string{filepath.Join(env.root, "open.pdf")}, env.rec.Paths(event.TagMatch))
}

func TestRun_AutoDelete(t *testing.T) {
	env := newEnv(t)
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		writeAged(t, filepath.Join(env.quarantine, name), 0)
	}
	writeAged(t, filepath.Join(env.quarantine, "ROOT", "nested", "d.pdf"), 0)

	opts := env.options()
	opts.AutoDelete = true
	report := runScan(t, New(opts))

	info, err := os.Stat(env.quarantine)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(env.quarantine)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.True(t, report.Reclaimed)
	assert.Zero(t, report.ReclaimFailures)

	tags := env.rec.Tags()
	require.NotEmpty(t, tags)
	assert.Equal(t, event.TagReclaim, tags[len(tags)-1])
}

func TestRun_AutoDeleteReportsItemFailures(t *testing.T) {
	env := newEnv(t)
	opts := env.options()
	opts.AutoDelete = true

	s := New(opts)
	s.reclaim = func(dir string, onFailure func(*types.ReclaimItemError)) (int, error) {
		onFailure(&types.ReclaimItemError{Path: filepath.Join(dir, "locked.pdf"), Err: fs.ErrPermission})
		return 1, nil
	}
	report := runScan(t, s)

	assert.True(t, report.Reclaimed)
	assert.Equal(t, 1, report.ReclaimFailures)
	assert.Equal(t, types.StateCompleted, report.State)

	var failed []event.Event
	for _, e := range env.rec.WithTag(event.TagReclaim) {
		if e.Err != nil {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, fs.ErrPermission)
}

func TestRun_NoReclaimWithoutAutoDelete(t *testing.T) {
	env := newEnv(t)
	kept := filepath.Join(env.quarantine, "kept.pdf")
	writeAged(t, kept, 0)

	report := runScan(t, New(env.options()))

	assert.FileExists(t, kept)
	assert.False(t, report.Reclaimed)
	assert.Empty(t, env.rec.WithTag(event.TagReclaim))
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "old.pdf"), 10*day)
	kept := filepath.Join(env.quarantine, "kept.pdf")
	writeAged(t, kept, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := env.options()
	opts.AutoDelete = true
	report, err := New(opts).Run(ctx)
	require.NoError(t, err)

	assert.True(t, report.Interrupted)
	assert.Empty(t, itemTags(env.rec))
	assert.Len(t, env.rec.WithTag(event.TagEnd), 1)
	assert.FileExists(t, kept)
	assert.False(t, report.Reclaimed)
	assert.Equal(t, types.StateCompleted, report.State)
}

func TestRun_CancelledMidTraversal(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "a.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "b.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "sub", "c.pdf"), 10*day)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := env.options()
	opts.DryRun = true
	opts.Sink = event.Multi(env.rec, event.SinkFunc(func(e event.Event) {
		if e.Tag == event.TagMatch {
			cancel()
		}
	}))

	report, err := New(opts).Run(ctx)
	require.NoError(t, err)

	assert.True(t, report.Interrupted)
	assert.Equal(t, []string{filepath.Join(env.root, "a.pdf")}, env.rec.Paths(event.TagMatch))
	assert.Equal(t, []string{env.root}, env.rec.Paths(event.TagScan))

	ends := env.rec.WithTag(event.TagEnd)
	require.Len(t, ends, 1)
	assert.Contains(t, ends[0].Message, "interrupted")
}

func TestRun_ResourceSetupError(t *testing.T) {
	env := newEnv(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	opts := env.options()
	opts.QuarantineDir = filepath.Join(blocker, "Quarantine")
	report, err := New(opts).Run(context.Background())

	assert.Nil(t, report)
	var setupErr *types.ResourceSetupError
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, opts.QuarantineDir, setupErr.Path)
	assert.Empty(t, env.rec.Events())
}

func TestRun_EnumeratesRootsWhenNoneGiven(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "old.pdf"), 10*day)

	opts := env.options()
	opts.Roots = nil
	opts.DryRun = true
	opts.ListRoots = func() ([]volume.Root, error) {
		return []volume.Root{{Path: env.root}, {Path: filepath.Join(env.root, "nested")}}, nil
	}
	report := runScan(t, New(opts))

	assert.Equal(t, []string{env.root}, report.Roots)
	assert.Len(t, env.rec.WithTag(event.TagMatch), 1)

	opts.ListRoots = func() ([]volume.Root, error) { return nil, errors.New("no mounts") }
	_, err := New(opts).Run(context.Background())
	var setupErr *types.ResourceSetupError
	assert.ErrorAs(t, err, &setupErr)
}

func TestRun_PseudoMountsBeneathRootAreNeverScanned(t *testing.T) {
	env := newEnv(t)
	shm := filepath.Join(env.root, "dev", "shm")
	proc := filepath.Join(env.root, "proc")
	writeAged(t, filepath.Join(shm, "segment.pdf"), 10*day)
	writeAged(t, filepath.Join(proc, "1", "cmdline.pdf"), 10*day)
	writeAged(t, filepath.Join(env.root, "dev", "report.pdf"), 10*day)

	opts := env.options()
	opts.Roots = nil
	opts.ListRoots = func() ([]volume.Root, error) {
		return []volume.Root{{Path: env.root, FSType: "ext4"}}, nil
	}
	opts.PseudoMounts = func() []string { return []string{proc, shm} }
	report := runScan(t, New(opts))

	assert.Equal(t, []string{env.root, filepath.Join(env.root, "dev")}, env.rec.Paths(event.TagScan))
	assert.Equal(t, []string{filepath.Join(env.root, "dev", "report.pdf")}, env.rec.Paths(event.TagMatch))
	assert.Equal(t, int64(1), report.Moved)
	assert.FileExists(t, filepath.Join(shm, "segment.pdf"))
	assert.FileExists(t, filepath.Join(proc, "1", "cmdline.pdf"))
}

func TestRun_RootInsidePseudoMountIsWalked(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "scratch", "old.pdf"), 10*day)

	opts := env.options()
	opts.DryRun = true
	opts.PseudoMounts = func() []string { return []string{env.root, filepath.Dir(env.root)} }
	runScan(t, New(opts))

	assert.Equal(t, []string{env.root, filepath.Join(env.root, "scratch")}, env.rec.Paths(event.TagScan))
	assert.Len(t, env.rec.WithTag(event.TagMatch), 1)
}

func TestRun_EventsUseInjectedClock(t *testing.T) {
	env := newEnv(t)
	writeAged(t, filepath.Join(env.root, "old.pdf"), 10*day)

	runScan(t, New(env.options()))

	events := env.rec.Events()
	require.NotEmpty(t, events)
	for _, e := range events {
		assert.True(t, fixedNow.Equal(e.Time), "%s event stamped %s", e.Tag, e.Time)
	}
}

func TestRun_Header(t *testing.T) {
	env := newEnv(t)

	opts := env.options()
	opts.Header = []string{"ProgramDataDir=/pd | Quarantine=/pd/Quarantine | Logs=/pd/Logs"}
	opts.DiskUsage = func(string) (volume.Usage, bool) {
		return volume.Usage{Total: 4 << 30, Used: 1 << 30, Free: 3 << 30}, true
	}
	runScan(t, New(opts))

	starts := env.rec.WithTag(event.TagStart)
	require.Len(t, starts, 2)
	assert.Contains(t, starts[0].Message, "START scan")
	assert.Contains(t, starts[0].Message, "retention_days=1")
	assert.Contains(t, starts[0].Message, "dry_run=false")
	assert.Equal(t, opts.Header[0], starts[1].Message)

	usage := env.rec.WithTag(event.TagUsage)
	require.Len(t, usage, 2)
	assert.Equal(t, "=== Disk Usage ===", usage[0].Message)
	assert.Equal(t, env.root+" - Total: 4.0 GiB, Used: 1.0 GiB, Free: 3.0 GiB", usage[1].Message)

	tags := env.rec.Tags()
	assert.Equal(t, event.TagStart, tags[0])
	assert.Equal(t, event.TagEnd, tags[len(tags)-1])
}
