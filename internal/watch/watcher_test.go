package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

func startWatcher(t *testing.T, root string, opts Options) <-chan Event {
	t.Helper()
	w, err := New(root, opts)
	require.NoError(t, err)

	events := make(chan Event, 64)
	w.SetCallback(func(batch []Event) {
		for _, ev := range batch {
			select {
			case events <- ev:
			default:
			}
		}
	})
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return events
}

// waitFor returns the first event matching kind and path, failing after a timeout
func waitFor(t *testing.T, events <-chan Event, kind EventKind, path string) Event {
	t.Helper()
	want := pathutil.Normalize(path)
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind && ev.Path == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event for %s", kind, want)
			return Event{}
		}
	}
}

func testOpts() Options {
	return Options{Debounce: 20 * time.Millisecond, Target: "all"}
}

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestWatcher_FileCreated(t *testing.T) {
	root := realTempDir(t)
	events := startWatcher(t, root, testOpts())

	path := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	waitFor(t, events, FileCreated, path)
}

func TestWatcher_FileModified(t *testing.T) {
	root := realTempDir(t)
	path := filepath.Join(root, "existing.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))
	events := startWatcher(t, root, testOpts())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(" two")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	waitFor(t, events, FileModified, path)
}

func TestWatcher_FileDeleted(t *testing.T) {
	root := realTempDir(t)
	path := filepath.Join(root, "doomed.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	events := startWatcher(t, root, testOpts())

	require.NoError(t, os.Remove(path))
	waitFor(t, events, FileDeleted, path)
}

func TestWatcher_FileRenamed(t *testing.T) {
	root := realTempDir(t)
	oldPath := filepath.Join(root, "old.txt")
	newPath := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(oldPath, []byte("x"), 0644))
	events := startWatcher(t, root, testOpts())

	require.NoError(t, os.Rename(oldPath, newPath))
	waitFor(t, events, FileRenamed, oldPath)
}

func TestWatcher_FolderLifecycle(t *testing.T) {
	root := realTempDir(t)
	events := startWatcher(t, root, testOpts())

	dir := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(dir, 0755))
	waitFor(t, events, FolderCreated, dir)

	// the new folder is watched too
	inner := filepath.Join(dir, "inner.txt")
	require.NoError(t, os.WriteFile(inner, []byte("x"), 0644))
	waitFor(t, events, FileCreated, inner)

	renamed := filepath.Join(root, "renamed")
	require.NoError(t, os.Rename(dir, renamed))
	waitFor(t, events, FolderRenamed, dir)
}

func TestWatcher_FolderDeleted(t *testing.T) {
	root := realTempDir(t)
	dir := filepath.Join(root, "gone")
	require.NoError(t, os.Mkdir(dir, 0755))
	events := startWatcher(t, root, testOpts())

	require.NoError(t, os.Remove(dir))
	waitFor(t, events, FolderDeleted, dir)
}

func TestWatcher_TargetFilter(t *testing.T) {
	root := realTempDir(t)
	opts := testOpts()
	opts.Target = "folders"
	events := startWatcher(t, root, opts)

	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0644))
	dir := filepath.Join(root, "seen")
	require.NoError(t, os.Mkdir(dir, 0755))

	ev := waitFor(t, events, FolderCreated, dir)
	assert.True(t, ev.Kind.IsFolder())
	select {
	case ev := <-events:
		assert.True(t, ev.Kind.IsFolder(), "unexpected file event %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_ExcludedPaths(t *testing.T) {
	root := realTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0755))
	opts := testOpts()
	opts.Exclude = []string{"**/node_modules/**", "**/*.log"}
	events := startWatcher(t, root, opts)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "pkg.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0644))
	marker := filepath.Join(root, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0644))

	// Events are delivered in path order within a batch, so anything excluded
	// would surface no later than the marker's batch.
	waitFor(t, events, FileCreated, marker)
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_Stats(t *testing.T) {
	root := realTempDir(t)
	w, err := New(root, testOpts())
	require.NoError(t, err)

	done := make(chan struct{}, 1)
	w.SetCallback(func([]Event) {
		select {
		case done <- struct{}{}:
		default:
		}
	})
	require.NoError(t, w.Start())
	assert.True(t, w.Stats().IsActive)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	require.NoError(t, w.Stop())
	stats := w.Stats()
	assert.False(t, stats.IsActive)
	assert.GreaterOrEqual(t, stats.EventsDelivered, int64(1))
	assert.False(t, stats.LastEventTime.IsZero())
}

func TestNew_InvalidRoot(t *testing.T) {
	root := t.TempDir()
	_, err := New(filepath.Join(root, "missing"), testOpts())
	assert.Error(t, err)

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, testOpts())
	assert.ErrorContains(t, err, "not a directory")
}

func TestOptionsMatches(t *testing.T) {
	tests := []struct {
		target string
		kind   EventKind
		want   bool
	}{
		{"all", FileCreated, true},
		{"", FolderDeleted, true},
		{"files", FileRenamed, true},
		{"files", FolderRenamed, false},
		{"folders", FolderCreated, true},
		{"folders", FileModified, false},
		{"file-deleted", FileDeleted, true},
		{"file-deleted", FolderDeleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.target+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, Options{Target: tt.target}.Matches(tt.kind))
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default("")
	cfg.Watch.DebounceMs = 150
	cfg.Watch.Target = "files"
	cfg.Exclude = []string{"**/vendor/**"}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 150*time.Millisecond, opts.Debounce)
	assert.Equal(t, "files", opts.Target)
	assert.Equal(t, []string{"**/vendor/**"}, opts.Exclude)
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	d := newEventDebouncer(time.Hour)
	var got []Event
	d.setCallback(func(batch []Event) { got = batch })

	d.addEvent(Event{Kind: FileCreated, Path: "/r/b.txt"})
	d.addEvent(Event{Kind: FileModified, Path: "/r/b.txt"})
	d.addEvent(Event{Kind: FileModified, Path: "/r/a.txt"})
	d.addEvent(Event{Kind: FileDeleted, Path: "/r/a.txt"})
	d.flush()
	d.stop()

	assert.Equal(t, []Event{
		{Kind: FileDeleted, Path: "/r/a.txt"},
		{Kind: FileCreated, Path: "/r/b.txt"},
	}, got)
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	d := newEventDebouncer(time.Hour)
	called := false
	d.setCallback(func([]Event) { called = true })

	d.addEvent(Event{Kind: FileCreated, Path: "/r/x"})
	d.stop()
	d.flush()
	d.addEvent(Event{Kind: FileCreated, Path: "/r/y"})
	d.flush()

	assert.False(t, called)
}

func TestDebouncer_FolderEventsWin(t *testing.T) {
	d := newEventDebouncer(time.Hour)
	var got []Event
	d.setCallback(func(batch []Event) { got = batch })

	d.addEvent(Event{Kind: FolderRenamed, Path: "/r/sub"})
	d.addEvent(Event{Kind: FileRenamed, Path: "/r/sub"})
	d.flush()
	d.stop()

	assert.Equal(t, []Event{{Kind: FolderRenamed, Path: "/r/sub"}}, got)
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	root := realTempDir(t)
	w, err := New(root, testOpts())
	require.NoError(t, err)
	w.SetCallback(func([]Event) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return w.Stats().IsActive }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
