package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestArchiveName pins the timestamped filename format.
func TestArchiveName(t *testing.T) {
	ts := time.Date(2026, 8, 26, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "ragstack-ollama-20260826-150405.tar.gz", ArchiveName("ragstack-ollama", ts))

	// Distinct timestamps never collide.
	later := ts.Add(time.Second)
	assert.NotEqual(t, ArchiveName("v", ts), ArchiveName("v", later))
}

// fakeRun records docker invocations and creates the archive file the
// real tar container would have produced.
type fakeRun struct {
	calls [][]string
	fail  bool
}

func (f *fakeRun) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail {
		return []byte("tar: /data: No such file or directory"), errors.New("exit status 1")
	}
	// Recover the host backup directory (the absolute -v mount source)
	// and the archive name ("czf /backup/<name>"), then create the file
	// the real tar container would have produced.
	hostDir := ""
	archive := ""
	for i, arg := range args {
		if arg == "-v" && i+1 < len(args) && filepath.IsAbs(splitMount(args[i+1])) {
			hostDir = splitMount(args[i+1])
		}
		if arg == "czf" && i+1 < len(args) {
			archive = filepath.Base(args[i+1])
		}
	}
	if hostDir != "" && archive != "" {
		_ = os.WriteFile(filepath.Join(hostDir, archive), []byte("gzip-data"), 0o644)
	}
	return nil, nil
}

// splitMount extracts the source of a "src:dst" mount spec.
func splitMount(spec string) string {
	for i := len(spec) - 1; i >= 0; i-- {
		if spec[i] == ':' {
			return spec[:i]
		}
	}
	return spec
}

// TestArchiveVolume verifies the docker run invocation shape and the
// returned archive record.
func TestArchiveVolume(t *testing.T) {
	dir := t.TempDir()
	f := &fakeRun{}
	ts := time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)
	a := &Archiver{Dir: dir, Image: "busybox:stable", now: func() time.Time { return ts }, run: f.run}

	archive, err := a.ArchiveVolume(context.Background(), "ragstack-ollama")
	require.NoError(t, err)

	assert.Equal(t, "ragstack-ollama", archive.VolumeName)
	assert.Equal(t, filepath.Join(dir, "ragstack-ollama-20260826-103000.tar.gz"), archive.Path)
	assert.Equal(t, ts, archive.CreatedAt)
	assert.Equal(t, int64(len("gzip-data")), archive.Size)

	require.Len(t, f.calls, 1)
	call := f.calls[0]
	assert.Equal(t, "docker", call[0])
	assert.Contains(t, call, "ragstack-ollama:/data:ro", "volume must be mounted read-only")
	assert.Contains(t, call, "busybox:stable")
	assert.Contains(t, call, "tar")
}

// TestArchiveStack verifies exactly one archive per volume and abort on
// first failure.
func TestArchiveStack(t *testing.T) {
	t.Run("two volumes produce two archives", func(t *testing.T) {
		dir := t.TempDir()
		f := &fakeRun{}
		a := &Archiver{Dir: dir, Image: "busybox:stable", run: f.run}

		archives, err := a.ArchiveStack(context.Background(),
			[]string{"ragstack-ollama", "ragstack-webui"})
		require.NoError(t, err)
		require.Len(t, archives, 2)
		assert.Equal(t, "ragstack-ollama", archives[0].VolumeName)
		assert.Equal(t, "ragstack-webui", archives[1].VolumeName)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("failure aborts the run", func(t *testing.T) {
		f := &fakeRun{fail: true}
		a := &Archiver{Dir: t.TempDir(), Image: "busybox:stable", run: f.run}

		archives, err := a.ArchiveStack(context.Background(), []string{"vol-a", "vol-b"})
		require.Error(t, err)
		assert.Empty(t, archives)
		assert.Len(t, f.calls, 1, "second volume must not be attempted after a failure")
		assert.Contains(t, err.Error(), "vol-a")
	})
}
