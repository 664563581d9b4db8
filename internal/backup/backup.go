// Package backup archives the stack's named volumes into timestamped
// .tar.gz files.
//
// Archiving happens inside a throwaway container: the volume is mounted
// read-only at /data, the backup directory at /backup, and tar runs in
// between. This works regardless of where the volume driver stores its
// data and needs no elevated privileges on the host.
package backup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmr-tortoise/ragstack/internal/model"
)

// runCommand abstracts subprocess execution so tests can fake the
// docker invocation.
type runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)

// Archiver writes volume archives into a backup directory.
type Archiver struct {
	// Dir is the backup directory, created on first use.
	Dir string

	// Image is the throwaway container image used to run tar.
	// Must provide tar with gzip support (busybox does).
	Image string

	// now and run are injection points for tests. Zero values mean
	// time.Now and real command execution.
	now func() time.Time
	run runCommand
}

// NewArchiver returns an Archiver writing to dir using the given image.
func NewArchiver(dir, image string) *Archiver {
	return &Archiver{Dir: dir, Image: image}
}

// ArchiveName builds the archive filename for a volume at a timestamp.
// Second granularity: two runs in the same second would collide, which
// matches the original scripts' behavior and doesn't matter in practice.
func ArchiveName(volume string, ts time.Time) string {
	return fmt.Sprintf("%s-%s.tar.gz", volume, ts.Format("20060102-150405"))
}

// ArchiveVolume archives one named volume and returns the resulting
// archive record.
func (a *Archiver) ArchiveVolume(ctx context.Context, volume string) (model.BackupArchive, error) {
	ts := a.clock()()

	absDir, err := filepath.Abs(a.Dir)
	if err != nil {
		return model.BackupArchive{}, fmt.Errorf("failed to resolve backup directory %s: %w", a.Dir, err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return model.BackupArchive{}, fmt.Errorf("failed to create backup directory %s: %w", absDir, err)
	}

	name := ArchiveName(volume, ts)

	// tar reads the volume through a read-only mount so a backup can
	// never corrupt live data, even against a running stack.
	output, err := a.runner()(ctx, "docker",
		"run", "--rm",
		"-v", volume+":/data:ro",
		"-v", absDir+":/backup",
		a.Image,
		"tar", "czf", "/backup/"+name, "-C", "/data", ".",
	)
	if err != nil {
		return model.BackupArchive{}, model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("failed to archive volume %q: %s", volume, strings.TrimSpace(string(output))),
			err,
		)
	}

	archive := model.BackupArchive{
		VolumeName: volume,
		Path:       filepath.Join(absDir, name),
		CreatedAt:  ts,
	}
	if info, err := os.Stat(archive.Path); err == nil {
		archive.Size = info.Size()
	}
	return archive, nil
}

// ArchiveStack archives each volume in order and returns one record per
// volume. The first failure aborts the run - a half backup is reported
// as a failure, not silently passed off as complete.
func (a *Archiver) ArchiveStack(ctx context.Context, volumes []string) ([]model.BackupArchive, error) {
	archives := make([]model.BackupArchive, 0, len(volumes))
	for _, vol := range volumes {
		archive, err := a.ArchiveVolume(ctx, vol)
		if err != nil {
			return archives, err
		}
		archives = append(archives, archive)
	}
	return archives, nil
}

func (a *Archiver) clock() func() time.Time {
	if a.now != nil {
		return a.now
	}
	return time.Now
}

func (a *Archiver) runner() runCommand {
	if a.run != nil {
		return a.run
	}
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return exec.CommandContext(ctx, name, args...).CombinedOutput()
	}
}
