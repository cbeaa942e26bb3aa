package backup

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	timestampLayout  = "2006-01-02_15-04-05"
	progressBatch    = 10
	archivePerm      = 0o644
	archiveExtension = ".zip"
)

type entry struct {
	abs string // absolute path on disk
	rel string // archive-relative name, slash-separated
}

// archive performs one full run: resolve the source root, enumerate,
// write the zip to a temporary path next to the destination directory,
// then commit it atomically under a collision-free name. It returns the
// committed filename and size.
func (e *Engine) archive(kind, world string) (string, int64, error) {
	srcRoot := e.settings.ServerDir()
	if kind == "world" {
		srcRoot = filepath.Join(srcRoot, world)
		if fi, err := os.Stat(srcRoot); err != nil || !fi.IsDir() {
			return "", 0, classify(ErrNotFound, "World folder '%s' not found.", world)
		}
	}

	dest, err := e.EnsureDestDir()
	if err != nil {
		return "", 0, err
	}

	entries, err := e.enumerate(srcRoot, dest)
	if err != nil {
		return "", 0, err
	}
	if len(entries) == 0 {
		return "", 0, ErrEmptySource
	}

	name := archiveName(kind, world)

	// The temp file lives in the destination's parent so the final rename
	// stays on one filesystem and commits atomically.
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".warden-*"+archiveExtension+".tmp")
	if err != nil {
		return "", 0, fmt.Errorf("create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := e.writeZip(tmp, entries); err != nil {
		cleanup()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("finalize archive: %w", err)
	}

	final := uniquePath(dest, name)
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", 0, fmt.Errorf("commit archive: %w", err)
	}
	_ = os.Chmod(final, archivePerm)

	size := int64(0)
	if fi, err := os.Stat(final); err == nil {
		size = fi.Size()
	}
	return filepath.Base(final), size, nil
}

// enumerate walks srcRoot collecting regular files, skipping everything
// under dest so the archive can never include itself or older archives.
// The cancellation flag is honored during the walk.
func (e *Engine) enumerate(srcRoot, dest string) ([]entry, error) {
	absRoot, err := filepath.Abs(srcRoot)
	if err != nil {
		return nil, err
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return nil, err
	}

	var entries []entry
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A file vanishing mid-walk is not a backup failure.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if e.cancelled() {
			return errCancelled
		}
		if d.IsDir() {
			if path == absDest || strings.HasPrefix(path, absDest+string(filepath.Separator)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		entries = append(entries, entry{abs: path, rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// writeZip streams every entry into w with fastest-level deflate. Progress
// is recomputed and cancellation rechecked every progressBatch entries to
// bound overhead on large trees.
func (e *Engine) writeZip(w io.Writer, entries []entry) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	total := len(entries)
	for i, en := range entries {
		if i%progressBatch == 0 {
			if e.cancelled() {
				_ = zw.Close()
				return errCancelled
			}
			e.setProgress(i, total)
		}
		if err := addFile(zw, en); err != nil {
			_ = zw.Close()
			return err
		}
	}
	e.setProgress(total, total)
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, en entry) error {
	f, err := os.Open(en.abs) // #nosec G304 -- path comes from the enumeration walk
	if err != nil {
		// Skip files deleted between enumeration and archival.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", en.rel, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", en.rel, err)
	}
	hdr, err := zip.FileInfoHeader(fi)
	if err != nil {
		return err
	}
	hdr.Name = en.rel
	hdr.Method = zip.Deflate
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("write %s: %w", en.rel, err)
	}
	return nil
}

func archiveName(kind, world string) string {
	ts := time.Now().Format(timestampLayout)
	if kind == "world" {
		return fmt.Sprintf("world_backup_%s_%s%s", world, ts, archiveExtension)
	}
	return fmt.Sprintf("full_backup_%s%s", ts, archiveExtension)
}

// uniquePath appends _1, _2, ... before the extension until the name is
// free in dir.
func uniquePath(dir, name string) string {
	base := strings.TrimSuffix(name, archiveExtension)
	candidate := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, archiveExtension))
	}
}
