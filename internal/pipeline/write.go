package pipeline

import (
	"os"
	"path/filepath"
)

// writeArtifact writes data to target atomically: a temp file in the
// target's directory is populated, synced, and renamed into place, so a
// partially written artifact is never observable. The source file's
// permissions and modification time are carried over so the artifact can
// be cache-validated alongside its source.
func writeArtifact(target string, data []byte, source string) error {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".precompress-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(srcInfo.Mode().Perm()); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := replaceFile(tmp.Name(), target); err != nil {
		return err
	}

	mtime := srcInfo.ModTime()
	return os.Chtimes(target, mtime, mtime)
}

// replaceFile renames tmpPath over destPath, falling back to
// remove-then-rename on platforms where rename does not replace.
func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
