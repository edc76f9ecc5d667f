package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"appdna/internal/errors"
)

// BackupSettings controls the snapshot taken before a model file is
// overwritten. Keep <= 0 retains every snapshot.
type BackupSettings struct {
	Enabled  bool
	Keep     int
	Compress bool
}

const backupTimeFormat = "20060102-150405.000"

// CreateBackup copies the current contents of path to a timestamped
// sibling file before the caller overwrites it. Returns the snapshot path,
// or "" when backups are disabled or path does not exist yet (nothing to
// preserve on a first save).
func (p *Provider) CreateBackup(path string, settings BackupSettings) (string, error) {
	if !settings.Enabled {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(errors.SerializeFailed, "failed to read model file for backup", err)
	}

	stamp := time.Now().Format(backupTimeFormat)
	var backupPath string
	if settings.Compress {
		backupPath = fmt.Sprintf("%s.bak-%s.gz", path, stamp)
		err = writeGzipFile(backupPath, data)
	} else {
		backupPath = fmt.Sprintf("%s.bak-%s.json", path, stamp)
		err = os.WriteFile(backupPath, data, 0o644)
	}
	if err != nil {
		return "", errors.Wrap(errors.SerializeFailed, "failed to write model backup", err)
	}

	if err := pruneBackups(path, settings.Keep); err != nil {
		p.logger.Warn("Backup pruning failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	p.logger.Debug("Model backup written", map[string]interface{}{
		"backup": filepath.Base(backupPath),
	})
	return backupPath, nil
}

// ListBackups returns every snapshot of the given model file, oldest first.
// The timestamp in the name sorts lexicographically in chronological order.
func ListBackups(path string) ([]string, error) {
	matches, err := filepath.Glob(path + ".bak-*")
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadBackup returns the raw model bytes of a snapshot, transparently
// decompressing .gz snapshots.
func ReadBackup(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return io.ReadAll(f)
}

func writeGzipFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		gz.Close()
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pruneBackups(path string, keep int) error {
	if keep <= 0 {
		return nil
	}
	matches, err := ListBackups(path)
	if err != nil {
		return err
	}
	for len(matches) > keep {
		if err := os.Remove(matches[0]); err != nil {
			return err
		}
		matches = matches[1:]
	}
	return nil
}
