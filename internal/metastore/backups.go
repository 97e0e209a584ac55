package metastore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// RetentionPolicy bounds the backup directory: the newest KeepRaw backups
// stay as plain JSON, older ones are xz-compressed up to KeepCompressed, and
// anything beyond that is removed.
type RetentionPolicy struct {
	KeepRaw        int
	KeepCompressed int
}

// Apply enforces the policy over dir. Backup filenames embed their creation
// timestamp, so lexical order is age order.
func (p RetentionPolicy) Apply(dir string) error {
	raw, compressed, err := listBackups(dir)
	if err != nil {
		return err
	}

	keepRaw := p.KeepRaw
	if keepRaw < 1 {
		keepRaw = 1
	}
	for _, name := range olderThan(raw, keepRaw) {
		src := filepath.Join(dir, name)
		if err := compressBackup(src); err != nil {
			return fmt.Errorf("compress %s: %w", name, err)
		}
		compressed = append(compressed, name+".xz")
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove compressed source %s: %w", name, err)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(compressed)))
	for _, name := range olderThan(compressed, p.KeepCompressed) {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("prune backup %s: %w", name, err)
		}
	}
	return nil
}

// BackupAll writes a full snapshot: the metadata document, the settings
// document, and every stored audio file, under a timestamped directory.
// It returns the snapshot path.
func (s *Store) BackupAll(configPath, audioDir string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := time.Now().UTC().Format("20060102_150405")
	target := filepath.Join(s.backupDir, "backup_"+stamp)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	if err := copyIfExists(s.path, filepath.Join(target, "metadata.json")); err != nil {
		return "", fmt.Errorf("snapshot metadata: %w", err)
	}
	if configPath != "" {
		if err := copyIfExists(configPath, filepath.Join(target, filepath.Base(configPath))); err != nil {
			return "", fmt.Errorf("snapshot config: %w", err)
		}
	}

	if audioDir != "" {
		audioTarget := filepath.Join(target, "audio_recordings")
		if err := copyTree(audioDir, audioTarget); err != nil {
			return "", fmt.Errorf("snapshot audio: %w", err)
		}
	}

	return target, nil
}

func listBackups(dir string) (raw, compressed []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read backup directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, "metadata_backup_") && strings.HasSuffix(name, ".json"):
			raw = append(raw, name)
		case strings.HasPrefix(name, "metadata_backup_") && strings.HasSuffix(name, ".json.xz"):
			compressed = append(compressed, name)
		}
	}
	// Newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(raw)))
	sort.Sort(sort.Reverse(sort.StringSlice(compressed)))
	return raw, compressed, nil
}

func olderThan(sorted []string, keep int) []string {
	if keep < 0 {
		keep = 0
	}
	if len(sorted) <= keep {
		return nil
	}
	return sorted[keep:]
}

func compressBackup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path + ".xz")
	if err != nil {
		return err
	}
	writer, err := xz.NewWriter(out)
	if err != nil {
		out.Close()
		return err
	}
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		out.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyIfExists(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
