package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"recite/internal/config"
)

const lockRetryDelay = 50 * time.Millisecond

// Store owns the metadata document on disk and serializes every access to it.
// All mutations flow through Mutate; there is no other write path.
type Store struct {
	path      string
	backupDir string
	retention RetentionPolicy

	mu   sync.Mutex
	lock *flock.Flock
}

// Open prepares the store directories and the cross-process lock file.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.MetadataFile()
	return &Store{
		path:      path,
		backupDir: cfg.BackupDir(),
		retention: RetentionPolicy{
			KeepRaw:        cfg.Backups.KeepRaw,
			KeepCompressed: cfg.Backups.KeepCompressed,
		},
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the metadata document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the current document under a shared lock. A missing file yields
// an empty document; a corrupt file is an error, never silently replaced.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire read lock: %w", err)
	}
	if !locked {
		return nil, errors.New("metadata store read lock unavailable")
	}
	defer s.lock.Unlock()

	return s.read()
}

// Mutate runs fn against the current document and persists the result using
// the load-modify-backup-write cycle. The exclusive lock covers the whole
// cycle. When fn returns an error nothing is written and the error is
// returned unchanged, so callers can surface typed failures.
func (s *Store) Mutate(ctx context.Context, fn func(*Document) error) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire write lock: %w", err)
	}
	if !locked {
		return nil, errors.New("metadata store write lock unavailable")
	}
	defer s.lock.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	if err := fn(doc); err != nil {
		return nil, err
	}

	if err := s.write(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Store) read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(), nil
		}
		return nil, fmt.Errorf("read metadata document: %w", err)
	}
	doc := NewDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse metadata document: %w", err)
	}
	doc.init()
	return doc, nil
}

// write backs up the previous document content and atomically replaces it.
func (s *Store) write(doc *Document) error {
	if _, err := os.Stat(s.path); err == nil {
		backupPath := filepath.Join(s.backupDir, backupName(time.Now().UTC()))
		if err := copyFile(s.path, backupPath); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		if err := s.retention.Apply(s.backupDir); err != nil {
			return fmt.Errorf("apply backup retention: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat metadata document: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata document: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write metadata document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace metadata document: %w", err)
	}
	return nil
}

func backupName(now time.Time) string {
	return "metadata_backup_" + now.Format("20060102_150405.000000000") + ".json"
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
