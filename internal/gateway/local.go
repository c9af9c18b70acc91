package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/kirinyoku/seatplan/internal/snapshot"
)

// LocalStore keeps the working plan in a single JSON file.
type LocalStore struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
}

// NewLocalStore returns a store backed by path. An empty path selects
// ~/.config/seatplan/plan.json.
func NewLocalStore(path string, logger *slog.Logger) (*LocalStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "seatplan", "plan.json")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{path: path, logger: logger}, nil
}

func (s *LocalStore) Path() string { return s.path }

// Save writes s with its table count forced to the number of tables.
func (s *LocalStore) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	const op = "gateway.LocalStore.Save"

	if snap == nil {
		return fmt.Errorf("%s: %w", op, snapshot.ErrInvalid)
	}
	cp := snap.Clone()
	cp.Settings.TableCount = len(cp.Tables)

	data, err := snapshot.Encode(cp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: create dir: %w", op, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%s: rename: %w", op, err)
	}
	return nil
}

// Load returns the stored plan, or nil when there is none. A file that
// cannot be decoded is logged and treated as missing.
func (s *LocalStore) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	const op = "gateway.LocalStore.Load"

	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable local plan", slog.String("path", s.path), slog.String("err", err.Error()))
		return nil, nil
	}
	return snap, nil
}
