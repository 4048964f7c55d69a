package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"NoticeWatcher/internal/domain"
	"NoticeWatcher/internal/ports"
)

// stateDocument is the persisted shape. Unknown keys in existing files
// are ignored on load so the format can grow without breaking old state.
type stateDocument struct {
	Seen []string `json:"seen"`
}

// FileStore keeps the seen-set in a single JSON document on disk. It is
// the sole durable artifact of the whole system.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.SeenStore = (*FileStore)(nil)

// NewFileStore wires the state file path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Load reads the persisted seen-set. It never fails the caller: a
// missing, unreadable, or corrupt file yields an empty set, and the
// next Save rewrites the state from scratch.
func (s *FileStore) Load(ctx context.Context) *domain.SeenSet {
	_ = ctx

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("state file unreadable, starting empty", "path", s.path, "error", err)
		}
		return domain.NewSeenSet()
	}

	var doc stateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.warn("state file corrupt, starting empty", "path", s.path, "error", err)
		return domain.NewSeenSet()
	}

	return domain.NewSeenSet(doc.Seen...)
}

// Save rewrites the whole state file atomically: marshal to a temp file
// next to the target, then rename over it. The parent directory is
// created on first write.
func (s *FileStore) Save(ctx context.Context, set *domain.SeenSet) error {
	_ = ctx

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure state dir: %w", err)
		}
	}

	raw, err := json.MarshalIndent(stateDocument{Seen: set.URLs()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}

	return nil
}

func (s *FileStore) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
