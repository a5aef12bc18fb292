package draftstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pawpal/internal/logging"
	"pawpal/internal/reminder"
)

// FileStore keeps one JSON file per conversation. Writes go through a temp
// file plus rename so a crashed turn never leaves a half-written draft.
type FileStore struct {
	baseDir string
	maxAge  time.Duration
	logger  logging.Logger
}

// NewFileStore creates the store rooted at baseDir. Drafts older than
// maxAge are discarded on load; zero disables the expiry.
func NewFileStore(baseDir string, maxAge time.Duration, logger logging.Logger) (*FileStore, error) {
	if strings.HasPrefix(baseDir, "~/") {
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, baseDir[2:])
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &FileStore{
		baseDir: baseDir,
		maxAge:  maxAge,
		logger:  logging.OrNop(logger),
	}, nil
}

func (s *FileStore) path(conversationID string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s.json", conversationID))
}

func (s *FileStore) Load(_ context.Context, conversationID string) (reminder.Draft, error) {
	path := s.path(conversationID)
	info, err := os.Stat(path)
	if err != nil {
		return reminder.Draft{}, ErrDraftNotFound
	}
	if s.maxAge > 0 && time.Since(info.ModTime()) > s.maxAge {
		s.logger.Info("discarding stale draft for conversation %s", conversationID)
		_ = os.Remove(path)
		return reminder.Draft{}, ErrDraftNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return reminder.Draft{}, fmt.Errorf("read draft: %w", err)
	}
	draft, err := reminder.DecodeDraft(data)
	if err != nil {
		s.logger.Error("corrupt draft file for conversation %s: %v", conversationID, err)
		return reminder.Draft{}, fmt.Errorf("decode draft %s: %w", conversationID, err)
	}
	return draft, nil
}

func (s *FileStore) Save(_ context.Context, draft reminder.Draft) error {
	if draft.ConversationID == "" {
		return fmt.Errorf("draft has no conversation id")
	}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	path := s.path(draft.ConversationID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit draft: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, conversationID string) error {
	err := os.Remove(s.path(conversationID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
