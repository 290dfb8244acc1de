package docstore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// Confirm asks a yes/no question on stdin/stdout, matching the original
// scraper's "Overwrite media directory? " prompt. AlwaysYes short-circuits
// it for non-interactive runs (spec's --assume-yes flag).
type Confirm func(prompt string) bool

// StdinConfirm reads a single answer line from in and treats a leading 'y'
// or 'Y' as yes, matching the original scraper's input()[0] == 'y' check.
func StdinConfirm(in io.Reader) Confirm {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Print(prompt)
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		return len(line) > 0 && (line[0] == 'y' || line[0] == 'Y')
	}
}

// AlwaysYes never asks, used when --assume-yes is passed.
func AlwaysYes(string) bool { return true }

// LocalStore writes each conversation's canonical sequence to a JSON file
// and stores media under a sibling directory named after the conversation's
// group id, per the original scraper's save_to_local.
type LocalStore struct {
	Dir     string
	Confirm Confirm
}

func NewLocalStore(dir string, confirm Confirm) *LocalStore {
	return &LocalStore{Dir: dir, Confirm: confirm}
}

func (s *LocalStore) jsonPath(key model.ConversationKey) string {
	return filepath.Join(s.Dir, fmt.Sprintf("scrape_%s.json", key.GroupID))
}

func (s *LocalStore) mediaDir(key model.ConversationKey) string {
	return filepath.Join(s.Dir, fmt.Sprintf("scrape_media_%s", key.GroupID))
}

// Existing reads back whatever this directory previously wrote for key, if
// anything (local mode has no cross-run reconciliation by default, but
// supports it when a prior JSON file is present).
func (s *LocalStore) Existing(ctx context.Context, key model.ConversationKey) ([]model.Message, error) {
	data, err := os.ReadFile(s.jsonPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read existing local sequence for %+v: %w", key, err)
	}
	var out []model.Message
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode existing local sequence for %+v: %w", key, err)
	}
	return out, nil
}

// Persist writes the full canonical sequence (the caller passes the
// reconciled whole, not just the tail, since the local file is the only
// copy of history we have).
func (s *LocalStore) Persist(ctx context.Context, key model.ConversationKey, full []model.Message) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create local output directory: %w", err)
	}
	data, err := json.Marshal(full)
	if err != nil {
		return fmt.Errorf("encode local sequence for %+v: %w", key, err)
	}
	if err := os.WriteFile(s.jsonPath(key), data, 0o644); err != nil {
		return fmt.Errorf("write local sequence for %+v: %w", key, err)
	}
	return nil
}

// PersistMedia writes media files into this conversation's media directory,
// asking for confirmation before clobbering a pre-existing one.
func (s *LocalStore) PersistMedia(key model.ConversationKey, files []model.MediaFile) error {
	dir := s.mediaDir(key)
	if _, err := os.Stat(dir); err == nil {
		confirm := s.Confirm
		if confirm == nil {
			confirm = AlwaysYes
		}
		if !confirm(fmt.Sprintf("Overwrite media directory %q? ", dir)) {
			return nil
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove existing media directory %q: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create media directory %q: %w", dir, err)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Hash)
		if err := os.WriteFile(path, f.Content, 0o644); err != nil {
			return fmt.Errorf("write media file %q: %w", f.Name, err)
		}
	}
	return nil
}
