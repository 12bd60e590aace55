// Package fsexport implements the export store over a directory tree of
// Slack export dumps. Every call re-derives its answer from the filesystem;
// there is no shared index or cache in the store itself.
package fsexport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/slackarchive/archive-service/internal/config"
	"github.com/slackarchive/archive-service/internal/model"
	registrylayout "github.com/slackarchive/archive-service/internal/registry/layout"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"

	// Layout matchers register themselves in priority order.
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/flat"
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/nestedid"
	_ "github.com/slackarchive/archive-service/internal/plugin/layout/selfnested"
)

func init() {
	registrystore.Register(registrystore.Plugin{
		Name: "export",
		Loader: func(ctx context.Context) (registrystore.ExportStore, error) {
			cfg := config.FromContext(ctx)
			if cfg == nil {
				return nil, fmt.Errorf("export store requires config in context")
			}
			if !cfg.DataDirExists() {
				log.Warn("Data directory not found; serving an empty dataset", "dir", cfg.ResolvedDataDir())
			}
			return New(cfg.ResolvedDataDir()), nil
		},
	})
}

// Store resolves conversations, messages, threads, attachments, and notes
// from an export data root.
type Store struct {
	root string
}

// New creates a Store over the given data root directory.
func New(root string) *Store {
	return &Store{root: root}
}

var _ registrystore.ExportStore = (*Store)(nil)

// ListConversations walks the first level of the data root and applies the
// registered layout matchers to each dump directory, first match wins.
func (s *Store) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Data directory missing", "dir", s.root)
			return nil, nil
		}
		return nil, fmt.Errorf("read data root %q: %w", s.root, err)
	}

	var conversations []model.Conversation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		for _, matcher := range registrylayout.Matchers() {
			matched, err := matcher.Match(s.root, entry.Name())
			if err != nil {
				log.Error("Skipping unreadable dump directory", "dir", entry.Name(), "layout", matcher.Name, "err", err)
				break
			}
			if matched != nil {
				conversations = append(conversations, matched...)
				break
			}
		}
	}
	return conversations, nil
}

// GetConversation returns the conversation with the given id, or NotFoundError.
func (s *Store) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	conversations, err := s.ListConversations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range conversations {
		if conversations[i].ID == conversationID {
			return &conversations[i], nil
		}
	}
	return nil, &registrystore.NotFoundError{Resource: "conversation", ID: conversationID}
}

// conversationDir locates the directory holding a conversation's message
// files by probing the known path shapes under every dump directory:
// root/D/D/id (nested) and root/D/id (flat; also covers the self-nested
// layout where id == D). Returns "" when nothing exists.
func (s *Store) conversationDir(conversationID string) string {
	tops, err := os.ReadDir(s.root)
	if err != nil {
		return ""
	}
	for _, top := range tops {
		if !top.IsDir() {
			continue
		}
		candidates := []string{
			filepath.Join(s.root, top.Name(), top.Name(), conversationID),
			filepath.Join(s.root, top.Name(), conversationID),
		}
		for _, dir := range candidates {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}
	return ""
}
