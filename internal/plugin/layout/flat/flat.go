// Package flat matches the dump layout where conversation-id directories sit
// directly under the dump directory: dump/C0123ABC/....
//
// Only the first identifier found is surfaced even when several exist. That
// narrowing matches the export tool's one-conversation-per-dump assumption
// and is deliberately preserved.
package flat

import (
	"os"
	"path/filepath"

	registrylayout "github.com/slackarchive/archive-service/internal/registry/layout"
	"github.com/slackarchive/archive-service/internal/model"
)

func init() {
	registrylayout.Register(registrylayout.Plugin{
		Name:  "flat",
		Order: 300,
		Match: match,
	})
}

func match(root, dir string) ([]model.Conversation, error) {
	entries, err := os.ReadDir(filepath.Join(root, dir))
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if !e.IsDir() || !registrylayout.IsConversationID(e.Name()) {
			continue
		}
		id := e.Name()
		displayName := registrylayout.DisplayName(dir)
		return []model.Conversation{{
			ID:          id,
			Name:        registrylayout.Slug(displayName),
			DisplayName: displayName,
			Kind:        model.KindForID(id),
			StorageKey:  dir,
		}}, nil
	}
	return nil, nil
}
