// Package nestedid matches the dump layout where a self-named subdirectory
// holds one or more conversation-id directories: dump/dump/C0123ABC/....
package nestedid

import (
	"os"
	"path/filepath"

	registrylayout "github.com/slackarchive/archive-service/internal/registry/layout"
	"github.com/slackarchive/archive-service/internal/model"
)

func init() {
	registrylayout.Register(registrylayout.Plugin{
		Name:  "nested-id",
		Order: 200,
		Match: match,
	})
}

func match(root, dir string) ([]model.Conversation, error) {
	inner := filepath.Join(root, dir, dir)
	info, err := os.Stat(inner)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(inner)
	if err != nil {
		return nil, err
	}

	displayName := registrylayout.DisplayName(dir)
	var conversations []model.Conversation
	for _, e := range entries {
		if !e.IsDir() || !registrylayout.IsConversationID(e.Name()) {
			continue
		}
		id := e.Name()
		conversations = append(conversations, model.Conversation{
			ID:          id,
			Name:        registrylayout.Slug(displayName),
			DisplayName: displayName,
			Kind:        model.KindForID(id),
			StorageKey:  dir,
		})
	}
	if len(conversations) == 0 {
		return nil, nil
	}
	return conversations, nil
}
