// Package selfnested matches the single-conversation dump layout where the
// dump directory contains a subdirectory of the same name holding the message
// files directly (no conversation-id level).
package selfnested

import (
	"os"
	"path/filepath"

	registrylayout "github.com/slackarchive/archive-service/internal/registry/layout"
	"github.com/slackarchive/archive-service/internal/model"
)

func init() {
	registrylayout.Register(registrylayout.Plugin{
		Name:  "self-nested",
		Order: 100,
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
	for _, e := range entries {
		if e.IsDir() && registrylayout.IsConversationID(e.Name()) {
			// A conversation-id level exists; this is the nested-id layout.
			return nil, nil
		}
	}

	displayName := registrylayout.DisplayName(dir)
	return []model.Conversation{{
		ID:          dir,
		Name:        registrylayout.Slug(displayName),
		DisplayName: displayName,
		Kind:        model.KindChannel,
		StorageKey:  dir,
	}}, nil
}
