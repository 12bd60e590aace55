package fsexport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/slackarchive/archive-service/internal/model"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// metadataFiles are export bookkeeping files that never contain messages.
var metadataFiles = map[string]bool{
	"channels.json": true,
	"dms.json":      true,
	"groups.json":   true,
	"mpims.json":    true,
	"users.json":    true,
}

func isMessageFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !metadataFiles[name]
}

// readConversationMessages loads every message file of a conversation in
// file-iteration order (os.ReadDir sorts by name, so the order is stable).
// A file that fails to parse is logged and skipped; partial success is the
// defined behavior.
func (s *Store) readConversationMessages(conv *model.Conversation) []model.Message {
	dir := s.conversationDir(conv.ID)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Error("Failed to read conversation directory", "dir", dir, "err", err)
		return nil
	}

	var messages []model.Message
	for _, entry := range entries {
		if entry.IsDir() || !isMessageFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Failed to read message file", "file", path, "err", err)
			continue
		}
		var parsed []model.Message
		if err := json.Unmarshal(bytes.TrimSpace(data), &parsed); err != nil {
			log.Error("Skipping malformed message file", "file", path, "err", err)
			continue
		}
		for i := range parsed {
			parsed[i].ConversationID = conv.ID
			parsed[i].ConversationName = conv.DisplayName
			parsed[i].ConversationKind = conv.Kind
		}
		messages = append(messages, parsed...)
	}
	return messages
}

// LoadMessages returns all messages of a conversation sorted newest-first.
// An unknown conversation yields an empty list rather than an error.
func (s *Store) LoadMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		var notFound *registrystore.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	messages := s.readConversationMessages(conv)
	sortByTsDesc(messages)
	return messages, nil
}

func tsValue(ts string) float64 {
	v, _ := strconv.ParseFloat(ts, 64)
	return v
}

func sortByTsDesc(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return tsValue(messages[i].Ts) > tsValue(messages[j].Ts)
	})
}

func sortByTsAsc(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return tsValue(messages[i].Ts) < tsValue(messages[j].Ts)
	})
}
