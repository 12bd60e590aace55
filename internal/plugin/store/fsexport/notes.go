package fsexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slackarchive/archive-service/internal/model"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// rawRecord preserves every export field of a message verbatim so a
// write-back only ever touches the personal_note key.
type rawRecord map[string]json.RawMessage

func (r rawRecord) ts() string {
	var ts string
	_ = json.Unmarshal(r["ts"], &ts)
	return ts
}

// SetNote adds, updates, or removes the personal note on one message,
// rewriting the whole backing file. Concurrent writers race on the same file;
// last write wins, which is accepted behavior for a personal note.
func (s *Store) SetNote(ctx context.Context, conversationID, messageTs string, note *string) error {
	if conversationID == "" {
		return &registrystore.ValidationError{Field: "conversationId", Message: "conversationId is required"}
	}
	if messageTs == "" {
		return &registrystore.ValidationError{Field: "messageTs", Message: "messageTs is required"}
	}

	path, records := s.findMessageFile(conversationID, messageTs)
	if path == "" {
		return &registrystore.NotFoundError{Resource: "message", ID: messageTs}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, record := range records {
		if record.ts() != messageTs {
			continue
		}
		if note == nil || strings.TrimSpace(*note) == "" {
			delete(record, "personal_note")
			break
		}
		createdAt := now
		if existing, ok := record["personal_note"]; ok {
			var old model.PersonalNote
			if err := json.Unmarshal(existing, &old); err == nil && old.CreatedAt != "" {
				createdAt = old.CreatedAt
			}
		}
		encoded, err := json.Marshal(model.PersonalNote{
			Content:   *note,
			CreatedAt: createdAt,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("encode note: %w", err)
		}
		record["personal_note"] = encoded
		break
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode message file %q: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write message file %q: %w", path, err)
	}
	return nil
}

// findMessageFile scans the conversation's message files for the one
// containing the given ts. There is no ts-to-file index, so every candidate
// file is parsed until a match is found.
func (s *Store) findMessageFile(conversationID, messageTs string) (string, []rawRecord) {
	dir := s.conversationDir(conversationID)
	if dir == "" {
		return "", nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil
	}
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
		var records []rawRecord
		if err := json.Unmarshal(bytes.TrimSpace(data), &records); err != nil {
			log.Error("Skipping malformed message file", "file", path, "err", err)
			continue
		}
		for _, record := range records {
			if record.ts() == messageTs {
				return path, records
			}
		}
	}
	return "", nil
}
