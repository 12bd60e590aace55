package store

import (
	"context"
	"fmt"

	"github.com/slackarchive/archive-service/internal/model"
)

// AttachmentRef is the lookup key for an attachment search. FileID is
// required; FileName and ConversationID are hints that narrow the search.
type AttachmentRef struct {
	StorageKey     string
	FileID         string
	FileName       string
	ConversationID string
}

// ResolvedAttachment is the outcome of a successful attachment search.
type ResolvedAttachment struct {
	Path        string
	Data        []byte
	ContentType string
}

// UploadsCheck reports whether any candidate upload directory exists and is
// non-empty for a storage key.
type UploadsCheck struct {
	UploadsExist bool   `json:"uploadsExist"`
	FoundPath    string `json:"foundPath,omitempty"`
}

// ExportStore defines the data access interface over an archived export tree.
// Implementations re-derive everything from the filesystem per call; there is
// no shared in-memory index.
type ExportStore interface {
	// Conversations
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)

	// Messages, newest-first. An unknown conversation yields an empty list.
	LoadMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// Threads
	Threads(ctx context.Context, conversationID string) (*model.ThreadGroups, error)
	ThreadReplies(ctx context.Context, conversationID, threadTs string) ([]model.Message, error)

	// Search scans every conversation for a case-insensitive substring match.
	Search(ctx context.Context, query string) ([]model.Message, error)

	// Attachments
	ResolveAttachment(ctx context.Context, ref AttachmentRef) (*ResolvedAttachment, error)
	UploadsExist(ctx context.Context, storageKey, conversationID string) (*UploadsCheck, error)

	// Notes. A nil or empty note removes the field.
	SetNote(ctx context.Context, conversationID, messageTs string, note *string) error

	// UserProfiles returns the latest known profile per requested user id,
	// scanned from the conversation's messages.
	UserProfiles(ctx context.Context, conversationID string, userIDs []string) (map[string]*model.UserProfile, error)
}

// Loader creates an ExportStore from config carried in the context.
type Loader func(ctx context.Context) (ExportStore, error)

// Plugin represents a store plugin.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a store plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered store plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named store plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown store %q; valid: %v", name, Names())
}
