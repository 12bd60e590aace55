package model

// Kind distinguishes channels from direct-message conversations.
type Kind string

const (
	KindChannel       Kind = "channel"
	KindDirectMessage Kind = "dm"
)

// KindForID infers the conversation kind from an export-assigned identifier.
// Channel identifiers start with "C"; everything else is a direct message.
func KindForID(id string) Kind {
	if len(id) > 0 && id[0] == 'C' {
		return KindChannel
	}
	return KindDirectMessage
}

// Conversation is a channel or DM container discovered in the export tree.
// It is derived purely from directory structure at query time and never persisted.
type Conversation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Kind        Kind   `json:"type"`

	// StorageKey is the top-level dump directory the conversation was found
	// under. Attachment lookups use it as the search root hint.
	StorageKey string `json:"storageKey"`
}

// UserProfile is the sender profile embedded in export message records.
type UserProfile struct {
	AvatarHash        string `json:"avatar_hash,omitempty"`
	Image72           string `json:"image_72,omitempty"`
	FirstName         string `json:"first_name,omitempty"`
	RealName          string `json:"real_name,omitempty"`
	DisplayName       string `json:"display_name,omitempty"`
	Team              string `json:"team,omitempty"`
	Name              string `json:"name,omitempty"`
	IsRestricted      bool   `json:"is_restricted,omitempty"`
	IsUltraRestricted bool   `json:"is_ultra_restricted,omitempty"`
}

// InlineElement is a leaf of the rich-text tree (text runs, links, ...).
type InlineElement struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// BlockElement is a rich-text sub-block such as a section, quote, or
// preformatted run.
type BlockElement struct {
	Type     string          `json:"type"`
	Elements []InlineElement `json:"elements,omitempty"`
}

// Block is a top-level message block from the export format.
type Block struct {
	Type     string         `json:"type"`
	BlockID  string         `json:"block_id,omitempty"`
	Elements []BlockElement `json:"elements,omitempty"`
}

// File references an uploaded attachment from a message record.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimetype,omitempty"`
}

// PersonalNote is the one mutable field of a message. Timestamps are kept as
// the RFC 3339 strings written to disk so write-backs round-trip exactly.
type PersonalNote struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Message is a single archived message. The ts value doubles as the message's
// unique identifier within one conversation and sorts as a real number.
// Everything except PersonalNote is immutable export data.
type Message struct {
	ClientMsgID string        `json:"client_msg_id,omitempty"`
	Type        string        `json:"type,omitempty"`
	User        string        `json:"user,omitempty"`
	Text        string        `json:"text,omitempty"`
	Ts          string        `json:"ts"`
	ThreadTs    string        `json:"thread_ts,omitempty"`
	Team        string        `json:"team,omitempty"`
	UserProfile *UserProfile  `json:"user_profile,omitempty"`
	Blocks      []Block       `json:"blocks,omitempty"`
	Files       []File        `json:"files,omitempty"`
	Note        *PersonalNote `json:"personal_note,omitempty"`

	// Annotated by the reader so results are self-describing across
	// conversations (search spans all of them).
	ConversationID   string `json:"channelId,omitempty"`
	ConversationName string `json:"channelName,omitempty"`
	ConversationKind Kind   `json:"channelType,omitempty"`
}

// IsThreadRoot reports whether the message starts a thread (or is unthreaded).
// A reply carries a thread_ts distinct from its own ts.
func (m *Message) IsThreadRoot() bool {
	return m.ThreadTs == "" || m.ThreadTs == m.Ts
}

// ThreadParticipant is one entry of a thread preview.
type ThreadParticipant struct {
	UserID      string       `json:"userId"`
	UserProfile *UserProfile `json:"userProfile,omitempty"`
}

// ThreadSummary is the derived per-thread preview, keyed by the root ts.
// Recomputed on every read; never persisted.
type ThreadSummary struct {
	ReplyCount   int                 `json:"replyCount"`
	LastReplyTs  string              `json:"lastReplyTs"`
	Participants []ThreadParticipant `json:"previewParticipants"`
}

// ThreadGroups is the result of partitioning a conversation into top-level
// messages and threads.
type ThreadGroups struct {
	Parents     []Message                `json:"parents"`
	ReplyCounts map[string]int           `json:"replyCounts"`
	Previews    map[string]ThreadSummary `json:"previews"`
}
