package fsexport

import (
	"context"
	"errors"

	"github.com/slackarchive/archive-service/internal/model"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// GroupThreads partitions a flat message stream into top-level messages and
// thread replies in a single pass, then prunes each preview.
//
// Preview participant order is first-seen in the input stream, capped at two
// entries after the thread-root author has been removed. Callers that care
// about participant ordering must pass messages in file-iteration order.
func GroupThreads(messages []model.Message) *model.ThreadGroups {
	groups := &model.ThreadGroups{
		ReplyCounts: map[string]int{},
		Previews:    map[string]model.ThreadSummary{},
	}
	rootAuthors := map[string]string{}

	for _, m := range messages {
		if m.IsThreadRoot() {
			groups.Parents = append(groups.Parents, m)
			rootAuthors[m.Ts] = m.User
			continue
		}

		root := m.ThreadTs
		groups.ReplyCounts[root]++

		preview := groups.Previews[root]
		preview.ReplyCount = groups.ReplyCounts[root]
		if preview.LastReplyTs == "" || tsValue(m.Ts) > tsValue(preview.LastReplyTs) {
			preview.LastReplyTs = m.Ts
		}
		seen := false
		for _, p := range preview.Participants {
			if p.UserID == m.User {
				seen = true
				break
			}
		}
		if !seen {
			preview.Participants = append(preview.Participants, model.ThreadParticipant{
				UserID:      m.User,
				UserProfile: m.UserProfile,
			})
		}
		groups.Previews[root] = preview
	}

	for ts, preview := range groups.Previews {
		author := rootAuthors[ts]
		kept := make([]model.ThreadParticipant, 0, len(preview.Participants))
		for _, p := range preview.Participants {
			if p.UserID == author {
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) > 2 {
			kept = kept[:2]
		}
		preview.Participants = kept
		groups.Previews[ts] = preview
	}
	return groups
}

// Threads loads a conversation and groups it into parents and thread
// previews. Parents are returned newest-first; preview participant order
// follows the file-iteration order of the underlying read.
func (s *Store) Threads(ctx context.Context, conversationID string) (*model.ThreadGroups, error) {
	conv, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		var notFound *registrystore.NotFoundError
		if errors.As(err, &notFound) {
			return GroupThreads(nil), nil
		}
		return nil, err
	}
	groups := GroupThreads(s.readConversationMessages(conv))
	sortByTsDesc(groups.Parents)
	return groups, nil
}

// ThreadReplies returns the replies of one thread in ascending ts order.
// The root message itself is excluded.
func (s *Store) ThreadReplies(ctx context.Context, conversationID, threadTs string) ([]model.Message, error) {
	messages, err := s.LoadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	var replies []model.Message
	for _, m := range messages {
		if m.ThreadTs == threadTs && m.Ts != threadTs {
			replies = append(replies, m)
		}
	}
	sortByTsAsc(replies)
	return replies, nil
}
