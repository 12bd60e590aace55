package fsexport

import (
	"context"

	"github.com/slackarchive/archive-service/internal/model"
)

// UserProfiles scans a conversation's messages for the requested user ids
// and returns the most recent profile seen for each. Users without any
// profile-bearing message are simply absent from the result.
func (s *Store) UserProfiles(ctx context.Context, conversationID string, userIDs []string) (map[string]*model.UserProfile, error) {
	wanted := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			wanted[id] = true
		}
	}

	profiles := map[string]*model.UserProfile{}
	if len(wanted) == 0 {
		return profiles, nil
	}

	messages, err := s.LoadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	// Messages are newest-first, so the first profile seen per user wins.
	for i := range messages {
		m := &messages[i]
		if !wanted[m.User] || m.UserProfile == nil {
			continue
		}
		if _, ok := profiles[m.User]; !ok {
			profiles[m.User] = m.UserProfile
		}
	}
	return profiles, nil
}
