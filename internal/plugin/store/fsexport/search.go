package fsexport

import (
	"context"
	"strings"

	"github.com/slackarchive/archive-service/internal/model"
)

// Search linearly scans every conversation for a case-insensitive substring
// match against the message text and the text runs of rich-text blocks.
// Results are merged across conversations and sorted newest-first.
func (s *Store) Search(ctx context.Context, query string) ([]model.Message, error) {
	conversations, err := s.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var results []model.Message
	for i := range conversations {
		for _, m := range s.readConversationMessages(&conversations[i]) {
			if messageMatches(&m, needle) {
				results = append(results, m)
			}
		}
	}
	sortByTsDesc(results)
	return results, nil
}

// richTextContainers are the block elements whose text runs are searchable.
var richTextContainers = map[string]bool{
	"rich_text_section":      true,
	"rich_text_preformatted": true,
	"rich_text_quote":        true,
}

func messageMatches(m *model.Message, needle string) bool {
	if strings.Contains(strings.ToLower(m.Text), needle) {
		return true
	}
	for _, block := range m.Blocks {
		if block.Type != "rich_text" {
			continue
		}
		for _, element := range block.Elements {
			if !richTextContainers[element.Type] {
				continue
			}
			for _, sub := range element.Elements {
				if sub.Type == "text" && strings.Contains(strings.ToLower(sub.Text), needle) {
					return true
				}
			}
		}
	}
	return false
}
