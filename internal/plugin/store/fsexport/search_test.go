package fsexport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	s, dir := newNestedFixture(t, "dump", "C02LBGZKLP4")
	writeMessageFile(t, dir, "2024-01-01.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "We need to Deploy now"},
		{"ts": "2.000000", "user": "U02", "text": "lunch plans"},
	})

	results, err := s.Search(context.Background(), "deploy")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "We need to Deploy now", results[0].Text)
}

func TestSearch_MatchesRichTextBlocks(t *testing.T) {
	s, dir := newNestedFixture(t, "dump", "C02LBGZKLP4")
	writeMessageFile(t, dir, "2024-01-01.json", []map[string]any{
		{
			"ts": "1.000000", "user": "U01", "text": "",
			"blocks": []map[string]any{{
				"type": "rich_text",
				"elements": []map[string]any{{
					"type": "rich_text_section",
					"elements": []map[string]any{
						{"type": "text", "text": "rollback finished"},
					},
				}},
			}},
		},
		{
			"ts": "2.000000", "user": "U02", "text": "",
			"blocks": []map[string]any{{
				"type": "rich_text",
				"elements": []map[string]any{{
					"type": "rich_text_quote",
					"elements": []map[string]any{
						{"type": "text", "text": "Rollback started"},
					},
				}},
			}},
		},
	})

	results, err := s.Search(context.Background(), "ROLLBACK")
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearch_AggregatesAcrossConversationsNewestFirst(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	dirA := writeFixtureChannel(t, root, "dump-a", "C0AAAA111")
	writeMessageFile(t, dirA, "x.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "incident review"},
	})
	dirB := writeFixtureChannel(t, root, "dump-b", "C0BBBB222")
	writeMessageFile(t, dirB, "x.json", []map[string]any{
		{"ts": "5.000000", "user": "U02", "text": "incident postmortem"},
	})

	results, err := s.Search(context.Background(), "incident")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "C0BBBB222", results[0].ConversationID)
	require.Equal(t, "C0AAAA111", results[1].ConversationID)
}

func TestSearch_NoMatches(t *testing.T) {
	s, dir := newNestedFixture(t, "dump", "C02LBGZKLP4")
	writeMessageFile(t, dir, "x.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "nothing here"},
	})

	results, err := s.Search(context.Background(), "absent")
	require.NoError(t, err)
	require.Empty(t, results)
}
