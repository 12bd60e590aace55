package conversations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/plugin/store/fsexport"
	"github.com/slackarchive/archive-service/internal/testutil/testexport"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	router := gin.New()
	MountRoutes(router, fsexport.New(root))
	return router, root
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListConversations(t *testing.T) {
	router, root := newRouter(t)
	testexport.WriteChannel(t, root, "dump", "C0AAA111")
	testexport.WriteChannel(t, root, "dump", "D0BBB222")

	rec := doGet(t, router, "/v1/conversations")
	require.Equal(t, http.StatusOK, rec.Code)

	var conversations []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conversations))
	require.Len(t, conversations, 2)
}

func TestListConversations_EmptyDataDir(t *testing.T) {
	router, _ := newRouter(t)
	rec := doGet(t, router, "/v1/conversations")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetConversation(t *testing.T) {
	router, root := newRouter(t)
	testexport.WriteChannel(t, root, "dump", "C0AAA111")

	rec := doGet(t, router, "/v1/conversations/C0AAA111")
	require.Equal(t, http.StatusOK, rec.Code)
	var conv map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	require.Equal(t, "C0AAA111", conv["id"])

	rec = doGet(t, router, "/v1/conversations/C0MISSING")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "not_found")
}

func TestGetMessages(t *testing.T) {
	router, root := newRouter(t)
	dir := testexport.WriteChannel(t, root, "dump", "C0AAA111")
	testexport.WriteMessages(t, dir, "2024-01-01.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "old"},
		{"ts": "2.000000", "user": "U02", "text": "new"},
	})

	rec := doGet(t, router, "/v1/conversations/C0AAA111/messages")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Conversation map[string]any   `json:"conversation"`
		Messages     []map[string]any `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "C0AAA111", payload.Conversation["id"])
	require.Len(t, payload.Messages, 2)
	require.Equal(t, "new", payload.Messages[0]["text"])
}

func TestGetMessages_UnknownConversation(t *testing.T) {
	router, _ := newRouter(t)
	rec := doGet(t, router, "/v1/conversations/C0MISSING/messages")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetThreads(t *testing.T) {
	router, root := newRouter(t)
	dir := testexport.WriteChannel(t, root, "dump", "C0AAA111")
	testexport.WriteMessages(t, dir, "2024-01-01.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "root"},
		{"ts": "2.000000", "user": "U02", "text": "reply", "thread_ts": "1.000000"},
	})

	rec := doGet(t, router, "/v1/conversations/C0AAA111/threads")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups struct {
		Parents     []map[string]any `json:"parents"`
		ReplyCounts map[string]int   `json:"replyCounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups.Parents, 1)
	require.Equal(t, 1, groups.ReplyCounts["1.000000"])
}

func TestGetThreadReplies(t *testing.T) {
	router, root := newRouter(t)
	dir := testexport.WriteChannel(t, root, "dump", "C0AAA111")
	testexport.WriteMessages(t, dir, "2024-01-01.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "root", "thread_ts": "1.000000"},
		{"ts": "2.000000", "user": "U02", "text": "reply", "thread_ts": "1.000000"},
	})

	rec := doGet(t, router, "/v1/threads/replies?conversationId=C0AAA111&threadTs=1.000000")
	require.Equal(t, http.StatusOK, rec.Code)
	var replies []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replies))
	require.Len(t, replies, 1)
	require.Equal(t, "reply", replies[0]["text"])
}

func TestGetThreadReplies_RequiresParams(t *testing.T) {
	router, _ := newRouter(t)
	rec := doGet(t, router, "/v1/threads/replies?conversationId=C0AAA111")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation_error")
}
