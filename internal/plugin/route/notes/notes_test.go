package notes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
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

func post(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/notes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetNote(t *testing.T) {
	router, root := newRouter(t)
	dir := testexport.WriteChannel(t, root, "dump", "C0AAA111")
	path := testexport.WriteMessages(t, dir, "2024-01-01.json", []map[string]any{
		{"ts": "1.000000", "user": "U01", "text": "a"},
	})

	rec := post(t, router, `{"conversationId":"C0AAA111","messageTs":"1.000000","note":"remember"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	note, ok := records[0]["personal_note"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "remember", note["content"])
}

func TestSetNote_NullRemoves(t *testing.T) {
	router, root := newRouter(t)
	dir := testexport.WriteChannel(t, root, "dump", "C0AAA111")
	path := testexport.WriteMessages(t, dir, "2024-01-01.json", []map[string]any{
		{
			"ts": "1.000000", "user": "U01", "text": "a",
			"personal_note": map[string]any{"content": "old", "created_at": "2020-01-01T00:00:00Z", "updated_at": "2020-01-01T00:00:00Z"},
		},
	})

	rec := post(t, router, `{"conversationId":"C0AAA111","messageTs":"1.000000","note":null}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	_, hasNote := records[0]["personal_note"]
	require.False(t, hasNote)
}

func TestSetNote_BadBody(t *testing.T) {
	router, _ := newRouter(t)

	rec := post(t, router, `{"messageTs":"1.000000"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, router, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetNote_MessageNotFound(t *testing.T) {
	router, root := newRouter(t)
	testexport.WriteChannel(t, root, "dump", "C0AAA111")

	rec := post(t, router, `{"conversationId":"C0AAA111","messageTs":"9.000000","note":"x"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "not_found")
}
