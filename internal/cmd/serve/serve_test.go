package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestDataDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "dump", "dump", "C0TEST111")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	records := `[{"ts": "1700000000.000100", "user": "U01", "text": "hello archive"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01.json"), []byte(records), 0o644))
	return root
}

func startTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = newTestDataDir(t)
	cfg.CacheType = "none"
	cfg.Listener.Port = 0

	srv, err := StartServer(context.Background(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func get(t *testing.T, srv *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d%s", srv.Port, path))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestStartServer_ServesAPIAndManagement(t *testing.T) {
	srv := startTestServer(t)

	status, body := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	status, _ = get(t, srv, "/ready")
	require.Equal(t, http.StatusOK, status)

	status, body = get(t, srv, "/v1/conversations")
	require.Equal(t, http.StatusOK, status)
	var conversations []map[string]any
	require.NoError(t, json.Unmarshal(body, &conversations))
	require.Len(t, conversations, 1)
	require.Equal(t, "C0TEST111", conversations[0]["id"])

	status, body = get(t, srv, "/v1/conversations/C0TEST111/messages")
	require.Equal(t, http.StatusOK, status)
	var payload struct {
		Messages []map[string]any `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Messages, 1)

	status, _ = get(t, srv, "/v1/conversations/C0MISSING")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, srv, "/v1/search")
	require.Equal(t, http.StatusBadRequest, status)

	status, body = get(t, srv, "/v1/search?q=archive")
	require.Equal(t, http.StatusOK, status)
	var results []map[string]any
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 1)

	status, _ = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, status)
}

func TestStartServer_DedicatedManagementPort(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = newTestDataDir(t)
	cfg.CacheType = "none"
	cfg.Listener.Port = 0
	cfg.ManagementListener.Port = 0
	cfg.ManagementListenerEnabled = true

	srv, err := StartServer(context.Background(), &cfg)
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	// Management endpoints are not on the main port in dedicated mode.
	status, _ := get(t, srv, "/health")
	require.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, srv, "/v1/conversations")
	require.Equal(t, http.StatusOK, status)
}

func TestMaxBodySizeMiddleware_Enforces(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(maxBodySizeMiddleware(4))
	router.POST("/v1/notes", func(c *gin.Context) {
		n, err := io.Copy(io.Discard, c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, "%d", n)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/notes", strings.NewReader("0123456789"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
