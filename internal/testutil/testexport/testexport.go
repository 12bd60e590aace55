// Package testexport builds throwaway export directory trees for tests.
package testexport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteChannel creates a nested-id channel directory under root and returns
// its message directory.
func WriteChannel(tb testing.TB, root, dump, channelID string) string {
	tb.Helper()
	dir := filepath.Join(root, dump, dump, channelID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("create channel dir: %v", err)
	}
	return dir
}

// WriteMessages writes a JSON array of message records into dir/name and
// returns the file path.
func WriteMessages(tb testing.TB, dir, name string, records []map[string]any) string {
	tb.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("create message dir: %v", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		tb.Fatalf("encode message records: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write message file: %v", err)
	}
	return path
}

// WriteUpload writes an attachment file at root/dump/<uploadsDir>/<fileID>/<name>.
func WriteUpload(tb testing.TB, root, dump, uploadsDir, fileID, name string, content []byte) string {
	tb.Helper()
	dir := filepath.Join(root, dump, uploadsDir, fileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		tb.Fatalf("create upload dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		tb.Fatalf("write upload file: %v", err)
	}
	return path
}
