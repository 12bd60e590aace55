package selfnested

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/slackarchive/archive-service/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMatch_ClaimsSelfNestedDump(t *testing.T) {
	root := t.TempDir()
	dir := "slackdump_20240115_093000 (team platform)"
	require.NoError(t, os.MkdirAll(filepath.Join(root, dir, dir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, dir, dir, "2024-01-15.json"), []byte("[]"), 0o644))

	conversations, err := match(root, dir)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, dir, conversations[0].ID)
	require.Equal(t, "team platform", conversations[0].DisplayName)
	require.Equal(t, "team-platform", conversations[0].Name)
	require.Equal(t, model.KindChannel, conversations[0].Kind)
	require.Equal(t, dir, conversations[0].StorageKey)
}

func TestMatch_DeclinesWhenIDSubdirsPresent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dump", "dump", "C02LBGZKLP4"), 0o755))

	conversations, err := match(root, "dump")
	require.NoError(t, err)
	require.Nil(t, conversations)
}

func TestMatch_IgnoresUploadDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dump", "dump", "__uploads"), 0o755))

	conversations, err := match(root, "dump")
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, "dump", conversations[0].ID)
}

func TestMatch_DeclinesWithoutSelfNamedSubdir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dump", "C02LBGZKLP4"), 0o755))

	conversations, err := match(root, "dump")
	require.NoError(t, err)
	require.Nil(t, conversations)
}
