package fsexport

import (
	"os"
	"path/filepath"
	"strings"

	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// attachmentCandidates builds the ordered list of paths probed for an
// attachment. The priority order is load-bearing: historical export formats
// coexist on disk and the first existing path wins.
func (s *Store) attachmentCandidates(ref registrystore.AttachmentRef) []string {
	key := ref.StorageKey
	paths := []string{
		filepath.Join(s.root, key, "__uploads", ref.FileID, ref.FileName),
		filepath.Join(s.root, key, "_uploads", ref.FileID, ref.FileName),
		filepath.Join(s.root, key, "attachments", ref.FileID, ref.FileName),
		filepath.Join(s.root, key, key, "attachments", ref.FileName),
		filepath.Join(s.root, key, key, "_uploads", ref.FileID, ref.FileName),
		filepath.Join(s.root, key, key, "__uploads", ref.FileID, ref.FileName),
	}
	if ref.ConversationID != "" {
		paths = append(paths,
			filepath.Join(s.root, key, ref.ConversationID, "_uploads", ref.FileID, ref.FileName),
			filepath.Join(s.root, key, ref.ConversationID, "__uploads", ref.FileID, ref.FileName),
		)
	}
	// Directory forms: the upload directory itself, no filename level.
	paths = append(paths,
		filepath.Join(s.root, key, "__uploads", ref.FileID),
		filepath.Join(s.root, key, "_uploads", ref.FileID),
	)
	if ref.ConversationID != "" {
		paths = append(paths,
			filepath.Join(s.root, key, ref.ConversationID, "_uploads", ref.FileID),
			filepath.Join(s.root, key, ref.ConversationID, "__uploads", ref.FileID),
		)
	}
	// Case-folded storage key variants of the two primary upload shapes.
	if lower := strings.ToLower(key); lower != key {
		paths = append(paths,
			filepath.Join(s.root, lower, "__uploads", ref.FileID, ref.FileName),
			filepath.Join(s.root, lower, "_uploads", ref.FileID, ref.FileName),
		)
	}
	return paths
}

// uploadRootCandidates is the fixed list of directories checked by the
// uploads-existence probe.
func (s *Store) uploadRootCandidates(storageKey, conversationID string) []string {
	paths := []string{
		filepath.Join(s.root, storageKey, "__uploads"),
		filepath.Join(s.root, storageKey, "_uploads"),
		filepath.Join(s.root, storageKey, "attachments"),
	}
	if conversationID != "" {
		paths = append(paths,
			filepath.Join(s.root, storageKey, conversationID, "__uploads"),
			filepath.Join(s.root, storageKey, conversationID, "_uploads"),
		)
	}
	return append(paths,
		filepath.Join(s.root, storageKey, storageKey, "__uploads"),
		filepath.Join(s.root, storageKey, storageKey, "_uploads"),
		filepath.Join(s.root, storageKey, storageKey, "attachments"),
	)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// pickFromDir selects a file from a directory-form candidate. A lone entry
// wins outright; otherwise the entries are searched for a fuzzy filename
// match, then for the first recognizable image. Returns "" when the
// directory yields nothing, sending the search on to the next candidate.
func pickFromDir(dir, fileName string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	if len(entries) == 1 && !entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name())
	}
	if fileName != "" {
		for _, e := range entries {
			if !e.IsDir() && fileNamesMatch(e.Name(), fileName) {
				return filepath.Join(dir, e.Name())
			}
		}
	}
	for _, e := range entries {
		if !e.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// fileNamesMatch applies the fuzzy filename rule: case-insensitive equality,
// or either name containing the other once extensions are stripped.
func fileNamesMatch(entryName, fileName string) bool {
	a := strings.ToLower(entryName)
	b := strings.ToLower(fileName)
	if a == b {
		return true
	}
	a = stripExt(a)
	b = stripExt(b)
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// contentTypeFor infers the response content type from the file extension
// alone; the export data is trusted and never sniffed.
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
