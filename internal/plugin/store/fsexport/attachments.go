package fsexport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// maxSearchDepth bounds the last-resort recursive file-id search.
const maxSearchDepth = 5

// ResolveAttachment locates the bytes behind an attachment reference by
// probing the prioritized candidate paths, falling back to a bounded
// recursive search of the whole data root for the file id.
func (s *Store) ResolveAttachment(ctx context.Context, ref registrystore.AttachmentRef) (*registrystore.ResolvedAttachment, error) {
	if ref.FileID == "" {
		return nil, &registrystore.ValidationError{Field: "fileId", Message: "fileId is required"}
	}

	for _, candidate := range s.attachmentCandidates(ref) {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		path := candidate
		if info.IsDir() {
			path = pickFromDir(candidate, ref.FileName)
			if path == "" {
				continue
			}
		}
		return s.readAttachment(path)
	}

	if path := s.searchByFileID(ref.FileID, ref.FileName); path != "" {
		return s.readAttachment(path)
	}
	return nil, &registrystore.NotFoundError{Resource: "attachment", ID: ref.FileID}
}

func (s *Store) readAttachment(path string) (*registrystore.ResolvedAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment %q: %w", path, err)
	}
	return &registrystore.ResolvedAttachment{
		Path:        path,
		Data:        data,
		ContentType: contentTypeFor(path),
	}, nil
}

// searchByFileID recursively scans the data root for an entry named exactly
// fileID. Among the files found, one matching fileName under the fuzzy rule
// is preferred; otherwise the first result wins.
func (s *Store) searchByFileID(fileID, fileName string) string {
	found := findByIDRecursive(s.root, fileID, 0)
	if len(found) == 0 {
		return ""
	}
	if fileName != "" {
		for _, path := range found {
			if fileNamesMatch(filepath.Base(path), fileName) {
				return path
			}
		}
	}
	return found[0]
}

func findByIDRecursive(dir, fileID string, depth int) []string {
	if depth > maxSearchDepth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var results []string
	for _, e := range entries {
		if e.Name() != fileID {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			children, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, c := range children {
				results = append(results, filepath.Join(path, c.Name()))
			}
		} else {
			results = append(results, path)
		}
	}
	for _, e := range entries {
		if e.IsDir() {
			results = append(results, findByIDRecursive(filepath.Join(dir, e.Name()), fileID, depth+1)...)
		}
	}
	return results
}

// UploadsExist checks the fixed candidate upload roots for a directory that
// exists and has content. The UI uses this to avoid attachment requests that
// are known to fail.
func (s *Store) UploadsExist(ctx context.Context, storageKey, conversationID string) (*registrystore.UploadsCheck, error) {
	for _, dir := range s.uploadRootCandidates(storageKey, conversationID) {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		if len(entries) > 0 {
			return &registrystore.UploadsCheck{UploadsExist: true, FoundPath: dir}, nil
		}
	}
	return &registrystore.UploadsCheck{}, nil
}
