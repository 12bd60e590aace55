package layout

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/slackarchive/archive-service/internal/model"
)

// MatchFunc inspects one top-level dump directory and either claims it,
// returning the conversations it holds, or declines with (nil, nil). Matchers
// are pure over the filesystem: they only read, never cache.
type MatchFunc func(root, dir string) ([]model.Conversation, error)

// Plugin represents a layout-matcher strategy with a fixed priority. The
// resolver tries matchers in ascending order and takes the first success.
type Plugin struct {
	Name  string
	Order int
	Match MatchFunc
}

var (
	plugins  []Plugin
	sortOnce sync.Once
)

// Register adds a layout matcher. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Matchers returns all registered matchers sorted by priority.
func Matchers() []Plugin {
	sortOnce.Do(func() {
		sort.Slice(plugins, func(i, j int) bool { return plugins[i].Order < plugins[j].Order })
	})
	return plugins
}

// dumpNamePattern matches the export tool's directory naming scheme,
// e.g. "slackdump_20240115_093000 (team-platform)".
var dumpNamePattern = regexp.MustCompile(`^slackdump_\d+_\d+\s*\((.+)\)\s*$`)

// DisplayName derives the human-facing conversation name from a dump
// directory name, stripping the export tool's timestamp prefix when present.
func DisplayName(dir string) string {
	if m := dumpNamePattern.FindStringSubmatch(dir); m != nil {
		return strings.TrimSpace(m[1])
	}
	return dir
}

// Slug converts a display name to its URL-friendly form.
func Slug(displayName string) string {
	return strings.ReplaceAll(strings.ToLower(displayName), " ", "-")
}

// IsConversationID reports whether a directory entry name plausibly names an
// export conversation. Metadata and upload directories start with "_" or "."
// and are rejected.
func IsConversationID(name string) bool {
	if name == "" {
		return false
	}
	return !strings.HasPrefix(name, "_") && !strings.HasPrefix(name, ".")
}
