// Package git reads repository metadata with go-git and applies .gitignore
// rules while a directory tree is walked.
package git

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// GitInfo contains git repository information
type GitInfo struct {
	Root       string `json:"root" yaml:"root"`
	Branch     string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit     string `json:"commit,omitempty" yaml:"commit,omitempty"`
	IsDirty    bool   `json:"is_dirty" yaml:"is_dirty"`
	RemoteURL  string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
}

// open opens the repository containing path, walking up to find .git
func open(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
}

// FindRepoRoot finds the git repository root for a given path.
// Returns empty string if not in a git repository.
func FindRepoRoot(path string) string {
	repo, err := open(path)
	if err != nil {
		return ""
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return ""
	}
	return worktree.Filesystem.Root()
}

// GetGitInfo retrieves git repository information for the given path, or
// nil when path is not inside a repository. Computing IsDirty walks the
// worktree and is skipped unless withStatus is set.
func GetGitInfo(path string, withStatus bool) *GitInfo {
	repo, err := open(path)
	if err != nil {
		return nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil
	}

	info := &GitInfo{Root: worktree.Filesystem.Root()}

	head, err := repo.Head()
	if err == nil {
		info.Commit = head.Hash().String()[:7]
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Branch = "HEAD" // Detached HEAD
		}
	}

	if withStatus {
		if status, err := worktree.Status(); err == nil {
			info.IsDirty = !status.IsClean()
		}
	}

	if cfg, err := repo.Config(); err == nil {
		if origin := cfg.Remotes["origin"]; origin != nil && len(origin.URLs) > 0 {
			info.RemoteURL = sanitizeRemoteURL(origin.URLs[0])
			info.Repository = normalizeRemoteURL(origin.URLs[0])
		}
	}

	return info
}

// sanitizeRemoteURL removes credentials from URL-style remotes. SCP-like
// ssh remotes are returned unchanged.
func sanitizeRemoteURL(remote string) string {
	if !strings.Contains(remote, "://") {
		return remote
	}
	u, err := url.Parse(remote)
	if err != nil || u.User == nil {
		return remote
	}
	u.User = nil
	return u.String()
}

// normalizeRemoteURL converts various git URL formats to host/owner/repo
func normalizeRemoteURL(remote string) string {
	remote = strings.TrimPrefix(remote, "https://")
	remote = strings.TrimPrefix(remote, "http://")
	remote = strings.TrimPrefix(remote, "ssh://")
	remote = strings.TrimPrefix(remote, "git://")
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")

	// Drop credentials or the ssh user
	if at := strings.Index(remote, "@"); at >= 0 {
		remote = remote[at+1:]
	}

	// SCP-like syntax host:owner/repo; a port is dropped
	if colon := strings.Index(remote, ":"); colon >= 0 && !strings.Contains(remote[:colon], "/") {
		rest := remote[colon+1:]
		if slash := strings.Index(rest, "/"); slash > 0 && isDigits(rest[:slash]) {
			rest = rest[slash+1:]
		}
		remote = remote[:colon] + "/" + rest
	}

	return remote
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
