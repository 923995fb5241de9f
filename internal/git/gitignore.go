package git

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/drshade/linguist/internal/progress"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// loadPatternsFromGitignore reads the non-empty, non-comment lines of an
// ignore file
func loadPatternsFromGitignore(gitignorePath string) ([]string, error) {
	file, err := os.Open(gitignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(gitignorePath), err)
	}
	defer file.Close()

	patterns, err := parsePatterns(file)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filepath.Base(gitignorePath), err)
	}
	return patterns, nil
}

func parsePatterns(r io.Reader) ([]string, error) {
	patterns := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		// Skip empty lines and comments
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimLeft(line, " \t"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

// PatternSet represents patterns from a single ignore file
type PatternSet struct {
	Directory string   // Directory where the file was found
	Patterns  []string // Raw lines
	compiled  []gitignore.Pattern
}

// GitignoreStack holds the pattern sets of the directories currently being
// walked. Later sets take precedence, so a .gitignore deeper in the tree can
// re-include (with "!") what a parent excluded.
type GitignoreStack struct {
	stack []*PatternSet
}

// NewGitignoreStack creates a new empty gitignore stack
func NewGitignoreStack() *GitignoreStack {
	return &GitignoreStack{
		stack: make([]*PatternSet, 0),
	}
}

// Push adds patterns found in directory. domain is the directory relative to
// the scan root, as path segments; patterns only apply below it.
func (gs *GitignoreStack) Push(directory string, domain []string, patterns []string) {
	if len(patterns) == 0 {
		return // Don't push empty pattern sets
	}

	set := &PatternSet{Directory: directory, Patterns: patterns}
	for _, p := range patterns {
		set.compiled = append(set.compiled, gitignore.ParsePattern(p, domain))
	}
	gs.stack = append(gs.stack, set)
}

// Pop removes the top pattern set from the stack
func (gs *GitignoreStack) Pop() {
	if len(gs.stack) > 0 {
		gs.stack = gs.stack[:len(gs.stack)-1]
	}
}

// GetAllPatterns returns all raw patterns from the entire stack (in order)
func (gs *GitignoreStack) GetAllPatterns() []string {
	var allPatterns []string
	for _, patternSet := range gs.stack {
		allPatterns = append(allPatterns, patternSet.Patterns...)
	}
	return allPatterns
}

// ShouldExclude checks relativePath (slash separated, relative to the scan
// root) against the stack. The last matching pattern decides.
func (gs *GitignoreStack) ShouldExclude(relativePath string, isDir bool) bool {
	segments := splitPath(relativePath)
	if len(segments) == 0 {
		return false
	}

	for i := len(gs.stack) - 1; i >= 0; i-- {
		compiled := gs.stack[i].compiled
		for j := len(compiled) - 1; j >= 0; j-- {
			if result := compiled[j].Match(segments, isDir); result != gitignore.NoMatch {
				return result == gitignore.Exclude
			}
		}
	}
	return false
}

// GetStackDepth returns the current depth of the stack
func (gs *GitignoreStack) GetStackDepth() int {
	return len(gs.stack)
}

func splitPath(relativePath string) []string {
	relativePath = strings.Trim(filepath.ToSlash(relativePath), "/")
	if relativePath == "" || relativePath == "." {
		return nil
	}
	return strings.Split(relativePath, "/")
}

// StackBasedLoader loads .gitignore files while a directory tree is walked,
// pushing a pattern set on entering a directory and popping it on leaving
type StackBasedLoader struct {
	progress *progress.Progress
	logger   *slog.Logger
	stack    *GitignoreStack
	basePath string
}

// NewStackBasedLoader creates a new stack-based gitignore loader
func NewStackBasedLoader() *StackBasedLoader {
	return NewStackBasedLoaderWithLogger(nil, nil)
}

// NewStackBasedLoaderWithLogger creates a new stack-based gitignore loader with
// progress reporting and logging
func NewStackBasedLoaderWithLogger(prog *progress.Progress, logger *slog.Logger) *StackBasedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &StackBasedLoader{
		progress: prog,
		logger:   logger,
		stack:    NewGitignoreStack(),
	}
}

// Initialize sets the scan root and loads .git/info/exclude when the root is
// a repository
func (l *StackBasedLoader) Initialize(basePath string) {
	l.basePath = basePath

	gitDir, err := findGitDir(basePath)
	if err != nil {
		return // Not a git repo, that's OK
	}
	patterns, err := loadGitInfoExclude(gitDir)
	if err != nil {
		l.logger.Warn("Failed to read .git/info/exclude", "path", gitDir, "error", err)
		return
	}
	if len(patterns) > 0 {
		l.stack.Push(basePath, nil, patterns)
		l.logger.Debug("Loaded .git/info/exclude patterns", "path", gitDir, "count", len(patterns))
	}
}

// LoadAndPushGitignore loads .gitignore for directory from disk and pushes it
// to the stack. Returns true if a file was found and loaded, in which case the
// caller must PopGitignore when leaving the directory.
func (l *StackBasedLoader) LoadAndPushGitignore(directory string) bool {
	gitignorePath := filepath.Join(directory, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.progress.Info(fmt.Sprintf("Warning: Failed to read %s: %v", gitignorePath, err))
			l.logger.Error("Failed to read .gitignore file", "path", gitignorePath, "error", err)
		}
		return false
	}
	return l.PushGitignore(directory, content)
}

// PushGitignore parses content as the .gitignore of directory and pushes the
// patterns. Returns false, pushing nothing, when there are no patterns.
func (l *StackBasedLoader) PushGitignore(directory string, content []byte) bool {
	patterns, err := parsePatterns(bytes.NewReader(content))
	if err != nil {
		l.logger.Error("Failed to parse .gitignore file", "path", directory, "error", err)
		return false
	}
	if len(patterns) == 0 {
		return false
	}

	l.stack.Push(directory, l.domain(directory), patterns)
	l.logger.Debug("Loaded patterns from file", "path", filepath.Join(directory, ".gitignore"), "count", len(patterns))
	return true
}

// domain returns directory relative to the scan root as path segments
func (l *StackBasedLoader) domain(directory string) []string {
	if l.basePath == "" {
		return nil
	}
	rel, err := filepath.Rel(l.basePath, directory)
	if err != nil {
		return nil
	}
	return splitPath(rel)
}

// PopGitignore removes patterns from stack when leaving directory
func (l *StackBasedLoader) PopGitignore() {
	l.stack.Pop()
}

// ShouldExclude checks a path relative to the scan root against the current stack
func (l *StackBasedLoader) ShouldExclude(relativePath string, isDir bool) bool {
	return l.stack.ShouldExclude(relativePath, isDir)
}

// GetStack returns the current gitignore stack (for testing/debugging)
func (l *StackBasedLoader) GetStack() *GitignoreStack {
	return l.stack
}

// loadGitInfoExclude loads patterns from .git/info/exclude
func loadGitInfoExclude(gitDir string) ([]string, error) {
	excludePath := filepath.Join(gitDir, "info", "exclude")

	if _, err := os.Stat(excludePath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil // No .git/info/exclude file
	}

	return loadPatternsFromGitignore(excludePath)
}

// findGitDir finds the .git directory (handles submodules, worktrees, etc.)
func findGitDir(startPath string) (string, error) {
	gitPath := filepath.Join(startPath, ".git")

	// .git file (worktree/submodule)
	if content, err := os.ReadFile(gitPath); err == nil {
		gitDir := strings.TrimSpace(string(content))
		if strings.HasPrefix(gitDir, "gitdir: ") {
			gitDir = strings.TrimPrefix(gitDir, "gitdir: ")
			if !filepath.IsAbs(gitDir) {
				gitDir = filepath.Join(startPath, gitDir)
			}
			return gitDir, nil
		}
	}

	if stat, err := os.Stat(gitPath); err == nil && stat.IsDir() {
		return gitPath, nil
	}

	return "", fmt.Errorf("not a git repository")
}
