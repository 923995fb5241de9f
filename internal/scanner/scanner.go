// Package scanner walks a directory tree and runs language detection on
// every file that is not excluded by configuration or .gitignore rules.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/drshade/linguist/internal/detector"
	"github.com/drshade/linguist/internal/git"
	"github.com/drshade/linguist/internal/heuristics"
	"github.com/drshade/linguist/internal/progress"
	"github.com/drshade/linguist/internal/provider"
	"github.com/drshade/linguist/internal/types"
)

// Skip reasons recorded in Result.Skipped
const (
	ReasonExclude   = "exclude"
	ReasonGitignore = "gitignore"
)

// maxGitignoreBytes bounds how much of a .gitignore file is read
const maxGitignoreBytes = 1 << 20

// Result is the outcome of a scan. Files are sorted by path.
type Result struct {
	Root        string            `json:"root" yaml:"root"`
	Dataset     string            `json:"dataset" yaml:"dataset"`
	Git         *git.GitInfo      `json:"git,omitempty" yaml:"git,omitempty"`
	Directories int               `json:"directories" yaml:"directories"`
	Files       []detector.Result `json:"files" yaml:"files"`
	Skipped     []SkippedPath     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Errors      []FileError       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duration    time.Duration     `json:"-" yaml:"-"`
}

// SkippedPath is a file or directory left out of the scan
type SkippedPath struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// FileError records a path that could not be read
type FileError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Scanner walks a tree through a Provider. The walk itself is sequential,
// detection runs on a bounded pool of workers.
type Scanner struct {
	provider        types.Provider
	detector        *detector.Detector
	excludePatterns []string
	workers         int
	gitInfo         bool
	progress        *progress.Progress
	logger          *slog.Logger
	gitignoreStack  *git.StackBasedLoader
}

// Option configures a Scanner
type Option func(*Scanner)

// WithExcludes adds doublestar globs matched against both the relative path
// and the base name of every entry
func WithExcludes(patterns []string) Option {
	return func(s *Scanner) {
		s.excludePatterns = append(s.excludePatterns, patterns...)
	}
}

// WithWorkers sets the number of detection workers. Values below one are
// ignored.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProgress reports walk events to p
func WithProgress(p *progress.Progress) Option {
	return func(s *Scanner) {
		s.progress = p
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGitInfo toggles reading repository metadata for the scan root
func WithGitInfo(enabled bool) Option {
	return func(s *Scanner) {
		s.gitInfo = enabled
	}
}

// NewScanner creates a scanner for the directory at path
func NewScanner(path string, d *detector.Detector, opts ...Option) (*Scanner, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot scan %s: not a directory", path)
	}

	opts = append([]Option{WithGitInfo(true)}, opts...)
	return NewWithProvider(provider.NewFSProvider(absPath), d, opts...)
}

// NewWithProvider creates a scanner over an arbitrary provider. Git metadata
// is off unless WithGitInfo is given.
func NewWithProvider(p types.Provider, d *detector.Detector, opts ...Option) (*Scanner, error) {
	if d == nil {
		return nil, fmt.Errorf("scanner requires a detector")
	}
	s := &Scanner{
		provider: p,
		detector: d,
		workers:  1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, pattern := range s.excludePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	s.gitignoreStack = git.NewStackBasedLoaderWithLogger(s.progress, s.logger)
	return s, nil
}

type job struct {
	rel  string
	full string
}

type outcome struct {
	result detector.Result
	err    *FileError
}

// walkState is owned by the walking goroutine
type walkState struct {
	dirs    int
	skipped []SkippedPath
	errors  []FileError
}

// Scan walks the tree and detects every file. A cancelled context stops the
// walk and Scan returns the context error.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	basePath := s.provider.GetBasePath()
	startTime := time.Now()
	s.progress.ScanStart(basePath, s.excludePatterns)

	result := &Result{
		Root:    basePath,
		Dataset: s.detector.Store().Version(),
		Files:   []detector.Result{},
	}
	if s.gitInfo {
		t1 := time.Now()
		result.Git = git.GetGitInfo(basePath, false)
		s.logger.Debug("Retrieved git info", "duration", time.Since(t1))
	}

	// Reset per scan so a Scanner can be reused
	s.gitignoreStack = git.NewStackBasedLoaderWithLogger(s.progress, s.logger)
	s.gitignoreStack.Initialize(basePath)

	jobs := make(chan job, s.workers*4)
	outcomes := make(chan outcome, s.workers*4)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- s.detectFile(j)
			}
		}()
	}

	state := &walkState{}
	var walkErr error
	go func() {
		defer close(jobs)
		s.logger.Debug("Starting directory recursion", "path", basePath)
		walkErr = s.recurse(ctx, state, basePath, jobs)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		if o.err != nil {
			result.Errors = append(result.Errors, *o.err)
			continue
		}
		result.Files = append(result.Files, o.result)
	}

	if walkErr != nil {
		return nil, walkErr
	}

	result.Directories = state.dirs
	result.Skipped = state.skipped
	result.Errors = append(result.Errors, state.errors...)

	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Path < result.Errors[j].Path })

	result.Duration = time.Since(startTime)
	s.progress.ScanComplete(len(result.Files), result.Directories, result.Duration)
	return result, nil
}

// recurse lists dirPath, queues its files and descends into subdirectories.
// Only a failure to list the scan root is returned as an error.
func (s *Scanner) recurse(ctx context.Context, state *walkState, dirPath string, jobs chan<- job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.progress.EnterDirectory(dirPath)
	defer s.progress.LeaveDirectory(dirPath)

	files, err := s.provider.ListDir(dirPath)
	if err != nil {
		if dirPath == s.provider.GetBasePath() {
			return fmt.Errorf("failed to list %s: %w", dirPath, err)
		}
		s.logger.Warn("Failed to list directory", "path", dirPath, "error", err)
		state.errors = append(state.errors, FileError{Path: s.relPath(dirPath), Error: err.Error()})
		return nil
	}
	state.dirs++

	// Patterns only apply to this directory and below
	if s.pushGitignore(dirPath, files) {
		s.progress.GitIgnoreEnter(dirPath)
		defer func() {
			s.progress.GitIgnoreLeave(dirPath)
			s.gitignoreStack.PopGitignore()
		}()
	}

	for _, file := range files {
		if file.IsDir() && file.Name == ".git" {
			continue
		}

		rel := s.relPath(file.Path)
		if reason, skip := s.shouldSkip(rel, file.Name, file.IsDir()); skip {
			s.progress.Skipped(rel, reason)
			state.skipped = append(state.skipped, SkippedPath{Path: rel, Reason: reason})
			continue
		}

		if file.IsDir() {
			if err := s.recurse(ctx, state, file.Path, jobs); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case jobs <- job{rel: rel, full: file.Path}:
		}
	}
	return nil
}

// pushGitignore loads the .gitignore among files, if any
func (s *Scanner) pushGitignore(dirPath string, files []types.File) bool {
	for _, file := range files {
		if file.Name != ".gitignore" || file.IsDir() {
			continue
		}
		content, err := s.provider.ReadHead(file.Path, maxGitignoreBytes)
		if err != nil {
			s.logger.Warn("Failed to read .gitignore file", "path", file.Path, "error", err)
			return false
		}
		return s.gitignoreStack.PushGitignore(dirPath, content)
	}
	return false
}

// shouldSkip checks configured excludes first, then the gitignore stack
func (s *Scanner) shouldSkip(rel, name string, isDir bool) (string, bool) {
	for _, pattern := range s.excludePatterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return ReasonExclude, true
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return ReasonExclude, true
		}
	}

	if s.gitignoreStack.ShouldExclude(rel, isDir) {
		return ReasonGitignore, true
	}
	return "", false
}

func (s *Scanner) detectFile(j job) outcome {
	content, err := s.provider.ReadHead(j.full, heuristics.MaxContentBytes)
	if err != nil {
		s.logger.Warn("Failed to read file", "path", j.rel, "error", err)
		return outcome{err: &FileError{Path: j.rel, Error: err.Error()}}
	}

	res := s.detector.Detect(j.rel, content)
	s.progress.FileDetected(j.rel, res.Language, string(res.Strategy), res.Vendored)
	return outcome{result: res}
}

// relPath returns p relative to the scan root with forward slashes
func (s *Scanner) relPath(p string) string {
	rel, err := filepath.Rel(s.provider.GetBasePath(), p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
