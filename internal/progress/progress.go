// Package progress reports scan events (directories entered, files
// detected, paths skipped) to a pluggable handler for verbose output.
package progress

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Progress is the centralized verbose system. File events may be reported
// from several goroutines.
type Progress struct {
	enabled     bool
	handler     Handler
	withTimings bool

	mu         sync.Mutex
	dirTimings map[string]time.Time // Track directory entry times
}

// New creates a new progress reporter
func New(enabled bool, handler Handler) *Progress {
	if handler == nil {
		handler = NewSimpleHandler(os.Stderr)
	}
	return &Progress{
		enabled:    enabled,
		handler:    handler,
		dirTimings: make(map[string]time.Time),
	}
}

// EnableTimings enables timing information in progress output
func (p *Progress) EnableTimings() {
	p.withTimings = true
}

// Enabled reports whether events reach the handler
func (p *Progress) Enabled() bool {
	return p != nil && p.enabled
}

// Report sends an event to the handler (only if enabled)
func (p *Progress) Report(event Event) {
	if !p.Enabled() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler.Handle(event)
}

// Convenience methods for the scanner to report events

func (p *Progress) ScanStart(path string, excludePatterns []string) {
	p.Report(Event{
		Type: EventScanStart,
		Path: path,
		Info: strings.Join(excludePatterns, ", "),
	})
}

func (p *Progress) ScanComplete(files, dirs int, duration time.Duration) {
	p.Report(Event{
		Type:      EventScanComplete,
		FileCount: files,
		DirCount:  dirs,
		Duration:  duration,
	})
}

func (p *Progress) EnterDirectory(path string) {
	if !p.Enabled() {
		return
	}
	if p.withTimings {
		p.mu.Lock()
		p.dirTimings[path] = time.Now()
		p.mu.Unlock()
	}
	p.Report(Event{
		Type:      EventEnterDirectory,
		Path:      path,
		Timestamp: time.Now(),
	})
}

func (p *Progress) LeaveDirectory(path string) {
	if !p.Enabled() {
		return
	}
	var duration time.Duration
	if p.withTimings {
		p.mu.Lock()
		if start, ok := p.dirTimings[path]; ok {
			duration = time.Since(start)
			delete(p.dirTimings, path)
		}
		p.mu.Unlock()
	}
	p.Report(Event{
		Type:     EventLeaveDirectory,
		Path:     path,
		Duration: duration,
	})
}

func (p *Progress) FileDetected(path, language, strategy string, vendored bool) {
	p.Report(Event{
		Type:     EventFileDetected,
		Path:     path,
		Language: language,
		Strategy: strategy,
		Vendored: vendored,
	})
}

func (p *Progress) Skipped(path, reason string) {
	p.Report(Event{
		Type:   EventSkipped,
		Path:   path,
		Reason: reason,
	})
}

func (p *Progress) Info(message string) {
	p.Report(Event{
		Type: EventInfo,
		Info: message,
	})
}

func (p *Progress) GitIgnoreEnter(path string) {
	p.Report(Event{
		Type: EventGitIgnoreEnter,
		Path: path,
		Info: fmt.Sprintf("Loaded .gitignore in %s", path),
	})
}

func (p *Progress) GitIgnoreLeave(path string) {
	p.Report(Event{
		Type: EventGitIgnoreLeave,
		Path: path,
		Info: fmt.Sprintf("Leaving .gitignore scope of %s", path),
	})
}
