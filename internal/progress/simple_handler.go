package progress

import (
	"fmt"
	"io"
	"time"
)

// SimpleHandler outputs events as simple lines (no tree)
type SimpleHandler struct {
	writer    io.Writer
	timings   []TimingEntry // Track all timings for summary
	scanStart time.Time
}

func NewSimpleHandler(writer io.Writer) *SimpleHandler {
	return &SimpleHandler{
		writer:  writer,
		timings: make([]TimingEntry, 0),
	}
}

func (h *SimpleHandler) Handle(event Event) {
	switch event.Type {
	case EventScanStart:
		h.scanStart = time.Now()
		fmt.Fprintf(h.writer, "[SCAN] Starting: %s\n", event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "[SCAN] Excluding: %s\n", event.Info)
		}

	case EventScanComplete:
		fmt.Fprintf(h.writer, "[SCAN] Completed: %d files, %d directories in %.1fs\n",
			event.FileCount, event.DirCount, event.Duration.Seconds())
		h.printConciseTimingSummary()

	case EventEnterDirectory:
		fmt.Fprintf(h.writer, "[DIR]  Entering: %s\n", event.Path)

	case EventLeaveDirectory:
		if event.Duration > 0 {
			h.timings = append(h.timings, TimingEntry{Path: event.Path, Duration: event.Duration})
			seconds := event.Duration.Seconds()
			fmt.Fprintf(h.writer, "[TIME] %s: %s %.2fs\n", event.Path, getTimingIcon(seconds), seconds)
		}

	case EventFileDetected:
		fmt.Fprintf(h.writer, "[FILE] %s: %s\n", event.Path, describeFile(event))

	case EventSkipped:
		fmt.Fprintf(h.writer, "[SKIP] Excluding: %s (%s)\n", event.Path, event.Reason)

	case EventInfo:
		fmt.Fprintf(h.writer, "[INFO] %s\n", event.Info)

	case EventGitIgnoreEnter, EventGitIgnoreLeave:
		fmt.Fprintf(h.writer, "[GIT]  %s\n", event.Info)
	}
}

// printConciseTimingSummary prints the directory count, average and slowest directory
func (h *SimpleHandler) printConciseTimingSummary() {
	if len(h.timings) == 0 {
		return
	}

	var total time.Duration
	for _, timing := range h.timings {
		total += timing.Duration
	}
	slowest := sortTimingsByDuration(h.timings)[0]

	fmt.Fprintf(h.writer, "\n📊 TIMING SUMMARY\n")
	fmt.Fprintf(h.writer, "   • Total directories: %d\n", len(h.timings))
	fmt.Fprintf(h.writer, "   • Average per directory: %.3fs\n", total.Seconds()/float64(len(h.timings)))
	fmt.Fprintf(h.writer, "   • Slowest: %s (%.2fs)\n", shortenPath(slowest.Path, 50), slowest.Duration.Seconds())
	fmt.Fprintln(h.writer)
}
