package progress

import (
	"fmt"
	"io"
	"strings"
)

// TreeHandler outputs events with tree-like visualization
type TreeHandler struct {
	writer  io.Writer
	depth   int
	timings []TimingEntry
}

func NewTreeHandler(writer io.Writer) *TreeHandler {
	return &TreeHandler{
		writer:  writer,
		timings: make([]TimingEntry, 0),
	}
}

func (h *TreeHandler) Handle(event Event) {
	indent := strings.Repeat("│  ", h.depth)
	prefix := "├─ "

	switch event.Type {
	case EventScanStart:
		fmt.Fprintf(h.writer, "Scanning %s...\n", event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "Excluding: %s\n", event.Info)
		}
		fmt.Fprintln(h.writer)

	case EventScanComplete:
		fmt.Fprintf(h.writer, "└─ Completed: %d files, %d directories in %.1fs\n",
			event.FileCount, event.DirCount, event.Duration.Seconds())
		h.printMachineReadableTimingData()

	case EventEnterDirectory:
		fmt.Fprintf(h.writer, "%s%s%s\n", indent, prefix, event.Path)
		h.depth++

	case EventLeaveDirectory:
		h.depth--
		if h.depth < 0 {
			h.depth = 0
		}
		if event.Duration > 0 {
			h.timings = append(h.timings, TimingEntry{Path: event.Path, Duration: event.Duration, Depth: h.depth})
			seconds := event.Duration.Seconds()
			fmt.Fprintf(h.writer, "%s└─ %s ⏱  %.2fs\n", strings.Repeat("│  ", h.depth), getTimingIcon(seconds), seconds)
		}

	case EventFileDetected:
		fmt.Fprintf(h.writer, "%s%s%s: %s\n", indent, prefix, event.Path, describeFile(event))

	case EventSkipped:
		fmt.Fprintf(h.writer, "%s%sSkipped %s (%s)\n", indent, prefix, event.Path, event.Reason)

	case EventInfo, EventGitIgnoreEnter, EventGitIgnoreLeave:
		fmt.Fprintf(h.writer, "%s%s%s\n", indent, prefix, event.Info)
	}
}

// printMachineReadableTimingData outputs the 10 slowest directories as CSV
func (h *TreeHandler) printMachineReadableTimingData() {
	if len(h.timings) == 0 {
		return
	}

	fmt.Fprintln(h.writer, "\n# TIMING_DATA path,seconds,depth")
	for i, timing := range sortTimingsByDuration(h.timings) {
		if i == 10 {
			break
		}
		fmt.Fprintf(h.writer, "%s,%.3f,%d\n", timing.Path, timing.Duration.Seconds(), timing.Depth)
	}
}

// NullHandler discards all events
type NullHandler struct{}

func NewNullHandler() *NullHandler {
	return &NullHandler{}
}

func (h *NullHandler) Handle(event Event) {}
