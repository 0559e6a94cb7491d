// Package progress defines scan progress events and the sinks that consume them.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/fulmenhq/gamescout/pkg/inventory"
)

// Stage names the orchestrator phase an event belongs to.
type Stage string

const (
	StageStart       Stage = "start"
	StageTierBegin   Stage = "tier_begin"
	StageScanner     Stage = "scanner_done"
	StageTierEnd     Stage = "tier_end"
	StageReconciling Stage = "reconciling"
	StageDone        Stage = "done"
)

// Event is one progress notification. Percent never decreases within a scan.
// NewRecords carries the candidates a finished scanner produced, before
// cross-source reconciliation.
type Event struct {
	Stage      Stage                 `json:"type"`
	Platform   inventory.Platform    `json:"platform,omitempty"`
	Tier       int                   `json:"tier,omitempty"`
	Percent    int                   `json:"percentage"`
	TotalFound int                   `json:"games_found"`
	NewRecords []inventory.Candidate `json:"games,omitempty"`
}

// Sink receives progress events. Implementations must tolerate calls from
// the orchestrator goroutine only; no concurrent calls are made.
type Sink interface {
	Report(Event)
}

// Func adapts a function to a Sink.
type Func func(Event)

// Report implements Sink.
func (f Func) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = Func(func(Event) {})

// LinePrefix starts every line written by LineSink.
const LinePrefix = "PROGRESS:"

// LineSink writes one "PROGRESS:<json>" line per event.
type LineSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineSink creates a line sink writing to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

// Report implements Sink. Write errors are ignored; progress is advisory.
func (s *LineSink) Report(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, "%s%s\n", LinePrefix, data)
}

// Multi fans events out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return Func(func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s.Report(e)
			}
		}
	})
}

// ScannerPercent is the percentage reported after completed of total
// scanners have finished: 10 + 80*completed/total, clamped to [10, 90].
func ScannerPercent(completed, total int) int {
	if total <= 0 {
		return 90
	}
	if completed > total {
		completed = total
	}
	return 10 + completed*80/total
}
