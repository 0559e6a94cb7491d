// Package scan runs the discovery sources tier by tier and reconciles their
// candidates into the final inventory.
package scan

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/progress"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/volume"
	"github.com/fulmenhq/gamescout/pkg/work"
	"github.com/hashicorp/go-multierror"
)

// State is the orchestrator lifecycle phase.
type State int32

const (
	Idle State = iota
	Enumerating
	Tier1
	Tier2
	Tier3
	Reconciling
	Done
)

var stateNames = [...]string{"idle", "enumerating", "tier1", "tier2", "tier3", "reconciling", "done"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

func tierState(t sources.Tier) State {
	switch t {
	case sources.TierFast:
		return Tier1
	case sources.TierMedium:
		return Tier2
	default:
		return Tier3
	}
}

// DefaultTierCaps are the per-tier concurrency caps.
var DefaultTierCaps = map[sources.Tier]int{
	sources.TierFast:   4,
	sources.TierMedium: 2,
	sources.TierSlow:   1,
}

// initial percentage once volumes are known
const enumeratedPercent = 5

// Diagnostics records which sources ran and which failed.
type Diagnostics struct {
	Attempted []inventory.Platform `json:"attempted"`
	Failed    []inventory.Platform `json:"failed,omitempty"`
	errs      *multierror.Error
}

// Err returns the aggregated scanner failures, or nil.
func (d Diagnostics) Err() error {
	return d.errs.ErrorOrNil()
}

// Result is the outcome of one scan.
type Result struct {
	Entries     []inventory.Entry `json:"games"`
	Stats       inventory.Stats   `json:"stats"`
	Volumes     []volume.Volume   `json:"volumes"`
	Diagnostics Diagnostics       `json:"diagnostics"`
}

// Orchestrator schedules the scanners. One Orchestrator runs one scan at a
// time; concurrent ScanAll calls are serialized.
type Orchestrator struct {
	enumerator volume.Enumerator
	scanners   []sources.Scanner
	env        sources.Env
	caps       map[sources.Tier]int
	sink       progress.Sink

	mu    sync.Mutex
	state atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithScanners replaces the default ten scanners.
func WithScanners(scanners ...sources.Scanner) Option {
	return func(o *Orchestrator) { o.scanners = scanners }
}

// WithEnv sets the filesystem, registry and filter handed to scanners. Its
// Volumes field is ignored; volumes come from the enumerator.
func WithEnv(env sources.Env) Option {
	return func(o *Orchestrator) { o.env = env }
}

// WithTierCaps overrides tier caps; non-positive values keep the default.
func WithTierCaps(caps map[sources.Tier]int) Option {
	return func(o *Orchestrator) {
		for t, n := range caps {
			if n > 0 {
				o.caps[t] = n
			}
		}
	}
}

// WithProgress sets the progress sink.
func WithProgress(sink progress.Sink) Option {
	return func(o *Orchestrator) {
		if sink != nil {
			o.sink = sink
		}
	}
}

// New creates an orchestrator over the given volume enumerator.
func New(enumerator volume.Enumerator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		enumerator: enumerator,
		scanners:   sources.NewScanners(sources.Options{}),
		env:        sources.SystemEnv(nil),
		caps:       make(map[sources.Tier]int, len(DefaultTierCaps)),
		sink:       progress.Discard,
	}
	for t, n := range DefaultTierCaps {
		o.caps[t] = n
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	logger.Trace("Scan state", logger.String("state", s.String()))
}

// run tracks the mutable state of one ScanAll call. It is only touched by
// the orchestrator goroutine.
type run struct {
	candidates []inventory.Candidate
	diag       Diagnostics
	completed  int
	found      int
	percent    int
}

// ScanAll runs every scanner and returns the reconciled inventory. Scanner
// failures never fail the scan; the error is non-nil only when ctx ends, and
// the state is then back to Idle.
func (o *Orchestrator) ScanAll(ctx context.Context) (_ *Result, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if err != nil {
			o.setState(Idle)
		}
	}()

	start := time.Now()
	o.setState(Enumerating)
	o.sink.Report(progress.Event{Stage: progress.StageStart})

	volumes, err := o.enumerator.ListAccessibleVolumes(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Volume enumeration failed, scanning without volumes", logger.Err(err))
		volumes = nil
	}
	logger.Debug("Volumes enumerated", logger.Strings("roots", volume.Roots(volumes)))

	env := o.env
	env.Volumes = volumes

	r := &run{percent: enumeratedPercent}
	for _, tier := range sources.Tiers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.runTier(ctx, tier, env, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.setState(Reconciling)
	o.sink.Report(progress.Event{Stage: progress.StageReconciling, Percent: r.percent, TotalFound: r.found})
	entries := inventory.Deduplicate(r.candidates)
	stats := inventory.ComputeStats(entries, time.Since(start))

	o.setState(Done)
	o.sink.Report(progress.Event{Stage: progress.StageDone, Percent: 100, TotalFound: stats.Total})

	logger.Info("Scan completed",
		logger.Int("games", stats.Total),
		logger.Int("platforms", stats.Platforms),
		logger.Int("candidates", len(r.candidates)),
		logger.Int("failed_sources", len(r.diag.Failed)),
		logger.Duration("elapsed", stats.Elapsed))

	return &Result{Entries: entries, Stats: stats, Volumes: volumes, Diagnostics: r.diag}, nil
}

// runTier runs the scanners of one tier through a bounded pool and appends
// their candidates in scanner order once all of them have returned.
func (o *Orchestrator) runTier(ctx context.Context, tier sources.Tier, env sources.Env, r *run) {
	var group []sources.Scanner
	for _, s := range o.scanners {
		if s.Tier() == tier {
			group = append(group, s)
		}
	}

	o.setState(tierState(tier))
	o.sink.Report(progress.Event{Stage: progress.StageTierBegin, Tier: int(tier), Percent: r.percent, TotalFound: r.found})

	tasks := make([]work.Task[[]inventory.Candidate], len(group))
	for i, s := range group {
		s := s
		tasks[i] = work.Task[[]inventory.Candidate]{
			ID:  strconv.Itoa(i),
			Run: func(ctx context.Context) ([]inventory.Candidate, error) { return s.Scan(ctx, env) },
		}
	}

	results := make([][]inventory.Candidate, len(group))
	errs := make([]error, len(group))
	dispatcher := work.NewDispatcher(work.DispatcherConfig{MaxWorkers: o.caps[tier], Name: "tier-" + tier.String()})

	work.Execute(ctx, dispatcher, tasks, func(res work.Result[[]inventory.Candidate]) {
		i, _ := strconv.Atoi(res.TaskID)
		platform := group[i].Platform()
		r.completed++
		if res.Err != nil {
			errs[i] = res.Err
			logger.Warn("Source scan failed", logger.Platform(platform), logger.Err(res.Err))
		} else {
			results[i] = res.Value
			r.found += len(res.Value)
			logger.Debug("Source scan completed",
				logger.Platform(platform),
				logger.Int("candidates", len(res.Value)),
				logger.Duration("elapsed", res.Duration))
		}
		r.percent = max(r.percent, progress.ScannerPercent(r.completed, len(o.scanners)))
		o.sink.Report(progress.Event{
			Stage:      progress.StageScanner,
			Platform:   platform,
			Tier:       int(tier),
			Percent:    r.percent,
			TotalFound: r.found,
			NewRecords: results[i],
		})
	})

	for i, s := range group {
		r.diag.Attempted = append(r.diag.Attempted, s.Platform())
		if errs[i] != nil {
			r.diag.Failed = append(r.diag.Failed, s.Platform())
			r.diag.errs = multierror.Append(r.diag.errs, fmt.Errorf("%s: %w", s.Platform(), errs[i]))
			continue
		}
		r.candidates = append(r.candidates, results[i]...)
	}

	o.sink.Report(progress.Event{Stage: progress.StageTierEnd, Tier: int(tier), Percent: r.percent, TotalFound: r.found})
}
