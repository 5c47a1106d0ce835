// Package pipeline orchestrates a full scan: walk -> parse -> analyse ->
// index, as a bounded multi-stage channel pipeline. The walker is the sole
// producer onto a bounded work queue, a fixed pool of workers analyses
// files, and a single consumer goroutine owns the index batch. A full
// queue blocks the producer instead of dropping work.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nyx-scan/nyx/internal/index"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/walker"
)

// Mode gates which analysis stages run for a scan.
type Mode int

const (
	// ModeAST runs only the pattern engine over the parsed syntax tree.
	ModeAST Mode = iota
	// ModeCFG runs CFG construction and taint, skipping pattern matching.
	ModeCFG
	// ModeFull runs patterns, CFG construction, and taint dataflow.
	ModeFull
)

// ParseMode parses a mode name from config/CLI input.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "full":
		return ModeFull, nil
	case "ast":
		return ModeAST, nil
	case "cfg":
		return ModeCFG, nil
	default:
		return ModeFull, fmt.Errorf("pipeline: unknown mode %q", s)
	}
}

// Options configures a single Run.
type Options struct {
	ProjectID      string
	RootPath       string
	Mode           Mode
	Workers        int
	RuleSetVersion int
	WriteIndex     bool
	UseIndex       bool // consult the index and skip unchanged files

	// ChannelMultiplier sizes the bounded work/finding queues as
	// workers × multiplier; zero means the default of 2.
	ChannelMultiplier int
	// BatchSize is how many file records accumulate before one index
	// transaction commits them; zero means the default of 256.
	BatchSize int

	// MinSeverity drops reported findings below the floor. Index records
	// always store the full set so a later scan with a lower floor still
	// hits the cache.
	MinSeverity model.Severity
	// MaxResults, when positive, truncates the reported findings after
	// final ordering and dedup.
	MaxResults int

	WalkerOptions walker.Options
}

func (o Options) channelCapacity(workers int) int {
	mult := o.ChannelMultiplier
	if mult <= 0 {
		mult = 2
	}
	return workers * mult
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return 256
}

// Result summarises a completed scan for reporting.
type Result struct {
	RunID        string
	ProjectID    string
	FilesWalked  int
	FilesScanned int
	FilesCached  int
	FilesSkipped int
	Findings     []model.Finding
	Diagnostics  []model.Diagnostic
	Elapsed      time.Duration
}

// Pipeline ties a walker, an analyzer pool, and an index store together.
type Pipeline struct {
	Store *index.Store
}

// New creates a Pipeline backed by store. Store may be nil when WriteIndex
// and UseIndex are both false (e.g. a one-off scan with no caching).
func New(store *index.Store) *Pipeline {
	return &Pipeline{Store: store}
}

// Run walks opts.RootPath, analyses every discovered file under opts.Mode,
// and optionally persists results to the index. Per-file errors are
// isolated as Diagnostics; Run itself only returns an error for
// conditions that abort the whole scan (a root path that cannot be made
// absolute, cancelled context, index write failure). An unreadable or
// missing root directory yields no files rather than an error.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	runID := newRunID()
	start := time.Now()
	slog.Info("pipeline.start", "run", runID, "project", opts.ProjectID, "path", opts.RootPath, "mode", opts.Mode)

	if opts.WriteIndex || opts.UseIndex {
		if p.Store == nil {
			return Result{}, fmt.Errorf("pipeline: index requested but no store configured")
		}
		if err := p.Store.EnsureProject(opts.ProjectID, opts.RootPath); err != nil {
			return Result{}, fmt.Errorf("pipeline: ensure project: %w", err)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	capacity := opts.channelCapacity(workers)

	filesCh := make(chan walker.File, capacity)
	walkDiagCh := make(chan model.Diagnostic, capacity)
	findingsCh := make(chan fileResult, capacity)

	pool := newPool(p.Store, opts, workers, findingsCh)
	pool.run(ctx, filesCh)

	var res Result
	res.RunID = runID
	res.ProjectID = opts.ProjectID

	var g errgroup.Group
	g.Go(func() error {
		return walker.Walk(ctx, opts.RootPath, opts.WalkerOptions, filesCh, walkDiagCh)
	})

	var walkDiags []model.Diagnostic
	g.Go(func() error {
		for d := range walkDiagCh {
			walkDiags = append(walkDiags, d)
		}
		return nil
	})

	// This loop is the dedicated index-writer stage: the sole consumer of
	// the finding queue and the only goroutine that writes to the store
	// (workers only read from it through Lookup).
	var batch *index.Batch
	if opts.WriteIndex && p.Store != nil {
		batch = p.Store.NewBatch()
	}
	batchSize := opts.batchSize()

	for fr := range findingsCh {
		res.FilesWalked++
		if fr.err != nil {
			res.FilesSkipped++
			res.Diagnostics = append(res.Diagnostics, model.Diagnostic{Path: fr.file.RelPath, Message: fr.err.Error()})
			continue
		}
		if fr.cached {
			res.FilesCached++
		} else {
			res.FilesScanned++
			if batch != nil {
				batch.Add(model.FileRecord{
					ProjectID:      opts.ProjectID,
					RelPath:        fr.file.RelPath,
					ContentHash:    fr.hash,
					ModifiedTime:   fr.modTime,
					RuleSetVersion: opts.RuleSetVersion,
					Findings:       fr.findings,
				})
				if batch.Len() >= batchSize {
					if err := batch.Commit(); err != nil {
						return res, fmt.Errorf("pipeline: index commit: %w", err)
					}
				}
			}
		}
		res.Findings = append(res.Findings, fr.findings...)
	}

	if batch != nil {
		if err := batch.Commit(); err != nil {
			return res, fmt.Errorf("pipeline: index flush: %w", err)
		}
	}

	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("pipeline: walk: %w", err)
	}
	res.Diagnostics = append(res.Diagnostics, walkDiags...)

	if opts.WriteIndex && p.Store != nil {
		if err := p.Store.TouchScan(opts.ProjectID); err != nil {
			return res, fmt.Errorf("pipeline: touch scan: %w", err)
		}
	}

	res.Findings = assemble(res.Findings, opts.MinSeverity, opts.MaxResults)
	res.Elapsed = time.Since(start)
	slog.Info("pipeline.done", "run", runID, "walked", res.FilesWalked, "scanned", res.FilesScanned,
		"cached", res.FilesCached, "skipped", res.FilesSkipped, "findings", len(res.Findings), "elapsed", res.Elapsed)
	return res, nil
}

// assemble applies the reporting pipeline's final steps in order: dedup,
// severity floor, stable (file, line, column, rule) ordering, then
// max-results truncation last.
func assemble(findings []model.Finding, minSeverity model.Severity, maxResults int) []model.Finding {
	findings = dedupe(findings)

	kept := findings[:0]
	for _, f := range findings {
		if f.Severity >= minSeverity {
			kept = append(kept, f)
		}
	}
	findings = kept

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].FilePath != findings[j].FilePath {
			return findings[i].FilePath < findings[j].FilePath
		}
		return model.Less(findings[i], findings[j])
	})

	if maxResults > 0 && len(findings) > maxResults {
		findings = findings[:maxResults]
	}
	return findings
}

func newRunID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "run-unknown"
	}
	return id.String()
}
