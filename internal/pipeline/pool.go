package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/walker"
)

// fileResult is one analyzed file's outcome, fed to the writer/reporter
// stage.
type fileResult struct {
	file     walker.File
	findings []model.Finding
	hash     string
	modTime  time.Time
	cached   bool
	err      error
}

// pool is the bounded analyzer stage: a fixed number of workers pull
// files off a channel and push results onto another. A full input channel
// blocks the walker, which is what gives the pipeline its backpressure.
type pool struct {
	store   writer
	opts    Options
	workers int
	out     chan<- fileResult
}

// writer is the subset of *index.Store the pool needs, so tests can swap in
// a fake without a real SQLite file.
type writer interface {
	Lookup(projectID, relPath, hash string, ruleSetVersion int) (model.FileRecord, bool, error)
}

func newPool(store writer, opts Options, workers int, out chan<- fileResult) *pool {
	return &pool{store: store, opts: opts, workers: workers, out: out}
}

// run spawns the worker goroutines and closes out once every file from in
// has been consumed and every worker has exited.
func (p *pool) run(ctx context.Context, in <-chan walker.File) {
	var wg sync.WaitGroup
	wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case f, ok := <-in:
					if !ok {
						return
					}
					p.out <- p.analyzeOne(ctx, f)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(p.out)
	}()
}

// analyzeOne isolates a panic in analysis to the file that caused it: the
// panic is logged with the path, surfaced as that file's diagnostic, and
// the worker moves on to its next file.
func (p *pool) analyzeOne(ctx context.Context, f walker.File) (res fileResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("analyze.panic", "path", f.RelPath, "panic", r)
			res = fileResult{file: f, err: fmt.Errorf("analysis panic: %v", r)}
		}
	}()
	return analyzeFile(ctx, f, p.store, p.opts)
}

// dedupe collapses findings value-equal on (rule_id, file_path, line,
// column), keeping first occurrence. Set membership is keyed on an xxh3
// fingerprint of the tuple rather than the tuple struct itself.
func dedupe(findings []model.Finding) []model.Finding {
	seen := make(map[uint64]struct{}, len(findings))
	out := findings[:0]
	for _, f := range findings {
		key := xxh3.HashString(f.RuleID + "\x00" + f.FilePath + "\x00" + strconv.Itoa(f.Line) + "\x00" + strconv.Itoa(f.Column))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}
