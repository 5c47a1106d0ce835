// Package walker performs the parallel directory traversal feeding the
// scan pipeline: for each entry, the exclude/ignore/size/extension/symlink/
// device decisions apply in a fixed order, and accepted files are handed
// to the analyzer pool over a bounded channel that the walker is the sole
// producer onto. Subdirectories fan out across a bounded set of goroutines
// internal to this package, independent of the analyzer pool's sizing.
package walker

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/nyx-scan/nyx/internal/lang"
	"github.com/nyx-scan/nyx/internal/model"
)

// Options configures one walk, sourced from the [scanner] config section.
type Options struct {
	ExcludedDirectories       []string
	ExcludedFiles             []string
	ExcludedExtensions        []string
	ScanHiddenFiles           bool
	FollowSymlinks            bool
	OneFileSystem             bool
	MaxFileSizeMB             int64
	ReadGlobalIgnore          bool
	ReadVCSIgnore             bool
	RequireGitToReadVCSIgnore bool
	Prune                     bool
	GlobalIgnoreFile          string

	// LogSkips, when set, surfaces every filtered path on the diagnostics
	// channel instead of dropping it silently.
	LogSkips bool
}

// File is one path the walker accepted for analysis.
type File struct {
	AbsPath  string
	RelPath  string
	Language lang.Language
}

type walker struct {
	ctx            context.Context
	opts           Options
	root           string
	out            chan<- File
	diag           chan<- model.Diagnostic
	globalPatterns []gitignore.Pattern
	vcsEnabled     bool
	rootDevice     uint64
	hasDevice      bool

	// sem bounds how many directory visits run concurrently; wg tracks the
	// goroutines spawned for subtrees so Walk can wait for the whole tree.
	sem chan struct{}
	wg  sync.WaitGroup
}

// Walk traverses root according to opts, sending accepted Files on out.
// Both out and diag (if non-nil) are closed when the walk completes or ctx
// is cancelled. The bounded capacity of out is what gives the pipeline its
// backpressure: Walk blocks on a full channel rather than buffering paths.
func Walk(ctx context.Context, root string, opts Options, out chan<- File, diag chan<- model.Diagnostic) error {
	defer close(out)
	if diag != nil {
		defer close(diag)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	w := &walker{ctx: ctx, opts: opts, root: absRoot, out: out, diag: diag}
	w.sem = make(chan struct{}, runtime.NumCPU())
	w.rootDevice, w.hasDevice = deviceOf(absRoot)

	if opts.ReadGlobalIgnore && opts.GlobalIgnoreFile != "" {
		w.globalPatterns, _ = loadPatternFile(opts.GlobalIgnoreFile, nil)
	}
	if opts.ReadVCSIgnore {
		w.vcsEnabled = true
		if opts.RequireGitToReadVCSIgnore {
			_, statErr := os.Stat(filepath.Join(absRoot, ".git"))
			w.vcsEnabled = statErr == nil
		}
	}

	w.walkTree(ctx, absRoot, "", nil)
	w.wg.Wait()
	return ctx.Err()
}

func (w *walker) emitSkip(relPath, reason string) {
	if !w.opts.LogSkips || w.diag == nil {
		return
	}
	select {
	case w.diag <- model.Diagnostic{Path: relPath, Message: reason}:
	case <-w.ctx.Done():
	}
}

// walkTree descends into absDir (whose path relative to root is relDir),
// with vcsPatterns carrying every .gitignore pattern accumulated from root
// down to absDir's parent (pre-order traversal loads each directory's own
// patterns before deciding its children, exactly matching git's semantics).
// Sibling subtrees may be walked concurrently, so vcsPatterns is never
// appended to in place; each directory builds its own merged copy.
func (w *walker) walkTree(ctx context.Context, absDir, relDir string, vcsPatterns []gitignore.Pattern) {
	if ctx.Err() != nil {
		return
	}

	if w.vcsEnabled {
		domain := splitRel(relDir)
		if local, err := loadPatternFile(filepath.Join(absDir, ".gitignore"), domain); err == nil && len(local) > 0 {
			merged := make([]gitignore.Pattern, 0, len(vcsPatterns)+len(local))
			merged = append(merged, vcsPatterns...)
			merged = append(merged, local...)
			vcsPatterns = merged
		}
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		w.emitSkip(relDir, fmt.Sprintf("readdir: %v", err))
		return // per-file/per-dir errors are diagnostics, never fatal
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		name := entry.Name()
		rel := name
		if relDir != "" {
			rel = path.Join(relDir, name)
		}
		abs := filepath.Join(absDir, name)

		if !w.opts.ScanHiddenFiles && strings.HasPrefix(name, ".") {
			w.emitSkip(rel, "hidden")
			continue
		}

		isSymlink := entry.Type()&os.ModeSymlink != 0
		info, infoErr := entry.Info()
		if infoErr != nil {
			w.emitSkip(rel, fmt.Sprintf("stat: %v", infoErr))
			continue
		}

		if entry.IsDir() {
			w.visitDir(ctx, name, rel, abs, vcsPatterns)
			continue
		}

		if isSymlink {
			if !w.opts.FollowSymlinks {
				w.emitSkip(rel, "symlink")
				continue
			}
			target, err := filepath.EvalSymlinks(abs)
			if err != nil {
				w.emitSkip(rel, fmt.Sprintf("broken symlink: %v", err))
				continue
			}
			targetInfo, err := os.Stat(target)
			if err != nil {
				w.emitSkip(rel, fmt.Sprintf("symlink target: %v", err))
				continue
			}
			if targetInfo.IsDir() {
				w.visitDir(ctx, name, rel, target, vcsPatterns)
				continue
			}
			info = targetInfo
			abs = target
		}

		w.visitFile(name, rel, abs, info, vcsPatterns)
	}
}

func (w *walker) visitDir(ctx context.Context, name, rel, abs string, vcsPatterns []gitignore.Pattern) {
	if matchesAny(name, rel, w.opts.ExcludedDirectories) {
		w.emitSkip(rel, "excluded_directories")
		return
	}
	if w.opts.OneFileSystem && w.hasDevice {
		if dev, ok := deviceOf(abs); ok && dev != w.rootDevice {
			w.emitSkip(rel, "one_file_system")
			return
		}
	}
	if w.matchIgnored(rel, true, vcsPatterns) {
		w.emitSkip(rel, "vcs_or_global_ignore")
		return
	}
	// opts.Prune is inherent here: excluded directories are never descended
	// into, so their subtrees are never read from disk at all.
	//
	// Fan the subtree out to its own goroutine when a slot is free;
	// otherwise descend inline, which bounds both goroutine count and the
	// recursion's appetite without ever blocking on a full semaphore.
	select {
	case w.sem <- struct{}{}:
		w.wg.Add(1)
		go func() {
			defer func() {
				<-w.sem
				w.wg.Done()
			}()
			w.walkTree(ctx, abs, rel, vcsPatterns)
		}()
	default:
		w.walkTree(ctx, abs, rel, vcsPatterns)
	}
}

func (w *walker) visitFile(name, rel, abs string, info os.FileInfo, vcsPatterns []gitignore.Pattern) {
	if matchesAny(name, rel, w.opts.ExcludedFiles) {
		w.emitSkip(rel, "excluded_files")
		return
	}
	if w.opts.MaxFileSizeMB > 0 && info.Size() > w.opts.MaxFileSizeMB*1024*1024 {
		w.emitSkip(rel, "max_file_size_mb")
		return
	}
	ext := filepath.Ext(name)
	if matchesAny(ext, ext, w.opts.ExcludedExtensions) {
		w.emitSkip(rel, "excluded_extensions")
		return
	}
	language, ok := lang.LanguageForExtension(ext)
	if !ok {
		w.emitSkip(rel, "unsupported_extension")
		return
	}
	if w.matchIgnored(rel, false, vcsPatterns) {
		w.emitSkip(rel, "vcs_or_global_ignore")
		return
	}
	// A cancelled scan may have no consumers left; never block forever on
	// the handoff.
	select {
	case w.out <- File{AbsPath: abs, RelPath: filepath.ToSlash(rel), Language: language}:
	case <-w.ctx.Done():
	}
}

func (w *walker) matchIgnored(rel string, isDir bool, vcsPatterns []gitignore.Pattern) bool {
	components := splitRel(rel)
	if len(vcsPatterns) > 0 && gitignore.NewMatcher(vcsPatterns).Match(components, isDir) {
		return true
	}
	if len(w.globalPatterns) > 0 && gitignore.NewMatcher(w.globalPatterns).Match(components, isDir) {
		return true
	}
	return false
}

func matchesAny(name, rel string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
		if matched, _ := filepath.Match(p, rel); matched {
			return true
		}
	}
	return false
}

func splitRel(rel string) []string {
	if rel == "" {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}
