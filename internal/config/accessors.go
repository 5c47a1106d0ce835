package config

import (
	"os"
	"path/filepath"

	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/walker"
)

// Effective* accessors resolve a possibly-nil override to its default, so
// callers never see the pointer plumbing the layered config files need.

func (c *ScannerConfig) EffectiveMaxFileSizeMB() int64 {
	if c.MaxFileSizeMB != nil {
		return *c.MaxFileSizeMB
	}
	return 50
}

func (c *ScannerConfig) EffectiveReadGlobalIgnore() bool {
	return c.ReadGlobalIgnore == nil || *c.ReadGlobalIgnore
}

func (c *ScannerConfig) EffectiveReadVCSIgnore() bool {
	return c.ReadVCSIgnore == nil || *c.ReadVCSIgnore
}

func (c *ScannerConfig) EffectiveRequireGit() bool {
	return c.RequireGitToReadVCSIgnore != nil && *c.RequireGitToReadVCSIgnore
}

func (c *ScannerConfig) EffectiveOneFileSystem() bool {
	return c.OneFileSystem != nil && *c.OneFileSystem
}

func (c *ScannerConfig) EffectiveFollowSymlinks() bool {
	return c.FollowSymlinks != nil && *c.FollowSymlinks
}

func (c *ScannerConfig) EffectiveScanHiddenFiles() bool {
	return c.ScanHiddenFiles != nil && *c.ScanHiddenFiles
}

func (c *ScannerConfig) EffectiveLogSkips() bool {
	return c.LogSkips != nil && *c.LogSkips
}

// EffectiveMinSeverity resolves the configured floor, defaulting to Low.
// Validate has already rejected unknown names by the time this runs.
func (c *ScannerConfig) EffectiveMinSeverity() model.Severity {
	if sev, err := model.ParseSeverity(c.MinSeverity); err == nil {
		return sev
	}
	return model.Low
}

func (c *OutputConfig) EffectiveMaxResults() int {
	if c.MaxResults != nil {
		return *c.MaxResults
	}
	return 0
}

func (c *PerformanceConfig) EffectiveWorkerThreads() int {
	if c.WorkerThreads != nil {
		return *c.WorkerThreads
	}
	return 0
}

func (c *PerformanceConfig) EffectiveChannelMultiplier() int {
	if c.ChannelMultiplier != nil && *c.ChannelMultiplier > 0 {
		return *c.ChannelMultiplier
	}
	return 2
}

func (c *PerformanceConfig) EffectiveBatchSize() int {
	if c.BatchSize != nil && *c.BatchSize > 0 {
		return *c.BatchSize
	}
	return 256
}

// WalkerOptions builds walker.Options from the scanner config section.
func (c *Config) WalkerOptions() walker.Options {
	s := c.Scanner
	opts := walker.Options{
		ExcludedDirectories:       s.ExcludedDirectories,
		ExcludedFiles:             s.ExcludedFiles,
		ExcludedExtensions:        s.ExcludedExtensions,
		ScanHiddenFiles:           s.EffectiveScanHiddenFiles(),
		FollowSymlinks:            s.EffectiveFollowSymlinks(),
		OneFileSystem:             s.EffectiveOneFileSystem(),
		MaxFileSizeMB:             s.EffectiveMaxFileSizeMB(),
		ReadGlobalIgnore:          s.EffectiveReadGlobalIgnore(),
		ReadVCSIgnore:             s.EffectiveReadVCSIgnore(),
		RequireGitToReadVCSIgnore: s.EffectiveRequireGit(),
		Prune:                     c.Performance.Prune != nil && *c.Performance.Prune,
		LogSkips:                  s.EffectiveLogSkips(),
	}
	if opts.ReadGlobalIgnore {
		// git's default core.excludesFile location.
		if dir, err := os.UserConfigDir(); err == nil {
			opts.GlobalIgnoreFile = filepath.Join(dir, "git", "ignore")
		}
	}
	return opts
}
