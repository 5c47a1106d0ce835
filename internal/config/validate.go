package config

import (
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/nyxerr"
	"github.com/nyx-scan/nyx/internal/pipeline"
	"github.com/nyx-scan/nyx/internal/report"
)

// Validate checks every recognised key against its enum/range, returning a
// nyxerr.UserError (exit code 2) on the first violation. Reserved keys
// (auto_cleanup_days, max_db_size_mb, vacuum_on_startup, quiet, max_depth,
// min_depth, scan_timeout_secs, memory_limit_mb) are range/type-checked
// here but not otherwise read, per the pinned Open Question decision.
func Validate(cfg *Config) error {
	if _, err := pipeline.ParseMode(cfg.Scanner.Mode); err != nil {
		return nyxerr.NewUser("scanner.mode: %v", err)
	}
	if cfg.Scanner.MinSeverity != "" {
		if _, err := model.ParseSeverity(cfg.Scanner.MinSeverity); err != nil {
			return nyxerr.NewUser("scanner.min_severity: %v", err)
		}
	}
	if cfg.Scanner.MaxFileSizeMB != nil && *cfg.Scanner.MaxFileSizeMB < 0 {
		return nyxerr.NewUser("scanner.max_file_size_mb must be >= 0")
	}
	if cfg.Scanner.MaxDepth != nil && cfg.Scanner.MinDepth != nil && *cfg.Scanner.MaxDepth < *cfg.Scanner.MinDepth {
		return nyxerr.NewUser("scanner.max_depth must be >= scanner.min_depth")
	}

	if _, err := report.ParseFormat(cfg.Output.DefaultFormat); err != nil {
		return nyxerr.NewUser("output.default_format: %v", err)
	}
	if cfg.Output.MaxResults != nil && *cfg.Output.MaxResults < 0 {
		return nyxerr.NewUser("output.max_results must be >= 0")
	}

	if cfg.Performance.WorkerThreads != nil && *cfg.Performance.WorkerThreads < 0 {
		return nyxerr.NewUser("performance.worker_threads must be >= 0")
	}
	if cfg.Performance.BatchSize != nil && *cfg.Performance.BatchSize <= 0 {
		return nyxerr.NewUser("performance.batch_size must be > 0")
	}
	if cfg.Performance.ChannelMultiplier != nil && *cfg.Performance.ChannelMultiplier <= 0 {
		return nyxerr.NewUser("performance.channel_multiplier must be > 0")
	}

	return nil
}
