// Package config loads Nyx's two layered configuration files: nyx.conf
// (defaults, generated on first run) and nyx.local (user overrides). Both
// are YAML. Optional keys are pointer fields so "unset" stays
// distinguishable from "set to the zero value" when the layers merge.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nyx-scan/nyx/internal/nyxerr"
)

// Config is the merged view of nyx.conf and nyx.local.
type Config struct {
	Scanner     ScannerConfig     `yaml:"scanner"`
	Database    DatabaseConfig    `yaml:"database"`
	Output      OutputConfig      `yaml:"output"`
	Performance PerformanceConfig `yaml:"performance"`
}

// ScannerConfig holds the [scanner] section.
type ScannerConfig struct {
	Mode                      string   `yaml:"mode"`
	MinSeverity               string   `yaml:"min_severity"`
	MaxFileSizeMB             *int64   `yaml:"max_file_size_mb"`
	ExcludedExtensions        []string `yaml:"excluded_extensions"`
	ExcludedDirectories       []string `yaml:"excluded_directories"`
	ExcludedFiles             []string `yaml:"excluded_files"`
	ReadGlobalIgnore          *bool    `yaml:"read_global_ignore"`
	ReadVCSIgnore             *bool    `yaml:"read_vcsignore"`
	RequireGitToReadVCSIgnore *bool    `yaml:"require_git_to_read_vcsignore"`
	OneFileSystem             *bool    `yaml:"one_file_system"`
	FollowSymlinks            *bool    `yaml:"follow_symlinks"`
	ScanHiddenFiles           *bool    `yaml:"scan_hidden_files"`
	LogSkips                  *bool    `yaml:"log_skips"`

	// Reserved keys: accepted and validated, never consulted outside this
	// package.
	MaxDepth        *int `yaml:"max_depth"`
	MinDepth        *int `yaml:"min_depth"`
	ScanTimeoutSecs *int `yaml:"scan_timeout_secs"`
	MemoryLimitMB   *int `yaml:"memory_limit_mb"`
}

// DatabaseConfig holds the [database] section.
type DatabaseConfig struct {
	Path string `yaml:"path"`

	AutoCleanupDays *int  `yaml:"auto_cleanup_days"`
	MaxDBSizeMB     *int  `yaml:"max_db_size_mb"`
	VacuumOnStartup *bool `yaml:"vacuum_on_startup"`
}

// OutputConfig holds the [output] section.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	MaxResults    *int   `yaml:"max_results"`

	Quiet *bool `yaml:"quiet"`
}

// PerformanceConfig holds the [performance] section.
type PerformanceConfig struct {
	WorkerThreads        *int `yaml:"worker_threads"`
	BatchSize            *int `yaml:"batch_size"`
	ChannelMultiplier    *int `yaml:"channel_multiplier"`
	RayonThreadStackSize *int `yaml:"rayon_thread_stack_size"`
	Prune                *bool `yaml:"prune"`
}

const (
	confFileName  = "nyx.conf"
	localFileName = "nyx.local"
)

// Default returns the built-in defaults nyx.conf is seeded with on first
// run.
func Default() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Mode:                "full",
			MinSeverity:         "Low",
			ExcludedDirectories: []string{".git", "node_modules", "vendor", "dist", "build", ".venv", "__pycache__"},
		},
		Output: OutputConfig{
			DefaultFormat: "console",
		},
	}
}

// Load reads nyx.conf from dir, merges nyx.local over it if present, and
// writes a default nyx.conf when neither exists. dir is the platform
// config directory (see Dir).
func Load(dir string) (*Config, error) {
	cfg := Default()

	confPath := filepath.Join(dir, confFileName)
	data, err := os.ReadFile(confPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nyxerr.NewUser("parse %s: %v", confPath, err)
		}
	case os.IsNotExist(err):
		if writeErr := writeDefault(confPath, cfg); writeErr != nil {
			return nil, writeErr
		}
	default:
		return nil, nyxerr.NewUser("read %s: %v", confPath, err)
	}

	localPath := filepath.Join(dir, localFileName)
	if localData, err := os.ReadFile(localPath); err == nil {
		if err := mergeLocal(cfg, localData); err != nil {
			return nil, nyxerr.NewUser("parse %s: %v", localPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, nyxerr.NewUser("read %s: %v", localPath, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeLocal overlays nyx.local's contents onto cfg. Since every
// overridable field is either a string/slice (zero value means "not set
// by this layer" in practice) or an explicit pointer, decoding nyx.local
// directly into the same cfg struct yaml.v3 already holds is sufficient:
// fields absent from nyx.local simply aren't touched by Unmarshal.
func mergeLocal(cfg *Config, data []byte) error {
	return yaml.Unmarshal(data, cfg)
}

func writeDefault(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nyxerr.NewUser("create config dir: %v", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nyxerr.NewUser("marshal default config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nyxerr.NewUser("write %s: %v", path, err)
	}
	return nil
}

// Dir returns the platform configuration directory Nyx's two config files
// live in: $XDG_CONFIG_HOME/nyx (or os.UserConfigDir()'s equivalent per
// platform) with a "nyx" suffix.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", nyxerr.NewUser("resolve config directory: %v", err)
	}
	return filepath.Join(base, "nyx"), nil
}
