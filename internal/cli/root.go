// Package cli is the thin command-line adapter over the scan pipeline
// and index. Every subcommand translates flags into one call against
// internal/pipeline, internal/index, or internal/config and renders the
// result; no analysis logic lives here.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nyx-scan/nyx/internal/config"
	"github.com/nyx-scan/nyx/internal/index"
	"github.com/nyx-scan/nyx/internal/nyxerr"
)

// hadFindings records whether the scan surfaced findings at or above the
// severity floor, for the 0-vs-1 exit-code distinction.
var hadFindings bool

// ranCommand distinguishes flag/arg parse failures (cobra errors before any
// RunE executes, exit 2) from failures inside a command (exit per taxonomy).
var ranCommand bool

// NewRootCmd builds the nyx command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nyx",
		Short:         "A fast vulnerability scanner with project indexing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ranCommand = true
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newScanCmd(), newIndexCmd(), newListCmd(), newCleanCmd())
	return root
}

// Execute runs the command tree and returns the process exit code per the
// CLI contract: 0 clean, 1 findings, 2 user error, 3 internal error.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nyx: %v\n", err)
		if !ranCommand {
			return 2 // cobra rejected the flags/args before any command ran
		}
	}
	return nyxerr.ExitCode(err, hadFindings)
}

// loadConfig reads the layered nyx.conf/nyx.local pair from the platform
// config directory.
func loadConfig() (*config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

// openStore opens the index database named by the config, defaulting to
// index.db inside the platform config directory.
func openStore(cfg *config.Config) (*index.Store, error) {
	path := cfg.Database.Path
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nyxerr.NewIndex(err, false)
		}
		path = filepath.Join(dir, "index.db")
	}
	store, err := index.Open(path)
	if err != nil {
		return nil, nyxerr.NewIndex(err, false)
	}
	return store, nil
}

// resolveProject canonicalises a user-supplied path and derives the project
// identifier from its base name, the same naming rule `list` and `clean`
// operate on.
func resolveProject(path string) (projectID, absPath string, err error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", nyxerr.NewUser("resolve path %q: %v", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", "", nyxerr.NewUser("path %q: %v", path, err)
	}
	if !info.IsDir() {
		return "", "", nyxerr.NewUser("path %q is not a directory", path)
	}
	return filepath.Base(abs), abs, nil
}
