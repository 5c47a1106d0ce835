package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyx-scan/nyx/internal/config"
	"github.com/nyx-scan/nyx/internal/index"
	"github.com/nyx-scan/nyx/internal/model"
	"github.com/nyx-scan/nyx/internal/nyxerr"
	"github.com/nyx-scan/nyx/internal/pattern"
	"github.com/nyx-scan/nyx/internal/pipeline"
	"github.com/nyx-scan/nyx/internal/report"
)

func newScanCmd() *cobra.Command {
	var (
		format       string
		noIndex      bool
		rebuildIndex bool
		highOnly     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [PATH]",
		Short: "Scan a project for vulnerabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runScan(cmd, path, format, noIndex, rebuildIndex, highOnly)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (console, json, csv, sarif)")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "skip using/building the index, scan directly")
	cmd.Flags().BoolVar(&rebuildIndex, "rebuild-index", false, "force a full index rebuild before scanning")
	cmd.Flags().BoolVar(&highOnly, "high-only", false, "show only High and Critical findings")
	return cmd
}

func runScan(cmd *cobra.Command, path, format string, noIndex, rebuildIndex, highOnly bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	fm, err := report.ParseFormat(format)
	if err != nil {
		return nyxerr.NewUser("--format: %v", err)
	}

	projectID, absPath, err := resolveProject(path)
	if err != nil {
		return err
	}

	var store *index.Store
	if !noIndex {
		store, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if rebuildIndex {
			if err := store.Purge(projectID); err != nil {
				return nyxerr.NewIndex(err, false)
			}
		}
	}

	res, err := pipeline.New(store).Run(cmd.Context(), scanOptions(cfg, projectID, absPath, !noIndex, highOnly))
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Path, d.Message)
	}

	mgr := report.NewManager(report.WithFormat(fm), report.WithColor(fm == report.FormatConsole))
	if err := mgr.Render(os.Stdout, res.Findings); err != nil {
		return err
	}

	hadFindings = len(res.Findings) > 0
	return nil
}

// scanOptions translates the merged config (plus scan flags) into pipeline
// options. --high-only tightens the severity floor without touching the
// persisted config.
func scanOptions(cfg *config.Config, projectID, absPath string, useIndex, highOnly bool) pipeline.Options {
	mode, _ := pipeline.ParseMode(cfg.Scanner.Mode) // Validate already vetted it
	minSeverity := cfg.Scanner.EffectiveMinSeverity()
	if highOnly && minSeverity < model.High {
		minSeverity = model.High
	}
	return pipeline.Options{
		ProjectID:         projectID,
		RootPath:          absPath,
		Mode:              mode,
		Workers:           cfg.Performance.EffectiveWorkerThreads(),
		RuleSetVersion:    pattern.RuleSetVersion(),
		WriteIndex:        useIndex,
		UseIndex:          useIndex,
		ChannelMultiplier: cfg.Performance.EffectiveChannelMultiplier(),
		BatchSize:         cfg.Performance.EffectiveBatchSize(),
		MinSeverity:       minSeverity,
		MaxResults:        cfg.Output.EffectiveMaxResults(),
		WalkerOptions:     cfg.WalkerOptions(),
	}
}
