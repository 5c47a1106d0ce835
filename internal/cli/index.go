package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyx-scan/nyx/internal/nyxerr"
	"github.com/nyx-scan/nyx/internal/pattern"
	"github.com/nyx-scan/nyx/internal/pipeline"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage project indexes",
	}
	cmd.AddCommand(newIndexBuildCmd(), newIndexStatusCmd())
	return cmd
}

func newIndexBuildCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "build [PATH]",
		Short: "Build or update the index for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runIndexBuild(cmd, path, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "force a full rebuild")
	return cmd
}

func runIndexBuild(cmd *cobra.Command, path string, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projectID, absPath, err := resolveProject(path)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if force {
		if err := store.Purge(projectID); err != nil {
			return nyxerr.NewIndex(err, false)
		}
	}

	opts := scanOptions(cfg, projectID, absPath, true, false)
	opts.UseIndex = !force
	res, err := pipeline.New(store).Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Path, d.Message)
	}
	fmt.Printf("index built: %s (%d files scanned, %d cached, %d findings)\n",
		projectID, res.FilesScanned, res.FilesCached, len(res.Findings))
	return nil
}

func newIndexStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [PATH]",
		Short: "Show index status and statistics for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runIndexStatus(path)
		},
	}
}

func runIndexStatus(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projectID, _, err := resolveProject(path)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, ok, err := store.Project(projectID)
	if err != nil {
		return nyxerr.NewIndex(err, false)
	}
	fmt.Println("Project status")
	fmt.Printf("  %-14s %s\n", "Project", projectID)
	fmt.Printf("  %-14s %v\n", "Indexed", ok)
	fmt.Printf("  %-14s %d\n", "Rule set", pattern.RuleSetVersion())
	if ok {
		fmt.Printf("  %-14s %s\n", "Root", rec.RootPath)
		fmt.Printf("  %-14s %d\n", "Files", rec.FileCount)
		fmt.Printf("  %-14s %d\n", "Findings", rec.FindingCount)
		if !rec.LastScanAt.IsZero() {
			fmt.Printf("  %-14s %s\n", "Last scan", rec.LastScanAt.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
