package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyx-scan/nyx/internal/nyxerr"
)

func newListCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all indexed projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed information")
	return cmd
}

func runList(verbose bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := store.ListProjects()
	if err != nil {
		return nyxerr.NewIndex(err, false)
	}
	fmt.Println("Indexed projects")
	if len(projects) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("  %s\n", p.ProjectID)
		if verbose {
			fmt.Printf("    %-10s %s\n", "Root", p.RootPath)
			fmt.Printf("    %-10s %d files, %d findings\n", "Indexed", p.FileCount, p.FindingCount)
			fmt.Printf("    %-10s %s\n", "Created", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if !p.LastScanAt.IsZero() {
				fmt.Printf("    %-10s %s\n", "Last scan", p.LastScanAt.Local().Format("2006-01-02 15:04:05"))
			}
		}
	}
	return nil
}
