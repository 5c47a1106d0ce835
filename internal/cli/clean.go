package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyx-scan/nyx/internal/nyxerr"
)

func newCleanCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clean [PROJECT]",
		Short: "Remove a project from the index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := ""
			if len(args) == 1 {
				project = args[0]
			}
			return runClean(project, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove every indexed project")
	return cmd
}

func runClean(project string, all bool) error {
	if all && project != "" {
		return nyxerr.NewUser("clean takes either a PROJECT or --all, not both")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if all {
		if err := store.PurgeAll(); err != nil {
			return nyxerr.NewIndex(err, false)
		}
		fmt.Println("all indexes cleaned")
		return nil
	}

	// No argument means the project owning the current directory, the same
	// default the scan command uses.
	if project == "" {
		id, _, err := resolveProject(".")
		if err != nil {
			return err
		}
		project = id
	}

	if _, ok, err := store.Project(project); err != nil {
		return nyxerr.NewIndex(err, false)
	} else if !ok {
		fmt.Printf("no index found for %s\n", project)
		return nil
	}
	if err := store.Purge(project); err != nil {
		return nyxerr.NewIndex(err, false)
	}
	fmt.Printf("cleaned index for %s\n", project)
	return nil
}
