package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toscrape/harvester/internal/config"
	"github.com/toscrape/harvester/internal/database"
)

// NewRunsCmd creates the runs command.
// This command inspects harvest runs stored in the local database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and inspect stored harvest runs",
		Long: `Runs lists the harvest datasets stored in the local SQLite database
and can print any stored dataset as JSON.

Each 'harvester harvest' invocation stores its finished dataset unless
--no-db was given. This command reads that history.

Examples:
  # List all stored runs
  harvester runs

  # Print the most recent dataset as JSON
  harvester runs --latest

  # Print a specific run's dataset by id
  harvester runs --show-id 5`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().BoolP("latest", "l", false,
		"Print the most recent run's dataset as JSON")
	cmd.Flags().Int64P("show-id", "i", 0,
		"Print the dataset of a specific run by id")
	cmd.Flags().String("db-dir", "",
		"Directory of the SQLite store (default: XDG data dir)")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show-id")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no harvest database found (run 'harvester harvest' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case showID != 0:
		dataset, err := db.GetDatasetByID(ctx, showID)
		if err != nil {
			return err
		}
		if dataset == nil {
			return fmt.Errorf("no run with id %d", showID)
		}
		return printJSON(cmd, dataset)

	case latest:
		dataset, err := db.GetLatestDataset(ctx)
		if err != nil {
			return err
		}
		if dataset == nil {
			return errors.New("no runs stored yet")
		}
		return printJSON(cmd, dataset)

	default:
		return listRuns(cmd, db)
	}
}

// listRuns prints the stored run history, newest first.
func listRuns(cmd *cobra.Command, db *database.HarvestDB) error {
	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs stored yet.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-6s %-22s %-8s %-8s %-8s\n", "ID", "GENERATED", "ITEMS", "BOOKS", "QUOTES")
	for _, run := range runs {
		fmt.Fprintf(w, "%-6d %-22s %-8d %-8d %-8d\n",
			run.ID,
			run.GeneratedAt.Format("2006-01-02 15:04:05"),
			run.TotalItems,
			run.ItemCounts["book"],
			run.ItemCounts["quote"],
		)
	}
	return nil
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
