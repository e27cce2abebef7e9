package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var deleteBatch *string

func init() {
	deleteBatch = deleteCmd.Flags().String("batch", "", "Delete the raw results written by a single load run instead.")
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete [--batch <id>] [election_id...]",
	Short: "Deletes elections, or a single load run, from the results store.",
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		ctx := cmd.Context()

		sqldb, _, l := openStore(ctx, g)
		defer sqldb.Close()

		if *deleteBatch != "" {
			deleted, err := l.DeleteBatch(ctx, *deleteBatch)
			if err != nil {
				fatal("failed to delete batch", err)
			}
			slog.Info("deleted batch", "batch", *deleteBatch, "results", deleted)
		}

		for _, electionID := range args {
			err := l.DeleteElection(ctx, electionID)
			if err != nil {
				fatal("failed to delete election", err)
			}
			slog.Info("deleted election", "election", electionID)
		}
	},
}
