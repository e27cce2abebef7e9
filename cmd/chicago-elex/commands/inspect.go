package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chicago-openelex/internal/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var inspectOffices *bool

func init() {
	inspectOffices = inspectCmd.Flags().Bool("offices", false, "List the offices instead of elections.")
	rootCmd.AddCommand(inspectCmd)
}

func inspectElections(ctx context.Context, qry *db.Queries) error {
	list, err := qry.ListElections(ctx)
	if err != nil {
		return err
	}
	t := newTable()
	t.AppendHeader(table.Row{"Election", "Name", "Date", "Type", "Party", "Seat", "Special", "Source"})
	for _, e := range list {
		t.AppendRow(table.Row{e.ElectionID, e.Name, e.StartDate, e.ElectionType, e.Party, e.Seat, e.Special, e.Source})
	}
	t.Render()
	return nil
}

func inspectOfficeList(ctx context.Context, qry *db.Queries) error {
	list, err := qry.ListOffices(ctx)
	if err != nil {
		return err
	}
	t := newTable()
	t.AppendHeader(table.Row{"Id", "Office", "State", "Place", "County", "District"})
	for _, o := range list {
		t.AppendRow(table.Row{o.ID, o.Name, o.State, o.Place, o.County, o.District})
	}
	t.Render()
	return nil
}

func inspectContests(ctx context.Context, qry *db.Queries, electionID string) error {
	_, err := qry.GetElection(ctx, electionID)
	if err != nil {
		return fmt.Errorf("election %q: %w", electionID, err)
	}
	list, err := qry.ListContests(ctx, electionID)
	if err != nil {
		return err
	}

	t := newTable()
	t.AppendHeader(table.Row{"Contest", "Label", "Office", "District", "Retention", "Ballot measure", "Candidates"})
	for _, c := range list {
		office := ""
		if c.OfficeID.Valid {
			o, err := qry.GetOfficeById(ctx, c.OfficeID.Int64)
			if err != nil {
				return err
			}
			office = o.Name
		}
		candidates, err := qry.ListCandidates(ctx, c.ID)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{c.Slug, c.Label, office, c.District, c.IsRetention, c.IsBallotMeasure, len(candidates)})
	}
	t.Render()
	return nil
}

// inspectResults prints the ward level results of a contest.
func inspectResults(ctx context.Context, qry *db.Queries, electionID, contestSlug string) error {
	_, err := qry.GetContest(ctx, db.GetContestParams{ElectionID: electionID, Slug: contestSlug})
	if err != nil {
		return fmt.Errorf("contest %q: %w", contestSlug, err)
	}
	list, err := qry.ListRawResults(ctx, db.ListRawResultsParams{
		ElectionID:  electionID,
		ContestSlug: contestSlug,
	})
	if err != nil {
		return err
	}

	t := newTable()
	t.AppendHeader(table.Row{"Jurisdiction", "Candidate", "Votes", "Batch"})
	for _, r := range list {
		if r.ReportingLevel != string(db.REPORTING_WARD) {
			continue
		}
		t.AppendRow(table.Row{r.Jurisdiction, r.FullName, r.Votes, r.BatchID})
	}
	t.Render()
	return nil
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [--offices] [election_id [contest_slug]]",
	Short: "Lists what is in the results store.",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		g := getGlobals(cmd.Context())
		ctx := cmd.Context()

		sqldb, qry, _ := openStore(ctx, g)
		defer sqldb.Close()

		var err error
		switch {
		case *inspectOffices:
			err = inspectOfficeList(ctx, qry)
		case len(args) == 0:
			err = inspectElections(ctx, qry)
		case len(args) == 1:
			err = inspectContests(ctx, qry, args[0])
		default:
			err = inspectResults(ctx, qry, args[0], args[1])
		}
		if errors.Is(err, sql.ErrNoRows) {
			fatal("not found", err)
		}
		if err != nil {
			fatal("failed to query store", err)
		}
	},
}
