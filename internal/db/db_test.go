package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*sql.DB, *Queries) {
	t.Helper()
	sqldb, err := OpenDB(context.Background(), ":memory:")
	require.Nil(t, err)
	t.Cleanup(func() { sqldb.Close() })
	return sqldb, New(sqldb)
}

func TestGetOrCreateOffice(t *testing.T) {
	ctx := context.Background()
	_, qry := openTestDB(t)

	params := GetOrCreateOfficeParams{
		Name:     "County Commissioner",
		State:    "IL",
		County:   "Cook",
		District: "5",
	}
	first, err := qry.GetOrCreateOffice(ctx, params)
	require.Nil(t, err)
	second, err := qry.GetOrCreateOffice(ctx, params)
	require.Nil(t, err)
	require.Equal(t, first, second)

	params.District = "6"
	third, err := qry.GetOrCreateOffice(ctx, params)
	require.Nil(t, err)
	require.NotEqual(t, first, third)

	offices, err := qry.ListOffices(ctx)
	require.Nil(t, err)
	require.Len(t, offices, 2)

	office, err := qry.GetOffice(ctx, GetOfficeParams{
		Name:     "County Commissioner",
		State:    "IL",
		District: "5",
	})
	require.Nil(t, err)
	require.Equal(t, first, office.ID)
	require.Equal(t, "Cook", office.County)

	_, err = qry.GetOffice(ctx, GetOfficeParams{Name: "Mayor", State: "IL"})
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestElectionCascade(t *testing.T) {
	ctx := context.Background()
	_, qry := openTestDB(t)

	const electionId = "il-chicago-2015-02-24-general"
	err := qry.UpsertElection(ctx, UpsertElectionParams{
		ElectionID:   electionId,
		Name:         "Municipal General",
		StartDate:    "2015-02-24",
		EndDate:      "2015-02-24",
		ElectionType: "general",
		Municipal:    true,
		Source:       "20150224__il__municipal_general__precinct.json",
	})
	require.Nil(t, err)

	contestParams := GetOrCreateContestParams{
		ElectionID:   electionId,
		Slug:         "mayor",
		Label:        "Mayor",
		StartDate:    "2015-02-24",
		EndDate:      "2015-02-24",
		ElectionType: "general",
	}
	contestId, err := qry.GetOrCreateContest(ctx, contestParams)
	require.Nil(t, err)
	again, err := qry.GetOrCreateContest(ctx, contestParams)
	require.Nil(t, err)
	require.Equal(t, contestId, again)

	candidateId, err := qry.GetOrCreateCandidate(ctx, GetOrCreateCandidateParams{
		ContestID:   contestId,
		ElectionID:  electionId,
		ContestSlug: "mayor",
		Slug:        "rahm-emanuel",
		FullName:    "Rahm Emanuel",
		GivenName:   "Rahm",
		FamilyName:  "Emanuel",
	})
	require.Nil(t, err)
	require.Positive(t, candidateId)

	result := UpsertRawResultParams{
		BatchID:        "batch-a",
		ElectionID:     electionId,
		ContestSlug:    "mayor",
		CandidateSlug:  "rahm-emanuel",
		FullName:       "Rahm Emanuel",
		Office:         "Mayor",
		ReportingLevel: string(REPORTING_WARD),
		Jurisdiction:   "ward 1",
		Votes:          10,
	}
	require.Nil(t, qry.UpsertRawResult(ctx, result))
	result.BatchID = "batch-b"
	result.Votes = 12
	require.Nil(t, qry.UpsertRawResult(ctx, result))

	results, err := qry.ListRawResults(ctx, ListRawResultsParams{ElectionID: electionId})
	require.Nil(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int64(12), results[0].Votes)
	require.Equal(t, "batch-b", results[0].BatchID)

	n, err := qry.DeleteRawResultsByBatch(ctx, "batch-a")
	require.Nil(t, err)
	require.Equal(t, int64(0), n)

	err = qry.DeleteElection(ctx, electionId)
	require.Nil(t, err)

	contests, err := qry.ListContests(ctx, electionId)
	require.Nil(t, err)
	require.Len(t, contests, 0)
	candidates, err := qry.ListCandidates(ctx, contestId)
	require.Nil(t, err)
	require.Len(t, candidates, 0)
	results, err = qry.ListRawResults(ctx, ListRawResultsParams{ElectionID: electionId})
	require.Nil(t, err)
	require.Len(t, results, 0)
}

func TestMakeTx(t *testing.T) {
	ctx := context.Background()
	sqldb, qry := openTestDB(t)
	makeTx := NewMakeTx(sqldb)
	params := GetOrCreateOfficeParams{Name: "Mayor", State: "IL", Place: "Chicago"}

	tx, discard, _, err := makeTx()
	require.Nil(t, err)
	_, err = tx.GetOrCreateOffice(ctx, params)
	require.Nil(t, err)
	require.Nil(t, discard())

	offices, err := qry.ListOffices(ctx)
	require.Nil(t, err)
	require.Len(t, offices, 0)

	tx, discard, commit, err := makeTx()
	require.Nil(t, err)
	_, err = tx.GetOrCreateOffice(ctx, params)
	require.Nil(t, err)
	require.Nil(t, commit())
	// deferred discard after commit
	require.Nil(t, discard())

	offices, err = qry.ListOffices(ctx)
	require.Nil(t, err)
	require.Len(t, offices, 1)
}
