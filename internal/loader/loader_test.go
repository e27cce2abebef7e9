package loader

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chicago-openelex/internal/classify"
	"chicago-openelex/internal/components/chrono"
	"chicago-openelex/internal/components/telemetry"
	"chicago-openelex/internal/db"
	"chicago-openelex/internal/elections"
	"chicago-openelex/internal/nametag"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testElectionID = "il-chicago-2015-02-24-general"

func newTestLoader(t *testing.T) (Loader, *db.Queries, *telemetry.Recorder) {
	t.Helper()
	sqldb, err := db.OpenDB(context.Background(), ":memory:")
	require.Nil(t, err)
	t.Cleanup(func() { sqldb.Close() })

	qry := db.New(sqldb)
	tagger := nametag.Tagger{}
	tel := telemetry.NewRecorder()
	loader := NewLoader(
		qry,
		db.NewMakeTx(sqldb),
		classify.NewClassifier(tagger),
		tagger,
		chrono.FixedImpl{At: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)},
		tel,
	)
	return loader, qry, tel
}

func ward(name string, totals map[string]int, precincts ...elections.PrecinctResult) elections.WardResult {
	return elections.WardResult{
		Ward:              name,
		CandidateTotals:   totals,
		ResultsByPrecinct: precincts,
	}
}

func precinct(name string, totals map[string]int) elections.PrecinctResult {
	return elections.PrecinctResult{Precinct: name, CandidateTotals: totals}
}

func yesNo(yes, no int) map[string]int {
	return map[string]int{"YES": yes, "NO": no}
}

func testDocument() elections.Document {
	return elections.Document{
		ElectionName: "2015 - Municipal General - 2/24/15",
		Contests: []elections.ContestRaw{
			{
				Position: "MAYOR",
				Results: []elections.WardResult{
					ward("1",
						map[string]int{"RAHM EMANUEL": 9, `JESUS "CHUY" GARCIA`: 11},
						precinct("1", map[string]int{"RAHM EMANUEL": 6, `JESUS "CHUY" GARCIA`: 4}),
						precinct("2", map[string]int{"RAHM EMANUEL": 3, `JESUS "CHUY" GARCIA`: 7}),
					),
					// declared totals that do not add up are kept as declared
					ward("2",
						map[string]int{"RAHM EMANUEL": 10, `JESUS "CHUY" GARCIA`: 5},
						precinct("1", map[string]int{"RAHM EMANUEL": 9, `JESUS "CHUY" GARCIA`: 5}),
					),
				},
			},
			{
				Position: "REGISTERED VOTERS - TOTAL",
				Results: []elections.WardResult{
					ward("1",
						map[string]int{"Registered Voters": 500},
						precinct("1", map[string]int{"Registered Voters": 500}),
					),
				},
			},
			{
				Position: "ALDERMAN 1ST WARD",
				Results: []elections.WardResult{
					ward("1",
						map[string]int{"JOHN SMITH": 7, "JOHN SMITHE": 2},
						precinct("1", map[string]int{"JOHN SMITH": 7, "JOHN SMITHE": 2}),
					),
				},
			},
			{
				Position: "JOHN SMITH AND JANE DOE",
				Results: []elections.WardResult{
					ward("1", yesNo(1, 1), precinct("1", yesNo(1, 1))),
				},
			},
			{
				Position: "MARY JANE THEIS",
				Results: []elections.WardResult{
					ward("1", yesNo(8, 2), precinct("1", yesNo(8, 2))),
				},
			},
			{
				Position: "SHALL THE CITY BAN THE SALE OF ALCOHOL",
				Results: []elections.WardResult{
					ward("1", yesNo(3, 5), precinct("1", yesNo(3, 5))),
				},
			},
		},
	}
}

func writeTestDocument(t *testing.T, dir string) string {
	t.Helper()
	doc := testDocument()
	meta, err := elections.ParseElectionName(doc.ElectionName)
	require.Nil(t, err)
	path, written, err := elections.WriteDocument(dir, meta, doc)
	require.Nil(t, err)
	require.True(t, written)
	return path
}

type storeCounts struct {
	Offices    int
	Contests   int
	Candidates int
	Results    int
}

func countStore(t *testing.T, qry *db.Queries) storeCounts {
	t.Helper()
	ctx := context.Background()

	offices, err := qry.ListOffices(ctx)
	require.Nil(t, err)
	contests, err := qry.ListContests(ctx, testElectionID)
	require.Nil(t, err)
	candidates := 0
	for _, contest := range contests {
		list, err := qry.ListCandidates(ctx, contest.ID)
		require.Nil(t, err)
		candidates += len(list)
	}
	results, err := qry.ListRawResults(ctx, db.ListRawResultsParams{ElectionID: testElectionID})
	require.Nil(t, err)

	return storeCounts{
		Offices:    len(offices),
		Contests:   len(contests),
		Candidates: candidates,
		Results:    len(results),
	}
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	loader, qry, tel := newTestLoader(t)
	path := writeTestDocument(t, t.TempDir())

	summary, err := loader.LoadFile(ctx, path)
	require.Nil(t, err)
	require.Equal(t, testElectionID, summary.ElectionID)
	require.Equal(t, "20150224__il__municipal_general__precinct.json", summary.File)
	require.Len(t, summary.Contests, 6)
	require.Equal(t, 4, summary.Loaded())

	require.False(t, summary.Contests[1].Loaded)
	require.Equal(t, classify.REASON_SKIP_LIST, summary.Contests[1].Reason)
	require.False(t, summary.Contests[3].Loaded)
	require.Equal(t, classify.REASON_AMBIGUOUS, summary.Contests[3].Reason)

	// mayor: 2 wards x 2 candidates + 3 precincts x 2 candidates
	require.Equal(t, 10, summary.Contests[0].Results)
	require.Equal(t, 2, summary.Contests[0].Candidates)

	expected := storeCounts{Offices: 3, Contests: 4, Candidates: 8, Results: 22}
	diff := cmp.Diff(expected, countStore(t, qry))
	if diff != "" {
		t.Fatal(diff)
	}

	election, err := qry.GetElection(ctx, testElectionID)
	require.Nil(t, err)
	require.Equal(t, "2015-02-24", election.StartDate)
	require.Equal(t, "general", election.ElectionType)
	require.True(t, election.Municipal)
	require.False(t, election.Special)

	// skipped contests leave nothing behind
	_, err = qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "registered-voters-total"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "john-smith-and-jane-doe"})
	require.ErrorIs(t, err, sql.ErrNoRows)

	mayor, err := qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "mayor"})
	require.Nil(t, err)
	require.True(t, mayor.OfficeID.Valid)
	office, err := qry.GetOfficeById(ctx, mayor.OfficeID.Int64)
	require.Nil(t, err)
	require.Equal(t, "Mayor", office.Name)
	require.Equal(t, "Chicago", office.Place)

	candidates, err := qry.ListCandidates(ctx, mayor.ID)
	require.Nil(t, err)
	var garcia db.Candidate
	for _, c := range candidates {
		if c.Slug == "jesus-chuy-garcia" {
			garcia = c
		}
	}
	require.Equal(t, `JESUS "CHUY" GARCIA`, garcia.FullName)
	require.Equal(t, "JESUS", garcia.GivenName)
	require.Equal(t, "GARCIA", garcia.FamilyName)
	require.Equal(t, "CHUY", garcia.Nickname)

	alderman, err := qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "alderman-1st-ward"})
	require.Nil(t, err)
	require.Equal(t, "Ward 1", alderman.District)

	retention, err := qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "mary-jane-theis"})
	require.Nil(t, err)
	require.True(t, retention.IsRetention)
	require.True(t, retention.OfficeID.Valid)

	measure, err := qry.GetContest(ctx, db.GetContestParams{ElectionID: testElectionID, Slug: "shall-the-city-ban-the-sale-of-alcohol"})
	require.Nil(t, err)
	require.True(t, measure.IsBallotMeasure)
	require.False(t, measure.OfficeID.Valid)

	// yes and no are not people
	measureCandidates, err := qry.ListCandidates(ctx, measure.ID)
	require.Nil(t, err)
	for _, c := range measureCandidates {
		require.Empty(t, c.GivenName)
		require.Empty(t, c.FamilyName)
	}

	results, err := qry.ListRawResults(ctx, db.ListRawResultsParams{ElectionID: testElectionID, ContestSlug: "mayor"})
	require.Nil(t, err)
	jurisdictions := map[string]bool{}
	for _, r := range results {
		jurisdictions[r.ReportingLevel+" "+r.Jurisdiction] = true
		require.Equal(t, summary.BatchID, r.BatchID)
		require.Equal(t, "Mayor", r.Office)
	}
	require.Equal(t, map[string]bool{
		"municipal_district ward 1":  true,
		"municipal_district ward 2":  true,
		"precinct ward 1 precinct 1": true,
		"precinct ward 1 precinct 2": true,
		"precinct ward 2 precinct 1": true,
	}, jurisdictions)

	require.Len(t, tel.Find(telemetry.REPORT_WARNING, report_loader_totals), 1)
	require.Len(t, tel.Find(telemetry.REPORT_WARNING, report_loader_name), 1)
	require.Len(t, tel.Find(telemetry.REPORT_WARNING, report_loader_contest), 2)
	require.Empty(t, tel.Find(telemetry.REPORT_BROKEN, ""))
}

func TestLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	loader, qry, _ := newTestLoader(t)
	path := writeTestDocument(t, t.TempDir())

	first, err := loader.LoadFile(ctx, path)
	require.Nil(t, err)
	before := countStore(t, qry)

	second, err := loader.LoadFile(ctx, path)
	require.Nil(t, err)
	require.NotEqual(t, first.BatchID, second.BatchID)

	diff := cmp.Diff(before, countStore(t, qry))
	if diff != "" {
		t.Fatal(diff)
	}

	// the second run took over every result row
	deleted, err := loader.DeleteBatch(ctx, first.BatchID)
	require.Nil(t, err)
	require.Equal(t, int64(0), deleted)
	deleted, err = loader.DeleteBatch(ctx, second.BatchID)
	require.Nil(t, err)
	require.Equal(t, int64(before.Results), deleted)
}

func TestLoadDir(t *testing.T) {
	ctx := context.Background()
	loader, qry, tel := newTestLoader(t)
	dir := t.TempDir()
	writeTestDocument(t, dir)

	err := os.WriteFile(
		filepath.Join(dir, "00000000__il__broken__precinct.json"),
		[]byte(`{"election_name": "not an election", "date": null, "contests": []}`),
		0644,
	)
	require.Nil(t, err)

	summaries, err := loader.LoadDir(ctx, dir)
	require.ErrorIs(t, err, elections.ErrMalformedElectionName)
	require.Len(t, summaries, 1)
	require.Equal(t, testElectionID, summaries[0].ElectionID)
	require.Len(t, tel.Find(telemetry.REPORT_BROKEN, report_loader_file), 1)

	require.Equal(t, 4, countStore(t, qry).Contests)
}

func TestDeleteElection(t *testing.T) {
	ctx := context.Background()
	loader, qry, _ := newTestLoader(t)
	path := writeTestDocument(t, t.TempDir())

	_, err := loader.LoadFile(ctx, path)
	require.Nil(t, err)

	err = loader.DeleteElection(ctx, testElectionID)
	require.Nil(t, err)

	_, err = qry.GetElection(ctx, testElectionID)
	require.ErrorIs(t, err, sql.ErrNoRows)
	counts := countStore(t, qry)
	// offices are shared between elections and stay
	require.Equal(t, storeCounts{Offices: 3}, counts)

	err = loader.DeleteElection(ctx, testElectionID)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func loadSingleContest(t *testing.T, loader Loader, contest elections.ContestRaw) Summary {
	t.Helper()
	doc := elections.Document{
		ElectionName: "2015 - Municipal General - 2/24/15",
		Contests:     []elections.ContestRaw{contest},
	}
	meta, err := elections.ParseElectionName(doc.ElectionName)
	require.Nil(t, err)
	summary, err := loader.LoadDocument(context.Background(), meta, doc)
	require.Nil(t, err)
	require.Len(t, summary.Contests, 1)
	return summary
}

func TestLoadCandidateMismatch(t *testing.T) {
	loader, qry, tel := newTestLoader(t)

	summary := loadSingleContest(t, loader, elections.ContestRaw{
		Position: "MAYOR",
		Results: []elections.WardResult{
			ward("1",
				map[string]int{"RAHM EMANUEL": 6},
				precinct("1", map[string]int{"RAHM EMANUEL": 6, "WILLIE WILSON": 4}),
			),
		},
	})
	require.False(t, summary.Contests[0].Loaded)
	require.Contains(t, summary.Contests[0].Reason, elections.ErrCandidateMismatch.Error())

	broken := tel.Find(telemetry.REPORT_BROKEN, report_loader_contest)
	require.Len(t, broken, 1)

	counts := countStore(t, qry)
	require.Equal(t, 0, counts.Contests)
	require.Equal(t, 0, counts.Results)
}

func TestLoadSlugCollision(t *testing.T) {
	loader, qry, tel := newTestLoader(t)

	totals := map[string]int{"John Smith": 5, "JOHN SMITH": 3}
	summary := loadSingleContest(t, loader, elections.ContestRaw{
		Position: "ALDERMAN 1ST WARD",
		Results: []elections.WardResult{
			ward("1", totals, precinct("1", totals)),
		},
	})
	require.False(t, summary.Contests[0].Loaded)
	require.Contains(t, summary.Contests[0].Reason, ErrAmbiguousCandidates.Error())
	require.Len(t, tel.Find(telemetry.REPORT_BROKEN, report_loader_contest), 1)

	counts := countStore(t, qry)
	require.Equal(t, 0, counts.Candidates)
	require.Equal(t, 0, counts.Results)
}

func TestSlugCollisions(t *testing.T) {
	require.Nil(t, slugCollisions([]string{"JOHN SMITH", "JOHN SMITHE"}))

	err := slugCollisions([]string{"JOHN SMITH", "John Smith", "John-Smith"})
	require.ErrorIs(t, err, ErrAmbiguousCandidates)
	require.Contains(t, err.Error(), `"JOHN SMITH" and "John Smith"`)
	require.Contains(t, err.Error(), `"JOHN SMITH" and "John-Smith"`)
}
