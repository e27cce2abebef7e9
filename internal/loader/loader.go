// Package loader reads the per-election json documents written by the scraper
// and stores them as offices, contests, candidates and raw results.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"chicago-openelex/internal/classify"
	"chicago-openelex/internal/components/assert"
	"chicago-openelex/internal/components/chrono"
	"chicago-openelex/internal/components/telemetry"
	"chicago-openelex/internal/db"
	"chicago-openelex/internal/elections"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("chicago-openelex/internal/loader")

const (
	report_db_query        = "db.query"
	report_loader_file     = "loader.file"
	report_loader_contest  = "loader.contest"
	report_loader_name     = "loader.candidate-name"
	report_loader_totals   = "loader.totals"
	report_loader_results  = "loader.results"
	report_loader_election = "loader.election"
)

// ErrAmbiguousCandidates is returned for contests where distinct candidate
// labels would be stored as the same candidate.
var ErrAmbiguousCandidates = errors.New("candidate labels share a slug")

type Loader struct {
	db         *db.Queries
	makeTx     db.MakeTx
	classifier classify.Classifier
	tagger     classify.NameTagger
	time       chrono.API
	tel        telemetry.API
}

func NewLoader(
	db *db.Queries,
	makeTx db.MakeTx,
	classifier classify.Classifier,
	tagger classify.NameTagger,
	time chrono.API,
	tel telemetry.API,
) Loader {
	assert.NotNil(db)
	assert.NotNil(makeTx)
	assert.NotNil(tagger)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Loader{
		db:         db,
		makeTx:     makeTx,
		classifier: classifier,
		tagger:     tagger,
		time:       time,
		tel:        telemetry.NewScopedAPI("loader", tel),
	}
}

// ContestSummary is what happened to a single contest of a file.
type ContestSummary struct {
	Label  string
	Slug   string
	Loaded bool
	// why the contest was not loaded
	Reason     string
	Kind       classify.Kind
	Office     string
	District   string
	Candidates int
	Results    int
}

type Summary struct {
	File       string
	ElectionID string
	BatchID    string
	Contests   []ContestSummary
}

func (s Summary) Loaded() int {
	count := 0
	for _, c := range s.Contests {
		if c.Loaded {
			count++
		}
	}
	return count
}

func (s Summary) Results() int {
	count := 0
	for _, c := range s.Contests {
		count += c.Results
	}
	return count
}

// LoadDir loads every document in `dir` in name order. A file that cannot be
// loaded is reported and the remaining files are still loaded, its error is
// joined into the returned error.
func (l Loader) LoadDir(ctx context.Context, dir string) ([]Summary, error) {
	paths, err := elections.ListDocuments(dir)
	if err != nil {
		l.tel.ReportBroken(report_loader_file, fmt.Errorf("list documents: %w", err), dir)
		return nil, err
	}

	var summaries []Summary
	var errs []error
	for _, path := range paths {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		summary, err := l.LoadFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, errors.Join(errs...)
}

// LoadFile loads a single document. Only errors that prevent the whole file
// from loading (unreadable json, unparsable election name, a broken store) are
// returned, contests that fail are reported and show up in the summary.
func (l Loader) LoadFile(ctx context.Context, path string) (Summary, error) {
	ctx, span := tracer.Start(ctx, "loader:load-file")
	defer span.End()
	span.SetAttributes(attribute.String("custom.file", path))

	doc, err := elections.ReadDocument(path)
	if err != nil {
		l.tel.ReportBroken(report_loader_file, err, path)
		return Summary{}, err
	}
	meta, err := elections.ParseMetadata(doc.ElectionName, filepath.Base(path))
	if err != nil {
		l.tel.ReportBroken(report_loader_file, err, path, doc.ElectionName)
		return Summary{}, err
	}
	return l.LoadDocument(ctx, meta, doc)
}

// LoadDocument stores an election that has already been read.
func (l Loader) LoadDocument(ctx context.Context, meta elections.Metadata, doc elections.Document) (Summary, error) {
	summary := Summary{
		File:       meta.Filename,
		ElectionID: meta.ElectionID(),
		BatchID:    uuid.NewString(),
	}
	l.tel.ReportDebug(report_loader_election, doc.ElectionName, summary.ElectionID, summary.BatchID)

	now := l.time.Now().Unix()
	date := meta.Date.Format("2006-01-02")
	electionParams := db.UpsertElectionParams{
		ElectionID:   summary.ElectionID,
		Name:         meta.Name,
		StartDate:    date,
		EndDate:      date,
		ElectionType: string(meta.Type),
		Party:        meta.Party,
		Seat:         meta.Seat,
		Special:      meta.Special,
		Municipal:    meta.Municipal,
		Source:       meta.Filename,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := l.db.UpsertElection(ctx, electionParams)
	if err != nil {
		l.tel.ReportBroken(report_db_query, err, "UpsertElection", electionParams)
		return Summary{}, err
	}

	labels := make([]string, len(doc.Contests))
	for i, contest := range doc.Contests {
		labels[i] = contest.Position
	}
	outcomes := l.classifier.ClassifyAll(labels, classify.State{Municipal: meta.Municipal})

	for i, contest := range doc.Contests {
		outcome := outcomes[i]
		contestSummary := ContestSummary{
			Label:  contest.Position,
			Slug:   elections.Slugify(contest.Position),
			Reason: outcome.Reason,
		}

		if !outcome.Loaded {
			params := []any{contest.Position, outcome.Reason, meta.Filename}
			if outcome.Err != nil {
				params = append([]any{outcome.Err}, params...)
			}
			l.tel.ReportWarning(report_loader_contest, params...)
			summary.Contests = append(summary.Contests, contestSummary)
			continue
		}

		contestSummary.Kind = outcome.Class.Kind
		contestSummary.Office = outcome.Class.Office
		contestSummary.District = outcome.Class.District

		counts, err := l.loadContest(ctx, meta, summary.BatchID, contest, outcome.Class)
		if err != nil {
			l.tel.ReportBroken(report_loader_contest, err, contest.Position, meta.Filename)
			contestSummary.Reason = err.Error()
			summary.Contests = append(summary.Contests, contestSummary)
			continue
		}

		contestSummary.Loaded = true
		contestSummary.Candidates = counts.candidates
		contestSummary.Results = counts.results
		summary.Contests = append(summary.Contests, contestSummary)
	}

	l.tel.ReportCount(report_loader_results, int64(summary.Results()))
	return summary, nil
}

type contestCounts struct {
	candidates int
	results    int
}

// loadContest writes one contest in a single transaction, a contest is either
// stored whole or not at all.
func (l Loader) loadContest(
	ctx context.Context,
	meta elections.Metadata,
	batchID string,
	contest elections.ContestRaw,
	class classify.Classification,
) (contestCounts, error) {
	ctx, span := tracer.Start(ctx, "loader:load-contest")
	defer span.End()
	span.SetAttributes(
		attribute.String("custom.contest", contest.Position),
		attribute.String("custom.kind", string(class.Kind)),
	)

	contestSlug := elections.Slugify(contest.Position)
	if contestSlug == "" {
		return contestCounts{}, fmt.Errorf("contest label %q has no slug", contest.Position)
	}

	for _, ward := range contest.Results {
		err := ward.CheckCandidates()
		if err != nil {
			return contestCounts{}, err
		}
		for _, mismatch := range elections.CheckWardTotals(ward) {
			l.tel.ReportWarning(report_loader_totals, contest.Position, mismatch.String(), meta.Filename)
		}
	}

	candidates := l.candidates(contest)
	err := slugCollisions(candidates)
	if err != nil {
		return contestCounts{}, err
	}
	l.checkNearDuplicates(contest.Position, candidates)

	tx, discard, commit, err := l.makeTx()
	if err != nil {
		l.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return contestCounts{}, err
	}
	defer discard()

	var officeID sql.NullInt64
	if class.Office != "" {
		officeParams := db.GetOrCreateOfficeParams{
			Name:     class.Office,
			State:    class.State,
			Place:    class.Place,
			County:   class.County,
			District: class.District,
		}
		id, err := tx.GetOrCreateOffice(ctx, officeParams)
		if err != nil {
			l.tel.ReportBroken(report_db_query, err, "GetOrCreateOffice", officeParams)
			return contestCounts{}, err
		}
		officeID = sql.NullInt64{Int64: id, Valid: true}
	}

	now := l.time.Now().Unix()
	date := meta.Date.Format("2006-01-02")
	electionID := meta.ElectionID()

	contestParams := db.GetOrCreateContestParams{
		ElectionID:      electionID,
		Slug:            contestSlug,
		Label:           contest.Position,
		OfficeID:        officeID,
		District:        class.District,
		Source:          meta.Filename,
		StartDate:       date,
		EndDate:         date,
		ElectionType:    string(meta.Type),
		Party:           meta.Party,
		Special:         meta.Special,
		IsRetention:     class.Kind == classify.KIND_RETENTION,
		IsBallotMeasure: class.Kind == classify.KIND_BALLOT_MEASURE,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	contestID, err := tx.GetOrCreateContest(ctx, contestParams)
	if err != nil {
		l.tel.ReportBroken(report_db_query, err, "GetOrCreateContest", contestParams)
		return contestCounts{}, err
	}

	slugs := make(map[string]string, len(candidates))
	for _, label := range candidates {
		params := l.candidateParams(label)
		if params.Slug == "" {
			l.tel.ReportWarning(report_loader_name, fmt.Errorf("candidate label has no slug"), label, contest.Position)
			continue
		}
		params.ContestID = contestID
		params.ElectionID = electionID
		params.ContestSlug = contestSlug

		_, err := tx.GetOrCreateCandidate(ctx, params)
		if err != nil {
			l.tel.ReportBroken(report_db_query, err, "GetOrCreateCandidate", params)
			return contestCounts{}, err
		}
		slugs[label] = params.Slug
	}

	office := class.Office
	if office == "" {
		office = contest.Position
	}

	results := 0
	for _, row := range resultRows(contest) {
		slug, ok := slugs[row.candidate]
		if !ok {
			continue
		}
		params := db.UpsertRawResultParams{
			BatchID:        batchID,
			ElectionID:     electionID,
			ContestSlug:    contestSlug,
			CandidateSlug:  slug,
			FullName:       row.candidate,
			Office:         office,
			District:       class.District,
			ReportingLevel: string(row.level),
			Jurisdiction:   row.jurisdiction,
			Votes:          int64(row.votes),
			Source:         meta.Filename,
			CreatedAt:      now,
		}
		err := tx.UpsertRawResult(ctx, params)
		if err != nil {
			l.tel.ReportBroken(report_db_query, err, "UpsertRawResult", params)
			return contestCounts{}, err
		}
		results++
	}

	err = commit()
	if err != nil {
		l.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err), contest.Position)
		return contestCounts{}, err
	}

	return contestCounts{candidates: len(slugs), results: results}, nil
}

// DeleteElection removes an election along with everything loaded for it,
// sql.ErrNoRows is returned when no such election was loaded.
func (l Loader) DeleteElection(ctx context.Context, electionID string) error {
	tx, discard, commit, err := l.makeTx()
	if err != nil {
		l.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	_, err = tx.GetElection(ctx, electionID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.tel.ReportBroken(report_db_query, err, "GetElection", electionID)
		}
		return fmt.Errorf("election %q: %w", electionID, err)
	}

	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{name: "DeleteRawResultsByElection", fn: tx.DeleteRawResultsByElection},
		{name: "DeleteCandidatesByElection", fn: tx.DeleteCandidatesByElection},
		{name: "DeleteContestsByElection", fn: tx.DeleteContestsByElection},
		{name: "DeleteElection", fn: tx.DeleteElection},
	}
	for _, step := range steps {
		err := step.fn(ctx, electionID)
		if err != nil {
			l.tel.ReportBroken(report_db_query, err, step.name, electionID)
			return err
		}
	}

	err = commit()
	if err != nil {
		l.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err), electionID)
		return err
	}
	l.tel.ReportDebug("deleted election", electionID)
	return nil
}

// DeleteBatch removes the raw results written by a single load run.
func (l Loader) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	deleted, err := l.db.DeleteRawResultsByBatch(ctx, batchID)
	if err != nil {
		l.tel.ReportBroken(report_db_query, err, "DeleteRawResultsByBatch", batchID)
		return 0, err
	}
	l.tel.ReportDebug("deleted batch", batchID, deleted)
	return deleted, nil
}
