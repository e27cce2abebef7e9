package db

import (
	"context"
)

const upsertRawResult = `
INSERT INTO raw_result (
    batch_id, election_id, contest_slug, candidate_slug, full_name, office, district,
    reporting_level, jurisdiction, votes, source, created_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(election_id, contest_slug, candidate_slug, reporting_level, jurisdiction) DO UPDATE SET
    batch_id = excluded.batch_id,
    votes = excluded.votes,
    source = excluded.source
`

type UpsertRawResultParams struct {
	BatchID        string
	ElectionID     string
	ContestSlug    string
	CandidateSlug  string
	FullName       string
	Office         string
	District       string
	ReportingLevel string
	Jurisdiction   string
	Votes          int64
	Source         string
	CreatedAt      int64
}

func (q *Queries) UpsertRawResult(ctx context.Context, arg UpsertRawResultParams) error {
	_, err := q.db.ExecContext(ctx, upsertRawResult,
		arg.BatchID,
		arg.ElectionID,
		arg.ContestSlug,
		arg.CandidateSlug,
		arg.FullName,
		arg.Office,
		arg.District,
		arg.ReportingLevel,
		arg.Jurisdiction,
		arg.Votes,
		arg.Source,
		arg.CreatedAt,
	)
	return err
}

const listRawResults = `
SELECT id, batch_id, election_id, contest_slug, candidate_slug, full_name, office, district,
    reporting_level, jurisdiction, votes, source, created_at
FROM raw_result
WHERE election_id = ? AND (? = '' OR contest_slug = ?)
ORDER BY id
`

type ListRawResultsParams struct {
	ElectionID string
	// empty matches every contest
	ContestSlug string
}

func (q *Queries) ListRawResults(ctx context.Context, arg ListRawResultsParams) ([]RawResult, error) {
	rows, err := q.db.QueryContext(ctx, listRawResults, arg.ElectionID, arg.ContestSlug, arg.ContestSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RawResult
	for rows.Next() {
		var i RawResult
		if err := rows.Scan(
			&i.ID,
			&i.BatchID,
			&i.ElectionID,
			&i.ContestSlug,
			&i.CandidateSlug,
			&i.FullName,
			&i.Office,
			&i.District,
			&i.ReportingLevel,
			&i.Jurisdiction,
			&i.Votes,
			&i.Source,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteRawResultsByBatch = `
DELETE FROM raw_result WHERE batch_id = ?
`

func (q *Queries) DeleteRawResultsByBatch(ctx context.Context, batchID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteRawResultsByBatch, batchID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteRawResultsByElection = `
DELETE FROM raw_result WHERE election_id = ?
`

func (q *Queries) DeleteRawResultsByElection(ctx context.Context, electionID string) error {
	_, err := q.db.ExecContext(ctx, deleteRawResultsByElection, electionID)
	return err
}
