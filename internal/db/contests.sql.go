package db

import (
	"context"
	"database/sql"
)

const getOrCreateContest = `
INSERT INTO contest (
    election_id, slug, label, office_id, district, source, start_date, end_date,
    election_type, party, special, is_retention, is_ballot_measure, created_at, updated_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(election_id, slug) DO UPDATE SET updated_at = excluded.updated_at
RETURNING id
`

type GetOrCreateContestParams struct {
	ElectionID      string
	Slug            string
	Label           string
	OfficeID        sql.NullInt64
	District        string
	Source          string
	StartDate       string
	EndDate         string
	ElectionType    string
	Party           string
	Special         bool
	IsRetention     bool
	IsBallotMeasure bool
	CreatedAt       int64
	UpdatedAt       int64
}

// GetOrCreateContest returns the id of the contest identified by (election_id, slug),
// inserting it first if it does not exist.
func (q *Queries) GetOrCreateContest(ctx context.Context, arg GetOrCreateContestParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getOrCreateContest,
		arg.ElectionID,
		arg.Slug,
		arg.Label,
		arg.OfficeID,
		arg.District,
		arg.Source,
		arg.StartDate,
		arg.EndDate,
		arg.ElectionType,
		arg.Party,
		arg.Special,
		arg.IsRetention,
		arg.IsBallotMeasure,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const contestColumns = `id, election_id, slug, label, office_id, district, source, start_date, end_date,
    election_type, party, special, is_retention, is_ballot_measure, created_at, updated_at`

func scanContest(row interface{ Scan(...any) error }) (Contest, error) {
	var i Contest
	err := row.Scan(
		&i.ID,
		&i.ElectionID,
		&i.Slug,
		&i.Label,
		&i.OfficeID,
		&i.District,
		&i.Source,
		&i.StartDate,
		&i.EndDate,
		&i.ElectionType,
		&i.Party,
		&i.Special,
		&i.IsRetention,
		&i.IsBallotMeasure,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getContest = `
SELECT ` + contestColumns + ` FROM contest
WHERE election_id = ? AND slug = ?
`

type GetContestParams struct {
	ElectionID string
	Slug       string
}

func (q *Queries) GetContest(ctx context.Context, arg GetContestParams) (Contest, error) {
	row := q.db.QueryRowContext(ctx, getContest, arg.ElectionID, arg.Slug)
	return scanContest(row)
}

const listContests = `
SELECT ` + contestColumns + ` FROM contest
WHERE election_id = ?
ORDER BY id
`

func (q *Queries) ListContests(ctx context.Context, electionID string) ([]Contest, error) {
	rows, err := q.db.QueryContext(ctx, listContests, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contest
	for rows.Next() {
		i, err := scanContest(rows)
		if err != nil {
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

const deleteContestsByElection = `
DELETE FROM contest WHERE election_id = ?
`

func (q *Queries) DeleteContestsByElection(ctx context.Context, electionID string) error {
	_, err := q.db.ExecContext(ctx, deleteContestsByElection, electionID)
	return err
}
