package db

import (
	"context"
)

const upsertElection = `
INSERT INTO election (
    election_id, name, start_date, end_date, election_type,
    party, seat, special, municipal, source, created_at, updated_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(election_id) DO UPDATE SET
    source = excluded.source,
    updated_at = excluded.updated_at
`

type UpsertElectionParams struct {
	ElectionID   string
	Name         string
	StartDate    string
	EndDate      string
	ElectionType string
	Party        string
	Seat         string
	Special      bool
	Municipal    bool
	Source       string
	CreatedAt    int64
	UpdatedAt    int64
}

func (q *Queries) UpsertElection(ctx context.Context, arg UpsertElectionParams) error {
	_, err := q.db.ExecContext(ctx, upsertElection,
		arg.ElectionID,
		arg.Name,
		arg.StartDate,
		arg.EndDate,
		arg.ElectionType,
		arg.Party,
		arg.Seat,
		arg.Special,
		arg.Municipal,
		arg.Source,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getElection = `
SELECT election_id, name, start_date, end_date, election_type, party, seat,
    special, municipal, source, created_at, updated_at
FROM election
WHERE election_id = ?
`

func (q *Queries) GetElection(ctx context.Context, electionID string) (Election, error) {
	row := q.db.QueryRowContext(ctx, getElection, electionID)
	var i Election
	err := row.Scan(
		&i.ElectionID,
		&i.Name,
		&i.StartDate,
		&i.EndDate,
		&i.ElectionType,
		&i.Party,
		&i.Seat,
		&i.Special,
		&i.Municipal,
		&i.Source,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listElections = `
SELECT election_id, name, start_date, end_date, election_type, party, seat,
    special, municipal, source, created_at, updated_at
FROM election
ORDER BY start_date, election_id
`

func (q *Queries) ListElections(ctx context.Context) ([]Election, error) {
	rows, err := q.db.QueryContext(ctx, listElections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Election
	for rows.Next() {
		var i Election
		if err := rows.Scan(
			&i.ElectionID,
			&i.Name,
			&i.StartDate,
			&i.EndDate,
			&i.ElectionType,
			&i.Party,
			&i.Seat,
			&i.Special,
			&i.Municipal,
			&i.Source,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const deleteElection = `
DELETE FROM election WHERE election_id = ?
`

func (q *Queries) DeleteElection(ctx context.Context, electionID string) error {
	_, err := q.db.ExecContext(ctx, deleteElection, electionID)
	return err
}
