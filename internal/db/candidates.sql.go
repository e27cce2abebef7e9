package db

import (
	"context"
)

const getOrCreateCandidate = `
INSERT INTO candidate (
    contest_id, election_id, contest_slug, slug, full_name,
    given_name, family_name, additional_name, suffix, nickname
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(election_id, contest_slug, slug) DO UPDATE SET full_name = candidate.full_name
RETURNING id
`

type GetOrCreateCandidateParams struct {
	ContestID      int64
	ElectionID     string
	ContestSlug    string
	Slug           string
	FullName       string
	GivenName      string
	FamilyName     string
	AdditionalName string
	Suffix         string
	Nickname       string
}

// GetOrCreateCandidate returns the id of the candidate identified by
// (election_id, contest_slug, slug), inserting it first if it does not exist.
func (q *Queries) GetOrCreateCandidate(ctx context.Context, arg GetOrCreateCandidateParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getOrCreateCandidate,
		arg.ContestID,
		arg.ElectionID,
		arg.ContestSlug,
		arg.Slug,
		arg.FullName,
		arg.GivenName,
		arg.FamilyName,
		arg.AdditionalName,
		arg.Suffix,
		arg.Nickname,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listCandidates = `
SELECT id, contest_id, election_id, contest_slug, slug, full_name,
    given_name, family_name, additional_name, suffix, nickname
FROM candidate
WHERE contest_id = ?
ORDER BY id
`

func (q *Queries) ListCandidates(ctx context.Context, contestID int64) ([]Candidate, error) {
	rows, err := q.db.QueryContext(ctx, listCandidates, contestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Candidate
	for rows.Next() {
		var i Candidate
		if err := rows.Scan(
			&i.ID,
			&i.ContestID,
			&i.ElectionID,
			&i.ContestSlug,
			&i.Slug,
			&i.FullName,
			&i.GivenName,
			&i.FamilyName,
			&i.AdditionalName,
			&i.Suffix,
			&i.Nickname,
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

const deleteCandidatesByElection = `
DELETE FROM candidate WHERE election_id = ?
`

func (q *Queries) DeleteCandidatesByElection(ctx context.Context, electionID string) error {
	_, err := q.db.ExecContext(ctx, deleteCandidatesByElection, electionID)
	return err
}
