package db

import (
	"context"
)

const getOrCreateOffice = `
INSERT INTO office (name, state, place, county, district)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name, state, place, district) DO UPDATE SET name = office.name
RETURNING id
`

type GetOrCreateOfficeParams struct {
	Name     string
	State    string
	Place    string
	County   string
	District string
}

// GetOrCreateOffice returns the id of the office identified by
// (name, state, place, district), inserting it first if it does not exist.
// the county of an existing row is never overwritten.
func (q *Queries) GetOrCreateOffice(ctx context.Context, arg GetOrCreateOfficeParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getOrCreateOffice,
		arg.Name,
		arg.State,
		arg.Place,
		arg.County,
		arg.District,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getOffice = `
SELECT id, name, state, place, county, district FROM office
WHERE name = ? AND state = ? AND place = ? AND district = ?
`

type GetOfficeParams struct {
	Name     string
	State    string
	Place    string
	District string
}

func (q *Queries) GetOffice(ctx context.Context, arg GetOfficeParams) (Office, error) {
	row := q.db.QueryRowContext(ctx, getOffice,
		arg.Name,
		arg.State,
		arg.Place,
		arg.District,
	)
	var i Office
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.State,
		&i.Place,
		&i.County,
		&i.District,
	)
	return i, err
}

const getOfficeById = `
SELECT id, name, state, place, county, district FROM office
WHERE id = ?
`

func (q *Queries) GetOfficeById(ctx context.Context, id int64) (Office, error) {
	row := q.db.QueryRowContext(ctx, getOfficeById, id)
	var i Office
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.State,
		&i.Place,
		&i.County,
		&i.District,
	)
	return i, err
}

const listOffices = `
SELECT id, name, state, place, county, district FROM office
ORDER BY name, state, place, district
`

func (q *Queries) ListOffices(ctx context.Context) ([]Office, error) {
	rows, err := q.db.QueryContext(ctx, listOffices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Office
	for rows.Next() {
		var i Office
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.State,
			&i.Place,
			&i.County,
			&i.District,
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
