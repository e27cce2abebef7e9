package db

import (
	"database/sql"
	"errors"
)

// MakeTx opens a transaction and returns queries bound to it. discard is
// meant to be deferred, it is a no-op once commit has run.
type MakeTx = func() (tx *Queries, discard, commit func() error, err error)

// NewMakeTx binds MakeTx to `sqldb`. With a single open connection nothing
// else may query the database while the returned transaction is open.
func NewMakeTx(sqldb *sql.DB) MakeTx {
	return func() (*Queries, func() error, func() error, error) {
		sqltx, err := sqldb.Begin()
		if err != nil {
			return nil, nil, nil, err
		}
		discard := func() error {
			err := sqltx.Rollback()
			if errors.Is(err, sql.ErrTxDone) {
				return nil
			}
			return err
		}
		return New(sqltx), discard, sqltx.Commit, nil
	}
}
