package db

import (
	"database/sql"
)

type Office struct {
	ID       int64
	Name     string
	State    string
	Place    string
	County   string
	District string
}

type Election struct {
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

type Contest struct {
	ID              int64
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

type Candidate struct {
	ID             int64
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

type RawResult struct {
	ID             int64
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
