package db

import _ "embed"

//go:embed schema.sql
var Schema string

type ReportingLevel string

const (
	REPORTING_WARD     ReportingLevel = "municipal_district"
	REPORTING_PRECINCT ReportingLevel = "precinct"
)
