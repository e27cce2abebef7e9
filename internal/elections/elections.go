// Package elections holds the per-election document the scraper writes and the
// loader reads, along with the metadata encoded in an election's name.
package elections

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrMalformedElectionName = errors.New("malformed election name")
	ErrElectionDate          = errors.New("unrecognized election date")
	ErrCandidateMismatch     = errors.New("precinct candidates do not match ward candidates")
)

type PrecinctResult struct {
	Precinct        string         `json:"precinct"`
	CandidateTotals map[string]int `json:"candidate_totals"`
}

type WardResult struct {
	Ward              string           `json:"ward"`
	CandidateTotals   map[string]int   `json:"candidate_totals"`
	ResultsByPrecinct []PrecinctResult `json:"results_by_precinct"`
}

// Candidates returns the ward's candidate labels in sorted order.
func (w WardResult) Candidates() []string {
	out := make([]string, 0, len(w.CandidateTotals))
	for label := range w.CandidateTotals {
		out = append(out, label)
	}
	slices.Sort(out)
	return out
}

// CheckCandidates returns ErrCandidateMismatch when some precinct does not
// report exactly the ward's candidates.
func (w WardResult) CheckCandidates() error {
	for _, precinct := range w.ResultsByPrecinct {
		if len(precinct.CandidateTotals) != len(w.CandidateTotals) {
			return fmt.Errorf(
				"%w: ward %s precinct %s has %d candidates, expected %d",
				ErrCandidateMismatch,
				w.Ward, precinct.Precinct,
				len(precinct.CandidateTotals), len(w.CandidateTotals),
			)
		}
		for label := range precinct.CandidateTotals {
			_, ok := w.CandidateTotals[label]
			if !ok {
				return fmt.Errorf(
					"%w: ward %s precinct %s has unknown candidate %q",
					ErrCandidateMismatch,
					w.Ward, precinct.Precinct, label,
				)
			}
		}
	}
	return nil
}

type ContestRaw struct {
	Position string       `json:"position"`
	Results  []WardResult `json:"results"`
}

type SummaryKind string

const (
	SUMMARY_REGISTERED_VOTERS SummaryKind = "registered_voters"
	SUMMARY_BALLOTS_CAST      SummaryKind = "ballots_cast"
)

// Summary holds the turnout tables that are not contests of their own.
type Summary struct {
	Kind    SummaryKind  `json:"kind"`
	Results []WardResult `json:"results"`
}

// Document is the json written for a single election.
type Document struct {
	ElectionName string       `json:"election_name"`
	Date         *string      `json:"date"`
	Contests     []ContestRaw `json:"contests"`
	Summaries    []Summary    `json:"summaries,omitempty"`
}

type TotalMismatch struct {
	Ward      string
	Candidate string
	Declared  int
	Summed    int
}

func (m TotalMismatch) String() string {
	return fmt.Sprintf(
		"ward %s: %q declared %d, precincts sum to %d",
		m.Ward, m.Candidate, m.Declared, m.Summed,
	)
}

// CheckWardTotals compares each declared ward total against the sum of its
// precinct rows. Wards without precinct rows are not checked.
func CheckWardTotals(w WardResult) []TotalMismatch {
	if len(w.ResultsByPrecinct) == 0 {
		return nil
	}
	var out []TotalMismatch
	for _, label := range w.Candidates() {
		sum := 0
		for _, precinct := range w.ResultsByPrecinct {
			sum += precinct.CandidateTotals[label]
		}
		declared := w.CandidateTotals[label]
		if sum != declared {
			out = append(out, TotalMismatch{
				Ward:      w.Ward,
				Candidate: label,
				Declared:  declared,
				Summed:    sum,
			})
		}
	}
	return out
}
