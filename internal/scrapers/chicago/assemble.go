package chicago

import (
	"fmt"

	"chicago-openelex/internal/elections"
)

// AssembleWard turns a ward's table into its result, a candidate listed twice
// would make the per-candidate maps lose votes so it is rejected.
func AssembleWard(ward string, t Table) (elections.WardResult, error) {
	if len(t.Totals) != len(t.Candidates) {
		return elections.WardResult{}, fmt.Errorf(
			"%w: %d candidates, %d totals",
			ErrTableShape, len(t.Candidates), len(t.Totals),
		)
	}

	result := elections.WardResult{
		Ward:              ward,
		CandidateTotals:   make(map[string]int, len(t.Candidates)),
		ResultsByPrecinct: make([]elections.PrecinctResult, 0, len(t.Precincts)),
	}
	for i, label := range t.Candidates {
		_, exists := result.CandidateTotals[label]
		if exists {
			return elections.WardResult{}, fmt.Errorf(
				"%w: ward %s lists %q twice",
				elections.ErrCandidateMismatch, ward, label,
			)
		}
		result.CandidateTotals[label] = t.Totals[i]
	}

	for _, row := range t.Precincts {
		if len(row.Votes) != len(t.Candidates) {
			return elections.WardResult{}, fmt.Errorf(
				"%w: ward %s precinct %s has %d votes for %d candidates",
				elections.ErrCandidateMismatch, ward, row.Precinct, len(row.Votes), len(t.Candidates),
			)
		}
		precinct := elections.PrecinctResult{
			Precinct:        row.Precinct,
			CandidateTotals: make(map[string]int, len(t.Candidates)),
		}
		for i, label := range t.Candidates {
			precinct.CandidateTotals[label] = row.Votes[i]
		}
		result.ResultsByPrecinct = append(result.ResultsByPrecinct, precinct)
	}

	err := result.CheckCandidates()
	if err != nil {
		return elections.WardResult{}, err
	}
	return result, nil
}

// AssembleContest collects the wards of one contest.
func AssembleContest(position string, wards []elections.WardResult) elections.ContestRaw {
	return elections.ContestRaw{
		Position: position,
		Results:  wards,
	}
}
