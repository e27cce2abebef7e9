package loader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"chicago-openelex/internal/db"
	"chicago-openelex/internal/elections"
	"chicago-openelex/internal/nametag"

	"github.com/antzucaro/matchr"
)

// labels this similar are most likely the same person spelled two ways
const nearDuplicateThreshold = 0.97

// candidates returns every candidate label of a contest, from ward totals and
// precinct results alike, sorted.
func (l Loader) candidates(contest elections.ContestRaw) []string {
	seen := map[string]struct{}{}
	for _, ward := range contest.Results {
		for label := range ward.CandidateTotals {
			seen[label] = struct{}{}
		}
		for _, precinct := range ward.ResultsByPrecinct {
			for label := range precinct.CandidateTotals {
				seen[label] = struct{}{}
			}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

func (l Loader) checkNearDuplicates(contest string, labels []string) {
	for i := 0; i < len(labels); i++ {
		for j := i + 1; j < len(labels); j++ {
			left := strings.ToLower(labels[i])
			right := strings.ToLower(labels[j])
			similarity := matchr.JaroWinkler(left, right, false)
			if similarity >= nearDuplicateThreshold {
				l.tel.ReportWarning(
					report_loader_name,
					fmt.Errorf("near duplicate candidates (%.3f)", similarity),
					contest,
					labels[i],
					labels[j],
				)
			}
		}
	}
}

// slugCollisions returns ErrAmbiguousCandidates for every pair of labels that
// slugify to the same candidate, their votes would overwrite each other.
func slugCollisions(labels []string) error {
	first := make(map[string]string, len(labels))
	var errs []error
	for _, label := range labels {
		slug := elections.Slugify(label)
		if slug == "" {
			continue
		}
		other, ok := first[slug]
		if ok {
			errs = append(errs, fmt.Errorf("%w: %q and %q are both %q", ErrAmbiguousCandidates, other, label, slug))
			continue
		}
		first[slug] = label
	}
	return errors.Join(errs...)
}

// candidateParams splits a candidate label into name parts, anything that is
// not a single person's name is stored with its full name only.
func (l Loader) candidateParams(label string) db.GetOrCreateCandidateParams {
	params := db.GetOrCreateCandidateParams{
		Slug:     elections.Slugify(label),
		FullName: label,
	}

	fields, tag, err := l.tagger.Tag(label)
	if errors.Is(err, nametag.ErrRepeatedLabel) {
		l.tel.ReportWarning(report_loader_name, err, label)
		return params
	}
	if err != nil {
		l.tel.ReportWarning(report_loader_name, fmt.Errorf("tag %q: %w", label, err))
		return params
	}
	if tag != nametag.PERSON {
		return params
	}

	params.GivenName = fields.Given
	params.FamilyName = fields.Surname
	params.AdditionalName = fields.Middle
	params.Suffix = fields.Suffix
	params.Nickname = fields.Nickname
	return params
}

type resultRow struct {
	candidate    string
	level        db.ReportingLevel
	jurisdiction string
	votes        int
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// resultRows flattens a contest into one row per candidate for every ward and
// one per candidate for every precinct.
func resultRows(contest elections.ContestRaw) []resultRow {
	var rows []resultRow
	for _, ward := range contest.Results {
		wardJurisdiction := fmt.Sprintf("ward %s", ward.Ward)
		for _, candidate := range sortedKeys(ward.CandidateTotals) {
			rows = append(rows, resultRow{
				candidate:    candidate,
				level:        db.REPORTING_WARD,
				jurisdiction: wardJurisdiction,
				votes:        ward.CandidateTotals[candidate],
			})
		}

		for _, precinct := range ward.ResultsByPrecinct {
			jurisdiction := fmt.Sprintf("ward %s precinct %s", ward.Ward, precinct.Precinct)
			for _, candidate := range sortedKeys(precinct.CandidateTotals) {
				rows = append(rows, resultRow{
					candidate:    candidate,
					level:        db.REPORTING_PRECINCT,
					jurisdiction: jurisdiction,
					votes:        precinct.CandidateTotals[candidate],
				})
			}
		}
	}
	return rows
}
