package chicago

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"chicago-openelex/internal/components/telemetry"
)

const (
	report_walker_landing  = "walker.landing"
	report_walker_election = "walker.election"
	report_walker_contest  = "walker.contest"
)

const (
	LABEL_REGISTERED_VOTERS = "REGISTERED VOTERS - TOTAL"
	LABEL_BALLOTS_CAST      = "BALLOTS CAST - TOTAL"
)

// Submitter is one step of the site's forms, it is satisfied by *Client.
type Submitter interface {
	Submit(ctx context.Context, pageUrl string, form *FormState) (FormPage, error)
}

type WardLink struct {
	Ward string
	Url  string
}

type ContestLinks struct {
	Label string
	Wards []WardLink
}

// Election is everything one election's contest form leads to.
type Election struct {
	Name             string
	Contests         []ContestLinks
	RegisteredVoters []WardLink
	BallotsCast      []WardLink
}

// WalkOptions restricts a walk to the elections and contests whose label
// contains one of the given strings (case-insensitive), empty means all.
type WalkOptions struct {
	Elections []string
	Contests  []string
}

func matchesAny(label string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	lower := strings.ToLower(label)
	for _, f := range filters {
		if strings.Contains(lower, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToUpper(s), substr)
}

// Walk enumerates the elections offered on `landingUrl` in site order. Each
// election is submitted to get its contests, and each contest is submitted to
// get the links to its ward pages. A contest that fails is reported and left
// out, an election that fails is yielded as an error and the walk moves on.
func Walk(ctx context.Context, client Submitter, landingUrl string, opts WalkOptions, tel telemetry.API) iter.Seq2[Election, error] {
	return func(yield func(Election, error) bool) {
		landing, err := client.Submit(ctx, landingUrl, nil)
		if err != nil {
			tel.ReportBroken(report_walker_landing, err, landingUrl)
			yield(Election{}, fmt.Errorf("landing page: %w", err))
			return
		}

		for _, electionName := range landing.Options {
			if !matchesAny(electionName, opts.Elections) {
				continue
			}
			if ctx.Err() != nil {
				yield(Election{Name: electionName}, ctx.Err())
				return
			}

			election, err := walkElection(ctx, client, landingUrl, electionName, opts, tel)
			if err != nil {
				tel.ReportBroken(report_walker_election, err, electionName, landingUrl)
			}
			if !yield(election, err) {
				return
			}
		}
	}
}

func walkElection(ctx context.Context, client Submitter, landingUrl, electionName string, opts WalkOptions, tel telemetry.API) (Election, error) {
	tel.ReportDebug(report_walker_election, electionName)

	election := Election{Name: electionName}

	electionForm := ElectionForm(electionName)
	electionPage, err := client.Submit(ctx, landingUrl, &electionForm)
	if err != nil {
		return election, fmt.Errorf("election %q: %w", electionName, err)
	}
	contestUrl := electionPage.Url.String()

	for _, contestName := range electionPage.Options {
		isRegistered := containsFold(contestName, LABEL_REGISTERED_VOTERS)
		isBallots := containsFold(contestName, LABEL_BALLOTS_CAST)
		if !isRegistered && !isBallots && !matchesAny(contestName, opts.Contests) {
			continue
		}

		contestForm := ContestForm(contestName)
		contestPage, err := client.Submit(ctx, contestUrl, &contestForm)
		if err != nil {
			tel.ReportBroken(
				report_walker_contest,
				fmt.Errorf("skipping contest %q: %w", contestName, err),
				contestUrl,
				formatForm(contestForm.Values()),
			)
			continue
		}

		links := make([]WardLink, 0, len(contestPage.Links))
		for _, anchor := range contestPage.Links {
			links = append(links, WardLink{
				Ward: anchor.Name,
				Url:  anchor.Url.String(),
			})
		}

		switch {
		case isRegistered:
			election.RegisteredVoters = links
		case isBallots:
			election.BallotsCast = links
		default:
			election.Contests = append(election.Contests, ContestLinks{
				Label: contestName,
				Wards: links,
			})
		}
	}

	return election, nil
}
