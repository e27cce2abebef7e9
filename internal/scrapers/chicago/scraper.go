// scraper.go turns the elections found by the walker into documents, it is the
// only part of the package that knows about ward pages.

package chicago

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"

	"chicago-openelex/internal/components/assert"
	"chicago-openelex/internal/components/telemetry"
	"chicago-openelex/internal/elections"
)

const (
	report_scraper_election = "scraper.election"
	report_scraper_contest  = "scraper.contest"
	report_scraper_summary  = "scraper.summary"
	report_scraper_totals   = "scraper.totals"
)

// ErrContestSkipped wraps the reason a contest was left out of its document.
var ErrContestSkipped = errors.New("contest skipped")

// WardFetcher fetches a ward's result page, it is satisfied by *Client.
type WardFetcher interface {
	Submitter
	Get(ctx context.Context, pageUrl string) ([]byte, error)
}

type Scraper struct {
	client     WardFetcher
	landingUrl string
	opts       WalkOptions
	tel        telemetry.API

	// elections for which this returns true are walked but not scraped
	Skip func(meta elections.Metadata) bool
}

func NewScraper(client WardFetcher, landingUrl string, opts WalkOptions, tel telemetry.API) Scraper {
	assert.NotNil(client)
	assert.NotNil(tel)
	assert.NotEmptyStr(landingUrl)

	return Scraper{
		client:     client,
		landingUrl: landingUrl,
		opts:       opts,
		tel:        telemetry.NewScopedAPI("chicago_scraper", tel),
	}
}

type ScrapedElection struct {
	Meta     elections.Metadata
	Document elections.Document
	// contests that were left out, each wraps ErrContestSkipped
	Skipped []error
}

// Elections scrapes every election the walk finds. An election whose name
// cannot be parsed is yielded as an error, its contests are never fetched.
func (s Scraper) Elections(ctx context.Context) iter.Seq2[ScrapedElection, error] {
	return func(yield func(ScrapedElection, error) bool) {
		for election, err := range Walk(ctx, s.client, s.landingUrl, s.opts, s.tel) {
			if err != nil {
				if !yield(ScrapedElection{}, err) {
					return
				}
				continue
			}

			meta, err := elections.ParseElectionName(election.Name)
			if err != nil {
				s.tel.ReportBroken(report_scraper_election, err, election.Name)
				if !yield(ScrapedElection{}, err) {
					return
				}
				continue
			}
			if s.Skip != nil && s.Skip(meta) {
				s.tel.ReportDebug(report_scraper_election, "skipping", election.Name)
				continue
			}

			scraped := s.ScrapeElection(ctx, meta, election)
			if !yield(scraped, nil) {
				return
			}
		}
	}
}

// ScrapeElection fetches every ward page of an election. Contests are kept in
// the order the site lists them.
func (s Scraper) ScrapeElection(ctx context.Context, meta elections.Metadata, election Election) ScrapedElection {
	s.tel.ReportDebug(report_scraper_election, election.Name, len(election.Contests))

	out := ScrapedElection{
		Meta: meta,
		Document: elections.Document{
			ElectionName: election.Name,
			Contests:     []elections.ContestRaw{},
		},
	}

	for _, contest := range election.Contests {
		raw, err := s.ScrapeContest(ctx, contest)
		if err != nil {
			out.Skipped = append(out.Skipped, err)
			continue
		}
		out.Document.Contests = append(out.Document.Contests, raw)
	}

	summaries := []struct {
		kind  elections.SummaryKind
		label string
		links []WardLink
	}{
		{kind: elections.SUMMARY_REGISTERED_VOTERS, label: LABEL_REGISTERED_VOTERS, links: election.RegisteredVoters},
		{kind: elections.SUMMARY_BALLOTS_CAST, label: LABEL_BALLOTS_CAST, links: election.BallotsCast},
	}
	for _, summary := range summaries {
		if len(summary.links) == 0 {
			continue
		}
		wards, err := s.scrapeWards(ctx, summary.label, summary.links)
		if err != nil {
			s.tel.ReportWarning(report_scraper_summary, err, election.Name, summary.label)
			continue
		}
		out.Document.Summaries = append(out.Document.Summaries, elections.Summary{
			Kind:    summary.kind,
			Results: wards,
		})
	}

	return out
}

// ScrapeContest fetches every ward of a contest, if any ward fails the
// contest is skipped as a whole.
func (s Scraper) ScrapeContest(ctx context.Context, contest ContestLinks) (elections.ContestRaw, error) {
	if len(contest.Wards) == 0 {
		err := fmt.Errorf("%w: %q has no ward pages", ErrContestSkipped, contest.Label)
		s.tel.ReportBroken(report_scraper_contest, err)
		return elections.ContestRaw{}, err
	}

	wards, err := s.scrapeWards(ctx, contest.Label, contest.Wards)
	if err != nil {
		err = fmt.Errorf("%w: %q: %w", ErrContestSkipped, contest.Label, err)
		s.tel.ReportBroken(report_scraper_contest, err)
		return elections.ContestRaw{}, err
	}

	for _, ward := range wards {
		for _, mismatch := range elections.CheckWardTotals(ward) {
			s.tel.ReportWarning(report_scraper_totals, contest.Label, mismatch.String())
		}
	}

	return AssembleContest(contest.Label, wards), nil
}

func (s Scraper) scrapeWards(ctx context.Context, label string, links []WardLink) ([]elections.WardResult, error) {
	wards := make([]elections.WardResult, 0, len(links))
	for _, link := range links {
		ward, err := s.scrapeWard(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("ward %s (%s): %w", link.Ward, link.Url, err)
		}
		wards = append(wards, ward)
	}
	return wards, nil
}

func (s Scraper) scrapeWard(ctx context.Context, link WardLink) (elections.WardResult, error) {
	body, err := s.client.Get(ctx, link.Url)
	if err != nil {
		return elections.WardResult{}, err
	}
	table, err := ExtractTable(bytes.NewReader(body))
	if err != nil {
		return elections.WardResult{}, err
	}
	return AssembleWard(link.Ward, table)
}
