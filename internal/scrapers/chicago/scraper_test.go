package chicago

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"chicago-openelex/internal/components/pagecache"
	"chicago-openelex/internal/components/telemetry"
	"chicago-openelex/internal/elections"

	"github.com/stretchr/testify/require"
)

const testElection = "2015 - Municipal General - 2/24/15"

func renderSelect(options []string) string {
	var out strings.Builder
	out.WriteString(`<html><body><table class="maincontent"><tr><td><form method="post"><select name="D3">`)
	for _, option := range options {
		out.WriteString(fmt.Sprintf(`<option value="%s">%s</option>`, option, option))
	}
	out.WriteString(`</select></form></td></tr></table></body></html>`)
	return out.String()
}

func renderLinks(links map[string]string, order []string) string {
	var out strings.Builder
	out.WriteString(`<html><body><table>`)
	for _, ward := range order {
		out.WriteString(fmt.Sprintf(`<tr><td><a href="%s">%s</a></td><td>ignored</td></tr>`, links[ward], ward))
	}
	out.WriteString(`</table></body></html>`)
	return out.String()
}

// fakeSite serves a small copy of the results site's forms.
type fakeSite struct {
	lock     sync.Mutex
	requests []string
}

func (f *fakeSite) record(r *http.Request) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeSite) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.requests)
}

func (f *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case r.URL.Path == "/en/election3.asp" && r.Method == http.MethodGet:
		fmt.Fprint(w, renderSelect([]string{testElection, "bad election"}))

	case r.URL.Path == "/en/election3.asp" && r.Method == http.MethodPost:
		if r.PostForm.Get("flag1") != "1" || r.PostForm.Get("B1") != "View" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("D3") == "bad election" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/en/contests.asp?e="+url.QueryEscape(r.PostForm.Get("D3")), http.StatusFound)

	case r.URL.Path == "/en/contests.asp" && r.Method == http.MethodGet:
		fmt.Fprint(w, renderSelect([]string{
			"MAYOR",
			"REGISTERED VOTERS - TOTAL",
			"ALDERMAN 1ST WARD",
			"BROKEN CONTEST",
			"MISSING TOTALS",
		}))

	case r.URL.Path == "/en/contests.asp" && r.Method == http.MethodPost:
		if r.PostForm.Get("flag") != "1" || r.PostForm.Get("B1") != "  View The Results   " {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		contest := r.PostForm.Get("D3")
		switch contest {
		case "MAYOR":
			fmt.Fprint(w, renderLinks(map[string]string{
				"1": "results.asp?c=mayor&ward=1",
				"2": "results.asp?c=mayor&ward=2",
			}, []string{"1", "2"}))
		case "REGISTERED VOTERS - TOTAL":
			fmt.Fprint(w, renderLinks(map[string]string{"1": "results.asp?c=registered&ward=1"}, []string{"1"}))
		case "ALDERMAN 1ST WARD":
			fmt.Fprint(w, renderLinks(map[string]string{"1": "results.asp?c=alderman&ward=1"}, []string{"1"}))
		case "MISSING TOTALS":
			fmt.Fprint(w, renderLinks(map[string]string{
				"1": "results.asp?c=missing&ward=1",
				"2": "results.asp?c=missing&ward=2",
			}, []string{"1", "2"}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}

	case r.URL.Path == "/en/results.asp":
		query := r.URL.Query()
		ward := query.Get("ward")
		switch query.Get("c") {
		case "mayor":
			fmt.Fprint(w, renderTable([][]string{
				{"MAYOR - WARD " + ward},
				{"Precinct", "Votes", "RAHM EMANUEL", "%", "JESUS GARCIA", "%"},
				{"1", "10", "6", "60%", "4", "40%"},
				{"2", "10", "3", "30%", "7", "70%"},
				{"Total", "20", "9", "45%", "11", "55%"},
			}))
		case "registered":
			fmt.Fprint(w, renderTable([][]string{
				{"REGISTERED VOTERS"},
				{"Precinct", "Registered Voters"},
				{"1", "500"},
				{"Total", "500"},
			}))
		case "alderman":
			fmt.Fprint(w, renderTable([][]string{
				{"ALDERMAN"},
				{"", "ALPHA", "", "BETA", ""},
				{"1", "", "5", "", "3"},
				{"2", "", "2", "", "7"},
			}))
		case "missing":
			if ward == "2" {
				fmt.Fprint(w, "<html><body>no results</body></html>")
				return
			}
			fmt.Fprint(w, renderTable([][]string{{"x"}, {"Precinct", "A"}, {"Total", "1"}}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func testClient(t *testing.T, cache PageCache, tel telemetry.API) *Client {
	t.Helper()
	config := DefaultClientConfig()
	config.RequestsPerMinute = 60000
	config.RetryAttempts = 0
	config.DisableCloudflareBypass = true
	return NewClient(config, cache, tel)
}

func TestScrapeElections(t *testing.T) {
	site := &fakeSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	tel := telemetry.NewRecorder()
	client := testClient(t, nil, tel)
	scraper := NewScraper(client, server.URL+"/en/election3.asp", WalkOptions{}, tel)

	var scraped []ScrapedElection
	var errs []error
	for election, err := range scraper.Elections(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scraped = append(scraped, election)
	}

	require.Len(t, errs, 1)
	require.Len(t, scraped, 1)

	election := scraped[0]
	require.Equal(t, "il-chicago-2015-02-24-general", election.Meta.ElectionID())
	require.Equal(t, testElection, election.Document.ElectionName)
	require.Nil(t, election.Document.Date)

	// the broken contest never makes it past the walk, the contest with an
	// unreadable ward is skipped whole, the rest keep the site's order
	require.Len(t, election.Skipped, 1)
	require.ErrorIs(t, election.Skipped[0], ErrContestSkipped)
	require.ErrorIs(t, election.Skipped[0], ErrTableShape)
	require.Len(t, election.Document.Contests, 2)

	mayor := election.Document.Contests[0]
	require.Equal(t, "MAYOR", mayor.Position)
	require.Len(t, mayor.Results, 2)
	require.Equal(t, "1", mayor.Results[0].Ward)
	require.Equal(t, map[string]int{"RAHM EMANUEL": 9, "JESUS GARCIA": 11}, mayor.Results[0].CandidateTotals)
	require.Len(t, mayor.Results[0].ResultsByPrecinct, 2)

	alderman := election.Document.Contests[1]
	require.Equal(t, "ALDERMAN 1ST WARD", alderman.Position)
	require.Equal(t, map[string]int{"ALPHA": 7, "BETA": 10}, alderman.Results[0].CandidateTotals)

	require.Len(t, election.Document.Summaries, 1)
	require.Equal(t, elections.SUMMARY_REGISTERED_VOTERS, election.Document.Summaries[0].Kind)
	require.Equal(t, map[string]int{"Registered Voters": 500}, election.Document.Summaries[0].Results[0].CandidateTotals)

	broken := tel.Find(telemetry.REPORT_BROKEN, report_walker_contest)
	require.Len(t, broken, 1)
	// the report carries enough to replay the request
	require.Contains(t, fmt.Sprint(broken[0].Params...), "D3=BROKEN+CONTEST")
	require.Len(t, tel.Find(telemetry.REPORT_BROKEN, report_scraper_contest), 1)
	require.Len(t, tel.Find(telemetry.REPORT_BROKEN, report_walker_election), 1)
}

func TestWalkFilters(t *testing.T) {
	server := httptest.NewServer(&fakeSite{})
	defer server.Close()

	tel := telemetry.NewRecorder()
	client := testClient(t, nil, tel)

	var walked []Election
	opts := WalkOptions{Elections: []string{"municipal"}, Contests: []string{"mayor"}}
	for election, err := range Walk(context.Background(), client, server.URL+"/en/election3.asp", opts, tel) {
		require.Nil(t, err)
		walked = append(walked, election)
	}

	require.Len(t, walked, 1)
	require.Len(t, walked[0].Contests, 1)
	require.Equal(t, "MAYOR", walked[0].Contests[0].Label)
	require.Equal(t, server.URL+"/en/results.asp?c=mayor&ward=1", walked[0].Contests[0].Wards[0].Url)
	// summaries are always collected
	require.Len(t, walked[0].RegisteredVoters, 1)
}

func TestClientCache(t *testing.T) {
	site := &fakeSite{}
	server := httptest.NewServer(site)
	defer server.Close()

	ctx := context.Background()
	cache, err := pagecache.Open(ctx, ":memory:")
	require.Nil(t, err)
	defer cache.Close()

	client := testClient(t, cache, telemetry.NewRecorder())

	form := ElectionForm(testElection)
	first, err := client.Submit(ctx, server.URL+"/en/election3.asp", &form)
	require.Nil(t, err)
	require.Equal(t, "/en/contests.asp", first.Url.Path)
	require.Len(t, first.Options, 5)
	requests := site.count()

	second, err := client.Submit(ctx, server.URL+"/en/election3.asp", &form)
	require.Nil(t, err)
	require.Equal(t, first.Url.String(), second.Url.String())
	require.Equal(t, first.Options, second.Options)
	require.Equal(t, requests, site.count())
}
