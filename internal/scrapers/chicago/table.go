package chicago

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chicago-openelex/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var ErrTableShape = errors.New("unexpected table shape")

const (
	// 0-based, the first row is the page's title
	headerRow = 1
	totalCell = "Total"
)

type PrecinctRow struct {
	Precinct string
	// one entry per candidate, in the order of Table.Candidates
	Votes []int
}

// Table is a ward's result page reduced to candidates and their votes.
type Table struct {
	Candidates []string
	Totals     []int
	Precincts  []PrecinctRow
	// true when the page had no "Total" row and Totals are column sums
	SynthesizedTotals bool
}

// column headings that label a column rather than name a candidate
var genericHeadings = map[string]struct{}{
	"":        {},
	"%":       {},
	"votes":   {},
	"vote":    {},
	"percent": {},
	"pct":     {},
	"pct.":    {},
	"total":   {},
}

type column struct {
	label string
	votes int
}

// columns lays out the candidates of a header. Vote counts are in the even
// columns (2, 4, 6, ...), each candidate is named by the heading of its vote
// column or, when that is a generic heading, by the odd column before it. A
// two column header has a single candidate whose votes are in column 1.
func columns(header []string) ([]column, error) {
	numCols := len(header)
	if numCols < 2 {
		return nil, fmt.Errorf("%w: header has %d columns", ErrTableShape, numCols)
	}
	if numCols == 2 {
		return []column{{label: header[1], votes: 1}}, nil
	}

	count := (numCols - 1) / 2
	out := make([]column, count)
	for i := range out {
		votes := 2 + 2*i
		label := ""
		if votes < numCols {
			label = header[votes]
		}
		_, generic := genericHeadings[strings.ToLower(label)]
		if generic || isNumeric(label) {
			label = header[votes-1]
		}
		out[i] = column{label: label, votes: votes}
	}
	return out, nil
}

func isNumeric(s string) bool {
	_, err := parseVotes(s)
	return err == nil
}

// parseVotes reads a vote count, thousands separators and stray whitespace are
// ignored.
func parseVotes(cell string) (int, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(cell)
	return strconv.Atoi(cleaned)
}

func rowCells(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("td, th")
	out := make([]string, cells.Length())
	for i, node := range cells.Nodes {
		out[i] = htmlutil.NodeText(node)
	}
	return out
}

// ExtractTable reads the first table of a ward's result page.
func ExtractTable(r io.Reader) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Table{}, err
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return Table{}, fmt.Errorf("%w: no table", ErrTableShape)
	}

	var rows [][]string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, rowCells(row))
	})
	return tableFromRows(rows)
}

func tableFromRows(rows [][]string) (Table, error) {
	if len(rows) <= headerRow {
		return Table{}, fmt.Errorf("%w: %d rows, no header", ErrTableShape, len(rows))
	}
	header := rows[headerRow]
	cols, err := columns(header)
	if err != nil {
		return Table{}, err
	}

	totalsIdx := -1
	for i := len(rows) - 1; i > headerRow; i-- {
		if len(rows[i]) > 0 && rows[i][0] == totalCell {
			totalsIdx = i
			break
		}
	}
	end := len(rows)
	if totalsIdx >= 0 {
		end = totalsIdx
	}

	t := Table{}
	for _, col := range cols {
		t.Candidates = append(t.Candidates, col.label)
	}

	var precinctCells [][]string
	for _, row := range rows[headerRow+1 : end] {
		if len(row) == 0 {
			continue
		}
		if len(row) != len(header) {
			return Table{}, fmt.Errorf(
				"%w: precinct row %q has %d cells, header has %d",
				ErrTableShape, row[0], len(row), len(header),
			)
		}
		precinctCells = append(precinctCells, row)

		precinct := PrecinctRow{Precinct: row[0]}
		for _, col := range cols {
			votes, err := parseVotes(row[col.votes])
			if err != nil {
				return Table{}, fmt.Errorf(
					"%w: precinct %s, %q: %w",
					ErrTableShape, row[0], col.label, err,
				)
			}
			precinct.Votes = append(precinct.Votes, votes)
		}
		t.Precincts = append(t.Precincts, precinct)
	}

	if totalsIdx >= 0 {
		totals := rows[totalsIdx]
		for _, col := range cols {
			if col.votes >= len(totals) {
				return Table{}, fmt.Errorf(
					"%w: total row has %d cells, %q expects %d",
					ErrTableShape, len(totals), col.label, col.votes+1,
				)
			}
			votes, err := parseVotes(totals[col.votes])
			if err != nil {
				return Table{}, fmt.Errorf("%w: total of %q: %w", ErrTableShape, col.label, err)
			}
			t.Totals = append(t.Totals, votes)
		}
		return t, nil
	}

	if len(precinctCells) == 0 {
		return Table{}, fmt.Errorf("%w: no total row and no precinct rows", ErrTableShape)
	}
	t.SynthesizedTotals = true
	for _, col := range cols {
		sum := 0
		for _, row := range precinctCells {
			// cells that are not counts (percentages and the like) count as zero
			votes, err := parseVotes(row[col.votes])
			if err == nil {
				sum += votes
			}
		}
		t.Totals = append(t.Totals, sum)
	}
	return t, nil
}
