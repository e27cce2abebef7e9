package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := NewRecorder()
	scoped := NewScopedAPI("loader", NewScopedAPI("chicago", recorder))

	err := errors.New("boom")
	scoped.ReportBroken("db.query", err, "UpsertElection")
	scoped.ReportWarning("loader.contest", "ALDERMAN")
	scoped.ReportCount("loader.results", 22)

	broken := recorder.Find(REPORT_BROKEN, "db.query")
	require.Len(t, broken, 1)
	require.Equal(t, "chicago: loader: db.query", broken[0].Id)
	require.Equal(t, []any{err, "UpsertElection"}, broken[0].Params)

	require.Len(t, recorder.Find(REPORT_WARNING, "loader.contest"), 1)
	require.Empty(t, recorder.Find(REPORT_WARNING, "db.query"))

	counts := recorder.Find(REPORT_COUNT, "")
	require.Len(t, counts, 1)
	require.Equal(t, int64(22), counts[0].Count)
}

func TestFormatFormData(t *testing.T) {
	require.Equal(t, "<NO FORM>", formatFormData(nil))
	require.Equal(t, `D3="MAYOR"`, formatFormData(map[string][]string{"D3": {"MAYOR"}}))
}
