package commands

import (
	"context"
	"database/sql"
	"os"

	"chicago-openelex/internal/classify"
	"chicago-openelex/internal/components/pagecache"
	"chicago-openelex/internal/db"
	"chicago-openelex/internal/loader"
	"chicago-openelex/internal/nametag"
	"chicago-openelex/internal/scrapers/chicago"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func newClassifier() classify.Classifier {
	return classify.NewClassifier(nametag.Tagger{})
}

// openClient creates the site client along with its page cache, the returned
// function closes the cache.
func openClient(ctx context.Context, g *Globals) (*chicago.Client, func()) {
	if g.Config.Cache.Disabled {
		return chicago.NewClient(g.Config.Client, nil, g.Tel), func() {}
	}

	cache, err := pagecache.Open(ctx, g.Config.Cache.File)
	if err != nil {
		fatal("failed to open page cache", err)
	}
	client := chicago.NewClient(g.Config.Client, cache, g.Tel)
	return client, func() { cache.Close() }
}

// openStore opens the results store and the loader writing to it.
func openStore(ctx context.Context, g *Globals) (*sql.DB, *db.Queries, loader.Loader) {
	sqldb, err := g.Config.Store.OpenDB(ctx)
	if err != nil {
		fatal("failed to open store", err)
	}
	qry := db.New(sqldb)
	tagger := nametag.Tagger{}
	l := loader.NewLoader(
		qry,
		db.NewMakeTx(sqldb),
		classify.NewClassifier(tagger),
		tagger,
		g.Clock,
		g.Tel,
	)
	return sqldb, qry, l
}
