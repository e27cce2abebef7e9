package commands

import (
	"context"

	"chicago-openelex/internal/components/chrono"
	"chicago-openelex/internal/components/telemetry"
)

type globalsKeyType int

var globalsKey globalsKeyType

// Globals is what every command gets from the root command's setup.
type Globals struct {
	Config Config
	Tel    telemetry.API
	Clock  chrono.API

	otel *telemetry.Otel
}

func setGlobals(ctx context.Context, value *Globals) context.Context {
	return context.WithValue(ctx, globalsKey, value)
}

func getGlobals(ctx context.Context) *Globals {
	return ctx.Value(globalsKey).(*Globals)
}
