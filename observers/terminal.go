// Package observers holds concrete Observer implementations: external,
// non-core collaborators satisfying trellis.Observer rather than being
// part of the driver itself.
package observers

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/exp/constraints"

	"github.com/sensoriumtl/trellis"
)

// Terminal is a log/slog-based observer, grounded on the structured
// logging idiom in firestige-Otus's internal/log package: a selectable
// handler (text or JSON) wrapping one or more io.Writers, here just the
// *slog.Logger the caller already built that way.
type Terminal[F constraints.Float, Param any, S trellis.UserState[F, Param]] struct {
	logger *slog.Logger
	level  slog.Level
}

// NewTerminal wraps logger (typically built with slog.NewTextHandler or
// slog.NewJSONHandler, exactly as firestige-Otus's log.Init selects)
// as a Trellis observer. Every observation is logged at level.
func NewTerminal[F constraints.Float, Param any, S trellis.UserState[F, Param]](logger *slog.Logger, level slog.Level) *Terminal[F, Param, S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal[F, Param, S]{logger: logger, level: level}
}

// Observe logs the calculation name, stage, iteration, and error fields
// of state.
func (t *Terminal[F, Param, S]) Observe(name string, state *trellis.State[F, Param, S], stage trellis.Stage) {
	elapsed, hasElapsed := state.Elapsed()
	attrs := []any{
		"calculation", name,
		"stage", stage.String(),
		"iter", state.Iter(),
		"error", fmt.Sprintf("%v", state.Error()),
		"best_error", fmt.Sprintf("%v", state.BestError()),
		"last_best_iter", state.LastBestIter(),
	}
	if hasElapsed {
		attrs = append(attrs, "elapsed", elapsed.String())
	}
	if cause, ok := state.Termination().Cause(); ok {
		attrs = append(attrs, "termination_cause", cause.String())
	}
	t.logger.Log(context.Background(), t.level, "trellis observation", attrs...)
}
