package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Time returns a deferred hook that logs the duration of an operation,
// with the error (if the caller set one) attached.
//
//	defer obs.Time(ctx, "routing.Fetch")(&err)
func Time(_ context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			zap.S().Debugw("op failed", "op", name, "dur_ms", dur.Milliseconds(), "error", *errp)
			return
		}
		zap.S().Debugw("op done", "op", name, "dur_ms", dur.Milliseconds())
	}
}
