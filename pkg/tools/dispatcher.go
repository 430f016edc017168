package tools

import (
	"context"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
)

// ToolFunc defines a function executed asynchronously.
type ToolFunc func(ctx context.Context) error

// Dispatch runs the provided tool in a separate goroutine. fire-and-forget solution;
// the returned channel is closed when the tool has finished.
func Dispatch(ctx context.Context, name string, fn ToolFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		if err := fn(ctx); err != nil {
			logging.Log.Error().Err(err).Str("tool", name).Msg("tool failed")
			return
		}
		logging.Log.Debug().Str("tool", name).Dur("took", time.Since(start)).Msg("tool finished")
	}()
	return done
}
