// Package evaluator defines the Query Evaluator contract (§6.3 of the
// spec) and ships an in-memory reference implementation sufficient to
// exercise the full pipeline, including its cancellation and mid-stream
// failure paths, without a real query engine.
package evaluator

import (
	"context"

	"github.com/nucleus/resultpush/internal/model"
)

// Evaluator produces a lazy row stream for a query string. It may fail
// synchronously before producing a stream; the produced stream is lazily
// consumed and may itself fail mid-stream. A canceled consuming context
// must cause the stream to stop producing promptly (§6.3).
type Evaluator interface {
	Evaluate(ctx context.Context, query string) (model.RowStream, error)
}
