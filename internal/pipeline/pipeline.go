// Package pipeline wires one push's Evaluator, Renderer, and Sink into a
// single jobmanager.Activity (§4.3 of the spec): evaluate the table's
// query, render the resulting rows into the destination's format, and
// drain the rendered bytes into the sink, all under one cancellable
// context. Grounded on the teacher's errgroup-coordinated ingestion
// pipelines (platform/ucl-core/internal/orchestration), generalized from
// "read from a connector, write to a connector" to this spec's fixed
// three-stage evaluate/render/consume shape.
package pipeline

import (
	"context"
	"fmt"

	"github.com/nucleus/resultpush/internal/evaluator"
	"github.com/nucleus/resultpush/internal/jobmanager"
	"github.com/nucleus/resultpush/internal/model"
	"github.com/nucleus/resultpush/internal/render"
)

// Build returns the Activity that runs one push to completion. eval is
// used synchronously to obtain a row stream; a synchronous failure here
// (a malformed query, a dead connection) surfaces as the activity's
// return error, which the Controller's pipeline wrapper turns into a
// Failed status on an already-Running record (§4.3: admission happens
// before the activity is even submitted, so a synchronous Evaluate
// failure still terminates a record that was briefly Running).
func Build(table *model.TableRef, dest *model.Destination, spec model.PushSpec, renderCfg model.RenderConfig, eval evaluator.Evaluator) (jobmanager.Activity, error) {
	sink, ok := dest.SinkFor(spec.Format)
	if !ok {
		return nil, fmt.Errorf("pipeline: destination %s has no sink for format %s", dest.ID, spec.Format)
	}
	renderer, ok := render.New(spec.Format, renderCfg)
	if !ok {
		return nil, fmt.Errorf("pipeline: unsupported render format %s", spec.Format)
	}

	return func(ctx context.Context) error {
		rows, err := eval.Evaluate(ctx, table.Query)
		if err != nil {
			return err
		}
		defer rows.Close()

		limited := applyLimit(rows, spec.Limit)

		bytes := renderer.Render(table.Columns, limited)
		defer bytes.Close()

		if err := sink.Consume(ctx, spec.DestinationPath, table.Columns, bytes); err != nil {
			return err
		}
		return ctx.Err()
	}, nil
}

// applyLimit wraps rows so that Next stops returning true after at most n
// rows, when limit is non-nil. A nil limit is unbounded, the common case.
func applyLimit(rows model.RowStream, limit *uint64) model.RowStream {
	if limit == nil {
		return rows
	}
	return &limitedStream{RowStream: rows, remaining: *limit}
}

type limitedStream struct {
	model.RowStream
	remaining uint64
}

func (s *limitedStream) Next(ctx context.Context) bool {
	if s.remaining == 0 {
		return false
	}
	if !s.RowStream.Next(ctx) {
		return false
	}
	s.remaining--
	return true
}
