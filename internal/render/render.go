// Package render turns a model.RowStream into a model.ByteStream without
// doing any I/O of its own (§6.4 of the spec). Two renderers are provided,
// one per supported model.ResultType; both are pure stream transforms,
// grounded on the teacher's io.Pipe-backed writer adapters
// (platform/ucl-core/internal/endpoint/writer.go), adapted here to a pull
// iterator instead of an io.Writer so a slow or canceling Sink can apply
// backpressure all the way back to the Evaluator.
package render

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nucleus/resultpush/internal/model"
)

// Renderer renders one row stream into a byte stream in its format.
type Renderer interface {
	Format() model.ResultType
	Render(columns []model.ColumnMeta, rows model.RowStream) model.ByteStream
}

// New returns the Renderer registered for format, grounded on cfg for its
// format-specific options. Non-goal parity with the original spec's
// "FormatNotSupported" branch is resolved here: an unrecognized format
// returns (nil, false) rather than a panic or a silent default.
func New(format model.ResultType, cfg model.RenderConfig) (Renderer, bool) {
	switch format {
	case model.ResultTypeCsv:
		return newCSVRenderer(cfg.Csv), true
	case model.ResultTypeJson:
		return newJSONRenderer(cfg.Json), true
	default:
		return nil, false
	}
}

// chunkStream adapts a producer func that pushes []byte chunks into the
// model.ByteStream pull interface. The producer (start's encode) runs in its
// own goroutine and must stop promptly once its ctx is canceled, which
// Close does.
type chunkStream struct {
	chunks   chan model.ByteChunk
	errc     chan error
	cur      model.ByteChunk
	err      error
	done     chan struct{}
	finished bool
}

func newChunkStream() *chunkStream {
	return &chunkStream{
		chunks: make(chan model.ByteChunk, 4),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
}

func (s *chunkStream) Next(ctx context.Context) bool {
	// A chunk already sitting in the buffered channel must be delivered
	// even if ctx is simultaneously canceled: check it first, non-blocking,
	// so the dual-select below never has a chance to pick ctx.Done() over
	// a chunk that is already available (§8 P3: cancellation must not drop
	// bytes the renderer already produced).
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			s.finish()
			return false
		}
		s.cur = chunk
		return true
	default:
	}

	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			s.finish()
			return false
		}
		s.cur = chunk
		return true
	case <-ctx.Done():
		s.err = ctx.Err()
		return false
	}
}

// finish records encode's terminal error once the chunk channel has closed.
// start sends that error only after the channel is closed, so finish waits
// for it; the first call consumes it and later calls keep what was recorded.
func (s *chunkStream) finish() {
	if s.finished {
		return
	}
	s.finished = true
	if err := <-s.errc; err != nil {
		s.err = err
	}
}

// start runs encode under an errgroup.Group, grounded on the corpus's own
// errgroup.WithContext coordination idiom, feeding chunks it emits to the
// stream's consumer and closing the stream once encode returns. encode is
// handed a context that is canceled as soon as Close is called, so it can
// stop pulling from rows promptly on early termination.
func (s *chunkStream) start(rows model.RowStream, encode func(ctx context.Context, rows model.RowStream, emit func(model.ByteChunk)) error) {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	go func() {
		<-s.done
		cancel()
	}()

	g.Go(func() error {
		defer close(s.chunks)
		err := encode(gctx, rows, func(c model.ByteChunk) {
			select {
			case s.chunks <- c:
			case <-gctx.Done():
			}
		})
		if err == nil {
			err = rows.Err()
		}
		return err
	})

	go func() {
		s.errc <- g.Wait()
	}()
}

func (s *chunkStream) Value() model.ByteChunk { return s.cur }

func (s *chunkStream) Err() error { return s.err }

func (s *chunkStream) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return nil
}

func columnNames(columns []model.ColumnMeta) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

func formatCell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
