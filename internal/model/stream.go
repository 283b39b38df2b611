package model

import "context"

// Row is one record produced by the evaluator, keyed by column name.
type Row map[string]any

// RowStream is a lazy, finite, pull-based source of rows, mirroring the
// teacher's endpoint.Iterator[T] contract: call Next until it returns
// false, read Value after a true Next, check Err once Next is false, and
// always Close.
type RowStream interface {
	Next(ctx context.Context) bool
	Value() Row
	Err() error
	Close() error
}

// ByteChunk is one chunk of rendered output.
type ByteChunk []byte

// ByteStream is the renderer's lazy output: the same pull contract as
// RowStream, one level down the pipeline.
type ByteStream interface {
	Next(ctx context.Context) bool
	Value() ByteChunk
	Err() error
	Close() error
}
