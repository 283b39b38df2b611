// Package pusherr defines the push orchestrator's error taxonomy as
// values, not exceptions, per §7 of the spec: a closed, exhaustive set of
// start/cancel-time errors, plus the Condition result wrapper that Start
// and Cancel return.
package pusherr

import (
	"fmt"

	"github.com/nucleus/resultpush/internal/model"
)

// Code discriminates the PushError variants.
type Code int

const (
	CodeDestinationNotFound Code = iota
	CodeTableNotFound
	CodeFormatNotSupported
	CodePushAlreadyRunning
)

// PushError is the exhaustive, structured start/cancel-time error taxonomy
// of §7. It is always one of the four documented variants.
type PushError struct {
	Code          Code
	DestinationID model.DestinationId
	TableID       model.TableId
	DestType      model.DestinationTypeId
	Format        model.ResultType
}

func (e *PushError) Error() string {
	switch e.Code {
	case CodeDestinationNotFound:
		return fmt.Sprintf("destination not found: %s", e.DestinationID)
	case CodeTableNotFound:
		return fmt.Sprintf("table not found: %s", e.TableID)
	case CodeFormatNotSupported:
		return fmt.Sprintf("destination %s does not support format %s", e.DestType, e.Format)
	case CodePushAlreadyRunning:
		return fmt.Sprintf("push already running for table %s, destination %s", e.TableID, e.DestinationID)
	default:
		return "unknown push error"
	}
}

func DestinationNotFound(id model.DestinationId) *PushError {
	return &PushError{Code: CodeDestinationNotFound, DestinationID: id}
}

func TableNotFound(id model.TableId) *PushError {
	return &PushError{Code: CodeTableNotFound, TableID: id}
}

func FormatNotSupported(destType model.DestinationTypeId, format model.ResultType) *PushError {
	return &PushError{Code: CodeFormatNotSupported, DestType: destType, Format: format}
}

func PushAlreadyRunning(tableID model.TableId, destID model.DestinationId) *PushError {
	return &PushError{Code: CodePushAlreadyRunning, TableID: tableID, DestinationID: destID}
}

// Condition is the success/abnormal result of Start and Cancel: either
// Normal, or Abnormal carrying a PushError. Callers branch on OK() (or,
// equivalently, c.Err() == nil), matching the value-not-exception style
// of §7.
type Condition struct {
	err *PushError
}

// Normal is the successful Condition.
func Normal() Condition { return Condition{} }

// Abnormal wraps a PushError as a failed Condition.
func Abnormal(err *PushError) Condition { return Condition{err: err} }

// Err returns the wrapped PushError, or nil if the condition is Normal.
func (c Condition) Err() *PushError { return c.err }

// OK reports whether the condition is Normal.
func (c Condition) OK() bool { return c.err == nil }
