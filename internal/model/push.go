package model

import "time"

// PushSpec is the fully-resolved configuration for one push: what to
// render, where to put it, and under what limit.
type PushSpec struct {
	Columns         []ColumnMeta
	DestinationPath string
	Format          ResultType
	Limit           *uint64
}

// ErrorInfo is a message-bearing opaque cause, carried by Failed status.
// Deliberately simpler than the teacher's CodedError: pipeline failures in
// this spec are terminal and are never retried or classified by code.
type ErrorInfo struct {
	Message string
}

// StatusKind tags which PushStatus variant a record holds.
type StatusKind int

const (
	StatusRunning StatusKind = iota
	StatusFinished
	StatusCanceled
	StatusFailed
)

func (k StatusKind) String() string {
	switch k {
	case StatusRunning:
		return "Running"
	case StatusFinished:
		return "Finished"
	case StatusCanceled:
		return "Canceled"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// PushStatus is the tagged-variant lifecycle status of a push. Running
// carries only Since; terminal variants carry Since and Until; Failed also
// carries Cause.
type PushStatus struct {
	Kind  StatusKind
	Since time.Time
	Until time.Time
	Cause ErrorInfo
}

// Terminal reports whether the status is one of Finished/Canceled/Failed.
func (s PushStatus) Terminal() bool {
	return s.Kind != StatusRunning
}

func Running(since time.Time) PushStatus {
	return PushStatus{Kind: StatusRunning, Since: since}
}

func Finished(since, until time.Time) PushStatus {
	return PushStatus{Kind: StatusFinished, Since: since, Until: until}
}

func Canceled(since, until time.Time) PushStatus {
	return PushStatus{Kind: StatusCanceled, Since: since, Until: until}
}

func Failed(since, until time.Time, cause ErrorInfo) PushStatus {
	return PushStatus{Kind: StatusFailed, Since: since, Until: until, Cause: cause}
}

// PushRecord is the in-memory description of one push's configuration,
// admission time, and current lifecycle status. Records are replaced, not
// mutated, across a key's lifetime boundaries (a fresh Start creates a new
// PushRecord value), but a single record's Status field is updated in
// place exactly once by the Status Recorder as the push terminates.
type PushRecord struct {
	Spec      PushSpec
	StartedAt time.Time
	Status    PushStatus
}
