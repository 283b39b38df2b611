// Package model holds the push orchestrator's data types: identifiers,
// table and destination descriptions, and the push lifecycle record.
package model

import "fmt"

// TableId identifies a table definition in the Table Store.
type TableId string

// DestinationId identifies a registered destination.
type DestinationId string

// DestinationTypeId names a destination implementation and its version,
// e.g. {"object.minio", "v1"}.
type DestinationTypeId struct {
	Name    string
	Version string
}

func (d DestinationTypeId) String() string {
	return fmt.Sprintf("%s/%s", d.Name, d.Version)
}

// PushKey is the admission, cancellation, and status-lookup key: one push
// slot per (table, destination) pair.
type PushKey struct {
	TableID       TableId
	DestinationID DestinationId
}

func (k PushKey) String() string {
	return fmt.Sprintf("%s:%s", k.TableID, k.DestinationID)
}

// ResultType is the serialization format a push renders into.
type ResultType string

const (
	ResultTypeCsv  ResultType = "csv"
	ResultTypeJson ResultType = "json"
)
