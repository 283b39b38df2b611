package model

// ColumnMeta describes one column of a table's projection. Trimmed down
// from the teacher's endpoint.FieldDefinition to what the renderer needs.
type ColumnMeta struct {
	Name     string
	DataType string
	Nullable bool
}

// TableRef is the resolved description of a table definition: its name,
// the query that produces its rows, and the ordered column projection.
type TableRef struct {
	ID      TableId
	Name    string
	Query   string
	Columns []ColumnMeta
}
