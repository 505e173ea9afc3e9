package domain

// QueryResult is a normalized result set. Columns preserve the engine's
// column order; every record value is a transport-safe scalar (string,
// number, bool or nil).
type QueryResult struct {
	Columns []string         `json:"columns"`
	Records []map[string]any `json:"records"`
}

// RowCount returns the number of records in the result.
func (r *QueryResult) RowCount() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}
