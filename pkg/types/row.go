package types

// Row is one synthesized record: column names and the values generated for them,
// index-aligned.
type Row struct {
	// Columns lists the lower-case column names in insertion order
	Columns []string `json:"columns"`

	// Values holds one generated value per entry of Columns
	Values []interface{} `json:"values"`
}

// Get returns the value generated for the named column.
func (r Row) Get(column string) (interface{}, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Values[i], true
		}
	}
	return nil, false
}

// Len returns the number of columns in the row.
func (r Row) Len() int {
	return len(r.Columns)
}
