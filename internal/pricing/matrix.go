package pricing

// Matrix is a dense row-major feature matrix with named columns.
// It is rebuilt on every train/predict call and carries no learned state.
type Matrix struct {
	Columns []string
	Rows    [][]float64
}

// NumRows returns the number of rows
func (m *Matrix) NumRows() int {
	return len(m.Rows)
}

// NumCols returns the number of columns
func (m *Matrix) NumCols() int {
	return len(m.Columns)
}

// ColumnIndex returns the index of the named column, or -1
func (m *Matrix) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's values, or nil
func (m *Matrix) Column(name string) []float64 {
	idx := m.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		values[i] = row[idx]
	}
	return values
}

// Align reorders the matrix to the given column list. Columns missing from
// the matrix are filled with zeros; columns not in the list are dropped.
// One-hot columns are batch-dependent, so prediction-time matrices must be
// aligned to the column list recorded at training time.
func (m *Matrix) Align(columns []string) *Matrix {
	indices := make([]int, len(columns))
	for i, c := range columns {
		indices[i] = m.ColumnIndex(c)
	}

	rows := make([][]float64, len(m.Rows))
	for r, src := range m.Rows {
		row := make([]float64, len(columns))
		for i, idx := range indices {
			if idx >= 0 {
				row[i] = src[idx]
			}
		}
		rows[r] = row
	}

	return &Matrix{Columns: append([]string(nil), columns...), Rows: rows}
}
