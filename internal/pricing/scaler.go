package pricing

import "math"

// StandardScaler z-scores features column-wise using the mean and the
// population standard deviation fitted on the training set. Constant
// columns keep a unit scale so transformed values stay finite.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Fit computes per-column mean and standard deviation
func (s *StandardScaler) Fit(rows [][]float64) {
	if len(rows) == 0 {
		s.Mean = nil
		s.Scale = nil
		return
	}

	numCols := len(rows[0])
	s.Mean = make([]float64, numCols)
	s.Scale = make([]float64, numCols)

	for _, row := range rows {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			diff := v - s.Mean[j]
			s.Scale[j] += diff * diff
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / n)
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
}

// Transform returns scaled copies of the given rows
func (s *StandardScaler) Transform(rows [][]float64) [][]float64 {
	scaled := make([][]float64, len(rows))
	for i, row := range rows {
		scaled[i] = s.TransformRow(row)
	}
	return scaled
}

// TransformRow returns a scaled copy of one row
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	scaled := make([]float64, len(row))
	for j, v := range row {
		if j < len(s.Mean) {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		} else {
			scaled[j] = v
		}
	}
	return scaled
}

// FitTransform fits the scaler and returns the scaled training rows
func (s *StandardScaler) FitTransform(rows [][]float64) [][]float64 {
	s.Fit(rows)
	return s.Transform(rows)
}
