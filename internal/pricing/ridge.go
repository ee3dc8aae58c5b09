package pricing

import "math"

// Ridge is an L2-regularized linear regression fitted by solving the
// normal equations on centered data. The intercept is not penalized.
// It expects pre-scaled features so coefficients stay comparable; the
// price-factor explanation relies on that.
type Ridge struct {
	Alpha     float64   `json:"alpha"`
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// NewRidge creates a ridge model with the given regularization strength
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// Fit solves (Xc'Xc + alpha*I) w = Xc'y on centered features and target
func (r *Ridge) Fit(rows [][]float64, target []float64) {
	n := len(rows)
	if n == 0 {
		return
	}
	p := len(rows[0])

	colMeans := make([]float64, p)
	for _, row := range rows {
		for j, v := range row {
			colMeans[j] += v
		}
	}
	for j := range colMeans {
		colMeans[j] /= float64(n)
	}
	yMean := 0.0
	for _, y := range target {
		yMean += y
	}
	yMean /= float64(n)

	// Gram matrix and moment vector on centered data
	gram := make([][]float64, p)
	for j := range gram {
		gram[j] = make([]float64, p)
	}
	moment := make([]float64, p)
	for i, row := range rows {
		yc := target[i] - yMean
		for j := 0; j < p; j++ {
			xj := row[j] - colMeans[j]
			moment[j] += xj * yc
			for k := j; k < p; k++ {
				gram[j][k] += xj * (row[k] - colMeans[k])
			}
		}
	}
	for j := 0; j < p; j++ {
		gram[j][j] += r.Alpha
		for k := j + 1; k < p; k++ {
			gram[k][j] = gram[j][k]
		}
	}

	r.Coef = solveLinearSystem(gram, moment)
	r.Intercept = yMean
	for j, c := range r.Coef {
		r.Intercept -= colMeans[j] * c
	}
}

// PredictRow predicts the target for one feature row
func (r *Ridge) PredictRow(row []float64) float64 {
	pred := r.Intercept
	for j, c := range r.Coef {
		if j < len(row) {
			pred += row[j] * c
		}
	}
	return pred
}

// Predict predicts the target for each feature row
func (r *Ridge) Predict(rows [][]float64) []float64 {
	preds := make([]float64, len(rows))
	for i, row := range rows {
		preds[i] = r.PredictRow(row)
	}
	return preds
}

// solveLinearSystem solves a*x = b by Gaussian elimination with partial
// pivoting. The matrix is modified in place. A singular pivot leaves the
// corresponding coefficient at zero; the ridge penalty makes that rare.
func solveLinearSystem(a [][]float64, b []float64) []float64 {
	n := len(a)
	x := make([]float64, n)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			continue
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	for col := n - 1; col >= 0; col-- {
		if math.Abs(a[col][col]) < 1e-12 {
			x[col] = 0
			continue
		}
		sum := b[col]
		for k := col + 1; k < n; k++ {
			sum -= a[col][k] * x[k]
		}
		x[col] = sum / a[col][col]
	}

	return x
}
