package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScalerFit(t *testing.T) {
	rows := [][]float64{
		{1, 10, 5},
		{3, 20, 5},
	}
	s := &StandardScaler{}
	s.Fit(rows)

	require.Len(t, s.Mean, 3)
	assert.Equal(t, 2.0, s.Mean[0])
	assert.Equal(t, 15.0, s.Mean[1])
	assert.Equal(t, 1.0, s.Scale[0])
	assert.Equal(t, 5.0, s.Scale[1])
	// Constant columns keep a unit scale.
	assert.Equal(t, 1.0, s.Scale[2])

	scaled := s.TransformRow([]float64{3, 10, 5})
	assert.Equal(t, []float64{1, -1, 0}, scaled)
}

func TestStandardScalerFitTransform(t *testing.T) {
	rows := [][]float64{{0}, {10}}
	s := &StandardScaler{}
	scaled := s.FitTransform(rows)

	assert.Equal(t, -1.0, scaled[0][0])
	assert.Equal(t, 1.0, scaled[1][0])
	// Input rows are untouched.
	assert.Equal(t, 0.0, rows[0][0])
}

func TestRidgeRecoversLinearRelation(t *testing.T) {
	var rows [][]float64
	var y []float64
	for x := 1.0; x <= 100; x++ {
		rows = append(rows, []float64{x})
		y = append(y, 3*x+10)
	}

	r := NewRidge(1.0)
	r.Fit(rows, y)

	require.Len(t, r.Coef, 1)
	assert.InDelta(t, 3.0, r.Coef[0], 0.01)
	assert.InDelta(t, 10.0, r.Intercept, 0.5)
	assert.InDelta(t, 175.0, r.PredictRow([]float64{55}), 1.0)
}

func TestRidgeHandlesCollinearFeatures(t *testing.T) {
	// Two identical columns would make plain least squares singular;
	// the ridge penalty keeps the system solvable.
	var rows [][]float64
	var y []float64
	for x := 1.0; x <= 50; x++ {
		rows = append(rows, []float64{x, x})
		y = append(y, 2*x)
	}

	r := NewRidge(1.0)
	r.Fit(rows, y)

	require.Len(t, r.Coef, 2)
	// Weight is shared between the duplicate columns.
	assert.InDelta(t, 1.0, r.Coef[0], 0.05)
	assert.InDelta(t, 1.0, r.Coef[1], 0.05)
	assert.InDelta(t, 60.0, r.PredictRow([]float64{30, 30}), 1.0)
}

func TestRidgePredictBatch(t *testing.T) {
	r := &Ridge{Coef: []float64{2}, Intercept: 1}
	preds := r.Predict([][]float64{{1}, {2}, {3}})
	assert.Equal(t, []float64{3, 5, 7}, preds)
}
