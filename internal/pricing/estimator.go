package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/okihome/rentwatch-backend-go/internal/models"
	"github.com/okihome/rentwatch-backend-go/internal/stats"
)

// Model kinds served by the estimator.
const (
	ModelKindRidge        = "ridge"
	ModelKindRandomForest = "random_forest"
)

const (
	// MinTrainingRows is the smallest valid-row count the estimator will
	// train on; below it Train reports insufficient data instead of fitting.
	MinTrainingRows = 50

	splitSeed          = 42
	ridgeAlpha         = 1.0
	forestTrees        = 100
	forestMaxDepth     = 15
	forestMinLeaf      = 5
	topFeatureCount    = 10
	factorThresholdYen = 100
	versionLayout      = "20060102_150405"
)

// ErrNotFitted is returned when prediction or explanation is requested
// before a model has been trained or loaded.
var ErrNotFitted = errors.New("estimator is not fitted: train or load a model first")

// ErrModelNotFound is returned when no persisted model matches a load request.
var ErrModelNotFound = errors.New("no trained model found")

// ModelMetrics holds held-out evaluation metrics for one model.
type ModelMetrics struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// FeatureImportance is one (feature, importance) pair.
type FeatureImportance struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TrainingReport is the structured outcome of one training run.
// InsufficientData is a reported result, not an error.
type TrainingReport struct {
	InsufficientData bool                `json:"insufficientData,omitempty"`
	ValidRows        int                 `json:"validRows"`
	Ridge            *ModelMetrics       `json:"ridge,omitempty"`
	RandomForest     *ModelMetrics       `json:"randomForest,omitempty"`
	TrainingSamples  int                 `json:"trainingSamples,omitempty"`
	TestSamples      int                 `json:"testSamples,omitempty"`
	TotalFeatures    int                 `json:"totalFeatures,omitempty"`
	TopFeatures      []FeatureImportance `json:"topFeatures,omitempty"`
	Version          string              `json:"version,omitempty"`
}

// Prediction is the estimate for one listing.
type Prediction struct {
	ListingID          int64    `json:"listingId,omitempty"`
	EstimatedRent      int64    `json:"estimatedRent"`
	ActualRent         int64    `json:"actualRent,omitempty"`
	AffordabilityScore *float64 `json:"affordabilityScore,omitempty"`
	PriceDiff          *int64   `json:"priceDiff,omitempty"`
	PriceDiffPct       *float64 `json:"priceDiffPct,omitempty"`
	CILower            *int64   `json:"ciLower,omitempty"`
	CIUpper            *int64   `json:"ciUpper,omitempty"`
}

// PriceFactor is one signed feature contribution to a linear estimate.
type PriceFactor struct {
	Name         string `json:"name"`
	Contribution int64  `json:"contribution"`
}

// Estimator owns the two rent models, the feature scaler and the canonical
// feature-column list fixed at training time. Exactly one estimator serves
// a process; it must be trained or loaded before predicting.
type Estimator struct {
	modelDir string
	logger   *zap.Logger

	ridge          *Ridge
	forest         *RandomForest
	scaler         *StandardScaler
	featureColumns []string
	version        string
	fitted         bool
}

// NewEstimator creates an unfitted estimator persisting models under modelDir
func NewEstimator(modelDir string, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{modelDir: modelDir, logger: logger}
}

// IsFitted reports whether a model is available for serving
func (e *Estimator) IsFitted() bool {
	return e.fitted
}

// Version returns the active model version, empty if unfitted
func (e *Estimator) Version() string {
	return e.version
}

// FeatureColumns returns a copy of the canonical feature-column list
func (e *Estimator) FeatureColumns() []string {
	return append([]string(nil), e.featureColumns...)
}

// Train fits both models on the given listings and persists the result.
// Fewer than MinTrainingRows valid rows yields an insufficient-data report
// with no side effects on the estimator's state.
func (e *Estimator) Train(listings []models.Listing, landPrices []models.LandPrice, testFraction float64) (*TrainingReport, error) {
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}

	matrix := BuildFeatures(listings, landPrices)
	target := Target(listings)

	var rows [][]float64
	var y []float64
	for i, t := range target {
		if math.IsNaN(t) || t <= 0 || rowHasNaN(matrix.Rows[i]) {
			continue
		}
		rows = append(rows, matrix.Rows[i])
		y = append(y, t)
	}

	if len(rows) < MinTrainingRows {
		e.logger.Warn("not enough training data",
			zap.Int("validRows", len(rows)),
			zap.Int("required", MinTrainingRows))
		return &TrainingReport{InsufficientData: true, ValidRows: len(rows)}, nil
	}

	e.featureColumns = append([]string(nil), matrix.Columns...)

	trainIdx, testIdx := splitIndices(len(rows), testFraction)
	trainX, trainY := selectRows(rows, y, trainIdx)
	testX, testY := selectRows(rows, y, testIdx)

	scaler := &StandardScaler{}
	scaledTrain := scaler.FitTransform(trainX)
	scaledTest := scaler.Transform(testX)

	ridge := NewRidge(ridgeAlpha)
	ridge.Fit(scaledTrain, trainY)
	ridgeMetrics := evaluate(testY, ridge.Predict(scaledTest))
	e.logger.Info("ridge fitted",
		zap.Float64("r2", ridgeMetrics.R2), zap.Float64("mae", ridgeMetrics.MAE))

	// The forest deliberately trains on unscaled features; see RandomForest.
	forest := NewRandomForest(ForestParams{
		NumTrees:       forestTrees,
		MaxDepth:       forestMaxDepth,
		MinSamplesLeaf: forestMinLeaf,
		Seed:           splitSeed,
	})
	forest.Fit(trainX, trainY)
	forestMetrics := evaluate(testY, forest.Predict(testX))
	e.logger.Info("random forest fitted",
		zap.Float64("r2", forestMetrics.R2), zap.Float64("mae", forestMetrics.MAE))

	e.ridge = ridge
	e.forest = forest
	e.scaler = scaler
	e.fitted = true
	e.version = time.Now().Format(versionLayout)

	if err := e.saveModel(); err != nil {
		return nil, fmt.Errorf("failed to persist model: %w", err)
	}

	top := e.FeatureImportances()
	if len(top) > topFeatureCount {
		top = top[:topFeatureCount]
	}

	return &TrainingReport{
		ValidRows:       len(rows),
		Ridge:           ridgeMetrics,
		RandomForest:    forestMetrics,
		TrainingSamples: len(trainX),
		TestSamples:     len(testX),
		TotalFeatures:   len(e.featureColumns),
		TopFeatures:     top,
		Version:         e.version,
	}, nil
}

// Predict estimates rent for the given listings with the chosen model kind
// (random forest by default). Features are realigned to the training-time
// column list before prediction.
func (e *Estimator) Predict(listings []models.Listing, landPrices []models.LandPrice, modelKind string) ([]Prediction, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}

	matrix := BuildFeatures(listings, landPrices).Align(e.featureColumns)

	var estimates []float64
	useForest := modelKind != ModelKindRidge
	if useForest {
		estimates = e.forest.Predict(matrix.Rows)
	} else {
		estimates = e.ridge.Predict(e.scaler.Transform(matrix.Rows))
	}

	predictions := make([]Prediction, len(listings))
	for i := range listings {
		estimated := int64(math.Round(estimates[i]))
		p := Prediction{
			ListingID:     listings[i].ID,
			EstimatedRent: estimated,
		}

		if actual := listings[i].Rent; actual > 0 {
			p.ActualRent = actual
			denom := float64(maxInt64(estimated, 1))
			score := roundTo(float64(actual)/denom, 3)
			diff := actual - estimated
			pct := roundTo(float64(diff)/denom*100, 1)
			p.AffordabilityScore = &score
			p.PriceDiff = &diff
			p.PriceDiffPct = &pct
		}

		if useForest {
			treePreds := e.forest.TreePredictions(matrix.Rows[i])
			lower := int64(math.Round(stats.Percentile(treePreds, 5)))
			upper := int64(math.Round(stats.Percentile(treePreds, 95)))
			p.CILower = &lower
			p.CIUpper = &upper
		}

		predictions[i] = p
	}

	return predictions, nil
}

// PredictSingle estimates rent for exactly one listing
func (e *Estimator) PredictSingle(listing models.Listing, landPrices []models.LandPrice) (*Prediction, error) {
	predictions, err := e.Predict([]models.Listing{listing}, landPrices, ModelKindRandomForest)
	if err != nil {
		return nil, err
	}
	return &predictions[0], nil
}

// FeatureImportances returns all (feature, importance) pairs from the
// random forest, descending by importance. Empty when unfitted.
func (e *Estimator) FeatureImportances() []FeatureImportance {
	if !e.fitted || e.forest == nil {
		return nil
	}
	pairs := make([]FeatureImportance, 0, len(e.featureColumns))
	for j, name := range e.featureColumns {
		value := 0.0
		if j < len(e.forest.Importances) {
			value = e.forest.Importances[j]
		}
		pairs = append(pairs, FeatureImportance{Name: name, Value: value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Value != pairs[j].Value {
			return pairs[i].Value > pairs[j].Value
		}
		return pairs[i].Name < pairs[j].Name
	})
	return pairs
}

// PriceFactors explains one listing's linear estimate as signed per-feature
// contributions (scaled value x ridge coefficient). Contributions below the
// materiality threshold are dropped; the top 10 by magnitude are returned.
func (e *Estimator) PriceFactors(listing models.Listing) ([]PriceFactor, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}

	matrix := BuildFeatures([]models.Listing{listing}, nil).Align(e.featureColumns)
	scaled := e.scaler.TransformRow(matrix.Rows[0])

	var factors []PriceFactor
	for j, name := range e.featureColumns {
		if j >= len(e.ridge.Coef) {
			break
		}
		contribution := scaled[j] * e.ridge.Coef[j]
		if math.Abs(contribution) > factorThresholdYen {
			factors = append(factors, PriceFactor{
				Name:         name,
				Contribution: int64(math.Round(contribution)),
			})
		}
	}

	sort.Slice(factors, func(i, j int) bool {
		ai, aj := absInt64(factors[i].Contribution), absInt64(factors[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return factors[i].Name < factors[j].Name
	})
	if len(factors) > topFeatureCount {
		factors = factors[:topFeatureCount]
	}
	return factors, nil
}

// modelArtifact is the persisted form of a trained estimator.
type modelArtifact struct {
	Version        string          `json:"version"`
	FeatureColumns []string        `json:"featureColumns"`
	Ridge          *Ridge          `json:"ridge"`
	Forest         *RandomForest   `json:"forest"`
	Scaler         *StandardScaler `json:"scaler"`
}

// ModelPath returns the artifact path for a version string
func (e *Estimator) ModelPath(version string) string {
	return filepath.Join(e.modelDir, fmt.Sprintf("rent_model_%s.json", version))
}

func (e *Estimator) saveModel() error {
	if err := os.MkdirAll(e.modelDir, 0o755); err != nil {
		return err
	}

	artifact := modelArtifact{
		Version:        e.version,
		FeatureColumns: e.featureColumns,
		Ridge:          e.ridge,
		Forest:         e.forest,
		Scaler:         e.scaler,
	}
	data, err := json.Marshal(artifact)
	if err != nil {
		return err
	}

	path := e.ModelPath(e.version)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	e.logger.Info("model saved", zap.String("path", path))
	return nil
}

// LoadModel restores a persisted model. With an empty version the newest
// artifact is chosen; version strings are sortable timestamps so
// lexicographic order is chronological.
func (e *Estimator) LoadModel(version string) error {
	var path string
	if version != "" {
		path = e.ModelPath(version)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: version %s", ErrModelNotFound, version)
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(e.modelDir, "rent_model_*.json"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return ErrModelNotFound
		}
		sort.Strings(matches)
		path = matches[len(matches)-1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}
	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return fmt.Errorf("failed to decode model file %s: %w", path, err)
	}

	e.ridge = artifact.Ridge
	e.forest = artifact.Forest
	e.scaler = artifact.Scaler
	e.featureColumns = artifact.FeatureColumns
	e.version = artifact.Version
	e.fitted = true
	e.logger.Info("model loaded", zap.String("path", path), zap.String("version", e.version))
	return nil
}

func evaluate(actual, predicted []float64) *ModelMetrics {
	return &ModelMetrics{
		R2:   stats.R2(actual, predicted),
		MAE:  stats.MAE(actual, predicted),
		RMSE: stats.RMSE(actual, predicted),
	}
}

// splitIndices shuffles row indices with a fixed seed and takes the test
// share off the front, so repeated runs on identical input are identical.
func splitIndices(n int, testFraction float64) (train, test []int) {
	rng := rand.New(rand.NewSource(splitSeed))
	perm := rng.Perm(n)

	numTest := int(math.Round(float64(n) * testFraction))
	if numTest < 1 {
		numTest = 1
	}
	if numTest >= n {
		numTest = n - 1
	}
	return perm[numTest:], perm[:numTest]
}

func selectRows(rows [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	outRows := make([][]float64, len(indices))
	outY := make([]float64, len(indices))
	for i, idx := range indices {
		outRows[i] = rows[idx]
		outY[i] = y[idx]
	}
	return outRows, outY
}

func rowHasNaN(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
