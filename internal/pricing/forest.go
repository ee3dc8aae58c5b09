package pricing

import (
	"math/rand"
	"runtime"
	"sync"
)

// ForestParams are the hyperparameters of the random forest.
type ForestParams struct {
	NumTrees       int   `json:"numTrees"`
	MaxDepth       int   `json:"maxDepth"`
	MinSamplesLeaf int   `json:"minSamplesLeaf"`
	Seed           int64 `json:"seed"`
}

// RandomForest is an ensemble of CART regression trees fitted on bootstrap
// samples. It works on unscaled features; trees are scale-invariant and the
// impurity importances are easier to read that way.
type RandomForest struct {
	Params      ForestParams `json:"params"`
	Trees       []*TreeNode  `json:"trees"`
	Importances []float64    `json:"importances"`
}

// NewRandomForest creates an unfitted forest with the given parameters
func NewRandomForest(params ForestParams) *RandomForest {
	return &RandomForest{Params: params}
}

// Fit trains every tree on its own bootstrap sample. Trees are built
// concurrently; each tree seeds its own generator with Seed+treeIndex so
// the result does not depend on scheduling.
func (f *RandomForest) Fit(rows [][]float64, target []float64) {
	if len(rows) == 0 {
		return
	}
	numFeatures := len(rows[0])
	n := len(rows)

	f.Trees = make([]*TreeNode, f.Params.NumTrees)
	treeImportances := make([][]float64, f.Params.NumTrees)

	workers := runtime.NumCPU()
	if workers > f.Params.NumTrees {
		workers = f.Params.NumTrees
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				rng := rand.New(rand.NewSource(f.Params.Seed + int64(t)))
				indices := make([]int, n)
				for i := range indices {
					indices[i] = rng.Intn(n)
				}

				builder := &treeBuilder{
					rows:           rows,
					target:         target,
					maxDepth:       f.Params.MaxDepth,
					minSamplesLeaf: f.Params.MinSamplesLeaf,
					importances:    make([]float64, numFeatures),
				}
				f.Trees[t] = builder.build(indices, 0)
				treeImportances[t] = normalize(builder.importances)
			}
		}()
	}
	for t := 0; t < f.Params.NumTrees; t++ {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	avg := make([]float64, numFeatures)
	for _, imp := range treeImportances {
		for j, v := range imp {
			avg[j] += v
		}
	}
	for j := range avg {
		avg[j] /= float64(f.Params.NumTrees)
	}
	f.Importances = normalize(avg)
}

// PredictRow returns the mean prediction across all trees
func (f *RandomForest) PredictRow(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.PredictRow(row)
	}
	return sum / float64(len(f.Trees))
}

// Predict returns the mean prediction for each row
func (f *RandomForest) Predict(rows [][]float64) []float64 {
	preds := make([]float64, len(rows))
	for i, row := range rows {
		preds[i] = f.PredictRow(row)
	}
	return preds
}

// TreePredictions returns every individual tree's prediction for one row,
// used to derive empirical confidence intervals.
func (f *RandomForest) TreePredictions(row []float64) []float64 {
	preds := make([]float64, len(f.Trees))
	for t, tree := range f.Trees {
		preds[t] = tree.PredictRow(row)
	}
	return preds
}

func normalize(values []float64) []float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return values
	}
	normalized := make([]float64, len(values))
	for j, v := range values {
		normalized[j] = v / sum
	}
	return normalized
}
