// Package tree implements decision tree classifiers.
package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/core/model"
	"github.com/RaneemQaddoura/goclassify/core/parallel"
	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// DecisionTreeClassifier is a CART-style classifier with axis-aligned
// numeric splits. Compatible with scikit-learn's DecisionTreeClassifier for
// the gini and entropy criteria.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion       string // "gini" or "entropy"
	maxDepth        int    // 0 means no depth limit
	minSamplesSplit int    // minimum samples to attempt a split
	minSamplesLeaf  int    // minimum samples required in each leaf

	// Model parameters
	root        *node
	classes_    []int
	nClasses_   int
	nFeatures_  int
	importances []float64
}

// node holds one node of the fitted tree.
type node struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *node
	right     *node

	nSamples  int
	probas    []float64 // class distribution, aligned with classes_
	predIndex int       // index into classes_ of the majority class
}

// Score returns a bare float64 for scikit-learn parity, so the tree
// satisfies Fitter and Predictor but not Scorer.
var (
	_ model.Fitter          = (*DecisionTreeClassifier)(nil)
	_ model.Predictor       = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter = (*DecisionTreeClassifier)(nil)
)

// DecisionTreeOption is a functional option for DecisionTreeClassifier
type DecisionTreeOption func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a new DecisionTreeClassifier
func NewDecisionTreeClassifier(opts ...DecisionTreeOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// WithCriterion sets the impurity criterion ("gini" or "entropy")
func WithCriterion(criterion string) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth sets the maximum tree depth (0 means unlimited)
func WithMaxDepth(depth int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples to attempt a split
func WithMinSamplesSplit(n int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples per leaf
func WithMinSamplesLeaf(n int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesLeaf = n
	}
}

// Fit grows the tree from the training data
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty training data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector (n×1 matrix)")
	}
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", dt.criterion)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.minSamplesLeaf)
	}

	dt.extractClasses(y)
	dt.nFeatures_ = nFeatures
	dt.importances = make([]float64, nFeatures)

	// Encode labels as class indices once up front.
	labels := make([]int, nSamples)
	classIndex := make(map[int]int, dt.nClasses_)
	for i, class := range dt.classes_ {
		classIndex[class] = i
	}
	for i := 0; i < nSamples; i++ {
		labels[i] = classIndex[int(y.At(i, 0))]
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	dt.root = dt.build(X, labels, indices, 0)
	dt.normalizeImportances()

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels
func (dt *DecisionTreeClassifier) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	dt.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		dt.classes_ = append(dt.classes_, class)
	}
	sort.Ints(dt.classes_)
	dt.nClasses_ = len(dt.classes_)
}

// build grows the subtree over the samples named by indices.
func (dt *DecisionTreeClassifier) build(X mat.Matrix, labels, indices []int, depth int) *node {
	counts := make([]float64, dt.nClasses_)
	for _, idx := range indices {
		counts[labels[idx]]++
	}

	n := len(indices)
	nd := &node{
		nSamples: n,
		probas:   make([]float64, dt.nClasses_),
	}
	maxCount := -1.0
	for c, count := range counts {
		nd.probas[c] = count / float64(n)
		if count > maxCount {
			maxCount = count
			nd.predIndex = c
		}
	}

	parentImpurity := dt.impurity(counts, n)

	// Stopping conditions: purity, depth limit, too few samples.
	if parentImpurity == 0 ||
		(dt.maxDepth > 0 && depth >= dt.maxDepth) ||
		n < dt.minSamplesSplit {
		nd.leaf = true
		return nd
	}

	feature, threshold, gain, ok := dt.bestSplit(X, labels, indices, counts, parentImpurity)
	if !ok {
		nd.leaf = true
		return nd
	}

	var leftIdx, rightIdx []int
	for _, idx := range indices {
		if X.At(idx, feature) <= threshold {
			leftIdx = append(leftIdx, idx)
		} else {
			rightIdx = append(rightIdx, idx)
		}
	}

	dt.importances[feature] += float64(n) * gain

	nd.feature = feature
	nd.threshold = threshold
	nd.left = dt.build(X, labels, leftIdx, depth+1)
	nd.right = dt.build(X, labels, rightIdx, depth+1)
	return nd
}

// splitCandidate is one feature's best split during the parallel search.
type splitCandidate struct {
	threshold float64
	gain      float64
	ok        bool
}

// bestSplit searches every feature for the threshold with the largest
// impurity decrease. Features are searched in parallel above a small
// sample-count threshold.
func (dt *DecisionTreeClassifier) bestSplit(X mat.Matrix, labels, indices []int, parentCounts []float64, parentImpurity float64) (feature int, threshold, gain float64, ok bool) {
	n := len(indices)
	candidates := make([]splitCandidate, dt.nFeatures_)

	parallel.ParallelizeWithThreshold(dt.nFeatures_, 4, func(start, end int) {
		for j := start; j < end; j++ {
			candidates[j] = dt.bestSplitForFeature(X, labels, indices, parentCounts, parentImpurity, j, n)
		}
	})

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	for j, cand := range candidates {
		if cand.ok && cand.gain > bestGain {
			bestGain = cand.gain
			bestFeature = j
			bestThreshold = cand.threshold
		}
	}
	if bestFeature < 0 {
		return 0, 0, 0, false
	}
	return bestFeature, bestThreshold, bestGain, true
}

// bestSplitForFeature sweeps the sorted values of one feature, maintaining
// cumulative class counts on each side of the candidate threshold.
func (dt *DecisionTreeClassifier) bestSplitForFeature(X mat.Matrix, labels, indices []int, parentCounts []float64, parentImpurity float64, feature, n int) splitCandidate {
	type valueLabel struct {
		value float64
		label int
	}
	values := make([]valueLabel, n)
	for i, idx := range indices {
		values[i] = valueLabel{value: X.At(idx, feature), label: labels[idx]}
	}
	sort.Slice(values, func(a, b int) bool { return values[a].value < values[b].value })

	leftCounts := make([]float64, dt.nClasses_)
	rightCounts := make([]float64, dt.nClasses_)
	copy(rightCounts, parentCounts)

	best := splitCandidate{}
	for i := 0; i < n-1; i++ {
		leftCounts[values[i].label]++
		rightCounts[values[i].label]--

		// Only cut between distinct values.
		if values[i].value == values[i+1].value {
			continue
		}

		nLeft := i + 1
		nRight := n - nLeft
		if nLeft < dt.minSamplesLeaf || nRight < dt.minSamplesLeaf {
			continue
		}

		weighted := (float64(nLeft)*dt.impurity(leftCounts, nLeft) +
			float64(nRight)*dt.impurity(rightCounts, nRight)) / float64(n)
		gain := parentImpurity - weighted
		if gain > best.gain {
			best.gain = gain
			best.threshold = (values[i].value + values[i+1].value) / 2
			best.ok = true
		}
	}
	return best
}

// impurity computes the configured criterion over class counts.
func (dt *DecisionTreeClassifier) impurity(counts []float64, n int) float64 {
	if n == 0 {
		return 0
	}
	total := float64(n)

	switch dt.criterion {
	case "entropy":
		entropy := 0.0
		for _, count := range counts {
			if count > 0 {
				p := count / total
				entropy -= p * math.Log2(p)
			}
		}
		return entropy
	default: // gini
		gini := 1.0
		for _, count := range counts {
			p := count / total
			gini -= p * p
		}
		return gini
	}
}

func (dt *DecisionTreeClassifier) normalizeImportances() {
	sum := 0.0
	for _, imp := range dt.importances {
		sum += imp
	}
	if sum == 0 {
		return
	}
	for j := range dt.importances {
		dt.importances[j] /= sum
	}
}

// Predict returns the majority class of the leaf each sample falls into
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", dt.nFeatures_, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		leaf := dt.traverse(X, i)
		predictions.Set(i, 0, float64(dt.classes_[leaf.predIndex]))
	}
	return predictions, nil
}

// PredictProba returns the class distribution of the leaf each sample falls into
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !dt.state.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.nFeatures_, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, dt.nClasses_, nil)
	for i := 0; i < nSamples; i++ {
		leaf := dt.traverse(X, i)
		probas.SetRow(i, leaf.probas)
	}
	return probas, nil
}

func (dt *DecisionTreeClassifier) traverse(X mat.Matrix, row int) *node {
	nd := dt.root
	for !nd.leaf {
		if X.At(row, nd.feature) <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd
}

// Score returns the mean accuracy on the given test data and labels
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0.0
	}

	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples)
}

// Classes returns the unique classes seen during fitting
func (dt *DecisionTreeClassifier) Classes() []int {
	return dt.classes_
}

// GetFeatureImportances returns the normalized impurity-decrease importance
// of each feature
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	out := make([]float64, len(dt.importances))
	copy(out, dt.importances)
	return out
}

// GetDepth returns the depth of the fitted tree (a lone root has depth 0)
func (dt *DecisionTreeClassifier) GetDepth() int {
	return depthOf(dt.root)
}

func depthOf(nd *node) int {
	if nd == nil || nd.leaf {
		return 0
	}
	left := depthOf(nd.left)
	right := depthOf(nd.right)
	if left > right {
		return left + 1
	}
	return right + 1
}

// GetNLeaves returns the number of leaves in the fitted tree
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	return leavesOf(dt.root)
}

func leavesOf(nd *node) int {
	if nd == nil {
		return 0
	}
	if nd.leaf {
		return 1
	}
	return leavesOf(nd.left) + leavesOf(nd.right)
}

// GetParams returns the model hyperparameters
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
	}
}

// SetParams sets the model hyperparameters
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			dt.criterion = value.(string)
		case "max_depth":
			dt.maxDepth = value.(int)
		case "min_samples_split":
			dt.minSamplesSplit = value.(int)
		case "min_samples_leaf":
			dt.minSamplesLeaf = value.(int)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
