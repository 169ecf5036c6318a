// Package naive_bayes implements naive Bayes classifiers.
package naive_bayes

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/RaneemQaddoura/goclassify/core/model"
	"github.com/RaneemQaddoura/goclassify/metrics"
	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// GaussianNB implements Gaussian Naive Bayes classification.
// Compatible with scikit-learn's GaussianNB: the likelihood of each feature
// is assumed Gaussian per class, with variances smoothed by a fraction of
// the largest feature variance for numerical stability.
type GaussianNB struct {
	state *model.StateManager

	// Hyperparameters
	varSmoothing float64   // Portion of the largest variance added to all variances
	priors       []float64 // User-supplied class priors, nil to learn from data

	// Model parameters
	classes_    []int       // Unique class labels, sorted
	nClasses_   int         // Number of classes
	nFeatures_  int         // Number of features
	theta_      [][]float64 // Per-class feature means (n_classes x n_features)
	var_        [][]float64 // Per-class smoothed feature variances
	classPrior_ []float64   // Per-class prior probability
	classCount_ []float64   // Per-class sample count
}

var (
	_ model.ProbabilisticClassifier = (*GaussianNB)(nil)
	_ model.ParameterGetter         = (*GaussianNB)(nil)
	_ model.ParameterSetter         = (*GaussianNB)(nil)
)

// GaussianNBOption is a functional option for GaussianNB
type GaussianNBOption func(*GaussianNB)

// NewGaussianNB creates a new GaussianNB classifier
func NewGaussianNB(opts ...GaussianNBOption) *GaussianNB {
	nb := &GaussianNB{
		state:        model.NewStateManager(),
		varSmoothing: 1e-9,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// WithVarSmoothing sets the variance smoothing factor
func WithVarSmoothing(eps float64) GaussianNBOption {
	return func(nb *GaussianNB) {
		nb.varSmoothing = eps
	}
}

// WithPriors sets fixed class priors instead of learning them from data.
// The slice must match the class count seen during Fit and sum to 1.
func WithPriors(priors []float64) GaussianNBOption {
	return func(nb *GaussianNB) {
		nb.priors = priors
	}
}

// Fit trains the classifier: per-class feature means and variances plus
// class priors, all from the training data.
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.NewModelError("GaussianNB.Fit", "empty training data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("GaussianNB.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("GaussianNB.Fit", "y must be a column vector (n×1 matrix)")
	}
	if nb.varSmoothing < 0 {
		return errors.NewValidationError("var_smoothing", "must be non-negative", nb.varSmoothing)
	}

	nb.extractClasses(y)
	nb.nFeatures_ = nFeatures

	if nb.priors != nil {
		if len(nb.priors) != nb.nClasses_ {
			return errors.NewDimensionError("GaussianNB.Fit", nb.nClasses_, len(nb.priors), 0)
		}
		sum := 0.0
		for _, p := range nb.priors {
			if p < 0 {
				return errors.NewValidationError("priors", "must be non-negative", p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return errors.NewValidationError("priors", "must sum to 1", sum)
		}
	}

	// Smoothing is relative to the largest feature variance over the whole
	// training set, matching the scikit-learn definition.
	epsilon := 0.0
	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		for i := 0; i < nSamples; i++ {
			col[i] = X.At(i, j)
		}
		if v := stat.PopVariance(col, nil); v > epsilon {
			epsilon = v
		}
	}
	epsilon *= nb.varSmoothing

	nb.theta_ = make([][]float64, nb.nClasses_)
	nb.var_ = make([][]float64, nb.nClasses_)
	nb.classCount_ = make([]float64, nb.nClasses_)
	nb.classPrior_ = make([]float64, nb.nClasses_)

	for classIdx, class := range nb.classes_ {
		var rows []int
		for i := 0; i < nSamples; i++ {
			if int(y.At(i, 0)) == class {
				rows = append(rows, i)
			}
		}
		nb.classCount_[classIdx] = float64(len(rows))

		nb.theta_[classIdx] = make([]float64, nFeatures)
		nb.var_[classIdx] = make([]float64, nFeatures)

		values := make([]float64, len(rows))
		for j := 0; j < nFeatures; j++ {
			for k, i := range rows {
				values[k] = X.At(i, j)
			}
			nb.theta_[classIdx][j] = stat.Mean(values, nil)
			nb.var_[classIdx][j] = stat.PopVariance(values, nil) + epsilon
		}
	}

	if nb.priors != nil {
		copy(nb.classPrior_, nb.priors)
	} else {
		for i := range nb.classPrior_ {
			nb.classPrior_[i] = nb.classCount_[i] / float64(nSamples)
		}
	}

	nb.state.SetDimensions(nFeatures, nSamples)
	nb.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels
func (nb *GaussianNB) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	nb.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		nb.classes_ = append(nb.classes_, class)
	}
	sort.Ints(nb.classes_)
	nb.nClasses_ = len(nb.classes_)
}

// jointLogLikelihood computes log P(class) + log P(x|class) for each sample
// and class.
func (nb *GaussianNB) jointLogLikelihood(X mat.Matrix) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()
	if nFeatures != nb.nFeatures_ {
		return nil, errors.NewDimensionError("GaussianNB.jointLogLikelihood", nb.nFeatures_, nFeatures, 1)
	}

	jll := mat.NewDense(nSamples, nb.nClasses_, nil)
	for classIdx := 0; classIdx < nb.nClasses_; classIdx++ {
		logPrior := math.Inf(-1)
		if nb.classPrior_[classIdx] > 0 {
			logPrior = math.Log(nb.classPrior_[classIdx])
		}

		for i := 0; i < nSamples; i++ {
			ll := logPrior
			for j := 0; j < nFeatures; j++ {
				variance := nb.var_[classIdx][j]
				diff := X.At(i, j) - nb.theta_[classIdx][j]
				ll -= 0.5 * (math.Log(2*math.Pi*variance) + diff*diff/variance)
			}
			jll.Set(i, classIdx, ll)
		}
	}
	return jll, nil
}

// Predict returns the most likely class for each sample
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "Predict")
	}

	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		best := 0
		bestLL := jll.At(i, 0)
		for classIdx := 1; classIdx < nb.nClasses_; classIdx++ {
			if ll := jll.At(i, classIdx); ll > bestLL {
				bestLL = ll
				best = classIdx
			}
		}
		predictions.Set(i, 0, float64(nb.classes_[best]))
	}
	return predictions, nil
}

// PredictLogProba returns log probability estimates for each class
func (nb *GaussianNB) PredictLogProba(X mat.Matrix) (mat.Matrix, error) {
	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "PredictLogProba")
	}

	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	// Normalize with log-sum-exp per row.
	nSamples, _ := X.Dims()
	for i := 0; i < nSamples; i++ {
		maxLL := jll.At(i, 0)
		for classIdx := 1; classIdx < nb.nClasses_; classIdx++ {
			if ll := jll.At(i, classIdx); ll > maxLL {
				maxLL = ll
			}
		}

		sum := 0.0
		for classIdx := 0; classIdx < nb.nClasses_; classIdx++ {
			sum += math.Exp(jll.At(i, classIdx) - maxLL)
		}
		logNorm := maxLL + math.Log(sum)

		for classIdx := 0; classIdx < nb.nClasses_; classIdx++ {
			jll.Set(i, classIdx, jll.At(i, classIdx)-logNorm)
		}
	}
	return jll, nil
}

// PredictProba returns probability estimates for each class
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	logProba, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}

	nSamples, nClasses := logProba.Dims()
	proba := mat.NewDense(nSamples, nClasses, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nClasses; j++ {
			proba.Set(i, j, math.Exp(logProba.At(i, j)))
		}
	}
	return proba, nil
}

// Score returns the mean accuracy on the given test data and labels
func (nb *GaussianNB) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the unique classes seen during fitting
func (nb *GaussianNB) Classes() []int {
	return nb.classes_
}

// GetParams returns the model hyperparameters
func (nb *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": nb.varSmoothing,
		"priors":        nb.priors,
	}
}

// SetParams sets the model hyperparameters
func (nb *GaussianNB) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "var_smoothing":
			nb.varSmoothing = value.(float64)
		case "priors":
			if value == nil {
				nb.priors = nil
			} else {
				nb.priors = value.([]float64)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
