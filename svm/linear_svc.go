// Package svm implements linear support vector classification.
package svm

import (
	"math"
	randv2 "math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/core/model"
	"github.com/RaneemQaddoura/goclassify/metrics"
	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// LinearSVC is a linear support vector classifier trained by subgradient
// descent on the L2-regularized hinge loss. Multiclass problems are handled
// one-vs-rest. Compatible with scikit-learn's LinearSVC for the default
// squared-free hinge formulation.
type LinearSVC struct {
	state *model.StateManager

	// Hyperparameters
	C            float64 // Inverse regularization strength
	fitIntercept bool
	learningRate float64 // Initial learning rate for the decay schedule
	maxIter      int
	tol          float64 // Convergence tolerance on the max gradient component
	randomState  int64   // Seed for weight initialization, -1 for time-based

	// Model parameters
	coef_      [][]float64 // (n_classes x n_features), 1 x n_features for binary
	intercept_ []float64
	classes_   []int
	nClasses_  int
	nFeatures_ int
	nIter_     []int

	rand *randv2.Rand
}

var (
	_ model.Classifier      = (*LinearSVC)(nil)
	_ model.ParameterGetter = (*LinearSVC)(nil)
	_ model.ParameterSetter = (*LinearSVC)(nil)
)

// LinearSVCOption is a functional option for LinearSVC
type LinearSVCOption func(*LinearSVC)

// NewLinearSVC creates a new LinearSVC
func NewLinearSVC(opts ...LinearSVCOption) *LinearSVC {
	svc := &LinearSVC{
		state:        model.NewStateManager(),
		C:            1.0,
		fitIntercept: true,
		learningRate: 0.5,
		maxIter:      1000,
		tol:          1e-4,
		randomState:  -1,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.randomState >= 0 {
		svc.rand = randv2.New(randv2.NewPCG(uint64(svc.randomState), uint64(svc.randomState)))
	} else {
		svc.rand = randv2.New(randv2.NewPCG(randv2.Uint64(), randv2.Uint64()))
	}
	return svc
}

// WithC sets the inverse regularization strength
func WithC(c float64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.C = c
	}
}

// WithFitIntercept sets whether to fit an intercept term
func WithFitIntercept(fit bool) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.fitIntercept = fit
	}
}

// WithLearningRate sets the initial learning rate
func WithLearningRate(lr float64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.learningRate = lr
	}
}

// WithMaxIter sets the maximum number of iterations per binary problem
func WithMaxIter(maxIter int) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.maxIter = maxIter
	}
}

// WithTol sets the convergence tolerance
func WithTol(tol float64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.tol = tol
	}
}

// WithRandomState sets the seed for weight initialization
func WithRandomState(seed int64) LinearSVCOption {
	return func(svc *LinearSVC) {
		svc.randomState = seed
	}
}

// Fit trains the classifier on X and y
func (svc *LinearSVC) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()

	if nSamples == 0 {
		return errors.NewModelError("LinearSVC.Fit", "empty training data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LinearSVC.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("LinearSVC.Fit", "y must be a column vector (n×1 matrix)")
	}
	if svc.C <= 0 {
		return errors.NewValidationError("C", "must be positive", svc.C)
	}

	svc.extractClasses(y)
	if svc.nClasses_ < 2 {
		return errors.NewValueError("LinearSVC.Fit", "training data must contain at least two classes")
	}
	svc.nFeatures_ = nFeatures
	svc.initializeWeights(nFeatures)

	if svc.nClasses_ == 2 {
		// Single binary problem: classes_[1] is the positive class.
		target := svc.signTargets(y, svc.classes_[1])
		svc.fitBinary(X, target, 0)
	} else {
		for classIdx, class := range svc.classes_ {
			target := svc.signTargets(y, class)
			svc.fitBinary(X, target, classIdx)
		}
	}

	svc.state.SetDimensions(nFeatures, nSamples)
	svc.state.SetFitted()
	return nil
}

// extractClasses identifies unique class labels
func (svc *LinearSVC) extractClasses(y mat.Matrix) {
	rows, _ := y.Dims()
	classMap := make(map[int]bool)
	for i := 0; i < rows; i++ {
		classMap[int(y.At(i, 0))] = true
	}

	svc.classes_ = make([]int, 0, len(classMap))
	for class := range classMap {
		svc.classes_ = append(svc.classes_, class)
	}
	sort.Ints(svc.classes_)
	svc.nClasses_ = len(svc.classes_)
}

// initializeWeights initializes model weights with small random values
func (svc *LinearSVC) initializeWeights(nFeatures int) {
	nProblems := svc.nClasses_
	if svc.nClasses_ == 2 {
		nProblems = 1
	}

	svc.coef_ = make([][]float64, nProblems)
	for i := range svc.coef_ {
		svc.coef_[i] = make([]float64, nFeatures)
		for j := range svc.coef_[i] {
			svc.coef_[i][j] = svc.rand.NormFloat64() * 0.01
		}
	}
	svc.intercept_ = make([]float64, nProblems)
	svc.nIter_ = make([]int, nProblems)
}

// signTargets converts labels to -1/+1 against the given positive class.
func (svc *LinearSVC) signTargets(y mat.Matrix, positive int) []float64 {
	rows, _ := y.Dims()
	target := make([]float64, rows)
	for i := 0; i < rows; i++ {
		if int(y.At(i, 0)) == positive {
			target[i] = 1.0
		} else {
			target[i] = -1.0
		}
	}
	return target
}

// fitBinary runs full-batch subgradient descent on the hinge loss for one
// binary problem. The objective is (1/2C)||w||^2 + mean(max(0, 1 - y*f(x))).
func (svc *LinearSVC) fitBinary(X mat.Matrix, target []float64, problemIdx int) {
	nSamples, nFeatures := X.Dims()
	weights := svc.coef_[problemIdx]
	intercept := &svc.intercept_[problemIdx]
	lambda := 1.0 / (svc.C * float64(nSamples))

	converged := false
	for iter := 0; iter < svc.maxIter; iter++ {
		gradWeights := make([]float64, nFeatures)
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			margin := *intercept
			for j := 0; j < nFeatures; j++ {
				margin += X.At(i, j) * weights[j]
			}
			// Subgradient of the hinge is nonzero only inside the margin.
			if target[i]*margin < 1.0 {
				gradIntercept -= target[i]
				for j := 0; j < nFeatures; j++ {
					gradWeights[j] -= target[i] * X.At(i, j)
				}
			}
		}

		for j := range gradWeights {
			gradWeights[j] = gradWeights[j]/float64(nSamples) + lambda*weights[j]
		}
		gradIntercept /= float64(nSamples)

		learningRate := svc.learningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		if svc.fitIntercept {
			*intercept -= learningRate * gradIntercept
		}

		svc.nIter_[problemIdx] = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < svc.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("LinearSVC", svc.maxIter,
			"hinge subgradient descent reached max_iter before tolerance"))
	}
}

// DecisionFunction returns the signed distance of each sample to the
// separating hyperplane of each binary problem. The result is n×1 for
// binary problems and n×n_classes for one-vs-rest multiclass.
func (svc *LinearSVC) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if !svc.state.IsFitted() {
		return nil, errors.NewNotFittedError("LinearSVC", "DecisionFunction")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != svc.nFeatures_ {
		return nil, errors.NewDimensionError("LinearSVC.DecisionFunction", svc.nFeatures_, nFeatures, 1)
	}

	scores := mat.NewDense(nSamples, len(svc.coef_), nil)
	for i := 0; i < nSamples; i++ {
		for p := range svc.coef_ {
			margin := svc.intercept_[p]
			for j := 0; j < nFeatures; j++ {
				margin += X.At(i, j) * svc.coef_[p][j]
			}
			scores.Set(i, p, margin)
		}
	}
	return scores, nil
}

// Predict returns the class with the largest decision value for each sample
func (svc *LinearSVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := svc.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)

	if svc.nClasses_ == 2 {
		for i := 0; i < nSamples; i++ {
			if scores.At(i, 0) >= 0 {
				predictions.Set(i, 0, float64(svc.classes_[1]))
			} else {
				predictions.Set(i, 0, float64(svc.classes_[0]))
			}
		}
		return predictions, nil
	}

	for i := 0; i < nSamples; i++ {
		maxScore := math.Inf(-1)
		bestClass := 0
		for p := 0; p < svc.nClasses_; p++ {
			if scores.At(i, p) > maxScore {
				maxScore = scores.At(i, p)
				bestClass = p
			}
		}
		predictions.Set(i, 0, float64(svc.classes_[bestClass]))
	}
	return predictions, nil
}

// Score returns the mean accuracy on the given test data and labels
func (svc *LinearSVC) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := svc.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, predictions)
}

// Classes returns the unique classes seen during fitting
func (svc *LinearSVC) Classes() []int {
	return svc.classes_
}

// NIter returns the number of iterations run for each binary problem
func (svc *LinearSVC) NIter() []int {
	return svc.nIter_
}

// GetParams returns the model hyperparameters
func (svc *LinearSVC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             svc.C,
		"fit_intercept": svc.fitIntercept,
		"learning_rate": svc.learningRate,
		"max_iter":      svc.maxIter,
		"tol":           svc.tol,
		"random_state":  svc.randomState,
	}
}

// SetParams sets the model hyperparameters
func (svc *LinearSVC) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			svc.C = value.(float64)
		case "fit_intercept":
			svc.fitIntercept = value.(bool)
		case "learning_rate":
			svc.learningRate = value.(float64)
		case "max_iter":
			svc.maxIter = value.(int)
		case "tol":
			svc.tol = value.(float64)
		case "random_state":
			svc.randomState = value.(int64)
			if svc.randomState >= 0 {
				svc.rand = randv2.New(randv2.NewPCG(uint64(svc.randomState), uint64(svc.randomState)))
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}
