// Package model provides additional interfaces and types for machine learning models.
// This file complements the interfaces in estimator.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy of the prediction on the given data.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Classifier combines the interfaces a trainable classification model exposes.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// ProbabilisticClassifier is implemented by classifiers that can report
// per-class probability estimates.
type ProbabilisticClassifier interface {
	Classifier

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
