// Package eval runs named classifiers against a shared train/test split and
// reports their held-out accuracy.
package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/core/parallel"
	"github.com/RaneemQaddoura/goclassify/dataset"
	"github.com/RaneemQaddoura/goclassify/metrics"
	"github.com/RaneemQaddoura/goclassify/pkg/errors"
	"github.com/RaneemQaddoura/goclassify/pkg/log"
)

// Model is the minimal surface the evaluator needs from a classifier.
// All classifiers in this module satisfy it.
type Model interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Result is the outcome of evaluating one named model.
type Result struct {
	Name     string
	Accuracy float64
}

// Evaluator trains and scores a set of named models on the same data.
// Models are evaluated concurrently but results are always reported in
// registration order.
type Evaluator struct {
	names  []string
	models map[string]Model
	logger log.Logger
}

// Option is a functional option for Evaluator
type Option func(*Evaluator)

// WithLogger sets the logger used for per-model progress records.
func WithLogger(logger log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an empty Evaluator
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		models: make(map[string]Model),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add registers a model under a unique name. Registration order determines
// the order of results.
func (e *Evaluator) Add(name string, m Model) error {
	if name == "" {
		return errors.NewValueError("Evaluator.Add", "model name must not be empty")
	}
	if m == nil {
		return errors.NewValueError("Evaluator.Add", "model must not be nil")
	}
	if _, exists := e.models[name]; exists {
		return errors.NewValidationError("name", "model already registered", name)
	}
	e.names = append(e.names, name)
	e.models[name] = m
	return nil
}

// Names returns the registered model names in registration order
func (e *Evaluator) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of registered models
func (e *Evaluator) Len() int {
	return len(e.names)
}

// Run fits every registered model on the training data and scores it on the
// held-out test data. Any model failure aborts the whole run: either every
// model reports an accuracy or none do.
func (e *Evaluator) Run(ctx context.Context, XTrain, yTrain, XTest, yTest mat.Matrix) ([]Result, error) {
	if len(e.names) == 0 {
		return nil, errors.NewValueError("Evaluator.Run", "no models registered")
	}
	if err := validateRunData(XTrain, yTrain, XTest, yTest); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := e.logger.With(log.RunIDKey, runID)

	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	logger.Info("evaluation started",
		log.ComponentKey, "eval",
		log.TrainSizeKey, trainRows,
		log.TestSizeKey, testRows,
	)

	results := make([]Result, len(e.names))
	errs := make([]error, len(e.names))

	parallel.ForEach(len(e.names), func(idx int) {
		name := e.names[idx]

		if err := ctx.Err(); err != nil {
			errs[idx] = errors.Wrapf(err, "evaluation of %s canceled", name)
			return
		}

		start := time.Now()
		acc, err := evaluateOne(e.models[name], XTrain, yTrain, XTest, yTest)
		if err != nil {
			errs[idx] = errors.Wrapf(err, "model %s", name)
			logger.Error("model evaluation failed",
				log.ModelNameKey, name,
				log.ErrAttrKey, err.Error(),
			)
			return
		}

		results[idx] = Result{Name: name, Accuracy: acc}
		logger.Info("model evaluated",
			log.ModelNameKey, name,
			log.AccuracyKey, acc,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	})

	// Report the first failure in registration order.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// RunSplit is a convenience wrapper over Run for a dataset.Split.
func (e *Evaluator) RunSplit(ctx context.Context, split *dataset.Split) ([]Result, error) {
	if split == nil {
		return nil, errors.NewValueError("Evaluator.RunSplit", "split must not be nil")
	}
	return e.Run(ctx, split.XTrain, split.YTrain, split.XTest, split.YTest)
}

// evaluateOne fits a single model and computes its held-out accuracy.
func evaluateOne(m Model, XTrain, yTrain, XTest, yTest mat.Matrix) (float64, error) {
	if err := m.Fit(XTrain, yTrain); err != nil {
		return 0, err
	}
	predictions, err := m.Predict(XTest)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(yTest, predictions)
}

// validateRunData checks the shapes of the train and test matrices.
func validateRunData(XTrain, yTrain, XTest, yTest mat.Matrix) error {
	const op = "Evaluator.Run"

	if XTrain == nil || yTrain == nil || XTest == nil || yTest == nil {
		return errors.NewValueError(op, "train and test matrices must not be nil")
	}

	trainRows, trainCols := XTrain.Dims()
	testRows, testCols := XTest.Dims()
	yTrainRows, _ := yTrain.Dims()
	yTestRows, _ := yTest.Dims()

	if trainRows == 0 {
		return errors.NewModelError(op, "empty training set", errors.ErrEmptyData)
	}
	if testRows == 0 {
		return errors.NewModelError(op, "empty test set", errors.ErrEmptyTestSet)
	}
	if trainCols != testCols {
		return errors.NewDimensionError(op, trainCols, testCols, 1)
	}
	if trainRows != yTrainRows {
		return errors.NewDimensionError(op, trainRows, yTrainRows, 0)
	}
	if testRows != yTestRows {
		return errors.NewDimensionError(op, testRows, yTestRows, 0)
	}
	return nil
}

// CrossValidate evaluates a model over the folds produced by the splitter,
// constructing a fresh model per fold. It returns the per-fold accuracies in
// fold order.
func CrossValidate(ctx context.Context, newModel func() Model, X, y mat.Matrix, splitter dataset.KFoldSplitter) ([]float64, error) {
	if newModel == nil {
		return nil, errors.NewValueError("CrossValidate", "model factory must not be nil")
	}
	if splitter == nil {
		return nil, errors.NewValueError("CrossValidate", "splitter must not be nil")
	}

	folds := splitter.Split(X, y)
	if len(folds) == 0 {
		return nil, errors.NewValueError("CrossValidate", "splitter produced no folds")
	}
	// More folds than samples leaves some folds without test rows.
	for idx, fold := range folds {
		if len(fold.TrainIndices) == 0 || len(fold.TestIndices) == 0 {
			return nil, errors.NewValueError("CrossValidate",
				fmt.Sprintf("fold %d is empty: fewer samples than folds", idx))
		}
	}

	accuracies := make([]float64, len(folds))
	errs := make([]error, len(folds))

	parallel.ForEach(len(folds), func(idx int) {
		if err := ctx.Err(); err != nil {
			errs[idx] = errors.Wrapf(err, "fold %d canceled", idx)
			return
		}

		fold := folds[idx]
		XTrain, yTrain := dataset.Subset(X, y, fold.TrainIndices)
		XTest, yTest := dataset.Subset(X, y, fold.TestIndices)

		acc, err := evaluateOne(newModel(), XTrain, yTrain, XTest, yTest)
		if err != nil {
			errs[idx] = errors.Wrapf(err, "fold %d", idx)
			return
		}
		accuracies[idx] = acc
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return accuracies, nil
}
