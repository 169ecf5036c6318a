// Package log defines standard attribute keys for classifier evaluation runs.
//
// Using these keys consistently across the library keeps the JSON log
// output filterable: every fit, predict and score operation reports the
// same hierarchical names ("model.name", "data.samples", ...).
package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of classifier.
	// Examples: "GaussianNB", "DecisionTreeClassifier", "LinearSVC"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "split", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "eval", "metrics"
	ComponentKey = "ml.component"

	// RunIDKey carries the UUID assigned to one evaluation run.
	RunIDKey = "run.id"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of feature columns.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct class labels.
	ClassesKey = "data.classes"

	// TrainSizeKey and TestSizeKey record the partition sizes of a split.
	TrainSizeKey = "split.train_size"
	TestSizeKey  = "split.test_size"

	// SeedKey records the pseudo-random seed controlling a split.
	SeedKey = "split.seed"

	// TrainFracKey records the training fraction of a split.
	TrainFracKey = "split.train_frac"
)

// Performance metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy, in [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"
)
