// Command goclassify loads a labeled CSV dataset, performs a seeded
// train/test split and reports the held-out accuracy of a fixed set of
// classifiers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/dataset"
	"github.com/RaneemQaddoura/goclassify/eval"
	"github.com/RaneemQaddoura/goclassify/naive_bayes"
	"github.com/RaneemQaddoura/goclassify/pkg/log"
	"github.com/RaneemQaddoura/goclassify/preprocessing"
	"github.com/RaneemQaddoura/goclassify/svm"
	"github.com/RaneemQaddoura/goclassify/tree"
)

type config struct {
	dataPath  string
	nFeatures int
	trainFrac float64
	seed      int64
	scale     string
	logLevel  string
}

func main() {
	cfg := parseFlags()
	log.SetupLogger(cfg.logLevel)

	if err := run(context.Background(), cfg); err != nil {
		fmt.Fprintf(os.Stderr, "goclassify: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.dataPath, "data", "", "path to the CSV dataset (required)")
	flag.IntVar(&cfg.nFeatures, "features", 4, "number of leading numeric feature columns")
	flag.Float64Var(&cfg.trainFrac, "train-frac", 0.8, "fraction of samples used for training, in (0, 1)")
	flag.Int64Var(&cfg.seed, "seed", 7, "random seed for the train/test shuffle")
	flag.StringVar(&cfg.scale, "scale", "", "feature scaling: 'standard', 'minmax' or empty for none")
	flag.StringVar(&cfg.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flag.Parse()

	if cfg.dataPath == "" {
		fmt.Fprintln(os.Stderr, "goclassify: -data is required")
		flag.Usage()
		os.Exit(2)
	}
	if _, err := log.ParseLevel(cfg.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "goclassify: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}
	return cfg
}

func run(ctx context.Context, cfg config) error {
	logger := log.Default()

	ds, err := dataset.LoadCSV(cfg.dataPath, cfg.nFeatures)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, ds.NumFeatures(),
		log.ClassesKey, len(ds.Classes()),
	)

	X, y := ds.Matrices()
	split, err := dataset.TrainTestSplit(X, y, cfg.trainFrac, cfg.seed)
	if err != nil {
		return err
	}
	logger.Info("split created",
		log.SeedKey, cfg.seed,
		log.TrainFracKey, cfg.trainFrac,
		log.TrainSizeKey, len(split.TrainIndices),
		log.TestSizeKey, len(split.TestIndices),
	)

	if cfg.scale != "" {
		if err := scaleSplit(split, cfg.scale); err != nil {
			return err
		}
	}

	evaluator := eval.NewEvaluator()
	models := []struct {
		name  string
		model eval.Model
	}{
		{"gaussian_nb", naive_bayes.NewGaussianNB()},
		{"decision_tree", tree.NewDecisionTreeClassifier()},
		{"linear_svc", svm.NewLinearSVC(svm.WithRandomState(cfg.seed))},
	}
	for _, m := range models {
		if err := evaluator.Add(m.name, m.model); err != nil {
			return err
		}
	}

	results, err := evaluator.RunSplit(ctx, split)
	if err != nil {
		return err
	}

	printReport(os.Stdout, ds, split, results)
	return nil
}

// scaleSplit fits the scaler on the training rows only and applies it to
// both subsets.
func scaleSplit(split *dataset.Split, kind string) error {
	var scaler interface {
		Fit(X mat.Matrix) error
		Transform(X mat.Matrix) (mat.Matrix, error)
	}

	switch kind {
	case "standard":
		scaler = preprocessing.NewStandardScalerDefault()
	case "minmax":
		scaler = preprocessing.NewMinMaxScalerDefault()
	default:
		return fmt.Errorf("unknown scaler %q (want 'standard' or 'minmax')", kind)
	}

	if err := scaler.Fit(split.XTrain); err != nil {
		return err
	}
	scaledTrain, err := scaler.Transform(split.XTrain)
	if err != nil {
		return err
	}
	scaledTest, err := scaler.Transform(split.XTest)
	if err != nil {
		return err
	}

	split.XTrain = mat.DenseCopyOf(scaledTrain)
	split.XTest = mat.DenseCopyOf(scaledTest)
	return nil
}

func printReport(w *os.File, ds *dataset.Dataset, split *dataset.Split, results []eval.Result) {
	fmt.Fprintf(w, "dataset: %d samples, %d features, %d classes\n",
		ds.Len(), ds.NumFeatures(), len(ds.Classes()))
	fmt.Fprintf(w, "split:   %d train / %d test\n\n",
		len(split.TrainIndices), len(split.TestIndices))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "model\taccuracy")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\n", r.Name, r.Accuracy)
	}
	tw.Flush()
}
