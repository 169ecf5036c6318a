// Package goclassify is a small classifier-evaluation harness.
//
// It loads labeled tabular data from CSV, performs a deterministic seeded
// train/test split and compares a set of classifiers by their exact-match
// accuracy on the held-out rows.
//
// The building blocks are usable on their own:
//
//   - dataset: CSV loading, train/test splitting and k-fold splitters
//   - naive_bayes: Gaussian Naive Bayes
//   - tree: CART decision tree classifier
//   - svm: linear support vector classifier
//   - preprocessing: standard and min-max feature scaling
//   - metrics: accuracy, AUC and log loss
//   - eval: runs named classifiers against a shared split
//
// A typical comparison:
//
//	ds, err := dataset.LoadCSV("iris.csv", 4)
//	if err != nil {
//		return err
//	}
//	X, y := ds.Matrices()
//	split, err := dataset.TrainTestSplit(X, y, 0.8, 7)
//	if err != nil {
//		return err
//	}
//
//	e := eval.NewEvaluator()
//	e.Add("gaussian_nb", naive_bayes.NewGaussianNB())
//	e.Add("decision_tree", tree.NewDecisionTreeClassifier())
//	e.Add("linear_svc", svm.NewLinearSVC())
//
//	results, err := e.RunSplit(ctx, split)
//
// Results are reported in registration order regardless of which model
// finishes first.
package goclassify
