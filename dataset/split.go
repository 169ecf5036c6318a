package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// Split is a partition of a dataset into disjoint train and test subsets.
// The union of the index slices covers every row exactly once.
type Split struct {
	XTrain, YTrain *mat.Dense
	XTest, YTest   *mat.Dense

	TrainIndices []int
	TestIndices  []int
}

// TrainTestSplit partitions X and y into train and test subsets. The
// permutation of row indices is keyed by seed: the same seed, fraction and
// data always produce the same split. The first round(trainFrac*n) permuted
// indices become the training subset; the remainder becomes the test subset.
//
// trainFrac must lie strictly inside (0, 1) and both resulting subsets must
// be non-empty, so n must be at least 2.
func TrainTestSplit(X, y mat.Matrix, trainFrac float64, seed int64) (*Split, error) {
	n, _ := X.Dims()
	yRows, yCols := y.Dims()

	if n != yRows {
		return nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewValueError("TrainTestSplit", "y must be a column vector (n×1 matrix)")
	}
	if n < 2 {
		return nil, errors.NewValueError("TrainTestSplit", "need at least 2 samples to form non-empty train and test subsets")
	}
	if trainFrac <= 0 || trainFrac >= 1 || math.IsNaN(trainFrac) {
		return nil, errors.NewValidationError("trainFrac", "must be in the open interval (0, 1)", trainFrac)
	}

	// Rounding convention: round half away from zero, so 150 samples at
	// 0.8 yield 120 train / 30 test.
	nTrain := int(math.Round(trainFrac * float64(n)))
	if nTrain == 0 || nTrain == n {
		return nil, errors.NewValidationError("trainFrac", "fraction leaves an empty subset for this dataset size", trainFrac)
	}

	indices := permutation(n, seed)

	trainIdx := make([]int, nTrain)
	testIdx := make([]int, n-nTrain)
	copy(trainIdx, indices[:nTrain])
	copy(testIdx, indices[nTrain:])

	XTrain, YTrain := Subset(X, y, trainIdx)
	XTest, YTest := Subset(X, y, testIdx)

	return &Split{
		XTrain:       XTrain,
		YTrain:       YTrain,
		XTest:        XTest,
		YTest:        YTest,
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}, nil
}

// permutation returns a deterministic pseudo-random permutation of [0, n)
// keyed by seed.
func permutation(n int, seed int64) []int {
	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}

// Subset extracts the rows of X and y named by indices, in sorted row order.
func Subset(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	rows := len(indices)
	_, xCols := X.Dims()
	_, yCols := y.Dims()

	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)
	for i, idx := range sorted {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}
	return xSubset, ySubset
}

// KFoldSplitter generates train/test index folds for cross-validation.
type KFoldSplitter interface {
	Split(X, y mat.Matrix) []CVFold
	GetNSplits() int
}

// CVFold represents a single fold in cross-validation.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold implements a k-fold cross-validation splitter.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a new k-fold splitter.
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits.
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split generates train/test indices for each fold.
func (kf *KFold) Split(X, _ mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	currentIdx := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}

		testIndices := make([]int, testSize)
		copy(testIndices, indices[currentIdx:currentIdx+testSize])

		testSet := make(map[int]bool, testSize)
		for _, idx := range testIndices {
			testSet[idx] = true
		}
		trainIndices := make([]int, 0, nSamples-testSize)
		for _, idx := range indices {
			if !testSet[idx] {
				trainIndices = append(trainIndices, idx)
			}
		}

		folds[i] = CVFold{TrainIndices: trainIndices, TestIndices: testIndices}
		currentIdx += testSize
	}
	return folds
}

// StratifiedKFold implements stratified k-fold cross-validation: each fold
// preserves the per-class sample proportions of the full dataset.
type StratifiedKFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewStratifiedKFold creates a new stratified k-fold splitter.
func NewStratifiedKFold(nSplits int, shuffle bool, randomSeed int64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{
		NSplits:    nSplits,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

// GetNSplits returns the number of splits.
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split generates stratified train/test indices for each fold.
func (skf *StratifiedKFold) Split(X, y mat.Matrix) []CVFold {
	nSamples, _ := X.Dims()

	classIndices := make(map[float64][]int)
	var classOrder []float64
	for i := 0; i < nSamples; i++ {
		label := y.At(i, 0)
		if _, ok := classIndices[label]; !ok {
			classOrder = append(classOrder, label)
		}
		classIndices[label] = append(classIndices[label], i)
	}
	sort.Float64s(classOrder)

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(skf.RandomSeed), uint64(skf.RandomSeed)))
		for _, label := range classOrder {
			indices := classIndices[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	folds := make([]CVFold, skf.NSplits)
	for _, label := range classOrder {
		indices := classIndices[label]
		nClass := len(indices)
		foldSize := nClass / skf.NSplits
		remainder := nClass % skf.NSplits

		currentIdx := 0
		for i := 0; i < skf.NSplits; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			for j := 0; j < testSize && currentIdx < nClass; j++ {
				folds[i].TestIndices = append(folds[i].TestIndices, indices[currentIdx])
				currentIdx++
			}
		}
	}

	for i := 0; i < skf.NSplits; i++ {
		testSet := make(map[int]bool, len(folds[i].TestIndices))
		for _, idx := range folds[i].TestIndices {
			testSet[idx] = true
		}
		for j := 0; j < nSamples; j++ {
			if !testSet[j] {
				folds[i].TrainIndices = append(folds[i].TrainIndices, j)
			}
		}
	}
	return folds
}
