// Package dataset provides loading and partitioning of labeled tabular data.
//
// A Dataset is an ordered, immutable collection of samples sharing one
// feature dimensionality. Data enters through LoadCSV or New and leaves as
// gonum matrices ready for the classifiers in this library.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// Sample is one labeled observation: a fixed-length numeric feature vector
// paired with a categorical label.
type Sample struct {
	Features []float64
	Label    string
}

// Dataset is an ordered collection of samples. Every sample has the same
// feature dimensionality; the collection is never mutated after creation.
type Dataset struct {
	samples      []Sample
	featureNames []string
	labelName    string
	classes      []string // sorted unique labels
	classIndex   map[string]int
}

// New builds a Dataset from samples, validating that all feature vectors
// share one dimensionality.
func New(samples []Sample, featureNames []string, labelName string) (*Dataset, error) {
	if len(samples) == 0 {
		return nil, errors.NewModelError("dataset.New", "no samples", errors.ErrEmptyData)
	}

	dim := len(samples[0].Features)
	if dim == 0 {
		return nil, errors.NewValueError("dataset.New", "samples have no features")
	}
	for i, s := range samples {
		if len(s.Features) != dim {
			return nil, errors.NewDimensionError("dataset.New", dim, len(s.Features), 1)
		}
		if s.Label == "" {
			return nil, errors.NewValueError("dataset.New", "empty label at row "+strconv.Itoa(i))
		}
	}
	if len(featureNames) > 0 && len(featureNames) != dim {
		return nil, errors.NewDimensionError("dataset.New", dim, len(featureNames), 1)
	}

	d := &Dataset{
		samples:      samples,
		featureNames: featureNames,
		labelName:    labelName,
	}
	d.indexClasses()
	return d, nil
}

// LoadCSV reads a header-prefixed CSV file. The first nFeatures columns are
// treated as numeric features and the following column as the label; this
// mapping is explicit configuration, never inferred from the content.
func LoadCSV(path string, nFeatures int) (*Dataset, error) {
	if nFeatures < 1 {
		return nil, errors.NewValidationError("nFeatures", "must be at least 1", nFeatures)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: open %s", path)
	}
	defer f.Close()

	return ReadCSV(f, nFeatures)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, nFeatures int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row width validated against the header below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataset.ReadCSV", "missing header row", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: read header")
	}
	if len(header) < nFeatures+1 {
		return nil, errors.NewDimensionError("dataset.ReadCSV", nFeatures+1, len(header), 1)
	}

	featureNames := make([]string, nFeatures)
	copy(featureNames, header[:nFeatures])
	labelName := header[nFeatures]

	var samples []Sample
	row := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dataset.ReadCSV: row %d", row)
		}
		if len(rec) < nFeatures+1 {
			return nil, errors.NewDimensionError("dataset.ReadCSV", nFeatures+1, len(rec), 1)
		}

		features := make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset.ReadCSV: row %d, column %q", row, header[j])
			}
			features[j] = v
		}

		samples = append(samples, Sample{Features: features, Label: rec[nFeatures]})
		row++
	}

	return New(samples, featureNames, labelName)
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// NumFeatures returns the feature dimensionality.
func (d *Dataset) NumFeatures() int { return len(d.samples[0].Features) }

// Sample returns the i-th sample.
func (d *Dataset) Sample(i int) Sample { return d.samples[i] }

// FeatureNames returns the feature column names from the header, if any.
func (d *Dataset) FeatureNames() []string { return d.featureNames }

// LabelName returns the label column name from the header, if any.
func (d *Dataset) LabelName() string { return d.labelName }

// Classes returns the distinct class names in sorted order. The position of
// a name in this slice is its numeric encoding in Matrices.
func (d *Dataset) Classes() []string { return d.classes }

// ClassOf decodes a numeric class code back to its name.
func (d *Dataset) ClassOf(code int) (string, error) {
	if code < 0 || code >= len(d.classes) {
		return "", errors.NewValueError("Dataset.ClassOf", "unknown class code "+strconv.Itoa(code))
	}
	return d.classes[code], nil
}

// Matrices returns the samples as gonum matrices: X is n×d, y is n×1 with
// each label encoded as its index into Classes().
func (d *Dataset) Matrices() (X, y *mat.Dense) {
	n := d.Len()
	p := d.NumFeatures()

	X = mat.NewDense(n, p, nil)
	y = mat.NewDense(n, 1, nil)
	for i, s := range d.samples {
		X.SetRow(i, s.Features)
		y.Set(i, 0, float64(d.classIndex[s.Label]))
	}
	return X, y
}

func (d *Dataset) indexClasses() {
	seen := make(map[string]bool)
	for _, s := range d.samples {
		seen[s.Label] = true
	}

	d.classes = make([]string, 0, len(seen))
	for label := range seen {
		d.classes = append(d.classes, label)
	}
	sort.Strings(d.classes)

	d.classIndex = make(map[string]int, len(d.classes))
	for i, label := range d.classes {
		d.classIndex[label] = i
	}
}
