// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/RaneemQaddoura/goclassify/pkg/errors"
)

// Accuracy は正解率を計算する
// 予測ラベルと正解ラベルが厳密に一致したサンプルの割合を返す
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	// Accuracy = (1/n) * Σ[yTrue == yPred]
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は行列形式の入力に対して正解率を計算する
// 複数列の行列が渡された場合は最初の列を使用する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, yPredVec, err := columnVectors("AccuracyMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(yTrueVec, yPredVec)
}

// ClassificationError は誤分類率（1 - accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AUC はROC曲線下面積を計算する
// ラベルは0/1の二値である必要がある
// 片方のクラスしか存在しない場合は未定義となり、警告を出して0.5を返す
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "empty vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}
	nNeg := n - nPos

	// 片方のクラスしか存在しない場合は未定義
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// Mann-Whitney U統計量による計算（同順位は平均ランク）
	type scored struct {
		pred  float64
		label float64
	}
	items := make([]scored, n)
	for i := 0; i < n; i++ {
		items[i] = scored{pred: yPred.AtVec(i), label: yTrue.AtVec(i)}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pred < items[j].pred })

	var rankSumPos float64
	i := 0
	for i < n {
		j := i
		for j < n && items[j].pred == items[i].pred {
			j++
		}
		// [i, j) は同一スコア、平均ランクを割り当てる
		avgRank := float64(i+j+1) / 2 // 1-based
		for k := i; k < j; k++ {
			if items[k].label == 1 {
				rankSumPos += avgRank
			}
		}
		i = j
	}

	auc := (rankSumPos - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
	return auc, nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する
// 複数列の行列が渡された場合は最初の列を使用する
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	yTrueVec, yPredVec, err := columnVectors("AUCMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return AUC(yTrueVec, yPredVec)
}

// BinaryLogLoss は二値分類の交差エントロピー損失を計算する
// 予測確率はlog(0)を避けるためにepsilonでクリップされる
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	const eps = 1e-15

	var sum float64
	for i := 0; i < n; i++ {
		label := yTrue.AtVec(i)
		if label != 0 && label != 1 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}

		p := yPred.AtVec(i)
		if p < eps {
			p = eps
		} else if p > 1-eps {
			p = 1 - eps
		}

		if label == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}

	return sum / float64(n), nil
}

// columnVectors は行列入力を検証し、最初の列をVecDenseに変換する
func columnVectors(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if yTrue == nil || yPred == nil {
		return nil, nil, errors.NewValueError(op, "nil matrix")
	}

	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 || rPred == 0 || cPred == 0 {
		return nil, nil, errors.NewValueError(op, "empty matrix")
	}

	if rTrue != rPred {
		return nil, nil, errors.NewDimensionError(op, rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rPred, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}
	return yTrueVec, yPredVec, nil
}
