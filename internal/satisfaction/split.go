package satisfaction

import "math/rand"

// TrainTestSplit splits X, y into train and test sets by ratio using a
// seeded permutation so training runs are reproducible.
func TrainTestSplit(X [][]float64, y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, yTrain, yTest []float64) {
	n := len(X)
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			yTest = append(yTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return
}

// KFold assigns row indices to k folds from a seeded permutation.
func KFold(n, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)
	folds := make([][]int, k)
	for i, idx := range indices {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}

// CrossValidateR2 computes the per-fold hold-out R² of an OLS fit over the
// full standardized dataset. Folds too small to score are skipped.
func CrossValidateR2(X [][]float64, y []float64, k int, seed int64) (scores []float64, err error) {
	folds := KFold(len(X), k, seed)
	for _, fold := range folds {
		if len(fold) == 0 {
			continue
		}
		inFold := make(map[int]bool, len(fold))
		for _, idx := range fold {
			inFold[idx] = true
		}

		var XTrain, XTest [][]float64
		var yTrain, yTest []float64
		for i := range X {
			if inFold[i] {
				XTest = append(XTest, X[i])
				yTest = append(yTest, y[i])
			} else {
				XTrain = append(XTrain, X[i])
				yTrain = append(yTrain, y[i])
			}
		}

		model, fitErr := FitOLS(XTrain, yTrain)
		if fitErr != nil {
			return nil, fitErr
		}
		scores = append(scores, R2(yTest, model.PredictAll(XTest)))
	}
	return scores, nil
}
