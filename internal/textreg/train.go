package textreg

import (
	"math"
	"math/rand"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Training contract constants: 80/20 holdout with a fixed seed, alpha
// chosen by 5-fold cross-validated MAE over a fixed candidate set.
const (
	holdoutFraction = 0.2
	splitSeed       = 42
	cvFolds         = 5
)

// DefaultAlphas is the regularization candidate set searched during training.
var DefaultAlphas = []float64{0.1, 1.0, 10.0, 100.0}

// Example is one labeled training row.
type Example struct {
	Title       string
	VendorName  string
	Description string
	Calories    float64
}

// TrainResult reports the holdout evaluation of a training run.
type TrainResult struct {
	NTrain   int
	Alpha    float64
	TestMAE  float64
	TestRMSE float64
}

// Train fits the vectorizer and ridge regressor on labeled examples and
// evaluates on a seeded 20% holdout. Alphas defaults to DefaultAlphas
// when empty.
func Train(examples []Example, alphas []float64) (*Model, *TrainResult, error) {
	if len(examples) < 5 {
		return nil, nil, eris.Errorf("textreg: need at least 5 labeled rows, have %d", len(examples))
	}
	if len(alphas) == 0 {
		alphas = DefaultAlphas
	}

	texts := make([]string, len(examples))
	y := make([]float64, len(examples))
	for i, ex := range examples {
		texts[i] = BuildText(ex.Title, ex.VendorName, ex.Description)
		y[i] = ex.Calories
	}

	// Seeded shuffle, last fifth held out.
	idx := rand.New(rand.NewSource(splitSeed)).Perm(len(examples))
	nTest := int(math.Round(holdoutFraction * float64(len(examples))))
	if nTest == 0 {
		nTest = 1
	}
	testIdx := idx[len(idx)-nTest:]
	trainIdx := idx[:len(idx)-nTest]

	trainTexts := pick(texts, trainIdx)
	trainY := pickF(y, trainIdx)

	vect := NewVectorizer()
	vect.Fit(trainTexts)
	trainX := vect.Transform(trainTexts)

	alpha := bestAlpha(trainX, trainY, vect.NumFeatures(), alphas)
	reg, err := fitRidge(trainX, trainY, vect.NumFeatures(), alpha)
	if err != nil {
		return nil, nil, err
	}

	testX := vect.Transform(pick(texts, testIdx))
	testY := pickF(y, testIdx)
	preds := reg.Predict(testX)

	res := &TrainResult{
		NTrain:   len(examples),
		Alpha:    alpha,
		TestMAE:  meanAbsError(testY, preds),
		TestRMSE: rootMeanSqError(testY, preds),
	}
	zap.L().Info("textreg: training complete",
		zap.Int("n_train", res.NTrain),
		zap.Float64("alpha", res.Alpha),
		zap.Float64("test_mae", res.TestMAE),
		zap.Float64("test_rmse", res.TestRMSE),
	)
	return &Model{Vectorizer: vect, Regressor: reg}, res, nil
}

// bestAlpha runs k-fold cross validation on the training rows and
// returns the candidate with the lowest mean MAE. Folds are contiguous
// slices of the (already shuffled) training rows.
func bestAlpha(rows []SparseVector, y []float64, nFeatures int, alphas []float64) float64 {
	folds := cvFolds
	if len(rows) < folds {
		folds = len(rows)
	}
	if folds < 2 {
		return alphas[0]
	}

	best := alphas[0]
	bestMAE := math.Inf(1)
	for _, alpha := range alphas {
		var total float64
		var scored int
		for f := 0; f < folds; f++ {
			lo := f * len(rows) / folds
			hi := (f + 1) * len(rows) / folds
			if lo == hi {
				continue
			}
			var trX []SparseVector
			var trY []float64
			for i := range rows {
				if i < lo || i >= hi {
					trX = append(trX, rows[i])
					trY = append(trY, y[i])
				}
			}
			reg, err := fitRidge(trX, trY, nFeatures, alpha)
			if err != nil {
				continue
			}
			preds := reg.Predict(rows[lo:hi])
			total += meanAbsError(y[lo:hi], preds)
			scored++
		}
		if scored == 0 {
			continue
		}
		if mae := total / float64(scored); mae < bestMAE {
			bestMAE = mae
			best = alpha
		}
	}
	return best
}

func pick(src []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func pickF(src []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func meanAbsError(truth, preds []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var s float64
	for i := range truth {
		s += math.Abs(truth[i] - preds[i])
	}
	return s / float64(len(truth))
}

func rootMeanSqError(truth, preds []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var s float64
	for i := range truth {
		d := truth[i] - preds[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(truth)))
}
