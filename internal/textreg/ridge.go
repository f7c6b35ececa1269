package textreg

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
)

// Ridge is a fitted L2-regularized linear regressor over the TF-IDF
// feature space. Weights and intercept are the persisted learned state.
type Ridge struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Alpha     float64   `json:"alpha"`
}

// fitRidge solves the centered normal equations
// (Xc'Xc + alpha*I) w = Xc'yc via Cholesky. The intercept absorbs the
// feature and target means, matching the usual fit-intercept behavior.
func fitRidge(rows []SparseVector, y []float64, nFeatures int, alpha float64) (*Ridge, error) {
	n := len(rows)
	if n == 0 || nFeatures == 0 {
		return nil, eris.New("textreg: nothing to fit")
	}

	xMean := make([]float64, nFeatures)
	for _, row := range rows {
		for idx, w := range row {
			xMean[idx] += w
		}
	}
	for i := range xMean {
		xMean[i] /= float64(n)
	}
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	// Dense centered design matrix. Training sets here are small
	// (hundreds of labeled rows), so the dense Gram matrix is fine.
	x := mat.NewDense(n, nFeatures, nil)
	for i, row := range rows {
		for j := 0; j < nFeatures; j++ {
			x.Set(i, j, row[j]-xMean[j])
		}
	}

	gram := mat.NewSymDense(nFeatures, nil)
	for i := 0; i < nFeatures; i++ {
		for j := i; j < nFeatures; j++ {
			var s float64
			for r := 0; r < n; r++ {
				s += x.At(r, i) * x.At(r, j)
			}
			if i == j {
				s += alpha
			}
			gram.SetSym(i, j, s)
		}
	}

	b := mat.NewVecDense(nFeatures, nil)
	for j := 0; j < nFeatures; j++ {
		var s float64
		for r := 0; r < n; r++ {
			s += x.At(r, j) * (y[r] - yMean)
		}
		b.SetVec(j, s)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return nil, eris.New("textreg: gram matrix not positive definite")
	}
	var w mat.VecDense
	if err := chol.SolveVecTo(&w, b); err != nil {
		return nil, eris.Wrap(err, "textreg: solve ridge system")
	}

	weights := make([]float64, nFeatures)
	intercept := yMean
	for j := 0; j < nFeatures; j++ {
		weights[j] = w.AtVec(j)
		intercept -= weights[j] * xMean[j]
	}
	return &Ridge{Weights: weights, Intercept: intercept, Alpha: alpha}, nil
}

// Predict applies the linear model to TF-IDF rows.
func (r *Ridge) Predict(rows []SparseVector) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		p := r.Intercept
		for idx, w := range row {
			if idx < len(r.Weights) {
				p += r.Weights[idx] * w
			}
		}
		out[i] = p
	}
	return out
}
