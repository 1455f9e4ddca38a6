package lsa

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

const eigenFloor = 1e-12

var ErrNoConvergence = errors.New("eigendecomposition did not converge")

// SVD is a randomized truncated SVD (Halko, Martinsson, Tropp) over a sparse matrix.
type SVD struct {
	Components  int
	Oversamples int
	Iterations  int
	Seed        int64
}

// Fit returns V (terms x k) and the k largest singular values, largest first.
// k is Components clamped to the smaller matrix dimension.
func (s SVD) Fit(ctx context.Context, x *Sparse) (*mat.Dense, []float64, error) {
	n, m := x.Dims()
	if n == 0 || m == 0 {
		return nil, nil, ErrEmptyMatrix
	}
	k := min(s.Components, n, m)
	l := min(k+s.Oversamples, n, m)

	rng := rand.New(rand.NewSource(s.Seed))
	omega := mat.NewDense(m, l, nil)
	raw := omega.RawMatrix().Data
	for i := range raw {
		raw[i] = rng.NormFloat64()
	}

	q, err := x.Mul(ctx, omega)
	if err != nil {
		return nil, nil, err
	}
	orthonormalize(q)

	for i := 0; i < s.Iterations; i++ {
		z, err := x.MulTrans(q)
		if err != nil {
			return nil, nil, err
		}
		orthonormalize(z)
		if q, err = x.Mul(ctx, z); err != nil {
			return nil, nil, err
		}
		orthonormalize(q)
	}

	// B = Qᵀ X is small (l x m); its right singular vectors come from the eigenpairs of B Bᵀ.
	c, err := x.MulTrans(q)
	if err != nil {
		return nil, nil, err
	}
	var gram mat.SymDense
	gram.SymOuterK(1, c.T())

	var eig mat.EigenSym
	if !eig.Factorize(&gram, true) {
		return nil, nil, ErrNoConvergence
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	scaled := mat.NewDense(l, k, nil)
	sigma := make([]float64, k)
	for j := 0; j < k; j++ {
		src := l - 1 - j // eigenvalues come back ascending
		if values[src] <= eigenFloor {
			continue
		}
		sigma[j] = math.Sqrt(values[src])
		for r := 0; r < l; r++ {
			scaled.Set(r, j, vectors.At(r, src)/sigma[j])
		}
	}

	var v mat.Dense
	v.Mul(c, scaled)
	flipSigns(&v)
	return &v, sigma, nil
}

// orthonormalize runs modified Gram-Schmidt over the columns of d in place.
// Columns that collapse to zero stay zero.
func orthonormalize(d *mat.Dense) {
	rows, cols := d.Dims()
	raw := d.RawMatrix()
	data, stride := raw.Data, raw.Stride

	for j := 0; j < cols; j++ {
		for p := 0; p < j; p++ {
			var dot float64
			for i := 0; i < rows; i++ {
				dot += data[i*stride+j] * data[i*stride+p]
			}
			if dot == 0 {
				continue
			}
			for i := 0; i < rows; i++ {
				data[i*stride+j] -= dot * data[i*stride+p]
			}
		}

		var norm float64
		for i := 0; i < rows; i++ {
			norm += data[i*stride+j] * data[i*stride+j]
		}
		norm = math.Sqrt(norm)
		if norm < eigenFloor {
			for i := 0; i < rows; i++ {
				data[i*stride+j] = 0
			}
			continue
		}
		for i := 0; i < rows; i++ {
			data[i*stride+j] /= norm
		}
	}
}

// flipSigns makes the largest-magnitude entry of every column positive so fits are reproducible.
func flipSigns(d *mat.Dense) {
	rows, cols := d.Dims()
	for j := 0; j < cols; j++ {
		var peak float64
		for i := 0; i < rows; i++ {
			if v := d.At(i, j); math.Abs(v) > math.Abs(peak) {
				peak = v
			}
		}
		if peak >= 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			d.Set(i, j, -d.At(i, j))
		}
	}
}
