package lsa

import (
	"context"
	"errors"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var ErrEmptyMatrix = errors.New("empty matrix")

// Row is one sparse matrix row. Cols is sorted ascending.
type Row struct {
	Cols   []int
	Values []float64
}

func (r Row) Norm() float64 {
	var sum float64
	for _, v := range r.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize scales the row to unit length in place. Zero rows stay zero.
func (r Row) Normalize() {
	norm := r.Norm()
	if norm == 0 {
		return
	}
	for i := range r.Values {
		r.Values[i] /= norm
	}
}

// Sparse is a row-compressed documents x terms matrix.
type Sparse struct {
	Rows []Row
	Cols int
}

func (s *Sparse) Dims() (int, int) {
	return len(s.Rows), s.Cols
}

// Mul returns s · d, with d of shape Cols x k.
func (s *Sparse) Mul(ctx context.Context, d *mat.Dense) (*mat.Dense, error) {
	_, k := d.Dims()
	if len(s.Rows) == 0 || s.Cols == 0 {
		return nil, ErrEmptyMatrix
	}
	out := mat.NewDense(len(s.Rows), k, nil)
	raw := out.RawMatrix()
	src := d.RawMatrix()

	g, ctx := errgroup.WithContext(ctx)
	workers := runtime.NumCPU()
	chunk := (len(s.Rows) + workers - 1) / workers
	for start := 0; start < len(s.Rows); start += chunk {
		end := min(start+chunk, len(s.Rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%1024 == 0 && ctx.Err() != nil {
					return ctx.Err()
				}
				dst := raw.Data[i*raw.Stride : i*raw.Stride+k]
				row := s.Rows[i]
				for j, col := range row.Cols {
					val := row.Values[j]
					from := src.Data[col*src.Stride : col*src.Stride+k]
					for c := range dst {
						dst[c] += val * from[c]
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MulTrans returns sᵀ · d, with d of shape len(Rows) x k.
func (s *Sparse) MulTrans(d *mat.Dense) (*mat.Dense, error) {
	_, k := d.Dims()
	if len(s.Rows) == 0 || s.Cols == 0 {
		return nil, ErrEmptyMatrix
	}
	out := mat.NewDense(s.Cols, k, nil)
	raw := out.RawMatrix()
	src := d.RawMatrix()
	for i, row := range s.Rows {
		from := src.Data[i*src.Stride : i*src.Stride+k]
		for j, col := range row.Cols {
			val := row.Values[j]
			dst := raw.Data[col*raw.Stride : col*raw.Stride+k]
			for c := range dst {
				dst[c] += val * from[c]
			}
		}
	}
	return out, nil
}
