// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matrix provides symmetric eigen decomposition helpers
// over gonum matrices, used by the projection engine.
package matrix

import (
	"math"
	"sort"

	"github.com/mvdatools/bigeda/base/errors"
	"gonum.org/v1/gonum/mat"
)

// SymFromDense copies the square matrix a into a symmetric matrix,
// averaging a with its transpose so that accumulated floating-point
// asymmetry in a cross-product does not leak into the decomposition.
// It returns an [errors.ErrDimension] if a is not square.
func SymFromDense(a *mat.Dense) (*mat.SymDense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, errors.Dimension("matrix: %d x %d matrix is not square", r, c)
	}
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	return s, nil
}

// EigSym performs the eigen decomposition of the given symmetric
// square matrix, which produces real-valued results. When the input
// is a cross-product or covariance matrix, this is known as
// Principal Components Analysis (PCA).
// Each eigenvector is a column in the returned 2D square matrix,
// ordered *highest* to *lowest* across the columns, i.e., the
// maximum eigenvector is the first column, with the values ordered
// in alignment with the vectors. The sign of each eigenvector is
// arbitrary and callers must not depend on it.
func EigSym(a mat.Symmetric) (vecs *mat.Dense, vals []float64, err error) {
	n := a.SymmetricDim()
	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return nil, nil, errors.Numeric("matrix: mat.EigenSym Factorize failed")
	}
	var ev mat.Dense
	eig.VectorsTo(&ev)
	raw := eig.Values(nil)

	// gonum returns eigenvalues ascending; flip to descending.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return raw[idx[i]] > raw[idx[j]] })

	vecs = mat.NewDense(n, n, nil)
	vals = make([]float64, n)
	for j, k := range idx {
		vals[j] = raw[k]
		for i := 0; i < n; i++ {
			vecs.Set(i, j, ev.At(i, k))
		}
	}
	return vecs, vals, nil
}

// Trace returns the sum of the diagonal elements of the square
// matrix a, which for a cross-product matrix equals the sum of all
// of its eigenvalues (the total variance).
func Trace(a *mat.Dense) float64 {
	r, c := a.Dims()
	n := min(r, c)
	tr := 0.0
	for i := 0; i < n; i++ {
		tr += a.At(i, i)
	}
	return tr
}

// DominantLeft returns the dominant left singular vector of the
// given r x c matrix, normalized to unit length. The decomposition
// is performed on the smaller of the two Gram matrices, so a tall
// thin matrix (the typical X-Y cross-product) stays cheap.
// It returns an [errors.ErrNumeric] if a is numerically zero.
func DominantLeft(a *mat.Dense) ([]float64, error) {
	r, c := a.Dims()
	w := make([]float64, r)
	if c == 1 {
		nrm := 0.0
		for i := 0; i < r; i++ {
			w[i] = a.At(i, 0)
			nrm += w[i] * w[i]
		}
		nrm = math.Sqrt(nrm)
		if nrm == 0 || math.IsNaN(nrm) {
			return nil, errors.Numeric("matrix: zero column in DominantLeft")
		}
		for i := range w {
			w[i] /= nrm
		}
		return w, nil
	}

	// Gram matrix on the smaller side: aᵀa is c x c.
	var gram mat.Dense
	gram.Mul(a.T(), a)
	gs, err := SymFromDense(&gram)
	if err != nil {
		return nil, err
	}
	vecs, vals, err := EigSym(gs)
	if err != nil {
		return nil, err
	}
	if vals[0] <= 0 || math.IsNaN(vals[0]) {
		return nil, errors.Numeric("matrix: no dominant direction in DominantLeft")
	}
	v := mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		v.SetVec(i, vecs.At(i, 0))
	}
	wv := mat.NewVecDense(r, w)
	wv.MulVec(a, v)
	nrm := mat.Norm(wv, 2)
	if nrm == 0 || math.IsNaN(nrm) {
		return nil, errors.Numeric("matrix: zero dominant direction in DominantLeft")
	}
	for i := range w {
		w[i] /= nrm
	}
	return w, nil
}
