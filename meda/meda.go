// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package meda computes exploratory diagnostics from a model and
// its decomposition: MEDA covariance-structure maps, oMEDA
// discriminant contributions, MSPC monitoring statistics and
// variable leverages. All functions here are pure functions of the
// projection outputs and the model cross-products; they hold no
// state of their own.
package meda

import (
	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/proj"
	"gonum.org/v1/gonum/mat"
)

// Leverages returns diag(P·Pᵀ): one scalar per variable measuring
// its influence on the retained components. With orthonormal
// loadings the leverages sum to the number of components.
func Leverages(res *proj.Result) []float64 {
	nv, na := res.Loads.Dims()
	lev := make([]float64, nv)
	for i := 0; i < nv; i++ {
		s := 0.0
		for j := 0; j < na; j++ {
			p := res.Loads.At(i, j)
			s += p * p
		}
		lev[i] = s
	}
	return lev
}

// MEDA returns the M x M missing-data-based structure map: entry
// (i, j) is the squared reconstructed covariance between variables
// i and j, normalized by their raw variances,
//
//	meda[i,j] = (XX·R·Pᵀ)²[i,j] / (XX[i,i]·XX[j,j])
//
// so that strongly related variables approach 1 and unrelated ones
// approach 0. Variables with zero variance yield zero entries.
func MEDA(m *lmodel.Model, res *proj.Result) (*mat.Dense, error) {
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	nv := m.NVars()
	if lr, _ := res.Loads.Dims(); lr != nv {
		return nil, errors.Dimension("meda: result has %d variables, model has %d", lr, nv)
	}
	var shat mat.Dense
	shat.Mul(m.XX, res.Projection())
	out := mat.NewDense(nv, nv, nil)
	for i := 0; i < nv; i++ {
		di := m.XX.At(i, i)
		for j := 0; j < nv; j++ {
			dj := m.XX.At(j, j)
			if di <= 0 || dj <= 0 {
				continue
			}
			v := shat.At(i, j)
			out.Set(i, j, v*v/(di*dj))
		}
	}
	return out, nil
}

// OMEDA returns the observation-based MEDA vector: the per-variable
// contribution to the discrepancy selected by the dummy vector d,
// one entry per centroid (positive for one group, negative for the
// other, zero to ignore). Centroid rows are weighted by their
// multiplicities, so each folded original observation counts once:
//
//	x_d = Centersᵀ(d ∘ mult),  x̂_d = P Rᵀ x_d
//	omeda[j] = 2·x_d[j]·x̂_d[j] − x̂_d[j]²
func OMEDA(m *lmodel.Model, res *proj.Result, dummy []float64) ([]float64, error) {
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	cs := m.Centroids
	if len(dummy) != cs.Len() {
		return nil, errors.Dimension("meda: dummy has %d entries, model has %d centroids", len(dummy), cs.Len())
	}
	nv := m.NVars()
	xd := make([]float64, nv)
	for c := 0; c < cs.Len(); c++ {
		w := dummy[c] * cs.Mult[c]
		if w == 0 {
			continue
		}
		row := cs.Center(c)
		for j := 0; j < nv; j++ {
			xd[j] += w * row[j]
		}
	}
	xdv := mat.NewVecDense(nv, xd)
	xhat := mat.NewVecDense(nv, nil)
	xhat.MulVec(res.Projection().T(), xdv)
	out := make([]float64, nv)
	for j := 0; j < nv; j++ {
		out[j] = 2*xd[j]*xhat.AtVec(j) - xhat.AtVec(j)*xhat.AtVec(j)
	}
	return out, nil
}
