// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meda

import (
	"math"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/proj"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MSPCStats holds multivariate statistical process control
// statistics per centroid, with control limits estimated from the
// model itself.
type MSPCStats struct {
	// D is the D-statistic (Hotelling T²) of each centroid in the
	// latent subspace.
	D []float64

	// Q is the Q-statistic (squared residual norm) of each centroid
	// outside the latent subspace.
	Q []float64

	// DLimit is the upper control limit for D at the requested
	// confidence level, from the F distribution.
	DLimit float64

	// QLimit is the upper control limit for Q, from chi-squared
	// moment matching on the multiplicity-weighted residuals.
	QLimit float64
}

// MSPC computes D and Q statistics for every centroid of the model
// under the given decomposition, with control limits at confidence
// level 1-alpha. The model must hold more observation weight than
// selected components for the D limit to exist.
func MSPC(m *lmodel.Model, res *proj.Result, alpha float64) (*MSPCStats, error) {
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, errors.Config("meda: alpha %g outside (0, 1)", alpha)
	}
	cs := m.Centroids
	if cs.Len() == 0 {
		return nil, errors.Config("meda: model has no centroids")
	}
	if res.Scores == nil {
		return nil, errors.Config("meda: decomposition has no scores")
	}
	a := res.A()
	n := m.N
	if n <= float64(a)+1 {
		return nil, errors.Config("meda: observation weight %g too small for %d components", n, a)
	}

	st := &MSPCStats{
		D: make([]float64, cs.Len()),
		Q: make([]float64, cs.Len()),
	}

	// D-statistic: scores normalized by per-component score
	// variance SdT/(N-1).
	for c := 0; c < cs.Len(); c++ {
		d := 0.0
		for j := 0; j < a; j++ {
			t := res.Scores.At(c, j)
			if res.SdT[j] > 0 {
				d += t * t / (res.SdT[j] / (n - 1))
			}
		}
		st.D[c] = d
	}

	// Q-statistic: squared residual of each centroid row after
	// model reconstruction.
	pr := res.Projection()
	nv := m.NVars()
	row := mat.NewVecDense(nv, nil)
	rec := mat.NewVecDense(nv, nil)
	for c := 0; c < cs.Len(); c++ {
		copy(row.RawVector().Data, cs.Center(c))
		rec.MulVec(pr.T(), row)
		q := 0.0
		for j := 0; j < nv; j++ {
			e := row.AtVec(j) - rec.AtVec(j)
			q += e * e
		}
		st.Q[c] = q
	}

	fa := float64(a)
	fdist := distuv.F{D1: fa, D2: n - fa}
	st.DLimit = fa * (n - 1) * (n + 1) / (n * (n - fa)) * fdist.Quantile(1-alpha)

	// Nomikos-MacGregor moment matching for the Q limit, on the
	// multiplicity-weighted residuals.
	mean, vr := 0.0, 0.0
	for c := 0; c < cs.Len(); c++ {
		mean += cs.Mult[c] * st.Q[c]
	}
	mean /= n
	for c := 0; c < cs.Len(); c++ {
		d := st.Q[c] - mean
		vr += cs.Mult[c] * d * d
	}
	vr /= n
	if vr > 0 && mean > 0 {
		g := vr / (2 * mean)
		h := 2 * mean * mean / vr
		chi := distuv.ChiSquared{K: h}
		st.QLimit = g * chi.Quantile(1-alpha)
	} else {
		st.QLimit = mean
	}
	if math.IsNaN(st.QLimit) {
		st.QLimit = mean
	}
	return st, nil
}
