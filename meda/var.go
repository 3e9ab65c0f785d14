// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meda

import (
	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/proj"
)

// VarPCA sweeps candidate component counts 0..maxLV and returns,
// for each count i, the residual variance fraction left after
// retaining the first i principal components:
//
//	resid[i] = 1 − Σ(top-i eigenvalues) / Σ(all eigenvalues)
//
// The sequence is non-increasing by construction: adding a
// component can never increase the residual.
func VarPCA(m *lmodel.Model, maxLV int) ([]float64, error) {
	if maxLV < 1 || maxLV > m.NVars() {
		return nil, errors.Config("meda: maxLV %d outside 1..%d", maxLV, m.NVars())
	}
	mm := *m
	mm.LVs = seq(maxLV)
	res, err := proj.PCA(&mm)
	if err != nil {
		return nil, err
	}
	return residuals(res, maxLV, false), nil
}

// VarPLS sweeps candidate component counts 0..maxLV and returns,
// for each count i, the residual X-variance fraction left after i
// PLS deflation steps. Deflating XX by tt·p·pᵀ removes tt·‖p‖² of
// trace per step, so the sequence is non-increasing.
func VarPLS(m *lmodel.Model, maxLV int) ([]float64, error) {
	if maxLV < 1 || maxLV > m.NVars() {
		return nil, errors.Config("meda: maxLV %d outside 1..%d", maxLV, m.NVars())
	}
	mm := *m
	mm.LVs = seq(maxLV)
	res, err := proj.PLS(&mm)
	if err != nil {
		return nil, err
	}
	return residuals(res, maxLV, true), nil
}

// residuals turns a full 1..maxLV decomposition into the residual
// variance fractions for 0..maxLV components. For PLS, the variance
// removed at step a is SdT[a]·‖p_a‖²; for PCA it is the eigenvalue
// itself.
func residuals(res *proj.Result, maxLV int, pls bool) []float64 {
	out := make([]float64, maxLV+1)
	out[0] = 1
	cum := 0.0
	for a := 0; a < maxLV; a++ {
		rm := res.SdT[a]
		if pls {
			pp := 0.0
			nv, _ := res.Loads.Dims()
			for i := 0; i < nv; i++ {
				p := res.Loads.At(i, a)
				pp += p * p
			}
			rm *= pp
		}
		cum += rm
		out[a+1] = 1 - cum/res.Var
	}
	return out
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}
