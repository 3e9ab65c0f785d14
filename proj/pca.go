// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proj

import (
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/matrix"
	"gonum.org/v1/gonum/mat"
)

// PCA eigen-decomposes the model's XX cross-product and selects the
// components requested by the model's LVs, which may be arbitrary
// (non-contiguous) indices into the eigenvalue-descending order.
// Scores are the centroids projected onto the selected loadings.
// The model's decomposition tag is set to PCA; the model is
// otherwise unchanged. Eigenvector signs are arbitrary.
func PCA(m *lmodel.Model) (*Result, error) {
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	if err := checkLVs(m.LVs, m.NVars()); err != nil {
		return nil, err
	}
	sym, err := matrix.SymFromDense(m.XX)
	if err != nil {
		return nil, err
	}
	vecs, vals, err := matrix.EigSym(sym)
	if err != nil {
		return nil, err
	}
	nv := m.NVars()
	a := len(m.LVs)
	res := &Result{
		Type: lmodel.DecompPCA,
		LVs:  append([]int(nil), m.LVs...),
		SdT:  make([]float64, a),
	}
	for _, v := range vals {
		res.Var += v
	}
	res.Loads = mat.NewDense(nv, a, nil)
	for j, lv := range m.LVs {
		res.SdT[j] = vals[lv-1]
		for i := 0; i < nv; i++ {
			res.Loads.Set(i, j, vecs.At(i, lv-1))
		}
	}
	if cm := m.Centroids.Matrix(); cm != nil {
		var sc mat.Dense
		sc.Mul(cm, res.Loads)
		res.Scores = &sc
	}
	m.Type = lmodel.DecompPCA
	return res, nil
}
