// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proj derives latent-variable decompositions (PCA, PLS)
// from the compressed cross-products and centroids of an
// lmodel.Model, without touching raw data. Decompositions are
// always recomputed fresh from the current cross-products; there is
// no incremental eigen update.
package proj

import (
	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"gonum.org/v1/gonum/mat"
)

// Result holds the outputs of one decomposition. It is derived,
// ephemeral state: recompute it after every model update.
type Result struct {
	// Type is the decomposition that produced this result.
	Type lmodel.DecompType

	// LVs are the 1-based latent-variable indices selected, in
	// request order.
	LVs []int

	// Loads is the M x A matrix of X-loadings (P), one column per
	// selected component. The sign of each column is arbitrary.
	Loads *mat.Dense

	// Scores is the C x A projection of the centroids onto the
	// selected components (nil when the model has no centroids).
	Scores *mat.Dense

	// SdT holds, per selected component, the score sum of squares:
	// the eigenvalue for PCA, tᵀt for PLS.
	SdT []float64

	// Var is the total variance, the sum of all eigenvalues of XX.
	Var float64

	// Weights is the M x A matrix of PLS weights (W). Nil for PCA.
	Weights *mat.Dense

	// AltWeights is the M x A matrix R = W(PᵀW)⁻¹ of PLS weights
	// usable directly against raw, non-deflated data or
	// cross-products. Nil for PCA.
	AltWeights *mat.Dense

	// YLoads is the L x A matrix of PLS Y-loadings (Q). Nil for PCA.
	YLoads *mat.Dense
}

// A returns the number of selected components.
func (r *Result) A() int { return len(r.LVs) }

// Projection returns the M x M matrix R·Pᵀ mapping a preprocessed
// row onto its model reconstruction. For PCA, R = P.
func (r *Result) Projection() *mat.Dense {
	w := r.AltWeights
	if w == nil {
		w = r.Loads
	}
	m, _ := w.Dims()
	out := mat.NewDense(m, m, nil)
	out.Mul(w, r.Loads.T())
	return out
}

// checkLVs validates the requested component indices against the
// number of extractable components.
func checkLVs(lvs []int, max int) error {
	if len(lvs) == 0 {
		return errors.Config("proj: no latent variables requested")
	}
	for _, lv := range lvs {
		if lv < 1 {
			return errors.Config("proj: latent variable index %d must be >= 1", lv)
		}
		if lv > max {
			return errors.Config("proj: latent variable index %d exceeds %d extractable components", lv, max)
		}
	}
	return nil
}

// maxLV returns the largest requested component index.
func maxLV(lvs []int) int {
	mx := 0
	for _, lv := range lvs {
		if lv > mx {
			mx = lv
		}
	}
	return mx
}
