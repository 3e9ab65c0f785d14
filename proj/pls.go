// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proj

import (
	"math"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/matrix"
	"gonum.org/v1/gonum/mat"
)

// plsTol is the relative tolerance below which a deflated score sum
// of squares is treated as numerically zero, aborting extraction.
const plsTol = 1e-12

// PLS computes a SIMPLS-style partial least squares decomposition
// directly on the model's XX, XY and YY cross-products, never on
// raw data. Components are extracted by deflation up to the largest
// requested index, then the model's LVs select from the full
// sequence:
//
//	w = dominant left singular direction of the deflated XY
//	tt = wᵀ XX w,  p = XX w / tt,  q = XYᵀ w / tt
//	XX -= tt p pᵀ,  XY -= tt p qᵀ
//
// AltWeights R = W(PᵀW)⁻¹ applies against the raw, non-deflated
// cross-products (T = X R), and centroid scores are Centers·R.
// A singular deflation or an exhausted covariance structure returns
// an [errors.ErrNumeric] rather than degenerate zero components.
func PLS(m *lmodel.Model) (*Result, error) {
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	if !m.HasY() {
		return nil, errors.Config("proj: PLS requires a model with a Y-block")
	}
	nv := m.NVars()
	if err := checkLVs(m.LVs, nv); err != nil {
		return nil, err
	}
	amax := maxLV(m.LVs)

	e := mat.DenseCopyOf(m.XX)
	f := mat.DenseCopyOf(m.XY)
	totvar := matrix.Trace(m.XX)

	ws := mat.NewDense(nv, amax, nil)
	ps := mat.NewDense(nv, amax, nil)
	_, ny := m.XY.Dims()
	qs := mat.NewDense(ny, amax, nil)
	tts := make([]float64, amax)

	ew := mat.NewVecDense(nv, nil)
	for a := 0; a < amax; a++ {
		w, err := matrix.DominantLeft(f)
		if err != nil {
			return nil, errors.Numeric("proj: PLS component %d: %v", a+1, err)
		}
		wv := mat.NewVecDense(nv, w)
		ew.MulVec(e, wv)
		tt := mat.Dot(wv, ew)
		if tt <= plsTol*totvar || math.IsNaN(tt) {
			return nil, errors.Numeric("proj: PLS component %d: deflated covariance exhausted", a+1)
		}
		p := mat.NewVecDense(nv, nil)
		p.ScaleVec(1/tt, ew)
		q := mat.NewVecDense(ny, nil)
		q.MulVec(f.T(), wv)
		q.ScaleVec(1/tt, q)

		var pp, pq mat.Dense
		pp.Outer(tt, p, p)
		e.Sub(e, &pp)
		pq.Outer(tt, p, q)
		f.Sub(f, &pq)

		ws.SetCol(a, w)
		ps.SetCol(a, vecData(p))
		qs.SetCol(a, vecData(q))
		tts[a] = tt
	}

	// R = W (PᵀW)⁻¹, solved rather than inverted; PᵀW is upper
	// triangular by construction.
	var pw mat.Dense
	pw.Mul(ps.T(), ws)
	var pwinv mat.Dense
	if err := pwinv.Solve(&pw, eye(amax)); err != nil {
		return nil, errors.Numeric("proj: PLS weights matrix is singular: %v", err)
	}
	rall := mat.NewDense(nv, amax, nil)
	rall.Mul(ws, &pwinv)

	a := len(m.LVs)
	res := &Result{
		Type:       lmodel.DecompPLS,
		LVs:        append([]int(nil), m.LVs...),
		Var:        totvar,
		SdT:        make([]float64, a),
		Loads:      mat.NewDense(nv, a, nil),
		Weights:    mat.NewDense(nv, a, nil),
		AltWeights: mat.NewDense(nv, a, nil),
		YLoads:     mat.NewDense(ny, a, nil),
	}
	for j, lv := range m.LVs {
		res.SdT[j] = tts[lv-1]
		for i := 0; i < nv; i++ {
			res.Loads.Set(i, j, ps.At(i, lv-1))
			res.Weights.Set(i, j, ws.At(i, lv-1))
			res.AltWeights.Set(i, j, rall.At(i, lv-1))
		}
		for i := 0; i < ny; i++ {
			res.YLoads.Set(i, j, qs.At(i, lv-1))
		}
	}
	if cm := m.Centroids.Matrix(); cm != nil {
		var sc mat.Dense
		sc.Mul(cm, res.AltWeights)
		res.Scores = &sc
	}
	m.Type = lmodel.DecompPLS
	return res, nil
}

// Beta returns the M x L regression coefficient matrix R·Qᵀ mapping
// preprocessed X rows to predicted preprocessed Y rows. Only valid
// for a PLS result.
func (r *Result) Beta() (*mat.Dense, error) {
	if r.Type != lmodel.DecompPLS || r.AltWeights == nil || r.YLoads == nil {
		return nil, errors.Config("proj: Beta requires a PLS result")
	}
	nv, _ := r.AltWeights.Dims()
	ny, _ := r.YLoads.Dims()
	b := mat.NewDense(nv, ny, nil)
	b.Mul(r.AltWeights, r.YLoads.T())
	return b, nil
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

func eye(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}
