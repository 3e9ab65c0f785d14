// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lmodel

import (
	"gonum.org/v1/gonum/mat"
)

// accumulate adds the contribution of a preprocessed block to the
// exact cross-products: XX += xᵀx, and when a Y-block is modeled,
// XY += xᵀy and YY += yᵀy, with N incremented by the block row
// count. Accumulation is order-independent: absorbing two disjoint
// blocks in either order yields the same cross-products up to
// floating-point roundoff. Shapes must have been validated by the
// caller.
func (m *Model) accumulate(x, y *mat.Dense) {
	var xx mat.Dense
	xx.Mul(x.T(), x)
	m.XX.Add(m.XX, &xx)
	if m.XY != nil && y != nil {
		var xy, yy mat.Dense
		xy.Mul(x.T(), y)
		m.XY.Add(m.XY, &xy)
		yy.Mul(y.T(), y)
		m.YY.Add(m.YY, &yy)
	}
	n, _ := x.Dims()
	m.N += float64(n)
}

// decumulate removes the contribution of a previously absorbed
// preprocessed block from the cross-products, the inverse of
// accumulate. The centroid set is an irreversible summary and is
// not touched.
func (m *Model) decumulate(x, y *mat.Dense) {
	var xx mat.Dense
	xx.Mul(x.T(), x)
	m.XX.Sub(m.XX, &xx)
	if m.XY != nil && y != nil {
		var xy, yy mat.Dense
		xy.Mul(x.T(), y)
		m.XY.Sub(m.XY, &xy)
		yy.Mul(y.T(), y)
		m.YY.Sub(m.YY, &yy)
	}
	n, _ := x.Dims()
	m.N -= float64(n)
}

// scale multiplies the cross-products and observation weight by the
// given forgetting factor, ahead of an EWMA merge.
func (m *Model) scale(lambda float64) {
	m.XX.Scale(lambda, m.XX)
	if m.XY != nil {
		m.XY.Scale(lambda, m.XY)
		m.YY.Scale(lambda, m.YY)
	}
	m.N *= lambda
}
