// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meda

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/base/tolassert"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/proj"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// corrModel builds a model over 4 correlated variables from a
// deterministic pseudo-random block.
func corrModel(t *testing.T, lvs []int, withY bool) *lmodel.Model {
	rng := rand.New(rand.NewSource(21))
	n := 40
	x := mat.NewDense(n, 4, nil)
	var y *mat.Dense
	if withY {
		y = mat.NewDense(n, 1, nil)
	}
	for i := 0; i < n; i++ {
		f := rng.NormFloat64()
		x.Set(i, 0, f+0.1*rng.NormFloat64())
		x.Set(i, 1, f+0.1*rng.NormFloat64())
		x.Set(i, 2, -f+0.1*rng.NormFloat64())
		x.Set(i, 3, rng.NormFloat64())
		if withY {
			y.Set(i, 0, 2*f+0.05*rng.NormFloat64())
		}
	}
	opts := &lmodel.Options{}
	opts.Defaults()
	opts.Preprocessing = 2 // autoscale
	opts.MaxClusters = 15
	opts.Threshold = 1.0
	opts.LVs = lvs
	b := &lmodel.DataBlock{X: x, Y: y}
	m, err := lmodel.New(opts, b)
	assert.NoError(t, err)
	return m
}

func TestVarPCAMonotone(t *testing.T) {
	m := corrModel(t, []int{1, 2}, false)
	resid, err := VarPCA(m, 4)
	assert.NoError(t, err)
	assert.Len(t, resid, 5)
	tolassert.Equal(t, 1, resid[0])
	for i := 1; i < len(resid); i++ {
		assert.LessOrEqual(t, resid[i], resid[i-1]+1.0e-12)
	}
	// all components capture everything
	tolassert.EqualTol(t, 0, resid[4], 1.0e-9)
}

func TestVarPLSMonotone(t *testing.T) {
	m := corrModel(t, []int{1, 2}, true)
	resid, err := VarPLS(m, 3)
	assert.NoError(t, err)
	assert.Len(t, resid, 4)
	tolassert.Equal(t, 1, resid[0])
	for i := 1; i < len(resid); i++ {
		assert.LessOrEqual(t, resid[i], resid[i-1]+1.0e-12)
	}
}

func TestLeverages(t *testing.T) {
	m := corrModel(t, []int{1, 2}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	lev := Leverages(res)
	assert.Len(t, lev, 4)
	sum := 0.0
	for _, l := range lev {
		assert.GreaterOrEqual(t, l, 0.0)
		assert.LessOrEqual(t, l, 1.0+1.0e-12)
		sum += l
	}
	// orthonormal loadings: leverages sum to the component count
	tolassert.EqualTol(t, 2, sum, 1.0e-9)
}

func TestMEDAFullComponentsIsSquaredCorrelation(t *testing.T) {
	m := corrModel(t, []int{1, 2, 3, 4}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	mm, err := MEDA(m, res)
	assert.NoError(t, err)

	// with all components, R·Pᵀ = I and the map reduces to the
	// squared correlation of XX
	for i := 0; i < 4; i++ {
		tolassert.EqualTol(t, 1, mm.At(i, i), 1.0e-9)
		for j := 0; j < 4; j++ {
			want := m.XX.At(i, j) * m.XX.At(i, j) / (m.XX.At(i, i) * m.XX.At(j, j))
			tolassert.EqualTol(t, want, mm.At(i, j), 1.0e-9)
			assert.LessOrEqual(t, mm.At(i, j), 1.0+1.0e-9)
		}
	}
}

func TestMEDAStructure(t *testing.T) {
	m := corrModel(t, []int{1}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	mm, err := MEDA(m, res)
	assert.NoError(t, err)

	// variables 0 and 1 share a factor; variable 3 is noise
	assert.Greater(t, mm.At(0, 1), mm.At(0, 3))
	assert.Greater(t, mm.At(0, 2), mm.At(0, 3))
}

func TestOMEDA(t *testing.T) {
	m := corrModel(t, []int{1, 2}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)

	zero := make([]float64, m.Centroids.Len())
	out, err := OMEDA(m, res, zero)
	assert.NoError(t, err)
	tolassert.EqualTolSlice(t, make([]float64, 4), out, 1.0e-12)

	dummy := make([]float64, m.Centroids.Len())
	for i := range dummy {
		if i%2 == 0 {
			dummy[i] = 1
		} else {
			dummy[i] = -1
		}
	}
	out, err = OMEDA(m, res, dummy)
	assert.NoError(t, err)
	assert.Len(t, out, 4)

	_, err = OMEDA(m, res, []float64{1})
	assert.ErrorIs(t, err, errors.ErrDimension)
}

func TestMSPC(t *testing.T) {
	m := corrModel(t, []int{1, 2}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	st, err := MSPC(m, res, 0.05)
	assert.NoError(t, err)
	assert.Len(t, st.D, m.Centroids.Len())
	assert.Len(t, st.Q, m.Centroids.Len())
	for i := range st.D {
		assert.GreaterOrEqual(t, st.D[i], 0.0)
		assert.GreaterOrEqual(t, st.Q[i], 0.0)
	}
	assert.Greater(t, st.DLimit, 0.0)
	assert.GreaterOrEqual(t, st.QLimit, 0.0)
	assert.False(t, math.IsNaN(st.DLimit))
	assert.False(t, math.IsNaN(st.QLimit))
}

func TestMSPCFullComponentsZeroResidual(t *testing.T) {
	m := corrModel(t, []int{1, 2, 3, 4}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	st, err := MSPC(m, res, 0.01)
	assert.NoError(t, err)
	for i := range st.Q {
		tolassert.EqualTol(t, 0, st.Q[i], 1.0e-9)
	}
}

func TestMSPCErrors(t *testing.T) {
	m := corrModel(t, []int{1, 2}, false)
	res, err := proj.PCA(m)
	assert.NoError(t, err)
	_, err = MSPC(m, res, 0)
	assert.ErrorIs(t, err, errors.ErrConfig)
	_, err = MSPC(m, res, 1)
	assert.ErrorIs(t, err, errors.ErrConfig)
}
