// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proj

import (
	"math"
	"testing"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/base/tolassert"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// plsModel builds a 2-variable model whose Y is an exact linear
// function of X: y = x1 - 2·x2.
func plsModel(t *testing.T, lvs []int) *lmodel.Model {
	x := mat.NewDense(6, 2, []float64{
		1, 0,
		2, 1,
		0, 1,
		1, 2,
		3, 1,
		1, 1,
	})
	y := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		y.Set(i, 0, x.At(i, 0)-2*x.At(i, 1))
	}
	opts := &lmodel.Options{}
	opts.Defaults()
	opts.Preprocessing = 0
	opts.MaxClusters = 10
	opts.Threshold = 1e-9
	opts.LVs = lvs
	m, err := lmodel.NewEmpty(opts, 2, 1)
	assert.NoError(t, err)
	assert.NoError(t, lmodel.Update(m, &lmodel.DataBlock{X: x, Y: y}))
	return m
}

func TestPLSRecoversLinearMap(t *testing.T) {
	m := plsModel(t, []int{1, 2})
	res, err := PLS(m)
	assert.NoError(t, err)
	assert.Equal(t, lmodel.DecompPLS, res.Type)
	assert.NotNil(t, res.AltWeights)
	assert.NotNil(t, res.YLoads)

	// full-rank PLS on an exactly linear Y recovers the
	// regression coefficients
	beta, err := res.Beta()
	assert.NoError(t, err)
	tolassert.EqualTol(t, 1, beta.At(0, 0), 1.0e-8)
	tolassert.EqualTol(t, -2, beta.At(1, 0), 1.0e-8)
}

func TestPLSScoreOrthogonality(t *testing.T) {
	m := plsModel(t, []int{1, 2})
	res, err := PLS(m)
	assert.NoError(t, err)

	// T = X·R has orthogonal columns: RᵀXXR is diagonal with the
	// per-component score sums of squares
	var g mat.Dense
	g.Mul(res.AltWeights.T(), m.XX)
	g.Mul(mat.DenseCopyOf(&g), res.AltWeights)
	tolassert.EqualTol(t, res.SdT[0], g.At(0, 0), 1.0e-8)
	tolassert.EqualTol(t, res.SdT[1], g.At(1, 1), 1.0e-8)
	tolassert.EqualTol(t, 0, g.At(0, 1), 1.0e-8)
	tolassert.EqualTol(t, 0, g.At(1, 0), 1.0e-8)
}

func TestPLSFirstComponentDominatesCovariance(t *testing.T) {
	m := plsModel(t, []int{1})
	res, err := PLS(m)
	assert.NoError(t, err)

	// with a single y, the first weight vector is XY normalized
	xy := []float64{m.XY.At(0, 0), m.XY.At(1, 0)}
	nrm := math.Hypot(xy[0], xy[1])
	w0 := res.Weights.At(0, 0)
	w1 := res.Weights.At(1, 0)
	flip := 1.0
	if (w0 < 0) != (xy[0] < 0) {
		flip = -1
	}
	tolassert.EqualTol(t, xy[0]/nrm, flip*w0, 1.0e-10)
	tolassert.EqualTol(t, xy[1]/nrm, flip*w1, 1.0e-10)
}

func TestPLSScoresFromCentroids(t *testing.T) {
	m := plsModel(t, []int{1, 2})
	res, err := PLS(m)
	assert.NoError(t, err)
	r, c := res.Scores.Dims()
	assert.Equal(t, m.Centroids.Len(), r)
	assert.Equal(t, 2, c)

	var want mat.Dense
	want.Mul(m.Centroids.Matrix(), res.AltWeights)
	assert.True(t, mat.EqualApprox(&want, res.Scores, 1.0e-12))
}

func TestPLSErrors(t *testing.T) {
	// no Y-block
	opts := &lmodel.Options{}
	opts.Defaults()
	opts.Preprocessing = 0
	mx, err := lmodel.NewEmpty(opts, 2, 0)
	assert.NoError(t, err)
	_, err = PLS(mx)
	assert.ErrorIs(t, err, errors.ErrConfig)

	// zero XY: no covariance direction to extract
	m := plsModel(t, []int{1})
	m.XY.Zero()
	_, err = PLS(m)
	assert.ErrorIs(t, err, errors.ErrNumeric)

	// out-of-range component request
	m = plsModel(t, []int{3})
	_, err = PLS(m)
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestBetaRequiresPLS(t *testing.T) {
	m := knownModel(t, []int{1})
	res, err := PCA(m)
	assert.NoError(t, err)
	_, err = res.Beta()
	assert.ErrorIs(t, err, errors.ErrConfig)
}
