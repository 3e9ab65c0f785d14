// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lmodel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/base/tolassert"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func testOpts() *Options {
	o := &Options{}
	o.Defaults()
	o.Preprocessing = 0 // raw accumulation keeps the algebra exact
	o.MaxClusters = 20
	o.Threshold = 1.0
	return o
}

func randBlock(rng *rand.Rand, n, m int) *mat.Dense {
	x := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}
	return x
}

// stack concatenates two blocks row-wise.
func stack(a, b *mat.Dense) *mat.Dense {
	an, m := a.Dims()
	bn, _ := b.Dims()
	out := mat.NewDense(an+bn, m, nil)
	for i := 0; i < an; i++ {
		for j := 0; j < m; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	for i := 0; i < bn; i++ {
		for j := 0; j < m; j++ {
			out.Set(an+i, j, b.At(i, j))
		}
	}
	return out
}

func TestAccumulateAdditivity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b1 := randBlock(rng, 12, 3)
	b2 := randBlock(rng, 8, 3)

	m1, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m1, &DataBlock{X: b1}))
	assert.NoError(t, Update(m1, &DataBlock{X: b2}))

	m2, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m2, &DataBlock{X: stack(b1, b2)}))

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tolassert.EqualTol(t, m2.XX.At(i, j), m1.XX.At(i, j), 1.0e-10)
		}
	}
	tolassert.Equal(t, 20, m1.N)
}

func TestMultiplicityConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	opts := testOpts()
	opts.MaxClusters = 10
	m, err := NewEmpty(opts, 4, 0)
	assert.NoError(t, err)
	for _, n := range []int{50, 30, 20} {
		assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, n, 4)}))
	}
	assert.LessOrEqual(t, m.Centroids.Len(), 10)
	tolassert.Equal(t, 100, m.N)
	tolassert.Equal(t, 100, m.Centroids.Weight())
}

func TestEWMAWeightTracksCentroids(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	opts := testOpts()
	opts.Update = EWMA
	opts.Lambda = 0.9
	opts.Threshold = math.Inf(1)
	m, err := NewEmpty(opts, 2, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, 10, 2)}))
	assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, 10, 2)}))
	// N = 10*0.9 + 10 after the second block, matching centroid weight
	tolassert.Equal(t, 19, m.N)
	tolassert.EqualTol(t, m.N, m.Centroids.Weight(), 1.0e-10)
}

func TestValidateIdempotent(t *testing.T) {
	m, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Validate(m))
	labels := append([]string(nil), m.VarLabels...)
	lvs := append([]int(nil), m.LVs...)
	assert.NoError(t, Validate(m))
	assert.Equal(t, labels, m.VarLabels)
	assert.Equal(t, lvs, m.LVs)
	assert.Equal(t, []string{"X1", "X2", "X3"}, m.VarLabels)
}

func TestValidateMissingXX(t *testing.T) {
	err := Validate(&Model{})
	assert.ErrorIs(t, err, errors.ErrConfig)

	err = Validate(&Model{XX: mat.NewDense(2, 3, nil)})
	assert.ErrorIs(t, err, errors.ErrConfig)
}

func TestUpdateFailFast(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	m, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, 5, 3)}))
	xx := mat.DenseCopyOf(m.XX)
	n := m.N

	// wrong variable count: rejected before any mutation
	err = Update(m, &DataBlock{X: randBlock(rng, 5, 4)})
	assert.ErrorIs(t, err, errors.ErrDimension)
	assert.True(t, mat.Equal(xx, m.XX))
	tolassert.Equal(t, n, m.N)

	// mismatched class labels
	err = Update(m, &DataBlock{X: randBlock(rng, 5, 3), Class: []int{1}})
	assert.ErrorIs(t, err, errors.ErrDimension)
	assert.True(t, mat.Equal(xx, m.XX))
}

func TestUpdateRejectsInvalidOptions(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	m, err := NewEmpty(testOpts(), 2, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, 2, 2)}))
	xx := mat.DenseCopyOf(m.XX)
	n := m.N

	// options corrupted after construction: the update must be
	// rejected before any mutation, leaving sum(Mult) == N intact
	m.Options.Update = EWMA
	m.Options.Lambda = -0.5
	err = Update(m, &DataBlock{X: randBlock(rng, 3, 2)})
	assert.ErrorIs(t, err, errors.ErrConfig)
	assert.True(t, mat.Equal(xx, m.XX))
	tolassert.Equal(t, n, m.N)
	tolassert.Equal(t, n, m.Centroids.Weight())
}

func TestUpdateWithY(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m, err := NewEmpty(testOpts(), 3, 2)
	assert.NoError(t, err)

	// Y is required once modeled
	err = Update(m, &DataBlock{X: randBlock(rng, 5, 3)})
	assert.ErrorIs(t, err, errors.ErrDimension)

	x := randBlock(rng, 5, 3)
	y := randBlock(rng, 5, 2)
	assert.NoError(t, Update(m, &DataBlock{X: x, Y: y}))

	var xy mat.Dense
	xy.Mul(x.T(), y)
	assert.True(t, mat.EqualApprox(&xy, m.XY, 1.0e-12))
}

func TestNewEstimatesPreprocessing(t *testing.T) {
	opts := testOpts()
	opts.Preprocessing = 1 // mean centering
	ref := mat.NewDense(4, 2, []float64{
		1, 4,
		2, 4,
		3, 4,
		4, 4,
	})
	m, err := New(opts, &DataBlock{X: ref})
	assert.NoError(t, err)
	tolassert.EqualTolSlice(t, []float64{2.5, 4}, m.Prep.Av, 1.0e-12)
	// centered cross-product of the constant column is zero
	tolassert.Equal(t, 0, m.XX.At(1, 1))
	tolassert.Equal(t, 5, m.XX.At(0, 0))
}

func TestDowndateInvertsAccumulate(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	b1 := randBlock(rng, 10, 3)
	b2 := randBlock(rng, 6, 3)
	m, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m, &DataBlock{X: b1}))
	xx := mat.DenseCopyOf(m.XX)
	assert.NoError(t, Update(m, &DataBlock{X: b2}))
	assert.NoError(t, Downdate(m, &DataBlock{X: b2}))
	assert.True(t, mat.EqualApprox(xx, m.XX, 1.0e-10))
	tolassert.Equal(t, 10, m.N)
}

func TestOptionsValidate(t *testing.T) {
	o := &Options{}
	o.Defaults()
	assert.NoError(t, o.Validate())

	bad := *o
	bad.MaxClusters = 0
	assert.ErrorIs(t, bad.Validate(), errors.ErrConfig)

	bad = *o
	bad.Update = EWMA
	bad.Lambda = 1.5
	assert.ErrorIs(t, bad.Validate(), errors.ErrConfig)

	bad = *o
	bad.LVs = []int{0}
	assert.ErrorIs(t, bad.Validate(), errors.ErrConfig)

	bad = *o
	bad.Preprocessing = 9
	assert.ErrorIs(t, bad.Validate(), errors.ErrConfig)
}

func TestReset(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	m, err := NewEmpty(testOpts(), 3, 0)
	assert.NoError(t, err)
	assert.NoError(t, Update(m, &DataBlock{X: randBlock(rng, 5, 3)}))
	m.Reset()
	tolassert.Equal(t, 0, m.N)
	assert.Equal(t, 0, m.Centroids.Len())
	assert.True(t, mat.Equal(m.XX, mat.NewDense(3, 3, nil)))
}

func TestResetEmptyModel(t *testing.T) {
	m := &Model{}
	m.Reset()
	assert.Nil(t, m.XX)
	tolassert.Equal(t, 0, m.N)
}
