// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package preproc estimates and applies per-variable preprocessing
// (centering, scaling, weighting) consistently across all data
// blocks absorbed by a model. Parameters are estimated once from a
// reference block and then applied unchanged to every subsequent
// block, so that cross-products accumulated over time remain
// comparable.
package preproc

import (
	"math"

	"github.com/mvdatools/bigeda/base/errors"
	"gonum.org/v1/gonum/mat"
)

// Mode is the preprocessing applied to each variable of a block.
type Mode int32

const (
	// None leaves the raw data untouched.
	None Mode = iota

	// MeanCenter subtracts the per-variable mean.
	MeanCenter

	// AutoScale subtracts the per-variable mean and divides by the
	// per-variable standard deviation (unit variance scaling).
	AutoScale

	// ModeN is the number of valid preprocessing modes.
	ModeN
)

func (m Mode) String() string {
	switch m {
	case None:
		return "None"
	case MeanCenter:
		return "MeanCenter"
	case AutoScale:
		return "AutoScale"
	}
	return "Invalid"
}

// Valid returns an [errors.ErrConfig] if m is not a recognized
// preprocessing mode.
func (m Mode) Valid() error {
	if m < None || m >= ModeN {
		return errors.Config("preproc: unrecognized preprocessing mode %d", int(m))
	}
	return nil
}

// Params holds the per-variable preprocessing parameters estimated
// from a reference block. The zero value is unusable; call
// [Estimate] to produce one.
type Params struct {
	// Av is the per-variable mean subtracted from each row.
	Av []float64

	// Sc is the per-variable scale each row is divided by.
	Sc []float64

	// Weight is an extra per-variable multiplicative weight.
	Weight []float64
}

// NVars returns the number of variables the parameters cover.
func (p *Params) NVars() int { return len(p.Av) }

// Estimate computes preprocessing parameters from the given
// reference block, for the given mode. weight may be nil, in which
// case all variables get weight 1. A variable with zero standard
// deviation gets scale 1, so that a constant variable contributes
// zero after centering instead of NaN.
func Estimate(x *mat.Dense, mode Mode, weight []float64) (Params, error) {
	if err := mode.Valid(); err != nil {
		return Params{}, err
	}
	n, m := x.Dims()
	if n == 0 {
		return Params{}, errors.Dimension("preproc: empty reference block")
	}
	if weight != nil && len(weight) != m {
		return Params{}, errors.Dimension("preproc: %d weights for %d variables", len(weight), m)
	}
	p := Params{
		Av:     make([]float64, m),
		Sc:     make([]float64, m),
		Weight: make([]float64, m),
	}
	for j := 0; j < m; j++ {
		p.Sc[j] = 1
		p.Weight[j] = 1
		if weight != nil {
			p.Weight[j] = weight[j]
		}
	}
	if mode == None {
		return p, nil
	}
	for j := 0; j < m; j++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += x.At(i, j)
		}
		p.Av[j] = sum / float64(n)
	}
	if mode == AutoScale && n > 1 {
		for j := 0; j < m; j++ {
			ss := 0.0
			for i := 0; i < n; i++ {
				d := x.At(i, j) - p.Av[j]
				ss += d * d
			}
			sd := math.Sqrt(ss / float64(n-1))
			if sd > 0 {
				p.Sc[j] = sd
			}
		}
	}
	return p, nil
}

// Apply returns a preprocessed copy of the given block, leaving the
// input untouched. It returns an [errors.ErrDimension] if the block
// column count does not match the parameters.
func (p *Params) Apply(x *mat.Dense) (*mat.Dense, error) {
	n, m := x.Dims()
	if m != p.NVars() {
		return nil, errors.Dimension("preproc: block has %d variables, parameters have %d", m, p.NVars())
	}
	out := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			out.Set(i, j, (x.At(i, j)-p.Av[j])/p.Sc[j]*p.Weight[j])
		}
	}
	return out, nil
}
