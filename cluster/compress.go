// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cluster implements bounded centroid compression of data
// blocks: an arbitrary number of observations is folded into at
// most a configured number of weighted centroids, preserving the
// approximate second-moment structure of the stream while using
// memory independent of the number of observations absorbed.
package cluster

import (
	"math"

	"github.com/mvdatools/bigeda/base/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set is a bounded set of weighted centroids in preprocessed
// variable space. Each centroid summarizes one or more original
// observations; its multiplicity records how much weight has been
// folded into it. The sum of all multiplicities always equals the
// total (possibly forgetting-decayed) observation weight absorbed.
type Set struct {
	// NVars is the number of variables (columns) per centroid.
	NVars int

	// MaxClusters caps the number of centroids. When a new centroid
	// is needed at the cap, the two closest centroids are merged
	// first to free capacity.
	MaxClusters int

	// Centers holds the centroid rows, row-major, Len() x NVars.
	Centers []float64

	// Mult is the multiplicity (folded observation weight) of each
	// centroid.
	Mult []float64

	// Class is the integer class label of each centroid, carried
	// from the observation that spawned it (heavier member wins on
	// merge).
	Class []int
}

// NewSet returns an empty centroid set for the given number of
// variables and cluster cap.
func NewSet(nvars, maxClusters int) *Set {
	return &Set{NVars: nvars, MaxClusters: maxClusters}
}

// Len returns the current number of centroids.
func (cs *Set) Len() int { return len(cs.Mult) }

// Center returns the i'th centroid row as a slice view into the set.
func (cs *Set) Center(i int) []float64 {
	return cs.Centers[i*cs.NVars : (i+1)*cs.NVars]
}

// Weight returns the total multiplicity over all centroids, which
// equals the total observation weight absorbed.
func (cs *Set) Weight() float64 {
	w := 0.0
	for _, m := range cs.Mult {
		w += m
	}
	return w
}

// Clone returns a deep copy of the set.
func (cs *Set) Clone() *Set {
	nc := &Set{NVars: cs.NVars, MaxClusters: cs.MaxClusters}
	nc.Centers = append([]float64(nil), cs.Centers...)
	nc.Mult = append([]float64(nil), cs.Mult...)
	nc.Class = append([]int(nil), cs.Class...)
	return nc
}

// Matrix returns the centroids as a Len() x NVars dense matrix,
// copying the current state. It returns nil for an empty set.
func (cs *Set) Matrix() *mat.Dense {
	if cs.Len() == 0 {
		return nil
	}
	return mat.NewDense(cs.Len(), cs.NVars, append([]float64(nil), cs.Centers...))
}

// nearest returns the index of the centroid closest to row by
// Euclidean distance, with ties broken by lowest index, along with
// the distance. It returns -1 when the set is empty.
func (cs *Set) nearest(row []float64) (int, float64) {
	best := -1
	bestd := math.Inf(1)
	for i := 0; i < cs.Len(); i++ {
		d := floats.Distance(row, cs.Center(i), 2)
		if d < bestd {
			best = i
			bestd = d
		}
	}
	return best, bestd
}

// spawn appends a new centroid at the given row with multiplicity 1.
func (cs *Set) spawn(row []float64, class int) {
	cs.Centers = append(cs.Centers, row...)
	cs.Mult = append(cs.Mult, 1)
	cs.Class = append(cs.Class, class)
}

// fold updates centroid i with one more observation at row, as a
// running weighted mean.
func (cs *Set) fold(i int, row []float64) {
	c := cs.Center(i)
	m := cs.Mult[i]
	for j := range c {
		c[j] = (m*c[j] + row[j]) / (m + 1)
	}
	cs.Mult[i] = m + 1
}

// mergeClosest merges the globally closest pair of centroids into
// one, freeing one slot. The pair is selected by Euclidean distance
// between centroid rows, ties broken by lowest index pair. The
// merged centroid is the multiplicity-weighted mean; the class of
// the heavier member is kept (lower index on a tie). Order of the
// remaining centroids is preserved.
func (cs *Set) mergeClosest() {
	n := cs.Len()
	if n < 2 {
		return
	}
	bi, bj := 0, 1
	bestd := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(cs.Center(i), cs.Center(j), 2)
			if d < bestd {
				bi, bj = i, j
				bestd = d
			}
		}
	}
	ci, cj := cs.Center(bi), cs.Center(bj)
	mi, mj := cs.Mult[bi], cs.Mult[bj]
	tot := mi + mj
	for k := range ci {
		ci[k] = (mi*ci[k] + mj*cj[k]) / tot
	}
	cs.Mult[bi] = tot
	if mj > mi {
		cs.Class[bi] = cs.Class[bj]
	}
	// shift down to preserve index order of survivors
	copy(cs.Centers[bj*cs.NVars:], cs.Centers[(bj+1)*cs.NVars:])
	cs.Centers = cs.Centers[:(n-1)*cs.NVars]
	copy(cs.Mult[bj:], cs.Mult[bj+1:])
	cs.Mult = cs.Mult[:n-1]
	copy(cs.Class[bj:], cs.Class[bj+1:])
	cs.Class = cs.Class[:n-1]
}

// checkBlock validates the block shape against the set.
func (cs *Set) checkBlock(x *mat.Dense, class []int) (int, error) {
	if cs.MaxClusters < 1 {
		return 0, errors.Config("cluster: MaxClusters %d must be positive", cs.MaxClusters)
	}
	n, m := x.Dims()
	if m != cs.NVars {
		return 0, errors.Dimension("cluster: block has %d variables, set has %d", m, cs.NVars)
	}
	if class != nil && len(class) != n {
		return 0, errors.Dimension("cluster: %d class labels for %d rows", len(class), n)
	}
	return n, nil
}

// Absorb folds the rows of the given preprocessed block into the
// set using the iterative policy: each row is assigned to its
// nearest centroid if within threshold (running-mean update),
// otherwise it spawns a new centroid, merging the two closest
// centroids first when the cap is reached. class may be nil,
// defaulting all spawned centroids to class 0. A zero-row block is
// a no-op.
func (cs *Set) Absorb(x *mat.Dense, class []int, threshold float64) error {
	n, err := cs.checkBlock(x, class)
	if err != nil {
		return err
	}
	row := make([]float64, cs.NVars)
	for r := 0; r < n; r++ {
		mat.Row(row, r, x)
		cl := 0
		if class != nil {
			cl = class[r]
		}
		i, d := cs.nearest(row)
		if i >= 0 && d <= threshold {
			cs.fold(i, row)
			continue
		}
		if cs.Len() >= cs.MaxClusters {
			cs.mergeClosest()
		}
		if cs.Len() >= cs.MaxClusters {
			// cap of 1: fold into the lone centroid
			cs.fold(0, row)
			continue
		}
		cs.spawn(row, cl)
	}
	return nil
}

// AbsorbEWMA folds the rows of the given preprocessed block into
// the set using the exponentially-weighted policy: every existing
// multiplicity is first decayed by lambda, then the block is
// absorbed exactly as in [Set.Absorb]. Sequential running-mean
// folding is algebraically identical to blending each centroid with
// the per-cluster mean of its newly assigned rows, so a centroid
// that receives a single row equal to itself is a fixed point.
// lambda must be in (0, 1].
func (cs *Set) AbsorbEWMA(x *mat.Dense, class []int, lambda, threshold float64) error {
	if lambda <= 0 || lambda > 1 {
		return errors.Config("cluster: forgetting factor %g outside (0, 1]", lambda)
	}
	n, err := cs.checkBlock(x, class)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	for i := range cs.Mult {
		cs.Mult[i] *= lambda
	}
	return cs.Absorb(x, class, threshold)
}
