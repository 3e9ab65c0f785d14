// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lmodel implements the large-data model: a compressed,
// incrementally-updatable sufficient-statistics representation of a
// data stream, holding exact cross-product matrices plus a bounded
// set of weighted centroids. The representation is O(M²) in the
// number of variables and independent of the number of observations
// absorbed, and supports PCA and PLS decomposition without
// re-reading raw data (see the proj package).
//
// A Model is owned by a single logical writer: updates mutate it in
// place and must be serialized externally. Decompositions are pure
// reads and may run concurrently with each other, but not with an
// update.
package lmodel

import (
	"fmt"
	"math"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/cluster"
	"github.com/mvdatools/bigeda/preproc"
	"gonum.org/v1/gonum/mat"
)

// UpdatePolicy selects how new blocks are merged into the model.
type UpdatePolicy int32

const (
	// Iterative accumulates blocks with equal weight: cross-products
	// are plain sums and centroids grow by nearest-centroid folding
	// with a spawn threshold.
	Iterative UpdatePolicy = iota

	// EWMA ages out older contributions: cross-products, the
	// observation count and centroid multiplicities are decayed by
	// the forgetting factor Lambda before each block is merged.
	EWMA

	// UpdatePolicyN is the number of valid update policies.
	UpdatePolicyN
)

func (p UpdatePolicy) String() string {
	switch p {
	case Iterative:
		return "Iterative"
	case EWMA:
		return "EWMA"
	}
	return "Invalid"
}

// DecompType tags the last decomposition computed from a model.
type DecompType int32

const (
	// DecompNone means no decomposition has been computed yet.
	DecompNone DecompType = iota

	// DecompPCA tags a principal component analysis.
	DecompPCA

	// DecompPLS tags a partial least squares decomposition.
	DecompPLS
)

func (d DecompType) String() string {
	switch d {
	case DecompNone:
		return "None"
	case DecompPCA:
		return "PCA"
	case DecompPLS:
		return "PLS"
	}
	return "Invalid"
}

// Options is the configuration surface of a model. It replaces the
// packed option strings of classical exploratory-analysis toolboxes
// with explicit named fields, each validated independently.
type Options struct {
	// Preprocessing applied to each incoming block, using parameters
	// estimated once from the reference block.
	Preprocessing preproc.Mode

	// MaxClusters caps the number of centroids kept.
	MaxClusters int

	// Update selects the block-merge policy.
	Update UpdatePolicy

	// Lambda is the EWMA forgetting factor in (0, 1]. Only used by
	// the EWMA policy.
	Lambda float64

	// Threshold is the nearest-centroid spawn distance: a row
	// farther than this from every centroid spawns a new one.
	// +Inf never spawns beyond the first centroid.
	Threshold float64

	// LVs is the ordered set of requested latent-variable indices
	// (1-based) for the next decomposition. Indices need not be
	// contiguous: components can be skipped.
	LVs []int

	// Weights are optional per-variable weights applied after
	// centering and scaling.
	Weights []float64
}

// Defaults fills in reasonable default option values.
func (o *Options) Defaults() {
	o.Preprocessing = preproc.AutoScale
	o.MaxClusters = 100
	o.Update = Iterative
	o.Lambda = 0.9
	o.Threshold = math.Inf(1)
	o.LVs = []int{1}
}

// Validate returns an [errors.ErrConfig] for the first invalid
// option value found.
func (o *Options) Validate() error {
	if err := o.Preprocessing.Valid(); err != nil {
		return err
	}
	if o.MaxClusters < 1 {
		return errors.Config("lmodel: MaxClusters %d must be positive", o.MaxClusters)
	}
	if o.Update < Iterative || o.Update >= UpdatePolicyN {
		return errors.Config("lmodel: unrecognized update policy %d", int(o.Update))
	}
	if o.Update == EWMA && (o.Lambda <= 0 || o.Lambda > 1) {
		return errors.Config("lmodel: Lambda %g outside (0, 1]", o.Lambda)
	}
	if o.Threshold < 0 || math.IsNaN(o.Threshold) {
		return errors.Config("lmodel: Threshold %g must be non-negative", o.Threshold)
	}
	for _, lv := range o.LVs {
		if lv < 1 {
			return errors.Config("lmodel: latent variable index %d must be >= 1", lv)
		}
	}
	return nil
}

// DataBlock is one in-memory block of raw observations: an N x M
// X-block, an optional N x L Y-block, and an optional class label
// per observation. Blocks are owned by the caller; the model reads
// them during an update and never retains a reference.
type DataBlock struct {
	X     *mat.Dense
	Y     *mat.Dense
	Class []int
}

// Check validates the internal shape consistency of the block and,
// when nvars >= 0 or nys >= 0, its agreement with the model's
// variable counts.
func (b *DataBlock) Check(nvars, nys int) error {
	if b.X == nil {
		return errors.Dimension("lmodel: block has no X data")
	}
	n, m := b.X.Dims()
	if nvars >= 0 && m != nvars {
		return errors.Dimension("lmodel: block has %d variables, model has %d", m, nvars)
	}
	if b.Y != nil {
		yn, yl := b.Y.Dims()
		if yn != n {
			return errors.Dimension("lmodel: X has %d rows, Y has %d", n, yn)
		}
		if nys >= 0 && yl != nys {
			return errors.Dimension("lmodel: block has %d outputs, model has %d", yl, nys)
		}
	} else if nys > 0 {
		return errors.Dimension("lmodel: model has %d outputs but block has no Y data", nys)
	}
	if b.Class != nil && len(b.Class) != n {
		return errors.Dimension("lmodel: %d class labels for %d rows", len(b.Class), n)
	}
	return nil
}

// Model is the large-data model store. All matrices are in
// preprocessed variable space. See the package documentation for
// the concurrency contract.
type Model struct {
	// XX is the exact M x M cross-product XᵀX summed over all
	// absorbed preprocessed X-blocks. Always symmetric PSD.
	XX *mat.Dense

	// XY is the M x L cross-product between the X and Y blocks.
	// Nil when no Y-block is modeled.
	XY *mat.Dense

	// YY is the L x L cross-product of the Y-block. Nil when no
	// Y-block is modeled.
	YY *mat.Dense

	// N is the total absorbed observation weight. Under the EWMA
	// policy it is decayed along with the cross-products, so it can
	// be fractional. Always equals the sum of centroid
	// multiplicities.
	N float64

	// Centroids is the bounded compressed representation of the
	// absorbed observations.
	Centroids *cluster.Set

	// VClass is the per-variable class id, set at initialization.
	VClass []int

	// VarLabels are the per-variable labels, set at initialization.
	VarLabels []string

	// LVs is the requested set of latent-variable indices (1-based)
	// for the next decomposition.
	LVs []int

	// Prep holds the X-block preprocessing parameters estimated
	// from the reference block.
	Prep preproc.Params

	// PrepY holds the Y-block preprocessing parameters. Empty when
	// no Y-block is modeled.
	PrepY preproc.Params

	// Type tags the last computed decomposition.
	Type DecompType

	// Options is the configuration the model was built with.
	Options Options
}

// NVars returns the number of X variables M, or 0 before the model
// holds any data.
func (m *Model) NVars() int {
	if m.XX == nil {
		return 0
	}
	r, _ := m.XX.Dims()
	return r
}

// NYs returns the number of Y outputs L, or 0 when no Y-block is
// modeled.
func (m *Model) NYs() int {
	if m.YY == nil {
		return 0
	}
	r, _ := m.YY.Dims()
	return r
}

// HasY reports whether the model carries a Y-block.
func (m *Model) HasY() bool { return m.XY != nil }

// NewEmpty returns a model with allocated zero cross-products for
// the given variable counts (nys 0 for PCA-only models) and
// identity preprocessing. Use [New] to also estimate preprocessing
// from a reference block.
func NewEmpty(opts *Options, nvars, nys int) (*Model, error) {
	if opts == nil {
		opts = &Options{}
		opts.Defaults()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if nvars < 1 {
		return nil, errors.Config("lmodel: nvars %d must be positive", nvars)
	}
	m := &Model{
		XX:        mat.NewDense(nvars, nvars, nil),
		Centroids: cluster.NewSet(nvars, opts.MaxClusters),
		Options:   *opts,
		LVs:       append([]int(nil), opts.LVs...),
	}
	ones := make([]float64, nvars)
	for i := range ones {
		ones[i] = 1
	}
	m.Prep = preproc.Params{Av: make([]float64, nvars), Sc: append([]float64(nil), ones...), Weight: append([]float64(nil), ones...)}
	if nys > 0 {
		m.XY = mat.NewDense(nvars, nys, nil)
		m.YY = mat.NewDense(nys, nys, nil)
		yones := make([]float64, nys)
		for i := range yones {
			yones[i] = 1
		}
		m.PrepY = preproc.Params{Av: make([]float64, nys), Sc: append([]float64(nil), yones...), Weight: append([]float64(nil), yones...)}
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// New builds a model from a reference block: preprocessing
// parameters are estimated from ref and the block is then absorbed
// as the first update.
func New(opts *Options, ref *DataBlock) (*Model, error) {
	if opts == nil {
		opts = &Options{}
		opts.Defaults()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ref.Check(-1, -1); err != nil {
		return nil, err
	}
	_, nvars := ref.X.Dims()
	nys := 0
	if ref.Y != nil {
		_, nys = ref.Y.Dims()
	}
	m, err := NewEmpty(opts, nvars, nys)
	if err != nil {
		return nil, err
	}
	m.Prep, err = preproc.Estimate(ref.X, opts.Preprocessing, opts.Weights)
	if err != nil {
		return nil, err
	}
	if ref.Y != nil {
		m.PrepY, err = preproc.Estimate(ref.Y, opts.Preprocessing, nil)
		if err != nil {
			return nil, err
		}
	}
	if err := Update(m, ref); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate ensures the required model fields are present, filling
// in defaults for missing optional ones: LVs defaults to the first
// component, the centroid set to empty, and variable labels to
// index-based strings. It returns an [errors.ErrConfig] if XX is
// absent or non-square. Validate is idempotent and runs before
// every projection call.
func Validate(m *Model) error {
	if m == nil || m.XX == nil {
		return errors.Config("lmodel: model has no XX cross-product")
	}
	r, c := m.XX.Dims()
	if r != c {
		return errors.Config("lmodel: XX cross-product is %d x %d, not square", r, c)
	}
	if m.XY != nil {
		xr, xc := m.XY.Dims()
		if xr != r {
			return errors.Config("lmodel: XY has %d rows, XX has %d", xr, r)
		}
		if m.YY == nil {
			return errors.Config("lmodel: XY present without YY")
		}
		yr, yc := m.YY.Dims()
		if yr != yc || yr != xc {
			return errors.Config("lmodel: YY is %d x %d, XY has %d columns", yr, yc, xc)
		}
	}
	if len(m.LVs) == 0 {
		m.LVs = []int{1}
	}
	if m.Options.MaxClusters < 1 {
		m.Options.MaxClusters = 100
	}
	if m.Centroids == nil {
		m.Centroids = cluster.NewSet(r, m.Options.MaxClusters)
	}
	if len(m.VarLabels) != r {
		m.VarLabels = make([]string, r)
		for i := range m.VarLabels {
			m.VarLabels[i] = fmt.Sprintf("X%d", i+1)
		}
	}
	if len(m.VClass) != r {
		m.VClass = make([]int, r)
	}
	return nil
}

// Reset discards all absorbed data, keeping the configuration,
// preprocessing parameters and variable metadata. A model holding
// no data is left unchanged.
func (m *Model) Reset() {
	nv := m.NVars()
	if nv == 0 {
		return
	}
	m.XX = mat.NewDense(nv, nv, nil)
	if m.XY != nil {
		_, l := m.XY.Dims()
		m.XY = mat.NewDense(nv, l, nil)
		m.YY = mat.NewDense(l, l, nil)
	}
	m.N = 0
	m.Centroids = cluster.NewSet(nv, m.Options.MaxClusters)
	m.Type = DecompNone
}
