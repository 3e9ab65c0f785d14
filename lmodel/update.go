// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lmodel

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Update merges one data block into the model under the configured
// update policy. All validation happens before any mutation: a
// rejected block leaves the model exactly as it was. The block is
// preprocessed with the model's stored parameters, its
// cross-products are accumulated exactly, and its rows are folded
// into the bounded centroid set. The block itself is not retained.
//
// A zero-row block is a no-op. Shape mismatches return
// [errors.ErrDimension]; the caller must discard or fix the block.
func Update(m *Model, b *DataBlock) error {
	if err := Validate(m); err != nil {
		return err
	}
	if err := m.Options.Validate(); err != nil {
		return err
	}
	if err := b.Check(m.NVars(), m.NYs()); err != nil {
		return err
	}
	n, _ := b.X.Dims()
	if n == 0 {
		return nil
	}
	xp, err := m.Prep.Apply(b.X)
	if err != nil {
		return err
	}
	var yp *mat.Dense
	if m.HasY() && b.Y != nil {
		yp, err = m.PrepY.Apply(b.Y)
		if err != nil {
			return err
		}
	}

	// all inputs validated; mutation starts here
	switch m.Options.Update {
	case EWMA:
		m.scale(m.Options.Lambda)
		m.accumulate(xp, yp)
		if err := m.Centroids.AbsorbEWMA(xp, b.Class, m.Options.Lambda, m.Options.Threshold); err != nil {
			return err
		}
	default:
		m.accumulate(xp, yp)
		if err := m.Centroids.Absorb(xp, b.Class, m.Options.Threshold); err != nil {
			return err
		}
	}
	m.Type = DecompNone
	slog.Debug("lmodel: block absorbed", "rows", n, "N", m.N, "clusters", m.Centroids.Len())
	return nil
}

// Downdate removes a previously absorbed block's exact contribution
// from the cross-products, after the same validation as [Update].
// The centroid set is a lossy summary and cannot be downdated; it
// is left unchanged, so downdating trades centroid fidelity for
// exact cross-product bookkeeping. Only meaningful under the
// iterative policy.
func Downdate(m *Model, b *DataBlock) error {
	if err := Validate(m); err != nil {
		return err
	}
	if err := b.Check(m.NVars(), m.NYs()); err != nil {
		return err
	}
	n, _ := b.X.Dims()
	if n == 0 {
		return nil
	}
	xp, err := m.Prep.Apply(b.X)
	if err != nil {
		return err
	}
	var yp *mat.Dense
	if m.HasY() && b.Y != nil {
		yp, err = m.PrepY.Apply(b.Y)
		if err != nil {
			return err
		}
	}
	m.decumulate(xp, yp)
	m.Type = DecompNone
	return nil
}
