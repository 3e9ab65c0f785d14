// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tolassert provides functions for asserting the equality
// of numbers with tolerance.
package tolassert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Equal asserts that the two numbers are equal within a standard
// tolerance of 1.0e-7.
func Equal(t *testing.T, expected, actual float64, msgAndArgs ...any) bool {
	return EqualTol(t, expected, actual, 1.0e-7, msgAndArgs...)
}

// EqualTol asserts that the two numbers are equal within the
// given tolerance.
func EqualTol(t *testing.T, expected, actual, tol float64, msgAndArgs ...any) bool {
	t.Helper()
	return assert.InDelta(t, expected, actual, tol, msgAndArgs...)
}

// EqualTolSlice asserts that the elements of the two slices are
// equal pairwise within the given tolerance.
func EqualTolSlice(t *testing.T, expected, actual []float64, tol float64) bool {
	t.Helper()
	if !assert.Equal(t, len(expected), len(actual), "slice lengths differ") {
		return false
	}
	ok := true
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], tol, "at index %d", i) {
			ok = false
		}
	}
	return ok
}
