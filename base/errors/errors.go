// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides the error sentinels shared by all bigeda
// packages, along with small helpers that reduce the amount of
// boilerplate needed for standard error handling.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrConfig indicates a missing required model field or an
	// invalid option value. It is never retried.
	ErrConfig = errors.New("bigeda: invalid configuration")

	// ErrDimension indicates a shape mismatch between an incoming
	// data block and the model, or between the X and Y blocks.
	ErrDimension = errors.New("bigeda: dimension mismatch")

	// ErrNumeric indicates a failed eigen decomposition or a
	// singular matrix encountered during deflation.
	ErrNumeric = errors.New("bigeda: numeric failure")
)

// Config returns an [ErrConfig] wrapped with a formatted description
// of which option or field was invalid.
func Config(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}

// Dimension returns an [ErrDimension] wrapped with a formatted
// description of the mismatched shapes.
func Dimension(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDimension}, args...)...)
}

// Numeric returns an [ErrNumeric] wrapped with a formatted
// description of the failed computation.
func Numeric(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNumeric}, args...)...)
}

// Log takes the given error and logs it if it is non-nil,
// returning it unchanged. It makes it easy to log errors
// at the point where they can not be returned.
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error())
	}
	return err
}
