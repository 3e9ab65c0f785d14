// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"math"
	"testing"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	c, err := loadConfig("")
	assert.NoError(t, err)
	opts, err := c.options()
	assert.NoError(t, err)
	assert.True(t, math.IsInf(opts.Threshold, 1))
	assert.Equal(t, 100, opts.MaxClusters)
}

func TestConfigExplicitZeroThreshold(t *testing.T) {
	// threshold 0 is a legal spawn distance and must not be
	// replaced by the default
	var c config
	assert.NoError(t, toml.Unmarshal([]byte("threshold = 0.0\n"), &c))
	opts, err := c.options()
	assert.NoError(t, err)
	assert.Equal(t, 0.0, opts.Threshold)
}

func TestConfigInvalidValues(t *testing.T) {
	var c config
	assert.NoError(t, toml.Unmarshal([]byte("update = \"ewma\"\nlambda = 0.0\n"), &c))
	_, err := c.options()
	assert.ErrorIs(t, err, errors.ErrConfig)

	var c2 config
	assert.NoError(t, toml.Unmarshal([]byte("update = \"sometimes\"\n"), &c2))
	_, err = c2.options()
	assert.Error(t, err)
}
