// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/cluster"
	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/preproc"
	"gonum.org/v1/gonum/mat"
)

// modelFile is the flat gob representation of a model: dense
// matrices are stored as row-major value slices with their
// dimensions, everything else verbatim.
type modelFile struct {
	NVars, NYs  int
	XX, XY, YY  []float64
	N           float64
	Centers     []float64
	Mult        []float64
	CentrClass  []int
	MaxClusters int
	VClass      []int
	VarLabels   []string
	LVs         []int
	Av, Sc, Wt  []float64
	YAv, YSc    []float64
	YWt         []float64
	Type        int32
	Options     lmodel.Options
}

func denseData(d *mat.Dense) []float64 {
	if d == nil {
		return nil
	}
	r, c := d.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, d.At(i, j))
		}
	}
	return out
}

// SaveModel gob-encodes the model state to w.
func SaveModel(w io.Writer, m *lmodel.Model) error {
	if err := lmodel.Validate(m); err != nil {
		return err
	}
	mf := modelFile{
		NVars:       m.NVars(),
		NYs:         m.NYs(),
		XX:          denseData(m.XX),
		XY:          denseData(m.XY),
		YY:          denseData(m.YY),
		N:           m.N,
		Centers:     m.Centroids.Centers,
		Mult:        m.Centroids.Mult,
		CentrClass:  m.Centroids.Class,
		MaxClusters: m.Centroids.MaxClusters,
		VClass:      m.VClass,
		VarLabels:   m.VarLabels,
		LVs:         m.LVs,
		Av:          m.Prep.Av,
		Sc:          m.Prep.Sc,
		Wt:          m.Prep.Weight,
		YAv:         m.PrepY.Av,
		YSc:         m.PrepY.Sc,
		YWt:         m.PrepY.Weight,
		Type:        int32(m.Type),
		Options:     m.Options,
	}
	return gob.NewEncoder(w).Encode(&mf)
}

// LoadModel decodes a model previously written by [SaveModel].
func LoadModel(r io.Reader) (*lmodel.Model, error) {
	var mf modelFile
	if err := gob.NewDecoder(r).Decode(&mf); err != nil {
		return nil, err
	}
	if err := mf.Options.Validate(); err != nil {
		return nil, err
	}
	m := &lmodel.Model{
		XX:        mat.NewDense(mf.NVars, mf.NVars, mf.XX),
		N:         mf.N,
		VClass:    mf.VClass,
		VarLabels: mf.VarLabels,
		LVs:       mf.LVs,
		Prep:      preproc.Params{Av: mf.Av, Sc: mf.Sc, Weight: mf.Wt},
		Type:      lmodel.DecompType(mf.Type),
		Options:   mf.Options,
	}
	if mf.NYs > 0 {
		m.XY = mat.NewDense(mf.NVars, mf.NYs, mf.XY)
		m.YY = mat.NewDense(mf.NYs, mf.NYs, mf.YY)
		m.PrepY = preproc.Params{Av: mf.YAv, Sc: mf.YSc, Weight: mf.YWt}
	}
	m.Centroids = &cluster.Set{
		NVars:       mf.NVars,
		MaxClusters: mf.MaxClusters,
		Centers:     mf.Centers,
		Mult:        mf.Mult,
		Class:       mf.CentrClass,
	}
	if err := lmodel.Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SaveModelFile writes the model to the file at the given path.
func SaveModelFile(path string, m *lmodel.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := SaveModel(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadModelFile reads a model from the file at the given path.
func LoadModelFile(path string) (*lmodel.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { errors.Log(f.Close()) }()
	return LoadModel(f)
}
