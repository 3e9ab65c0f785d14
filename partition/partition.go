// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition implements the file boundary contract of the
// model: each partition file holds an observations x variables
// matrix x, an optional observations x outputs matrix y, and one
// integer class label per observation. Partitions are the unit of
// streaming ingestion; the core only ever sees one in-memory
// partition at a time.
package partition

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mvdatools/bigeda/base/errors"
	"github.com/mvdatools/bigeda/lmodel"
	"gonum.org/v1/gonum/mat"
)

// MaxRows is the conventional cap on partition size. Larger
// partitions are legal in memory but are rejected when saved.
const MaxRows = 10000

// Partition is one stored data partition.
type Partition struct {
	X     *mat.Dense
	Y     *mat.Dense
	Class []int
}

// Rows returns the number of observations in the partition.
func (p *Partition) Rows() int {
	if p.X == nil {
		return 0
	}
	r, _ := p.X.Dims()
	return r
}

// Block returns the partition as a model update block. The block
// shares the partition's matrices; the model does not retain them.
func (p *Partition) Block() *lmodel.DataBlock {
	return &lmodel.DataBlock{X: p.X, Y: p.Y, Class: p.Class}
}

// SaveCSV writes the partition to w with a header row naming the
// columns x1..xM, y1..yL, class.
func (p *Partition) SaveCSV(w io.Writer) error {
	if p.Rows() > MaxRows {
		return errors.Config("partition: %d rows exceeds the %d row partition cap", p.Rows(), MaxRows)
	}
	n, nx := p.X.Dims()
	ny := 0
	if p.Y != nil {
		_, ny = p.Y.Dims()
	}
	cw := csv.NewWriter(w)
	hdr := make([]string, 0, nx+ny+1)
	for j := 0; j < nx; j++ {
		hdr = append(hdr, fmt.Sprintf("x%d", j+1))
	}
	for j := 0; j < ny; j++ {
		hdr = append(hdr, fmt.Sprintf("y%d", j+1))
	}
	if p.Class != nil {
		hdr = append(hdr, "class")
	}
	if err := cw.Write(hdr); err != nil {
		return err
	}
	rec := make([]string, 0, len(hdr))
	for i := 0; i < n; i++ {
		rec = rec[:0]
		for j := 0; j < nx; j++ {
			rec = append(rec, strconv.FormatFloat(p.X.At(i, j), 'g', -1, 64))
		}
		for j := 0; j < ny; j++ {
			rec = append(rec, strconv.FormatFloat(p.Y.At(i, j), 'g', -1, 64))
		}
		if p.Class != nil {
			rec = append(rec, strconv.Itoa(p.Class[i]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadCSV reads a partition written by [Partition.SaveCSV]: columns
// prefixed x form the X block, columns prefixed y the Y block, and
// a class column the labels.
func LoadCSV(r io.Reader) (*Partition, error) {
	cr := csv.NewReader(r)
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) < 2 {
		return nil, errors.Dimension("partition: CSV has no data rows")
	}
	hdr := recs[0]
	var xcols, ycols []int
	ccol := -1
	for j, name := range hdr {
		switch {
		case name == "class":
			ccol = j
		case strings.HasPrefix(name, "x"):
			xcols = append(xcols, j)
		case strings.HasPrefix(name, "y"):
			ycols = append(ycols, j)
		default:
			return nil, errors.Config("partition: unrecognized CSV column %q", name)
		}
	}
	if len(xcols) == 0 {
		return nil, errors.Config("partition: CSV has no x columns")
	}
	n := len(recs) - 1
	p := &Partition{X: mat.NewDense(n, len(xcols), nil)}
	if len(ycols) > 0 {
		p.Y = mat.NewDense(n, len(ycols), nil)
	}
	if ccol >= 0 {
		p.Class = make([]int, n)
	}
	for i, rec := range recs[1:] {
		if len(rec) != len(hdr) {
			return nil, errors.Dimension("partition: CSV row %d has %d fields, header has %d", i+1, len(rec), len(hdr))
		}
		for k, j := range xcols {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("partition: CSV row %d column %q: %w", i+1, hdr[j], err)
			}
			p.X.Set(i, k, v)
		}
		for k, j := range ycols {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("partition: CSV row %d column %q: %w", i+1, hdr[j], err)
			}
			p.Y.Set(i, k, v)
		}
		if ccol >= 0 {
			c, err := strconv.Atoi(rec[ccol])
			if err != nil {
				return nil, fmt.Errorf("partition: CSV row %d class: %w", i+1, err)
			}
			p.Class[i] = c
		}
	}
	return p, nil
}

// LoadCSVFile reads a partition from the CSV file at the given path.
func LoadCSVFile(path string) (*Partition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { errors.Log(f.Close()) }()
	return LoadCSV(f)
}

// SaveCSVFile writes the partition to the CSV file at the given path.
func (p *Partition) SaveCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.SaveCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
