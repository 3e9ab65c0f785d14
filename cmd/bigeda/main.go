// Copyright (c) 2026, The Big EDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bigeda streams CSV data partitions into a compressed
// large-data model and reports PCA / PLS decompositions and
// diagnostics from it.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/mvdatools/bigeda/lmodel"
	"github.com/mvdatools/bigeda/meda"
	"github.com/mvdatools/bigeda/partition"
	"github.com/mvdatools/bigeda/preproc"
	"github.com/mvdatools/bigeda/proj"
)

// config is the TOML configuration surface of the tool, mapped onto
// lmodel.Options. Lambda and Threshold are pointers so that an
// explicit zero in the file is distinguished from an absent key and
// reaches validation instead of being silently defaulted.
type config struct {
	Preprocessing int      `toml:"preprocessing"`
	MaxClusters   int      `toml:"max_clusters"`
	Update        string   `toml:"update"`
	Lambda        *float64 `toml:"lambda"`
	Threshold     *float64 `toml:"threshold"`
	LVs           []int    `toml:"lvs"`
}

func (c *config) options() (*lmodel.Options, error) {
	opts := &lmodel.Options{}
	opts.Defaults()
	opts.Preprocessing = preproc.Mode(c.Preprocessing)
	if c.MaxClusters > 0 {
		opts.MaxClusters = c.MaxClusters
	}
	switch c.Update {
	case "", "iterative":
		opts.Update = lmodel.Iterative
	case "ewma":
		opts.Update = lmodel.EWMA
	default:
		return nil, fmt.Errorf("unrecognized update policy %q", c.Update)
	}
	if c.Lambda != nil {
		opts.Lambda = *c.Lambda
	}
	if c.Threshold != nil {
		opts.Threshold = *c.Threshold
	}
	if len(c.LVs) > 0 {
		opts.LVs = c.LVs
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func loadConfig(path string) (*config, error) {
	c := &config{}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	var (
		cfgFile   string
		modelFile string
		verbose   bool
	)

	root := &cobra.Command{
		Use:   "bigeda",
		Short: "Streaming exploratory data analysis over compressed big-data models",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "TOML configuration file")
	root.PersistentFlags().StringVarP(&modelFile, "model", "m", "bigeda.model", "model state file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ingest := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Stream CSV partitions from a directory into the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			opts, err := cfg.options()
			if err != nil {
				return err
			}
			return runIngest(args[0], modelFile, opts)
		},
	}

	pca := &cobra.Command{
		Use:   "pca",
		Short: "Report the PCA decomposition of the stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(modelFile, false)
		},
	}

	pls := &cobra.Command{
		Use:   "pls",
		Short: "Report the PLS decomposition of the stored model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(modelFile, true)
		},
	}

	root.AddCommand(ingest, pca, pls)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runIngest streams every .csv partition in dir, in name order,
// into a model and saves it. The first partition is the reference
// block for preprocessing estimation.
func runIngest(dir, modelFile string, opts *lmodel.Options) error {
	names, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no .csv partitions in %s", dir)
	}
	sort.Strings(names)

	var m *lmodel.Model
	for i, name := range names {
		p, err := partition.LoadCSVFile(name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if i == 0 {
			m, err = lmodel.New(opts, p.Block())
		} else {
			err = lmodel.Update(m, p.Block())
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		slog.Info("partition absorbed", "file", filepath.Base(name), "rows", p.Rows(), "N", m.N, "clusters", m.Centroids.Len())
	}
	return partition.SaveModelFile(modelFile, m)
}

// runReport loads the model, runs the decomposition and prints
// variance captured and leverages.
func runReport(modelFile string, pls bool) error {
	m, err := partition.LoadModelFile(modelFile)
	if err != nil {
		return err
	}
	var res *proj.Result
	if pls {
		res, err = proj.PLS(m)
	} else {
		res, err = proj.PCA(m)
	}
	if err != nil {
		return err
	}

	var resid []float64
	mx := 0
	for _, lv := range res.LVs {
		if lv > mx {
			mx = lv
		}
	}
	if pls {
		resid, err = meda.VarPLS(m, mx)
	} else {
		resid, err = meda.VarPCA(m, mx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s model: %d variables, N = %.1f, %d centroids\n", res.Type, m.NVars(), m.N, m.Centroids.Len())
	fmt.Println("LVs  residual X-variance")
	for i, r := range resid {
		fmt.Printf("%3d  %8.4f\n", i, r)
	}
	fmt.Println("variable  leverage")
	for i, l := range meda.Leverages(res) {
		fmt.Printf("%-9s %8.4f\n", m.VarLabels[i], l)
	}
	return nil
}
