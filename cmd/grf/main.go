// Copyright 2016 Mhd Sulhan <ms@kilabit.info>. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command grf trains a forest over a CSV dataset and reports its
// out-of-bag predictions, grounded in cmd/randomforest/main.go's
// flag-overrides-JSON-config pattern and trace/un timing wrapper.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shuLhan/grf"
	"github.com/shuLhan/grf/grfdata"
)

var (
	numTrees       = 0
	sampleFraction = 0.0
	numThreads     = 0
	outcomeCol     = -1
)

var usage = func() {
	cmd := os.Args[0]
	fmt.Fprintf(os.Stderr, "Usage of %s:\n"+
		"[-ntrees number] "+
		"[-samplefraction number] "+
		"[-numthreads number] "+
		"[-outcome column] "+
		"<config.json> <data.csv>\n", cmd)
	flag.PrintDefaults()
}

func init() {
	v := os.Getenv("DEBUG")
	level := zerolog.InfoLevel
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	flag.IntVar(&numTrees, "ntrees", -1, "Number of trees in the forest (default from config)")
	flag.Float64Var(&sampleFraction, "samplefraction", -1, "Per-tree bootstrap sample fraction (default from config)")
	flag.IntVar(&numThreads, "numthreads", -1, "Number of worker threads (default from config)")
	flag.IntVar(&outcomeCol, "outcome", -1, "0-indexed outcome column (default: last column)")
}

func trace(s string) (string, time.Time) {
	log.Info().Str("stage", s).Msg("start")
	return s, time.Now()
}

func un(s string, startTime time.Time) {
	log.Info().Str("stage", s).Dur("elapsed", time.Since(startTime)).Msg("done")
}

func loadOptions(path string) (grf.ForestOptions, error) {
	var opts grf.ForestOptions

	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err = json.Unmarshal(raw, &opts); err != nil {
		return opts, err
	}

	if numTrees > 0 {
		opts.NumTrees = numTrees
	}
	if sampleFraction > 0 {
		opts.SampleFraction = sampleFraction
	}
	if numThreads > 0 {
		opts.NumThreads = numThreads
	}
	return opts, nil
}

func loadCSV(path string) (*grfdata.DenseMatrix, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, 0, 0, err
	}
	if len(records) == 0 {
		return nil, 0, 0, fmt.Errorf("cmd/grf: empty dataset %s", path)
	}

	numRows := len(records)
	numCols := len(records[0])
	values := make([]float64, 0, numRows*numCols)
	for _, rec := range records {
		for _, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				v = math.NaN() // unparseable cells are missing values.
			}
			values = append(values, v)
		}
	}

	return grfdata.NewDenseMatrix(values, numRows, numCols), numRows, numCols, nil
}

func main() {
	defer un(trace("grf"))

	flag.Parse()
	if len(flag.Args()) < 2 {
		usage()
		os.Exit(1)
	}

	opts, err := loadOptions(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	m, numRows, numCols, err := loadCSV(flag.Arg(1))
	if err != nil {
		log.Fatal().Err(err).Msg("loading dataset")
	}

	outcome := outcomeCol
	if outcome < 0 {
		outcome = numCols - 1
	}
	data := grf.NewData(m, outcome)

	ctx := context.Background()
	f, err := grf.Train(ctx, data, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("training")
	}
	log.Info().Int("num_trees", len(f.Trees)).Msg("forest trained")

	preds, err := grf.PredictOOB(ctx, f, data, opts.CIGroupSize > 1, opts.NumThreads)
	if err != nil {
		log.Fatal().Err(err).Msg("predicting")
	}

	var sumSqErr float64
	for i, p := range preds {
		sumSqErr += (p.Value - data.Outcome(i)) * (p.Value - data.Outcome(i))
	}
	log.Info().Int("rows", numRows).Float64("oob_mse", sumSqErr/float64(numRows)).Msg("oob error")
}
