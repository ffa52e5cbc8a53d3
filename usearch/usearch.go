// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package usearch

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// Opts configures the usearch steps.
type Opts struct {
	// Exec is the usearch executable, either a name looked up in $PATH or a
	// path.
	Exec string
	// PercentID is the identity threshold, in (0,1], used for clustering and
	// for mapping reads back onto centroids.
	PercentID float64
	// Threads is passed to usearch via -threads.
	Threads int
	// Verbose enables progress messages.
	Verbose bool
}

// DefaultOpts are the default usearch options.
var DefaultOpts = Opts{
	Exec:      "usearch",
	PercentID: 0.96,
	Threads:   1,
}

// Validate checks that the options are in range.
func (o Opts) Validate() error {
	if o.Exec == "" {
		return errors.E(errors.Invalid, "usearch executable must be set")
	}
	if !(o.PercentID > 0 && o.PercentID <= 1) {
		return errors.E(errors.Invalid, "percent identity must be in (0,1], got", formatID(o.PercentID))
	}
	if o.Threads < 1 {
		return errors.E(errors.Invalid, "thread count must be positive, got", strconv.Itoa(o.Threads))
	}
	return nil
}

// Outputs names the files produced by Cluster for one read file.
type Outputs struct {
	// Uniques holds the dereplicated reads, with ";size=" abundances.
	Uniques string
	// Centroids holds one representative sequence per OTU.
	Centroids string
	// OTUTable is the OTU-by-sample abundance table.
	OTUTable string
	// Blast6 is the tabular alignment report of reads against centroids.
	Blast6 string
}

// NewOutputs derives output names from readPath by replacing its extension.
func NewOutputs(readPath string) Outputs {
	preface := strings.TrimSuffix(readPath, filepath.Ext(readPath))
	return Outputs{
		// Spelling matches the file names of earlier pipeline runs.
		Uniques:   preface + "_unqiues.fasta",
		Centroids: preface + "_centroids.fasta",
		OTUTable:  preface + "_otuTable.txt",
		Blast6:    preface + "_blast6out.txt",
	}
}

// Step is one usearch invocation.
type Step struct {
	// Name is the usearch command, e.g. "derep_prefix".
	Name string
	Args []string
}

// Steps returns the three usearch invocations that cluster readPath, in the
// order they must run.
func Steps(readPath string, out Outputs, opts Opts) []Step {
	id := formatID(opts.PercentID)
	threads := strconv.Itoa(opts.Threads)
	return []Step{
		{
			Name: "derep_prefix",
			Args: []string{
				"-derep_prefix", readPath,
				"-fastaout", out.Uniques,
				"-sizeout",
				"-threads", threads,
			},
		},
		{
			Name: "cluster_fast",
			Args: []string{
				"-cluster_fast", out.Uniques,
				"-centroids", out.Centroids,
				"-sort", "size",
				"-id", id,
				"-threads", threads,
			},
		},
		{
			Name: "usearch_global",
			Args: []string{
				"-usearch_global", readPath,
				"-db", out.Centroids,
				"-strand", "both",
				"-id", id,
				"-otutabout", out.OTUTable,
				"-blast6out", out.Blast6,
				"-threads", threads,
			},
		},
	}
}

// Cluster dereplicates, clusters and maps the reads in readPath by running
// usearch through r, one step at a time. Each step must succeed before the
// next one starts; the first failure is returned and nothing is retried.
func Cluster(ctx context.Context, r Runner, readPath string, opts Opts) (Outputs, error) {
	if err := opts.Validate(); err != nil {
		return Outputs{}, err
	}
	out := NewOutputs(readPath)
	if opts.Verbose {
		log.Printf("clustering %s with %s", readPath, opts.Exec)
	}
	for _, step := range Steps(readPath, out, opts) {
		if opts.Verbose {
			log.Printf("running... %s", Cmdline(opts.Exec, step.Args...))
		}
		if err := r.Run(ctx, opts.Exec, step.Args...); err != nil {
			return Outputs{}, errors.E(err, "usearch", step.Name)
		}
	}
	return out, nil
}

func formatID(id float64) string {
	return strconv.FormatFloat(id, 'g', -1, 64)
}
