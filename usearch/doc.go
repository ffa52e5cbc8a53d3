// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
Package usearch runs the usearch steps of the OTU pipeline.

Clustering is delegated entirely to the usearch binary. This package only
builds the command lines, runs them in order through a Runner, and names the
files they produce. Three steps are run, each consuming the output of the
previous one:

 1. -derep_prefix collapses prefix-identical reads into weighted uniques.
 2. -cluster_fast clusters the uniques, largest first, into centroids.
 3. -usearch_global maps every read back onto the centroids on both strands,
    producing an OTU-by-sample table and a blast6 alignment report.

The usearch binary name is taken from Opts.Exec, so a differently named or
fully qualified binary can be used.
*/
package usearch
