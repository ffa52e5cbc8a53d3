// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package otu prepares amplicon reads for OTU clustering and post-processes
// the resulting abundance tables.
//
// Normalize rewrites FASTA headers into the usearch convention, where each
// read carries a "sample=<label>" annotation:
//
//	>sampleA.read1            becomes  >sampleA.read1;sample=sampleA
//	>read1;sample=A;size=12   becomes  >read1;sample=A
//
// Binarize converts an OTU-by-sample abundance table (as written by
// "usearch -otutabout") into a presence/absence matrix.
//
// Clustering itself is delegated to usearch; see package
// github.com/grailbio/amplicon/usearch.
package otu
