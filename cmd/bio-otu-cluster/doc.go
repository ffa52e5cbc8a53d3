// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
bio-otu-cluster clusters amplicon reads (for example DBLα sequence tags) into
operational taxonomic units with usearch, and writes a presence/absence
matrix of OTUs per sample.

Usage:

	bio-otu-cluster -o <outdir> -r <reads.fasta> [-perID 0.96] [-cpu 1] [-verbose]

The pipeline has three stages:

 1. The reads are copied to <outdir>/<name>_renamed.fasta with headers
    rewritten to carry a "sample=" annotation. Headers of the form
    "<sample>.<read>" get ";sample=<sample>" appended; headers that already
    carry "sample=" have any "size=" annotation removed. Any other header, or
    two reads with the same name, is an error unless -lenient is given.

 2. usearch dereplicates the renamed reads (-derep_prefix), clusters the
    uniques at -perID identity (-cluster_fast), and maps all renamed reads
    back onto the centroids (-usearch_global), writing
    <name>_renamed_otuTable.txt and <name>_renamed_blast6out.txt.

 3. The OTU table is converted to <name>_renamed_otuTable_binary.txt, where
    every positive count becomes 1.

If usearch fails, bio-otu-cluster exits with usearch's exit status.
*/
package main
