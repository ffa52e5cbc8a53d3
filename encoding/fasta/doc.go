// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fasta contains a streaming reader and writer for FASTA files.
// FASTA files consist of a number of named sequences that may be interrupted
// by newlines.  For example:
//
// >sampleA.read1;size=3
// ACGTAC
// GAGGAC
// >sampleB.read7
// ACGT
//
// Unlike many FASTA parsers, the record name is the whole header line after
// '>', including any whitespace and ';'-separated annotations. Amplicon
// pipelines store sample labels and abundances in the header, so nothing is
// discarded.
package fasta
