// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package otu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/amplicon/encoding/fasta"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// RenamedSuffix is appended to the input basename to form the name of the
// normalized FASTA file.
const RenamedSuffix = "_renamed.fasta"

// NormalizeOpts controls Normalize.
type NormalizeOpts struct {
	// OutputDir is the directory that receives the normalized file. It must
	// exist and be writable.
	OutputDir string
	// Verbose enables progress messages.
	Verbose bool
	// Lenient downgrades duplicate read names and unrecognized headers from
	// errors to logged warnings. Offending records are written unchanged.
	Lenient bool
}

// NormalizeStats summarizes one Normalize pass.
type NormalizeStats struct {
	// Records is the number of records read (and written).
	Records int
	// Annotated counts headers that already carried "sample=".
	Annotated int
	// Renamed counts headers that had ";sample=" appended.
	Renamed int
	// SizeStripped counts headers that had size annotations removed.
	SizeStripped int
	// Duplicates counts records whose dedup key was already seen. Non-zero
	// only in lenient mode.
	Duplicates int
	// Unrecognized counts headers in neither convention. Non-zero only in
	// lenient mode.
	Unrecognized int
	// Samples maps each sample label to its number of reads.
	Samples map[string]int
}

func (s NormalizeStats) String() string {
	return fmt.Sprintf("records: %d, annotated: %d, renamed: %d, size-stripped: %d, duplicates: %d, unrecognized: %d, samples: %d",
		s.Records, s.Annotated, s.Renamed, s.SizeStripped, s.Duplicates, s.Unrecognized, len(s.Samples))
}

// RenamedPath returns the path of the file Normalize writes for readPath.
// Compression suffixes are dropped along with the FASTA extension, so both
// "reads.fasta" and "reads.fasta.gz" map to "<outputDir>/reads_renamed.fasta".
func RenamedPath(readPath, outputDir string) string {
	return filepath.Join(outputDir, stem(readPath)+RenamedSuffix)
}

// Preface returns path with its extension removed. Files derived from path
// are named by appending a suffix to its preface.
func Preface(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

var compressionExts = []string{".gz", ".bz2"}

func stem(path string) string {
	base := filepath.Base(path)
	for _, ext := range compressionExts {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize reads the FASTA file at readPath (optionally compressed) and
// writes a copy whose headers follow the usearch "sample=" convention; see
// RewriteHeader. Sequences are copied unchanged and the number and order of
// records is preserved. It returns the path of the new file.
//
// Unless opts.Lenient is set, a record whose dedup key (see DedupKey) repeats
// an earlier one, or whose header cannot be rewritten, aborts the pass with an
// errors.Invalid error. The partially written output file is removed when the
// pass fails.
func Normalize(ctx context.Context, readPath string, opts NormalizeOpts) (outPath string, stats NormalizeStats, err error) {
	if opts.Verbose {
		log.Printf("setting up fasta file %s", readPath)
	}
	in, err := file.Open(ctx, readPath)
	if err != nil {
		return "", stats, errors.E(err, "open", readPath)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", readPath)
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}

	outPath = RenamedPath(readPath, opts.OutputDir)
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return "", stats, errors.E(err, "create", outPath)
	}
	w := bufio.NewWriter(out.Writer(ctx))
	stats, err = normalize(fasta.NewScanner(r), fasta.NewWriter(w), opts.Lenient)
	once := errors.Once{}
	once.Set(err)
	once.Set(w.Flush())
	once.Set(out.Close(ctx))
	if err = once.Err(); err != nil {
		if e := file.Remove(ctx, outPath); e != nil {
			log.Error.Printf("remove %s: %v", outPath, e)
		}
		return "", stats, errors.E(err, "normalize", readPath)
	}
	if opts.Verbose {
		log.Printf("wrote %s: %v", outPath, stats)
	}
	return outPath, stats, nil
}

// NormalizeStream is the streaming form of Normalize: it reads FASTA records
// from r and writes the normalized records to w.
func NormalizeStream(w io.Writer, r io.Reader, lenient bool) (NormalizeStats, error) {
	return normalize(fasta.NewScanner(r), fasta.NewWriter(w), lenient)
}

func normalize(sc *fasta.Scanner, fw *fasta.Writer, lenient bool) (NormalizeStats, error) {
	var (
		stats = NormalizeStats{Samples: map[string]int{}}
		seen  = map[string]struct{}{}
		rec   fasta.Record
	)
	for sc.Scan(&rec) {
		stats.Records++
		key := DedupKey(rec.Name)
		if _, ok := seen[key]; ok {
			err := errors.E(errors.Invalid, "reads may be duplicated:", key)
			if !lenient {
				return stats, err
			}
			log.Error.Printf("record %d: %v", stats.Records, err)
			stats.Duplicates++
		}
		seen[key] = struct{}{}

		kind := Classify(rec.Name)
		name, err := RewriteHeader(rec.Name)
		if err != nil {
			if !lenient {
				return stats, errors.E(err, fmt.Sprintf("record %d", stats.Records))
			}
			log.Error.Printf("record %d: %v", stats.Records, err)
			stats.Unrecognized++
		}
		switch kind {
		case Annotated:
			stats.Annotated++
			if name != rec.Name {
				stats.SizeStripped++
			}
		case Dotted:
			stats.Renamed++
		}
		if sample, ok := SampleOf(name); ok {
			stats.Samples[sample]++
		}
		rec.Name = name
		if err := fw.Write(&rec); err != nil {
			return stats, err
		}
	}
	return stats, sc.Err()
}
