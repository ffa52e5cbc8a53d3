// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package otu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// BinarySuffix replaces the extension of an abundance table to form the name
// of its presence/absence matrix.
const BinarySuffix = "_binary.txt"

// BinaryPath returns the path Binarize writes for the table at tablePath.
func BinaryPath(tablePath string) string {
	return Preface(tablePath) + BinarySuffix
}

// Binarize converts the OTU abundance table at tablePath into a
// presence/absence matrix and returns the path of the new table.
//
// The header line is copied verbatim. Each following row keeps its OTU label
// and has every count replaced by 1 if it is positive and 0 otherwise. Rows
// must have as many columns as the header, and counts must be non-negative
// integers. The output file is removed if the conversion fails.
func Binarize(ctx context.Context, tablePath string, verbose bool) (outPath string, err error) {
	if verbose {
		log.Printf("converting %s to binary matrix", tablePath)
	}
	in, err := file.Open(ctx, tablePath)
	if err != nil {
		return "", errors.E(err, "open", tablePath)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "close", tablePath)
		}
	}()
	outPath = BinaryPath(tablePath)
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return "", errors.E(err, "create", outPath)
	}
	nRows, err := BinarizeTable(out.Writer(ctx), in.Reader(ctx))
	once := errors.Once{}
	once.Set(err)
	once.Set(out.Close(ctx))
	if err = once.Err(); err != nil {
		if e := file.Remove(ctx, outPath); e != nil {
			log.Error.Printf("remove %s: %v", outPath, e)
		}
		return "", errors.E(err, "binarize", tablePath)
	}
	if verbose {
		log.Printf("wrote %d OTUs to %s", nRows, outPath)
	}
	return outPath, nil
}

// BinarizeTable is the streaming form of Binarize. It reads an abundance
// table from r, writes the presence/absence matrix to w, and returns the
// number of data rows.
//
// Columns are tab-separated when a line contains a tab and
// whitespace-separated otherwise. The header line, including its line
// terminator, is written to w unchanged. Data rows are always written
// tab-separated.
func BinarizeTable(w io.Writer, r io.Reader) (int, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, err
	}
	if header == "" {
		return 0, errors.E(errors.Invalid, "abundance table is empty")
	}
	nCols := len(splitColumns(strings.TrimRight(header, "\r\n")))

	tw := tsv.NewWriter(w)
	if err := tw.Copy(strings.NewReader(header)); err != nil {
		return 0, err
	}
	if !strings.HasSuffix(header, "\n") {
		return 0, tw.Flush()
	}
	sc := bufio.NewScanner(br)
	sc.Buffer(nil, 64<<20)
	var (
		nRows  int
		lineNo = 1
	)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitColumns(line)
		if len(fields) != nCols {
			return nRows, errors.E(errors.Invalid,
				fmt.Sprintf("line %d: found %d columns, header has %d", lineNo, len(fields), nCols))
		}
		tw.WriteString(fields[0])
		for _, field := range fields[1:] {
			v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nRows, errors.E(errors.Invalid, err, fmt.Sprintf("line %d: bad count %q", lineNo, field))
			}
			if v < 0 {
				return nRows, errors.E(errors.Invalid, fmt.Sprintf("line %d: negative count %d", lineNo, v))
			}
			tw.WriteInt64(presence(v))
		}
		if err := tw.EndLine(); err != nil {
			return nRows, err
		}
		nRows++
	}
	if err := sc.Err(); err != nil {
		return nRows, err
	}
	return nRows, tw.Flush()
}

// splitColumns splits a table line on tabs if it has any, and on runs of
// whitespace otherwise.
func splitColumns(line string) []string {
	if strings.IndexByte(line, '\t') >= 0 {
		return strings.Split(strings.TrimRight(line, "\r"), "\t")
	}
	return strings.Fields(line)
}

func presence(count int64) int64 {
	if count > 0 {
		return 1
	}
	return 0
}
