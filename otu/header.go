// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package otu

import (
	"strings"

	"github.com/grailbio/base/errors"
)

const (
	annotationSep = ";"
	sampleKey     = "sample="
	sizeKey       = "size="
)

// HeaderKind describes which convention a read header follows.
type HeaderKind int

const (
	// Unrecognized headers carry neither a sample annotation nor a '.'.
	Unrecognized HeaderKind = iota
	// Annotated headers already carry a "sample=" token.
	Annotated
	// Dotted headers encode the sample as the text before the first '.',
	// e.g. "sampleA.read1".
	Dotted
)

// ErrUnrecognizedHeader is the underlying error for headers that follow
// neither of the two recognized conventions.
var ErrUnrecognizedHeader = errors.E(errors.Invalid,
	"read header follows neither of the two recognized header conventions (sample= annotation or <sample>.<read>)")

// DedupKey returns the part of header that must be unique within a file: the
// text before the first ';'.
func DedupKey(header string) string {
	if i := strings.Index(header, annotationSep); i >= 0 {
		return header[:i]
	}
	return header
}

// Classify reports the convention followed by header.
func Classify(header string) HeaderKind {
	switch {
	case strings.Contains(header, sampleKey):
		return Annotated
	case strings.Contains(header, "."):
		return Dotted
	default:
		return Unrecognized
	}
}

// SampleOf returns the sample label of header, and whether one could be
// determined.
func SampleOf(header string) (string, bool) {
	switch Classify(header) {
	case Annotated:
		for _, tok := range strings.Split(header, annotationSep) {
			if strings.HasPrefix(tok, sampleKey) {
				return tok[len(sampleKey):], true
			}
		}
		// "sample=" appears inside another token, e.g. "xsample=1".
		i := strings.Index(header, sampleKey)
		v := header[i+len(sampleKey):]
		if j := strings.Index(v, annotationSep); j >= 0 {
			v = v[:j]
		}
		return v, true
	case Dotted:
		return header[:strings.Index(header, ".")], true
	}
	return "", false
}

// RewriteHeader returns header in the usearch convention.
//
// A header that already carries "sample=" is kept, except that every
// ';'-separated token mentioning "size" is dropped when a "size=" annotation
// is present: usearch recomputes abundances during dereplication. A header
// containing '.' gets ";sample=<text before the first '.'>" appended. Any
// other header is rejected with ErrUnrecognizedHeader.
func RewriteHeader(header string) (string, error) {
	switch Classify(header) {
	case Annotated:
		if !strings.Contains(header, sizeKey) {
			return header, nil
		}
		return stripSize(header), nil
	case Dotted:
		sample, _ := SampleOf(header)
		return header + annotationSep + sampleKey + sample, nil
	}
	return header, errors.E(ErrUnrecognizedHeader, "header:", header)
}

func stripSize(header string) string {
	toks := strings.Split(header, annotationSep)
	kept := toks[:0]
	for _, tok := range toks {
		if strings.Contains(tok, "size") {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, annotationSep)
}
