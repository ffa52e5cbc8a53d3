// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const maxLineSize = 64 << 20 // 64 MiB

var (
	// ErrInvalid is returned when sequence data appears before the first
	// header line.
	ErrInvalid = errors.New("invalid FASTA file: sequence data before first header")

	errEOF = errors.New("eof")
)

// Record is a single FASTA record. Name is the header line without the
// leading '>'. Seq is the concatenation of all the sequence lines that follow
// the header, with line terminators and trailing whitespace removed.
type Record struct {
	Name, Seq string
}

// Scanner reads FASTA records from a stream one at a time. Records are never
// materialized beyond the one being returned, so arbitrarily large files can
// be processed. Scanners are not threadsafe and cannot be rewound.
type Scanner struct {
	b       *bufio.Scanner
	err     error
	line    int
	pending []byte // header of the next record, if already read.
	hasNext bool
	seq     bytes.Buffer
}

// NewScanner constructs a new Scanner that reads raw FASTA data from r.
func NewScanner(r io.Reader) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(nil, maxLineSize)
	return &Scanner{b: b}
}

// Scan reads the next record into rec. Scan returns a boolean indicating
// whether the scan succeeded. Once Scan returns false, it never returns true
// again. Upon completion, the user should check the Err method to determine
// whether scanning stopped because of an error or because the end of the
// stream was reached.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	if !s.hasNext {
		// Find the first header, skipping blank lines.
		for {
			if !s.scanLine() {
				return false
			}
			line := s.trimmedLine()
			if len(line) == 0 {
				continue
			}
			if line[0] != '>' {
				s.err = errors.Wrapf(ErrInvalid, "line %d", s.line)
				return false
			}
			s.pending = append(s.pending[:0], line[1:]...)
			s.hasNext = true
			break
		}
	}
	rec.Name = string(s.pending)
	s.hasNext = false
	s.seq.Reset()
	for s.scanLine() {
		line := s.trimmedLine()
		if len(line) > 0 && line[0] == '>' {
			s.pending = append(s.pending[:0], line[1:]...)
			s.hasNext = true
			break
		}
		s.seq.Write(line)
	}
	if s.err != nil && s.err != errEOF {
		return false
	}
	rec.Seq = s.seq.String()
	return true
}

// scanLine advances to the next line. It returns false at end of stream or on
// error, recording the reason in s.err.
func (s *Scanner) scanLine() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		} else {
			s.err = errors.Wrapf(s.err, "read FASTA line %d", s.line+1)
		}
		return false
	}
	s.line++
	return true
}

// trimmedLine returns the current line with trailing whitespace removed.
func (s *Scanner) trimmedLine() []byte {
	return bytes.TrimRight(s.b.Bytes(), " \t\r\v\f")
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}
