// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package fasta

import "io"

var (
	headerPrefix = []byte{'>'}
	newline      = []byte{'\n'}
)

// Writer is a FASTA file writer. Each record is written as a header line
// followed by the whole sequence on a single line.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter constructs a new FASTA writer that writes records to the
// underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes the record r in FASTA format. Once a write fails, all
// subsequent writes return the same error.
func (w *Writer) Write(r *Record) error {
	w.write(headerPrefix)
	w.writeln(r.Name)
	w.writeln(r.Seq)
	return w.err
}

// Err returns the first error encountered while writing, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line)
	w.write(newline)
}
