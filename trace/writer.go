// RENODE-INFRASTRUCTURE - Register-level peripheral models for system emulation.
// Copyright (C) 2021 Auxon Corporation
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package trace persists bus accesses as a block-framed binary log. Records
// are batched, snappy-compressed and guarded by a CRC-32 of each compressed
// block, so a trace survives partial writes detectably.
//
// File layout: an 8-byte magic, then blocks of
//
//	checksum uint32 | length uint32 | count uint32 | compressed payload
//
// with little-endian framing. The payload is the snappy compression of
// count fixed-width records.
package trace

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/auxoncorp/renode-infrastructure/crc"
)

const (
	headerSize = 12

	// blockRecords bounds the records buffered before a block is cut.
	blockRecords = 2048
)

var magic = [8]byte{'R', 'N', 'T', 'R', 'A', 'C', 'E', '1'}

// blockParams guards every block payload.
var blockParams = crc.IEEE

// Writer appends records to an underlying stream. Errors are sticky: after
// a write fails every later call reports the same error.
type Writer struct {
	w      io.Writer
	err    error
	engine *crc.Engine

	buf   []byte
	count int
}

// NewWriter writes the file magic and returns a writer batching records
// into compressed blocks. Close cuts the final block; the caller owns the
// underlying stream.
func NewWriter(w io.Writer) (*Writer, error) {
	engine, err := crc.New(blockParams)
	if err != nil {
		return nil, errors.Wrap(err, "trace: block checksum engine")
	}
	if _, err := w.Write(magic[:]); err != nil {
		return nil, errors.Wrap(err, "trace: write magic")
	}
	return &Writer{w: w, engine: engine, buf: make([]byte, 0, blockRecords*recordSize)}, nil
}

func (w *Writer) Err() error {
	return w.err
}

// Append buffers one record, cutting a block when the batch fills.
func (w *Writer) Append(r Record) error {
	if w.err != nil {
		return w.err
	}

	var b [recordSize]byte
	r.encode(b[:])
	w.buf = append(w.buf, b[:]...)
	w.count++

	if w.count >= blockRecords {
		return w.Flush()
	}
	return nil
}

// Flush cuts the buffered records into a block. Empty batches write
// nothing.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.count == 0 {
		return nil
	}

	compressed := snappy.Encode(nil, w.buf)

	w.engine.Reset()
	w.engine.Update(compressed)

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], w.engine.Value())
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(w.count))

	if _, err := w.w.Write(header[:]); err != nil {
		w.err = errors.Wrap(err, "trace: write block header")
		return w.err
	}
	if _, err := w.w.Write(compressed); err != nil {
		w.err = errors.Wrap(err, "trace: write block payload")
		return w.err
	}

	w.buf = w.buf[:0]
	w.count = 0
	return nil
}

// Close flushes pending records. The underlying stream is left open.
func (w *Writer) Close() error {
	return w.Flush()
}
