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

package trace

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/auxoncorp/renode-infrastructure/crc"
)

// Reader decodes records in file order. Errors are sticky. A clean end of
// file surfaces as io.EOF from Next.
type Reader struct {
	r      io.Reader
	err    error
	engine *crc.Engine

	pending []Record
	next    int
	seq     uint64
	offset  int64
}

// NewReader consumes and verifies the file magic.
func NewReader(r io.Reader) (*Reader, error) {
	engine, err := crc.New(blockParams)
	if err != nil {
		return nil, errors.Wrap(err, "trace: block checksum engine")
	}

	var m [len(magic)]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrBadMagic
		}
		return nil, errors.Wrap(err, "trace: read magic")
	}
	if m != magic {
		return nil, ErrBadMagic
	}

	return &Reader{r: r, engine: engine, offset: int64(len(magic))}, nil
}

// Next returns the following record, reading and verifying a new block when
// the current one is exhausted.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}

	for r.next >= len(r.pending) {
		if err := r.readBlock(); err != nil {
			r.err = err
			return Record{}, err
		}
	}

	record := r.pending[r.next]
	record.Seq = r.seq
	r.next++
	r.seq++
	return record, nil
}

func (r *Reader) readBlock() error {
	var header [headerSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if err == io.EOF {
			return io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return errors.Wrapf(ErrTruncated, "header at offset %d", r.offset)
		}
		return errors.Wrapf(err, "trace: read block header at offset %d", r.offset)
	}

	checksum := binary.LittleEndian.Uint32(header[0:4])
	length := int(binary.LittleEndian.Uint32(header[4:8]))
	count := int(binary.LittleEndian.Uint32(header[8:12]))
	if length <= 0 || length > maxPayload || count <= 0 || count > blockRecords {
		return errors.Wrapf(ErrCorruptBlock, "at offset %d", r.offset)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errors.Wrapf(ErrTruncated, "payload at offset %d", r.offset)
		}
		return errors.Wrapf(err, "trace: read block payload at offset %d", r.offset)
	}

	r.engine.Reset()
	r.engine.Update(payload)
	if r.engine.Value() != checksum {
		return errors.Wrapf(ErrMismatchChecksum, "block at offset %d", r.offset)
	}

	decoded, err := snappy.Decode(nil, payload)
	if err != nil {
		return errors.Wrapf(err, "trace: decompress block at offset %d", r.offset)
	}
	if len(decoded) != count*recordSize {
		return errors.Wrapf(ErrCorruptBlock, "at offset %d: %d payload bytes for %d records", r.offset, len(decoded), count)
	}

	r.pending = r.pending[:0]
	for i := 0; i < count; i++ {
		r.pending = append(r.pending, decodeRecord(decoded[i*recordSize:]))
	}
	r.next = 0
	r.offset += int64(headerSize + length)
	return nil
}
