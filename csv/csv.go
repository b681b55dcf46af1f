package csv

import (
	"encoding/csv"
	"io"

	"golang.org/x/xerrors"
)

// Produces a list of fields making up a record.
type Recorder interface {
	Record() []string
}

// A Recorder that also names its fields. The header row is written once,
// before the first record.
type HeaderRecorder interface {
	Recorder
	Header() []string
}

// An Encoder writes CSV records to an output stream.
type Encoder struct {
	w *csv.Writer

	wroteHeader bool
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: csv.NewWriter(w)}
}

// Encode writes a CSV record representing v to the stream followed by a
// newline character. Value given must implement the Recorder interface.
func (enc *Encoder) Encode(v interface{}) (err error) {
	defer func() {
		if err, _ = recover().(error); err != nil {
			err = xerrors.Errorf("recovered: %w", err)
		}
	}()

	if h, ok := v.(HeaderRecorder); ok && !enc.wroteHeader {
		enc.wroteHeader = true
		if err := enc.w.Write(h.Header()); err != nil {
			return err
		}
	}

	err = enc.w.Write(v.(Recorder).Record())
	enc.w.Flush()

	return nil
}
