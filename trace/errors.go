package trace

import (
	"errors"

	"github.com/golang/snappy"
)

var (
	ErrBadMagic         = errors.New("trace: bad magic")
	ErrTruncated        = errors.New("trace: truncated block")
	ErrCorruptBlock     = errors.New("trace: corrupt block header")
	ErrMismatchChecksum = errors.New("trace: corrupt block: mismatch checksum")
)

// maxPayload bounds a block header's claimed length to what the writer can
// produce, so a corrupt header cannot demand an absurd allocation.
var maxPayload = snappy.MaxEncodedLen(blockRecords * recordSize)
