package peripherals

import "fmt"

// AccessKind distinguishes reads from writes.
type AccessKind byte

const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "Read"
	case Write:
		return "Write"
	}
	return fmt.Sprintf("AccessKind(%d)", byte(k))
}

// AccessWidth is the granularity of a bus access in bytes.
type AccessWidth byte

const (
	Byte       AccessWidth = 1
	Word       AccessWidth = 2
	DoubleWord AccessWidth = 4
)

func (w AccessWidth) String() string {
	switch w {
	case Byte:
		return "Byte"
	case Word:
		return "Word"
	case DoubleWord:
		return "DoubleWord"
	}
	return fmt.Sprintf("AccessWidth(%d)", byte(w))
}

// Access records one completed bus transaction. Handled is false when no
// registration claimed the address or the target lacked the granularity.
type Access struct {
	Kind    AccessKind
	Width   AccessWidth
	Addr    uint64
	Value   uint32
	Handled bool
}

func (a Access) String() string {
	return fmt.Sprintf("{%s%s Addr:0x%08X Value:0x%08X Handled:%t}", a.Kind, a.Width, a.Addr, a.Value, a.Handled)
}
