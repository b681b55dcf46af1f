package trace

import (
	"encoding/binary"
	"strconv"

	"github.com/auxoncorp/renode-infrastructure/peripherals"
)

const recordSize = 16

// Record is one bus access in a trace. Seq is positional: the writer does
// not store it, the reader numbers records from zero as they are decoded.
type Record struct {
	Seq     uint64                  `xml:",attr"`
	Kind    peripherals.AccessKind  `xml:",attr"`
	Width   peripherals.AccessWidth `xml:",attr"`
	Addr    uint64                  `xml:",attr"`
	Value   uint32                  `xml:",attr"`
	Handled bool                    `xml:",attr"`
}

func (r Record) String() string {
	return peripherals.Access{Kind: r.Kind, Width: r.Width, Addr: r.Addr, Value: r.Value, Handled: r.Handled}.String()
}

func (r Record) Record() (fields []string) {
	fields = append(fields, strconv.FormatUint(r.Seq, 10))
	fields = append(fields, r.Kind.String())
	fields = append(fields, r.Width.String())
	fields = append(fields, "0x"+strconv.FormatUint(r.Addr, 16))
	fields = append(fields, "0x"+strconv.FormatUint(uint64(r.Value), 16))
	fields = append(fields, strconv.FormatBool(r.Handled))

	return
}

func (r Record) Header() []string {
	return []string{"Seq", "Kind", "Width", "Addr", "Value", "Handled"}
}

func (r Record) encode(b []byte) {
	b[0] = byte(r.Kind)
	b[1] = byte(r.Width)
	b[2] = 0
	if r.Handled {
		b[2] = 1
	}
	b[3] = 0
	binary.LittleEndian.PutUint32(b[4:8], r.Value)
	binary.LittleEndian.PutUint64(b[8:16], r.Addr)
}

func decodeRecord(b []byte) (r Record) {
	r.Kind = peripherals.AccessKind(b[0])
	r.Width = peripherals.AccessWidth(b[1])
	r.Handled = b[2]&1 != 0
	r.Value = binary.LittleEndian.Uint32(b[4:8])
	r.Addr = binary.LittleEndian.Uint64(b[8:16])
	return
}
