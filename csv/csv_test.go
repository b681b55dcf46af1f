package csv

import (
	"bytes"
	"encoding/csv"
	"runtime"
	"strings"
	"testing"

	"golang.org/x/xerrors"
)

func TestRecorderNil(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := Encoder{w: csv.NewWriter(buf)}

	if err := enc.Encode(nil); err == nil {
		t.Fatalf("%+v\n", err)
	}
}

type Msg struct{}

func (m Msg) Record() []string {
	return []string{}
}

func TestRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := Encoder{w: csv.NewWriter(buf)}

	if err := enc.Encode(Msg{}); err != nil {
		t.Fatalf("%+v\n", err)
	}
}

type NonRecorder struct{}

func TestNonRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := Encoder{w: csv.NewWriter(buf)}

	err := enc.Encode(NonRecorder{})

	var runtimeErr runtime.Error
	if !xerrors.As(err, &runtimeErr) {
		t.Fatalf("%+v\n", runtimeErr)
	}
}

type HeadedMsg struct {
	Addr string
}

func (m HeadedMsg) Record() []string {
	return []string{m.Addr}
}

func (m HeadedMsg) Header() []string {
	return []string{"Addr"}
}

// The header row appears exactly once, before the first record.
func TestHeaderRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := NewEncoder(buf)

	if err := enc.Encode(HeadedMsg{"0x1000"}); err != nil {
		t.Fatalf("%+v\n", err)
	}
	if err := enc.Encode(HeadedMsg{"0x1004"}); err != nil {
		t.Fatalf("%+v\n", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || lines[0] != "Addr" || lines[1] != "0x1000" || lines[2] != "0x1004" {
		t.Fatalf("unexpected output: %q\n", buf.String())
	}
}
