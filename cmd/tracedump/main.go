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

// tracedump decodes a bus trace to a chosen output format, or replays it
// against a fresh machine to verify the recorded reads.
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/csv"
	"github.com/auxoncorp/renode-infrastructure/peripherals"
	"github.com/auxoncorp/renode-infrastructure/peripherals/s32kcrc"
	"github.com/auxoncorp/renode-infrastructure/sysbus"
	"github.com/auxoncorp/renode-infrastructure/trace"
)

var format = flag.String("format", "plain", "record output format: plain, csv, json, or xml")

var replay = flag.Bool("replay", false, "re-apply recorded writes to a fresh machine and verify recorded reads")
var base = flag.Uint64("base", 0x40032000, "bus address of the CRC block when replaying")

var version = flag.Bool("version", false, "display build date and commit hash")

// JSON, XML and CSV all implement this interface so we can simplify record
// output formatting.
type Encoder interface {
	Encode(interface{}) error
}

var encoder Encoder

type PlainEncoder struct{}

func (pe PlainEncoder) Encode(msg interface{}) (err error) {
	_, err = fmt.Println(msg)
	return
}

func EnvOverride() {
	flag.VisitAll(func(f *flag.Flag) {
		envName := "TRACEDUMP_" + strings.ToUpper(f.Name)
		flagValue := os.Getenv(envName)
		if flagValue != "" {
			if err := flag.Set(f.Name, flagValue); err != nil {
				log.Printf(
					"Environment variable %q failed to override flag %q with value %q: %q\n",
					envName, f.Name, flagValue, err,
				)
			} else {
				log.Printf("Environment variable %q overrides flag %q with %q\n", envName, f.Name, flagValue)
			}
		}
	})
}

func HandleFlags() {
	*format = strings.ToLower(*format)
	switch *format {
	case "plain":
		encoder = PlainEncoder{}
	case "csv":
		encoder = csv.NewEncoder(os.Stdout)
	case "json":
		encoder = json.NewEncoder(os.Stdout)
	case "xml":
		encoder = xml.NewEncoder(os.Stdout)
	default:
		log.Fatalf("unknown format %q", *format)
	}
}

// fatalTrace distinguishes a corrupt trace from plumbing failures.
func fatalTrace(err error) {
	switch errors.Cause(err) {
	case trace.ErrTruncated, trace.ErrCorruptBlock, trace.ErrMismatchChecksum:
		log.WithError(err).Fatal("trace is corrupt")
	}
	log.Fatal(err)
}

func dump(reader *trace.Reader) {
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fatalTrace(err)
		}

		if err := encoder.Encode(record); err != nil {
			log.Fatal("Error encoding record: ", err)
		}
	}
}

func replayTrace(reader *trace.Reader) {
	bus := sysbus.New(nil)
	if err := bus.Register("crc", *base, s32kcrc.New(nil)); err != nil {
		log.Fatal(err)
	}

	var reads, mismatches int
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatalTrace(err)
		}

		switch record.Kind {
		case peripherals.Write:
			switch record.Width {
			case peripherals.Byte:
				bus.WriteByte(record.Addr, byte(record.Value))
			case peripherals.Word:
				bus.WriteWord(record.Addr, uint16(record.Value))
			case peripherals.DoubleWord:
				bus.WriteDoubleWord(record.Addr, record.Value)
			}
		case peripherals.Read:
			var replayed uint32
			switch record.Width {
			case peripherals.Byte:
				replayed = uint32(bus.ReadByte(record.Addr))
			case peripherals.Word:
				replayed = uint32(bus.ReadWord(record.Addr))
			case peripherals.DoubleWord:
				replayed = bus.ReadDoubleWord(record.Addr)
			}

			reads++
			if replayed != record.Value {
				mismatches++
				log.WithFields(log.Fields{
					"seq":      record.Seq,
					"addr":     fmt.Sprintf("0x%08X", record.Addr),
					"recorded": fmt.Sprintf("0x%08X", record.Value),
					"replayed": fmt.Sprintf("0x%08X", replayed),
				}).Warn("read diverged")
			}
		}
	}

	if mismatches > 0 {
		log.WithFields(log.Fields{
			"reads":      reads,
			"mismatches": mismatches,
		}).Fatal("replay diverged from recorded reads")
	}
	log.WithField("reads", reads).Info("replay matched recorded reads")
}

var (
	buildTag   = "dev"     // v#.#.#
	buildDate  = "unknown" // date -u '+%Y-%m-%d'
	commitHash = "unknown" // git rev-parse HEAD
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s: [flags] tracefile\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	EnvOverride()
	flag.Parse()

	if *version {
		fmt.Println("Build Tag: ", buildTag)
		fmt.Println("Build Date:", buildDate)
		fmt.Println("Commit:    ", commitHash)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	HandleFlags()

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	reader, err := trace.NewReader(f)
	if err != nil {
		log.Fatal(err)
	}

	if *replay {
		replayTrace(reader)
		return
	}
	dump(reader)
}
