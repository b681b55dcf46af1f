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

// tracegen assembles a machine with a CRC block on the bus, drives a full
// checksum sequence through the registers and captures the bus traffic as a
// trace file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/crc"
	"github.com/auxoncorp/renode-infrastructure/peripherals/s32kcrc"
	"github.com/auxoncorp/renode-infrastructure/sysbus"
	"github.com/auxoncorp/renode-infrastructure/trace"
)

var outFilename = flag.String("out", "crc.trace", "trace output file")

var base = flag.Uint64("base", 0x40032000, "bus address of the CRC block")
var preset = flag.String("preset", "crc32", "catalog preset to drive through the registers")
var data = flag.String("data", "123456789", "payload accumulated by the block")

var version = flag.Bool("version", false, "display build date and commit hash")

var params crc.Params

func EnvOverride() {
	flag.VisitAll(func(f *flag.Flag) {
		envName := "TRACEGEN_" + strings.ToUpper(f.Name)
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
	var ok bool
	params, ok = crc.Presets[strings.ToLower(*preset)]
	if !ok {
		log.Fatalf("unknown preset %q", *preset)
	}
}

// ctrlWord maps parameters onto the CTRL register layout. Only XOR masks
// the register can express, none or all bits, are representable.
func ctrlWord(p crc.Params) (v uint32, err error) {
	if p.Width == crc.Width16 {
		v |= 1 << 24
	}
	switch p.XorOutput {
	case 0:
	case p.Width.Mask():
		v |= 1 << 26
	default:
		return 0, fmt.Errorf("xor mask 0x%08X not expressible in CTRL", p.XorOutput)
	}
	if p.ReflectOutput {
		v |= 2 << 28
	}
	if p.ReflectInput {
		v |= 2 << 30
	}
	return v, nil
}

var (
	buildTag   = "dev"     // v#.#.#
	buildDate  = "unknown" // date -u '+%Y-%m-%d'
	commitHash = "unknown" // git rev-parse HEAD
)

func main() {
	EnvOverride()
	flag.Parse()

	if *version {
		fmt.Println("Build Tag: ", buildTag)
		fmt.Println("Build Date:", buildDate)
		fmt.Println("Commit:    ", commitHash)
		os.Exit(0)
	}

	HandleFlags()

	ctrl, err := ctrlWord(params)
	if err != nil {
		log.Fatal(err)
	}

	outFile, err := os.Create(*outFilename)
	if err != nil {
		log.Fatal(err)
	}
	defer outFile.Close()

	writer, err := trace.NewWriter(outFile)
	if err != nil {
		log.Fatal(err)
	}

	bus := sysbus.New(nil)
	if err := bus.Register("crc", *base, s32kcrc.New(nil)); err != nil {
		log.Fatal(err)
	}
	bus.SetTracer(trace.NewTracer(writer, nil))

	// Configure, seed through the write-as-seed window, accumulate, read.
	bus.WriteDoubleWord(*base+0x4, params.Polynomial)
	bus.WriteDoubleWord(*base+0x8, ctrl|1<<25)
	bus.WriteDoubleWord(*base+0x0, params.Init)
	bus.WriteDoubleWord(*base+0x8, ctrl)
	for _, b := range []byte(*data) {
		bus.WriteByte(*base+0x0, b)
	}
	checksum := bus.ReadDoubleWord(*base + 0x0)

	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}

	expected, err := crc.Checksum(params, []byte(*data))
	if err != nil {
		log.Fatal(err)
	}
	if checksum != expected {
		log.WithFields(log.Fields{
			"bus":    fmt.Sprintf("0x%08X", checksum),
			"direct": fmt.Sprintf("0x%08X", expected),
		}).Fatal("register checksum disagrees with direct computation")
	}

	log.WithFields(log.Fields{
		"preset":   strings.ToLower(*preset),
		"checksum": fmt.Sprintf("0x%08X", checksum),
		"out":      *outFilename,
	}).Info("trace captured")
}
