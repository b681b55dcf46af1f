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

// crcsum checksums files or standard input with a catalog preset or fully
// custom parameters.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/auxoncorp/renode-infrastructure/crc"
)

var preset = flag.String("preset", "", "catalog preset to use, overrides the parameter flags")

var poly = flag.Uint64("poly", 0x04C11DB7, "generator polynomial")
var width = flag.Uint("width", 32, "register width in bits: 16 or 32")
var seed = flag.Uint64("init", 0xFFFFFFFF, "initial register value")
var refIn = flag.Bool("refin", true, "transpose bits of each input byte")
var refOut = flag.Bool("refout", true, "transpose the final register")
var xorOut = flag.Uint64("xorout", 0xFFFFFFFF, "final xor mask")

var version = flag.Bool("version", false, "display build date and commit hash")

var params crc.Params

func presetNames() string {
	var names []string
	for name := range crc.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func EnvOverride() {
	flag.VisitAll(func(f *flag.Flag) {
		envName := "CRCSUM_" + strings.ToUpper(f.Name)
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
	if *preset != "" {
		var ok bool
		params, ok = crc.Presets[strings.ToLower(*preset)]
		if !ok {
			log.Fatalf("unknown preset %q, have: %s", *preset, presetNames())
		}
		return
	}

	params = crc.Params{
		Polynomial:    uint32(*poly),
		Width:         crc.Width(*width),
		ReflectInput:  *refIn,
		ReflectOutput: *refOut,
		Init:          uint32(*seed),
		XorOutput:     uint32(*xorOut),
	}
}

func checksum(name string, r io.Reader) error {
	engine, err := crc.New(params)
	if err != nil {
		return err
	}
	if _, err := io.Copy(engine, r); err != nil {
		return err
	}

	fmt.Printf("%0*x  %s\n", int(params.Width)/4, engine.Value(), name)
	return nil
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

	if flag.NArg() == 0 {
		if err := checksum("-", os.Stdin); err != nil {
			log.Fatal(err)
		}
		return
	}

	for _, name := range flag.Args() {
		f, err := os.Open(name)
		if err != nil {
			log.Fatal(err)
		}
		err = checksum(name, f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
}
