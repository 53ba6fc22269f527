// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/atelier-foundation/atelier/lib/process"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "launch":
		err = runLaunch(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "status":
		err = runStatus(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		process.Fatal(err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: atelier-launch <command> [flags]

commands:
  launch    submit a session launch from a JSONC spec file
  list      list running sessions
  status    report launcher health and binary identity

run 'atelier-launch <command> --help' for command flags
`)
}
