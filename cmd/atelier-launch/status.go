// Copyright 2026 The Atelier Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/atelier-foundation/atelier/lib/ipc"
)

func runList(args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ExitOnError)
	resolveClient := socketFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	response, err := resolveClient().session(ipc.Request{Action: ipc.ActionListSessions})
	if err != nil {
		return err
	}
	if !response.OK {
		return fmt.Errorf("list-sessions failed: %s", response.Error)
	}

	if len(response.Sessions) == 0 {
		fmt.Println("no running sessions")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SESSION\tPID\tUSER\tPROJECT")
	for _, entry := range response.Sessions {
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n",
			entry.SessionID, entry.PID, entry.Username, entry.Project)
	}
	return writer.Flush()
}

func runStatus(args []string) error {
	flags := pflag.NewFlagSet("status", pflag.ExitOnError)
	resolveClient := socketFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}

	response, err := resolveClient().session(ipc.Request{Action: ipc.ActionStatus})
	if err != nil {
		return err
	}
	if !response.OK {
		return fmt.Errorf("status failed: %s", response.Error)
	}

	fmt.Printf("binary hash:     %s\n", response.BinaryHash)
	fmt.Printf("active children: %t\n", response.ActiveChildren)
	return nil
}
