// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// hidbridge - USB-HID bridge firmware host tooling
//
// Runs and inspects the command-processing core over serial or WebSocket,
// with subcommands for running, sending, monitoring, and bridging.

package main

import (
	"fmt"
	"os"

	"github.com/kwalker/hidbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
