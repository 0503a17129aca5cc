// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/hal"
	"github.com/kwalker/hidbridge/pkg/hidproto"
	"github.com/kwalker/hidbridge/pkg/hidscript"
)

var simulateScriptPath string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the core against an in-memory loopback, no hardware or link required",
	Long: `Runs pkg/hidproto.Core entirely in-process against a logging HID backend,
feeding it the frames from a CBOR-encoded pkg/hidscript.Script and printing
every ACK and HID call as it happens.

Useful for demoing the protocol's behavior (queueing, timed actions,
interrupt servicing) without wiring a device or opening any connection.`,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().StringVar(&simulateScriptPath, "script", "", "Path to a CBOR-encoded hidscript.Script file")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateScriptPath == "" {
		return fmt.Errorf("--script is required")
	}

	data, err := os.ReadFile(simulateScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	script, err := hidscript.UnmarshalScript(data)
	if err != nil {
		return fmt.Errorf("failed to decode script: %w", err)
	}
	frames, err := script.Expand()
	if err != nil {
		return fmt.Errorf("failed to expand script %q: %w", script.Name, err)
	}

	fmt.Printf("hidbridge - Simulate (script %q, %d frames)\n\n", script.Name, len(frames))

	mouse := hal.NewLoggingMouse(os.Stdout)
	keyboard := hal.NewLoggingKeyboard(os.Stdout)
	var ackOut bytes.Buffer
	clock := hidproto.NewFakeClock(0)
	core := hidproto.NewCore(mouse, keyboard, &ackOut, os.Stdout, clock)
	core.Boot()

	for i, f := range frames {
		ackOut.Reset()
		for _, b := range f {
			core.FeedByte(b)
		}
		for core.QueueLen() > 0 || core.TimedActionActive() {
			clock.Advance(1)
			core.Tick()
		}
		ack := hidproto.Ack(0)
		if b := ackOut.Bytes(); len(b) > 0 {
			ack = hidproto.Ack(b[len(b)-1])
		}
		fmt.Printf("frame %d: ACK %s\n", i, ack)
	}

	return nil
}
