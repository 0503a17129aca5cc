// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/pkg/hidproto"
	"github.com/kwalker/hidbridge/pkg/hidscript"
)

var (
	sendScriptPath string
	sendTimeout    int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one or more command frames and report the resulting ACKs",
	Long: `Frames and transmits HID bridge command packets, then waits for a single
ACK byte per frame before exiting.

Without --script, send transmits the frames named as positional arguments
(mouse_move, mouse_click, key_write, hotkey, ctrl_c, ...). With --script, it
loads a CBOR-encoded pkg/hidscript.Script and replays every step in order,
the scripted-test-harness equivalent of packet_test's single-shot
connectivity check.

Exit codes:
  0 - every frame ACKed with ACK_SUCCESS
  1 - a frame received a non-success ACK
  2 - connection or timeout error`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendScriptPath, "script", "", "Path to a CBOR-encoded hidscript.Script file")
	sendCmd.Flags().IntVar(&sendTimeout, "timeout", 5, "Timeout in seconds to wait for each ACK")
}

func runSend(cmd *cobra.Command, args []string) error {
	var frames []hidscript.Frame

	if sendScriptPath != "" {
		data, err := os.ReadFile(sendScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read script: %v\n", err)
			os.Exit(2)
		}
		script, err := hidscript.UnmarshalScript(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to decode script: %v\n", err)
			os.Exit(2)
		}
		frames, err = script.Expand()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to expand script %q: %v\n", script.Name, err)
			os.Exit(2)
		}
		fmt.Printf("hidbridge - Send (script %q, %d frames)\n", script.Name, len(frames))
	} else {
		if len(args) == 0 {
			return fmt.Errorf("either --script or at least one action argument is required")
		}
		var err error
		frames, err = framesFromArgs(args)
		if err != nil {
			return err
		}
		fmt.Printf("hidbridge - Send (%d frames)\n", len(frames))
	}

	conn, connInfo, err := openTarget(primaryTarget())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()
	fmt.Printf("Connection: %s\n\n", connInfo)

	ackCh := make(chan byte, 1)
	errCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := conn.Read(buf); err != nil {
				errCh <- err
				return
			}
			ackCh <- buf[0]
		}
	}()

	failures := 0
	for i, f := range frames {
		if _, err := conn.Write(f); err != nil {
			fmt.Fprintf(os.Stderr, "write error on frame %d: %v\n", i, err)
			os.Exit(2)
		}

		select {
		case ack := <-ackCh:
			fmt.Printf("frame %d: ACK %s\n", i, hidproto.Ack(ack))
			if ack != byte(hidproto.AckSuccess) {
				failures++
			}
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "read error on frame %d: %v\n", i, err)
			os.Exit(2)
		case <-time.After(time.Duration(sendTimeout) * time.Second):
			fmt.Fprintf(os.Stderr, "TIMEOUT waiting for ACK on frame %d\n", i)
			os.Exit(2)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
	return nil
}

// framesFromArgs supports simple one-shot invocations like
// `hidbridge send print "hello"` alongside the --script batch mode.
func framesFromArgs(args []string) ([]hidscript.Frame, error) {
	step := hidscript.Step{Action: args[0]}
	for _, a := range args[1:] {
		if n, err := strconv.ParseUint(a, 0, 16); err == nil {
			step.Args = append(step.Args, n)
		} else {
			step.Args = append(step.Args, a)
		}
	}
	frames, err := step.Expand()
	if err != nil {
		return nil, err
	}
	return frames, nil
}
