// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/hal"
	"github.com/kwalker/hidbridge/pkg/hidproto"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the command-processing core against a connected link",
	Long: `Starts the firmware's command-processing core (parser, queue, timed-action
executor, interrupt latch, stats reporter) against a serial or WebSocket
link, driving a logging-only HID backend rather than real USB HID hardware.

This is the host-mode counterpart to the on-device TinyGo build: the same
pkg/hidproto core runs either here, against hal.LoggingMouse/LoggingKeyboard
for demoing and integration testing, or on the microcontroller against
hal.USBMouse/USBKeyboard and a real GPIO interrupt.

The first Ctrl+C simulates the hardware safety-stop button (an interrupt
falling edge); a second Ctrl+C exits the process, mirroring a device that
needs a deliberate double-tap to fully power down mid-run.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openTarget(primaryTarget())
	if err != nil {
		return err
	}
	defer conn.Close()

	logOut := io.Writer(os.Stdout)
	logSinkInfo := "stdout"
	if logPortName != "" {
		auxConn, auxInfo, err := openTarget(auxTarget())
		if err != nil {
			return err
		}
		defer auxConn.Close()
		logOut = auxConn
		logSinkInfo = auxInfo
	}

	fmt.Printf("hidbridge - Core Runner\n")
	fmt.Printf("Primary link: %s\n", connInfo)
	fmt.Printf("Log sink: %s\n", logSinkInfo)
	fmt.Printf("Press Ctrl+C to trigger the safety-stop interrupt, twice to exit\n\n")

	clock := hidproto.NewSystemClock()
	mouse := hal.NewLoggingMouse(logOut)
	keyboard := hal.NewLoggingKeyboard(logOut)
	core := hidproto.NewCore(mouse, keyboard, conn, logOut, clock)
	core.Boot()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	interrupts := 0
	go func() {
		for range sigCh {
			interrupts++
			if interrupts >= 2 {
				os.Exit(0)
			}
			core.Interrupt().OnFallingEdge(clock.NowMillis())
		}
	}()

	readErrCh := make(chan error, 1)
	byteCh := make(chan byte, 256)
	go func() {
		buf := make([]byte, 128)
		for {
			n, err := conn.Read(buf)
			for i := 0; i < n; i++ {
				byteCh <- buf[i]
			}
			if err != nil {
				readErrCh <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case b := <-byteCh:
			core.FeedByte(b)
		case err := <-readErrCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		case <-ticker.C:
			core.Tick()
		}
	}
}
