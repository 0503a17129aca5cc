// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/transport"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream the firmware's textual log and stats reports",
	Long: `Continuously reads and displays the firmware's line-oriented log output:
per-command notices, interrupt servicing, and the 30-second stats reports.

Supports both serial and WebSocket connections, and reuses --log-port/
--log-baud when the log stream rides a link separate from the primary
command/ACK link.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openTarget(auxTarget())
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("hidbridge - Log Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		fmt.Println(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		if err == transport.ErrConnectionClosed {
			fmt.Println("Connection closed")
			return nil
		}
		return fmt.Errorf("read error: %w", err)
	}
	return nil
}
