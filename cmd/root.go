// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kwalker/hidbridge/transport"
)

var (
	// Primary link flags (command/ACK byte stream).
	portName string
	baudRate int

	// Auxiliary link flags (log/stats byte stream).
	logPortName string
	logBaudRate int

	// WebSocket connection flags, shared by both links.
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "hidbridge",
	Short: "USB-HID bridge firmware host tooling",
	Long: `hidbridge drives and inspects the USB-HID bridge firmware's command
protocol: a SYNC/LEN/PAYLOAD/CRC framed link carrying mouse and keyboard
commands to the device, and a secondary link carrying the firmware's
textual log and periodic stats reports.

Connection modes (apply independently to the primary and auxiliary links):
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the HIDBRIDGE_PASSWORD
environment variable, or prompted interactively if not set. There is
intentionally no --password flag, to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Primary serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Primary link baud rate (serial only)")

	rootCmd.PersistentFlags().StringVar(&logPortName, "log-port", "", "Auxiliary (log) serial port device")
	rootCmd.PersistentFlags().IntVar(&logBaudRate, "log-baud", 115200, "Auxiliary link baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://); also used for the auxiliary link when --log-port is unset")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// primaryTarget builds a transport.Target for the command/ACK link from
// the persistent connection flags.
func primaryTarget() transport.Target {
	return transport.Target{
		Port:        portName,
		Baud:        baudRate,
		URL:         wsURL,
		Username:    wsUsername,
		NoSSLVerify: wsNoSSLVerify,
		Role:        transport.RolePrimary,
	}
}

// auxTarget builds a transport.Target for the log/stats link. When a
// separate --log-port isn't given it falls back to the primary link's
// settings (serial port or WebSocket URL), since a single WebSocket bridge
// commonly multiplexes both streams over one socket in the bridge-server
// topology.
func auxTarget() transport.Target {
	if logPortName != "" {
		return transport.Target{Port: logPortName, Baud: logBaudRate, Role: transport.RoleAuxiliary}
	}
	t := primaryTarget()
	t.Role = transport.RoleAuxiliary
	return t
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
