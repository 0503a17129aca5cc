// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import "github.com/kwalker/hidbridge/transport"

// openTarget is a thin wrapper so subcommands share one call site for
// dialing a transport.Target, matching the teacher's single OpenConnection
// entry point.
func openTarget(t transport.Target) (transport.Connection, string, error) {
	return transport.Open(t)
}
