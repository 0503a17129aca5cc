// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

import "testing"

func TestInterruptLatch_NotPendingInitially(t *testing.T) {
	l := NewInterruptLatch()
	if l.Pending() {
		t.Error("new latch should not be pending")
	}
}

func TestInterruptLatch_FallingEdgeSetsPending(t *testing.T) {
	l := NewInterruptLatch()
	l.OnFallingEdge(1000)
	if !l.Pending() {
		t.Error("OnFallingEdge should set pending")
	}
}

func TestInterruptLatch_DebouncesRapidEdges(t *testing.T) {
	l := NewInterruptLatch()
	l.OnFallingEdge(1000)
	l.Clear()

	l.OnFallingEdge(1000 + DebounceMillis - 1)
	if l.Pending() {
		t.Error("edge inside debounce window should be ignored")
	}
}

func TestInterruptLatch_AcceptsEdgeAfterDebounceWindow(t *testing.T) {
	l := NewInterruptLatch()
	l.OnFallingEdge(1000)
	l.Clear()

	l.OnFallingEdge(1000 + DebounceMillis + 1)
	if !l.Pending() {
		t.Error("edge after debounce window should set pending")
	}
}

func TestInterruptLatch_ClearResetsPending(t *testing.T) {
	l := NewInterruptLatch()
	l.OnFallingEdge(1000)
	l.Clear()
	if l.Pending() {
		t.Error("Clear should reset pending")
	}
}

func TestInterruptLatch_FirstEdgeAlwaysAccepted(t *testing.T) {
	l := NewInterruptLatch()
	l.OnFallingEdge(0)
	if !l.Pending() {
		t.Error("the very first edge must not be suppressed by debounce")
	}
}
