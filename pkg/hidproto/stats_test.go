// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

import (
	"strings"
	"testing"
)

func TestStats_CountersAccumulate(t *testing.T) {
	s := NewStats()
	s.RecordPacket()
	s.RecordPacket()
	s.RecordAckSuccess()
	s.RecordError()

	snap := s.Snapshot(0, 0)
	if snap.PacketsTotal != 2 {
		t.Errorf("PacketsTotal = %d, want 2", snap.PacketsTotal)
	}
	if snap.AcksSuccess != 1 {
		t.Errorf("AcksSuccess = %d, want 1", snap.AcksSuccess)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("ErrorsTotal = %d, want 1", snap.ErrorsTotal)
	}
}

func TestStats_ResetZeroesCounters(t *testing.T) {
	s := NewStats()
	s.RecordPacket()
	s.RecordAckSuccess()
	s.Reset()

	snap := s.Snapshot(0, 0)
	if snap.PacketsTotal != 0 || snap.AcksSuccess != 0 || snap.ErrorsTotal != 0 {
		t.Errorf("counters not zeroed after Reset: %+v", snap)
	}
}

func TestSnapshot_SuccessRate(t *testing.T) {
	tests := []struct {
		name    string
		packets uint64
		acks    uint64
		wantOK  bool
		wantPct float64
	}{
		{"no packets yields N/A", 0, 0, false, 0},
		{"all succeeded", 10, 10, true, 1.0},
		{"half succeeded", 10, 5, true, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Snapshot{PacketsTotal: tt.packets, AcksSuccess: tt.acks}
			rate, ok := snap.SuccessRate()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && rate != tt.wantPct {
				t.Errorf("rate = %v, want %v", rate, tt.wantPct)
			}
		})
	}
}

func TestSnapshot_StringFormatsUptimeAndNA(t *testing.T) {
	snap := Snapshot{UptimeMs: (3*3600 + 2*60 + 5) * 1000}
	out := snap.String()

	if !strings.Contains(out, "3h02m05s") {
		t.Errorf("expected uptime 3h02m05s in %q", out)
	}
	if !strings.Contains(out, "N/A") {
		t.Errorf("expected N/A success rate with zero packets, got %q", out)
	}
}

func TestSnapshot_StringIncludesQueueDepth(t *testing.T) {
	snap := Snapshot{QueueSize: 4}
	out := snap.String()
	if !strings.Contains(out, "4/16") {
		t.Errorf("expected queue depth 4/16 in %q", out)
	}
}
