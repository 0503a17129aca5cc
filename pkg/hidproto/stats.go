// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

import (
	"fmt"
	"sync/atomic"
)

// Stats tracks the three counters of §3 and formats the periodic report
// of §4.6. Shape grounded on the teacher's pkg/helios_protocol/statistics.go
// (Update/String/Reset), narrowed to this protocol's counter set and
// success-rate convention.
type Stats struct {
	packetsTotal atomic.Uint64
	acksSuccess  atomic.Uint64
	errorsTotal  atomic.Uint64
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats {
	return &Stats{}
}

// RecordPacket increments packets_total (one per frame that completes
// parsing, valid or not).
func (s *Stats) RecordPacket() {
	s.packetsTotal.Add(1)
}

// RecordAckSuccess increments acks_success.
func (s *Stats) RecordAckSuccess() {
	s.acksSuccess.Add(1)
}

// RecordError increments errors_total.
func (s *Stats) RecordError() {
	s.errorsTotal.Add(1)
}

// Snapshot is an immutable copy of the counters at one instant.
type Snapshot struct {
	PacketsTotal uint64
	AcksSuccess  uint64
	ErrorsTotal  uint64
	QueueSize    int
	UptimeMs     int64
}

// SuccessRate returns acks_success/packets_total, or false if packets_total
// is zero ("N/A" per §4.6).
func (s Snapshot) SuccessRate() (rate float64, ok bool) {
	if s.PacketsTotal == 0 {
		return 0, false
	}
	return float64(s.AcksSuccess) / float64(s.PacketsTotal), true
}

// String formats the multi-line statistics block emitted every 30s.
func (s Snapshot) String() string {
	uptime := s.UptimeMs / 1000
	h := uptime / 3600
	m := (uptime % 3600) / 60
	sec := uptime % 60

	rateStr := "N/A"
	if rate, ok := s.SuccessRate(); ok {
		rateStr = fmt.Sprintf("%.1f%%", rate*100)
	}

	return fmt.Sprintf(
		"=== Stats (uptime %dh%02dm%02ds) ===\n"+
			"Packets: %d  Acks: %d  Errors: %d  Success: %s  Queue: %d/%d\n"+
			"==============================\n",
		h, m, sec, s.PacketsTotal, s.AcksSuccess, s.ErrorsTotal, rateStr, s.QueueSize, QueueCapacity)
}

// Reset zeroes all counters, called after each emission (§3).
func (s *Stats) Reset() {
	s.packetsTotal.Store(0)
	s.acksSuccess.Store(0)
	s.errorsTotal.Store(0)
}

// Snapshot captures the current counters plus caller-supplied queue depth
// and uptime, without resetting.
func (s *Stats) Snapshot(queueSize int, uptimeMs int64) Snapshot {
	return Snapshot{
		PacketsTotal: s.packetsTotal.Load(),
		AcksSuccess:  s.acksSuccess.Load(),
		ErrorsTotal:  s.errorsTotal.Load(),
		QueueSize:    queueSize,
		UptimeMs:     uptimeMs,
	}
}
