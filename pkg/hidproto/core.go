// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

import (
	"fmt"
	"io"
)

// FirmwareVersion is reported in the boot banner (supplemented from the
// original firmware's Logger::begin).
const FirmwareVersion = "1.0.0"

// LogLevel gates diagnostic verbosity, supplementing the original
// firmware's CURRENT_LOG_LEVEL. Errors and unconditional notices (log
// state changes, interrupt servicing, boot) are never gated.
type LogLevel int

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

// Core wires components A-G into the firmware's command-processing
// pipeline (§2 data flow: bytes -> Parser -> dispatch -> Queue -> Executor
// -> HID, with the interrupt controller able to short-circuit any of it).
// It owns no goroutines and blocks on nothing; FeedByte and Tick are each
// meant to be called from a single cooperative main loop.
type Core struct {
	parser    *Parser
	queue     *Queue
	timed     TimedAction
	interrupt *InterruptLatch
	stats     *Stats
	ack       *AckChannel
	mouse     MouseDriver
	keyboard  KeyboardDriver
	logOut    io.Writer
	clock     Clock

	loggingEnabled bool
	logLevel       LogLevel
	lastStatsMs    int64
	bootMs         int64
}

// NewCore assembles a Core from its external collaborators: the HID
// driver, the primary link's ACK write side, the auxiliary log sink, and
// a millisecond Clock.
func NewCore(mouse MouseDriver, keyboard KeyboardDriver, ackOut, logOut io.Writer, clock Clock) *Core {
	stats := NewStats()
	c := &Core{
		parser:         NewParser(),
		queue:          NewQueue(),
		interrupt:      NewInterruptLatch(),
		stats:          stats,
		mouse:          mouse,
		keyboard:       keyboard,
		logOut:         logOut,
		clock:          clock,
		loggingEnabled: true,
		logLevel:       LogDebug,
	}
	c.ack = NewAckChannel(ackOut, stats)
	c.bootMs = clock.NowMillis()
	c.lastStatsMs = c.bootMs
	return c
}

// Interrupt returns the latch the platform's edge-interrupt handler
// should call OnFallingEdge on.
func (c *Core) Interrupt() *InterruptLatch {
	return c.interrupt
}

// Stats returns the counters, for a monitor/dashboard to read out-of-band.
func (c *Core) Stats() *Stats {
	return c.stats
}

// QueueLen reports the current queue depth, for stats/dashboard display.
func (c *Core) QueueLen() int {
	return c.queue.Len()
}

// TimedActionActive reports whether a hold is currently in flight.
func (c *Core) TimedActionActive() bool {
	return c.timed.Active()
}

// Boot emits the startup banner, matching the original firmware's
// Logger::begin.
func (c *Core) Boot() {
	c.log(LogInfo, true, "==================================")
	c.log(LogInfo, true, "HID Bridge Firmware Started")
	c.log(LogInfo, true, "Firmware Version: %s | Boot: %dms", FirmwareVersion, c.bootMs)
	c.log(LogInfo, true, "==================================")
}

// FeedByte drives one byte of the primary link through the frame parser
// and, on a completed frame, the dispatcher. Bounded work, never blocks.
func (c *Core) FeedByte(b byte) {
	payload, ferr := c.parser.DecodeByte(b)
	if ferr == nil && payload == nil {
		return
	}

	c.stats.RecordPacket()

	if ferr != nil {
		c.stats.RecordError()
		var ack Ack
		switch ferr.Kind {
		case ErrCRCMismatch:
			ack = AckCRCError
		default: // ErrInvalidLength
			ack = AckParamError
		}
		c.log(LogWarn, false, "%s: %s", ferr.Kind, ferr.Message)
		c.ack.Send(ack)
		return
	}

	c.dispatch(payload)
}

// dispatch partitions a CRC-valid payload into the control-plane fast
// path (§4.3, executed synchronously) or the data-plane admission path
// (queued for the executor).
func (c *Core) dispatch(payload []byte) {
	opcode := Opcode(payload[0])
	params := payload[1:]

	if isControlPlane(opcode) {
		c.executeControlPlane(opcode)
		c.ack.Send(AckSuccess)
		return
	}

	if c.queue.Full() {
		c.stats.RecordError()
		c.log(LogWarn, false, "%s: queue full, dropping %s frame", ErrQueueFull, OpcodeName(opcode))
		c.ack.Send(AckParamError)
		return
	}

	cmd := Command{
		Opcode:           opcode,
		Params:           append([]byte(nil), params...),
		EnqueueTimestamp: c.clock.NowMillis(),
	}
	c.queue.Push(cmd)
	c.ack.Send(AckSuccess)
}

// executeControlPlane runs a control-plane opcode synchronously, never
// touching the queue's contents except CLEAR_QUEUE's explicit empty.
func (c *Core) executeControlPlane(opcode Opcode) {
	switch opcode {
	case OpPauseLog:
		c.loggingEnabled = false
		c.log(LogInfo, true, "logging paused")
	case OpResumeLog:
		c.loggingEnabled = true
		c.log(LogInfo, true, "logging resumed")
	case OpClearQueue:
		c.queue.Clear()
		c.log(LogInfo, false, "queue cleared by host")
	}
}

// Tick advances the main loop by one cooperative step: service a pending
// interrupt, retire an expired timed action, and dispatch at most one
// queued command. It never blocks and performs bounded work only.
func (c *Core) Tick() {
	now := c.clock.NowMillis()

	if c.interrupt.Pending() {
		c.serviceInterrupt()
		now = c.clock.NowMillis()
	}

	if c.timed.Expired(now) {
		c.releaseTimedAction()
	}

	if !c.timed.Active() && !c.queue.Empty() && !c.interrupt.Pending() {
		if cmd, ok := c.queue.Pop(); ok {
			c.execute(cmd)
		}
	}

	c.maybeReportStats(now)
}

// serviceInterrupt runs the bounded safety-stop sequence of §4.5: log,
// drain, release everything, cancel any timed hold, and notify the host.
func (c *Core) serviceInterrupt() {
	c.log(LogWarn, true, "hardware interrupt: safety stop")

	c.queue.Clear()

	c.keyboard.ReleaseAll()
	c.mouse.Release(MouseAll)

	if c.timed.Active() {
		c.releaseTimedActionTarget()
		c.timed.Clear()
	}

	c.ack.Send(AckInterrupted)
	c.interrupt.Clear()
}

// releaseTimedAction retires a naturally-expired hold (not an interrupt).
func (c *Core) releaseTimedAction() {
	c.releaseTimedActionTarget()
	c.timed.Clear()
}

func (c *Core) releaseTimedActionTarget() {
	switch c.timed.Kind() {
	case TimedActionMouse:
		c.mouse.Release(c.timed.Target())
	case TimedActionKeyboard:
		c.keyboard.Release(c.timed.Target())
	}
}

// execute runs one dequeued data-plane command (§4.4). Arity is checked
// here; a mismatch drops the command silently save for a log entry, since
// the host already received its admission ACK.
func (c *Core) execute(cmd Command) {
	if !validateArity(cmd.Opcode, cmd.Params) {
		length, _, known := arity(cmd.Opcode)
		if !known {
			c.log(LogWarn, false, "%s: opcode 0x%02X", ErrInvalidCmd, uint8(cmd.Opcode))
		} else {
			c.log(LogWarn, false, "%s: %s needs %d bytes, got %d", ErrParamError, OpcodeName(cmd.Opcode), length, len(cmd.Params))
		}
		return
	}

	now := c.clock.NowMillis()

	switch cmd.Opcode {
	case OpMouseMove:
		x, y, wheel := int8(cmd.Params[0]), int8(cmd.Params[1]), int8(cmd.Params[2])
		c.log(LogDebug, false, "MOUSE_MOVE x=%d y=%d wheel=%d", x, y, wheel)
		c.mouse.Move(x, y, wheel)

	case OpMousePress:
		c.log(LogDebug, false, "MOUSE press %s", ButtonName(cmd.Params[0]))
		c.mouse.Press(cmd.Params[0])

	case OpMouseRelease:
		c.log(LogDebug, false, "MOUSE release %s", ButtonName(cmd.Params[0]))
		c.mouse.Release(cmd.Params[0])

	case OpMouseClick:
		c.log(LogDebug, false, "MOUSE click %s", ButtonName(cmd.Params[0]))
		c.mouse.Click(cmd.Params[0])

	case OpMousePressTime:
		button := cmd.Params[0]
		duration := be16(cmd.Params[1], cmd.Params[2])
		c.log(LogDebug, false, "MOUSE_TIMED hold %s for %dms", ButtonName(button), duration)
		c.mouse.Press(button)
		c.timed.Start(TimedActionMouse, button, now, int64(duration))

	case OpKBPress:
		c.log(LogDebug, false, "KEYBOARD press %s (0x%02X)", KeyName(cmd.Params[0]), cmd.Params[0])
		c.keyboard.Press(cmd.Params[0])

	case OpKBRelease:
		c.log(LogDebug, false, "KEYBOARD release %s (0x%02X)", KeyName(cmd.Params[0]), cmd.Params[0])
		c.keyboard.Release(cmd.Params[0])

	case OpKBWrite:
		c.log(LogDebug, false, "KEYBOARD write %s (0x%02X)", KeyName(cmd.Params[0]), cmd.Params[0])
		c.keyboard.Write(cmd.Params[0])

	case OpKBReleaseAll:
		c.log(LogDebug, false, "KB_RELEASE_ALL")
		c.keyboard.ReleaseAll()

	case OpKBPrint:
		c.log(LogDebug, false, "KB_PRINT %d bytes", len(cmd.Params))
		for _, b := range cmd.Params {
			if c.interrupt.Pending() {
				break
			}
			c.keyboard.Write(b)
		}

	case OpKBPressTimed:
		key := cmd.Params[0]
		duration := be16(cmd.Params[1], cmd.Params[2])
		c.log(LogDebug, false, "KB_TIMED hold %s (0x%02X) for %dms", KeyName(key), key, duration)
		c.keyboard.Press(key)
		c.timed.Start(TimedActionKeyboard, key, now, int64(duration))
	}
}

// maybeReportStats emits and resets the periodic statistics block once
// the 30s cadence has elapsed (§4.6).
func (c *Core) maybeReportStats(now int64) {
	if now-c.lastStatsMs < StatsIntervalMills {
		return
	}
	snap := c.stats.Snapshot(c.queue.Len(), now-c.bootMs)
	fmt.Fprint(c.logOut, snap.String())
	c.stats.Reset()
	c.lastStatsMs = now
}

// log writes a timestamped line to the auxiliary log sink. Unconditional
// messages bypass the logging_enabled toggle (§4.5, §9); all others are
// additionally gated by level.
func (c *Core) log(level LogLevel, unconditional bool, format string, args ...interface{}) {
	if !unconditional {
		if !c.loggingEnabled {
			return
		}
		if level > c.logLevel {
			return
		}
	}
	fmt.Fprintf(c.logOut, "[%dms] %s\n", c.clock.NowMillis(), fmt.Sprintf(format, args...))
}
