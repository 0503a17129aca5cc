// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hal provides concrete hidproto.MouseDriver/KeyboardDriver
// backends: a logging-only implementation for hosts without attached USB
// HID hardware, and (build-tag gated) a real TinyGo hardware backend.
package hal

import (
	"fmt"
	"io"

	"github.com/kwalker/hidbridge/pkg/hidproto"
)

// LoggingMouse and LoggingKeyboard satisfy hidproto's HID interfaces by
// writing a description of every call to out, instead of driving actual
// USB HID reports. Used by `hidbridge simulate` and by hosts running the
// firmware core off-target for demoing and manual exercising.
type LoggingMouse struct {
	out io.Writer
}

// NewLoggingMouse returns a MouseDriver that logs every call to out.
func NewLoggingMouse(out io.Writer) *LoggingMouse {
	return &LoggingMouse{out: out}
}

func (m *LoggingMouse) Move(x, y, wheel int8) {
	fmt.Fprintf(m.out, "[hid] mouse move x=%d y=%d wheel=%d\n", x, y, wheel)
}

func (m *LoggingMouse) Press(button uint8) {
	fmt.Fprintf(m.out, "[hid] mouse press %s\n", hidproto.ButtonName(button))
}

func (m *LoggingMouse) Release(button uint8) {
	fmt.Fprintf(m.out, "[hid] mouse release %s\n", hidproto.ButtonName(button))
}

func (m *LoggingMouse) Click(button uint8) {
	fmt.Fprintf(m.out, "[hid] mouse click %s\n", hidproto.ButtonName(button))
}

// LoggingKeyboard is the keyboard counterpart of LoggingMouse.
type LoggingKeyboard struct {
	out io.Writer
}

// NewLoggingKeyboard returns a KeyboardDriver that logs every call to out.
func NewLoggingKeyboard(out io.Writer) *LoggingKeyboard {
	return &LoggingKeyboard{out: out}
}

func (k *LoggingKeyboard) Press(key uint8) {
	fmt.Fprintf(k.out, "[hid] key press %s (0x%02X)\n", hidproto.KeyName(key), key)
}

func (k *LoggingKeyboard) Release(key uint8) {
	fmt.Fprintf(k.out, "[hid] key release %s (0x%02X)\n", hidproto.KeyName(key), key)
}

func (k *LoggingKeyboard) Write(key uint8) {
	fmt.Fprintf(k.out, "[hid] key write %s (0x%02X)\n", hidproto.KeyName(key), key)
}

func (k *LoggingKeyboard) ReleaseAll() {
	fmt.Fprintln(k.out, "[hid] key release_all")
}
