// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build tinygo

package hal

import (
	"machine"
	"machine/usb/hid/keyboard"
	"machine/usb/hid/mouse"

	"github.com/kwalker/hidbridge/pkg/hidproto"
	"tinygo.org/x/drivers/ws2812"
)

// USBMouse drives the real USB HID mouse report descriptor via TinyGo's
// machine/usb/hid/mouse. Grounded on the GPIO/UART handling style of
// Nifri2-proto-dispatch's RunDispatcher, adapted from a radio-command
// dispatcher to a direct HID report driver.
type USBMouse struct {
	dev mouse.Mouse
}

// NewUSBMouse configures the on-device USB mouse endpoint.
func NewUSBMouse() *USBMouse {
	return &USBMouse{dev: mouse.New()}
}

func (m *USBMouse) Move(x, y, wheel int8) {
	m.dev.Move(int(x), int(y))
	if wheel != 0 {
		m.dev.Wheel(int(wheel))
	}
}

func (m *USBMouse) Press(button uint8) {
	m.dev.Press(mouse.Button(button))
}

func (m *USBMouse) Release(button uint8) {
	m.dev.Release(mouse.Button(button))
}

func (m *USBMouse) Click(button uint8) {
	m.dev.Press(mouse.Button(button))
	m.dev.Release(mouse.Button(button))
}

// USBKeyboard drives the real USB HID keyboard report descriptor.
type USBKeyboard struct {
	dev keyboard.Keyboard
}

// NewUSBKeyboard configures the on-device USB keyboard endpoint.
func NewUSBKeyboard() *USBKeyboard {
	return &USBKeyboard{dev: keyboard.New()}
}

func (k *USBKeyboard) Press(key uint8)   { k.dev.Down(keyboard.Keycode(key)) }
func (k *USBKeyboard) Release(key uint8) { k.dev.Up(keyboard.Keycode(key)) }
func (k *USBKeyboard) Write(key uint8) {
	k.dev.Down(keyboard.Keycode(key))
	k.dev.Up(keyboard.Keycode(key))
}
func (k *USBKeyboard) ReleaseAll() { k.dev.Up(keyboard.Keycode(0)) }

// StatusLED drives a single WS2812 pixel to reflect the pipeline's high
// level state (idle/busy/interrupted), the on-device analog of the log
// sink's textual notices.
type StatusLED struct {
	dev ws2812.Device
}

// NewStatusLED configures a WS2812 status pixel on pin.
func NewStatusLED(pin machine.Pin) *StatusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &StatusLED{dev: ws2812.New(pin)}
}

func (s *StatusLED) Idle()        { s.dev.WriteByte(0x00); s.dev.WriteByte(0x08); s.dev.WriteByte(0x00) }
func (s *StatusLED) Busy()        { s.dev.WriteByte(0x08); s.dev.WriteByte(0x08); s.dev.WriteByte(0x00) }
func (s *StatusLED) Interrupted() { s.dev.WriteByte(0x08); s.dev.WriteByte(0x00); s.dev.WriteByte(0x00) }

// PanicButton wires a GPIO pin to a hidproto.InterruptLatch via a true
// falling-edge interrupt, per the debounce discipline of §4.5/§9. The
// pin-polling loop in Nifri2-proto-dispatch's RunDispatcher informed the
// debounce arithmetic but not the wiring: this uses SetInterrupt instead
// of a polling goroutine, since the spec requires a real ISR.
type PanicButton struct {
	pin   machine.Pin
	latch *hidproto.InterruptLatch
	clock hidproto.Clock
}

// NewPanicButton configures pin as a pulled-up input and arms a
// falling-edge interrupt that calls latch.OnFallingEdge.
func NewPanicButton(pin machine.Pin, latch *hidproto.InterruptLatch, clock hidproto.Clock) *PanicButton {
	b := &PanicButton{pin: pin, latch: latch, clock: clock}
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		b.latch.OnFallingEdge(b.clock.NowMillis())
	})
	return b
}
