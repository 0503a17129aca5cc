// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hidscript builds host-side wire frames for the firmware's
// command protocol and reads/writes CBOR-encoded batch test scripts.
// Grounded on original_source/module/arduinoHID.py's convenience wrapper
// surface (hotkey, ctrl_c, mouse_press_timed, ...), reimplemented as pure
// frame builders rather than a stateful serial client.
package hidscript

import "github.com/kwalker/hidbridge/pkg/hidproto"

// Frame is a single command frame's fully-formed wire bytes
// (SYNC|LEN|PAYLOAD|CRC), ready for transmission on the primary link.
type Frame []byte

func build(opcode hidproto.Opcode, params ...byte) Frame {
	payload := append([]byte{byte(opcode)}, params...)
	out := make([]byte, 0, len(payload)+3)
	out = append(out, hidproto.SyncByte, byte(len(payload)))
	out = append(out, payload...)
	out = append(out, hidproto.CalculateCRC(payload))
	return out
}

func be16(v uint16) (hi, lo byte) {
	return byte(v >> 8), byte(v)
}

// MouseMove frames a relative pointer move with wheel delta.
func MouseMove(x, y, wheel int8) Frame {
	return build(hidproto.OpMouseMove, byte(x), byte(y), byte(wheel))
}

// MousePress frames a mouse button press (bits may be OR'd together).
func MousePress(button uint8) Frame {
	return build(hidproto.OpMousePress, button)
}

// MouseRelease frames a mouse button release.
func MouseRelease(button uint8) Frame {
	return build(hidproto.OpMouseRelease, button)
}

// MouseClick frames a press-then-release click.
func MouseClick(button uint8) Frame {
	return build(hidproto.OpMouseClick, button)
}

// MousePressTimed frames a firmware-timed button hold.
func MousePressTimed(button uint8, durationMs uint16) Frame {
	hi, lo := be16(durationMs)
	return build(hidproto.OpMousePressTime, button, hi, lo)
}

// KeyPress frames a keyboard key-down.
func KeyPress(key uint8) Frame {
	return build(hidproto.OpKBPress, key)
}

// KeyRelease frames a keyboard key-up.
func KeyRelease(key uint8) Frame {
	return build(hidproto.OpKBRelease, key)
}

// KeyWrite frames a press-then-release of a single key.
func KeyWrite(key uint8) Frame {
	return build(hidproto.OpKBWrite, key)
}

// KeyReleaseAll frames a release of every held key.
func KeyReleaseAll() Frame {
	return build(hidproto.OpKBReleaseAll)
}

// KeyPressTimed frames a firmware-timed key hold.
func KeyPressTimed(key uint8, durationMs uint16) Frame {
	hi, lo := be16(durationMs)
	return build(hidproto.OpKBPressTimed, key, hi, lo)
}

// PauseLog frames a control-plane logging pause.
func PauseLog() Frame { return build(hidproto.OpPauseLog) }

// ResumeLog frames a control-plane logging resume.
func ResumeLog() Frame { return build(hidproto.OpResumeLog) }

// ClearQueue frames a control-plane queue clear.
func ClearQueue() Frame { return build(hidproto.OpClearQueue) }

// Print splits text into KB_PRINT frames no larger than the protocol's
// max payload, mirroring arduinoHID.py's keyboard_print chunking.
func Print(text string) []Frame {
	const chunkSize = hidproto.MaxPayloadLen - 1 // opcode byte + up to this many chars
	var frames []Frame
	for i := 0; i < len(text); i += chunkSize {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		frames = append(frames, build(hidproto.OpKBPrint, []byte(text[i:end])...))
	}
	if len(frames) == 0 {
		frames = append(frames, build(hidproto.OpKBPrint, []byte{}...))
	}
	return frames
}

// Type frames one KeyWrite per rune of text, mirroring keyboard_type's
// per-character delivery instead of Print's single-frame chunking.
func Type(text string) []Frame {
	frames := make([]Frame, 0, len(text))
	for _, r := range text {
		frames = append(frames, KeyWrite(uint8(r)))
	}
	return frames
}

// Hotkey frames a press-then-release sequence for a chord of keys, in the
// order given, releasing in reverse order (mirrors arduinoHID.py's
// hotkey).
func Hotkey(keys ...uint8) []Frame {
	frames := make([]Frame, 0, len(keys)*2)
	for _, k := range keys {
		frames = append(frames, KeyPress(k))
	}
	for i := len(keys) - 1; i >= 0; i-- {
		frames = append(frames, KeyRelease(keys[i]))
	}
	return frames
}

// CtrlC, CtrlV, CtrlX, CtrlZ, and CtrlA are the common clipboard/undo
// hotkeys arduinoHID.py exposed as named shortcuts.
func CtrlC() []Frame { return Hotkey(hidproto.KeyLeftCtrl, 'c') }
func CtrlV() []Frame { return Hotkey(hidproto.KeyLeftCtrl, 'v') }
func CtrlX() []Frame { return Hotkey(hidproto.KeyLeftCtrl, 'x') }
func CtrlZ() []Frame { return Hotkey(hidproto.KeyLeftCtrl, 'z') }
func CtrlA() []Frame { return Hotkey(hidproto.KeyLeftCtrl, 'a') }
