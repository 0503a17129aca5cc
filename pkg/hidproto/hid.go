// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

// MouseDriver is the external HID collaborator for pointer reports (§1,
// §6). Implementations translate these calls into USB HID mouse reports.
type MouseDriver interface {
	Move(x, y, wheel int8)
	Press(button uint8)
	Release(button uint8)
	Click(button uint8)
}

// KeyboardDriver is the external HID collaborator for keyboard reports.
type KeyboardDriver interface {
	Press(key uint8)
	Release(key uint8)
	Write(key uint8)
	ReleaseAll()
}
