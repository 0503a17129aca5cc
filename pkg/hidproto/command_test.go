// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

import "testing"

func TestValidateArity(t *testing.T) {
	tests := []struct {
		name   string
		opcode Opcode
		params []byte
		want   bool
	}{
		{"MOUSE_MOVE exact 3", OpMouseMove, []byte{1, 2, 3}, true},
		{"MOUSE_MOVE too short", OpMouseMove, []byte{1, 2}, false},
		{"MOUSE_MOVE too long", OpMouseMove, []byte{1, 2, 3, 4}, false},
		{"MOUSE_PRESS exact 1", OpMousePress, []byte{MouseLeft}, true},
		{"MOUSE_PRESS empty", OpMousePress, nil, false},
		{"KB_RELEASE_ALL exact 0", OpKBReleaseAll, nil, true},
		{"KB_RELEASE_ALL with stray param", OpKBReleaseAll, []byte{1}, false},
		{"KB_PRINT variable, one byte", OpKBPrint, []byte{'a'}, true},
		{"KB_PRINT variable, many bytes", OpKBPrint, []byte("hello"), true},
		{"KB_PRINT rejects zero bytes", OpKBPrint, nil, false},
		{"PAUSE_LOG exact 0", OpPauseLog, nil, true},
		{"unknown opcode always invalid", Opcode(0x7F), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateArity(tt.opcode, tt.params); got != tt.want {
				t.Errorf("validateArity(%v, %v) = %v, want %v", tt.opcode, tt.params, got, tt.want)
			}
		})
	}
}

func TestIsControlPlane(t *testing.T) {
	controlPlane := []Opcode{OpPauseLog, OpResumeLog, OpClearQueue}
	for _, op := range controlPlane {
		if !isControlPlane(op) {
			t.Errorf("isControlPlane(%v) = false, want true", op)
		}
	}

	dataPlane := []Opcode{OpMouseMove, OpKBPress, OpKBPrint, OpKBPressTimed}
	for _, op := range dataPlane {
		if isControlPlane(op) {
			t.Errorf("isControlPlane(%v) = true, want false", op)
		}
	}
}

func TestBe16(t *testing.T) {
	if got := be16(0x01, 0x2C); got != 300 {
		t.Errorf("be16(0x01, 0x2C) = %d, want 300", got)
	}
	if got := be16(0x00, 0x00); got != 0 {
		t.Errorf("be16(0, 0) = %d, want 0", got)
	}
	if got := be16(0xFF, 0xFF); got != 65535 {
		t.Errorf("be16(0xFF, 0xFF) = %d, want 65535", got)
	}
}
