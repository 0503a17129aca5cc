// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidscript

import (
	"testing"

	"github.com/kwalker/hidbridge/pkg/hidproto"
)

func TestScript_MarshalUnmarshalRoundTrip(t *testing.T) {
	s := &Script{
		Name: "login-macro",
		Steps: []Step{
			{Action: "mouse_move", Args: []interface{}{uint64(10), uint64(0), uint64(0)}},
			{Action: "print", Args: []interface{}{"hello"}},
			{Action: "ctrl_a"},
		},
	}

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got, err := UnmarshalScript(data)
	if err != nil {
		t.Fatalf("UnmarshalScript failed: %v", err)
	}
	if got.Name != s.Name {
		t.Errorf("Name = %q, want %q", got.Name, s.Name)
	}
	if len(got.Steps) != len(s.Steps) {
		t.Fatalf("got %d steps, want %d", len(got.Steps), len(s.Steps))
	}
	if got.Steps[1].Action != "print" {
		t.Errorf("Steps[1].Action = %q, want print", got.Steps[1].Action)
	}
}

func TestScript_ExpandProducesFrames(t *testing.T) {
	s := &Script{
		Name: "quick-test",
		Steps: []Step{
			{Action: "mouse_click", Args: []interface{}{uint64(hidproto.MouseLeft)}},
			{Action: "hotkey", Args: []interface{}{uint64(hidproto.KeyLeftCtrl), uint64('c')}},
			{Action: "pause_log"},
		},
	}

	frames, err := s.Expand()
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	// 1 click + 4 (press ctrl, press c, release c, release ctrl) + 1 pause_log = 6
	if len(frames) != 6 {
		t.Fatalf("got %d frames, want 6", len(frames))
	}
}

func TestScript_ExpandRejectsUnknownAction(t *testing.T) {
	s := &Script{Steps: []Step{{Action: "does_not_exist"}}}
	if _, err := s.Expand(); err == nil {
		t.Fatal("expected an error for an unknown action")
	}
}

func TestScript_ExpandReportsMissingArgs(t *testing.T) {
	s := &Script{Steps: []Step{{Action: "mouse_click"}}}
	if _, err := s.Expand(); err == nil {
		t.Fatal("expected an error for a missing argument")
	}
}

func TestStep_ExpandEachActionKind(t *testing.T) {
	tests := []struct {
		name string
		step Step
	}{
		{"mouse_move", Step{Action: "mouse_move", Args: []interface{}{uint64(1), uint64(2), uint64(0)}}},
		{"mouse_press", Step{Action: "mouse_press", Args: []interface{}{uint64(hidproto.MouseLeft)}}},
		{"mouse_release", Step{Action: "mouse_release", Args: []interface{}{uint64(hidproto.MouseLeft)}}},
		{"mouse_press_timed", Step{Action: "mouse_press_timed", Args: []interface{}{uint64(hidproto.MouseLeft), uint64(1000)}}},
		{"key_press", Step{Action: "key_press", Args: []interface{}{uint64('a')}}},
		{"key_release", Step{Action: "key_release", Args: []interface{}{uint64('a')}}},
		{"key_write", Step{Action: "key_write", Args: []interface{}{uint64('a')}}},
		{"key_release_all", Step{Action: "key_release_all"}},
		{"key_press_timed", Step{Action: "key_press_timed", Args: []interface{}{uint64('a'), uint64(1000)}}},
		{"type", Step{Action: "type", Args: []interface{}{"ab"}}},
		{"ctrl_v", Step{Action: "ctrl_v"}},
		{"ctrl_x", Step{Action: "ctrl_x"}},
		{"ctrl_z", Step{Action: "ctrl_z"}},
		{"resume_log", Step{Action: "resume_log"}},
		{"clear_queue", Step{Action: "clear_queue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := tt.step.Expand()
			if err != nil {
				t.Fatalf("Expand failed: %v", err)
			}
			if len(frames) == 0 {
				t.Error("expected at least one frame")
			}
		})
	}
}
