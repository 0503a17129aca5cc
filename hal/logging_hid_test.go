// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kwalker/hidbridge/pkg/hidproto"
)

func TestLoggingMouse_LogsEveryCall(t *testing.T) {
	var buf bytes.Buffer
	m := NewLoggingMouse(&buf)

	m.Move(1, -2, 3)
	m.Press(hidproto.MouseLeft)
	m.Release(hidproto.MouseLeft)
	m.Click(hidproto.MouseRight)

	out := buf.String()
	for _, want := range []string{"move", "press LEFT", "release LEFT", "click RIGHT"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got:\n%s", want, out)
		}
	}
}

func TestLoggingKeyboard_LogsEveryCall(t *testing.T) {
	var buf bytes.Buffer
	k := NewLoggingKeyboard(&buf)

	k.Press('a')
	k.Release('a')
	k.Write('b')
	k.ReleaseAll()

	out := buf.String()
	for _, want := range []string{"key press", "key release", "key write", "key release_all"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got:\n%s", want, out)
		}
	}
}
