// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidscript

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Step is one named action in a Script: a convenience call (Action plus
// Args) that expands to one or more wire Frames when the script runs.
// Encoding scripts as named steps instead of raw frame bytes keeps them
// readable and portable across firmware protocol revisions, the same
// motivation pkg/fusain had for encoding a typed payload map rather than
// raw wire bytes.
type Step struct {
	Action string        `cbor:"action"`
	Args   []interface{} `cbor:"args,omitempty"`
}

// Script is an ordered, named batch of Steps, meant to be recorded once
// and replayed with `hidbridge send --script`.
type Script struct {
	Name  string `cbor:"name"`
	Steps []Step `cbor:"steps"`
}

// Marshal CBOR-encodes s, mirroring pkg/fusain's cbor.Marshal usage.
func (s *Script) Marshal() ([]byte, error) {
	data, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode script: %w", err)
	}
	return data, nil
}

// UnmarshalScript decodes a CBOR-encoded Script.
func UnmarshalScript(data []byte) (*Script, error) {
	var s Script
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	return &s, nil
}

func argUint8(args []interface{}, i int) (uint8, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case uint64:
		return uint8(v), nil
	case int64:
		return uint8(v), nil
	default:
		return 0, fmt.Errorf("argument %d has unexpected type %T", i, args[i])
	}
}

func argInt8(args []interface{}, i int) (int8, error) {
	v, err := argUint8(args, i)
	return int8(v), err
}

func argUint16(args []interface{}, i int) (uint16, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case uint64:
		return uint16(v), nil
	case int64:
		return uint16(v), nil
	default:
		return 0, fmt.Errorf("argument %d has unexpected type %T", i, args[i])
	}
}

func argString(args []interface{}, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d has unexpected type %T", i, args[i])
	}
	return s, nil
}

func argUint8Slice(args []interface{}) ([]uint8, error) {
	out := make([]uint8, len(args))
	for i := range args {
		v, err := argUint8(args, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Expand resolves a single Step to the wire frames it produces.
func (s Step) Expand() ([]Frame, error) {
	switch s.Action {
	case "mouse_move":
		x, err := argInt8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		y, err := argInt8(s.Args, 1)
		if err != nil {
			return nil, err
		}
		wheel, err := argInt8(s.Args, 2)
		if err != nil {
			return nil, err
		}
		return []Frame{MouseMove(x, y, wheel)}, nil
	case "mouse_press":
		b, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{MousePress(b)}, nil
	case "mouse_release":
		b, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{MouseRelease(b)}, nil
	case "mouse_click":
		b, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{MouseClick(b)}, nil
	case "mouse_press_timed":
		b, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		d, err := argUint16(s.Args, 1)
		if err != nil {
			return nil, err
		}
		return []Frame{MousePressTimed(b, d)}, nil
	case "key_press":
		k, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{KeyPress(k)}, nil
	case "key_release":
		k, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{KeyRelease(k)}, nil
	case "key_write":
		k, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return []Frame{KeyWrite(k)}, nil
	case "key_release_all":
		return []Frame{KeyReleaseAll()}, nil
	case "key_press_timed":
		k, err := argUint8(s.Args, 0)
		if err != nil {
			return nil, err
		}
		d, err := argUint16(s.Args, 1)
		if err != nil {
			return nil, err
		}
		return []Frame{KeyPressTimed(k, d)}, nil
	case "print":
		text, err := argString(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return Print(text), nil
	case "type":
		text, err := argString(s.Args, 0)
		if err != nil {
			return nil, err
		}
		return Type(text), nil
	case "hotkey":
		keys, err := argUint8Slice(s.Args)
		if err != nil {
			return nil, err
		}
		return Hotkey(keys...), nil
	case "ctrl_c":
		return CtrlC(), nil
	case "ctrl_v":
		return CtrlV(), nil
	case "ctrl_x":
		return CtrlX(), nil
	case "ctrl_z":
		return CtrlZ(), nil
	case "ctrl_a":
		return CtrlA(), nil
	case "pause_log":
		return []Frame{PauseLog()}, nil
	case "resume_log":
		return []Frame{ResumeLog()}, nil
	case "clear_queue":
		return []Frame{ClearQueue()}, nil
	default:
		return nil, fmt.Errorf("unknown script action %q", s.Action)
	}
}

// Expand resolves every Step of s into the full ordered sequence of wire
// frames a `hidbridge send --script` run should transmit.
func (s *Script) Expand() ([]Frame, error) {
	var frames []Frame
	for i, step := range s.Steps {
		f, err := step.Expand()
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
		frames = append(frames, f...)
	}
	return frames, nil
}
