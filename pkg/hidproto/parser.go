// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hidproto

// parser states, per §4.2.
const (
	stateSync = iota
	stateLen
	statePayload
)

// Parser is the byte-oriented framing state machine (§4.2). It is
// resumable across arbitrarily many byte arrivals and never blocks;
// DecodeByte is O(1) and returns immediately, matching §5's no-suspension
// requirement. Grounded on the teacher's Decoder.DecodeByte shape
// (pkg/helios_protocol/decoder.go), stripped of byte-stuffing and the
// START/END framing this protocol's fixed LEN field makes unnecessary.
type Parser struct {
	state  int
	rxLen  uint8
	rxIdx  uint8
	buffer [MaxPacketSize]byte
}

// NewParser returns a Parser positioned at S_SYNC.
func NewParser() *Parser {
	return &Parser{state: stateSync}
}

// DecodeByte feeds one byte through the state machine.
//
// Returns (payload, nil) when a CRC-valid frame has just completed;
// payload is CMD|PARAMS and is only valid until the next call.
// Returns (nil, err) on INVALID_LENGTH or CRC_MISMATCH.
// Returns (nil, nil) on garbage, partial frames, or bytes consumed
// silently by the resync path.
func (p *Parser) DecodeByte(b byte) ([]byte, *PipelineError) {
	switch p.state {
	case stateSync:
		if b == SyncByte {
			p.state = stateLen
		}
		// Any other byte is discarded silently: the resync path.
		return nil, nil

	case stateLen:
		if b == 0 || b > MaxPayloadLen {
			p.state = stateSync
			return nil, newError(ErrInvalidLength, "length %d out of range (1..%d)", b, MaxPayloadLen)
		}
		p.rxLen = b
		p.rxIdx = 0
		p.state = statePayload
		return nil, nil

	case statePayload:
		p.buffer[p.rxIdx] = b
		p.rxIdx++
		if p.rxIdx != p.rxLen+1 {
			return nil, nil
		}

		payload := p.buffer[:p.rxLen]
		received := p.buffer[p.rxLen]
		p.state = stateSync

		expected := CalculateCRC(payload)
		if expected != received {
			return nil, newError(ErrCRCMismatch, "expected 0x%02X, got 0x%02X", expected, received)
		}
		return payload, nil

	default:
		p.state = stateSync
		return nil, nil
	}
}
