// Package framing bridges idl messages to a byte-stream transport: a
// length-delimited codec (this file) and a deadline-scoped adapter over
// net.Conn (stream.go).
package framing

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"protorpc/idl"
)

// maxVarintBytes bounds the length prefix to the varint32 domain (spec
// §4.1 edge case: a varint longer than 5 bytes is framing corruption).
const maxVarintBytes = 5

// Status is the outcome of one TryDecode attempt.
type Status int

const (
	// Incomplete means the buffer does not yet hold a full frame; no bytes
	// were consumed and the caller should read more and retry.
	Incomplete Status = iota
	// Complete means a full frame was parsed into msg.
	Complete
)

// Encode serializes msg as a framed message: an unsigned LEB128 varint32
// length followed by that many bytes of payload.
func Encode(msg idl.Message) ([]byte, error) {
	payload, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("framing: encode: %w", err)
	}
	if len(payload) > 0xFFFFFFFF {
		return nil, fmt.Errorf("framing: encode: payload too large (%d bytes)", len(payload))
	}
	out := protowire.AppendVarint(nil, uint64(len(payload)))
	out = append(out, payload...)
	return out, nil
}

// TryDecode is the match-condition predicate: given the current contents
// of a read buffer, it either reports Incomplete (no bytes consumed, call
// again once more bytes have arrived) or Complete with the exact number
// of bytes making up the frame, having parsed the payload into msg. A
// non-nil err is always fatal (framing corruption) regardless of status.
//
// TryDecode is safe to call repeatedly as buf grows: it never retains
// state across calls and always resets msg before a successful parse.
func TryDecode(buf []byte, msg idl.Message) (consumed int, status Status, err error) {
	length, n := protowire.ConsumeVarint(buf)
	if n <= 0 {
		// Unterminated after maxVarintBytes bytes: the prefix can only end
		// past the varint32 domain, so more bytes cannot make it valid.
		if len(buf) >= maxVarintBytes {
			return 0, Incomplete, fmt.Errorf("framing: malformed length varint (no terminator in %d bytes)", len(buf))
		}
		return 0, Incomplete, nil
	}
	if n > maxVarintBytes {
		return 0, Incomplete, fmt.Errorf("framing: malformed length varint (%d bytes)", n)
	}
	if length > 0xFFFFFFFF {
		return 0, Incomplete, fmt.Errorf("framing: length %d exceeds varint32 domain", length)
	}

	need := n + int(length)
	if len(buf) < need {
		return 0, Incomplete, nil
	}

	msg.Reset()
	if err := msg.Unmarshal(buf[n:need]); err != nil {
		return 0, Incomplete, fmt.Errorf("framing: decode: %w", err)
	}
	return need, Complete, nil
}
