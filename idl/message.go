// Package idl defines the self-describing wire messages exchanged between
// a Channel and a Session: the control messages (MethodIndex, FailureInfo,
// Placeholder) and the ServiceDescriptor used for the handshake.
//
// Every message implements Message, a small subset of the classic
// generated-protobuf contract (Reset, IsInitialized, Marshal, Unmarshal).
// Field encoding uses protowire directly rather than full reflection-based
// protobuf, since the message set is fixed and tiny.
package idl

// Message is the contract the framing and dispatch layers need from any
// wire payload: a way to clear it for reuse, to ask whether its required
// fields are all set, and to move it to/from bytes.
type Message interface {
	// Reset clears the message back to its zero value so it can be reused
	// across decode attempts.
	Reset()

	// IsInitialized reports whether every required field has been set.
	// Optional fields are exempt.
	IsInitialized() bool

	// Marshal returns the canonical serialized form of the message.
	Marshal() ([]byte, error)

	// Unmarshal replaces the message's contents by parsing buf. Unknown
	// fields are tolerated (partial-parse mode); required-field
	// validation is the caller's job via IsInitialized.
	Unmarshal(buf []byte) error
}
