package framing

import (
	"fmt"
	"net"
	"time"

	"protorpc/idl"
)

// readChunk is how many bytes Reader asks the conn for on each underlying
// Read call while growing its buffer toward a complete frame.
const readChunk = 4096

// Reader adapts a stream of framed idl messages to a net.Conn, maintaining
// a growable buffer across calls so a message spanning several TCP
// segments is reassembled correctly and any bytes belonging to the next
// frame are retained for the following ReadMessage call.
type Reader struct {
	conn net.Conn
	buf  []byte
}

// NewReader wraps conn for framed reads.
func NewReader(conn net.Conn) *Reader {
	return &Reader{conn: conn}
}

// ReadMessage blocks until a full frame has been read into msg or an error
// occurs. deadline is applied to every underlying Read; the zero Time
// disables the deadline (used for the server's idle AwaitMethodIndex wait).
func (r *Reader) ReadMessage(msg idl.Message, deadline time.Time) error {
	for {
		n, status, err := TryDecode(r.buf, msg)
		if err != nil {
			return err
		}
		if status == Complete {
			r.buf = r.buf[n:]
			return nil
		}

		if err := r.conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("framing: set read deadline: %w", err)
		}
		chunk := make([]byte, readChunk)
		k, err := r.conn.Read(chunk)
		if k > 0 {
			r.buf = append(r.buf, chunk[:k]...)
		}
		if err != nil {
			// A message may have completed in the bytes just appended even
			// though the read also returned EOF/timeout; check for it with
			// TryDecode before surfacing err.
			if k > 0 {
				if n, status, derr := TryDecode(r.buf, msg); derr == nil && status == Complete {
					r.buf = r.buf[n:]
					return nil
				}
			}
			return err
		}
	}
}

// Writer adapts framed idl message writes to a net.Conn.
type Writer struct {
	conn net.Conn
}

// NewWriter wraps conn for framed writes.
func NewWriter(conn net.Conn) *Writer {
	return &Writer{conn: conn}
}

// WriteMessage encodes msg and issues an all-or-nothing write under
// deadline. The zero Time disables the deadline.
func (w *Writer) WriteMessage(msg idl.Message, deadline time.Time) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("framing: set write deadline: %w", err)
	}
	_, err = w.conn.Write(frame)
	return err
}

// WriteMessages encodes and writes several messages as one frame sequence
// under a single deadline and a single underlying Write call — used by
// the server to send FailureInfo immediately followed by the response
// payload (spec §4.5 WriteResult) without risking them landing in separate
// TCP segments that a slow reader could interleave with something else.
func WriteMessages(w *Writer, deadline time.Time, msgs ...idl.Message) error {
	var out []byte
	for _, m := range msgs {
		frame, err := Encode(m)
		if err != nil {
			return err
		}
		out = append(out, frame...)
	}
	if err := w.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("framing: set write deadline: %w", err)
	}
	_, err := w.conn.Write(out)
	return err
}
