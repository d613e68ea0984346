package framing

import (
	"testing"

	"protorpc/idl"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var idx idl.MethodIndex
	idx.SetValue(42)

	frame, err := Encode(&idx)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded idl.MethodIndex
	n, status, err := TryDecode(frame, &decoded)
	if err != nil {
		t.Fatalf("TryDecode failed: %v", err)
	}
	if status != Complete {
		t.Fatalf("expected Complete, got %v", status)
	}
	if n != len(frame) {
		t.Errorf("consumed %d bytes, want %d", n, len(frame))
	}
	if decoded.Value != 42 {
		t.Errorf("Value mismatch: got %d, want 42", decoded.Value)
	}
}

func TestTryDecodeIncompleteOnShortLength(t *testing.T) {
	var idx idl.MethodIndex
	idx.SetValue(42)
	frame, _ := Encode(&idx)

	var decoded idl.MethodIndex
	n, status, err := TryDecode(frame[:len(frame)-1], &decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Incomplete {
		t.Fatalf("expected Incomplete, got %v", status)
	}
	if n != 0 {
		t.Errorf("expected 0 bytes consumed on Incomplete, got %d", n)
	}
}

func TestTryDecodeIncompleteOnEmptyBuffer(t *testing.T) {
	var decoded idl.MethodIndex
	_, status, err := TryDecode(nil, &decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Incomplete {
		t.Fatalf("expected Incomplete on empty buffer, got %v", status)
	}
}

func TestTryDecodeRetainsTrailingBytes(t *testing.T) {
	var a, b idl.MethodIndex
	a.SetValue(1)
	b.SetValue(2)

	frameA, _ := Encode(&a)
	frameB, _ := Encode(&b)
	buf := append(append([]byte{}, frameA...), frameB...)

	var decoded idl.MethodIndex
	n, status, err := TryDecode(buf, &decoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != Complete {
		t.Fatalf("expected Complete, got %v", status)
	}
	if n != len(frameA) {
		t.Fatalf("consumed %d bytes, want %d (frame A only)", n, len(frameA))
	}
	if decoded.Value != 1 {
		t.Errorf("Value mismatch: got %d, want 1", decoded.Value)
	}

	rest := buf[n:]
	var decodedB idl.MethodIndex
	n2, status2, err2 := TryDecode(rest, &decodedB)
	if err2 != nil {
		t.Fatalf("unexpected error decoding second frame: %v", err2)
	}
	if status2 != Complete {
		t.Fatalf("expected Complete for second frame, got %v", status2)
	}
	if n2 != len(frameB) {
		t.Errorf("consumed %d bytes for frame B, want %d", n2, len(frameB))
	}
	if decodedB.Value != 2 {
		t.Errorf("Value mismatch: got %d, want 2", decodedB.Value)
	}
}

func TestTryDecodeMalformedLengthVarint(t *testing.T) {
	// Six continuation bytes with no terminator is an invalid varint.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	var decoded idl.MethodIndex
	_, _, err := TryDecode(buf, &decoded)
	if err == nil {
		t.Fatal("expected an error for a malformed length varint")
	}
}
