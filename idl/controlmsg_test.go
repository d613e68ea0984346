package idl

import "testing"

func TestMethodIndexRoundTrip(t *testing.T) {
	var m MethodIndex
	m.SetValue(7)

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded MethodIndex
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.IsInitialized() {
		t.Fatal("decoded MethodIndex should be initialized")
	}
	if decoded.Value != 7 {
		t.Errorf("Value mismatch: got %d, want 7", decoded.Value)
	}
}

func TestMethodIndexZeroValueInitialized(t *testing.T) {
	var m MethodIndex
	m.SetValue(0)
	if !m.IsInitialized() {
		t.Fatal("method index 0 must still be initialized after SetValue")
	}
}

func TestMethodIndexUninitializedBeforeSet(t *testing.T) {
	var m MethodIndex
	if m.IsInitialized() {
		t.Fatal("unset MethodIndex should not be initialized")
	}
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty marshal output, got %d bytes", len(data))
	}
}

func TestFailureInfoRoundTripFailed(t *testing.T) {
	var f FailureInfo
	f.SetFailed(true)
	f.SetErrorText("boom")

	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded FailureInfo
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.Failed {
		t.Error("expected Failed to be true")
	}
	if decoded.ErrorText != "boom" {
		t.Errorf("ErrorText mismatch: got %q, want %q", decoded.ErrorText, "boom")
	}
}

func TestFailureInfoRoundTripSuccess(t *testing.T) {
	var f FailureInfo
	f.SetFailed(false)

	data, err := f.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded FailureInfo
	if err := decoded.Unmarshal(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Failed {
		t.Error("expected Failed to be false")
	}
	if decoded.HasErrorText() {
		t.Error("error text should be absent when not set")
	}
}

func TestFailureInfoUninitializedBeforeSet(t *testing.T) {
	var f FailureInfo
	if f.IsInitialized() {
		t.Fatal("unset FailureInfo should not be initialized")
	}
}

func TestPlaceholderAlwaysInitialized(t *testing.T) {
	var p Placeholder
	if !p.IsInitialized() {
		t.Fatal("Placeholder must always be initialized")
	}
	if err := p.Unmarshal([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Placeholder.Unmarshal should ignore bytes, got error: %v", err)
	}
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Placeholder.Marshal should produce no bytes, got %d", len(data))
	}
}
