package idl

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MethodIndex identifies which method of the handshaken service a request
// is for. Field 1, required.
type MethodIndex struct {
	Value    uint32
	hasValue bool
}

func (m *MethodIndex) Reset() { *m = MethodIndex{} }

func (m *MethodIndex) IsInitialized() bool { return m.hasValue }

// SetValue sets the method index and marks it present, so that a
// zero-valued index (method 0) is still considered initialized.
func (m *MethodIndex) SetValue(v uint32) {
	m.Value = v
	m.hasValue = true
}

func (m *MethodIndex) Marshal() ([]byte, error) {
	if !m.hasValue {
		return nil, nil
	}
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(m.Value))
	return buf, nil
}

func (m *MethodIndex) Unmarshal(buf []byte) error {
	m.Reset()
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("idl: MethodIndex: malformed tag")
		}
		buf = buf[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return fmt.Errorf("idl: MethodIndex: malformed value")
			}
			buf = buf[n:]
			m.SetValue(uint32(v))
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return fmt.Errorf("idl: MethodIndex: malformed field %d", num)
			}
			buf = buf[n:]
		}
	}
	return nil
}

// FailureInfo is the server's failure verdict for one RPC, and its verdict
// on the handshake. failed is required; error_text is optional and
// meaningless when failed is false.
type FailureInfo struct {
	Failed      bool
	ErrorText   string
	hasFailed   bool
	hasErrorTxt bool
}

func (f *FailureInfo) Reset() { *f = FailureInfo{} }

func (f *FailureInfo) IsInitialized() bool { return f.hasFailed }

func (f *FailureInfo) SetFailed(v bool) {
	f.Failed = v
	f.hasFailed = true
}

func (f *FailureInfo) SetErrorText(s string) {
	f.ErrorText = s
	f.hasErrorTxt = true
}

func (f *FailureInfo) HasErrorText() bool { return f.hasErrorTxt }

func (f *FailureInfo) Marshal() ([]byte, error) {
	if !f.hasFailed {
		return nil, nil
	}
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.VarintType)
	if f.Failed {
		buf = protowire.AppendVarint(buf, 1)
	} else {
		buf = protowire.AppendVarint(buf, 0)
	}
	if f.hasErrorTxt {
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendString(buf, f.ErrorText)
	}
	return buf, nil
}

func (f *FailureInfo) Unmarshal(buf []byte) error {
	f.Reset()
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("idl: FailureInfo: malformed tag")
		}
		buf = buf[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return fmt.Errorf("idl: FailureInfo: malformed failed")
			}
			buf = buf[n:]
			f.SetFailed(v != 0)
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return fmt.Errorf("idl: FailureInfo: malformed error_text")
			}
			buf = buf[n:]
			f.SetErrorText(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return fmt.Errorf("idl: FailureInfo: malformed field %d", num)
			}
			buf = buf[n:]
		}
	}
	return nil
}

// Placeholder is an empty message used when a side must produce or consume
// a framed message whose semantic type it cannot or does not need to
// construct (the server's dummy response on a failed call, or the request
// it discards after rejecting a bad method index). It accepts and ignores
// whatever bytes it is handed.
type Placeholder struct{}

func (p *Placeholder) Reset() {}

func (p *Placeholder) IsInitialized() bool { return true }

func (p *Placeholder) Marshal() ([]byte, error) { return nil, nil }

func (p *Placeholder) Unmarshal(buf []byte) error { return nil }
