package idl

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// MethodDescriptorProto is the wire projection of one method within a
// ServiceDescriptor — just enough to make the handshake's equality test
// meaningful (a method renamed, reordered, added, or removed changes the
// serialized bytes).
type MethodDescriptorProto struct {
	Name string
}

// ServiceDescriptor is the wire projection of a service: its fully
// qualified name and its ordered method list. Two ServiceDescriptors are
// equal iff Marshal produces byte-identical output — that is the
// handshake's equality test (spec §3).
type ServiceDescriptor struct {
	Name       string
	Methods    []MethodDescriptorProto
	hasName    bool
	methodsSet bool
}

func (d *ServiceDescriptor) Reset() { *d = ServiceDescriptor{} }

// IsInitialized requires only the name; an empty method list is a
// legitimate (if useless) service.
func (d *ServiceDescriptor) IsInitialized() bool { return d.hasName }

func (d *ServiceDescriptor) SetName(name string) {
	d.Name = name
	d.hasName = true
}

func (d *ServiceDescriptor) SetMethods(methods []MethodDescriptorProto) {
	d.Methods = methods
	d.methodsSet = true
}

func (d *ServiceDescriptor) Marshal() ([]byte, error) {
	if !d.hasName {
		return nil, nil
	}
	var buf []byte
	buf = protowire.AppendTag(buf, 1, protowire.BytesType)
	buf = protowire.AppendString(buf, d.Name)
	for _, m := range d.Methods {
		var mbuf []byte
		mbuf = protowire.AppendTag(mbuf, 1, protowire.BytesType)
		mbuf = protowire.AppendString(mbuf, m.Name)
		buf = protowire.AppendTag(buf, 2, protowire.BytesType)
		buf = protowire.AppendBytes(buf, mbuf)
	}
	return buf, nil
}

func (d *ServiceDescriptor) Unmarshal(buf []byte) error {
	d.Reset()
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return fmt.Errorf("idl: ServiceDescriptor: malformed tag")
		}
		buf = buf[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(buf)
			if n < 0 {
				return fmt.Errorf("idl: ServiceDescriptor: malformed name")
			}
			buf = buf[n:]
			d.SetName(v)
		case num == 2 && typ == protowire.BytesType:
			mbuf, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return fmt.Errorf("idl: ServiceDescriptor: malformed method")
			}
			buf = buf[n:]
			var method MethodDescriptorProto
			rest := mbuf
			for len(rest) > 0 {
				mnum, mtyp, mn := protowire.ConsumeTag(rest)
				if mn < 0 {
					return fmt.Errorf("idl: ServiceDescriptor: malformed method tag")
				}
				rest = rest[mn:]
				if mnum == 1 && mtyp == protowire.BytesType {
					name, mn := protowire.ConsumeString(rest)
					if mn < 0 {
						return fmt.Errorf("idl: ServiceDescriptor: malformed method name")
					}
					rest = rest[mn:]
					method.Name = name
				} else {
					mn := protowire.ConsumeFieldValue(mnum, mtyp, rest)
					if mn < 0 {
						return fmt.Errorf("idl: ServiceDescriptor: malformed method field %d", mnum)
					}
					rest = rest[mn:]
				}
			}
			d.Methods = append(d.Methods, method)
			d.methodsSet = true
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return fmt.Errorf("idl: ServiceDescriptor: malformed field %d", num)
			}
			buf = buf[n:]
		}
	}
	return nil
}

// Equal reports whether two descriptors have byte-identical canonical
// serialized forms — the handshake's equality test.
func Equal(a, b *ServiceDescriptor) bool {
	ab, errA := a.Marshal()
	bb, errB := b.Marshal()
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
