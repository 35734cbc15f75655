package classfile

// Attribute is a decoded attribute_info entry. Every attribute this VM gives
// special meaning to gets its own case; anything else decodes to Unknown so
// a caller walking a class's or method's attribute list never has to fall
// back to raw bytes itself.
type Attribute interface {
	attrName() string
}

// ConstantValueAttribute is a field's ConstantValue attribute: the constant
// pool index of the value a static final field is initialized to.
type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

func (ConstantValueAttribute) attrName() string { return "ConstantValue" }

// LineNumberEntry maps one instruction byte offset to a source line.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// LineNumberTableAttribute is a Code attribute's debug line-number map.
type LineNumberTableAttribute struct {
	Entries []LineNumberEntry
}

func (LineNumberTableAttribute) attrName() string { return "LineNumberTable" }

// SourceFileAttribute names the source file a class was compiled from.
type SourceFileAttribute struct {
	SourceFile string
}

func (SourceFileAttribute) attrName() string { return "SourceFile" }

// CodeAttributeRef wraps the already-parsed *CodeAttribute so it appears in
// a class's or method's generic Attribute list alongside the others.
type CodeAttributeRef struct {
	Code *CodeAttribute
}

func (CodeAttributeRef) attrName() string { return "Code" }

// UnknownAttribute is any attribute this VM has no dedicated structure for
// (e.g. LocalVariableTable, StackMapTable, Signature, Deprecated). Its body
// is kept verbatim rather than dropped.
type UnknownAttribute struct {
	AttrName string
	Info     []byte
}

func (u UnknownAttribute) attrName() string { return u.AttrName }

// DecodedAttributes decodes the class's top-level attributes (SourceFile,
// mainly, for this VM's purposes).
func (cf *ClassFile) DecodedAttributes() ([]Attribute, error) {
	return DecodeAttributes(cf.ConstantPool, cf.Attributes)
}

// DecodedAttributes decodes a field's attributes (ConstantValue, mainly).
func (f *FieldInfo) DecodedAttributes(cp ConstantPool) ([]Attribute, error) {
	return DecodeAttributes(cp, f.Attributes)
}

// DecodedAttributes decodes a method's attributes. Prefer GetCodeAttribute
// for the Code attribute specifically; this is for callers that want the
// full tagged list (a disassembler listing every attribute by name, say).
func (m *MethodInfo) DecodedAttributes(cp ConstantPool) ([]Attribute, error) {
	return DecodeAttributes(cp, m.Attributes)
}

// ConstantFieldValue returns the resolved value of a static final field's
// ConstantValue attribute, if it has one, and whether one was found.
func (f *FieldInfo) ConstantFieldValue(cp ConstantPool) (ConstantInfo, bool, error) {
	attrs, err := f.DecodedAttributes(cp)
	if err != nil {
		return nil, false, err
	}
	for _, a := range attrs {
		if cv, ok := a.(ConstantValueAttribute); ok {
			return cp[cv.ConstantValueIndex], true, nil
		}
	}
	return nil, false, nil
}

// DecodeAttributes converts a raw AttributeInfo list into the tagged
// Attribute union, resolving each entry's name (and any constant pool
// references inside the body, such as SourceFile's) through cp.
func DecodeAttributes(cp ConstantPool, raw []*AttributeInfo) ([]Attribute, error) {
	out := make([]Attribute, len(raw))
	for i, a := range raw {
		name := cp.GetUtf8(a.NameIndex)
		attr, err := decodeAttribute(cp, name, a.Info)
		if err != nil {
			return nil, err
		}
		out[i] = attr
	}
	return out, nil
}

func decodeAttribute(cp ConstantPool, name string, info []byte) (Attribute, error) {
	switch name {
	case "ConstantValue":
		r := NewReader(info)
		idx, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		return ConstantValueAttribute{ConstantValueIndex: idx}, nil
	case "SourceFile":
		r := NewReader(info)
		idx, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		return SourceFileAttribute{SourceFile: cp.GetUtf8(idx)}, nil
	case "LineNumberTable":
		r := NewReader(info)
		count, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		entries := make([]LineNumberEntry, count)
		for i := range entries {
			start, err := r.Pop2()
			if err != nil {
				return nil, err
			}
			line, err := r.Pop2()
			if err != nil {
				return nil, err
			}
			entries[i] = LineNumberEntry{StartPC: start, LineNumber: line}
		}
		return LineNumberTableAttribute{Entries: entries}, nil
	case "Code":
		code, err := parseCodeAttribute(info)
		if err != nil {
			return nil, err
		}
		return CodeAttributeRef{Code: code}, nil
	default:
		return UnknownAttribute{AttrName: name, Info: info}, nil
	}
}
