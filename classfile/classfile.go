package classfile

import "os"

const magic = 0xCAFEBABE

// ClassFile represents a parsed Java class file.
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []*FieldInfo
	Methods      []*MethodInfo
	Attributes   []*AttributeInfo
}

// FieldInfo represents a field in the class.
type FieldInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []*AttributeInfo
}

// MethodInfo represents a method in the class.
type MethodInfo struct {
	AccessFlags     uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []*AttributeInfo
}

// AttributeInfo is a raw, undecoded attribute (name + opaque body). Callers
// that need a specific attribute's structure decode Info themselves (see
// GetCodeAttribute).
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

// CodeAttribute is the decoded body of a method's Code attribute.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []*ExceptionTableEntry
	Attributes     []*AttributeInfo
	// decoded is the two-phase-decoded instruction stream: Code rewritten
	// into a dense array with every branch target resolved to an instruction
	// index. Populated lazily by OpCodes/ExceptionHandlers, not by
	// parseCodeAttribute.
	decoded          *DecodeResult
	resolvedHandlers []ResolvedHandler
}

// ResolvedHandler is one exception table entry with StartPC/EndPC/HandlerPC
// rewritten from byte offsets into instruction indices, matching the
// instruction-indexed PC the interpreter runs on.
type ResolvedHandler struct {
	StartPC   int // inclusive
	EndPC     int // exclusive
	HandlerPC int
	CatchType uint16 // constant pool index, 0 = catch-all
}

// ExceptionTableEntry represents one entry of a Code attribute's exception
// table.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// Parse reads a class file from bytes.
func Parse(data []byte) (*ClassFile, error) {
	r := NewReader(data)
	cf := &ClassFile{}

	m, err := r.Pop4()
	if err != nil {
		return nil, err
	}
	cf.Magic = m
	if cf.Magic != magic {
		return nil, newErr(BadFileFormat, "bad magic number %#x", cf.Magic)
	}

	if cf.MinorVersion, err = r.Pop2(); err != nil {
		return nil, err
	}
	if cf.MajorVersion, err = r.Pop2(); err != nil {
		return nil, err
	}
	if cf.ConstantPool, err = ReadConstantPool(r); err != nil {
		return nil, err
	}
	if cf.AccessFlags, err = r.Pop2(); err != nil {
		return nil, err
	}
	if cf.ThisClass, err = r.Pop2(); err != nil {
		return nil, err
	}
	if cf.SuperClass, err = r.Pop2(); err != nil {
		return nil, err
	}
	if cf.Interfaces, err = readU2s(r); err != nil {
		return nil, err
	}
	if cf.Fields, err = readFields(r, cf.ConstantPool); err != nil {
		return nil, err
	}
	if cf.Methods, err = readMethods(r, cf.ConstantPool); err != nil {
		return nil, err
	}
	if cf.Attributes, err = readAttributes(r); err != nil {
		return nil, err
	}

	return cf, nil
}

// ParseFile reads a class file from disk.
func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func readU2s(r *Reader) ([]uint16, error) {
	count, err := r.Pop2()
	if err != nil {
		return nil, err
	}
	result := make([]uint16, count)
	for i := range result {
		if result[i], err = r.Pop2(); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func readFields(r *Reader, cp ConstantPool) ([]*FieldInfo, error) {
	count, err := r.Pop2()
	if err != nil {
		return nil, err
	}
	fields := make([]*FieldInfo, count)
	for i := range fields {
		f := &FieldInfo{}
		if f.AccessFlags, err = r.Pop2(); err != nil {
			return nil, err
		}
		if f.NameIndex, err = r.Pop2(); err != nil {
			return nil, err
		}
		if f.DescriptorIndex, err = r.Pop2(); err != nil {
			return nil, err
		}
		if f.Attributes, err = readAttributes(r); err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func readMethods(r *Reader, cp ConstantPool) ([]*MethodInfo, error) {
	count, err := r.Pop2()
	if err != nil {
		return nil, err
	}
	methods := make([]*MethodInfo, count)
	for i := range methods {
		m := &MethodInfo{}
		if m.AccessFlags, err = r.Pop2(); err != nil {
			return nil, err
		}
		if m.NameIndex, err = r.Pop2(); err != nil {
			return nil, err
		}
		if m.DescriptorIndex, err = r.Pop2(); err != nil {
			return nil, err
		}
		if m.Attributes, err = readAttributes(r); err != nil {
			return nil, err
		}
		methods[i] = m
	}
	return methods, nil
}

func readAttributes(r *Reader) ([]*AttributeInfo, error) {
	count, err := r.Pop2()
	if err != nil {
		return nil, err
	}
	attrs := make([]*AttributeInfo, count)
	for i := range attrs {
		nameIndex, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		length, err := r.Pop4()
		if err != nil {
			return nil, err
		}
		info, err := r.PopBytes(int(length))
		if err != nil {
			return nil, err
		}
		attrs[i] = &AttributeInfo{NameIndex: nameIndex, Info: info}
	}
	return attrs, nil
}

// ClassName returns the name of this class.
func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// SuperClassName returns the name of the superclass, or "" for java/lang/Object.
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

// GetMethod finds a method by name and descriptor. An empty descriptor
// matches the first method with that name.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for _, method := range cf.Methods {
		methodName := cf.ConstantPool.GetUtf8(method.NameIndex)
		methodDesc := cf.ConstantPool.GetUtf8(method.DescriptorIndex)
		if methodName == name && (descriptor == "" || methodDesc == descriptor) {
			return method
		}
	}
	return nil
}

// Name returns the method's name.
func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

// Descriptor returns the method's descriptor.
func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

// GetCodeAttribute decodes and returns the method's Code attribute, or nil
// if the method is abstract/native and has none.
func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) (*CodeAttribute, error) {
	for _, attr := range m.Attributes {
		if cp.GetUtf8(attr.NameIndex) == "Code" {
			return parseCodeAttribute(attr.Info)
		}
	}
	return nil, nil
}

func parseCodeAttribute(data []byte) (*CodeAttribute, error) {
	r := NewReader(data)
	code := &CodeAttribute{}
	var err error

	if code.MaxStack, err = r.Pop2(); err != nil {
		return nil, err
	}
	if code.MaxLocals, err = r.Pop2(); err != nil {
		return nil, err
	}
	codeLength, err := r.Pop4()
	if err != nil {
		return nil, err
	}
	if code.Code, err = r.PopBytes(int(codeLength)); err != nil {
		return nil, err
	}

	exceptionTableLength, err := r.Pop2()
	if err != nil {
		return nil, err
	}
	code.ExceptionTable = make([]*ExceptionTableEntry, exceptionTableLength)
	for i := range code.ExceptionTable {
		e := &ExceptionTableEntry{}
		if e.StartPC, err = r.Pop2(); err != nil {
			return nil, err
		}
		if e.EndPC, err = r.Pop2(); err != nil {
			return nil, err
		}
		if e.HandlerPC, err = r.Pop2(); err != nil {
			return nil, err
		}
		if e.CatchType, err = r.Pop2(); err != nil {
			return nil, err
		}
		code.ExceptionTable[i] = e
	}

	if code.Attributes, err = readAttributes(r); err != nil {
		return nil, err
	}

	return code, nil
}

// OpCodes returns the two-phase-decoded instruction stream for this Code
// attribute, decoding and caching it on first use.
func (c *CodeAttribute) OpCodes() ([]OpCode, error) {
	d, err := c.decode()
	if err != nil {
		return nil, err
	}
	return d.OpCodes, nil
}

func (c *CodeAttribute) decode() (*DecodeResult, error) {
	if c.decoded != nil {
		return c.decoded, nil
	}
	d, err := DecodeFull(c.Code)
	if err != nil {
		return nil, err
	}
	c.decoded = d
	return d, nil
}

// ExceptionHandlers returns the Code attribute's exception table with every
// StartPC/EndPC/HandlerPC rewritten from a byte offset into an instruction
// index, so it can be matched directly against the interpreter's PC.
func (c *CodeAttribute) ExceptionHandlers() ([]ResolvedHandler, error) {
	if c.resolvedHandlers != nil {
		return c.resolvedHandlers, nil
	}
	d, err := c.decode()
	if err != nil {
		return nil, err
	}
	handlers := make([]ResolvedHandler, len(c.ExceptionTable))
	for i, e := range c.ExceptionTable {
		start, err := d.ResolveByteOffset(int(e.StartPC))
		if err != nil {
			return nil, err
		}
		end, err := d.ResolveByteOffset(int(e.EndPC))
		if err != nil {
			return nil, err
		}
		handler, err := d.ResolveByteOffset(int(e.HandlerPC))
		if err != nil {
			return nil, err
		}
		handlers[i] = ResolvedHandler{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: e.CatchType}
	}
	c.resolvedHandlers = handlers
	return handlers, nil
}
