package classfile

import "math"

// Constant pool tags.
const (
	CONSTANT_Utf8               = 1
	CONSTANT_Integer            = 3
	CONSTANT_Float              = 4
	CONSTANT_Long               = 5
	CONSTANT_Double             = 6
	CONSTANT_Class              = 7
	CONSTANT_String             = 8
	CONSTANT_Fieldref           = 9
	CONSTANT_Methodref          = 10
	CONSTANT_InterfaceMethodref = 11
	CONSTANT_NameAndType        = 12
	CONSTANT_MethodHandle       = 15
	CONSTANT_MethodType         = 16
	CONSTANT_InvokeDynamic      = 18
)

// MethodHandleKind is the reference_kind of a CONSTANT_MethodHandle entry,
// restricted to the 9 valid values from the classfile specification.
type MethodHandleKind uint8

const (
	RefGetField MethodHandleKind = iota + 1
	RefGetStatic
	RefPutField
	RefPutStatic
	RefInvokeVirtual
	RefInvokeStatic
	RefInvokeSpecial
	RefNewInvokeSpecial
	RefInvokeInterface
)

func validMethodHandleKind(k uint8) bool {
	return k >= uint8(RefGetField) && k <= uint8(RefInvokeInterface)
}

// ConstantInfo is the base interface for all constant pool entries.
type ConstantInfo interface {
	Tag() uint8
}

// ConstantPool holds all constant pool entries. Index 0 is unused; a Long
// or Double entry also leaves its second logical slot nil, matching the
// classfile specification's indexing quirk.
type ConstantPool []ConstantInfo

// ReadConstantPool parses the constant pool, starting at index 1.
func ReadConstantPool(r *Reader) (ConstantPool, error) {
	count, err := r.PopU2AsIndex()
	if err != nil {
		return nil, err
	}
	cp := make(ConstantPool, count)

	for i := 1; i < count; i++ {
		tag, err := r.Pop1()
		if err != nil {
			return nil, err
		}
		entry, err := readConstantInfo(r, tag)
		if err != nil {
			return nil, err
		}
		cp[i] = entry

		// Long and Double occupy two logical slots; the second is left
		// unpopulated rather than given a phantom entry.
		if tag == CONSTANT_Long || tag == CONSTANT_Double {
			i++
		}
	}
	return cp, nil
}

func readConstantInfo(r *Reader, tag uint8) (ConstantInfo, error) {
	switch tag {
	case CONSTANT_Utf8:
		s, err := readUtf8(r)
		if err != nil {
			return nil, err
		}
		return &ConstantUtf8Info{tag: tag, Value: s}, nil
	case CONSTANT_Integer:
		v, err := r.Pop4()
		return &ConstantIntegerInfo{tag: tag, Value: int32(v)}, err
	case CONSTANT_Float:
		v, err := r.Pop4()
		return &ConstantFloatInfo{tag: tag, Value: math.Float32frombits(v)}, err
	case CONSTANT_Long:
		v, err := r.Pop8()
		return &ConstantLongInfo{tag: tag, Value: int64(v)}, err
	case CONSTANT_Double:
		v, err := r.Pop8()
		return &ConstantDoubleInfo{tag: tag, Value: math.Float64frombits(v)}, err
	case CONSTANT_Class:
		idx, err := r.Pop2()
		return &ConstantClassInfo{tag: tag, NameIndex: idx}, err
	case CONSTANT_String:
		idx, err := r.Pop2()
		return &ConstantStringInfo{tag: tag, StringIndex: idx}, err
	case CONSTANT_Fieldref:
		ci, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		nt, err := r.Pop2()
		return &ConstantFieldrefInfo{tag: tag, ClassIndex: ci, NameAndTypeIndex: nt}, err
	case CONSTANT_Methodref:
		ci, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		nt, err := r.Pop2()
		return &ConstantMethodrefInfo{tag: tag, ClassIndex: ci, NameAndTypeIndex: nt}, err
	case CONSTANT_InterfaceMethodref:
		ci, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		nt, err := r.Pop2()
		return &ConstantInterfaceMethodrefInfo{tag: tag, ClassIndex: ci, NameAndTypeIndex: nt}, err
	case CONSTANT_NameAndType:
		ni, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		di, err := r.Pop2()
		return &ConstantNameAndTypeInfo{tag: tag, NameIndex: ni, DescriptorIndex: di}, err
	case CONSTANT_MethodHandle:
		kind, err := r.Pop1()
		if err != nil {
			return nil, err
		}
		if !validMethodHandleKind(kind) {
			return nil, newErr(InvalidMethodHandleKind, "reference_kind %d out of range [1,9]", kind)
		}
		idx, err := r.Pop2()
		return &ConstantMethodHandleInfo{tag: tag, ReferenceKind: MethodHandleKind(kind), ReferenceIndex: idx}, err
	case CONSTANT_MethodType:
		idx, err := r.Pop2()
		return &ConstantMethodTypeInfo{tag: tag, DescriptorIndex: idx}, err
	case CONSTANT_InvokeDynamic:
		bm, err := r.Pop2()
		if err != nil {
			return nil, err
		}
		nt, err := r.Pop2()
		return &ConstantInvokeDynamicInfo{tag: tag, BootstrapMethodIndex: bm, NameAndTypeIndex: nt}, err
	default:
		return nil, newErr(InvalidTag, "tag %d", tag)
	}
}

func readUtf8(r *Reader) (string, error) {
	length, err := r.Pop2()
	if err != nil {
		return "", err
	}
	b, err := r.PopBytes(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Constant pool entry types.

type ConstantUtf8Info struct {
	tag   uint8
	Value string
}

func (c *ConstantUtf8Info) Tag() uint8 { return c.tag }

type ConstantIntegerInfo struct {
	tag   uint8
	Value int32
}

func (c *ConstantIntegerInfo) Tag() uint8 { return c.tag }

type ConstantFloatInfo struct {
	tag   uint8
	Value float32
}

func (c *ConstantFloatInfo) Tag() uint8 { return c.tag }

type ConstantLongInfo struct {
	tag   uint8
	Value int64
}

func (c *ConstantLongInfo) Tag() uint8 { return c.tag }

type ConstantDoubleInfo struct {
	tag   uint8
	Value float64
}

func (c *ConstantDoubleInfo) Tag() uint8 { return c.tag }

type ConstantClassInfo struct {
	tag       uint8
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() uint8 { return c.tag }

type ConstantStringInfo struct {
	tag         uint8
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() uint8 { return c.tag }

type ConstantFieldrefInfo struct {
	tag              uint8
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldrefInfo) Tag() uint8 { return c.tag }

type ConstantMethodrefInfo struct {
	tag              uint8
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodrefInfo) Tag() uint8 { return c.tag }

type ConstantInterfaceMethodrefInfo struct {
	tag              uint8
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodrefInfo) Tag() uint8 { return c.tag }

type ConstantNameAndTypeInfo struct {
	tag             uint8
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() uint8 { return c.tag }

type ConstantMethodHandleInfo struct {
	tag            uint8
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() uint8 { return c.tag }

func (c *ConstantMethodHandleInfo) Kind() MethodHandleKind { return c.ReferenceKind }

type ConstantMethodTypeInfo struct {
	tag             uint8
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() uint8 { return c.tag }

type ConstantInvokeDynamicInfo struct {
	tag                  uint8
	BootstrapMethodIndex uint16
	NameAndTypeIndex     uint16
}

func (c *ConstantInvokeDynamicInfo) Tag() uint8 { return c.tag }

// Helper methods for ConstantPool.

// GetUtf8 retrieves a UTF8 string from the constant pool.
func (cp ConstantPool) GetUtf8(index uint16) string {
	if int(index) >= len(cp) {
		return ""
	}
	if utf8, ok := cp[index].(*ConstantUtf8Info); ok {
		return utf8.Value
	}
	return ""
}

// GetClassName retrieves a class name from the constant pool.
func (cp ConstantPool) GetClassName(index uint16) string {
	if int(index) >= len(cp) {
		return ""
	}
	if classInfo, ok := cp[index].(*ConstantClassInfo); ok {
		return cp.GetUtf8(classInfo.NameIndex)
	}
	return ""
}

// GetNameAndType retrieves a name and type descriptor pair.
func (cp ConstantPool) GetNameAndType(index uint16) (string, string) {
	if int(index) >= len(cp) {
		return "", ""
	}
	if nat, ok := cp[index].(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(nat.NameIndex), cp.GetUtf8(nat.DescriptorIndex)
	}
	return "", ""
}

// GetString retrieves the string value referenced by a CONSTANT_String entry.
func (cp ConstantPool) GetString(index uint16) string {
	if int(index) >= len(cp) {
		return ""
	}
	if s, ok := cp[index].(*ConstantStringInfo); ok {
		return cp.GetUtf8(s.StringIndex)
	}
	return ""
}
