package vm

import "fmt"

// Kind tags which variant of Value is active.
type Kind uint8

const (
	// KindUninit is the zero value: a local slot that has never been
	// stored into.
	KindUninit Kind = iota
	KindInt
	KindFloat
	KindLong
	KindDouble
	KindRef
	KindReturnAddress
	// KindPadding marks the shadow slot a Long or Double occupies above
	// its real value, so loads/stores can detect a misaligned access
	// against a wide value instead of silently reading half of one.
	KindPadding
)

// Value is the tagged union every operand-stack slot and local variable
// slot holds.
type Value struct {
	Kind Kind
	i32  int32
	f32  float32
	i64  int64
	f64  float64
	ref  any
	addr int
}

func IntVal(v int32) Value          { return Value{Kind: KindInt, i32: v} }
func FloatVal(v float32) Value      { return Value{Kind: KindFloat, f32: v} }
func LongVal(v int64) Value         { return Value{Kind: KindLong, i64: v} }
func DoubleVal(v float64) Value     { return Value{Kind: KindDouble, f64: v} }
func RefVal(v any) Value            { return Value{Kind: KindRef, ref: v} }
func ReturnAddrVal(idx int) Value   { return Value{Kind: KindReturnAddress, addr: idx} }
func PaddingVal() Value             { return Value{Kind: KindPadding} }

// IsWide reports whether this value's real form occupies two slots.
func (v Value) IsWide() bool { return v.Kind == KindLong || v.Kind == KindDouble }

func (v Value) Int() (int32, error) {
	if v.Kind != KindInt {
		return 0, newErr(WrongType, "want int, have %v", v.Kind)
	}
	return v.i32, nil
}

func (v Value) Float() (float32, error) {
	if v.Kind != KindFloat {
		return 0, newErr(WrongType, "want float, have %v", v.Kind)
	}
	return v.f32, nil
}

func (v Value) Long() (int64, error) {
	if v.Kind != KindLong {
		return 0, newErr(WrongType, "want long, have %v", v.Kind)
	}
	return v.i64, nil
}

func (v Value) Double() (float64, error) {
	if v.Kind != KindDouble {
		return 0, newErr(WrongType, "want double, have %v", v.Kind)
	}
	return v.f64, nil
}

func (v Value) Ref() (any, error) {
	if v.Kind != KindRef {
		return nil, newErr(WrongType, "want ref, have %v", v.Kind)
	}
	return v.ref, nil
}

func (v Value) ReturnAddr() (int, error) {
	if v.Kind != KindReturnAddress {
		return 0, newErr(WrongType, "want return address, have %v", v.Kind)
	}
	return v.addr, nil
}

func (k Kind) String() string {
	switch k {
	case KindUninit:
		return "uninit"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindRef:
		return "ref"
	case KindReturnAddress:
		return "returnAddress"
	case KindPadding:
		return "padding"
	default:
		return "?"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("int(%d)", v.i32)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.f32)
	case KindLong:
		return fmt.Sprintf("long(%d)", v.i64)
	case KindDouble:
		return fmt.Sprintf("double(%g)", v.f64)
	case KindRef:
		return fmt.Sprintf("ref(%v)", v.ref)
	case KindReturnAddress:
		return fmt.Sprintf("returnAddress(%d)", v.addr)
	case KindPadding:
		return "padding"
	default:
		return "uninit"
	}
}
