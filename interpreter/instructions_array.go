package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execArray handles array creation and every *aload/*astore element access,
// plus arraylength and multianewarray.
func (i *Interpreter) execArray(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack
	cp := frame.Class.File.ConstantPool

	switch op.Op {
	case classfile.Iaload, classfile.Laload, classfile.Faload, classfile.Daload, classfile.Aaload,
		classfile.Baload, classfile.Caload, classfile.Saload:
		idx, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		arr, err := asArray(ref)
		if err != nil {
			return outcomeNext, err
		}
		if idx < 0 || idx >= arr.Length {
			return outcomeNext, arrayIndexException(idx, arr.Length)
		}
		switch op.Op {
		case classfile.Iaload, classfile.Baload, classfile.Caload, classfile.Saload:
			v, err := arr.GetInt(idx)
			if err != nil {
				return outcomeNext, err
			}
			stack.PushInt(v)
		case classfile.Laload:
			v, err := arr.GetLong(idx)
			if err != nil {
				return outcomeNext, err
			}
			stack.PushLong(v)
		case classfile.Faload:
			v, err := arr.GetFloat(idx)
			if err != nil {
				return outcomeNext, err
			}
			stack.PushFloat(v)
		case classfile.Daload:
			v, err := arr.GetDouble(idx)
			if err != nil {
				return outcomeNext, err
			}
			stack.PushDouble(v)
		case classfile.Aaload:
			v, err := arr.GetRef(idx)
			if err != nil {
				return outcomeNext, err
			}
			stack.PushRef(v)
		}

	case classfile.Iastore, classfile.Lastore, classfile.Fastore, classfile.Dastore, classfile.Aastore,
		classfile.Bastore, classfile.Castore, classfile.Sastore:
		return outcomeNext, i.execArrayStore(frame, op)

	case classfile.Newarray:
		count, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		if count < 0 {
			return outcomeNext, runtimeException("NegativeArraySizeException", "%d", count)
		}
		stack.PushRef(vm.NewPrimitiveArray(vm.ArrayType(op.IntOperand), count))

	case classfile.Anewarray:
		count, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		if count < 0 {
			return outcomeNext, runtimeException("NegativeArraySizeException", "%d", count)
		}
		className := classNameAt(cp, op.Index)
		stack.PushRef(vm.NewReferenceArray(className, count))

	case classfile.Arraylength:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		arr, err := asArray(ref)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(arr.Length)

	case classfile.Multianewarray:
		return outcomeNext, i.execMultianewarray(frame, op)

	default:
		return outcomeNext, unreachableOpcode(op)
	}
	return outcomeNext, nil
}

func (i *Interpreter) execArrayStore(frame *vm.Frame, op classfile.OpCode) error {
	stack := frame.OperandStack

	value, err := stack.PopValue()
	if err != nil {
		return err
	}
	idx, err := stack.PopInt()
	if err != nil {
		return err
	}
	ref, err := stack.PopRef()
	if err != nil {
		return err
	}
	arr, err := asArray(ref)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= arr.Length {
		return arrayIndexException(idx, arr.Length)
	}

	switch op.Op {
	case classfile.Iastore:
		v, err := value.Int()
		if err != nil {
			return err
		}
		return arr.SetInt(idx, v)
	case classfile.Bastore:
		v, err := value.Int()
		if err != nil {
			return err
		}
		if arr.Type == vm.ArrayTypeBoolean {
			return arr.SetInt(idx, v&1)
		}
		return arr.SetInt(idx, int32(int8(v)))
	case classfile.Castore:
		v, err := value.Int()
		if err != nil {
			return err
		}
		return arr.SetInt(idx, int32(uint16(v)))
	case classfile.Sastore:
		v, err := value.Int()
		if err != nil {
			return err
		}
		return arr.SetInt(idx, int32(int16(v)))
	case classfile.Lastore:
		v, err := value.Long()
		if err != nil {
			return err
		}
		return arr.SetLong(idx, v)
	case classfile.Fastore:
		v, err := value.Float()
		if err != nil {
			return err
		}
		return arr.SetFloat(idx, v)
	case classfile.Dastore:
		v, err := value.Double()
		if err != nil {
			return err
		}
		return arr.SetDouble(idx, v)
	case classfile.Aastore:
		v, err := value.Ref()
		if err != nil {
			return err
		}
		if v != nil && !isInstance(v, arr.ClassName) {
			return runtimeException("ArrayStoreException", "%s", throwClassName(v))
		}
		return arr.SetRef(idx, v)
	}
	return unreachableOpcode(op)
}

// execMultianewarray builds op.Dimensions nested levels of arrays, popping
// one length per dimension off the stack (outermost dimension's length
// popped last, since it was pushed first).
func (i *Interpreter) execMultianewarray(frame *vm.Frame, op classfile.OpCode) error {
	stack := frame.OperandStack
	cp := frame.Class.File.ConstantPool

	dims := op.Dimensions
	lengths := make([]int32, dims)
	for d := dims - 1; d >= 0; d-- {
		n, err := stack.PopInt()
		if err != nil {
			return err
		}
		if n < 0 {
			return runtimeException("NegativeArraySizeException", "%d", n)
		}
		lengths[d] = n
	}

	className := classNameAt(cp, op.Index)
	arr := buildMultiArray(className, lengths)
	stack.PushRef(arr)
	return nil
}

func buildMultiArray(className string, lengths []int32) *vm.Array {
	elemClass := className
	if len(elemClass) > 0 && elemClass[0] == '[' {
		elemClass = elemClass[1:]
	}
	top := vm.NewReferenceArray(elemClass, lengths[0])
	if len(lengths) == 1 {
		return top
	}
	for idx := int32(0); idx < lengths[0]; idx++ {
		sub := buildMultiArray(elemClass, lengths[1:])
		top.SetRef(idx, sub)
	}
	return top
}

func asArray(ref any) (*vm.Array, error) {
	if ref == nil {
		return nil, runtimeException("NullPointerException", "")
	}
	arr, ok := ref.(*vm.Array)
	if !ok {
		return nil, newInternal("expected array reference, got %T", ref)
	}
	return arr, nil
}

func arrayIndexException(idx, length int32) error {
	return runtimeException("ArrayIndexOutOfBoundsException", "Index %d out of bounds for length %d", idx, length)
}

func classNameAt(cp classfile.ConstantPool, index int) string {
	if index < 0 || index >= len(cp) {
		return ""
	}
	if c, ok := cp[index].(*classfile.ConstantClassInfo); ok {
		return cp.GetUtf8(c.NameIndex)
	}
	return ""
}
