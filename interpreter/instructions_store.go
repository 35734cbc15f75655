package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execStore handles every *store instruction, mirroring execLoad's index
// resolution.
func (i *Interpreter) execStore(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack
	locals := frame.Locals

	idx := -1
	switch op.Op {
	case classfile.Istore, classfile.Lstore, classfile.Fstore, classfile.Dstore, classfile.Astore:
		idx = op.Index
	case classfile.Istore0, classfile.Lstore0, classfile.Fstore0, classfile.Dstore0, classfile.Astore0:
		idx = 0
	case classfile.Istore1, classfile.Lstore1, classfile.Fstore1, classfile.Dstore1, classfile.Astore1:
		idx = 1
	case classfile.Istore2, classfile.Lstore2, classfile.Fstore2, classfile.Dstore2, classfile.Astore2:
		idx = 2
	case classfile.Istore3, classfile.Lstore3, classfile.Fstore3, classfile.Dstore3, classfile.Astore3:
		idx = 3
	default:
		return outcomeNext, unreachableOpcode(op)
	}

	switch op.Op {
	case classfile.Istore, classfile.Istore0, classfile.Istore1, classfile.Istore2, classfile.Istore3:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		if err := locals.SetInt(idx, v); err != nil {
			return outcomeNext, err
		}
	case classfile.Lstore, classfile.Lstore0, classfile.Lstore1, classfile.Lstore2, classfile.Lstore3:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		if err := locals.SetLong(idx, v); err != nil {
			return outcomeNext, err
		}
	case classfile.Fstore, classfile.Fstore0, classfile.Fstore1, classfile.Fstore2, classfile.Fstore3:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		if err := locals.SetFloat(idx, v); err != nil {
			return outcomeNext, err
		}
	case classfile.Dstore, classfile.Dstore0, classfile.Dstore1, classfile.Dstore2, classfile.Dstore3:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		if err := locals.SetDouble(idx, v); err != nil {
			return outcomeNext, err
		}
	case classfile.Astore, classfile.Astore0, classfile.Astore1, classfile.Astore2, classfile.Astore3:
		v, err := stack.PopValue()
		if err != nil {
			return outcomeNext, err
		}
		switch v.Kind {
		case vm.KindRef:
			r, _ := v.Ref()
			if err := locals.SetRef(idx, r); err != nil {
				return outcomeNext, err
			}
		case vm.KindReturnAddress:
			a, _ := v.ReturnAddr()
			if err := locals.SetReturnAddr(idx, a); err != nil {
				return outcomeNext, err
			}
		default:
			return outcomeNext, vm.ErrWrongType
		}
	}
	return outcomeNext, nil
}
