package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execLoad handles every *load instruction, including the indexed forms
// (operand from op.Index — the wide variant decodes to the same case since
// Wide just widened the index the decoder already resolved) and the _0.._3
// shorthand forms.
func (i *Interpreter) execLoad(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack
	locals := frame.Locals

	idx := -1
	switch op.Op {
	case classfile.Iload, classfile.Lload, classfile.Fload, classfile.Dload, classfile.Aload:
		idx = op.Index
	case classfile.Iload0, classfile.Lload0, classfile.Fload0, classfile.Dload0, classfile.Aload0:
		idx = 0
	case classfile.Iload1, classfile.Lload1, classfile.Fload1, classfile.Dload1, classfile.Aload1:
		idx = 1
	case classfile.Iload2, classfile.Lload2, classfile.Fload2, classfile.Dload2, classfile.Aload2:
		idx = 2
	case classfile.Iload3, classfile.Lload3, classfile.Fload3, classfile.Dload3, classfile.Aload3:
		idx = 3
	default:
		return outcomeNext, unreachableOpcode(op)
	}

	switch op.Op {
	case classfile.Iload, classfile.Iload0, classfile.Iload1, classfile.Iload2, classfile.Iload3:
		v, err := locals.GetInt(idx)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(v)
	case classfile.Lload, classfile.Lload0, classfile.Lload1, classfile.Lload2, classfile.Lload3:
		v, err := locals.GetLong(idx)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushLong(v)
	case classfile.Fload, classfile.Fload0, classfile.Fload1, classfile.Fload2, classfile.Fload3:
		v, err := locals.GetFloat(idx)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushFloat(v)
	case classfile.Dload, classfile.Dload0, classfile.Dload1, classfile.Dload2, classfile.Dload3:
		v, err := locals.GetDouble(idx)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushDouble(v)
	case classfile.Aload, classfile.Aload0, classfile.Aload1, classfile.Aload2, classfile.Aload3:
		v, err := locals.GetRef(idx)
		if err != nil {
			return outcomeNext, err
		}
		stack.PushRef(v)
	}
	return outcomeNext, nil
}
