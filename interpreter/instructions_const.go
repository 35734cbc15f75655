package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execConst handles every instruction that pushes a constant (nop, the
// iconst/lconst/fconst/dconst families, bipush/sipush, and the three ldc
// forms).
func (i *Interpreter) execConst(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack
	cp := frame.Class.File.ConstantPool

	switch op.Op {
	case classfile.Nop:
	case classfile.AconstNull:
		stack.PushRef(nil)
	case classfile.IconstM1:
		stack.PushInt(-1)
	case classfile.Iconst0:
		stack.PushInt(0)
	case classfile.Iconst1:
		stack.PushInt(1)
	case classfile.Iconst2:
		stack.PushInt(2)
	case classfile.Iconst3:
		stack.PushInt(3)
	case classfile.Iconst4:
		stack.PushInt(4)
	case classfile.Iconst5:
		stack.PushInt(5)
	case classfile.Lconst0:
		stack.PushLong(0)
	case classfile.Lconst1:
		stack.PushLong(1)
	case classfile.Fconst0:
		stack.PushFloat(0)
	case classfile.Fconst1:
		stack.PushFloat(1)
	case classfile.Fconst2:
		stack.PushFloat(2)
	case classfile.Dconst0:
		stack.PushDouble(0)
	case classfile.Dconst1:
		stack.PushDouble(1)
	case classfile.Bipush, classfile.Sipush:
		stack.PushInt(op.IntOperand)
	case classfile.Ldc, classfile.LdcW:
		if err := loadConstant(stack, cp, op.Index); err != nil {
			return outcomeNext, err
		}
	case classfile.Ldc2W:
		if err := loadConstant2(stack, cp, op.Index); err != nil {
			return outcomeNext, err
		}
	default:
		return outcomeNext, unreachableOpcode(op)
	}
	return outcomeNext, nil
}
