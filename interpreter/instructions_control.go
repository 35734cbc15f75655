package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execControl handles branches, switches, subroutine calls, and method
// returns. Every jump target here (op.Jump, op.Default, op.JumpTable) is
// already a resolved instruction-array index, so taking a branch is just
// frame.SetNextPC(target).
func (i *Interpreter) execControl(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack

	switch op.Op {
	case classfile.Ifeq, classfile.Ifne, classfile.Iflt, classfile.Ifge, classfile.Ifgt, classfile.Ifle:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		return i.takeIf(frame, op, testInt(op.Op, v, 0))

	case classfile.IfIcmpeq, classfile.IfIcmpne, classfile.IfIcmplt, classfile.IfIcmpge, classfile.IfIcmpgt, classfile.IfIcmple:
		b, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		a, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		return i.takeIf(frame, op, testIcmp(op.Op, a, b))

	case classfile.IfAcmpeq, classfile.IfAcmpne:
		b, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		a, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		eq := a == b
		if op.Op == classfile.IfAcmpne {
			eq = !eq
		}
		return i.takeIf(frame, op, eq)

	case classfile.Ifnull, classfile.Ifnonnull:
		r, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		isNull := r == nil
		if op.Op == classfile.Ifnonnull {
			isNull = !isNull
		}
		return i.takeIf(frame, op, isNull)

	case classfile.Goto, classfile.GotoW:
		frame.SetNextPC(op.Jump)
		return outcomeJumped, nil

	case classfile.Jsr, classfile.JsrW:
		stack.PushReturnAddr(frame.PC + 1)
		frame.SetNextPC(op.Jump)
		return outcomeJumped, nil

	case classfile.Ret:
		target, err := frame.Locals.GetReturnAddr(op.Index)
		if err != nil {
			return outcomeNext, err
		}
		frame.SetNextPC(target)
		return outcomeJumped, nil

	case classfile.Tableswitch:
		key, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		if key < op.Low || key > op.High {
			frame.SetNextPC(op.Default)
		} else {
			frame.SetNextPC(op.JumpTable[key-op.Low])
		}
		return outcomeJumped, nil

	case classfile.Lookupswitch:
		key, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		target := op.Default
		for idx, match := range op.MatchTable {
			if match == key {
				target = op.JumpTable[idx]
				break
			}
		}
		frame.SetNextPC(target)
		return outcomeJumped, nil

	case classfile.Ireturn:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		return i.doReturn(vm.IntVal(v))
	case classfile.Lreturn:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		return i.doReturn(vm.LongVal(v))
	case classfile.Freturn:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		return i.doReturn(vm.FloatVal(v))
	case classfile.Dreturn:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		return i.doReturn(vm.DoubleVal(v))
	case classfile.Areturn:
		v, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		return i.doReturn(vm.RefVal(v))
	case classfile.Return:
		return i.doReturnVoid()

	default:
		return outcomeNext, unreachableOpcode(op)
	}
}

// takeIf sets the frame's PC to the branch target when taken is true, and
// otherwise reports outcomeNext so the caller falls through to the next
// instruction as normal.
func (i *Interpreter) takeIf(frame *vm.Frame, op classfile.OpCode, taken bool) (outcome, error) {
	if !taken {
		return outcomeNext, nil
	}
	frame.SetNextPC(op.Jump)
	return outcomeJumped, nil
}

func testInt(op uint8, v, zero int32) bool {
	switch op {
	case classfile.Ifeq:
		return v == zero
	case classfile.Ifne:
		return v != zero
	case classfile.Iflt:
		return v < zero
	case classfile.Ifge:
		return v >= zero
	case classfile.Ifgt:
		return v > zero
	case classfile.Ifle:
		return v <= zero
	}
	return false
}

func testIcmp(op uint8, a, b int32) bool {
	switch op {
	case classfile.IfIcmpeq:
		return a == b
	case classfile.IfIcmpne:
		return a != b
	case classfile.IfIcmplt:
		return a < b
	case classfile.IfIcmpge:
		return a >= b
	case classfile.IfIcmpgt:
		return a > b
	case classfile.IfIcmple:
		return a <= b
	}
	return false
}

// doReturn pops the current frame and either pushes v onto the caller (who
// resumes at the instruction after its invoke) or, if this was the
// outermost frame, captures v as the interpreter's final result.
func (i *Interpreter) doReturn(v vm.Value) (outcome, error) {
	returning := i.thread.CurrentFrame()
	i.traceReturn(returning.Method.Name(), v, true)
	i.thread.PopFrame()

	caller := i.thread.CurrentFrame()
	if caller == nil {
		i.result = v
		i.hasResult = true
		return outcomeReturned, nil
	}
	if err := pushValue(caller.OperandStack, v); err != nil {
		return outcomeNext, err
	}
	caller.SetNextPC(caller.PC + 1)
	return outcomeReturned, nil
}

func (i *Interpreter) doReturnVoid() (outcome, error) {
	returning := i.thread.CurrentFrame()
	i.traceReturn(returning.Method.Name(), vm.Value{}, false)
	i.thread.PopFrame()

	caller := i.thread.CurrentFrame()
	if caller == nil {
		i.hasResult = false
		return outcomeReturned, nil
	}
	caller.SetNextPC(caller.PC + 1)
	return outcomeReturned, nil
}
