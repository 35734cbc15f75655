package interpreter

import (
	"math"

	"classvm/classfile"
	"classvm/vm"
)

// execMath handles stack shuffling (pop/dup/swap), arithmetic, bitwise,
// shift, comparison, and narrowing/widening conversion instructions.
func (i *Interpreter) execMath(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack

	switch op.Op {
	case classfile.Pop:
		return outcomeNext, stack.Pop()
	case classfile.Pop2:
		return outcomeNext, stack.Pop2()
	case classfile.Dup:
		return outcomeNext, stack.Dup()
	case classfile.DupX1:
		return outcomeNext, stack.DupX1()
	case classfile.DupX2:
		return outcomeNext, stack.DupX2()
	case classfile.Dup2:
		return outcomeNext, stack.Dup2()
	case classfile.Dup2X1:
		return outcomeNext, stack.Dup2X1()
	case classfile.Dup2X2:
		return outcomeNext, stack.Dup2X2()
	case classfile.Swap:
		return outcomeNext, stack.Swap()

	case classfile.Iadd:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a + b })
	case classfile.Isub:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a - b })
	case classfile.Imul:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a * b })
	case classfile.Idiv:
		return outcomeNext, binIntErr(stack, func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, runtimeException("ArithmeticException", "/ by zero")
			}
			return a / b, nil
		})
	case classfile.Irem:
		return outcomeNext, binIntErr(stack, func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, runtimeException("ArithmeticException", "/ by zero")
			}
			return a % b, nil
		})
	case classfile.Ineg:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(-v)

	case classfile.Ladd:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a + b })
	case classfile.Lsub:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a - b })
	case classfile.Lmul:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a * b })
	case classfile.Ldiv:
		return outcomeNext, binLongErr(stack, func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, runtimeException("ArithmeticException", "/ by zero")
			}
			return a / b, nil
		})
	case classfile.Lrem:
		return outcomeNext, binLongErr(stack, func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, runtimeException("ArithmeticException", "/ by zero")
			}
			return a % b, nil
		})
	case classfile.Lneg:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushLong(-v)

	case classfile.Fadd:
		return outcomeNext, binFloat(stack, func(a, b float32) float32 { return a + b })
	case classfile.Fsub:
		return outcomeNext, binFloat(stack, func(a, b float32) float32 { return a - b })
	case classfile.Fmul:
		return outcomeNext, binFloat(stack, func(a, b float32) float32 { return a * b })
	case classfile.Fdiv:
		return outcomeNext, binFloat(stack, func(a, b float32) float32 { return a / b })
	case classfile.Frem:
		return outcomeNext, binFloat(stack, func(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) })
	case classfile.Fneg:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushFloat(-v)

	case classfile.Dadd:
		return outcomeNext, binDouble(stack, func(a, b float64) float64 { return a + b })
	case classfile.Dsub:
		return outcomeNext, binDouble(stack, func(a, b float64) float64 { return a - b })
	case classfile.Dmul:
		return outcomeNext, binDouble(stack, func(a, b float64) float64 { return a * b })
	case classfile.Ddiv:
		return outcomeNext, binDouble(stack, func(a, b float64) float64 { return a / b })
	case classfile.Drem:
		return outcomeNext, binDouble(stack, math.Mod)
	case classfile.Dneg:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushDouble(-v)

	case classfile.Ishl:
		return outcomeNext, shiftInt(stack, func(a int32, n uint) int32 { return a << (n & 0x1f) })
	case classfile.Ishr:
		return outcomeNext, shiftInt(stack, func(a int32, n uint) int32 { return a >> (n & 0x1f) })
	case classfile.Iushr:
		return outcomeNext, shiftInt(stack, func(a int32, n uint) int32 { return int32(uint32(a) >> (n & 0x1f)) })
	case classfile.Lshl:
		return outcomeNext, shiftLong(stack, func(a int64, n uint) int64 { return a << (n & 0x3f) })
	case classfile.Lshr:
		return outcomeNext, shiftLong(stack, func(a int64, n uint) int64 { return a >> (n & 0x3f) })
	case classfile.Lushr:
		return outcomeNext, shiftLong(stack, func(a int64, n uint) int64 { return int64(uint64(a) >> (n & 0x3f)) })

	case classfile.Iand:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a & b })
	case classfile.Ior:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a | b })
	case classfile.Ixor:
		return outcomeNext, binInt(stack, func(a, b int32) int32 { return a ^ b })
	case classfile.Land:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a & b })
	case classfile.Lor:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a | b })
	case classfile.Lxor:
		return outcomeNext, binLong(stack, func(a, b int64) int64 { return a ^ b })

	case classfile.Iinc:
		v, err := frame.Locals.GetInt(op.Index)
		if err != nil {
			return outcomeNext, err
		}
		if err := frame.Locals.SetInt(op.Index, v+op.Delta); err != nil {
			return outcomeNext, err
		}

	case classfile.I2l:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushLong(int64(v))
	case classfile.I2f:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushFloat(float32(v))
	case classfile.I2d:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushDouble(float64(v))
	case classfile.L2i:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(int32(v))
	case classfile.L2f:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushFloat(float32(v))
	case classfile.L2d:
		v, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushDouble(float64(v))
	case classfile.F2i:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(floatToInt32(float64(v)))
	case classfile.F2l:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushLong(floatToInt64(float64(v)))
	case classfile.F2d:
		v, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushDouble(float64(v))
	case classfile.D2i:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(floatToInt32(v))
	case classfile.D2l:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushLong(floatToInt64(v))
	case classfile.D2f:
		v, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushFloat(float32(v))
	case classfile.I2b:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(int32(int8(v)))
	case classfile.I2c:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(int32(uint16(v)))
	case classfile.I2s:
		v, err := stack.PopInt()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(int32(int16(v)))

	case classfile.Lcmp:
		b, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		a, err := stack.PopLong()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(cmp3(a, b))
	case classfile.Fcmpl, classfile.Fcmpg:
		b, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		a, err := stack.PopFloat()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(floatCmp(float64(a), float64(b), op.Op == classfile.Fcmpg))
	case classfile.Dcmpl, classfile.Dcmpg:
		b, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		a, err := stack.PopDouble()
		if err != nil {
			return outcomeNext, err
		}
		stack.PushInt(floatCmp(a, b, op.Op == classfile.Dcmpg))

	default:
		return outcomeNext, unreachableOpcode(op)
	}
	return outcomeNext, nil
}

func binInt(stack *vm.OperandStack, f func(a, b int32) int32) error {
	b, err := stack.PopInt()
	if err != nil {
		return err
	}
	a, err := stack.PopInt()
	if err != nil {
		return err
	}
	stack.PushInt(f(a, b))
	return nil
}

func binIntErr(stack *vm.OperandStack, f func(a, b int32) (int32, error)) error {
	b, err := stack.PopInt()
	if err != nil {
		return err
	}
	a, err := stack.PopInt()
	if err != nil {
		return err
	}
	v, err := f(a, b)
	if err != nil {
		return err
	}
	stack.PushInt(v)
	return nil
}

func binLong(stack *vm.OperandStack, f func(a, b int64) int64) error {
	b, err := stack.PopLong()
	if err != nil {
		return err
	}
	a, err := stack.PopLong()
	if err != nil {
		return err
	}
	stack.PushLong(f(a, b))
	return nil
}

func binLongErr(stack *vm.OperandStack, f func(a, b int64) (int64, error)) error {
	b, err := stack.PopLong()
	if err != nil {
		return err
	}
	a, err := stack.PopLong()
	if err != nil {
		return err
	}
	v, err := f(a, b)
	if err != nil {
		return err
	}
	stack.PushLong(v)
	return nil
}

func binFloat(stack *vm.OperandStack, f func(a, b float32) float32) error {
	b, err := stack.PopFloat()
	if err != nil {
		return err
	}
	a, err := stack.PopFloat()
	if err != nil {
		return err
	}
	stack.PushFloat(f(a, b))
	return nil
}

func binDouble(stack *vm.OperandStack, f func(a, b float64) float64) error {
	b, err := stack.PopDouble()
	if err != nil {
		return err
	}
	a, err := stack.PopDouble()
	if err != nil {
		return err
	}
	stack.PushDouble(f(a, b))
	return nil
}

func shiftInt(stack *vm.OperandStack, f func(a int32, n uint) int32) error {
	n, err := stack.PopInt()
	if err != nil {
		return err
	}
	a, err := stack.PopInt()
	if err != nil {
		return err
	}
	stack.PushInt(f(a, uint(n)))
	return nil
}

func shiftLong(stack *vm.OperandStack, f func(a int64, n uint) int64) error {
	n, err := stack.PopInt()
	if err != nil {
		return err
	}
	a, err := stack.PopLong()
	if err != nil {
		return err
	}
	stack.PushLong(f(a, uint(n)))
	return nil
}

func cmp3[T int64 | float64](a, b T) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// floatCmp implements fcmpg/dcmpg (nanResult=1, g for "greater on NaN") and
// fcmpl/dcmpl (nanResult=-1, l for "less on NaN").
func floatCmp(a, b float64, nanIsGreater bool) int32 {
	if math.IsNaN(a) || math.IsNaN(b) {
		if nanIsGreater {
			return 1
		}
		return -1
	}
	return cmp3(a, b)
}

// floatToInt32/floatToInt64 implement the classfile spec's f2i/d2i/f2l/d2l
// saturating conversion: NaN becomes 0, out-of-range values saturate to the
// target type's min/max instead of wrapping the way a plain Go conversion
// would.
func floatToInt32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func floatToInt64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}
