package vm

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

// NativeMethod represents a native method implementation
type NativeMethod func(frame *Frame) error

// NativeRegistry holds all registered native methods
type NativeRegistry struct {
	methods map[string]NativeMethod
}

// Global native registry
var Natives = NewNativeRegistry()

// NewNativeRegistry creates a new native method registry
func NewNativeRegistry() *NativeRegistry {
	nr := &NativeRegistry{
		methods: make(map[string]NativeMethod),
	}
	nr.registerBuiltins()
	return nr
}

// Register registers a native method
func (nr *NativeRegistry) Register(className, methodName, descriptor string, method NativeMethod) {
	key := className + "." + methodName + descriptor
	nr.methods[key] = method
}

// Lookup finds a native method
func (nr *NativeRegistry) Lookup(className, methodName, descriptor string) NativeMethod {
	key := className + "." + methodName + descriptor
	return nr.methods[key]
}

// ListAll returns all registered native method keys (for debugging)
func (nr *NativeRegistry) ListAll() []string {
	keys := make([]string, 0, len(nr.methods))
	for k := range nr.methods {
		keys = append(keys, k)
	}
	return keys
}

// Count returns the number of registered native methods
func (nr *NativeRegistry) Count() int {
	return len(nr.methods)
}

// registerBuiltins registers the natives this VM bridges to Go directly.
// This is deliberately a small subset of the real JDK surface: just enough
// to run programs that touch timing, array copies, identity, and Math
// without a real java/lang classpath behind them. Class/Thread/String/Runtime
// bridging is left out since nothing in this VM's scope exercises class
// reflection, real threads, string interning, or runtime memory queries.
func (nr *NativeRegistry) registerBuiltins() {
	nr.Register("java/lang/System", "currentTimeMillis", "()J", nativeCurrentTimeMillis)
	nr.Register("java/lang/System", "nanoTime", "()J", nativeNanoTime)
	nr.Register("java/lang/System", "arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V", nativeArraycopy)
	nr.Register("java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I", nativeIdentityHashCode)

	nr.Register("java/lang/Object", "hashCode", "()I", nativeObjectHashCode)
	nr.Register("java/lang/Object", "getClass", "()Ljava/lang/Class;", nativeObjectGetClass)

	nr.Register("java/lang/Math", "sqrt", "(D)D", nativeMathSqrt)
	nr.Register("java/lang/Math", "abs", "(I)I", nativeMathAbsInt)
	nr.Register("java/lang/Math", "abs", "(J)J", nativeMathAbsLong)
	nr.Register("java/lang/Math", "max", "(II)I", nativeMathMaxInt)
	nr.Register("java/lang/Math", "min", "(II)I", nativeMathMinInt)

	nr.Register("java/lang/Float", "floatToRawIntBits", "(F)I", nativeFloatToRawIntBits)
	nr.Register("java/lang/Double", "doubleToRawLongBits", "(D)J", nativeDoubleToRawLongBits)
}

// =============== System natives ===============

func nativeCurrentTimeMillis(frame *Frame) error {
	frame.OperandStack.PushLong(time.Now().UnixMilli())
	return nil
}

func nativeNanoTime(frame *Frame) error {
	frame.OperandStack.PushLong(time.Now().UnixNano())
	return nil
}

func nativeArraycopy(frame *Frame) error {
	stack := frame.OperandStack
	length, err := stack.PopInt()
	if err != nil {
		return err
	}
	destPos, err := stack.PopInt()
	if err != nil {
		return err
	}
	destRef, err := stack.PopRef()
	if err != nil {
		return err
	}
	srcPos, err := stack.PopInt()
	if err != nil {
		return err
	}
	srcRef, err := stack.PopRef()
	if err != nil {
		return err
	}

	if srcRef == nil || destRef == nil {
		return fmt.Errorf("NullPointerException: arraycopy with null array")
	}

	srcArr, srcOk := srcRef.(*Array)
	destArr, destOk := destRef.(*Array)
	if !srcOk || !destOk {
		return fmt.Errorf("ArrayStoreException: not arrays")
	}

	for i := int32(0); i < length; i++ {
		if srcArr.IsRefArray() {
			v, err := srcArr.GetRef(srcPos + i)
			if err != nil {
				return err
			}
			if err := destArr.SetRef(destPos+i, v); err != nil {
				return err
			}
		} else {
			v, err := srcArr.GetInt(srcPos + i)
			if err != nil {
				return err
			}
			if err := destArr.SetInt(destPos+i, v); err != nil {
				return err
			}
		}
	}

	return nil
}

func nativeIdentityHashCode(frame *Frame) error {
	obj, err := frame.OperandStack.PopRef()
	if err != nil {
		return err
	}
	frame.OperandStack.PushInt(identityHash(obj))
	return nil
}

func identityHash(obj any) int32 {
	if obj == nil {
		return 0
	}
	h := fnv.New32a()
	fmt.Fprintf(h, "%p", obj)
	return int32(h.Sum32() & 0x7FFFFFFF)
}

// =============== Object natives ===============

func nativeObjectHashCode(frame *Frame) error {
	obj, err := frame.Locals.GetRef(0)
	if err != nil {
		return err
	}
	frame.OperandStack.PushInt(identityHash(obj))
	return nil
}

func nativeObjectGetClass(frame *Frame) error {
	obj, err := frame.Locals.GetRef(0)
	if err != nil {
		return err
	}
	if o, ok := obj.(*Object); ok && o.Class != nil {
		frame.OperandStack.PushRef("Class<" + o.Class.Name + ">")
	} else {
		frame.OperandStack.PushRef(nil)
	}
	return nil
}

// =============== Math natives ===============

func nativeMathSqrt(frame *Frame) error {
	val, err := frame.OperandStack.PopDouble()
	if err != nil {
		return err
	}
	frame.OperandStack.PushDouble(math.Sqrt(val))
	return nil
}

func nativeMathAbsInt(frame *Frame) error {
	val, err := frame.OperandStack.PopInt()
	if err != nil {
		return err
	}
	if val < 0 {
		val = -val
	}
	frame.OperandStack.PushInt(val)
	return nil
}

func nativeMathAbsLong(frame *Frame) error {
	val, err := frame.OperandStack.PopLong()
	if err != nil {
		return err
	}
	if val < 0 {
		val = -val
	}
	frame.OperandStack.PushLong(val)
	return nil
}

func nativeMathMaxInt(frame *Frame) error {
	b, err := frame.OperandStack.PopInt()
	if err != nil {
		return err
	}
	a, err := frame.OperandStack.PopInt()
	if err != nil {
		return err
	}
	if a > b {
		frame.OperandStack.PushInt(a)
	} else {
		frame.OperandStack.PushInt(b)
	}
	return nil
}

func nativeMathMinInt(frame *Frame) error {
	b, err := frame.OperandStack.PopInt()
	if err != nil {
		return err
	}
	a, err := frame.OperandStack.PopInt()
	if err != nil {
		return err
	}
	if a < b {
		frame.OperandStack.PushInt(a)
	} else {
		frame.OperandStack.PushInt(b)
	}
	return nil
}

// =============== Float/Double natives ===============

func nativeFloatToRawIntBits(frame *Frame) error {
	f, err := frame.OperandStack.PopFloat()
	if err != nil {
		return err
	}
	frame.OperandStack.PushInt(int32(math.Float32bits(f)))
	return nil
}

func nativeDoubleToRawLongBits(frame *Frame) error {
	d, err := frame.OperandStack.PopDouble()
	if err != nil {
		return err
	}
	frame.OperandStack.PushLong(int64(math.Float64bits(d)))
	return nil
}
