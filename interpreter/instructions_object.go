package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execObject handles field access, object/monitor lifecycle, and the
// cast/type-test family.
func (i *Interpreter) execObject(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	stack := frame.OperandStack
	cp := frame.Class.File.ConstantPool

	switch op.Op {
	case classfile.Getstatic:
		className, fieldName, descriptor, err := resolveFieldRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		owner := resolveStaticOwner(resolveClass(frame, className), fieldName)
		if owner == nil {
			return outcomeNext, newInternal("getstatic: no such static field %s.%s", className, fieldName)
		}
		return outcomeNext, pushStatic(stack, owner, fieldName, descriptor)

	case classfile.Putstatic:
		className, fieldName, descriptor, err := resolveFieldRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		owner := resolveStaticOwner(resolveClass(frame, className), fieldName)
		if owner == nil {
			return outcomeNext, newInternal("putstatic: no such static field %s.%s", className, fieldName)
		}
		return outcomeNext, popStatic(stack, owner, fieldName, descriptor)

	case classfile.Getfield:
		_, fieldName, descriptor, err := resolveFieldRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		obj, err := asObject(ref)
		if err != nil {
			return outcomeNext, err
		}
		return outcomeNext, pushField(stack, obj, fieldName, descriptor)

	case classfile.Putfield:
		_, fieldName, descriptor, err := resolveFieldRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		value, err := stack.PopValue()
		if err != nil {
			return outcomeNext, err
		}
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		obj, err := asObject(ref)
		if err != nil {
			return outcomeNext, err
		}
		return outcomeNext, storeField(obj, fieldName, descriptor, value)

	case classfile.New:
		className := classNameAt(cp, op.Index)
		class := resolveClass(frame, className)
		if class == nil {
			return outcomeNext, newInternal("new: class %s not loaded", className)
		}
		obj := vm.NewObject(class)
		if jvm := frame.Thread.JVM(); jvm != nil {
			jvm.GetHeap().Alloc(obj)
		}
		stack.PushRef(obj)

	case classfile.Checkcast:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		className := classNameAt(cp, op.Index)
		if ref != nil && !isInstance(ref, className) {
			return outcomeNext, runtimeException("ClassCastException",
				"%s cannot be cast to %s", throwClassName(ref), className)
		}
		stack.PushRef(ref)

	case classfile.Instanceof:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		className := classNameAt(cp, op.Index)
		if ref != nil && isInstance(ref, className) {
			stack.PushInt(1)
		} else {
			stack.PushInt(0)
		}

	case classfile.Monitorenter:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		if ref == nil {
			return outcomeNext, runtimeException("NullPointerException", "")
		}
		jvm := frame.Thread.JVM()
		if jvm == nil {
			return outcomeNext, newInternal("monitorenter: no JVM bound to thread")
		}
		jvm.GetOrCreateMonitor(ref).Enter(frame.Thread)

	case classfile.Monitorexit:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		if ref == nil {
			return outcomeNext, runtimeException("NullPointerException", "")
		}
		jvm := frame.Thread.JVM()
		if jvm == nil {
			return outcomeNext, newInternal("monitorexit: no JVM bound to thread")
		}
		if err := jvm.GetOrCreateMonitor(ref).Exit(frame.Thread); err != nil {
			return outcomeNext, runtimeException("IllegalMonitorStateException", "%v", err)
		}

	case classfile.Athrow:
		ref, err := stack.PopRef()
		if err != nil {
			return outcomeNext, err
		}
		if ref == nil {
			return outcomeNext, runtimeException("NullPointerException", "")
		}
		if jex, ok := ref.(*vm.JavaException); ok {
			return outcomeNext, jex
		}
		obj, _ := ref.(*vm.Object)
		return outcomeNext, &vm.JavaException{Object: obj, ClassName: throwClassName(ref), Message: exceptionMessage(obj)}

	default:
		return outcomeNext, unreachableOpcode(op)
	}
	return outcomeNext, nil
}

func pushStatic(stack *vm.OperandStack, owner *vm.Class, name, descriptor string) error {
	switch descriptor[0] {
	case 'J':
		stack.PushLong(owner.GetStaticLong(name))
	case 'F':
		stack.PushFloat(owner.GetStaticFloat(name))
	case 'D':
		stack.PushDouble(owner.GetStaticDouble(name))
	case 'L', '[':
		stack.PushRef(owner.GetStaticRef(name))
	default:
		stack.PushInt(owner.GetStaticInt(name))
	}
	return nil
}

func popStatic(stack *vm.OperandStack, owner *vm.Class, name, descriptor string) error {
	switch descriptor[0] {
	case 'J':
		v, err := stack.PopLong()
		if err != nil {
			return err
		}
		owner.SetStaticLong(name, v)
	case 'F':
		v, err := stack.PopFloat()
		if err != nil {
			return err
		}
		owner.SetStaticFloat(name, v)
	case 'D':
		v, err := stack.PopDouble()
		if err != nil {
			return err
		}
		owner.SetStaticDouble(name, v)
	case 'L', '[':
		v, err := stack.PopRef()
		if err != nil {
			return err
		}
		owner.SetStaticRef(name, v)
	default:
		v, err := stack.PopInt()
		if err != nil {
			return err
		}
		owner.SetStaticInt(name, v)
	}
	return nil
}

func pushField(stack *vm.OperandStack, obj *vm.Object, name, descriptor string) error {
	switch descriptor[0] {
	case 'J':
		stack.PushLong(obj.GetFieldLong(name))
	case 'F':
		stack.PushFloat(obj.GetFieldFloat(name))
	case 'D':
		stack.PushDouble(obj.GetFieldDouble(name))
	case 'L', '[':
		stack.PushRef(obj.GetFieldRef(name))
	default:
		stack.PushInt(obj.GetFieldInt(name))
	}
	return nil
}

func storeField(obj *vm.Object, name, descriptor string, value vm.Value) error {
	switch descriptor[0] {
	case 'J':
		v, err := value.Long()
		if err != nil {
			return err
		}
		obj.SetFieldLong(name, v)
	case 'F':
		v, err := value.Float()
		if err != nil {
			return err
		}
		obj.SetFieldFloat(name, v)
	case 'D':
		v, err := value.Double()
		if err != nil {
			return err
		}
		obj.SetFieldDouble(name, v)
	case 'L', '[':
		v, err := value.Ref()
		if err != nil {
			return err
		}
		obj.SetFieldRef(name, v)
	default:
		v, err := value.Int()
		if err != nil {
			return err
		}
		obj.SetFieldInt(name, v)
	}
	return nil
}

func asObject(ref any) (*vm.Object, error) {
	if ref == nil {
		return nil, runtimeException("NullPointerException", "")
	}
	obj, ok := ref.(*vm.Object)
	if !ok {
		return nil, newInternal("expected object reference, got %T", ref)
	}
	return obj, nil
}

// isInstance implements checkcast/instanceof's runtime type test against
// an arbitrary reference, which may be a real object, an array, or a bridged
// native value like a Go string standing in for java/lang/String.
func isInstance(ref any, className string) bool {
	switch v := ref.(type) {
	case *vm.Object:
		return v.IsInstanceOf(className) || className == "java/lang/Object"
	case *vm.Array:
		return className == "java/lang/Object" || className == throwClassName(v)
	case string:
		return className == "java/lang/String" || className == "java/lang/Object"
	default:
		return className == "java/lang/Object"
	}
}

func exceptionMessage(obj *vm.Object) string {
	if obj == nil {
		return ""
	}
	if msg, ok := obj.GetFieldRef("message").(string); ok {
		return msg
	}
	return ""
}
