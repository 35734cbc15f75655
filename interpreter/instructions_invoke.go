package interpreter

import (
	"classvm/classfile"
	"classvm/vm"
)

// execInvoke handles the four bytecode call instructions plus the
// invokedynamic decode stub. Every non-static form pops its receiver after
// its arguments (it was pushed first, so it sits deepest).
func (i *Interpreter) execInvoke(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	cp := frame.Class.File.ConstantPool

	switch op.Op {
	case classfile.Invokestatic:
		className, methodName, descriptor, _, err := resolveMethodRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		return i.invoke(frame, className, methodName, descriptor, false)

	case classfile.Invokespecial:
		className, methodName, descriptor, _, err := resolveMethodRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		return i.invoke(frame, className, methodName, descriptor, true)

	case classfile.Invokevirtual:
		className, methodName, descriptor, _, err := resolveMethodRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		return i.invokeVirtual(frame, className, methodName, descriptor)

	case classfile.Invokeinterface:
		className, methodName, descriptor, _, err := resolveMethodRef(cp, op.Index)
		if err != nil {
			return outcomeNext, err
		}
		return i.invokeVirtual(frame, className, methodName, descriptor)

	case classfile.Invokedynamic:
		// Resolved once at the first call site in a real JVM via a bootstrap
		// method; this VM never generates invokedynamic call sites itself
		// (no lambda/string-concat desugaring), so seeing one in a loaded
		// class file is a feature it declines to execute rather than a bug.
		return outcomeNext, newInternal("invokedynamic is not executable in this VM")

	default:
		return outcomeNext, unreachableOpcode(op)
	}
}

// invoke handles invokestatic (hasReceiver=false) and invokespecial
// (hasReceiver=true, exact-class dispatch — constructors, private methods,
// and super calls all resolve against the compile-time owner, never the
// receiver's actual runtime class).
func (i *Interpreter) invoke(frame *vm.Frame, className, methodName, descriptor string, hasReceiver bool) (outcome, error) {
	params := parseParamTypes(descriptor)

	if native := vm.Natives.Lookup(className, methodName, descriptor); native != nil {
		return i.callNative(frame, native, params, hasReceiver)
	}

	owner := resolveClass(frame, className)
	if owner == nil {
		return outcomeNext, newInternal("%s not loaded", className)
	}
	method := resolveMethod(owner, methodName, descriptor)
	if method == nil {
		return outcomeNext, newInternal("method not found: %s.%s%s", className, methodName, descriptor)
	}
	return i.invokeBytecode(frame, method, params, hasReceiver)
}

// invokeVirtual handles invokevirtual/invokeinterface: the arguments are
// popped first and then the receiver beneath them, and the method is
// resolved starting from the receiver's own runtime class so overrides
// take effect.
func (i *Interpreter) invokeVirtual(frame *vm.Frame, className, methodName, descriptor string) (outcome, error) {
	params := parseParamTypes(descriptor)

	if native := vm.Natives.Lookup(className, methodName, descriptor); native != nil {
		return i.callNative(frame, native, params, true)
	}

	args, err := popArgs(frame.OperandStack, params)
	if err != nil {
		return outcomeNext, err
	}
	thisVal, err := frame.OperandStack.PopValue()
	if err != nil {
		return outcomeNext, err
	}
	ref, err := thisVal.Ref()
	if err != nil {
		return outcomeNext, err
	}
	if ref == nil {
		return outcomeNext, runtimeException("NullPointerException", "")
	}
	obj, ok := ref.(*vm.Object)
	if !ok {
		return outcomeNext, newInternal("invokevirtual target is not an object: %T", ref)
	}

	method := resolveMethod(obj.Class, methodName, descriptor)
	if method == nil {
		return outcomeNext, newInternal("method not found: %s.%s%s", obj.ClassName(), methodName, descriptor)
	}
	return i.invokeBytecodeWithArgs(frame, method, &thisVal, args)
}

// invokeBytecode pops arguments (and, if hasReceiver, the receiver) off
// frame's stack and dispatches to invokeBytecodeWithArgs.
func (i *Interpreter) invokeBytecode(frame *vm.Frame, method *vm.Method, params []byte, hasReceiver bool) (outcome, error) {
	args, err := popArgs(frame.OperandStack, params)
	if err != nil {
		return outcomeNext, err
	}
	var this *vm.Value
	if hasReceiver {
		v, err := frame.OperandStack.PopValue()
		if err != nil {
			return outcomeNext, err
		}
		this = &v
	}
	return i.invokeBytecodeWithArgs(frame, method, this, args)
}

func (i *Interpreter) invokeBytecodeWithArgs(frame *vm.Frame, method *vm.Method, this *vm.Value, args []vm.Value) (outcome, error) {
	callee, err := vm.NewFrame(frame.Thread, method)
	if err != nil {
		return outcomeNext, err
	}
	if callee == nil {
		owner := method.Owner()
		return outcomeNext, newInternal("method has no code: %s.%s", owner.Name, method.Name())
	}
	descriptor := method.Descriptor()
	params := parseParamTypes(descriptor)
	if err := placeArgs(callee.Locals, this, params, args); err != nil {
		return outcomeNext, err
	}

	i.thread.PushFrame(callee)
	i.traceCall(method.Owner().Name, method.Name(), descriptor)
	return outcomeJumped, nil
}

// callNative runs a registered Go-native implementation synchronously,
// using a throwaway frame whose Locals and OperandStack are both populated
// with the same arguments (instance-style natives read via Locals.GetRef(0),
// stack-style natives pop off OperandStack — this VM's native registry uses
// both conventions across different builtins), then pushes the topmost
// non-padding value the native left on its operand stack (if any) onto the
// caller.
func (i *Interpreter) callNative(frame *vm.Frame, native vm.NativeMethod, params []byte, hasReceiver bool) (outcome, error) {
	args, err := popArgs(frame.OperandStack, params)
	if err != nil {
		return outcomeNext, err
	}
	var this *vm.Value
	if hasReceiver {
		v, err := frame.OperandStack.PopValue()
		if err != nil {
			return outcomeNext, err
		}
		this = &v
	}

	slots := len(params) + 1
	callee := &vm.Frame{
		Locals:       vm.NewLocals(slots * 2),
		OperandStack: vm.NewOperandStack(slots * 2),
		Thread:       frame.Thread,
		Class:        frame.Class,
	}
	if err := placeArgs(callee.Locals, this, params, args); err != nil {
		return outcomeNext, err
	}
	if this != nil {
		if err := pushValue(callee.OperandStack, *this); err != nil {
			return outcomeNext, err
		}
	}
	for _, a := range args {
		if err := pushValue(callee.OperandStack, a); err != nil {
			return outcomeNext, err
		}
	}

	if err := native(callee); err != nil {
		if jex, ok := err.(*vm.JavaException); ok {
			return outcomeNext, jex
		}
		return outcomeNext, nativeError(err)
	}

	for callee.OperandStack.Size() > 0 {
		v, err := callee.OperandStack.PopValue()
		if err != nil {
			return outcomeNext, err
		}
		if v.Kind == vm.KindPadding {
			continue
		}
		if err := pushValue(frame.OperandStack, v); err != nil {
			return outcomeNext, err
		}
		break
	}
	return outcomeNext, nil
}
