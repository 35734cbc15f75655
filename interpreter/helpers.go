package interpreter

import (
	"fmt"

	"github.com/golang/glog"

	"classvm/classfile"
	"classvm/vm"
)

// parseParamTypes splits a method descriptor's parameter section into one
// type-char per parameter: primitives by their own letter, 'L' for a
// reference type and '[' for an array, both collapsing whatever follows
// (a class name to ';', or further array dimensions and an element type)
// into that single marker, since only the width (narrow/wide/ref) matters
// for argument-popping and local-slot placement.
func parseParamTypes(descriptor string) []byte {
	var params []byte
	i := 1 // skip '('
	for i < len(descriptor) && descriptor[i] != ')' {
		switch descriptor[i] {
		case 'L':
			params = append(params, 'L')
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
			i++
		case '[':
			for i < len(descriptor) && descriptor[i] == '[' {
				i++
			}
			if i < len(descriptor) && descriptor[i] == 'L' {
				for i < len(descriptor) && descriptor[i] != ';' {
					i++
				}
			}
			params = append(params, '[')
			i++
		default:
			params = append(params, descriptor[i])
			i++
		}
	}
	return params
}

// returnType returns the type char following ')' in a method descriptor,
// or 'V' for void.
func returnType(descriptor string) byte {
	for i := 0; i < len(descriptor); i++ {
		if descriptor[i] == ')' {
			if i+1 < len(descriptor) {
				return descriptor[i+1]
			}
			return 'V'
		}
	}
	return 'V'
}

func isWideType(t byte) bool { return t == 'J' || t == 'D' }
func isRefType(t byte) bool  { return t == 'L' || t == '[' }

// popArgs pops len(params) arguments off stack in descriptor order (leftmost
// parameter deepest), returning them left-to-right.
func popArgs(stack *vm.OperandStack, params []byte) ([]vm.Value, error) {
	args := make([]vm.Value, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		switch {
		case isWideType(params[i]):
			v, err := stack.PopValue()
			if err != nil {
				return nil, err
			}
			if v.Kind != vm.KindPadding {
				return nil, vm.ErrInvalidWideLoad
			}
			real, err := stack.PopValue()
			if err != nil {
				return nil, err
			}
			args[i] = real
		default:
			v, err := stack.PopValue()
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
	}
	return args, nil
}

// placeArgs writes this (if present) and args into a callee frame's locals
// starting at slot 0, honoring wide values' two-slot layout.
func placeArgs(locals *vm.Locals, this *vm.Value, params []byte, args []vm.Value) error {
	slot := 0
	if this != nil {
		ref, err := this.Ref()
		if err != nil {
			return err
		}
		if err := locals.SetRef(slot, ref); err != nil {
			return err
		}
		slot++
	}
	for i, t := range params {
		v := args[i]
		switch {
		case t == 'J':
			lv, err := v.Long()
			if err != nil {
				return err
			}
			if err := locals.SetLong(slot, lv); err != nil {
				return err
			}
			slot += 2
		case t == 'D':
			dv, err := v.Double()
			if err != nil {
				return err
			}
			if err := locals.SetDouble(slot, dv); err != nil {
				return err
			}
			slot += 2
		case isRefType(t):
			rv, err := v.Ref()
			if err != nil {
				return err
			}
			if err := locals.SetRef(slot, rv); err != nil {
				return err
			}
			slot++
		case t == 'F':
			fv, err := v.Float()
			if err != nil {
				return err
			}
			if err := locals.SetFloat(slot, fv); err != nil {
				return err
			}
			slot++
		default:
			iv, err := v.Int()
			if err != nil {
				return err
			}
			if err := locals.SetInt(slot, iv); err != nil {
				return err
			}
			slot++
		}
	}
	return nil
}

// pushValue pushes a Value onto stack using the push form matching its own
// Kind (used for return-value propagation, where the static descriptor type
// and the Value's dynamic Kind always agree for well-formed bytecode).
func pushValue(stack *vm.OperandStack, v vm.Value) error {
	switch v.Kind {
	case vm.KindInt:
		n, _ := v.Int()
		stack.PushInt(n)
	case vm.KindFloat:
		f, _ := v.Float()
		stack.PushFloat(f)
	case vm.KindLong:
		l, _ := v.Long()
		stack.PushLong(l)
	case vm.KindDouble:
		d, _ := v.Double()
		stack.PushDouble(d)
	case vm.KindRef:
		r, _ := v.Ref()
		stack.PushRef(r)
	case vm.KindReturnAddress:
		a, _ := v.ReturnAddr()
		stack.PushReturnAddr(a)
	default:
		return vm.ErrWrongType
	}
	return nil
}

// loadConstant pushes the constant pool entry at index (an LDC/LDC_W target,
// so Integer/Float/String/Class) onto stack.
func loadConstant(stack *vm.OperandStack, cp classfile.ConstantPool, index int) error {
	if index < 0 || index >= len(cp) {
		return newInternal("bad constant pool index %d", index)
	}
	switch c := cp[index].(type) {
	case *classfile.ConstantIntegerInfo:
		stack.PushInt(c.Value)
	case *classfile.ConstantFloatInfo:
		stack.PushFloat(c.Value)
	case *classfile.ConstantStringInfo:
		stack.PushRef(cp.GetUtf8(c.StringIndex))
	case *classfile.ConstantClassInfo:
		stack.PushRef("Class<" + cp.GetUtf8(c.NameIndex) + ">")
	default:
		return newInternal("ldc: unsupported constant pool entry %T", c)
	}
	return nil
}

// loadConstant2 pushes the wide constant pool entry at index (an LDC2_W
// target, so Long/Double) onto stack.
func loadConstant2(stack *vm.OperandStack, cp classfile.ConstantPool, index int) error {
	if index < 0 || index >= len(cp) {
		return newInternal("bad constant pool index %d", index)
	}
	switch c := cp[index].(type) {
	case *classfile.ConstantLongInfo:
		stack.PushLong(c.Value)
	case *classfile.ConstantDoubleInfo:
		stack.PushDouble(c.Value)
	default:
		return newInternal("ldc2_w: unsupported constant pool entry %T", c)
	}
	return nil
}

// nativeError converts a native method's plain "ClassName: message" error
// (vm/native.go's built-ins signal exceptions this way, not as
// *vm.JavaException, since they don't import the interpreter package) into
// a real JavaException so it participates in exception-table dispatch.
func nativeError(err error) error {
	msg := err.Error()
	for idx := 0; idx < len(msg); idx++ {
		if msg[idx] == ':' && idx+1 < len(msg) && msg[idx+1] == ' ' {
			return &vm.JavaException{ClassName: "java/lang/" + msg[:idx], Message: msg[idx+2:]}
		}
	}
	return &vm.JavaException{ClassName: "java/lang/RuntimeException", Message: msg}
}

func newInternal(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// unreachableOpcode signals a category/dispatch mismatch: categoryOf routed
// op here but the handler's switch has no case for it, which would mean
// opcodes.go's table disagrees with the handler it points to.
func unreachableOpcode(op classfile.OpCode) error {
	return fmt.Errorf("opcode %#x not handled by its category's dispatcher", op.Op)
}

// resolveClass finds the vm.Class for className, consulting the calling
// frame's own class first (the common case: a method calling a sibling
// method on itself or its own static fields), then the thread's loaded-class
// cache, then the shared loader. This VM does no on-demand classpath
// search: every class a running program touches must already have been
// registered with the loader before execution starts.
func resolveClass(frame *vm.Frame, className string) *vm.Class {
	if frame.Class.Name == className {
		return frame.Class
	}
	if c := frame.Thread.GetClass(className); c != nil {
		return c
	}
	if frame.Class.Loader != nil {
		if c := frame.Class.Loader.Lookup(className); c != nil {
			frame.Thread.LoadClass(className, c)
			return c
		}
	}
	return nil
}

// resolveMethod finds name/descriptor starting at class and walking the
// superclass chain, the way real virtual dispatch resolves an override
// against the receiver's actual runtime class rather than the static
// reference type recorded at the call site. The returned vm.Method carries
// a weak back-edge to the class that actually declared it (which may be an
// ancestor of class), so callers never need to thread the declaring class
// around separately.
func resolveMethod(class *vm.Class, name, descriptor string) *vm.Method {
	for c := class; c != nil; c = c.Super() {
		if m := c.File.GetMethod(name, descriptor); m != nil {
			return vm.NewMethod(m, c)
		}
	}
	return nil
}

// resolveFieldRef decodes a CONSTANT_Fieldref entry into its owning class
// name, field name, and descriptor.
func resolveFieldRef(cp classfile.ConstantPool, index int) (className, fieldName, descriptor string, err error) {
	ref, ok := cp[index].(*classfile.ConstantFieldrefInfo)
	if !ok {
		return "", "", "", newInternal("constant pool index %d is not a Fieldref", index)
	}
	className = cp.GetClassName(ref.ClassIndex)
	fieldName, descriptor = cp.GetNameAndType(ref.NameAndTypeIndex)
	return className, fieldName, descriptor, nil
}

// resolveMethodRef decodes a CONSTANT_Methodref or
// CONSTANT_InterfaceMethodref entry into its owning class name, method
// name, and descriptor.
func resolveMethodRef(cp classfile.ConstantPool, index int) (className, methodName, descriptor string, isInterface bool, err error) {
	switch ref := cp[index].(type) {
	case *classfile.ConstantMethodrefInfo:
		className = cp.GetClassName(ref.ClassIndex)
		methodName, descriptor = cp.GetNameAndType(ref.NameAndTypeIndex)
		return className, methodName, descriptor, false, nil
	case *classfile.ConstantInterfaceMethodrefInfo:
		className = cp.GetClassName(ref.ClassIndex)
		methodName, descriptor = cp.GetNameAndType(ref.NameAndTypeIndex)
		return className, methodName, descriptor, true, nil
	default:
		return "", "", "", false, newInternal("constant pool index %d is not a Methodref", index)
	}
}

// resolveStaticOwner walks class's superclass chain to find which class in
// the hierarchy actually declared the static field, the same way
// resolveMethod walks for methods.
func resolveStaticOwner(class *vm.Class, name string) *vm.Class {
	for c := class; c != nil; c = c.Super() {
		if c.HasStatic(name) {
			return c
		}
	}
	return nil
}

func throwClassName(obj any) string {
	switch o := obj.(type) {
	case *vm.Object:
		return o.ClassName()
	case *vm.JavaException:
		return o.ClassName
	case *vm.Array:
		return o.String()
	case string:
		return "java/lang/String"
	default:
		return "java/lang/Throwable"
	}
}

func (i *Interpreter) traceCall(className, methodName, descriptor string) {
	if i.trace {
		glog.V(1).Infof("call %s.%s%s", className, methodName, descriptor)
	}
}

func (i *Interpreter) traceReturn(methodName string, v vm.Value, hasValue bool) {
	if i.trace {
		if hasValue {
			glog.V(1).Infof("return %s -> %s", methodName, v.String())
		} else {
			glog.V(1).Infof("return %s -> void", methodName)
		}
	}
}

func (i *Interpreter) traceInstruction(frame *vm.Frame, op classfile.OpCode) {
	if i.verbose {
		glog.V(2).Infof("pc=%d op=%#x depth=%d", frame.PC, op.Op, i.thread.StackDepth())
	}
}
