// Package interpreter executes the decoded instruction stream of a parsed
// class file against the classvm/vm runtime model.
//
// It is organized the way the opcode set itself is organized: one file per
// instruction family (const/load/store/math/control/array/object/invoke),
// a shared dispatch table in opcodes.go, and the frame-stack run loop and
// exception-table wiring here.
package interpreter

import (
	"fmt"

	"github.com/golang/glog"

	"classvm/classfile"
	"classvm/vm"
)

// outcome tells the run loop how an instruction handler left the program
// counter: most instructions fall through and expect PC+1, branches and
// returns leave PC (or the whole frame stack) exactly where they want it.
type outcome int

const (
	outcomeNext outcome = iota
	outcomeJumped
	outcomeReturned
)

// Interpreter executes bytecode on behalf of one vm.Thread.
type Interpreter struct {
	thread *vm.Thread
	jvm    *vm.JVM

	verbose bool
	debug   bool
	trace   bool

	result    vm.Value
	hasResult bool
}

// NewInterpreter creates an interpreter bound to a standalone thread (no JVM
// instance behind it — monitors and heap tracking are unavailable).
func NewInterpreter(thread *vm.Thread) *Interpreter {
	return &Interpreter{thread: thread}
}

// NewInterpreterWithJVM creates an interpreter on a fresh thread owned by
// jvm, so monitorenter/exit and heap allocation work.
func NewInterpreterWithJVM(jvm *vm.JVM) *Interpreter {
	return &Interpreter{thread: jvm.CreateThread(), jvm: jvm}
}

func (i *Interpreter) SetVerbose(v bool) { i.verbose = v }
func (i *Interpreter) SetDebug(v bool)   { i.debug = v }
func (i *Interpreter) SetTrace(v bool)   { i.trace = v }

// Execute runs a class's main([Ljava/lang/String;)V.
func (i *Interpreter) Execute(class *vm.Class) (vm.Value, bool, error) {
	return i.ExecuteMethod(class, "main", "([Ljava/lang/String;)V", nil)
}

// ExecuteMethod runs a named, resolved static method to completion, passing
// args as its parameters (this VM only drives static entry points directly;
// instance methods are reached through invokevirtual/invokespecial from
// bytecode already running).
func (i *Interpreter) ExecuteMethod(class *vm.Class, name, descriptor string, args []vm.Value) (vm.Value, bool, error) {
	method := resolveMethod(class, name, descriptor)
	if method == nil {
		return vm.Value{}, false, fmt.Errorf("method not found: %s.%s%s", class.Name, name, descriptor)
	}
	frame, err := vm.NewFrame(i.thread, method)
	if err != nil {
		return vm.Value{}, false, err
	}
	if frame == nil {
		return vm.Value{}, false, fmt.Errorf("method has no code: %s.%s%s", class.Name, name, descriptor)
	}
	params := parseParamTypes(descriptor)
	if err := placeArgs(frame.Locals, nil, params, args); err != nil {
		return vm.Value{}, false, err
	}

	i.thread.PushFrame(frame)
	i.hasResult = false
	i.traceCall(method.Owner().Name, name, descriptor)
	return i.run()
}

// run is the single flat dispatch loop driving every frame pushed onto
// i.thread, including frames pushed by invoke instructions executed from
// within the loop itself — there is no recursive call into run for a
// nested method invocation, only a pushed frame the next iteration picks
// up as the new CurrentFrame.
func (i *Interpreter) run() (vm.Value, bool, error) {
	for {
		frame := i.thread.CurrentFrame()
		if frame == nil {
			return i.result, i.hasResult, nil
		}

		op, err := frame.CurrentOp()
		if err != nil {
			return vm.Value{}, false, err
		}
		i.traceInstruction(frame, op)

		out, err := i.dispatch(frame, op)
		if err != nil {
			if i.handleException(err) {
				continue
			}
			return vm.Value{}, false, err
		}

		switch out {
		case outcomeNext:
			frame.SetNextPC(frame.NextPC() + 1)
		case outcomeJumped, outcomeReturned:
			// PC (or the whole frame stack) already set by the handler.
		}
	}
}

// dispatch routes one instruction to its category's handler.
func (i *Interpreter) dispatch(frame *vm.Frame, op classfile.OpCode) (outcome, error) {
	switch categoryOf(op.Op) {
	case categoryConst:
		return i.execConst(frame, op)
	case categoryLoad:
		return i.execLoad(frame, op)
	case categoryStore:
		return i.execStore(frame, op)
	case categoryMath:
		return i.execMath(frame, op)
	case categoryControl:
		return i.execControl(frame, op)
	case categoryArray:
		return i.execArray(frame, op)
	case categoryObject:
		return i.execObject(frame, op)
	case categoryInvoke:
		return i.execInvoke(frame, op)
	default:
		return outcomeNext, fmt.Errorf("unhandled opcode %#x", op.Op)
	}
}

// handleException looks for a handler for a thrown JavaException, starting
// at the current frame and unwinding callers that don't cover it. It
// returns false (propagate) for any non-JavaException error — an
// InternalError or other Go error is always fatal, never subject to
// exception-table dispatch.
func (i *Interpreter) handleException(err error) bool {
	jex, ok := err.(*vm.JavaException)
	if !ok {
		return false
	}
	for {
		frame := i.thread.CurrentFrame()
		if frame == nil {
			return false
		}
		handlerPC := vm.FindExceptionHandler(frame.Handlers, frame.Class.File.ConstantPool, frame.Class.Loader, frame.PC, jex.ClassName)
		if handlerPC >= 0 {
			frame.OperandStack.Clear()
			var ref any = jex
			if jex.Object != nil {
				ref = jex.Object
			}
			frame.OperandStack.PushRef(ref)
			frame.SetNextPC(handlerPC)
			if i.trace {
				glog.V(1).Infof("caught %s at pc=%d", jex.ClassName, handlerPC)
			}
			return true
		}
		if i.debug {
			glog.Warningf("unwinding %s past %s.%s", jex.ClassName, frame.Class.Name, frame.Method.Name())
		}
		i.thread.PopFrame()
	}
}

// runtimeException builds a synthetic java/lang exception this VM throws
// itself (bounds checks, null dereference, arithmetic) without a backing
// Object, since no real java/lang classfile is ever loaded for it.
func runtimeException(simpleName, format string, args ...any) *vm.JavaException {
	return &vm.JavaException{
		ClassName: "java/lang/" + simpleName,
		Message:   fmt.Sprintf(format, args...),
	}
}
