package vm

import (
	"fmt"

	"classvm/classfile"
)

// Frame represents one method activation. PC indexes directly into Code,
// the method's two-phase-decoded instruction stream, so dispatch and
// branch-taking never touch a raw byte offset at runtime. Class is the
// method's declaring class, resolved through Method's weak back-edge at
// frame construction time rather than threaded in separately, so every
// call that builds a frame exercises that back-edge.
type Frame struct {
	Locals       *Locals
	OperandStack *OperandStack
	Thread       *Thread
	Method       *Method
	Class        *Class
	PC           int
	Code         []classfile.OpCode
	Handlers     []classfile.ResolvedHandler
}

// NewFrame creates a new stack frame for method, or nil if the method has
// no Code attribute (abstract/native).
func NewFrame(thread *Thread, method *Method) (*Frame, error) {
	owner := method.Owner()
	if owner == nil {
		return nil, fmt.Errorf("method's declaring class is no longer available")
	}

	code, err := method.Info.GetCodeAttribute(owner.File.ConstantPool)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, nil
	}

	ops, err := code.OpCodes()
	if err != nil {
		return nil, err
	}
	handlers, err := code.ExceptionHandlers()
	if err != nil {
		return nil, err
	}

	return &Frame{
		Locals:       NewLocals(int(code.MaxLocals)),
		OperandStack: NewOperandStack(int(code.MaxStack)),
		Thread:       thread,
		Method:       method,
		Class:        owner,
		PC:           0,
		Code:         ops,
		Handlers:     handlers,
	}, nil
}

// NextPC returns the current program counter.
func (f *Frame) NextPC() int {
	return f.PC
}

// SetNextPC sets the program counter to a resolved instruction index.
func (f *Frame) SetNextPC(pc int) {
	f.PC = pc
}

// CurrentOp returns the instruction at PC, or an error if PC has run off
// the end of the method (a fall-through past the final instruction with no
// return, which the decoder's validation should make unreachable for
// well-formed bytecode).
func (f *Frame) CurrentOp() (classfile.OpCode, error) {
	if f.PC < 0 || f.PC >= len(f.Code) {
		return classfile.OpCode{}, newErr(InvalidProgramCounter, "pc %d out of range [0,%d)", f.PC, len(f.Code))
	}
	return f.Code[f.PC], nil
}
