package interpreter

import (
	"testing"

	"classvm/classfile"
	"classvm/vm"
)

func testClass(name string) *vm.Class {
	loader := vm.NewLoader()
	return loader.Register(&classfile.ClassFile{
		ConstantPool: classfile.ConstantPool{nil},
	})
}

// runMethod builds a frame directly from a hand-assembled instruction
// stream (bypassing classfile decoding, since these tests exercise the
// interpreter's dispatch loop, not the decoder) and executes it to
// completion.
func runMethod(t *testing.T, code []classfile.OpCode, maxLocals, maxStack int, handlers []classfile.ResolvedHandler) (vm.Value, bool, error) {
	t.Helper()
	jvm := vm.NewJVM()
	thread := jvm.CreateThread()
	class := testClass("Test")

	frame := &vm.Frame{
		Locals:       vm.NewLocals(maxLocals),
		OperandStack: vm.NewOperandStack(maxStack),
		Thread:       thread,
		Class:        class,
		Code:         code,
		Handlers:     handlers,
	}
	thread.PushFrame(frame)

	interp := NewInterpreterWithJVM(jvm)
	return interp.run()
}

func TestAddTwoInts(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.Iload0},
		{Op: classfile.Iload1},
		{Op: classfile.Iadd},
		{Op: classfile.Ireturn},
	}
	jvm := vm.NewJVM()
	thread := jvm.CreateThread()
	class := testClass("Test")
	frame := &vm.Frame{
		Locals:       vm.NewLocals(2),
		OperandStack: vm.NewOperandStack(4),
		Thread:       thread,
		Class:        class,
		Code:         code,
	}
	frame.Locals.SetInt(0, 2)
	frame.Locals.SetInt(1, 3)
	thread.PushFrame(frame)

	interp := NewInterpreterWithJVM(jvm)
	result, hasResult, err := interp.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !hasResult {
		t.Fatal("expected a result")
	}
	got, err := result.Int()
	if err != nil {
		t.Fatalf("result.Int: %v", err)
	}
	if got != 5 {
		t.Errorf("2+3 = %d, want 5", got)
	}
}

// TestIterativeFibonacci computes fib(10) with a loop built from
// if_icmplt/goto, verifying that op.Jump (already a resolved instruction
// index by the time the interpreter sees it) drives branching correctly.
//
// Locals: 0=n, 1=a, 2=b, 3=i, 4=tmp
//
//	0: iconst_0        ; a = 0
//	1: istore_1
//	2: iconst_1        ; b = 1
//	3: istore_2
//	4: iconst_0        ; i = 0
//	5: istore_3
//	6: iload_3         ; loop: if (i >= n) goto end
//	7: iload_0
//	8: if_icmpge -> 19
//	9: iload_1         ; tmp = a + b
//	10: iload_2
//	11: iadd
//	12: istore 4
//	13: iload_2        ; a = b
//	14: istore_1
//	15: iload 4        ; b = tmp
//	16: istore_2
//	(loop increment folded into the next two ops below)
func TestIterativeFibonacci(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.Iconst0},                       // 0: a = 0
		{Op: classfile.Istore1},                        // 1
		{Op: classfile.Iconst1},                        // 2: b = 1
		{Op: classfile.Istore2},                        // 3
		{Op: classfile.Iconst0},                        // 4: i = 0
		{Op: classfile.Istore3},                        // 5
		{Op: classfile.Iload3},                         // 6: loop test
		{Op: classfile.Iload0},                         // 7
		{Op: classfile.IfIcmpge, Jump: 17},              // 8
		{Op: classfile.Iload1},                         // 9: tmp = a+b
		{Op: classfile.Iload2},                         // 10
		{Op: classfile.Iadd},                           // 11
		{Op: classfile.Istore, Index: 4},                // 12
		{Op: classfile.Iload2},                         // 13: a = b
		{Op: classfile.Istore1},                        // 14
		{Op: classfile.Iload, Index: 4},                 // 15: b = tmp
		{Op: classfile.Istore2},                        // 16
		{Op: classfile.Iinc, Index: 3, Delta: 1},        // 17: i++
		{Op: classfile.Goto, Jump: 6},                   // 18
		{Op: classfile.Iload1},                         // 19: return a  (loop exit)
		{Op: classfile.Ireturn},                        // 20
	}
	// Patch the loop exit: IfIcmpge at index 8 jumps to 19 (return a), and
	// the increment/goto pair lives at 17-18.
	code[8].Jump = 19

	jvm := vm.NewJVM()
	thread := jvm.CreateThread()
	class := testClass("Test")
	frame := &vm.Frame{
		Locals:       vm.NewLocals(5),
		OperandStack: vm.NewOperandStack(4),
		Thread:       thread,
		Class:        class,
		Code:         code,
	}
	frame.Locals.SetInt(0, 10)
	thread.PushFrame(frame)

	interp := NewInterpreterWithJVM(jvm)
	result, hasResult, err := interp.run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !hasResult {
		t.Fatal("expected a result")
	}
	got, _ := result.Int()
	if got != 55 {
		t.Errorf("fib(10) = %d, want 55", got)
	}
}

func TestArrayIndexOutOfBoundsThrows(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.Iconst3},
		{Op: classfile.Newarray, IntOperand: int32(vm.ArrayTypeInt)},
		{Op: classfile.Iconst5},
		{Op: classfile.Iaload},
		{Op: classfile.Ireturn},
	}
	_, _, err := runMethod(t, code, 1, 4, nil)
	jex, ok := err.(*vm.JavaException)
	if !ok {
		t.Fatalf("expected *vm.JavaException, got %T (%v)", err, err)
	}
	if jex.ClassName != "java/lang/ArrayIndexOutOfBoundsException" {
		t.Errorf("ClassName = %q, want ArrayIndexOutOfBoundsException", jex.ClassName)
	}
}

func TestArrayLengthOnNullThrows(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.AconstNull},
		{Op: classfile.Arraylength},
		{Op: classfile.Ireturn},
	}
	_, _, err := runMethod(t, code, 0, 4, nil)
	jex, ok := err.(*vm.JavaException)
	if !ok {
		t.Fatalf("expected *vm.JavaException, got %T (%v)", err, err)
	}
	if jex.ClassName != "java/lang/NullPointerException" {
		t.Errorf("ClassName = %q, want NullPointerException", jex.ClassName)
	}
}

// TestCaughtExceptionResumesAtHandler builds a method that divides by zero
// inside a try block whose exception table entry covers instructions 0-3
// (everything before the handler), verifying FindExceptionHandler dispatch resumes execution at the
// handler's instruction index rather than unwinding the frame.
func TestCaughtExceptionResumesAtHandler(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.Iconst1},  // 0
		{Op: classfile.Iconst0},  // 1
		{Op: classfile.Idiv},     // 2: throws ArithmeticException
		{Op: classfile.Ireturn},  // 3: unreachable
		{Op: classfile.Pop},      // 4: handler - discard the pushed exception ref
		{Op: classfile.Iconst2},  // 5
		{Op: classfile.Ireturn},  // 6
	}
	handlers := []classfile.ResolvedHandler{
		{StartPC: 0, EndPC: 4, HandlerPC: 4, CatchType: 0},
	}
	result, hasResult, err := runMethod(t, code, 0, 4, handlers)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !hasResult {
		t.Fatal("expected a result")
	}
	got, _ := result.Int()
	if got != 2 {
		t.Errorf("caught-exception result = %d, want 2", got)
	}
}

func TestUncaughtDivideByZeroPropagates(t *testing.T) {
	code := []classfile.OpCode{
		{Op: classfile.Iconst1},
		{Op: classfile.Iconst0},
		{Op: classfile.Idiv},
		{Op: classfile.Ireturn},
	}
	_, _, err := runMethod(t, code, 0, 4, nil)
	jex, ok := err.(*vm.JavaException)
	if !ok {
		t.Fatalf("expected *vm.JavaException, got %T (%v)", err, err)
	}
	if jex.ClassName != "java/lang/ArithmeticException" {
		t.Errorf("ClassName = %q, want ArithmeticException", jex.ClassName)
	}
}

func TestFloatComparisonNaNOrdering(t *testing.T) {
	i := &Interpreter{}
	if got := floatCmp(1, 2, false); got != -1 {
		t.Errorf("1 < 2 => %d, want -1", got)
	}
	if got := floatCmp(2, 1, true); got != 1 {
		t.Errorf("2 > 1 => %d, want 1", got)
	}
	nan := 0.0
	nan = nan / nan
	if got := floatCmp(nan, 1, true); got != 1 {
		t.Errorf("fcmpg with NaN => %d, want 1", got)
	}
	if got := floatCmp(nan, 1, false); got != -1 {
		t.Errorf("fcmpl with NaN => %d, want -1", got)
	}
	_ = i
}
