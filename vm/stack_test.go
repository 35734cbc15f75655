package vm

import (
	"errors"
	"testing"
)

func TestOperandStackInt(t *testing.T) {
	stack := NewOperandStack(10)

	stack.PushInt(42)
	stack.PushInt(-100)
	stack.PushInt(999)

	if stack.Size() != 3 {
		t.Errorf("Size() = %d, want 3", stack.Size())
	}

	for _, want := range []int32{999, -100, 42} {
		v, err := stack.PopInt()
		if err != nil || v != want {
			t.Errorf("PopInt() = %d, %v, want %d, nil", v, err, want)
		}
	}

	if !stack.IsEmpty() {
		t.Error("stack should be empty")
	}
}

func TestOperandStackLong(t *testing.T) {
	stack := NewOperandStack(10)

	stack.PushLong(1234567890123)
	stack.PushLong(-9876543210)

	if v, err := stack.PopLong(); err != nil || v != -9876543210 {
		t.Errorf("PopLong() = %d, %v, want -9876543210, nil", v, err)
	}
	if v, err := stack.PopLong(); err != nil || v != 1234567890123 {
		t.Errorf("PopLong() = %d, %v, want 1234567890123, nil", v, err)
	}
	if !stack.IsEmpty() {
		t.Error("stack should be empty after popping both wide values")
	}
}

func TestOperandStackRef(t *testing.T) {
	stack := NewOperandStack(10)

	stack.PushRef("Hello")
	stack.PushRef(nil)
	arr := NewPrimitiveArray(ArrayTypeInt, 5)
	stack.PushRef(arr)

	if v, err := stack.PopRef(); err != nil || v != any(arr) {
		t.Errorf("PopRef() = %v, %v, want array, nil", v, err)
	}
	if v, err := stack.PopRef(); err != nil || v != nil {
		t.Errorf("PopRef() = %v, %v, want nil, nil", v, err)
	}
	if v, err := stack.PopRef(); err != nil || v != "Hello" {
		t.Errorf("PopRef() = %v, %v, want Hello, nil", v, err)
	}
}

func TestOperandStackPopLongMisaligned(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(1)

	if _, err := stack.PopLong(); !errors.Is(err, ErrInvalidWideLoad) {
		t.Errorf("PopLong() on a narrow top = %v, want ErrInvalidWideLoad", err)
	}
}

func TestDup(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(42)
	if err := stack.Dup(); err != nil {
		t.Fatalf("Dup() error = %v", err)
	}
	if stack.Size() != 2 {
		t.Errorf("Size() = %d, want 2", stack.Size())
	}
	for i := 0; i < 2; i++ {
		v, err := stack.PopInt()
		if err != nil || v != 42 {
			t.Errorf("PopInt() = %d, %v, want 42, nil", v, err)
		}
	}
}

func TestDupRejectsWide(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushLong(7)
	if err := stack.Dup(); !errors.Is(err, ErrInvalidWideLoad) {
		t.Errorf("Dup() on a wide value = %v, want ErrInvalidWideLoad", err)
	}
}

func TestDupX1(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(1) // value2
	stack.PushInt(2) // value1
	if err := stack.DupX1(); err != nil {
		t.Fatalf("DupX1() error = %v", err)
	}
	// ..., value1, value2, value1 -> top to bottom: 2, 1, 2
	wantSeq(t, stack, 2, 1, 2)
}

func TestDupX2Form1(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(1) // value3
	stack.PushInt(2) // value2
	stack.PushInt(3) // value1
	if err := stack.DupX2(); err != nil {
		t.Fatalf("DupX2() error = %v", err)
	}
	// ..., value1, value3, value2, value1 -> top to bottom: 3, 2, 1, 3
	wantSeq(t, stack, 3, 2, 1, 3)
}

func TestDupX2Form2(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushLong(10) // value2 (wide)
	stack.PushInt(99)  // value1
	if err := stack.DupX2(); err != nil {
		t.Fatalf("DupX2() error = %v", err)
	}
	// ..., value1, value2, value1 -> top: 99, then long 10, then 99
	v, err := stack.PopInt()
	if err != nil || v != 99 {
		t.Fatalf("top PopInt() = %d, %v, want 99, nil", v, err)
	}
	l, err := stack.PopLong()
	if err != nil || l != 10 {
		t.Fatalf("PopLong() = %d, %v, want 10, nil", l, err)
	}
	v, err = stack.PopInt()
	if err != nil || v != 99 {
		t.Fatalf("bottom PopInt() = %d, %v, want 99, nil", v, err)
	}
}

func TestDup2Form1(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(1) // value2
	stack.PushInt(2) // value1
	if err := stack.Dup2(); err != nil {
		t.Fatalf("Dup2() error = %v", err)
	}
	// ..., value2, value1, value2, value1 -> top to bottom: 2, 1, 2, 1
	wantSeq(t, stack, 2, 1, 2, 1)
}

func TestDup2Form2(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushLong(55)
	if err := stack.Dup2(); err != nil {
		t.Fatalf("Dup2() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		v, err := stack.PopLong()
		if err != nil || v != 55 {
			t.Errorf("PopLong() = %d, %v, want 55, nil", v, err)
		}
	}
}

func TestSwap(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushInt(1)
	stack.PushInt(2)
	if err := stack.Swap(); err != nil {
		t.Fatalf("Swap() error = %v", err)
	}
	wantSeq(t, stack, 1, 2)
}

func TestDup2X2RejectsNarrowTopWideSecond(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushLong(1) // value2 (wide)
	stack.PushInt(2)  // value1 (narrow)
	if err := stack.Dup2X2(); !errors.Is(err, ErrInvalidWideLoad) {
		t.Errorf("Dup2X2() narrow-over-wide = %v, want ErrInvalidWideLoad", err)
	}
}

func TestDup2X2Form4(t *testing.T) {
	stack := NewOperandStack(10)
	stack.PushLong(10) // value2
	stack.PushLong(20) // value1
	if err := stack.Dup2X2(); err != nil {
		t.Fatalf("Dup2X2() error = %v", err)
	}
	// ..., value1, value2, value1 -> top: 20, 10, 20
	v, err := stack.PopLong()
	if err != nil || v != 20 {
		t.Fatalf("PopLong() = %d, %v, want 20, nil", v, err)
	}
	v, err = stack.PopLong()
	if err != nil || v != 10 {
		t.Fatalf("PopLong() = %d, %v, want 10, nil", v, err)
	}
	v, err = stack.PopLong()
	if err != nil || v != 20 {
		t.Fatalf("PopLong() = %d, %v, want 20, nil", v, err)
	}
}

// wantSeq pops len(want) ints off the stack and checks they come off in the
// given top-to-bottom order.
func wantSeq(t *testing.T, stack *OperandStack, want ...int32) {
	t.Helper()
	for i, w := range want {
		v, err := stack.PopInt()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if v != w {
			t.Errorf("pop %d = %d, want %d", i, v, w)
		}
	}
}
