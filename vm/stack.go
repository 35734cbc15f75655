package vm

// OperandStack is the per-frame operand stack. Long and Double values push
// two slots (the value, then a Padding marker); every other value pushes
// one. The dup/swap family operates on whole slot-groups ("JVM value
// category" semantics) rather than raw slots, so a wide value is always
// duplicated or reordered as a unit.
type OperandStack struct {
	slots []Value
	sp    int
}

// NewOperandStack creates a stack sized to maxStack slots (the Code
// attribute's declared bound); it still grows past that via append if a
// caller pushes more, since nothing here re-verifies max_stack.
func NewOperandStack(maxStack int) *OperandStack {
	if maxStack < 1 {
		maxStack = 1
	}
	return &OperandStack{slots: make([]Value, 0, maxStack)}
}

func (s *OperandStack) pushRaw(v Value) {
	if s.sp < len(s.slots) {
		s.slots[s.sp] = v
	} else {
		s.slots = append(s.slots, v)
	}
	s.sp++
}

func (s *OperandStack) popRaw() (Value, error) {
	if s.sp == 0 {
		return Value{}, ErrEmptyStack
	}
	s.sp--
	v := s.slots[s.sp]
	s.slots[s.sp] = Value{}
	return v, nil
}

// PushInt pushes a narrow int value.
func (s *OperandStack) PushInt(v int32) { s.pushRaw(IntVal(v)) }

// PushFloat pushes a narrow float value.
func (s *OperandStack) PushFloat(v float32) { s.pushRaw(FloatVal(v)) }

// PushLong pushes a wide long value (value slot + Padding).
func (s *OperandStack) PushLong(v int64) {
	s.pushRaw(LongVal(v))
	s.pushRaw(PaddingVal())
}

// PushDouble pushes a wide double value (value slot + Padding).
func (s *OperandStack) PushDouble(v float64) {
	s.pushRaw(DoubleVal(v))
	s.pushRaw(PaddingVal())
}

// PushRef pushes a reference (nil included).
func (s *OperandStack) PushRef(v any) { s.pushRaw(RefVal(v)) }

// PushReturnAddr pushes a jsr return address (an instruction index).
func (s *OperandStack) PushReturnAddr(idx int) { s.pushRaw(ReturnAddrVal(idx)) }

// PushValue pushes a pre-built Value verbatim (used by ATHROW/dup helpers).
func (s *OperandStack) PushValue(v Value) { s.pushRaw(v) }

func (s *OperandStack) PopInt() (int32, error) {
	v, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	return v.Int()
}

func (s *OperandStack) PopFloat() (float32, error) {
	v, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (s *OperandStack) PopLong() (int64, error) {
	pad, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	if pad.Kind != KindPadding {
		return 0, ErrInvalidWideLoad
	}
	v, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	return v.Long()
}

func (s *OperandStack) PopDouble() (float64, error) {
	pad, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	if pad.Kind != KindPadding {
		return 0, ErrInvalidWideLoad
	}
	v, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	return v.Double()
}

func (s *OperandStack) PopRef() (any, error) {
	v, err := s.popRaw()
	if err != nil {
		return nil, err
	}
	return v.Ref()
}

func (s *OperandStack) PopReturnAddr() (int, error) {
	v, err := s.popRaw()
	if err != nil {
		return 0, err
	}
	return v.ReturnAddr()
}

// PopValue pops a raw Value (used where the caller doesn't know/care about
// the static type, e.g. ASTORE of whatever ATHROW left behind).
func (s *OperandStack) PopValue() (Value, error) { return s.popRaw() }

func (s *OperandStack) Size() int     { return s.sp }
func (s *OperandStack) IsEmpty() bool { return s.sp == 0 }

// Clear empties the stack (used when an exception handler takes over: the
// operand stack is cleared before the exception is pushed).
func (s *OperandStack) Clear() {
	for i := 0; i < s.sp; i++ {
		s.slots[i] = Value{}
	}
	s.sp = 0
}

// topChunks peeks the top n JVM value-groups without mutating the stack.
// chunks[0] is the topmost group (the classfile spec's "value1"), each
// group being the 1 or 2 physical slots ([real] or [real, padding]) that
// make up one logical operand.
func (s *OperandStack) topChunks(n int) ([][]Value, error) {
	chunks := make([][]Value, n)
	pos := s.sp
	for i := 0; i < n; i++ {
		if pos <= 0 {
			return nil, ErrEmptyStack
		}
		if s.slots[pos-1].Kind == KindPadding {
			if pos < 2 {
				return nil, ErrInvalidWideLoad
			}
			chunks[i] = []Value{s.slots[pos-2], s.slots[pos-1]}
			pos -= 2
		} else {
			chunks[i] = []Value{s.slots[pos-1]}
			pos--
		}
	}
	return chunks, nil
}

// consumeChunks physically removes groups previously peeked via topChunks
// (by total physical slot count) so they can be pushed back in a new order.
func (s *OperandStack) consumeChunks(chunks [][]Value) {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	for i := 0; i < total; i++ {
		s.sp--
		s.slots[s.sp] = Value{}
	}
}

func (s *OperandStack) pushChunk(c []Value) {
	for _, v := range c {
		s.pushRaw(v)
	}
}

// Dup: ..., value1 -> ..., value1, value1 (value1 must be category 1).
func (s *OperandStack) Dup() error {
	c, err := s.topChunks(1)
	if err != nil {
		return err
	}
	if len(c[0]) != 1 {
		return ErrInvalidWideLoad
	}
	s.pushChunk(c[0])
	return nil
}

// DupX1: ..., value2, value1 -> ..., value1, value2, value1.
func (s *OperandStack) DupX1() error {
	c, err := s.topChunks(2)
	if err != nil {
		return err
	}
	if len(c[0]) != 1 || len(c[1]) != 1 {
		return ErrInvalidWideLoad
	}
	s.consumeChunks(c)
	s.pushChunk(c[0])
	s.pushChunk(c[1])
	s.pushChunk(c[0])
	return nil
}

// DupX2 implements both forms:
//
//	form1: ..., value3, value2, value1 -> ..., value1, value3, value2, value1  (all cat1)
//	form2: ..., value2, value1         -> ..., value1, value2, value1          (value2 cat2)
func (s *OperandStack) DupX2() error {
	c2, err := s.topChunks(2)
	if err != nil {
		return err
	}
	if len(c2[0]) != 1 {
		return ErrInvalidWideLoad
	}
	if len(c2[1]) == 2 {
		s.consumeChunks(c2)
		s.pushChunk(c2[0])
		s.pushChunk(c2[1])
		s.pushChunk(c2[0])
		return nil
	}
	c3, err := s.topChunks(3)
	if err != nil {
		return err
	}
	if len(c3[2]) != 1 {
		return ErrInvalidWideLoad
	}
	s.consumeChunks(c3)
	s.pushChunk(c3[0])
	s.pushChunk(c3[2])
	s.pushChunk(c3[1])
	s.pushChunk(c3[0])
	return nil
}

// Dup2 implements both forms:
//
//	form1: ..., value2, value1 -> ..., value2, value1, value2, value1  (both cat1)
//	form2: ..., value1         -> ..., value1, value1                 (value1 cat2)
func (s *OperandStack) Dup2() error {
	c1, err := s.topChunks(1)
	if err != nil {
		return err
	}
	if len(c1[0]) == 2 {
		s.pushChunk(c1[0])
		return nil
	}
	c2, err := s.topChunks(2)
	if err != nil {
		return err
	}
	if len(c2[1]) != 1 {
		return ErrInvalidWideLoad
	}
	s.pushChunk(c2[1])
	s.pushChunk(c2[0])
	return nil
}

// Dup2X1 implements both forms:
//
//	form1: ..., value3, value2, value1 -> ..., value2, value1, value3, value2, value1  (all cat1)
//	form2: ..., value2, value1         -> ..., value1, value2, value1                  (value1 cat2)
func (s *OperandStack) Dup2X1() error {
	c1, err := s.topChunks(1)
	if err != nil {
		return err
	}
	if len(c1[0]) == 2 {
		c2, err := s.topChunks(2)
		if err != nil {
			return err
		}
		if len(c2[1]) != 1 {
			return ErrInvalidWideLoad
		}
		s.consumeChunks(c2)
		s.pushChunk(c2[0])
		s.pushChunk(c2[1])
		s.pushChunk(c2[0])
		return nil
	}
	c3, err := s.topChunks(3)
	if err != nil {
		return err
	}
	if len(c3[1]) != 1 || len(c3[2]) != 1 {
		return ErrInvalidWideLoad
	}
	s.consumeChunks(c3)
	s.pushChunk(c3[1])
	s.pushChunk(c3[0])
	s.pushChunk(c3[2])
	s.pushChunk(c3[1])
	s.pushChunk(c3[0])
	return nil
}

// Dup2X2 implements all four forms:
//
//	form1: value4,value3,value2,value1 -> value2,value1,value4,value3,value2,value1  (all cat1)
//	form2: value3,value2,value1        -> value1,value3,value2,value1               (value1 cat2)
//	form3: value3,value2,value1        -> value2,value1,value3,value2,value1        (value3 cat2)
//	form4: value2,value1               -> value1,value2,value1                      (both cat2)
//
// value1 cat1 with value2 cat2 is not a valid form and is rejected with
// InvalidWideLoad rather than silently miscomputed.
func (s *OperandStack) Dup2X2() error {
	c1, err := s.topChunks(1)
	if err != nil {
		return err
	}
	if len(c1[0]) == 2 {
		c2, err := s.topChunks(2)
		if err != nil {
			return err
		}
		if len(c2[1]) == 2 {
			s.consumeChunks(c2)
			s.pushChunk(c2[0])
			s.pushChunk(c2[1])
			s.pushChunk(c2[0])
			return nil
		}
		c3, err := s.topChunks(3)
		if err != nil {
			return err
		}
		if len(c3[2]) != 1 {
			return ErrInvalidWideLoad
		}
		s.consumeChunks(c3)
		s.pushChunk(c3[0])
		s.pushChunk(c3[2])
		s.pushChunk(c3[1])
		s.pushChunk(c3[0])
		return nil
	}

	c2, err := s.topChunks(2)
	if err != nil {
		return err
	}
	if len(c2[1]) == 2 {
		return ErrInvalidWideLoad
	}
	c3, err := s.topChunks(3)
	if err != nil {
		return err
	}
	if len(c3[2]) == 2 {
		s.consumeChunks(c3)
		s.pushChunk(c3[1])
		s.pushChunk(c3[0])
		s.pushChunk(c3[2])
		s.pushChunk(c3[1])
		s.pushChunk(c3[0])
		return nil
	}
	c4, err := s.topChunks(4)
	if err != nil {
		return err
	}
	if len(c4[3]) != 1 {
		return ErrInvalidWideLoad
	}
	s.consumeChunks(c4)
	s.pushChunk(c4[1])
	s.pushChunk(c4[0])
	s.pushChunk(c4[3])
	s.pushChunk(c4[2])
	s.pushChunk(c4[1])
	s.pushChunk(c4[0])
	return nil
}

// Swap: ..., value2, value1 -> ..., value1, value2 (both cat1).
func (s *OperandStack) Swap() error {
	c, err := s.topChunks(2)
	if err != nil {
		return err
	}
	if len(c[0]) != 1 || len(c[1]) != 1 {
		return ErrInvalidWideLoad
	}
	s.consumeChunks(c)
	s.pushChunk(c[0])
	s.pushChunk(c[1])
	return nil
}

// Pop discards the top category-1 value.
func (s *OperandStack) Pop() error {
	c, err := s.topChunks(1)
	if err != nil {
		return err
	}
	s.consumeChunks(c)
	return nil
}

// Pop2 discards the top two category-1 values, or one category-2 value.
func (s *OperandStack) Pop2() error {
	c1, err := s.topChunks(1)
	if err != nil {
		return err
	}
	if len(c1[0]) == 2 {
		s.consumeChunks(c1)
		return nil
	}
	c2, err := s.topChunks(2)
	if err != nil {
		return err
	}
	s.consumeChunks(c2)
	return nil
}
