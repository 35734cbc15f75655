package vm

// Locals is a method frame's local variable array. A Long or Double stored
// at index i occupies slots i and i+1, with slot i+1 holding a Padding
// marker, mirroring the operand stack's wide-value convention; this lets
// GetLong/GetDouble detect a misaligned load against half of a wide value
// instead of silently returning garbage.
type Locals struct {
	slots []Value
}

// NewLocals allocates a locals array sized to the method's max_locals.
func NewLocals(maxLocals int) *Locals {
	return &Locals{slots: make([]Value, maxLocals)}
}

func (l *Locals) bounds(index int) error {
	if index < 0 || index >= len(l.slots) {
		return newErr(InvalidProgramCounter, "local index %d out of range [0,%d)", index, len(l.slots))
	}
	return nil
}

// read fetches slot index, rejecting an unstored slot (ErrEmptyLocals) and
// a read that landed on a wide value's padding slot (ErrInvalidWideLoad)
// before the caller's own Kind check runs.
func (l *Locals) read(index int) (Value, error) {
	if err := l.bounds(index); err != nil {
		return Value{}, err
	}
	v := l.slots[index]
	switch v.Kind {
	case KindUninit:
		return Value{}, ErrEmptyLocals
	case KindPadding:
		return Value{}, ErrInvalidWideLoad
	default:
		return v, nil
	}
}

func (l *Locals) SetInt(index int, v int32) error {
	if err := l.bounds(index); err != nil {
		return err
	}
	l.slots[index] = IntVal(v)
	return nil
}

func (l *Locals) GetInt(index int) (int32, error) {
	v, err := l.read(index)
	if err != nil {
		return 0, err
	}
	return v.Int()
}

func (l *Locals) SetFloat(index int, v float32) error {
	if err := l.bounds(index); err != nil {
		return err
	}
	l.slots[index] = FloatVal(v)
	return nil
}

func (l *Locals) GetFloat(index int) (float32, error) {
	v, err := l.read(index)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

func (l *Locals) SetRef(index int, v any) error {
	if err := l.bounds(index); err != nil {
		return err
	}
	l.slots[index] = RefVal(v)
	return nil
}

func (l *Locals) GetRef(index int) (any, error) {
	v, err := l.read(index)
	if err != nil {
		return nil, err
	}
	return v.Ref()
}

func (l *Locals) SetReturnAddr(index int, idx int) error {
	if err := l.bounds(index); err != nil {
		return err
	}
	l.slots[index] = ReturnAddrVal(idx)
	return nil
}

func (l *Locals) GetReturnAddr(index int) (int, error) {
	v, err := l.read(index)
	if err != nil {
		return 0, err
	}
	return v.ReturnAddr()
}

func (l *Locals) setWide(index int, value, pad Value) error {
	if err := l.bounds(index); err != nil {
		return err
	}
	if err := l.bounds(index + 1); err != nil {
		return err
	}
	l.slots[index] = value
	l.slots[index+1] = pad
	return nil
}

func (l *Locals) getWide(index int) (Value, error) {
	if err := l.bounds(index); err != nil {
		return Value{}, err
	}
	if err := l.bounds(index + 1); err != nil {
		return Value{}, err
	}
	v := l.slots[index]
	if v.Kind == KindUninit {
		return Value{}, ErrEmptyLocals
	}
	if l.slots[index+1].Kind != KindPadding {
		return Value{}, ErrInvalidWideLoad
	}
	return v, nil
}

func (l *Locals) SetLong(index int, v int64) error {
	return l.setWide(index, LongVal(v), PaddingVal())
}

func (l *Locals) GetLong(index int) (int64, error) {
	v, err := l.getWide(index)
	if err != nil {
		return 0, err
	}
	return v.Long()
}

func (l *Locals) SetDouble(index int, v float64) error {
	return l.setWide(index, DoubleVal(v), PaddingVal())
}

func (l *Locals) GetDouble(index int) (float64, error) {
	v, err := l.getWide(index)
	if err != nil {
		return 0, err
	}
	return v.Double()
}

// Len reports the declared max_locals size.
func (l *Locals) Len() int { return len(l.slots) }
