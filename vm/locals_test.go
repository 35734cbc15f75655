package vm

import (
	"errors"
	"testing"
)

func TestLocals(t *testing.T) {
	locals := NewLocals(10)

	must(t, locals.SetInt(0, 100))
	if v, err := locals.GetInt(0); err != nil || v != 100 {
		t.Errorf("GetInt(0) = %d, %v, want 100, nil", v, err)
	}

	must(t, locals.SetLong(1, 9876543210))
	if v, err := locals.GetLong(1); err != nil || v != 9876543210 {
		t.Errorf("GetLong(1) = %d, %v, want 9876543210, nil", v, err)
	}

	must(t, locals.SetRef(3, "test"))
	if v, err := locals.GetRef(3); err != nil || v != "test" {
		t.Errorf("GetRef(3) = %v, %v, want test, nil", v, err)
	}
}

func TestLocalsUninitRead(t *testing.T) {
	locals := NewLocals(4)
	if _, err := locals.GetInt(2); !errors.Is(err, ErrEmptyLocals) {
		t.Errorf("GetInt on unstored slot = %v, want ErrEmptyLocals", err)
	}
}

func TestLocalsWideOverlapsNextSlot(t *testing.T) {
	locals := NewLocals(4)
	must(t, locals.SetLong(0, 42))

	if _, err := locals.GetInt(1); !errors.Is(err, ErrInvalidWideLoad) {
		t.Errorf("GetInt into a long's padding slot = %v, want ErrInvalidWideLoad", err)
	}
}
