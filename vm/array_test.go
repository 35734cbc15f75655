package vm

import "testing"

func TestNewPrimitiveArray(t *testing.T) {
	tests := []struct {
		name   string
		atype  ArrayType
		length int32
	}{
		{"int array", ArrayTypeInt, 10},
		{"long array", ArrayTypeLong, 5},
		{"byte array", ArrayTypeByte, 100},
		{"char array", ArrayTypeChar, 50},
		{"boolean array", ArrayTypeBoolean, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := NewPrimitiveArray(tt.atype, tt.length)
			if arr.Length != tt.length {
				t.Errorf("Length = %d, want %d", arr.Length, tt.length)
			}
			if arr.Type != tt.atype {
				t.Errorf("Type = %d, want %d", arr.Type, tt.atype)
			}
			if arr.IsRefArray() {
				t.Error("Primitive array should not be a reference array")
			}
		})
	}
}

func TestArrayIntOperations(t *testing.T) {
	arr := NewPrimitiveArray(ArrayTypeInt, 5)

	must(t, arr.SetInt(0, 100))
	must(t, arr.SetInt(2, 200))
	must(t, arr.SetInt(4, 300))

	if v, err := arr.GetInt(0); err != nil || v != 100 {
		t.Errorf("GetInt(0) = %d, %v, want 100, nil", v, err)
	}
	if v, err := arr.GetInt(2); err != nil || v != 200 {
		t.Errorf("GetInt(2) = %d, %v, want 200, nil", v, err)
	}
	if v, err := arr.GetInt(1); err != nil || v != 0 {
		t.Errorf("GetInt(1) = %d, %v, want 0, nil", v, err)
	}
}

func TestArrayOutOfBounds(t *testing.T) {
	arr := NewPrimitiveArray(ArrayTypeInt, 3)

	if _, err := arr.GetInt(3); err == nil {
		t.Error("GetInt(3) on length-3 array should error")
	}
	if _, err := arr.GetInt(-1); err == nil {
		t.Error("GetInt(-1) should error")
	}
	if err := arr.SetInt(5, 1); err == nil {
		t.Error("SetInt(5, ...) on length-3 array should error")
	}
}

func TestReferenceArray(t *testing.T) {
	arr := NewReferenceArray("java/lang/String", 3)

	if !arr.IsRefArray() {
		t.Error("Reference array should be a reference array")
	}
	if arr.Length != 3 {
		t.Errorf("Length = %d, want 3", arr.Length)
	}
	if arr.ClassName != "java/lang/String" {
		t.Errorf("ClassName = %s, want java/lang/String", arr.ClassName)
	}

	must(t, arr.SetRef(0, "Hello"))
	must(t, arr.SetRef(1, "World"))

	if v, err := arr.GetRef(0); err != nil || v != "Hello" {
		t.Errorf("GetRef(0) = %v, %v, want Hello, nil", v, err)
	}
	if v, err := arr.GetRef(1); err != nil || v != "World" {
		t.Errorf("GetRef(1) = %v, %v, want World, nil", v, err)
	}
	if v, err := arr.GetRef(2); err != nil || v != nil {
		t.Errorf("GetRef(2) = %v, %v, want nil, nil", v, err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
