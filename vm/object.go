package vm

import (
	"fmt"
	"math"
	"sync"
)

// Object represents a JVM object instance. mu guards field access; it is
// not the monitor monitorenter/monitorexit use (that comes from
// JVM.GetOrCreateMonitor).
type Object struct {
	mu sync.Mutex

	Class      *Class           // The class this object is an instance of
	Fields     map[string]any   // Instance fields (fieldName -> value)
	FieldSlots map[string]int64 // Primitive field values, float/double stored as raw bits
}

// NewObject creates a new object instance
func NewObject(class *Class) *Object {
	obj := &Object{
		Class:      class,
		Fields:     make(map[string]any),
		FieldSlots: make(map[string]int64),
	}

	cf := class.File
	for _, field := range cf.Fields {
		fieldName := cf.ConstantPool.GetUtf8(field.NameIndex)
		descriptor := cf.ConstantPool.GetUtf8(field.DescriptorIndex)

		if field.AccessFlags&0x0008 != 0 { // ACC_STATIC
			continue
		}

		switch descriptor[0] {
		case 'B', 'C', 'I', 'S', 'Z', 'J', 'F', 'D':
			obj.FieldSlots[fieldName] = 0
		case 'L', '[':
			obj.Fields[fieldName] = nil
		}
	}

	return obj
}

func (o *Object) Lock()   { o.mu.Lock() }
func (o *Object) Unlock() { o.mu.Unlock() }

// GetFieldInt gets an int field value
func (o *Object) GetFieldInt(name string) int32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return int32(o.FieldSlots[name])
}

// SetFieldInt sets an int field value
func (o *Object) SetFieldInt(name string, val int32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.FieldSlots[name] = int64(val)
}

// GetFieldLong gets a long field value
func (o *Object) GetFieldLong(name string) int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.FieldSlots[name]
}

// SetFieldLong sets a long field value
func (o *Object) SetFieldLong(name string, val int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.FieldSlots[name] = val
}

// GetFieldFloat gets a float field value, stored as raw bits in FieldSlots.
func (o *Object) GetFieldFloat(name string) float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return math.Float32frombits(uint32(o.FieldSlots[name]))
}

// SetFieldFloat sets a float field value.
func (o *Object) SetFieldFloat(name string, val float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.FieldSlots[name] = int64(math.Float32bits(val))
}

// GetFieldDouble gets a double field value, stored as raw bits in FieldSlots.
func (o *Object) GetFieldDouble(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return math.Float64frombits(uint64(o.FieldSlots[name]))
}

// SetFieldDouble sets a double field value.
func (o *Object) SetFieldDouble(name string, val float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.FieldSlots[name] = int64(math.Float64bits(val))
}

// GetFieldRef gets a reference field value
func (o *Object) GetFieldRef(name string) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Fields[name]
}

// SetFieldRef sets a reference field value
func (o *Object) SetFieldRef(name string, val any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Fields[name] = val
}

// ClassName returns the class name of this object
func (o *Object) ClassName() string {
	if o.Class != nil {
		return o.Class.Name
	}
	return "<unknown>"
}

// String returns a string representation of the object
func (o *Object) String() string {
	return fmt.Sprintf("%s@%p", o.ClassName(), o)
}

// IsInstanceOf checks if this object is an instance of the given class,
// walking the real superclass chain rather than comparing names directly.
func (o *Object) IsInstanceOf(className string) bool {
	if o.Class == nil {
		return false
	}
	return o.Class.IsSubclassOf(className)
}
