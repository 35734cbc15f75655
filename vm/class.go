package vm

import (
	"math"
	"sync"
	"weak"

	"classvm/classfile"
)

// Class wraps a parsed classfile with the runtime links a verifier would
// normally have resolved: its superclass chain, looked up through a Loader
// so IsInstanceOf/IsSubclassOf can walk real hierarchy instead of comparing
// name strings (interfaces are not resolved). It also owns the class's
// static fields, initialized to their zero value the first time the class
// is registered; neither the loader nor the interpreter applies
// ConstantValue initializers or runs <clinit>.
type Class struct {
	File   *classfile.ClassFile
	Name   string
	Loader *Loader

	staticMu    sync.Mutex
	StaticSlots map[string]int64 // primitive statics, float/double as raw bits
	StaticRefs  map[string]any   // reference statics
}

// Loader resolves a class name to its parsed Class, caching the result. It
// plays the role a real JVM's bootstrap/system class loader would, scoped
// down to "classes already supplied to this run" since this VM does no
// on-demand classpath search.
type Loader struct {
	classes map[string]*Class
}

func NewLoader() *Loader {
	return &Loader{classes: make(map[string]*Class)}
}

// Register makes a parsed classfile resolvable by name.
func (l *Loader) Register(cf *classfile.ClassFile) *Class {
	name := cf.ClassName()
	c := &Class{
		File:        cf,
		Name:        name,
		Loader:      l,
		StaticSlots: make(map[string]int64),
		StaticRefs:  make(map[string]any),
	}
	for _, field := range cf.Fields {
		if field.AccessFlags&0x0008 == 0 { // not ACC_STATIC
			continue
		}
		fieldName := cf.ConstantPool.GetUtf8(field.NameIndex)
		descriptor := cf.ConstantPool.GetUtf8(field.DescriptorIndex)
		switch descriptor[0] {
		case 'B', 'C', 'I', 'S', 'Z', 'J', 'F', 'D':
			c.StaticSlots[fieldName] = 0
		case 'L', '[':
			c.StaticRefs[fieldName] = nil
		}
	}
	l.classes[name] = c
	return c
}

// Lookup returns a previously registered class, or nil if unknown. Object's
// superclass ("") and any class never supplied to this run both resolve to
// nil, which IsSubclassOf treats as "walk ends here".
func (l *Loader) Lookup(name string) *Class {
	if name == "" {
		return nil
	}
	return l.classes[name]
}

// Super returns this class's direct superclass, or nil at java/lang/Object
// or when the superclass was never registered with the loader.
func (c *Class) Super() *Class {
	return c.Loader.Lookup(c.File.SuperClassName())
}

// IsSubclassOf reports whether c is className or descends from it. It walks
// the real superclass chain while classes are registered with the loader,
// then falls back to the builtin JDK exception hierarchy once the chain
// reaches a superclass name this run never supplied a classfile for (every
// user program's exception types eventually bottom out in java/lang's
// unloaded hierarchy).
func (c *Class) IsSubclassOf(className string) bool {
	if className == "" || className == "java/lang/Object" {
		return true
	}
	for cur := c; cur != nil; cur = cur.Super() {
		if cur.Name == className {
			return true
		}
		if cur.Super() == nil {
			if superName := cur.File.SuperClassName(); superName != "" {
				return isBuiltinSubclass(superName, className)
			}
		}
	}
	return false
}

// GetStaticInt reads a static int-family field.
func (c *Class) GetStaticInt(name string) int32 {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	return int32(c.StaticSlots[name])
}

// SetStaticInt writes a static int-family field.
func (c *Class) SetStaticInt(name string, val int32) {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	c.StaticSlots[name] = int64(val)
}

// GetStaticLong reads a static long field.
func (c *Class) GetStaticLong(name string) int64 {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	return c.StaticSlots[name]
}

// SetStaticLong writes a static long field.
func (c *Class) SetStaticLong(name string, val int64) {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	c.StaticSlots[name] = val
}

// GetStaticFloat reads a static float field, stored as raw bits.
func (c *Class) GetStaticFloat(name string) float32 {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	return math.Float32frombits(uint32(c.StaticSlots[name]))
}

// SetStaticFloat writes a static float field.
func (c *Class) SetStaticFloat(name string, val float32) {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	c.StaticSlots[name] = int64(math.Float32bits(val))
}

// GetStaticDouble reads a static double field, stored as raw bits.
func (c *Class) GetStaticDouble(name string) float64 {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	return math.Float64frombits(uint64(c.StaticSlots[name]))
}

// SetStaticDouble writes a static double field.
func (c *Class) SetStaticDouble(name string, val float64) {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	c.StaticSlots[name] = int64(math.Float64bits(val))
}

// GetStaticRef reads a static reference field.
func (c *Class) GetStaticRef(name string) any {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	return c.StaticRefs[name]
}

// SetStaticRef writes a static reference field.
func (c *Class) SetStaticRef(name string, val any) {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	c.StaticRefs[name] = val
}

// HasStatic reports whether name was declared as a static field on this
// class (as opposed to an inherited or unknown name), so getstatic/putstatic
// can walk to a superclass when a field isn't declared locally.
func (c *Class) HasStatic(name string) bool {
	c.staticMu.Lock()
	defer c.staticMu.Unlock()
	if _, ok := c.StaticSlots[name]; ok {
		return true
	}
	_, ok := c.StaticRefs[name]
	return ok
}

// Method is a resolved method together with a weak back-reference to its
// declaring class. The back-edge is weak so a Method escaping into, say, a
// cached call-site doesn't keep its whole declaring Class (and everything
// reachable from its constant pool) alive past the class's own lifetime.
type Method struct {
	Info       *classfile.MethodInfo
	ownerClass weak.Pointer[Class]
}

// NewMethod builds a Method with a weak back-edge to owner.
func NewMethod(info *classfile.MethodInfo, owner *Class) *Method {
	return &Method{Info: info, ownerClass: weak.Make(owner)}
}

// Owner resolves the weak back-edge, or nil if the declaring class has
// since been collected.
func (m *Method) Owner() *Class {
	return m.ownerClass.Value()
}

// Name returns the method's name, or "" if its declaring class is gone.
func (m *Method) Name() string {
	owner := m.Owner()
	if owner == nil {
		return ""
	}
	return m.Info.Name(owner.File.ConstantPool)
}

// Descriptor returns the method's descriptor, or "" if its declaring class
// is gone.
func (m *Method) Descriptor() string {
	owner := m.Owner()
	if owner == nil {
		return ""
	}
	return m.Info.Descriptor(owner.File.ConstantPool)
}
