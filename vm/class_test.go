package vm

import (
	"testing"

	"classvm/classfile"
)

// buildClassFile constructs a minimal in-memory ClassFile with the given
// this-class and super-class names, without going through the binary parser.
func buildClassFile(thisClass, superClass string) *classfile.ClassFile {
	cp := classfile.ConstantPool{
		nil,
		&classfile.ConstantUtf8Info{Value: thisClass},        // 1
		&classfile.ConstantClassInfo{NameIndex: 1},            // 2
		&classfile.ConstantUtf8Info{Value: superClass},        // 3
		&classfile.ConstantClassInfo{NameIndex: 3},            // 4
	}
	return &classfile.ClassFile{
		ConstantPool: cp,
		ThisClass:    2,
		SuperClass:   4,
	}
}

func TestClassIsSubclassOfRealChain(t *testing.T) {
	loader := NewLoader()
	base := loader.Register(buildClassFile("app/Base", "java/lang/Object"))
	mid := loader.Register(buildClassFile("app/Mid", "app/Base"))
	leaf := loader.Register(buildClassFile("app/Leaf", "app/Mid"))

	if !leaf.IsSubclassOf("app/Mid") {
		t.Error("leaf should be a subclass of mid")
	}
	if !leaf.IsSubclassOf("app/Base") {
		t.Error("leaf should be a subclass of base (transitively)")
	}
	if !leaf.IsSubclassOf("java/lang/Object") {
		t.Error("every class is a subclass of java/lang/Object")
	}
	if mid.IsSubclassOf("app/Leaf") {
		t.Error("mid should not be a subclass of its own subclass")
	}
	if !base.IsSubclassOf("app/Base") {
		t.Error("a class is a subclass of itself")
	}
}

func TestClassIsSubclassOfBuiltinFallback(t *testing.T) {
	loader := NewLoader()
	custom := loader.Register(buildClassFile("app/MyException", "java/lang/RuntimeException"))

	if !custom.IsSubclassOf("java/lang/RuntimeException") {
		t.Error("should match its direct (unloaded) superclass by name")
	}
	if !custom.IsSubclassOf("java/lang/Exception") {
		t.Error("should walk the builtin chain up to Exception")
	}
	if !custom.IsSubclassOf("java/lang/Throwable") {
		t.Error("should walk the builtin chain up to Throwable")
	}
	if custom.IsSubclassOf("java/lang/Error") {
		t.Error("should not match an unrelated builtin branch")
	}
}

func TestMatchesExceptionCatchAll(t *testing.T) {
	loader := NewLoader()
	if !matchesException("app/Whatever", "java/lang/Throwable", loader) {
		t.Error("java/lang/Throwable should catch anything")
	}
}
