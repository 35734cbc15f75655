package vm

import (
	"fmt"

	"classvm/classfile"
)

// JavaException represents a Java exception being thrown
type JavaException struct {
	Object    *Object // The exception object
	ClassName string  // Class name for quick lookup
	Message   string  // Exception message
}

// NewJavaException creates a new exception
func NewJavaException(obj *Object, message string) *JavaException {
	className := ""
	if obj != nil && obj.Class != nil {
		className = obj.Class.Name
	}
	return &JavaException{
		Object:    obj,
		ClassName: className,
		Message:   message,
	}
}

// String returns a string representation
func (e *JavaException) String() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.ClassName, e.Message)
	}
	return e.ClassName
}

// Error satisfies the error interface so a JavaException can flow through
// the same error-returning call chains as an InternalError, letting the
// interpreter's main loop type-switch on the two instead of threading a
// second return channel through every instruction handler.
func (e *JavaException) Error() string { return e.String() }

// FindExceptionHandler finds the first exception table entry in handlers
// that covers pc (an instruction index, per CodeAttribute.ExceptionHandlers)
// and whose catch type matches exceptionClass, returning the handler's
// instruction index, or -1 if none match.
func FindExceptionHandler(handlers []classfile.ResolvedHandler, cp classfile.ConstantPool, loader *Loader, pc int, exceptionClass string) int {
	for _, entry := range handlers {
		if pc < entry.StartPC || pc >= entry.EndPC {
			continue
		}
		if entry.CatchType == 0 {
			return entry.HandlerPC
		}
		catchClassName := cp.GetClassName(entry.CatchType)
		if matchesException(exceptionClass, catchClassName, loader) {
			return entry.HandlerPC
		}
	}
	return -1
}

// matchesException checks if thrownClass matches or is a subclass of
// catchClass, preferring the real class hierarchy when thrownClass has a
// loaded classfile and falling back to the builtin JDK exception hierarchy
// otherwise.
func matchesException(thrownClass, catchClass string, loader *Loader) bool {
	if thrownClass == catchClass || catchClass == "java/lang/Throwable" {
		return true
	}
	if loader != nil {
		if cls := loader.Lookup(thrownClass); cls != nil {
			return cls.IsSubclassOf(catchClass)
		}
	}
	return isBuiltinSubclass(thrownClass, catchClass)
}

// builtinSuper is the superclass name of every JDK exception type this VM
// can throw itself, used since this VM never parses the real java/lang
// classfiles. User-defined exception classes resolve their own superclass
// chain for real via Class.IsSubclassOf and only consult this table once
// that chain runs into one of these names.
var builtinSuper = map[string]string{
	"java/lang/Exception":                      "java/lang/Throwable",
	"java/lang/RuntimeException":                "java/lang/Exception",
	"java/lang/NullPointerException":            "java/lang/RuntimeException",
	"java/lang/ArrayIndexOutOfBoundsException":  "java/lang/IndexOutOfBoundsException",
	"java/lang/IndexOutOfBoundsException":       "java/lang/RuntimeException",
	"java/lang/ArithmeticException":             "java/lang/RuntimeException",
	"java/lang/IllegalArgumentException":        "java/lang/RuntimeException",
	"java/lang/IllegalStateException":           "java/lang/RuntimeException",
	"java/lang/IllegalMonitorStateException":    "java/lang/RuntimeException",
	"java/lang/ClassCastException":               "java/lang/RuntimeException",
	"java/lang/NumberFormatException":            "java/lang/IllegalArgumentException",
	"java/lang/NegativeArraySizeException":       "java/lang/RuntimeException",
	"java/lang/ArrayStoreException":               "java/lang/RuntimeException",
	"java/io/IOException":                        "java/lang/Exception",
	"java/io/FileNotFoundException":              "java/io/IOException",
}

// isBuiltinSubclass walks builtinSuper from thrownClass looking for
// catchClass.
func isBuiltinSubclass(thrownClass, catchClass string) bool {
	for name := thrownClass; name != ""; name = builtinSuper[name] {
		if name == catchClass {
			return true
		}
	}
	return false
}
