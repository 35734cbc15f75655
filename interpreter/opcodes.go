package interpreter

import "classvm/classfile"

// category groups opcodes by which instructions_*.go file executes them,
// mirroring the classfile specification's own grouping of the instruction
// set (loads, stores, stack, math, control, references).
type category uint8

const (
	categoryUnknown category = iota
	categoryConst
	categoryLoad
	categoryStore
	categoryMath
	categoryControl
	categoryArray
	categoryObject
	categoryInvoke
)

var opcodeCategories [256]category

func init() {
	for _, op := range []uint8{
		classfile.Nop, classfile.AconstNull,
		classfile.IconstM1, classfile.Iconst0, classfile.Iconst1, classfile.Iconst2,
		classfile.Iconst3, classfile.Iconst4, classfile.Iconst5,
		classfile.Lconst0, classfile.Lconst1,
		classfile.Fconst0, classfile.Fconst1, classfile.Fconst2,
		classfile.Dconst0, classfile.Dconst1,
		classfile.Bipush, classfile.Sipush,
		classfile.Ldc, classfile.LdcW, classfile.Ldc2W,
	} {
		opcodeCategories[op] = categoryConst
	}

	for _, op := range []uint8{
		classfile.Iload, classfile.Lload, classfile.Fload, classfile.Dload, classfile.Aload,
		classfile.Iload0, classfile.Iload1, classfile.Iload2, classfile.Iload3,
		classfile.Lload0, classfile.Lload1, classfile.Lload2, classfile.Lload3,
		classfile.Fload0, classfile.Fload1, classfile.Fload2, classfile.Fload3,
		classfile.Dload0, classfile.Dload1, classfile.Dload2, classfile.Dload3,
		classfile.Aload0, classfile.Aload1, classfile.Aload2, classfile.Aload3,
	} {
		opcodeCategories[op] = categoryLoad
	}

	for _, op := range []uint8{
		classfile.Istore, classfile.Lstore, classfile.Fstore, classfile.Dstore, classfile.Astore,
		classfile.Istore0, classfile.Istore1, classfile.Istore2, classfile.Istore3,
		classfile.Lstore0, classfile.Lstore1, classfile.Lstore2, classfile.Lstore3,
		classfile.Fstore0, classfile.Fstore1, classfile.Fstore2, classfile.Fstore3,
		classfile.Dstore0, classfile.Dstore1, classfile.Dstore2, classfile.Dstore3,
		classfile.Astore0, classfile.Astore1, classfile.Astore2, classfile.Astore3,
	} {
		opcodeCategories[op] = categoryStore
	}

	for _, op := range []uint8{
		classfile.Pop, classfile.Pop2, classfile.Dup, classfile.DupX1, classfile.DupX2,
		classfile.Dup2, classfile.Dup2X1, classfile.Dup2X2, classfile.Swap,
		classfile.Iadd, classfile.Ladd, classfile.Fadd, classfile.Dadd,
		classfile.Isub, classfile.Lsub, classfile.Fsub, classfile.Dsub,
		classfile.Imul, classfile.Lmul, classfile.Fmul, classfile.Dmul,
		classfile.Idiv, classfile.Ldiv, classfile.Fdiv, classfile.Ddiv,
		classfile.Irem, classfile.Lrem, classfile.Frem, classfile.Drem,
		classfile.Ineg, classfile.Lneg, classfile.Fneg, classfile.Dneg,
		classfile.Ishl, classfile.Lshl, classfile.Ishr, classfile.Lshr, classfile.Iushr, classfile.Lushr,
		classfile.Iand, classfile.Land, classfile.Ior, classfile.Lor, classfile.Ixor, classfile.Lxor,
		classfile.Iinc,
		classfile.I2l, classfile.I2f, classfile.I2d,
		classfile.L2i, classfile.L2f, classfile.L2d,
		classfile.F2i, classfile.F2l, classfile.F2d,
		classfile.D2i, classfile.D2l, classfile.D2f,
		classfile.I2b, classfile.I2c, classfile.I2s,
		classfile.Lcmp, classfile.Fcmpl, classfile.Fcmpg, classfile.Dcmpl, classfile.Dcmpg,
	} {
		opcodeCategories[op] = categoryMath
	}

	for _, op := range []uint8{
		classfile.Ifeq, classfile.Ifne, classfile.Iflt, classfile.Ifge, classfile.Ifgt, classfile.Ifle,
		classfile.IfIcmpeq, classfile.IfIcmpne, classfile.IfIcmplt, classfile.IfIcmpge, classfile.IfIcmpgt, classfile.IfIcmple,
		classfile.IfAcmpeq, classfile.IfAcmpne,
		classfile.Goto, classfile.GotoW, classfile.Jsr, classfile.JsrW, classfile.Ret,
		classfile.Tableswitch, classfile.Lookupswitch,
		classfile.Ireturn, classfile.Lreturn, classfile.Freturn, classfile.Dreturn, classfile.Areturn, classfile.Return,
		classfile.Ifnull, classfile.Ifnonnull,
	} {
		opcodeCategories[op] = categoryControl
	}

	for _, op := range []uint8{
		classfile.Iaload, classfile.Laload, classfile.Faload, classfile.Daload,
		classfile.Aaload, classfile.Baload, classfile.Caload, classfile.Saload,
		classfile.Iastore, classfile.Lastore, classfile.Fastore, classfile.Dastore,
		classfile.Aastore, classfile.Bastore, classfile.Castore, classfile.Sastore,
		classfile.Newarray, classfile.Anewarray, classfile.Arraylength, classfile.Multianewarray,
	} {
		opcodeCategories[op] = categoryArray
	}

	for _, op := range []uint8{
		classfile.Getstatic, classfile.Putstatic, classfile.Getfield, classfile.Putfield,
		classfile.New, classfile.Athrow, classfile.Checkcast, classfile.Instanceof,
		classfile.Monitorenter, classfile.Monitorexit,
	} {
		opcodeCategories[op] = categoryObject
	}

	for _, op := range []uint8{
		classfile.Invokevirtual, classfile.Invokespecial, classfile.Invokestatic,
		classfile.Invokeinterface, classfile.Invokedynamic,
	} {
		opcodeCategories[op] = categoryInvoke
	}
}

func categoryOf(op uint8) category {
	return opcodeCategories[op]
}
