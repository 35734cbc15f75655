package classfile

// Decode runs the two-phase opcode decoder over a method's raw Code bytes.
//
// Phase 1 walks the bytes linearly, decoding one instruction at a time and
// recording byteOffset -> list index in a jump table as it goes. Any
// instruction with a branch target stores that target as a raw byte offset
// during this phase.
//
// Phase 2 rewrites every recorded byte-offset target into a dense
// instruction-array index using the phase-1 jump table, so the interpreter
// can dispatch purely via opcodes[pc] with no further byte-offset
// knowledge. A target that doesn't land on a real instruction boundary is
// InvalidOpcodeJumpIndex.
func Decode(code []byte) ([]OpCode, error) {
	res, err := DecodeFull(code)
	if err != nil {
		return nil, err
	}
	return res.OpCodes, nil
}

// DecodeResult is the full output of Decode, including the byte-offset ->
// instruction-index table needed to translate an exception table's
// StartPC/EndPC/HandlerPC (which the classfile wire format always expresses
// as byte offsets) into instruction indices.
type DecodeResult struct {
	OpCodes     []OpCode
	byteToIndex map[int]int
	codeLen     int
}

// ResolveByteOffset maps a raw byte offset (as found in an exception table
// entry) to an instruction index. EndPC is conventionally one byte past the
// last instruction and is allowed to equal the code length, resolving to
// len(OpCodes).
func (d *DecodeResult) ResolveByteOffset(offset int) (int, error) {
	if offset == d.codeLen {
		return len(d.OpCodes), nil
	}
	idx, ok := d.byteToIndex[offset]
	if !ok {
		return 0, newErr(InvalidOpcodeJumpIndex, "no instruction at byte offset %d", offset)
	}
	return idx, nil
}

// DecodeFull runs the same two-phase decode as Decode but also returns the
// byte-offset table needed by ResolveByteOffset.
func DecodeFull(code []byte) (*DecodeResult, error) {
	ops, jumpTable, pending, err := decodeLinear(code)
	if err != nil {
		return nil, err
	}
	if err := resolveJumps(ops, jumpTable, pending); err != nil {
		return nil, err
	}
	return &DecodeResult{OpCodes: ops, byteToIndex: jumpTable, codeLen: len(code)}, nil
}

// pendingJump records a byte-offset target still to be resolved in phase 2.
// kind selects which OpCode field it belongs in.
type pendingJump struct {
	opIndex int
	kind    jumpKind
	slot    int // index into JumpTable, when kind == jumpTableEntry
	offset  int32
}

type jumpKind int

const (
	jumpSingle jumpKind = iota
	jumpDefault
	jumpTableEntry
)

func decodeLinear(code []byte) ([]OpCode, map[int]int, []pendingJump, error) {
	r := NewReader(code)
	var ops []OpCode
	jumpTable := make(map[int]int)
	var pending []pendingJump

	for !r.EOF() {
		offset := r.Position()
		op, err := r.Pop1()
		if err != nil {
			return nil, nil, nil, err
		}
		jumpTable[offset] = len(ops)

		inst := OpCode{Op: op, ByteOffset: offset}

		switch op {
		case Bipush:
			v, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.IntOperand = int32(int8(v))
		case Sipush:
			v, err := r.Pop2()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.IntOperand = int32(int16(v))
		case Ldc:
			idx, err := r.PopU1AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.Index = idx
		case LdcW, Ldc2W:
			idx, err := r.PopU2AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.Index = idx
		case Iload, Lload, Fload, Dload, Aload,
			Istore, Lstore, Fstore, Dstore, Astore, Ret:
			idx, err := r.PopU1AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.Index = idx
		case Iinc:
			idx, err := r.PopU1AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			delta, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.Index = idx
			inst.Delta = int32(int8(delta))
		case Ifeq, Ifne, Iflt, Ifge, Ifgt, Ifle,
			IfIcmpeq, IfIcmpne, IfIcmplt, IfIcmpge, IfIcmpgt, IfIcmple,
			IfAcmpeq, IfAcmpne, Goto, Jsr, Ifnull, Ifnonnull:
			rel, err := r.PopU2AsOffset()
			if err != nil {
				return nil, nil, nil, err
			}
			pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpSingle, offset: int32(offset) + rel})
		case GotoW, JsrW:
			rel, err := r.PopU4AsOffset()
			if err != nil {
				return nil, nil, nil, err
			}
			pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpSingle, offset: int32(offset) + rel})
		case Getstatic, Putstatic, Getfield, Putfield,
			Invokevirtual, Invokespecial, Invokestatic,
			New, Anewarray, Checkcast, Instanceof:
			idx, err := r.PopU2AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			inst.Index = idx
		case Invokeinterface:
			idx, err := r.PopU2AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			count, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			zero, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			if count == 0 || zero != 0 {
				return nil, nil, nil, newErr(InvalidOpCode, "invokeinterface: count=%d padding=%d", count, zero)
			}
			inst.Index = idx
			inst.Count = int(count)
		case Invokedynamic:
			idx, err := r.PopU2AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			zero, err := r.Pop2()
			if err != nil {
				return nil, nil, nil, err
			}
			if zero != 0 {
				return nil, nil, nil, newErr(InvalidOpCode, "invokedynamic: padding=%d", zero)
			}
			inst.Index = idx
		case Newarray:
			atype, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			if atype < ATypeBoolean || atype > ATypeLong {
				return nil, nil, nil, newErr(InvalidOpCode, "newarray: bad atype %d", atype)
			}
			inst.IntOperand = int32(atype)
		case Multianewarray:
			idx, err := r.PopU2AsIndex()
			if err != nil {
				return nil, nil, nil, err
			}
			dims, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			if dims == 0 {
				return nil, nil, nil, newErr(InvalidOpCode, "multianewarray: dims=0")
			}
			inst.Index = idx
			inst.Dimensions = int(dims)
		case Tableswitch:
			if err := skipPadding(r, offset); err != nil {
				return nil, nil, nil, err
			}
			defaultRel, err := r.PopU4AsOffset()
			if err != nil {
				return nil, nil, nil, err
			}
			lowU, err := r.Pop4()
			if err != nil {
				return nil, nil, nil, err
			}
			highU, err := r.Pop4()
			if err != nil {
				return nil, nil, nil, err
			}
			low, high := int32(lowU), int32(highU)
			if low > high {
				return nil, nil, nil, newErr(InvalidTableSwitchBounds, "low=%d high=%d", low, high)
			}
			inst.Low, inst.High = low, high
			n := int(high-low) + 1
			inst.JumpTable = make([]int, n)
			pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpDefault, offset: int32(offset) + defaultRel})
			for i := 0; i < n; i++ {
				rel, err := r.PopU4AsOffset()
				if err != nil {
					return nil, nil, nil, err
				}
				pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpTableEntry, slot: i, offset: int32(offset) + rel})
			}
		case Lookupswitch:
			if err := skipPadding(r, offset); err != nil {
				return nil, nil, nil, err
			}
			defaultRel, err := r.PopU4AsOffset()
			if err != nil {
				return nil, nil, nil, err
			}
			npairsU, err := r.Pop4()
			if err != nil {
				return nil, nil, nil, err
			}
			npairs := int(npairsU)
			inst.JumpTable = make([]int, npairs)
			inst.MatchTable = make([]int32, npairs)
			pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpDefault, offset: int32(offset) + defaultRel})
			for i := 0; i < npairs; i++ {
				matchU, err := r.Pop4()
				if err != nil {
					return nil, nil, nil, err
				}
				rel, err := r.PopU4AsOffset()
				if err != nil {
					return nil, nil, nil, err
				}
				inst.MatchTable[i] = int32(matchU)
				pending = append(pending, pendingJump{opIndex: len(ops), kind: jumpTableEntry, slot: i, offset: int32(offset) + rel})
			}
		case Wide:
			sub, err := r.Pop1()
			if err != nil {
				return nil, nil, nil, err
			}
			switch sub {
			case Iload, Lload, Fload, Dload, Aload, Istore, Lstore, Fstore, Dstore, Astore, Ret:
				idx, err := r.PopU2AsIndex()
				if err != nil {
					return nil, nil, nil, err
				}
				inst.Op = sub
				inst.Wide = true
				inst.Index = idx
			case Iinc:
				idx, err := r.PopU2AsIndex()
				if err != nil {
					return nil, nil, nil, err
				}
				delta, err := r.PopU2AsOffset()
				if err != nil {
					return nil, nil, nil, err
				}
				inst.Op = sub
				inst.Wide = true
				inst.Index = idx
				inst.Delta = delta
			default:
				return nil, nil, nil, newErr(InvalidWideOpCode, "sub-opcode %#x", sub)
			}
		case Nop, AconstNull, IconstM1, Iconst0, Iconst1, Iconst2, Iconst3, Iconst4, Iconst5,
			Lconst0, Lconst1, Fconst0, Fconst1, Fconst2, Dconst0, Dconst1,
			Iload0, Iload1, Iload2, Iload3, Lload0, Lload1, Lload2, Lload3,
			Fload0, Fload1, Fload2, Fload3, Dload0, Dload1, Dload2, Dload3,
			Aload0, Aload1, Aload2, Aload3,
			Iaload, Laload, Faload, Daload, Aaload, Baload, Caload, Saload,
			Istore0, Istore1, Istore2, Istore3, Lstore0, Lstore1, Lstore2, Lstore3,
			Fstore0, Fstore1, Fstore2, Fstore3, Dstore0, Dstore1, Dstore2, Dstore3,
			Astore0, Astore1, Astore2, Astore3,
			Iastore, Lastore, Fastore, Dastore, Aastore, Bastore, Castore, Sastore,
			Pop, Pop2, Dup, DupX1, DupX2, Dup2, Dup2X1, Dup2X2, Swap,
			Iadd, Ladd, Fadd, Dadd, Isub, Lsub, Fsub, Dsub,
			Imul, Lmul, Fmul, Dmul, Idiv, Ldiv, Fdiv, Ddiv,
			Irem, Lrem, Frem, Drem, Ineg, Lneg, Fneg, Dneg,
			Ishl, Lshl, Ishr, Lshr, Iushr, Lushr, Iand, Land, Ior, Lor, Ixor, Lxor,
			I2l, I2f, I2d, L2i, L2f, L2d, F2i, F2l, F2d, D2i, D2l, D2f, I2b, I2c, I2s,
			Lcmp, Fcmpl, Fcmpg, Dcmpl, Dcmpg,
			Ireturn, Lreturn, Freturn, Dreturn, Areturn, Return,
			Arraylength, Athrow, Monitorenter, Monitorexit:
			// No operands.
		default:
			return nil, nil, nil, newErr(InvalidOpCode, "opcode %#x at offset %d", op, offset)
		}

		ops = append(ops, inst)
	}

	return ops, jumpTable, pending, nil
}

// skipPadding consumes the 0-3 zero bytes that align a switch instruction's
// operands to a 4-byte boundary relative to the start of the method's code.
func skipPadding(r *Reader, opcodeOffset int) error {
	n := (4 - ((opcodeOffset + 1) % 4)) % 4
	return r.SkipN(n)
}

func resolveJumps(ops []OpCode, jumpTable map[int]int, pending []pendingJump) error {
	resolve := func(byteOffset int32) (int, error) {
		idx, ok := jumpTable[int(byteOffset)]
		if !ok {
			return 0, newErr(InvalidOpcodeJumpIndex, "no instruction at byte offset %d", byteOffset)
		}
		return idx, nil
	}

	for _, p := range pending {
		idx, err := resolve(p.offset)
		if err != nil {
			return err
		}
		switch p.kind {
		case jumpSingle:
			ops[p.opIndex].Jump = idx
		case jumpDefault:
			ops[p.opIndex].Default = idx
		case jumpTableEntry:
			ops[p.opIndex].JumpTable[p.slot] = idx
		}
	}
	return nil
}
