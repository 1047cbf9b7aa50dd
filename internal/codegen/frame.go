package codegen

// frameTable assigns each distinct Pseudo name a unique 4-byte slot at
// a negative offset from %rbp. Offsets are allocated on first sight in
// scan order and are stable thereafter: allocate once, never move.
type frameTable struct {
	offsets map[string]int32
	next    int32 // next offset to hand out, counted downward in 4-byte steps
}

func newFrameTable() *frameTable {
	return &frameTable{offsets: make(map[string]int32)}
}

func (t *frameTable) offsetFor(name string) int32 {
	if off, ok := t.offsets[name]; ok {
		return off
	}
	t.next -= 4
	t.offsets[name] = t.next
	return t.next
}

// ReplacePseudoRegisters walks prog's instructions, rewriting every
// Pseudo operand to a frame-relative Stack operand, then prepends an
// AllocateStack reserving the whole frame.
func ReplacePseudoRegisters(prog *Program) *Program {
	table := newFrameTable()

	body := make([]Instruction, 0, len(prog.Function.Body)+1)
	for _, instr := range prog.Function.Body {
		body = append(body, rewriteInstr(table, instr))
	}

	totalBytes := -table.next
	full := make([]Instruction, 0, len(body)+1)
	full = append(full, AllocateStack{Bytes: totalBytes})
	full = append(full, body...)

	return &Program{Function: Function{Name: prog.Function.Name, Body: full}}
}

func rewriteOperand(table *frameTable, op Operand) Operand {
	p, ok := op.(Pseudo)
	if !ok {
		return op
	}
	return Stack{Offset: table.offsetFor(p.Name)}
}

func rewriteInstr(table *frameTable, instr Instruction) Instruction {
	switch n := instr.(type) {
	case Mov:
		return Mov{Src: rewriteOperand(table, n.Src), Dst: rewriteOperand(table, n.Dst)}
	case UnaryInstr:
		return UnaryInstr{Op: n.Op, Dst: rewriteOperand(table, n.Dst)}
	case BinaryInstr:
		return BinaryInstr{Op: n.Op, Src: rewriteOperand(table, n.Src), Dst: rewriteOperand(table, n.Dst)}
	case Cmp:
		return Cmp{Lhs: rewriteOperand(table, n.Lhs), Rhs: rewriteOperand(table, n.Rhs)}
	case IDiv:
		return IDiv{Src: rewriteOperand(table, n.Src)}
	case SetCC:
		return SetCC{Cond: n.Cond, Dst: rewriteOperand(table, n.Dst)}
	default:
		// Cdq, Jmp, JmpCC, LabelInstr, AllocateStack, Ret carry no
		// operands that could be Pseudo.
		return instr
	}
}
