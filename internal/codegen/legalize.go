package codegen

// Legalize scans prog's instructions and rewrites every one that
// violates x86-64's addressing-mode constraints into an equivalent
// two- or three-instruction sequence. R10 stages source operands; R11
// stages destination operands (needed for Mul, which cannot write to
// memory). A single pass suffices: every rewrite below introduces only
// register operands for the problematic position, so no instruction it
// produces can itself violate a rule.
func Legalize(prog *Program) *Program {
	var body []Instruction
	for _, instr := range prog.Function.Body {
		body = append(body, legalizeInstr(instr)...)
	}
	return &Program{Function: Function{Name: prog.Function.Name, Body: body}}
}

var scratchSrc = Register{Reg: R10}
var scratchDst = Register{Reg: R11}

func legalizeInstr(instr Instruction) []Instruction {
	switch n := instr.(type) {

	case Mov:
		if isMemory(n.Src) && isMemory(n.Dst) {
			return []Instruction{
				Mov{Src: n.Src, Dst: scratchSrc},
				Mov{Src: scratchSrc, Dst: n.Dst},
			}
		}
		return []Instruction{n}

	case BinaryInstr:
		return legalizeBinary(n)

	case Cmp:
		return legalizeCmp(n)

	case IDiv:
		if isImmediate(n.Src) {
			return []Instruction{
				Mov{Src: n.Src, Dst: scratchSrc},
				IDiv{Src: scratchSrc},
			}
		}
		return []Instruction{n}

	default:
		return []Instruction{n}
	}
}

func legalizeBinary(n BinaryInstr) []Instruction {
	switch n.Op {
	case Add, Sub, And, Or, Xor:
		if isMemory(n.Src) && isMemory(n.Dst) {
			return []Instruction{
				Mov{Src: n.Src, Dst: scratchSrc},
				BinaryInstr{Op: n.Op, Src: scratchSrc, Dst: n.Dst},
			}
		}
		return []Instruction{n}

	case Shl, Sar:
		// The shift count must live in %cl regardless of its original form.
		return []Instruction{
			Mov{Src: n.Src, Dst: Register{Reg: CX}},
			BinaryInstr{Op: n.Op, Src: Register{Reg: CX}, Dst: n.Dst},
		}

	case Mul:
		if isMemory(n.Dst) {
			return []Instruction{
				Mov{Src: n.Dst, Dst: scratchDst},
				BinaryInstr{Op: Mul, Src: n.Src, Dst: scratchDst},
				Mov{Src: scratchDst, Dst: n.Dst},
			}
		}
		return []Instruction{n}

	default:
		return []Instruction{n}
	}
}

func legalizeCmp(n Cmp) []Instruction {
	var out []Instruction

	lhs, rhs := n.Lhs, n.Rhs

	if isMemory(lhs) && isMemory(rhs) {
		out = append(out, Mov{Src: lhs, Dst: scratchSrc})
		lhs = scratchSrc
	}

	if isImmediate(rhs) {
		out = append(out, Mov{Src: rhs, Dst: scratchDst})
		rhs = scratchDst
	}

	out = append(out, Cmp{Lhs: lhs, Rhs: rhs})
	return out
}
