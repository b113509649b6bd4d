package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders f and its nested function bodies as human-
// readable text, used by `aerojs disasm` and by golden tests.
func Disassemble(f *Function) string {
	var sb strings.Builder
	disasm1(&sb, f, 0)
	return sb.String()
}

func disasm1(sb *strings.Builder, f *Function, depth int) {
	indent := strings.Repeat("  ", depth)
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(sb, "%sfunction %s(params=%d, registers=%d, icSlots=%d)\n",
		indent, name, f.ParamCount, f.NumRegisters, f.NumICSlots())
	for i, k := range f.Constants {
		fmt.Fprintf(sb, "%s  K%-3d %s\n", indent, i, k.String())
	}
	for pc, ins := range f.Code {
		fmt.Fprintf(sb, "%s  %04d  %s\n", indent, pc, formatInstruction(ins))
	}
	for _, h := range f.Handlers {
		fmt.Fprintf(sb, "%s  handler [%d,%d) -> %d kind=%d reg=%d\n",
			indent, h.TryStart, h.TryEnd, h.Target, h.Kind, h.Register)
	}
	for _, inner := range f.Inner {
		disasm1(sb, inner, depth+1)
	}
}

func formatInstruction(ins Instruction) string {
	op := ins.Op()
	switch op {
	case OpLoadConst, OpNewFunction, OpDeclareScope, OpGetScope, OpSetScope:
		return fmt.Sprintf("%-12s A=%d Bx=%d", op, ins.A(), ins.Bx())
	case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpIterNext:
		return fmt.Sprintf("%-12s A=%d sBx=%d", op, ins.A(), ins.SBx())
	case OpMove, OpNeg, OpNot, OpBitNot, OpTypeof, OpDeleteProp,
		OpReturn, OpIterInit:
		return fmt.Sprintf("%-12s A=%d B=%d", op, ins.A(), ins.B())
	case OpReturnUndefined, OpThrow, OpPopTry, OpNop:
		return op.String()
	default:
		return fmt.Sprintf("%-12s A=%d B=%d C=%d", op, ins.A(), ins.B(), ins.C())
	}
}
