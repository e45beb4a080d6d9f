package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Decode decodes one little-endian AArch64 instruction located at va.
func Decode(va uint64, raw []byte) (Inst, error) {
	if len(raw) < InstWidth {
		return Inst{}, fmt.Errorf("short instruction at %#x: %d bytes", va, len(raw))
	}
	in := Inst{VA: va, Arch: ArchAArch64}
	copy(in.Raw[:], raw[:InstWidth])

	ai, err := arm64asm.Decode(raw[:InstWidth])
	if err != nil {
		return in, fmt.Errorf("decode %#x: %w", va, err)
	}

	in.Op = strings.ToLower(ai.Op.String())
	for _, arg := range ai.Args {
		if arg == nil {
			break
		}
		if c, ok := arg.(arm64asm.Cond); ok && ai.Op == arm64asm.B {
			// conditional branches carry the condition as their first argument
			in.Op = "b." + strings.ToLower(c.String())
			continue
		}
		in.Args = append(in.Args, formatArg(va, ai.Op, arg))
	}
	in.Flow, in.Target = classify(va, in.Op, ai)
	return in, nil
}

// formatArg renders an operand in the hex-literal style the analysis passes parse.
func formatArg(pc uint64, op arm64asm.Op, arg arm64asm.Arg) string {
	switch a := arg.(type) {
	case arm64asm.PCRel:
		if op == arm64asm.ADRP {
			page := uint64(int64(pc) + int64(a))
			page &= ^uint64(0xfff)
			return fmt.Sprintf("#0x%x", page)
		}
		return fmt.Sprintf("#0x%x", uint64(int64(pc)+int64(a)))
	case arm64asm.Imm:
		return fmt.Sprintf("#0x%x", a.Imm)
	case arm64asm.ImmShift:
		if v, ok := parseImm(a.String()); ok && v >= 0 {
			return fmt.Sprintf("#0x%x", v)
		}
	case arm64asm.MemImmediate:
		if a.Mode != arm64asm.AddrOffset {
			break
		}
		base := strings.ToLower(a.Base.String())
		off, ok := memOffset(a.String())
		if !ok {
			break
		}
		switch {
		case off == 0:
			return fmt.Sprintf("[%s]", base)
		case off < 0:
			return fmt.Sprintf("[%s, #-0x%x]", base, -off)
		default:
			return fmt.Sprintf("[%s, #0x%x]", base, off)
		}
	}
	return strings.ToLower(arg.String())
}

// memOffset pulls the immediate out of "[X1,#32]" / "[X1,#0x20]" / "[X1]".
func memOffset(s string) (int64, bool) {
	idx := strings.Index(s, "#")
	if idx < 0 {
		return 0, strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
	}
	v := s[idx:]
	if end := strings.IndexAny(v, "],!"); end >= 0 {
		v = v[:end]
	}
	return parseImm(v)
}

// parseImm parses "#0x20", "#32" or "#-8".
func parseImm(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if s == "" {
		return 0, false
	}
	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 63)
		if err != nil {
			return 0, false
		}
		return sign * int64(v), true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return sign * v, true
}

func classify(pc uint64, op string, ai arm64asm.Inst) (Flow, uint64) {
	target := func() uint64 {
		for i := len(ai.Args) - 1; i >= 0; i-- {
			if rel, ok := ai.Args[i].(arm64asm.PCRel); ok {
				return uint64(int64(pc) + int64(rel))
			}
		}
		return 0
	}

	switch {
	case op == "b":
		return FlowJump, target()
	case strings.HasPrefix(op, "b."), op == "cbz", op == "cbnz", op == "tbz", op == "tbnz":
		return FlowCond, target()
	case op == "bl":
		return FlowCall, target()
	case op == "blr", strings.HasPrefix(op, "blra"):
		return FlowCall, 0
	case op == "br", strings.HasPrefix(op, "bra"):
		return FlowIndirect, 0
	case op == "ret", strings.HasPrefix(op, "reta"), op == "eret":
		return FlowReturn, 0
	case op == "brk", op == "hlt", op == "udf":
		return FlowTrap, 0
	}
	return FlowNone, 0
}
