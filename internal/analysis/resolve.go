package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"unalias/internal/disasm"
)

// ResolveSplitAddress computes the address encoded by a page-address
// instruction and the instruction that supplies its page offset:
//
//	adrp x1, #0x100008000    ; page
//	ldr  x1, [x1, #0x20]     ; offset (absent in "[x1]" form)
func ResolveSplitAddress(page, off disasm.Inst) (uint64, error) {
	base, err := parsePageOperand(page.Arg(1))
	if err != nil {
		return 0, newError(KindAddressDecode, page.VA, fmt.Errorf("%s: %w", page, err))
	}
	offset, err := parseOffsetOperand(off.Arg(1))
	if err != nil {
		return 0, newError(KindAddressDecode, off.VA, fmt.Errorf("%s: %w", off, err))
	}
	return base + offset, nil
}

// parsePageOperand strips the one-character addressing-mode prefix ("#0x..")
// and parses the rest as hex.
func parsePageOperand(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing page operand")
	}
	if r := rune(s[0]); !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		s = s[1:]
	}
	return parseHex(s)
}

// parseOffsetOperand takes the comma-separated immediate of "[x1, #0x20]"
// or "x1, #0x20". No comma means no offset.
func parseOffsetOperand(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("missing offset operand")
	}
	_, imm, found := strings.Cut(s, ",")
	if !found {
		return 0, nil
	}
	imm = strings.TrimSpace(imm)
	imm = strings.TrimRight(imm, "]!")
	imm = strings.TrimPrefix(strings.TrimSpace(imm), "#")
	return parseHex(imm)
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return 0, fmt.Errorf("empty hex literal")
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hex %q: %w", s, err)
	}
	return v, nil
}
