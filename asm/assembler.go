package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wdc65xx/wdc65xx/cpu"
)

// AssembleError reports a single bad source line. The offending line
// number and text are included so a host can print a caret diagnostic
// without re-scanning the source itself.
type AssembleError struct {
	Line int
	Text string
	Msg  string
}

func (e AssembleError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Assembler runs the two-pass label-resolving assembly job described
// by the source grammar: pass one walks every line purely to learn
// label addresses (a label's value isn't needed until pass two, but
// its address must be known before any forward reference to it can be
// encoded), pass two emits bytes, failing immediately on the first
// unresolved reference or malformed line while keeping everything
// already emitted.
type Assembler struct {
	PrintAddrs cpu.PrintAddrs
}

// NewAssembler returns an Assembler wired to the default print
// directive addresses; override PrintAddrs before calling Assemble to
// target a different memory layout.
func NewAssembler() *Assembler {
	return &Assembler{PrintAddrs: cpu.DefaultPrintAddrs}
}

type srcLine struct {
	num  int
	text string
}

// Assemble reads 6502 assembly source from r and returns the raw
// memory image plus the origin address the first byte belongs at. On
// a malformed line it reports an AssembleError via err and still returns
// whatever bytes were successfully emitted before the failure.
func (a *Assembler) Assemble(r io.Reader) (image []byte, origin uint16, err error) {
	lines, rerr := readLines(r)
	if rerr != nil {
		return nil, 0, rerr
	}

	syms := newSymtab()
	defines := map[string]int{}

	var addr uint16
	originSet := false
	for _, ln := range lines {
		label, rest, perr := splitLabel(ln.text)
		if perr != nil {
			return nil, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: perr.Error()}
		}
		if label != "" {
			syms.define(label, addr, 2)
		}
		fields := tokenize(rest)
		if len(fields) == 0 {
			continue
		}
		op := strings.ToUpper(fields[0])
		switch op {
		case "ORG":
			v, verr := a.value(fields[1], syms, defines)
			if verr != nil {
				return nil, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: verr.Error()}
			}
			addr = uint16(v)
			if !originSet {
				origin = addr
				originSet = true
			}
			continue
		case "DEFINE":
			v, verr := a.value(fields[2], syms, defines)
			if verr != nil {
				return nil, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: verr.Error()}
			}
			defines[fields[1]] = v
			continue
		case "DB":
			for _, f := range fields[1:] {
				w, werr := a.dbItemWidth(f, syms, defines, true)
				if werr != nil {
					return nil, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: werr.Error()}
				}
				addr += uint16(w)
			}
			continue
		case "OUT", "OUTN", "OUTMEM", "OUTMEMN", "OUTS":
			addr += 3 // expands to JSR <addr>
			continue
		}
		mode, width, merr := a.classify(op, fields[1:], syms, defines, true)
		if merr != nil {
			return nil, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: merr.Error()}
		}
		addr += uint16(1 + width)
		_ = mode
	}
	// Lookups that missed in pass one were forward references; only
	// misses in pass two count as unresolved.
	syms.badRefs = 0

	img := make([]byte, 0, 4096)
	addr = origin
	emit := func(b ...byte) {
		for len(img) < int(addr)+len(b)-int(origin) {
			img = append(img, 0)
		}
		for i, v := range b {
			img[int(addr)-int(origin)+i] = v
		}
		addr += uint16(len(b))
	}

	for _, ln := range lines {
		_, rest, _ := splitLabel(ln.text)
		fields := tokenize(rest)
		if len(fields) == 0 {
			continue
		}
		op := strings.ToUpper(fields[0])
		switch op {
		case "ORG":
			v, _ := a.value(fields[1], syms, defines)
			addr = uint16(v)
			continue
		case "DEFINE":
			continue
		case "DB":
			for _, f := range fields[1:] {
				b, berr := a.dbItemBytes(f, syms, defines)
				if berr != nil {
					return img, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: berr.Error()}
				}
				emit(b...)
			}
			continue
		case "OUT":
			emit(0x20, byte(a.PrintAddrs.Out&0xFF), byte(a.PrintAddrs.Out>>8))
			continue
		case "OUTN":
			emit(0x20, byte(a.PrintAddrs.OutN&0xFF), byte(a.PrintAddrs.OutN>>8))
			continue
		case "OUTMEM":
			emit(0x20, byte(a.PrintAddrs.OutMem&0xFF), byte(a.PrintAddrs.OutMem>>8))
			continue
		case "OUTMEMN":
			emit(0x20, byte(a.PrintAddrs.OutMemN&0xFF), byte(a.PrintAddrs.OutMemN>>8))
			continue
		case "OUTS":
			emit(0x20, byte(a.PrintAddrs.OutS&0xFF), byte(a.PrintAddrs.OutS>>8))
			continue
		}

		mode, width, merr := a.classify(op, fields[1:], syms, defines, false)
		if merr != nil {
			return img, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: merr.Error()}
		}
		opcode, ok := cpu.OpcodeFor(op, mode)
		if !ok {
			return img, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: fmt.Sprintf("%s has no %s form", op, mode)}
		}
		switch width {
		case 0:
			emit(opcode)
		case 1:
			v, verr := a.operandValue(op, mode, fields[1:], syms, defines, addr)
			if verr != nil {
				return img, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: verr.Error()}
			}
			emit(opcode, byte(v))
		case 2:
			v, verr := a.operandValue(op, mode, fields[1:], syms, defines, addr)
			if verr != nil {
				return img, origin, AssembleError{Line: ln.num, Text: ln.text, Msg: verr.Error()}
			}
			emit(opcode, byte(v&0xFF), byte(v>>8))
		}
	}

	if syms.badRefs > 0 {
		return img, origin, AssembleError{Line: 0, Text: "", Msg: fmt.Sprintf("%d unresolved label reference(s)", syms.badRefs)}
	}
	return img, origin, nil
}

func readLines(r io.Reader) ([]srcLine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("asm: reading source: %w", err)
	}
	var out []srcLine
	for i, raw := range strings.Split(string(data), "\n") {
		if idx := strings.IndexByte(raw, ';'); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		out = append(out, srcLine{num: i + 1, text: raw})
	}
	return out, nil
}

func splitLabel(line string) (label, rest string, err error) {
	if idx := strings.IndexByte(line, ':'); idx >= 0 {
		label = strings.TrimSpace(line[:idx])
		if label == "" {
			return "", "", fmt.Errorf("empty label")
		}
		return label, strings.TrimSpace(line[idx+1:]), nil
	}
	return "", line, nil
}

func tokenize(rest string) []string {
	if rest == "" {
		return nil
	}
	// DB's operand is split on commas into one field per item and
	// DEFINE's into its name and value; every other pseudo-op and
	// mnemonic gets fields[0] plus the raw operand text in fields[1].
	parts := strings.SplitN(rest, " ", 2)
	op := strings.ToUpper(strings.TrimSpace(parts[0]))
	if len(parts) == 1 {
		return []string{op}
	}
	operand := strings.TrimSpace(parts[1])
	if op == "DB" || op == "DEFINE" {
		if op == "DEFINE" {
			defParts := strings.SplitN(operand, " ", 2)
			if len(defParts) != 2 {
				return []string{op}
			}
			return []string{op, strings.TrimSpace(defParts[0]), strings.TrimSpace(defParts[1])}
		}
		fields := []string{op}
		for _, f := range strings.Split(operand, ",") {
			fields = append(fields, strings.TrimSpace(f))
		}
		return fields
	}
	return []string{op, operand}
}

// value resolves a literal ($hex, decimal), a DEFINE'd constant, or a
// label reference to its integer value.
func (a *Assembler) value(tok string, syms *symtab, defines map[string]int) (int, error) {
	tok = strings.TrimSpace(tok)
	switch {
	case strings.HasPrefix(tok, "$"):
		n, err := strconv.ParseInt(tok[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("bad hex literal %q", tok)
		}
		return int(n), nil
	case tok != "" && (tok[0] >= '0' && tok[0] <= '9'):
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad decimal literal %q", tok)
		}
		return int(n), nil
	default:
		if v, ok := defines[tok]; ok {
			return v, nil
		}
		sym, ok := syms.lookup(tok)
		if !ok {
			return 0, fmt.Errorf("undefined label %q", tok)
		}
		return int(sym.addr), nil
	}
}

func isStringLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func stringLiteralBytes(s string) []byte {
	return []byte(s[1 : len(s)-1])
}

// dbItemWidth reports how many bytes one DB item - a string literal or
// a numeric literal/label - will occupy, without requiring every label
// to be resolvable yet: a forward reference not yet in the symbol
// table during pass one is assumed to need the worst-case two bytes,
// the same heuristic classify/isWide use for instruction operands.
func (a *Assembler) dbItemWidth(item string, syms *symtab, defines map[string]int, forwardOK bool) (int, error) {
	if isStringLiteral(item) {
		return len(stringLiteralBytes(item)), nil
	}
	switch {
	case strings.HasPrefix(item, "$"):
		n, err := strconv.ParseInt(item[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("bad hex literal %q", item)
		}
		if n > 0xFF {
			return 2, nil
		}
		return 1, nil
	case item != "" && item[0] >= '0' && item[0] <= '9':
		n, err := strconv.ParseInt(item, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("bad decimal literal %q", item)
		}
		if n > 0xFF {
			return 2, nil
		}
		return 1, nil
	}
	if v, ok := defines[item]; ok {
		if v > 0xFF {
			return 2, nil
		}
		return 1, nil
	}
	sym, ok := syms.lookup(item)
	if !ok {
		if forwardOK {
			return 2, nil
		}
		return 0, fmt.Errorf("undefined label %q", item)
	}
	if sym.addr > 0xFF {
		return 2, nil
	}
	return 1, nil
}

// dbItemBytes resolves one DB item to its final bytes: a string literal
// emits one byte per character (no terminator), a numeric literal or
// label emits one byte if it fits in 0xFF, else two bytes low-first.
func (a *Assembler) dbItemBytes(item string, syms *symtab, defines map[string]int) ([]byte, error) {
	if isStringLiteral(item) {
		return stringLiteralBytes(item), nil
	}
	v, err := a.value(item, syms, defines)
	if err != nil {
		return nil, err
	}
	if v > 0xFF {
		return []byte{byte(v & 0xFF), byte(v >> 8)}, nil
	}
	return []byte{byte(v)}, nil
}

// classify determines the addressing mode and operand byte width for
// a mnemonic given its raw operand fields. During pass one
// (forwardOK) an unresolved label is tolerated and assumed to need a
// two-byte absolute/indexed-absolute operand. Labels are recorded 2
// bytes wide (see symbol), so pass two gives every label reference the
// same absolute form, even for a label that lives in zero page.
func (a *Assembler) classify(mnemonic string, operand []string, syms *symtab, defines map[string]int, forwardOK bool) (cpu.Mode, int, error) {
	if len(operand) == 0 {
		if _, ok := cpu.OpcodeFor(mnemonic, cpu.Accumulator); ok {
			return cpu.Accumulator, 0, nil
		}
		return cpu.Implied, 0, nil
	}
	text := strings.TrimSpace(operand[0])
	switch {
	case text == "A":
		return cpu.Accumulator, 0, nil
	case strings.HasPrefix(text, "#"):
		return cpu.Immediate, 1, nil
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ",X)"):
		return cpu.IndirectX, 1, nil
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, "),Y"):
		return cpu.IndirectY, 1, nil
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")"):
		return cpu.Indirect, 2, nil
	case strings.HasSuffix(text, ",X"):
		base := strings.TrimSuffix(text, ",X")
		wide, err := a.isWide(mnemonic, base, syms, defines, forwardOK, cpu.ZeroPageX)
		if err != nil {
			return 0, 0, err
		}
		if wide {
			return cpu.AbsoluteX, 2, nil
		}
		return cpu.ZeroPageX, 1, nil
	case strings.HasSuffix(text, ",Y"):
		base := strings.TrimSuffix(text, ",Y")
		wide, err := a.isWide(mnemonic, base, syms, defines, forwardOK, cpu.ZeroPageY)
		if err != nil {
			return 0, 0, err
		}
		if wide {
			return cpu.AbsoluteY, 2, nil
		}
		return cpu.ZeroPageY, 1, nil
	default:
		if _, ok := cpu.OpcodeFor(mnemonic, cpu.Relative); ok {
			return cpu.Relative, 1, nil
		}
		wide, err := a.isWide(mnemonic, text, syms, defines, forwardOK, cpu.ZeroPage)
		if err != nil {
			return 0, 0, err
		}
		if wide {
			return cpu.Absolute, 2, nil
		}
		return cpu.ZeroPage, 1, nil
	}
}

// isWide decides whether text needs an absolute (2 byte) operand
// rather than a zero-page (1 byte) one: numeric literals are judged by
// value, labels by their recorded width once defined, and a forward
// reference not yet in the table defaults to wide. Any operand of a
// mnemonic with no zero-page form of zpMode is wide.
func (a *Assembler) isWide(mnemonic, text string, syms *symtab, defines map[string]int, forwardOK bool, zpMode cpu.Mode) (bool, error) {
	if _, hasZP := cpu.OpcodeFor(mnemonic, zpMode); !hasZP {
		return true, nil
	}
	if strings.HasPrefix(text, "$") {
		n, err := strconv.ParseInt(text[1:], 16, 32)
		if err != nil {
			return false, fmt.Errorf("bad hex literal %q", text)
		}
		return n > 0xFF, nil
	}
	if text != "" && text[0] >= '0' && text[0] <= '9' {
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return false, fmt.Errorf("bad decimal literal %q", text)
		}
		return n > 0xFF, nil
	}
	if v, ok := defines[text]; ok {
		return v > 0xFF, nil
	}
	sym, ok := syms.lookup(text)
	if !ok {
		if forwardOK {
			return true, nil
		}
		return false, fmt.Errorf("undefined label %q", text)
	}
	return sym.width > 1, nil
}

// operandValue resolves the numeric payload of an already-classified
// operand, special-casing Relative (a signed branch displacement
// computed against the address right after the 2-byte instruction).
func (a *Assembler) operandValue(mnemonic string, mode cpu.Mode, operand []string, syms *symtab, defines map[string]int, instrAddr uint16) (int, error) {
	text := strings.TrimSpace(operand[0])
	text = strings.TrimPrefix(text, "#")
	switch {
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ",X)"):
		text = text[1 : len(text)-3]
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, "),Y"):
		text = text[1 : len(text)-3]
	case strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")"):
		text = text[1 : len(text)-1]
	case strings.HasSuffix(text, ",X"), strings.HasSuffix(text, ",Y"):
		text = text[:len(text)-2]
	}
	v, err := a.value(text, syms, defines)
	if err != nil {
		return 0, err
	}
	if mode == cpu.Relative {
		off := v - int(instrAddr+2)
		if off < -128 || off > 127 {
			return 0, fmt.Errorf("branch target out of range: %d", off)
		}
		return int(uint8(int8(off))), nil
	}
	return v, nil
}
