package cpu

// opEntry is one row of the legal-opcode dispatch table. A nil entry
// in opcodeTable means the byte has no defined instruction on this
// part; Step reports IllegalOpcode for it rather than guessing at
// undocumented behavior.
type opEntry struct {
	name   string
	mode   Mode
	cycles int
	fn     execFunc
}

var opcodeTable [256]*opEntry

var reverseTable map[string]map[Mode]uint8

func buildReverseTable() {
	reverseTable = make(map[string]map[Mode]uint8)
	for op, e := range opcodeTable {
		if e == nil {
			continue
		}
		if reverseTable[e.name] == nil {
			reverseTable[e.name] = make(map[Mode]uint8)
		}
		reverseTable[e.name][e.mode] = uint8(op)
	}
}

// OpcodeFor returns the opcode byte for a (mnemonic, mode) pair, for
// use by an assembler translating parsed source into machine code.
func OpcodeFor(name string, mode Mode) (uint8, bool) {
	if reverseTable == nil {
		buildReverseTable()
	}
	modes, ok := reverseTable[name]
	if !ok {
		return 0, false
	}
	op, ok := modes[mode]
	return op, ok
}

// Lookup returns the mnemonic, addressing mode and cycle count for a
// legal opcode byte, for use by disassemblers and trace tooling that
// live outside this package. ok is false for any of the 105 bytes
// with no defined instruction on this part.
func Lookup(opcode uint8) (name string, mode Mode, cycles int, ok bool) {
	e := opcodeTable[opcode]
	if e == nil {
		return "", Implied, 0, false
	}
	return e.name, e.mode, e.cycles, true
}

func def(op uint8, name string, mode Mode, cycles int, fn execFunc) {
	opcodeTable[op] = &opEntry{name: name, mode: mode, cycles: cycles, fn: fn}
}

func init() {
	def(0x69, "ADC", Immediate, 2, execADC)
	def(0x65, "ADC", ZeroPage, 3, execADC)
	def(0x75, "ADC", ZeroPageX, 4, execADC)
	def(0x6D, "ADC", Absolute, 4, execADC)
	def(0x7D, "ADC", AbsoluteX, 4, execADC)
	def(0x79, "ADC", AbsoluteY, 4, execADC)
	def(0x61, "ADC", IndirectX, 6, execADC)
	def(0x71, "ADC", IndirectY, 5, execADC)

	def(0x29, "AND", Immediate, 2, execAND)
	def(0x25, "AND", ZeroPage, 3, execAND)
	def(0x35, "AND", ZeroPageX, 4, execAND)
	def(0x2D, "AND", Absolute, 4, execAND)
	def(0x3D, "AND", AbsoluteX, 4, execAND)
	def(0x39, "AND", AbsoluteY, 4, execAND)
	def(0x21, "AND", IndirectX, 6, execAND)
	def(0x31, "AND", IndirectY, 5, execAND)

	def(0x0A, "ASL", Accumulator, 2, execASL)
	def(0x06, "ASL", ZeroPage, 5, execASL)
	def(0x16, "ASL", ZeroPageX, 6, execASL)
	def(0x0E, "ASL", Absolute, 6, execASL)
	def(0x1E, "ASL", AbsoluteX, 7, execASL)

	def(0x90, "BCC", Relative, 2, execBCC)
	def(0xB0, "BCS", Relative, 2, execBCS)
	def(0xF0, "BEQ", Relative, 2, execBEQ)
	def(0x24, "BIT", ZeroPage, 3, execBIT)
	def(0x2C, "BIT", Absolute, 4, execBIT)
	def(0x30, "BMI", Relative, 2, execBMI)
	def(0xD0, "BNE", Relative, 2, execBNE)
	def(0x10, "BPL", Relative, 2, execBPL)
	def(0x00, "BRK", Implied, 0, execBRK) // enterInterrupt charges the 7 cycles
	def(0x50, "BVC", Relative, 2, execBVC)
	def(0x70, "BVS", Relative, 2, execBVS)

	def(0x18, "CLC", Implied, 2, execCLC)
	def(0xD8, "CLD", Implied, 2, execCLD)
	def(0x58, "CLI", Implied, 2, execCLI)
	def(0xB8, "CLV", Implied, 2, execCLV)

	def(0xC9, "CMP", Immediate, 2, execCMP)
	def(0xC5, "CMP", ZeroPage, 3, execCMP)
	def(0xD5, "CMP", ZeroPageX, 4, execCMP)
	def(0xCD, "CMP", Absolute, 4, execCMP)
	def(0xDD, "CMP", AbsoluteX, 4, execCMP)
	def(0xD9, "CMP", AbsoluteY, 4, execCMP)
	def(0xC1, "CMP", IndirectX, 6, execCMP)
	def(0xD1, "CMP", IndirectY, 5, execCMP)

	def(0xE0, "CPX", Immediate, 2, execCPX)
	def(0xE4, "CPX", ZeroPage, 3, execCPX)
	def(0xEC, "CPX", Absolute, 4, execCPX)
	def(0xC0, "CPY", Immediate, 2, execCPY)
	def(0xC4, "CPY", ZeroPage, 3, execCPY)
	def(0xCC, "CPY", Absolute, 4, execCPY)

	def(0xC6, "DEC", ZeroPage, 5, execDEC)
	def(0xD6, "DEC", ZeroPageX, 6, execDEC)
	def(0xCE, "DEC", Absolute, 6, execDEC)
	def(0xDE, "DEC", AbsoluteX, 7, execDEC)
	def(0xCA, "DEX", Implied, 2, execDEX)
	def(0x88, "DEY", Implied, 2, execDEY)

	def(0x49, "EOR", Immediate, 2, execEOR)
	def(0x45, "EOR", ZeroPage, 3, execEOR)
	def(0x55, "EOR", ZeroPageX, 4, execEOR)
	def(0x4D, "EOR", Absolute, 4, execEOR)
	def(0x5D, "EOR", AbsoluteX, 4, execEOR)
	def(0x59, "EOR", AbsoluteY, 4, execEOR)
	def(0x41, "EOR", IndirectX, 6, execEOR)
	def(0x51, "EOR", IndirectY, 5, execEOR)

	def(0xE6, "INC", ZeroPage, 5, execINC)
	def(0xF6, "INC", ZeroPageX, 6, execINC)
	def(0xEE, "INC", Absolute, 6, execINC)
	def(0xFE, "INC", AbsoluteX, 7, execINC)
	def(0xE8, "INX", Implied, 2, execINX)
	def(0xC8, "INY", Implied, 2, execINY)

	def(0x4C, "JMP", Absolute, 3, execJMP)
	def(0x6C, "JMP", Indirect, 5, execJMP)
	def(0x20, "JSR", Absolute, 6, execJSR)

	def(0xA9, "LDA", Immediate, 2, execLDA)
	def(0xA5, "LDA", ZeroPage, 3, execLDA)
	def(0xB5, "LDA", ZeroPageX, 4, execLDA)
	def(0xAD, "LDA", Absolute, 4, execLDA)
	def(0xBD, "LDA", AbsoluteX, 4, execLDA)
	def(0xB9, "LDA", AbsoluteY, 4, execLDA)
	def(0xA1, "LDA", IndirectX, 6, execLDA)
	def(0xB1, "LDA", IndirectY, 5, execLDA)

	def(0xA2, "LDX", Immediate, 2, execLDX)
	def(0xA6, "LDX", ZeroPage, 3, execLDX)
	def(0xB6, "LDX", ZeroPageY, 4, execLDX)
	def(0xAE, "LDX", Absolute, 4, execLDX)
	def(0xBE, "LDX", AbsoluteY, 4, execLDX)

	def(0xA0, "LDY", Immediate, 2, execLDY)
	def(0xA4, "LDY", ZeroPage, 3, execLDY)
	def(0xB4, "LDY", ZeroPageX, 4, execLDY)
	def(0xAC, "LDY", Absolute, 4, execLDY)
	def(0xBC, "LDY", AbsoluteX, 4, execLDY)

	def(0x4A, "LSR", Accumulator, 2, execLSR)
	def(0x46, "LSR", ZeroPage, 5, execLSR)
	def(0x56, "LSR", ZeroPageX, 6, execLSR)
	def(0x4E, "LSR", Absolute, 6, execLSR)
	def(0x5E, "LSR", AbsoluteX, 7, execLSR)

	def(0xEA, "NOP", Implied, 2, execNOP)

	def(0x09, "ORA", Immediate, 2, execORA)
	def(0x05, "ORA", ZeroPage, 3, execORA)
	def(0x15, "ORA", ZeroPageX, 4, execORA)
	def(0x0D, "ORA", Absolute, 4, execORA)
	def(0x1D, "ORA", AbsoluteX, 4, execORA)
	def(0x19, "ORA", AbsoluteY, 4, execORA)
	def(0x01, "ORA", IndirectX, 6, execORA)
	def(0x11, "ORA", IndirectY, 5, execORA)

	def(0x48, "PHA", Implied, 3, execPHA)
	def(0x08, "PHP", Implied, 3, execPHP)
	def(0x68, "PLA", Implied, 4, execPLA)
	def(0x28, "PLP", Implied, 4, execPLP)

	def(0x2A, "ROL", Accumulator, 2, execROL)
	def(0x26, "ROL", ZeroPage, 5, execROL)
	def(0x36, "ROL", ZeroPageX, 6, execROL)
	def(0x2E, "ROL", Absolute, 6, execROL)
	def(0x3E, "ROL", AbsoluteX, 7, execROL)

	def(0x6A, "ROR", Accumulator, 2, execROR)
	def(0x66, "ROR", ZeroPage, 5, execROR)
	def(0x76, "ROR", ZeroPageX, 6, execROR)
	def(0x6E, "ROR", Absolute, 6, execROR)
	def(0x7E, "ROR", AbsoluteX, 7, execROR)

	def(0x40, "RTI", Implied, 6, execRTI)
	def(0x60, "RTS", Implied, 6, execRTS)

	def(0xE9, "SBC", Immediate, 2, execSBC)
	def(0xE5, "SBC", ZeroPage, 3, execSBC)
	def(0xF5, "SBC", ZeroPageX, 4, execSBC)
	def(0xED, "SBC", Absolute, 4, execSBC)
	def(0xFD, "SBC", AbsoluteX, 4, execSBC)
	def(0xF9, "SBC", AbsoluteY, 4, execSBC)
	def(0xE1, "SBC", IndirectX, 6, execSBC)
	def(0xF1, "SBC", IndirectY, 5, execSBC)

	def(0x38, "SEC", Implied, 2, execSEC)
	def(0xF8, "SED", Implied, 2, execSED)
	def(0x78, "SEI", Implied, 2, execSEI)

	def(0x85, "STA", ZeroPage, 3, execSTA)
	def(0x95, "STA", ZeroPageX, 4, execSTA)
	def(0x8D, "STA", Absolute, 4, execSTA)
	def(0x9D, "STA", AbsoluteX, 5, execSTA)
	def(0x99, "STA", AbsoluteY, 5, execSTA)
	def(0x81, "STA", IndirectX, 6, execSTA)
	def(0x91, "STA", IndirectY, 6, execSTA)

	def(0x86, "STX", ZeroPage, 3, execSTX)
	def(0x96, "STX", ZeroPageY, 4, execSTX)
	def(0x8E, "STX", Absolute, 4, execSTX)

	def(0x84, "STY", ZeroPage, 3, execSTY)
	def(0x94, "STY", ZeroPageX, 4, execSTY)
	def(0x8C, "STY", Absolute, 4, execSTY)

	def(0xAA, "TAX", Implied, 2, execTAX)
	def(0xA8, "TAY", Implied, 2, execTAY)
	def(0xBA, "TSX", Implied, 2, execTSX)
	def(0x8A, "TXA", Implied, 2, execTXA)
	def(0x9A, "TXS", Implied, 2, execTXS)
	def(0x98, "TYA", Implied, 2, execTYA)
}
