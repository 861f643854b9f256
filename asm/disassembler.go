package asm

import (
	"fmt"

	"github.com/wdc65xx/wdc65xx/cpu"
	"github.com/wdc65xx/wdc65xx/memory"
)

// Instruction is one decoded line of a linear disassembly.
type Instruction struct {
	Addr   uint16
	Opcode uint8
	Bytes  []uint8
	Text   string // e.g. "LDA $44,X" or "BNE $0612"
	Length int
	Legal  bool
}

// Disassemble decodes the instruction at addr in b. For an opcode
// byte outside the 151 legal values it returns a one-byte
// pseudo-instruction ("???") with Legal false, the same recovery
// behavior Chip.Step uses, so a disassembly never wedges on data
// embedded in a code segment.
func Disassemble(b memory.Bank, addr uint16) Instruction {
	opcode := b.Read(addr)
	name, mode, _, ok := cpu.Lookup(opcode)
	if !ok {
		return Instruction{Addr: addr, Opcode: opcode, Bytes: []uint8{opcode}, Text: "??? (illegal)", Length: 1}
	}
	n := cpu.OperandBytes(mode)
	raw := make([]uint8, 1+n)
	raw[0] = opcode
	for i := 0; i < n; i++ {
		raw[1+i] = b.Read(addr + 1 + uint16(i))
	}
	return Instruction{
		Addr:   addr,
		Opcode: opcode,
		Bytes:  raw,
		Text:   format(name, mode, raw[1:], addr),
		Length: 1 + n,
		Legal:  true,
	}
}

func format(name string, mode cpu.Mode, operand []uint8, addr uint16) string {
	switch mode {
	case cpu.Implied:
		return name
	case cpu.Accumulator:
		return name + " A"
	case cpu.Immediate:
		return fmt.Sprintf("%s #$%02X", name, operand[0])
	case cpu.ZeroPage:
		return fmt.Sprintf("%s $%02X", name, operand[0])
	case cpu.ZeroPageX:
		return fmt.Sprintf("%s $%02X,X", name, operand[0])
	case cpu.ZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", name, operand[0])
	case cpu.Absolute:
		return fmt.Sprintf("%s $%04X", name, word(operand))
	case cpu.AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", name, word(operand))
	case cpu.AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", name, word(operand))
	case cpu.Indirect:
		return fmt.Sprintf("%s ($%04X)", name, word(operand))
	case cpu.IndirectX:
		return fmt.Sprintf("%s ($%02X,X)", name, operand[0])
	case cpu.IndirectY:
		return fmt.Sprintf("%s ($%02X),Y", name, operand[0])
	case cpu.Relative:
		target := uint16(int32(addr) + 2 + int32(int8(operand[0])))
		return fmt.Sprintf("%s $%04X", name, target)
	default:
		return name
	}
}

func word(b []uint8) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// DisassembleRange walks addr..addr+length-1 linearly (no flow
// analysis - every byte is interpreted as the start of an instruction
// whether or not it actually is code), returning one Instruction per
// decoded opcode. When an instruction's bytes reach $FFFF the walk
// wraps to $0000 and carries on for the rest of the range; wrapped is
// then true and wrappedAt is the address of that instruction.
func DisassembleRange(b memory.Bank, addr uint16, length int) (insns []Instruction, wrappedAt uint16, wrapped bool) {
	remaining := length
	cur := addr
	for remaining > 0 {
		insn := Disassemble(b, cur)
		insns = append(insns, insn)
		next := uint32(cur) + uint32(insn.Length)
		if next > 0xFFFF && !wrapped {
			wrappedAt, wrapped = cur, true
		}
		cur = uint16(next)
		remaining -= insn.Length
	}
	return insns, wrappedAt, wrapped
}
