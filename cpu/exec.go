package cpu

import "github.com/wdc65xx/wdc65xx/observer"

// execFunc implements one instruction. addr is the effective address
// computed by resolve (meaningless for Implied/Accumulator), imm is
// the fetched byte for Immediate mode, mode lets a handful of
// instructions (shifts, INC/DEC) distinguish Accumulator from memory.
type execFunc func(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16)

// operand returns the value an ALU/load instruction should act on,
// whether it came from an immediate byte or a memory dereference.
func (c *Chip) operand(addr uint16, imm uint8, mode Mode) uint8 {
	if mode == Immediate {
		return imm
	}
	return c.mem.Read(addr)
}

func (c *Chip) writeMem(addr uint16, v uint8) {
	c.mem.Write(addr, v)
	c.obs.MemChanged(addr, 1)
}

func execADC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.adc(c.operand(addr, imm, mode)) }
func execSBC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.sbc(c.operand(addr, imm, mode)) }
func execAND(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.andVal(c.operand(addr, imm, mode)) }
func execORA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.oraVal(c.operand(addr, imm, mode)) }
func execEOR(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.eorVal(c.operand(addr, imm, mode)) }
func execBIT(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.bit(c.operand(addr, imm, mode)) }

func execCMP(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.compare(c.A, c.operand(addr, imm, mode)) }
func execCPX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.compare(c.X, c.operand(addr, imm, mode)) }
func execCPY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.compare(c.Y, c.operand(addr, imm, mode)) }

func execASL(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.aslVal) }
func execLSR(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.lsrVal) }
func execROL(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.rolVal) }
func execROR(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.rorVal) }
func execINC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.incVal) }
func execDEC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { rmw(c, addr, mode, c.decVal) }

// rmw applies op to the accumulator (Accumulator mode) or to the
// memory byte at addr, writing the result back in the memory case.
func rmw(c *Chip, addr uint16, mode Mode, op func(uint8) uint8) {
	if mode == Accumulator {
		c.A = op(c.A)
		c.obs.RegisterChanged(observer.RegA)
		return
	}
	v := c.mem.Read(addr)
	c.writeMem(addr, op(v))
}

func execLDA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.A = c.operand(addr, imm, mode)
	c.nz(c.A)
	c.obs.RegisterChanged(observer.RegA)
}
func execLDX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.X = c.operand(addr, imm, mode)
	c.nz(c.X)
	c.obs.RegisterChanged(observer.RegX)
}
func execLDY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.Y = c.operand(addr, imm, mode)
	c.nz(c.Y)
	c.obs.RegisterChanged(observer.RegY)
}

func execSTA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.writeMem(addr, c.A) }
func execSTX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.writeMem(addr, c.X) }
func execSTY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.writeMem(addr, c.Y) }

func execTAX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.X = c.A
	c.nz(c.X)
	c.obs.RegisterChanged(observer.RegX)
}
func execTAY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.Y = c.A
	c.nz(c.Y)
	c.obs.RegisterChanged(observer.RegY)
}
func execTXA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.A = c.X
	c.nz(c.A)
	c.obs.RegisterChanged(observer.RegA)
}
func execTYA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.A = c.Y
	c.nz(c.A)
	c.obs.RegisterChanged(observer.RegA)
}
func execTSX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.X = c.SP
	c.nz(c.X)
	c.obs.RegisterChanged(observer.RegX)
}
func execTXS(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	// TXS does not touch N/Z - the stack pointer isn't a data register.
	c.SP = c.X
	c.obs.RegisterChanged(observer.RegSP)
}

func execINX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.X++
	c.nz(c.X)
	c.obs.RegisterChanged(observer.RegX)
}
func execINY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.Y++
	c.nz(c.Y)
	c.obs.RegisterChanged(observer.RegY)
}
func execDEX(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.X--
	c.nz(c.X)
	c.obs.RegisterChanged(observer.RegX)
}
func execDEY(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.Y--
	c.nz(c.Y)
	c.obs.RegisterChanged(observer.RegY)
}

func execCLC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagCarry, false) }
func execSEC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagCarry, true) }
func execCLI(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagInterrupt, false) }
func execSEI(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagInterrupt, true) }
func execCLV(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagOverflow, false) }
func execCLD(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagDecimal, false) }
func execSED(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.setFlag(FlagDecimal, true) }
func execNOP(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {}

func execPHA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.push(c.A) }
func execPHP(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) { c.push(c.SR | FlagReserved | FlagBreak) }
func execPLA(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.A = c.pop()
	c.nz(c.A)
	c.obs.RegisterChanged(observer.RegA)
}
func execPLP(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.SR = c.pop() | FlagReserved
	c.obs.RegisterChanged(observer.RegSR)
	c.obs.FlagsChanged()
}

// branch is shared by the eight conditional branches. instrAddr is the
// address of the branch opcode itself, used to detect a one-instruction
// infinite loop (a branch whose target is its own opcode byte).
func (c *Chip) branch(cond bool, target, instrAddr uint16) {
	if !cond {
		return
	}
	if target == instrAddr {
		c.obs.IllegalJump(target)
	}
	c.SetPC(target)
}

func execJMP(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	if addr == instrAddr {
		c.obs.IllegalJump(addr)
	}
	c.SetPC(addr)
}

func execJSR(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	if addr == instrAddr {
		c.obs.IllegalJump(addr)
	}
	c.pushWord(c.PC - 1)
	c.SetPC(addr)
}

func execBCC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(!c.flag(FlagCarry), addr, instrAddr)
}
func execBCS(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(c.flag(FlagCarry), addr, instrAddr)
}
func execBEQ(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(c.flag(FlagZero), addr, instrAddr)
}
func execBNE(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(!c.flag(FlagZero), addr, instrAddr)
}
func execBMI(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(c.flag(FlagNegative), addr, instrAddr)
}
func execBPL(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(!c.flag(FlagNegative), addr, instrAddr)
}
func execBVC(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(!c.flag(FlagOverflow), addr, instrAddr)
}
func execBVS(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.branch(c.flag(FlagOverflow), addr, instrAddr)
}

func execRTS(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.SetPC(c.popWord() + 1)
}

func execBRK(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	// The byte following the BRK opcode is a signature/padding byte the
	// interpreter skips, so the pushed return address is PC+1 from the
	// opcode fetch (i.e. one past the padding byte).
	c.PC++
	var nestErr error
	if c.inBRK {
		nestErr = InterruptNesting{Reason: "BRK while already servicing BRK"}
	}
	c.inBRK = true
	c.enterInterrupt(IRQVector, true)
	c.obs.HandleBreak()
	c.state = Break
	c.lastErr = nestErr
}

func execRTI(c *Chip, addr uint16, imm uint8, mode Mode, instrAddr uint16) {
	c.SR = c.pop() | FlagReserved
	c.obs.RegisterChanged(observer.RegSR)
	c.obs.FlagsChanged()
	c.SetPC(c.popWord())
	switch {
	case c.inNMI:
		c.inNMI = false
	case c.inIRQ:
		c.inIRQ = false
	case c.inBRK:
		c.inBRK = false
	default:
		c.lastErr = InterruptNesting{Reason: "RTI with no interrupt in progress"}
	}
}
