package cpu

import "github.com/wdc65xx/wdc65xx/observer"

// Reset restores the register file to its just-created state: A, X, Y
// zeroed, SR with only the reserved and interrupt-disable bits set,
// SP set to 0xFF, and the cycle counter zeroed. It does not touch PC
// or load the reset vector - that is ResetSystem's job. Breakpoints
// and jump points survive a reset; the in-progress interrupt flags
// and the halt reason are cleared and the state returns to Running.
func (c *Chip) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SR = FlagReserved | FlagInterrupt
	c.SP = 0xFF
	c.inNMI, c.inIRQ, c.inBRK = false, false, false
	c.state = Running
	c.haltReason = nil
	c.t = 0
	c.obs.RegisterChanged(observer.RegNone)
	c.obs.FlagsChanged()
	c.obs.StackChanged()
}

// ResetSystem performs no register save: it jumps straight to the
// Reset vector and charges 7 cycles, the way real hardware's reset
// line does. Call Reset first for a full power-on sequence; a host
// driving a warm reset (e.g. a reset button wired only to the vector
// fetch) can call ResetSystem alone.
func (c *Chip) ResetSystem() {
	c.PC = c.readVector(ResetVector)
	c.obs.PCChanged()
	c.charge(7)
}

func (c *Chip) readVector(addr uint16) uint16 {
	lo := c.mem.Read(addr)
	hi := c.mem.Read(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

func (c *Chip) push(v uint8) {
	c.mem.Write(0x0100|uint16(c.SP), v)
	c.SP--
	c.obs.StackChanged()
}

func (c *Chip) pop() uint8 {
	c.SP++
	v := c.mem.Read(0x0100 | uint16(c.SP))
	c.obs.StackChanged()
	return v
}

func (c *Chip) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v & 0xFF))
}

func (c *Chip) popWord() uint16 {
	lo := c.pop()
	hi := c.pop()
	return uint16(lo) | uint16(hi)<<8
}

// charge adds n cycles to the running total and fires Tick.
func (c *Chip) charge(n int) {
	c.t += uint64(n)
	c.obs.Tick(n)
}

// enterInterrupt pushes PC then SR (with the break flag set per
// brk), sets the interrupt-disable flag, and jumps through vector.
// It does not itself track which of inNMI/inIRQ/inBRK applies; callers
// set that before invoking.
func (c *Chip) enterInterrupt(vector uint16, brk bool) {
	c.pushWord(c.PC)
	sr := c.SR | FlagReserved
	if brk {
		sr |= FlagBreak
	} else {
		sr &^= FlagBreak
	}
	c.push(sr)
	c.setFlag(FlagInterrupt, true)
	c.SetPC(c.readVector(vector))
	c.charge(7)
}

// NMI services a non-maskable interrupt unconditionally. It may be
// called re-entrantly by a host; doing so while already servicing one
// reports InterruptNesting but still takes effect (the nested entry
// simply overwrites inNMI, which was already true).
func (c *Chip) NMI() error {
	var err error
	if c.inNMI {
		err = InterruptNesting{Reason: "NMI while already servicing NMI"}
	}
	c.inNMI = true
	c.enterInterrupt(NMIVector, false)
	c.obs.HandleNMI()
	return err
}

// IRQ services a maskable interrupt if the interrupt-disable flag is
// clear; otherwise it is a no-op, as on real hardware.
func (c *Chip) IRQ() error {
	if c.flag(FlagInterrupt) {
		return nil
	}
	var err error
	if c.inIRQ {
		err = InterruptNesting{Reason: "IRQ while already servicing IRQ"}
	}
	c.inIRQ = true
	c.enterInterrupt(IRQVector, false)
	c.obs.HandleIRQ()
	return err
}

// pollLines checks the optional edge-triggered NMI line and
// level-triggered IRQ line, firing entry as appropriate. Called by
// Cont between instructions.
func (c *Chip) pollLines() {
	if c.nmiLine != nil {
		raised := c.nmiLine.Raised()
		if raised && !c.nmiPrev {
			c.NMI()
		}
		c.nmiPrev = raised
	}
	if c.irqLine != nil && c.irqLine.Raised() {
		c.IRQ()
	}
}

// EnablePrintDirectives turns on interception of JSR to the five magic
// addresses in addrs (DefaultPrintAddrs if the zero value is passed)
// as host-mediated print directives; see Chip.Step for the behavior.
func (c *Chip) EnablePrintDirectives(addrs PrintAddrs) {
	c.printEnabled = true
	if addrs != (PrintAddrs{}) {
		c.printAddrs = addrs
	}
}

// DisablePrintDirectives turns interception back off; JSR to those
// addresses behaves as a normal subroutine call again.
func (c *Chip) DisablePrintDirectives() {
	c.printEnabled = false
}
