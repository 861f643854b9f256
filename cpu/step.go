package cpu

import (
	"fmt"
	"sort"
)

// Step fetches, decodes and executes exactly one instruction, charges
// its cycles, and returns. An unrecognized opcode moves the execution
// state to Break and returns IllegalOpcode without side effects beyond
// the fetch itself; everything else about the machine is left as it
// was before the fetch so a host can inspect state at the fault.
func (c *Chip) Step() error {
	if c.state == Halt {
		return c.haltReason
	}
	instrAddr := c.PC
	opcode := c.mem.Read(c.PC)
	c.PC++

	entry := opcodeTable[opcode]
	if entry == nil {
		err := IllegalOpcode{Opcode: opcode, Addr: instrAddr}
		c.state = Break
		c.haltReason = err
		return err
	}

	if c.printEnabled && opcode == 0x20 {
		lo := c.mem.Read(c.PC)
		hi := c.mem.Read(c.PC + 1)
		target := uint16(lo) | uint16(hi)<<8
		if c.printDirective(target) {
			c.PC += 2
			c.charge(entry.cycles)
			return nil
		}
	}

	addr, imm := c.resolve(entry.mode)
	c.lastErr = nil
	entry.fn(c, addr, imm, entry.mode, instrAddr)
	c.charge(entry.cycles)
	return c.lastErr
}

// printDirective implements the five host-mediated print directives.
// OUT/OUTN print the registers (A, X, Y, SP, SR and PC); for
// OUTMEM/OUTMEMN/OUTS, X/Y hold the low/high bytes of the address
// to print from. The
// directive does not push a return address or touch the stack - it
// behaves as if the JSR were never taken, falling through to the
// instruction after the three JSR bytes.
func (c *Chip) printDirective(target uint16) bool {
	switch target {
	case c.printAddrs.Out:
		fmt.Fprintf(c.out, "A=%02X X=%02X Y=%02X SP=%02X SR=%02X PC=%04X\n", c.A, c.X, c.Y, c.SP, c.SR, c.PC)
	case c.printAddrs.OutN:
		fmt.Fprintf(c.out, "A=%02X X=%02X Y=%02X SP=%02X SR=%02X PC=%04X", c.A, c.X, c.Y, c.SP, c.SR, c.PC)
	case c.printAddrs.OutMem:
		addr := uint16(c.X) | uint16(c.Y)<<8
		fmt.Fprintf(c.out, "%02X\n", c.mem.Read(addr))
	case c.printAddrs.OutMemN:
		addr := uint16(c.X) | uint16(c.Y)<<8
		fmt.Fprintf(c.out, "%02X", c.mem.Read(addr))
	case c.printAddrs.OutS:
		addr := uint16(c.X) | uint16(c.Y)<<8
		for {
			b := c.mem.Read(addr)
			if b == 0 {
				break
			}
			fmt.Fprintf(c.out, "%c", b)
			addr++
		}
	default:
		return false
	}
	return true
}

// Cont runs Step in a loop until the execution state leaves Running -
// a breakpoint is reached, an illegal opcode is fetched, or a host
// calls SetBreak/SetHalt from within an observer callback. It returns
// the error (if any) that caused the stop; reaching a breakpoint is
// not itself an error.
func (c *Chip) Cont() error {
	for c.state == Running {
		c.pollLines()
		if c.state != Running {
			return nil
		}
		op := c.mem.Read(c.PC)
		if err := c.Step(); err != nil {
			if _, ok := err.(IllegalOpcode); ok {
				return err
			}
		}
		if c.state != Running {
			return nil
		}
		if _, ok := c.breakpoints[c.PC]; ok {
			c.state = Break
			c.obs.BreakpointHit(c.PC)
			return nil
		}
		if c.tempBreak != nil && c.PC == *c.tempBreak {
			c.state = Break
			c.tempBreak = nil
			return nil
		}
		isJump := op == 0x20 || op == 0x4C || op == 0x6C // JSR, JMP abs, JMP (ind)
		if _, ok := c.jumpPoints[c.PC]; ok && isJump {
			c.obs.JumpPointHit(c.PC, c.mem.Read(c.PC))
		}
	}
	return nil
}

// Next steps over the instruction at PC: a JSR runs to completion
// rather than single-stepping through the callee, by installing a
// temporary breakpoint just past the current instruction and calling
// Cont. An instruction that falls through stops after that one
// instruction, as Step would, but leaves the state at Break; a taken
// branch or a JMP runs on until execution reaches the address just
// past it or another stop occurs.
func (c *Chip) Next() error {
	opcode := c.mem.Read(c.PC)
	length := uint16(1)
	if entry := opcodeTable[opcode]; entry != nil {
		length += uint16(OperandBytes(entry.mode))
	}
	target := c.PC + length
	prev := c.tempBreak
	c.tempBreak = &target
	err := c.Cont()
	c.tempBreak = prev
	return err
}

// AddBreakpoint arms a permanent breakpoint at addr.
func (c *Chip) AddBreakpoint(addr uint16) {
	c.breakpoints[addr] = struct{}{}
	c.obs.BreakpointsChanged()
}

// RemoveBreakpoint disarms a breakpoint at addr, if any.
func (c *Chip) RemoveBreakpoint(addr uint16) {
	delete(c.breakpoints, addr)
	c.obs.BreakpointsChanged()
}

// Breakpoints returns the armed breakpoint addresses in ascending order.
func (c *Chip) Breakpoints() []uint16 {
	out := make([]uint16, 0, len(c.breakpoints))
	for a := range c.breakpoints {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddJumpPoint arms a jump point at addr: Cont will fire
// observer.Hooks.JumpPointHit when a JSR or JMP lands there, without
// stopping.
func (c *Chip) AddJumpPoint(addr uint16) {
	c.jumpPoints[addr] = struct{}{}
	c.obs.JumpPointsChanged()
}

// RemoveJumpPoint disarms a jump point at addr, if any.
func (c *Chip) RemoveJumpPoint(addr uint16) {
	delete(c.jumpPoints, addr)
	c.obs.JumpPointsChanged()
}

// JumpPoints returns the armed jump point addresses in ascending order.
func (c *Chip) JumpPoints() []uint16 {
	out := make([]uint16, 0, len(c.jumpPoints))
	for a := range c.jumpPoints {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
