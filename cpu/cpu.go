// Package cpu implements the MOS 6502 execution engine: register
// file, the 13 addressing modes, the ALU and flag logic, and the
// fetch-decode-dispatch interpreter that ties them together. Cycles
// are charged as a lump sum once an instruction completes; this is
// not a cycle-stepped model and does not attempt to emulate
// undocumented opcodes, bus contention, or sub-instruction timing.
package cpu

import (
	"fmt"
	"io"
	"os"

	"github.com/wdc65xx/wdc65xx/irq"
	"github.com/wdc65xx/wdc65xx/memory"
	"github.com/wdc65xx/wdc65xx/observer"
)

// Hardware vectors, read little-endian.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// Status register bits, NV-BDIZC.
const (
	FlagNegative  = uint8(0x80)
	FlagOverflow  = uint8(0x40)
	FlagReserved  = uint8(0x20) // always reads 1 on real hardware when pushed
	FlagBreak     = uint8(0x10)
	FlagDecimal   = uint8(0x08)
	FlagInterrupt = uint8(0x04)
	FlagZero      = uint8(0x02)
	FlagCarry     = uint8(0x01)
)

// State is the break/halt execution state machine Cont and Step honor.
type State int

const (
	// Running means Cont will keep stepping.
	Running State = iota
	// Break means Cont returns at the next instruction boundary. Set by
	// SetBreak(true), a breakpoint hit, BRK, or an illegal opcode.
	Break
	// Halt means no further stepping occurs even if Cont is called
	// again. Only a host can clear it (there's no HW recovery modeled).
	Halt
)

// IllegalOpcode is returned by Step when the fetched opcode isn't one
// of the legal 151. PC is left pointing just after the illegal byte.
type IllegalOpcode struct {
	Opcode uint8
	Addr   uint16
}

func (e IllegalOpcode) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X @ 0x%04X", e.Opcode, e.Addr)
}

// InterruptNesting reports NMI entered while already in an NMI, IRQ
// entered while already in an IRQ, BRK while already in a BRK, or RTI
// with none of the three set. It is a warning, not a fatal condition -
// the triggering action still takes its normal effect.
type InterruptNesting struct {
	Reason string
}

func (e InterruptNesting) Error() string {
	return fmt.Sprintf("interrupt nesting: %s", e.Reason)
}

// PrintAddrs holds the five magic JSR targets used by the optional
// host-mediated print directives (see EnablePrintDirectives). Callers
// relocate them by setting fields directly before enabling.
type PrintAddrs struct {
	Out     uint16 // OUT:  print registers, with newline
	OutN    uint16 // OUTN: print registers, no newline
	OutMem  uint16 // OUTMEM:  print memory byte at an absolute address, with newline
	OutMemN uint16 // OUTMEMN: print memory byte at an absolute address, no newline
	OutS    uint16 // OUTS: print a NUL-terminated string at an absolute address
}

// DefaultPrintAddrs are conveniently out of the way of a typical
// $0200-$0700 teaching program.
var DefaultPrintAddrs = PrintAddrs{
	Out:     0xFFF0,
	OutN:    0xFFF3,
	OutMem:  0xFFF6,
	OutMemN: 0xFFF9,
	OutS:    0xFFED, // below Out, leaving the vector window at 0xFFFA untouched
}

// ChipDef configures a new Chip.
type ChipDef struct {
	// Ram backs the 64KiB address space. If nil a fresh memory.NewRAM
	// is used.
	Ram memory.Bank
	// Obs receives the observer callbacks. If nil, observer.Base (all
	// no-ops) is used.
	Obs observer.Hooks
	// IRQ, if non-nil, is polled by Cont between instructions; a
	// raised line with interrupts enabled triggers IRQ() automatically.
	IRQ irq.Sender
	// NMI, if non-nil, is polled by Cont between instructions; a raised
	// line triggers NMI() automatically (edge-style, fires once).
	NMI irq.Sender
}

// Chip is a single MOS 6502 core: six architectural registers, the
// status byte, a 64-bit cycle counter, and the execution state needed
// to run, break on, and single-step a program.
type Chip struct {
	A, X, Y uint8
	SP      uint8
	SR      uint8
	PC      uint16
	t       uint64

	mem memory.Bank
	obs observer.Hooks

	irqLine irq.Sender
	nmiLine irq.Sender
	nmiPrev bool // edge detector for nmiLine

	inNMI, inIRQ, inBRK bool

	state      State
	haltReason error
	lastErr    error // set by BRK/RTI when InterruptNesting applies; drained by Step

	breakpoints map[uint16]struct{}
	tempBreak   *uint16
	jumpPoints  map[uint16]struct{}

	printEnabled bool
	printAddrs   PrintAddrs
	out          io.Writer
}

// SetOutput redirects the host-mediated print directives (see
// EnablePrintDirectives) to w. Defaults to os.Stdout.
func (c *Chip) SetOutput(w io.Writer) { c.out = w }

// New creates a powered-on Chip per def. Ram is powered on as part of
// this call.
func New(def ChipDef) *Chip {
	ram := def.Ram
	if ram == nil {
		ram = memory.NewRAM()
	}
	obs := def.Obs
	if obs == nil {
		obs = observer.Base{}
	}
	c := &Chip{
		mem:         ram,
		obs:         obs,
		irqLine:     def.IRQ,
		nmiLine:     def.NMI,
		breakpoints: make(map[uint16]struct{}),
		jumpPoints:  make(map[uint16]struct{}),
		printAddrs:  DefaultPrintAddrs,
		out:         os.Stdout,
	}
	c.mem.PowerOn()
	c.Reset()
	c.ResetSystem()
	return c
}

// Mem returns the memory bank backing this Chip, for hosts that need
// to load a program or inspect state directly.
func (c *Chip) Mem() memory.Bank { return c.mem }

// Cycles returns the monotonically increasing cycle counter.
func (c *Chip) Cycles() uint64 { return c.t }

// State returns the current execution state.
func (c *Chip) State() State { return c.state }

// SetBreak forces the execution state to Break (if b) or back to
// Running (if !b and not Halted).
func (c *Chip) SetBreak(b bool) {
	if b {
		c.state = Break
		return
	}
	if c.state != Halt {
		c.state = Running
	}
}

// SetHalt forces the execution state to Halt. Only a host can clear
// it, by constructing a new Chip or calling Reset.
func (c *Chip) SetHalt() {
	c.state = Halt
}

// HaltReason returns the IllegalOpcode error recorded when Step last
// fetched an illegal opcode, if any; Step also returns it while the
// state is Halt. SetHalt records no reason, and Reset clears it.
func (c *Chip) HaltReason() error { return c.haltReason }

func (c *Chip) setReg(which observer.Register, v *uint8, val uint8) {
	*v = val
	c.obs.RegisterChanged(which)
}

// SetA, SetX, SetY let a host edit a register and fire the matching
// observer hook (used by register-edit widgets).
func (c *Chip) SetA(v uint8) { c.setReg(observer.RegA, &c.A, v) }
func (c *Chip) SetX(v uint8) { c.setReg(observer.RegX, &c.X, v) }
func (c *Chip) SetY(v uint8) { c.setReg(observer.RegY, &c.Y, v) }

// SetSP sets the stack pointer directly and notifies observers.
func (c *Chip) SetSP(v uint8) {
	c.SP = v
	c.obs.RegisterChanged(observer.RegSP)
	c.obs.StackChanged()
}

// SetSR sets the status byte directly and notifies observers.
func (c *Chip) SetSR(v uint8) {
	c.SR = v
	c.obs.RegisterChanged(observer.RegSR)
	c.obs.FlagsChanged()
}

// SetPC sets the program counter directly and notifies observers.
func (c *Chip) SetPC(v uint16) {
	c.PC = v
	c.obs.RegisterChanged(observer.RegPC)
	c.obs.PCChanged()
}

func (c *Chip) flag(mask uint8) bool { return c.SR&mask != 0 }

func (c *Chip) setFlag(mask uint8, set bool) {
	if set {
		c.SR |= mask
	} else {
		c.SR &^= mask
	}
	c.obs.FlagsChanged()
}
