package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/wdc65xx/wdc65xx/memory"
	"github.com/wdc65xx/wdc65xx/observer"
)

// flatMemory is a trivial Bank with deterministic (zeroed) power-on
// contents, so tests don't have to fight math/rand.
type flatMemory struct {
	ram [memory.Size]uint8
}

func (f *flatMemory) Read(addr uint16) uint8     { return f.ram[addr] }
func (f *flatMemory) Write(addr uint16, v uint8)  { f.ram[addr] = v }
func (f *flatMemory) PowerOn()                   {}
func (f *flatMemory) Parent() memory.Bank         { return nil }
func (f *flatMemory) DatabusVal() uint8           { return 0 }
func (f *flatMemory) ReadOnly(uint16, int) bool   { return false }
func (f *flatMemory) Screen(uint16, int) bool     { return false }

func newChip(t *testing.T) (*Chip, *flatMemory) {
	t.Helper()
	ram := &flatMemory{}
	c := New(ChipDef{Ram: ram})
	return c, ram
}

func TestADCBinaryOverflow(t *testing.T) {
	c, ram := newChip(t)
	c.A = 0x50
	c.setFlag(FlagCarry, false)
	ram.ram[0x0600] = 0x69 // ADC #imm
	ram.ram[0x0601] = 0x50
	c.SetPC(0x0600)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if diff := deep.Equal(c.A, uint8(0xA0)); diff != nil {
		t.Errorf("A mismatch: %v\nstate: %s", diff, spew.Sdump(c))
	}
	if !c.flag(FlagNegative) || !c.flag(FlagOverflow) || c.flag(FlagCarry) || c.flag(FlagZero) {
		t.Errorf("flags = N:%v V:%v C:%v Z:%v, want N:1 V:1 C:0 Z:0",
			c.flag(FlagNegative), c.flag(FlagOverflow), c.flag(FlagCarry), c.flag(FlagZero))
	}
}

func TestADCDecimal(t *testing.T) {
	c, ram := newChip(t)
	c.A = 0x15
	c.setFlag(FlagDecimal, true)
	c.setFlag(FlagCarry, false)
	ram.ram[0x0600] = 0x69
	ram.ram[0x0601] = 0x27
	c.SetPC(0x0600)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x42 {
		t.Errorf("A = $%02X, want $42", c.A)
	}
	if c.flag(FlagCarry) {
		t.Errorf("carry set, want clear")
	}
}

func TestADCDecimalCarry(t *testing.T) {
	c, ram := newChip(t)
	c.A = 0x75
	c.setFlag(FlagDecimal, true)
	c.setFlag(FlagCarry, false)
	ram.ram[0x0600] = 0x69
	ram.ram[0x0601] = 0x35
	c.SetPC(0x0600)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x10 {
		t.Errorf("A = $%02X, want $10", c.A)
	}
	if !c.flag(FlagCarry) {
		t.Errorf("carry clear, want set")
	}
}

func TestCMPSetsFlags(t *testing.T) {
	c, ram := newChip(t)
	c.A = 0x40
	ram.ram[0x0600] = 0xC9 // CMP #imm
	ram.ram[0x0601] = 0x40
	c.SetPC(0x0600)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x40 {
		t.Errorf("A changed to $%02X, CMP must not write A", c.A)
	}
	if !c.flag(FlagZero) || !c.flag(FlagCarry) || c.flag(FlagNegative) {
		t.Errorf("flags = Z:%v C:%v N:%v, want Z:1 C:1 N:0",
			c.flag(FlagZero), c.flag(FlagCarry), c.flag(FlagNegative))
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, ram := newChip(t)
	// JSR $0200 ; NOP            at $0600
	// RTS                        at $0200
	ram.ram[0x0600] = 0x20
	ram.ram[0x0601] = 0x00
	ram.ram[0x0602] = 0x02
	ram.ram[0x0603] = 0xEA
	ram.ram[0x0200] = 0x60
	c.SetPC(0x0600)
	startSP := c.SP

	for i := 0; i < 3; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}
	if c.PC != 0x0604 {
		t.Errorf("PC = $%04X, want $0604", c.PC)
	}
	if c.SP != startSP {
		t.Errorf("SP = $%02X, want $%02X (restored)", c.SP, startSP)
	}
}

func TestBranchNoPageCrossBonus(t *testing.T) {
	for _, tc := range []struct {
		name    string
		zSet    bool
		wantPC  uint16
	}{
		{"taken", true, 0x0104},
		{"not taken", false, 0x0100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, ram := newChip(t)
			ram.ram[0x00FE] = 0xF0 // BEQ
			ram.ram[0x00FF] = 0x04
			c.setFlag(FlagZero, tc.zSet)
			c.SetPC(0x00FE)
			before := c.Cycles()

			if err := c.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
			if c.PC != tc.wantPC {
				t.Errorf("PC = $%04X, want $%04X", c.PC, tc.wantPC)
			}
			if got := c.Cycles() - before; got != 2 {
				t.Errorf("cycles = %d, want 2 (no page-cross bonus)", got)
			}
		})
	}
}

func TestStackLIFO(t *testing.T) {
	c, _ := newChip(t)
	startSP := c.SP
	for _, b := range []uint8{0x11, 0x22, 0x33} {
		c.push(b)
	}
	for i := len(([]uint8{0x11, 0x22, 0x33})) - 1; i >= 0; i-- {
		want := []uint8{0x11, 0x22, 0x33}[i]
		if got := c.pop(); got != want {
			t.Errorf("pop() = $%02X, want $%02X", got, want)
		}
	}
	if c.SP != startSP {
		t.Errorf("SP = $%02X, want $%02X", c.SP, startSP)
	}
}

func TestZeroPageIndexedWrap(t *testing.T) {
	c, ram := newChip(t)
	c.X = 0x10
	// pointer stored at (0xF8+0x10)&0xFF = 0x08, not 0x108.
	ram.ram[0x08] = 0x00
	ram.ram[0x09] = 0x03
	ram.ram[0x0300] = 0x99
	ram.ram[0x0600] = 0xA1 // LDA (zp,X)
	ram.ram[0x0601] = 0xF8
	c.SetPC(0x0600)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x99 {
		t.Errorf("A = $%02X, want $99 (pointer must wrap in page 0)", c.A)
	}
}

func TestIllegalOpcodeBreaks(t *testing.T) {
	c, ram := newChip(t)
	ram.ram[0x0600] = 0xFF // not a legal opcode on this part
	c.SetPC(0x0600)

	err := c.Step()
	if err == nil {
		t.Fatal("Step returned nil error for illegal opcode")
	}
	if _, ok := err.(IllegalOpcode); !ok {
		t.Errorf("err = %T, want IllegalOpcode", err)
	}
	if c.State() != Break {
		t.Errorf("state = %v, want Break", c.State())
	}
	if c.PC != 0x0601 {
		t.Errorf("PC = $%04X, want $0601 (just past the illegal byte)", c.PC)
	}
}

func TestIllegalJumpSelfLoop(t *testing.T) {
	c, ram := newChip(t)
	ram.ram[0x0600] = 0x4C // JMP abs -> itself
	ram.ram[0x0601] = 0x00
	ram.ram[0x0602] = 0x06
	c.SetPC(0x0600)

	var hit uint16
	c.obs = illegalJumpSpy{target: &hit}
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if hit != 0x0600 {
		t.Errorf("IllegalJump hook fired for $%04X, want $0600", hit)
	}
	if c.State() != Running {
		t.Errorf("state = %v, want Running (an illegal jump only fires the hook; it does not halt)", c.State())
	}
	if c.PC != 0x0600 {
		t.Errorf("PC = $%04X, want $0600 (the jump itself still executes)", c.PC)
	}
}

func TestBreakpointStopsCont(t *testing.T) {
	c, ram := newChip(t)
	ram.ram[0x0600] = 0xEA // NOP
	ram.ram[0x0601] = 0xEA // NOP
	ram.ram[0x0602] = 0xEA // NOP
	c.SetPC(0x0600)
	c.AddBreakpoint(0x0602)

	if err := c.Cont(); err != nil {
		t.Fatalf("Cont: %v", err)
	}
	if c.PC != 0x0602 {
		t.Errorf("PC = $%04X, want $0602", c.PC)
	}
	if c.State() != Break {
		t.Errorf("state = %v, want Break", c.State())
	}
}

func TestNextStepsOverJSR(t *testing.T) {
	c, ram := newChip(t)
	ram.ram[0x0600] = 0x20 // JSR $0700
	ram.ram[0x0601] = 0x00
	ram.ram[0x0602] = 0x07
	ram.ram[0x0603] = 0xEA // NOP, landed on after the step-over
	ram.ram[0x0700] = 0x60 // RTS
	c.SetPC(0x0600)

	if err := c.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if c.PC != 0x0603 {
		t.Errorf("PC = $%04X, want $0603 (stepped over the JSR)", c.PC)
	}
}

func TestResetLifecycle(t *testing.T) {
	c, _ := newChip(t)
	c.A, c.X, c.Y = 1, 2, 3
	c.SetPC(0x1234)
	c.charge(9)
	c.Reset()

	if diff := deep.Equal([3]uint8{c.A, c.X, c.Y}, [3]uint8{0, 0, 0}); diff != nil {
		t.Errorf("registers not cleared: %v", diff)
	}
	if c.SP != 0xFF {
		t.Errorf("SP = $%02X, want $FF", c.SP)
	}
	if !c.flag(FlagInterrupt) {
		t.Errorf("I flag clear after reset, want set")
	}
	if c.Cycles() != 0 {
		t.Errorf("Cycles() = %d, want 0 (Reset zeroes t)", c.Cycles())
	}
	if c.PC != 0x1234 {
		t.Errorf("PC = $%04X, want $1234 (Reset must not touch PC)", c.PC)
	}
}

func TestResetSystemLoadsVectorAndCharges7(t *testing.T) {
	c, ram := newChip(t)
	ram.ram[int(ResetVector)] = 0x00
	ram.ram[int(ResetVector)+1] = 0x08
	before := c.Cycles()
	c.ResetSystem()

	if c.PC != 0x0800 {
		t.Errorf("PC = $%04X, want $0800 (from reset vector)", c.PC)
	}
	if got := c.Cycles() - before; got != 7 {
		t.Errorf("cycles charged = %d, want 7", got)
	}
}

// illegalJumpSpy records the address passed to IllegalJump and leaves
// every other hook as observer.Base's no-op.
type illegalJumpSpy struct {
	observer.Base
	target *uint16
}

func (s illegalJumpSpy) IllegalJump(addr uint16) { *s.target = addr }
