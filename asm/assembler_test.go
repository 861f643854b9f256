package asm

import (
	"strings"
	"testing"

	"github.com/wdc65xx/wdc65xx/memory"
)

func assemble(t *testing.T, src string) ([]byte, uint16) {
	t.Helper()
	img, origin, err := NewAssembler().Assemble(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Assemble(%q): %v", src, err)
	}
	return img, origin
}

func TestAssembleImmediateAndZeroPage(t *testing.T) {
	img, origin := assemble(t, "ORG $0600\nLDA #$10\nSTA $20\n")
	if origin != 0x0600 {
		t.Fatalf("origin = $%04X, want $0600", origin)
	}
	want := []byte{0xA9, 0x10, 0x85, 0x20}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleForwardLabelReference(t *testing.T) {
	img, _ := assemble(t, "ORG $0600\nJMP skip\nNOP\nskip:\nBRK\n")
	// JMP abs is 3 bytes, NOP is 1, so "skip" resolves to $0604.
	want := []byte{0x4C, 0x04, 0x06, 0xEA, 0x00}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleBranchOffset(t *testing.T) {
	img, _ := assemble(t, "ORG $0600\nloop:\nNOP\nBNE loop\n")
	// BNE's offset is relative to the address right after the 2-byte
	// instruction: loop($0600) - $0603 = -3.
	want := []byte{0xEA, 0xD0, 0xFD}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleBranchOutOfRangeIsAnError(t *testing.T) {
	var src strings.Builder
	src.WriteString("ORG $0600\nloop:\n")
	for i := 0; i < 200; i++ {
		src.WriteString("NOP\n")
	}
	src.WriteString("BNE loop\n")

	_, _, err := NewAssembler().Assemble(strings.NewReader(src.String()))
	if err == nil {
		t.Fatal("expected an AssembleError for an out-of-range branch")
	}
	if _, ok := err.(AssembleError); !ok {
		t.Errorf("err = %T, want AssembleError", err)
	}
}

func TestAssembleDB(t *testing.T) {
	img, _ := assemble(t, "ORG $0600\nDB $01, $02, $03\n")
	if string(img) != string([]byte{1, 2, 3}) {
		t.Errorf("image = % X, want 01 02 03", img)
	}
}

func TestAssembleDBStringLiteral(t *testing.T) {
	img, _ := assemble(t, "ORG $0600\nDB \"HI\"\n")
	want := []byte{'H', 'I'}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleDBWideValueEmitsLowFirst(t *testing.T) {
	img, _ := assemble(t, "ORG $0600\nDB $1234\n")
	want := []byte{0x34, 0x12}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleDBMixedWidensSubsequentLabel(t *testing.T) {
	// The wide DB item must push "after" two bytes further, not one,
	// so a label following it lands on the correct address.
	img, _ := assemble(t, "ORG $0600\nDB $1234\nafter:\nNOP\nJMP after\n")
	want := []byte{0x34, 0x12, 0xEA, 0x4C, 0x02, 0x06}
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleDefine(t *testing.T) {
	img, _ := assemble(t, "DEFINE SCREEN $0400\nORG $0600\nLDA SCREEN\n")
	want := []byte{0xAD, 0x00, 0x04} // Absolute, since $0400 > $FF
	if string(img) != string(want) {
		t.Errorf("image = % X, want % X", img, want)
	}
}

func TestAssembleUndefinedLabelErrors(t *testing.T) {
	_, _, err := NewAssembler().Assemble(strings.NewReader("ORG $0600\nJMP nowhere\n"))
	if err == nil {
		t.Fatal("expected an error for an undefined label")
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	img, origin := assemble(t, "ORG $0600\nLDA #$10\nSTA $20\nRTS\n")
	bank := loadImage(img, origin)

	insns, _, wrapped := DisassembleRange(bank, origin, len(img))
	if wrapped {
		t.Fatal("unexpected wrap disassembling a 5-byte image")
	}
	want := []string{"LDA #$10", "STA $20", "RTS"}
	if len(insns) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(insns), len(want))
	}
	for i, w := range want {
		if insns[i].Text != w {
			t.Errorf("insns[%d].Text = %q, want %q", i, insns[i].Text, w)
		}
	}
}

func TestDisassembleIllegalOpcodeRecovers(t *testing.T) {
	bank := loadImage([]byte{0xFF, 0xEA}, 0)
	insns, _, _ := DisassembleRange(bank, 0, 2)
	if len(insns) != 2 {
		t.Fatalf("got %d instructions, want 2 (one byte each)", len(insns))
	}
	if insns[0].Legal {
		t.Error("opcode $FF reported as legal")
	}
	if insns[1].Text != "NOP" {
		t.Errorf("insns[1].Text = %q, want NOP", insns[1].Text)
	}
}

// loadedBank is a minimal memory.Bank backed by a plain byte array,
// avoiding a dependency on the memory package's randomized PowerOn.
type loadedBank struct {
	b [65536]uint8
}

func loadImage(img []byte, origin uint16) *loadedBank {
	lb := &loadedBank{}
	for i, b := range img {
		lb.b[int(origin)+i] = b
	}
	return lb
}

func (l *loadedBank) Read(addr uint16) uint8     { return l.b[addr] }
func (l *loadedBank) Write(addr uint16, v uint8) { l.b[addr] = v }
func (l *loadedBank) PowerOn()                   {}
func (l *loadedBank) Parent() memory.Bank        { return nil }
func (l *loadedBank) DatabusVal() uint8          { return 0 }
func (l *loadedBank) ReadOnly(uint16, int) bool  { return false }
func (l *loadedBank) Screen(uint16, int) bool    { return false }
