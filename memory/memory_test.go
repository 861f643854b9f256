package memory

import (
	"bytes"
	"testing"
)

func TestReadWriteWord(t *testing.T) {
	b := NewRAM()
	WriteWord(b, 0x1000, 0xBEEF)
	if got := ReadWord(b, 0x1000); got != 0xBEEF {
		t.Errorf("ReadWord = $%04X, want $BEEF", got)
	}
	if got := b.Read(0x1000); got != 0xEF {
		t.Errorf("low byte = $%02X, want $EF", got)
	}
	if got := b.Read(0x1001); got != 0xBE {
		t.Errorf("high byte = $%02X, want $BE", got)
	}
}

func TestReadOnlyAdvisoryRange(t *testing.T) {
	parent := NewRAM()
	b := NewMappedRAM(parent, 0xD000, 0xDFFF, 0, 0)
	if !b.ReadOnly(0xD000, 1) {
		t.Error("0xD000 should be advisory read-only")
	}
	if b.ReadOnly(0xC000, 1) {
		t.Error("0xC000 should not be advisory read-only")
	}
	if !b.ReadOnly(0xCFFF, 2) {
		t.Error("a range straddling the start of the window should count as overlapping")
	}
}

func TestPlainRAMHasNoMappedRegions(t *testing.T) {
	b := NewRAM()
	if b.ReadOnly(0, Size) || b.Screen(0, Size) {
		t.Error("a freshly created flat RAM bank must not advertise any mapped region")
	}
}

func TestLoadRawTruncatesAtEOF(t *testing.T) {
	b := NewRAM()
	n, err := LoadRaw(b, bytes.NewReader([]byte{1, 2, 3}))
	if err != nil {
		t.Fatalf("LoadRaw: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if b.Read(0) != 1 || b.Read(1) != 2 || b.Read(2) != 3 {
		t.Errorf("loaded bytes don't match input")
	}
}

func TestLatestDatabusValWalksParentChain(t *testing.T) {
	parent := NewRAM()
	parent.Write(0, 0x42)
	child := NewMappedRAM(parent, 1, 0, 1, 0)
	if got := LatestDatabusVal(child); got != 0x42 {
		t.Errorf("LatestDatabusVal = $%02X, want $42", got)
	}
}
