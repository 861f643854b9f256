// Command disasm loads a raw binary image and linearly disassembles
// it to stdout. It has no notion of code vs. data segments - every
// byte starting at -addr is decoded as if it were an opcode.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wdc65xx/wdc65xx/asm"
	"github.com/wdc65xx/wdc65xx/memory"
)

func main() {
	in := flag.String("in", "", "raw binary image (required)")
	addr := flag.Uint("addr", 0, "address to start disassembling at (the image is loaded at $0000)")
	length := flag.Int("len", 0, "bytes to disassemble (0 = whole loaded image)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "disasm: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("disasm: %v", err)
	}
	defer f.Close()

	bank := memory.NewRAM()
	n, err := memory.LoadRaw(bank, f)
	if err != nil {
		log.Fatalf("disasm: %v", err)
	}

	want := *length
	if want <= 0 {
		want = n
	}
	insns, wrappedAt, wrapped := asm.DisassembleRange(bank, uint16(*addr), want)
	for _, in := range insns {
		fmt.Printf("%04X:  % -9X %s\n", in.Addr, bytesHex(in.Bytes), in.Text)
	}
	if wrapped {
		fmt.Fprintf(os.Stderr, "disasm: wrapped past $FFFF at $%04X\n", wrappedAt)
	}
}

func bytesHex(b []uint8) string {
	s := ""
	for _, v := range b {
		s += fmt.Sprintf("%02X ", v)
	}
	return s
}
