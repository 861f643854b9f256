// Command asm assembles 6502 mnemonic source into a raw binary image
// suitable for cpu.Chip (via memory.LoadRaw) or cmd/disasm.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wdc65xx/wdc65xx/asm"
)

func main() {
	in := flag.String("in", "", "assembly source file (required)")
	out := flag.String("out", "a.out", "output binary image path")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "asm: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	src, err := os.Open(*in)
	if err != nil {
		log.Fatalf("asm: %v", err)
	}
	defer src.Close()

	a := asm.NewAssembler()
	image, origin, err := a.Assemble(src)
	if err != nil {
		if aerr, ok := err.(asm.AssembleError); ok && aerr.Line > 0 {
			fmt.Fprintf(os.Stderr, "asm: %s\n", aerr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "asm: %v\n", err)
		}
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("asm: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(image); err != nil {
		log.Fatalf("asm: writing %s: %v", *out, err)
	}
	fmt.Printf("asm: wrote %d bytes to %s (origin $%04X)\n", len(image), *out, origin)
}
