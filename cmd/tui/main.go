// Command tui is a terminal front end that loads a raw binary image,
// wires itself in as a cpu.Chip's observer.Hooks, and steps the
// machine interactively while rendering registers, flags, the cycle
// count, the execution state and a log of observer events live. It
// has no memory view. It exists to exercise the observer contract
// end to end, not as a full-featured debugger.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wdc65xx/wdc65xx/cpu"
	"github.com/wdc65xx/wdc65xx/memory"
	"github.com/wdc65xx/wdc65xx/observer"
)

var (
	regStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	flagOn     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	flagOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	haltStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// hooks adapts observer.Hooks into an event log; the Chip calls
// these synchronously from Step, so each just records what happened
// for the next Update/View cycle rather than touching Program state
// directly.
type hooks struct {
	observer.Base
	events *[]string
}

func (h hooks) BreakpointHit(addr uint16) {
	*h.events = append(*h.events, fmt.Sprintf("breakpoint hit @ $%04X", addr))
}

func (h hooks) IllegalJump(addr uint16) {
	*h.events = append(*h.events, fmt.Sprintf("illegal jump @ $%04X", addr))
}

func (h hooks) JumpPointHit(addr uint16, opcode uint8) {
	*h.events = append(*h.events, fmt.Sprintf("jump point @ $%04X (op $%02X)", addr, opcode))
}

type model struct {
	chip   *cpu.Chip
	events *[]string
	err    error
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.err = m.chip.Step()
		case "n":
			m.err = m.chip.Next()
		case "c":
			m.err = m.chip.Cont()
		case "r":
			m.chip.Reset()
			m.chip.ResetSystem()
			m.err = nil
			*m.events = nil
		}
	}
	return m, nil
}

func (m model) View() string {
	c := m.chip
	flag := func(name string, set bool) string {
		if set {
			return flagOn.Render(name)
		}
		return flagOff.Render(name)
	}
	regs := regStyle.Render(fmt.Sprintf("A=%02X X=%02X Y=%02X SP=%02X PC=%04X", c.A, c.X, c.Y, c.SP, c.PC))
	flags := fmt.Sprintf("%s %s %s %s %s %s %s",
		flag("N", c.SR&cpu.FlagNegative != 0),
		flag("V", c.SR&cpu.FlagOverflow != 0),
		flag("B", c.SR&cpu.FlagBreak != 0),
		flag("D", c.SR&cpu.FlagDecimal != 0),
		flag("I", c.SR&cpu.FlagInterrupt != 0),
		flag("Z", c.SR&cpu.FlagZero != 0),
		flag("C", c.SR&cpu.FlagCarry != 0))

	state := "Running"
	switch c.State() {
	case cpu.Break:
		state = "Break"
	case cpu.Halt:
		state = haltStyle.Render("Halt")
	}

	body := fmt.Sprintf("%s\n%s\ncycles=%d state=%s", regs, flags, c.Cycles(), state)
	if m.err != nil {
		body += "\n" + haltStyle.Render(m.err.Error())
	}

	var log string
	events := *m.events
	start := 0
	if len(events) > 8 {
		start = len(events) - 8
	}
	for _, e := range events[start:] {
		log += e + "\n"
	}

	return boxStyle.Render(body) + "\n" + boxStyle.Render(log) + "\n" +
		helpStyle.Render("s: step  n: next  c: continue  r: reset  q: quit")
}

func main() {
	in := flag.String("in", "", "raw binary image to load (required)")
	flag.Parse()
	if *in == "" {
		fmt.Fprintln(os.Stderr, "tui: -in is required")
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("tui: %v", err)
	}
	defer f.Close()

	bank := memory.NewRAM()
	if _, err := memory.LoadRaw(bank, f); err != nil {
		log.Fatalf("tui: %v", err)
	}

	var events []string
	chip := cpu.New(cpu.ChipDef{Ram: bank, Obs: hooks{events: &events}})

	m := model{chip: chip, events: &events}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
