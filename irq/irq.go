// Package irq defines the basic interface for wiring an optional
// interrupt line into a Chip. The core itself never samples a pin at
// cycle boundaries - interrupt entry is always an explicit host call
// (Chip.NMI/Chip.IRQ) - but a host that wants line-driven interrupts
// can wire a Sender in and have Cont poll it between instructions.
// NOTE: A Sender only reports the line's level. Cont treats the NMI
// line as edge-triggered (one NMI per rising edge) and the IRQ line
// as level-triggered.
package irq

// Sender defines the interface for an IRQ or NMI source.
type Sender interface {
	// Raised indicates whether the interrupt is currently held high.
	Raised() bool
}
