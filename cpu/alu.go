package cpu

import "github.com/wdc65xx/wdc65xx/observer"

// nz updates the Negative and Zero flags from v, the pattern every
// load, transfer, and most ALU results share.
func (c *Chip) nz(v uint8) {
	c.setFlag(FlagZero, v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

func (c *Chip) aslVal(v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := v << 1
	c.nz(r)
	return r
}

func (c *Chip) lsrVal(v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := v >> 1
	c.nz(r)
	return r
}

func (c *Chip) rolVal(v uint8) uint8 {
	oldCarry := c.flag(FlagCarry)
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := v << 1
	if oldCarry {
		r |= 0x01
	}
	c.nz(r)
	return r
}

func (c *Chip) rorVal(v uint8) uint8 {
	oldCarry := c.flag(FlagCarry)
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := v >> 1
	if oldCarry {
		r |= 0x80
	}
	c.nz(r)
	return r
}

func (c *Chip) andVal(v uint8) { c.A &= v; c.nz(c.A); c.obs.RegisterChanged(observer.RegA) }
func (c *Chip) oraVal(v uint8) { c.A |= v; c.nz(c.A); c.obs.RegisterChanged(observer.RegA) }
func (c *Chip) eorVal(v uint8) { c.A ^= v; c.nz(c.A); c.obs.RegisterChanged(observer.RegA) }

// bit implements BIT: Zero is set from A&v, Negative and Overflow are
// copied straight from bits 7 and 6 of the memory operand regardless
// of the AND result.
func (c *Chip) bit(v uint8) {
	c.setFlag(FlagZero, c.A&v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
	c.setFlag(FlagOverflow, v&0x40 != 0)
}

// compare implements CMP/CPX/CPY: reg-v is computed as an unsigned
// subtraction, Carry is set when reg >= v, and N/Z come from the
// 8-bit truncated result.
func (c *Chip) compare(reg, v uint8) {
	r := reg - v
	c.setFlag(FlagCarry, reg >= v)
	c.nz(r)
}

// adc implements ADC in both binary and (if the Decimal flag is set)
// BCD mode. BCD semantics follow the spec's documented treatment:
// digit-by-digit addition with per-nibble carry, N and V are derived
// from the raw (pre-adjustment) binary sum's bit pattern rather than
// the BCD-corrected result, matching real 6502 behavior and noted as
// a deliberate implementation choice rather than an oversight.
func (c *Chip) adc(v uint8) {
	carryIn := uint16(0)
	if c.flag(FlagCarry) {
		carryIn = 1
	}
	if !c.flag(FlagDecimal) {
		sum := uint16(c.A) + uint16(v) + carryIn
		result := uint8(sum)
		c.setFlag(FlagOverflow, (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0)
		c.setFlag(FlagCarry, sum > 0xFF)
		c.A = result
		c.nz(c.A)
		c.obs.RegisterChanged(observer.RegA)
		return
	}

	// Decimal mode: add low and high BCD digits independently,
	// carrying a correction of 6 into the next nibble when a digit
	// exceeds 9. N/V are taken from the raw binary sum's sign/overflow
	// bit before any BCD digit correction is applied.
	rawSum := uint16(c.A) + uint16(v) + carryIn
	rawResult := uint8(rawSum)
	c.setFlag(FlagOverflow, (c.A^v)&0x80 == 0 && (c.A^rawResult)&0x80 != 0)

	lo := uint16(c.A&0x0F) + uint16(v&0x0F) + carryIn
	var halfCarry uint16
	if lo > 9 {
		lo += 6
		halfCarry = 1
	}
	hi := uint16(c.A>>4) + uint16(v>>4) + halfCarry
	c.setFlag(FlagNegative, rawResult&0x80 != 0)
	c.setFlag(FlagZero, rawResult == 0)
	if hi > 9 {
		hi += 6
	}
	c.setFlag(FlagCarry, hi > 15)
	c.A = uint8((hi&0x0F)<<4) | uint8(lo&0x0F)
	c.obs.RegisterChanged(observer.RegA)
}

// sbc implements SBC in both binary and BCD mode, using the standard
// "subtraction is addition of the ones' complement" identity for the
// binary case and explicit digit borrow in the decimal case.
func (c *Chip) sbc(v uint8) {
	borrowIn := uint16(0)
	if !c.flag(FlagCarry) {
		borrowIn = 1
	}
	if !c.flag(FlagDecimal) {
		c.adc(^v)
		return
	}

	rawSum := uint16(c.A) + uint16(^v) + (1 - borrowIn)
	rawResult := uint8(rawSum)
	c.setFlag(FlagOverflow, (c.A^(^v))&0x80 == 0 && (c.A^rawResult)&0x80 != 0)
	c.setFlag(FlagCarry, rawSum > 0xFF)
	c.setFlag(FlagNegative, rawResult&0x80 != 0)
	c.setFlag(FlagZero, rawResult == 0)

	lo := int16(c.A&0x0F) - int16(v&0x0F) - int16(borrowIn)
	var borrow int16
	if lo < 0 {
		lo -= 6
		borrow = 1
	}
	hi := int16(c.A>>4) - int16(v>>4) - borrow
	if hi < 0 {
		hi -= 6
	}
	c.A = uint8((hi&0x0F)<<4) | uint8(lo&0x0F)
	c.obs.RegisterChanged(observer.RegA)
}

func (c *Chip) incVal(v uint8) uint8 { r := v + 1; c.nz(r); return r }
func (c *Chip) decVal(v uint8) uint8 { r := v - 1; c.nz(r); return r }
