package cpu

import "gbcore/internal/bitutil"

// regKind is the 3-bit opcode register encoding used throughout the direct
// and CB-prefixed tables: 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A. Index 6 is
// reserved for the "(HL)" memory-indirect operand and is never resolved by
// regGet/regSet — storage dispatch handles it as a bus access instead.
type regKind int

const (
	regB regKind = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

// regGet reads one of B,C,D,E,H,L,A by its 3-bit encoding. kind==regHLIndirect
// is the caller's responsibility to special-case before calling this.
func (c *CPU) regGet(kind regKind) byte {
	switch kind {
	case regB:
		return c.B
	case regC:
		return c.C
	case regD:
		return c.D
	case regE:
		return c.E
	case regH:
		return c.H
	case regL:
		return c.L
	case regA:
		return c.A
	}
	return 0
}

// regSet writes one of B,C,D,E,H,L,A by its 3-bit encoding.
func (c *CPU) regSet(kind regKind, v byte) {
	switch kind {
	case regB:
		c.B = v
	case regC:
		c.C = v
	case regD:
		c.D = v
	case regE:
		c.E = v
	case regH:
		c.H = v
	case regL:
		c.L = v
	case regA:
		c.A = v
	}
}

// pairKind is the 2-bit register-pair encoding used by 16-bit loads, INC,
// DEC, ADD HL,rr, PUSH and POP. The fourth slot is SP in most contexts and
// AF in PUSH/POP/stack contexts; callers pick the right pairSP vs
// pairAF explicitly rather than relying on opcode position alone.
type pairKind int

const (
	pairBC pairKind = iota
	pairDE
	pairHL
	pairSP
	pairAF
)

// getPair reads a 16-bit register-pair view, big-endian within the pair
// (e.g. A is the high byte of AF).
func (c *CPU) getPair(kind pairKind) uint16 {
	switch kind {
	case pairBC:
		return bitutil.Merge8(c.C, c.B)
	case pairDE:
		return bitutil.Merge8(c.E, c.D)
	case pairHL:
		return bitutil.Merge8(c.L, c.H)
	case pairSP:
		return c.SP
	case pairAF:
		return bitutil.Merge8(c.F, c.A)
	}
	return 0
}

// setPair writes a 16-bit register-pair view. Setting AF always masks the
// low nibble of F to zero, matching the flags invariant.
func (c *CPU) setPair(kind pairKind, v uint16) {
	switch kind {
	case pairBC:
		c.B, c.C = bitutil.Msb8(v), bitutil.Lsb8(v)
	case pairDE:
		c.D, c.E = bitutil.Msb8(v), bitutil.Lsb8(v)
	case pairHL:
		c.H, c.L = bitutil.Msb8(v), bitutil.Lsb8(v)
	case pairSP:
		c.SP = v
	case pairAF:
		c.A = bitutil.Msb8(v)
		c.F = bitutil.Lsb8(v) & 0xF0
	}
}
