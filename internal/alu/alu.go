// Package alu implements the pure 8/16-bit arithmetic, logical, shift,
// rotate and rotate-through-carry operations. Every operation produces a
// (value, flags) Result and never touches CPU state directly; the flag
// byte (Z at bit 7, N at bit 6, H at bit 5, C at bit 4) can be assigned
// straight into F by the dispatcher.
package alu

import "gbcore/internal/bitutil"

// Flag bit positions within the 8-bit flags register.
const (
	FlagZ byte = 1 << 7
	FlagN byte = 1 << 6
	FlagH byte = 1 << 5
	FlagC byte = 1 << 4
)

// Result is the (value, flags) pair every ALU op returns. 8-bit operations
// store their byte result in the low 8 bits of Value.
type Result struct {
	Value uint16
	Flags byte
}

func flags(z, n, h, c bool) byte {
	var f byte
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if c {
		f |= FlagC
	}
	return f
}

func b01(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Add8 computes x + y + c0, c0 in {0,1}.
func Add8(x, y, c0 byte) Result {
	r := uint16(x) + uint16(y) + uint16(c0)
	res := byte(r)
	h := (bitutil.Lsb4(x) + bitutil.Lsb4(y) + c0) > 0x0F
	return Result{Value: uint16(res), Flags: flags(res == 0, false, h, r > 0xFF)}
}

// Sub8 computes x - y - b0, b0 in {0,1}.
//
// The half-carry compares x's low nibble against the combined (y&0xF)+b0
// rather than a recomputed borrow-out.
func Sub8(x, y, b0 byte) Result {
	lowY := bitutil.Lsb4(y) + b0
	h := bitutil.Lsb4(x) < lowY
	full := uint16(y) + uint16(b0)
	c := full > uint16(x)
	res := byte(uint16(x) - full)
	return Result{Value: uint16(res), Flags: flags(res == 0, true, h, c)}
}

// And8 computes x & y.
func And8(x, y byte) Result {
	res := x & y
	return Result{Value: uint16(res), Flags: flags(res == 0, false, true, false)}
}

// Or8 computes x | y.
func Or8(x, y byte) Result {
	res := x | y
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, false)}
}

// Xor8 computes x ^ y.
func Xor8(x, y byte) Result {
	res := x ^ y
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, false)}
}

// Add16Low adds the low bytes of x and y, producing H/C from that
// low-byte addition and Z from the full 16-bit sum (used by ADD HL,rr's
// low-byte half and by LD HL,SP+s8's flag computation).
func Add16Low(x, y uint16) Result {
	full := uint32(x) + uint32(y)
	lo := uint16(bitutil.Lsb4(byte(x)) + bitutil.Lsb4(byte(y)))
	h := lo > 0x0F
	c := (uint16(byte(x)) + uint16(byte(y))) > 0xFF
	return Result{Value: uint16(full), Flags: flags(uint16(full) == 0, false, h, c)}
}

// Add16High adds x and y as full 16-bit words, with H computed from the
// high-byte addition (carry propagated in from the low byte) and C from
// the full word — the ADD HL,rr flag rule.
func Add16High(x, y uint16) Result {
	full := uint32(x) + uint32(y)
	hx, hy := bitutil.Msb8(x), bitutil.Msb8(y)
	carryIn := b01((uint16(byte(x)) + uint16(byte(y))) > 0xFF)
	h := (bitutil.Lsb4(hx) + bitutil.Lsb4(hy) + carryIn) > 0x0F
	c := full > 0xFFFF
	return Result{Value: uint16(full), Flags: flags(uint16(full) == 0, false, h, c)}
}

// Shift performs a logical shift of x by one bit. LEFT shifts toward the
// MSB (vacated LSB reads 0); RIGHT shifts toward the LSB (vacated MSB reads
// 0). C is the bit shifted out.
func Shift(x byte, dir bitutil.Dir) Result {
	var res byte
	var c bool
	if dir == bitutil.Left {
		c = bitutil.BitGet(x, 7)
		res = x << 1
	} else {
		c = bitutil.BitGet(x, 0)
		res = x >> 1
	}
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, c)}
}

// ShiftRA performs an arithmetic right shift: bit 0 becomes C, and the MSB
// is preserved (sign-extended), used by SRA.
func ShiftRA(x byte) Result {
	c := bitutil.BitGet(x, 0)
	res := (x >> 1) | (x & 0x80)
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, c)}
}

// Rotate performs an 8-bit circular rotation by one bit. C is the bit that
// wrapped around.
func Rotate(x byte, dir bitutil.Dir) Result {
	res := bitutil.BitRotate(x, dir, 1)
	var c bool
	if dir == bitutil.Left {
		c = bitutil.BitGet(x, 7)
	} else {
		c = bitutil.BitGet(x, 0)
	}
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, c)}
}

// CarryRotate rotates x by one bit through the carry flag: the bit rotated
// in is the C bit of inFlags, and the bit rotated out becomes the new C.
// inFlags' low nibble must be zero (flags always have a zero low nibble).
func CarryRotate(x byte, dir bitutil.Dir, inFlags byte) Result {
	cin := b01(inFlags&FlagC != 0)
	var res byte
	var cout bool
	if dir == bitutil.Left {
		cout = bitutil.BitGet(x, 7)
		res = (x << 1) | cin
	} else {
		cout = bitutil.BitGet(x, 0)
		res = (x >> 1) | (cin << 7)
	}
	return Result{Value: uint16(res), Flags: flags(res == 0, false, false, cout)}
}
