package alu

import (
	"testing"

	"gbcore/internal/bitutil"
)

func TestAdd8CarryAndHalfCarry(t *testing.T) {
	r := Add8(0x0F, 0x01, 0)
	if r.Value != 0x10 || r.Flags&FlagH == 0 {
		t.Fatalf("Add8(0x0F,0x01,0) = %#02x flags %#02x, want H set", r.Value, r.Flags)
	}
	r = Add8(0xFF, 0x01, 0)
	if r.Value != 0x00 || r.Flags&FlagZ == 0 || r.Flags&FlagC == 0 {
		t.Fatalf("Add8(0xFF,0x01,0) = %#02x flags %#02x, want Z and C set", r.Value, r.Flags)
	}
	r = Add8(0x01, 0x01, 1)
	if r.Value != 0x03 {
		t.Fatalf("Add8 with incoming carry: got %#02x want 0x03", r.Value)
	}
}

func TestSub8BorrowAndHalfBorrow(t *testing.T) {
	r := Sub8(0x10, 0x01, 0)
	if r.Value != 0x0F || r.Flags&FlagN == 0 || r.Flags&FlagH == 0 {
		t.Fatalf("Sub8(0x10,0x01,0) = %#02x flags %#02x, want N and H set", r.Value, r.Flags)
	}
	r = Sub8(0x00, 0x01, 0)
	if r.Value != 0xFF || r.Flags&FlagC == 0 {
		t.Fatalf("Sub8(0x00,0x01,0) = %#02x flags %#02x, want C set", r.Value, r.Flags)
	}
	r = Sub8(0x01, 0x01, 0)
	if r.Value != 0x00 || r.Flags&FlagZ == 0 {
		t.Fatalf("Sub8(0x01,0x01,0) should be zero with Z set, got %#02x flags %#02x", r.Value, r.Flags)
	}
}

func TestAndOrXor8(t *testing.T) {
	if r := And8(0xFF, 0x00); r.Value != 0 || r.Flags&FlagZ == 0 || r.Flags&FlagH == 0 {
		t.Fatalf("And8 zero case wrong: %#02x %#02x", r.Value, r.Flags)
	}
	if r := Or8(0x00, 0x00); r.Value != 0 || r.Flags&FlagZ == 0 {
		t.Fatalf("Or8 zero case wrong: %#02x %#02x", r.Value, r.Flags)
	}
	if r := Xor8(0xFF, 0xFF); r.Value != 0 || r.Flags&FlagZ == 0 {
		t.Fatalf("Xor8 self wrong: %#02x %#02x", r.Value, r.Flags)
	}
}

func TestAdd16LowAndHigh(t *testing.T) {
	lo := Add16Low(0x00FF, 0x0001)
	if lo.Flags&FlagC == 0 {
		t.Fatalf("Add16Low low-byte overflow should set C, got flags %#02x", lo.Flags)
	}
	hi := Add16High(0x0FFF, 0x0001)
	if hi.Value != 0x1000 {
		t.Fatalf("Add16High value wrong: got %#04x want 0x1000", hi.Value)
	}
	if hi.Flags&FlagH == 0 {
		t.Fatalf("Add16High should set H on the carry out of bit 11, flags %#02x", hi.Flags)
	}
	hi2 := Add16High(0xFFFF, 0x0001)
	if hi2.Value != 0x0000 || hi2.Flags&FlagC == 0 {
		t.Fatalf("Add16High(0xFFFF,1) wrap: got %#04x flags %#02x", hi2.Value, hi2.Flags)
	}
}

func TestShiftLeftRight(t *testing.T) {
	r := Shift(0x81, bitutil.Left)
	if r.Value != 0x02 || r.Flags&FlagC == 0 {
		t.Fatalf("Shift left 0x81: got %#02x flags %#02x", r.Value, r.Flags)
	}
	r = Shift(0x81, bitutil.Right)
	if r.Value != 0x40 || r.Flags&FlagC == 0 {
		t.Fatalf("Shift right 0x81: got %#02x flags %#02x", r.Value, r.Flags)
	}
}

func TestShiftRAPreservesSign(t *testing.T) {
	r := ShiftRA(0x81)
	if r.Value != 0xC0 || r.Flags&FlagC == 0 {
		t.Fatalf("ShiftRA(0x81): got %#02x flags %#02x, want 0xC0 with C set", r.Value, r.Flags)
	}
}

func TestRotateWraps(t *testing.T) {
	r := Rotate(0x81, bitutil.Left)
	if r.Value != 0x03 || r.Flags&FlagC == 0 {
		t.Fatalf("Rotate left 0x81: got %#02x flags %#02x", r.Value, r.Flags)
	}
	r = Rotate(0x81, bitutil.Right)
	if r.Value != 0xC0 || r.Flags&FlagC == 0 {
		t.Fatalf("Rotate right 0x81: got %#02x flags %#02x", r.Value, r.Flags)
	}
}

func TestCarryRotateThroughFlag(t *testing.T) {
	r := CarryRotate(0x01, bitutil.Left, 0)
	if r.Value != 0x02 || r.Flags&FlagC != 0 {
		t.Fatalf("CarryRotate left no carry-in: got %#02x flags %#02x", r.Value, r.Flags)
	}
	r = CarryRotate(0x80, bitutil.Left, 0)
	if r.Value != 0x00 || r.Flags&FlagC == 0 || r.Flags&FlagZ == 0 {
		t.Fatalf("CarryRotate left carry-out: got %#02x flags %#02x", r.Value, r.Flags)
	}
	r = CarryRotate(0x00, bitutil.Left, FlagC)
	if r.Value != 0x01 {
		t.Fatalf("CarryRotate left carry-in: got %#02x want 0x01", r.Value)
	}
	r = CarryRotate(0x01, bitutil.Right, FlagC)
	if r.Value != 0x80 || r.Flags&FlagC == 0 {
		t.Fatalf("CarryRotate right carry-in/out: got %#02x flags %#02x", r.Value, r.Flags)
	}
}
