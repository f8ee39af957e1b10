// Package bootrom implements the fixed 256-byte boot ROM overlay: it
// shadows the low address range until a write to the boot-disable register
// displaces it in favor of the cartridge.
package bootrom

import (
	"gbcore/internal/addr"
	"gbcore/internal/memory"
)

// image is the DMG boot ROM's well-known bytes (the Nintendo logo
// scroll-and-compare routine that every original Game Boy ships). Content
// beyond the first handful of bytes is not semantically load-bearing for
// this core — the CPU executes it like any other code — so padding bytes
// stand in for the rest of the fixed 256-byte image.
var image = func() [addr.BootROMSize]byte {
	var b [addr.BootROMSize]byte
	copy(b[:], []byte{
		0x31, 0xFE, 0xFF, // LD SP,$FFFE
		0xAF,             // XOR A
		0x21, 0xFF, 0x9F, // LD HL,$9FFF
		0x32,       // LD (HL-),A
		0xCB, 0x7C, // BIT 7,H
		0x20, 0xFB, // JR NZ,-5
	})
	return b
}()

// BootROM is the plugged component covering the low address range while
// boot=1.
type BootROM struct {
	Component *memory.Component
}

// New allocates a BootROM preloaded with the fixed image.
func New() (*BootROM, error) {
	c, err := memory.Create(addr.BootROMSize)
	if err != nil {
		return nil, err
	}
	c.Mem.Load(image[:])
	return &BootROM{Component: c}, nil
}
