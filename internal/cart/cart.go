// Package cart implements no-mapper cartridge ingest: the ROM file's bytes
// are loaded directly into a bank-ROM-sized memory component with no
// banking logic, and only cartridge-type byte 0 (plain ROM) is accepted.
package cart

import (
	"fmt"
	"os"

	"gbcore/internal/addr"
	"gbcore/internal/gberr"
	"gbcore/internal/memory"
)

// Cartridge is the loaded ROM, owned as a single bank-ROM-sized Component
// that the gameboy orchestrator plugs over [BankROM0Start, BankROM1End].
type Cartridge struct {
	Component *memory.Component
	Header    *Header
}

// Load reads path's bytes into a BANK_ROM_SIZE memory component. It
// requires the cartridge-type byte (0x147) to equal 0 (plain ROM, no
// mapper); any other type fails with NOT_IMPLEMENTED since this core only
// supports the no-mapper cartridge.
func Load(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gberr.ErrIO, err)
	}
	return LoadBytes(data)
}

// LoadBytes is Load's in-memory counterpart, used directly by tests and by
// any caller that already has the ROM image in hand.
func LoadBytes(data []byte) (*Cartridge, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.CartType != 0x00 {
		return nil, fmt.Errorf("%w: cartridge type %#02x (%s)", gberr.ErrNotImplemented, h.CartType, h.CartTypeStr)
	}

	c, err := memory.Create(addr.BankROMSize)
	if err != nil {
		return nil, err
	}
	c.Mem.Load(data)
	return &Cartridge{Component: c, Header: h}, nil
}
