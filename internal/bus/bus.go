// Package bus implements the fixed 64 KiB address map. A bus cell never
// holds a raw pointer into a component's storage: each mapped cell is a
// (memory, offset) pair, and reads/writes resolve through the component's
// owned Memory at call time. This keeps echo-RAM/work-RAM aliasing correct
// without pointer-aliasing hazards: both ranges resolve through the same
// underlying Memory.
package bus

import (
	"gbcore/internal/gberr"
	"gbcore/internal/memory"
)

// cell is a single bus slot: either unmapped (mem == nil) or pointing at
// byte `offset` inside mem.
type cell struct {
	mem    *memory.Memory
	offset int
}

// Bus is the fixed 0x10000-cell address map.
type Bus struct {
	cells [0x10000]cell
}

// New returns an empty (fully unmapped) bus.
func New() *Bus {
	return &Bus{}
}

// Plug requires start<=end and every cell in [start,end] to currently be
// unmapped, then behaves as ForcedPlug with offset 0.
func (b *Bus) Plug(c *memory.Component, start, end uint16) error {
	if start > end {
		return gberr.ErrAddress
	}
	for addr := uint32(start); addr <= uint32(end); addr++ {
		if b.cells[addr].mem != nil {
			return gberr.ErrAddress
		}
	}
	return b.ForcedPlug(c, start, end, 0)
}

// ForcedPlug sets c.Start=start, c.End=end, then remaps bus cells
// [start,end] to &c.Mem[offset+i]. Requires the whole span to stay inside
// c's backing Memory; on any failure the range is rolled back to
// unmapped via Unplug.
func (b *Bus) ForcedPlug(c *memory.Component, start, end uint16, offset int) error {
	span := int(end) - int(start)
	c.Start, c.End = start, end
	if span < 0 || c.Mem == nil || offset < 0 || offset+span >= c.Mem.Size() {
		b.Unplug(c)
		return gberr.ErrAddress
	}
	for i := 0; i <= span; i++ {
		b.cells[int(start)+i] = cell{mem: c.Mem, offset: offset + i}
	}
	return nil
}

// Remap re-runs ForcedPlug using c's already-set Start/End at a new
// backing offset — used when a component's storage origin shifts without
// moving its address-map window.
func (b *Bus) Remap(c *memory.Component, offset int) error {
	return b.ForcedPlug(c, c.Start, c.End, offset)
}

// Unplug clears c's mapped range back to unmapped cells and resets
// c.Start=c.End=0.
func (b *Bus) Unplug(c *memory.Component) {
	start, end := c.Start, c.End
	for addr := uint32(start); addr <= uint32(end); addr++ {
		b.cells[addr] = cell{}
	}
	c.Start, c.End = 0, 0
}

// Read returns the mapped byte at addr, or 0xFF if addr is unmapped. It
// never errors; unmapped reads are real Game Boy hardware behavior.
func (b *Bus) Read(addr uint16) byte {
	cl := b.cells[addr]
	if cl.mem == nil {
		return 0xFF
	}
	return cl.mem.Get(cl.offset)
}

// Write stores data at addr, failing with an address error if unmapped.
func (b *Bus) Write(addr uint16, data byte) error {
	cl := b.cells[addr]
	if cl.mem == nil {
		return gberr.ErrAddress
	}
	cl.mem.Set(cl.offset, data)
	return nil
}

// Read16 reads a little-endian word at addr,addr+1. If either byte is
// unmapped the result is 0xFF (not 0xFFFF). addr==0xFFFF is rejected
// outright since addr+1 would run past the top of the address space.
func (b *Bus) Read16(addr uint16) (uint16, error) {
	if addr == 0xFFFF {
		return 0, gberr.ErrAddress
	}
	loCell, hiCell := b.cells[addr], b.cells[addr+1]
	if loCell.mem == nil || hiCell.mem == nil {
		return 0xFF, nil
	}
	lo := loCell.mem.Get(loCell.offset)
	hi := hiCell.mem.Get(hiCell.offset)
	return uint16(lo) | uint16(hi)<<8, nil
}

// Write16 stores a little-endian word at addr,addr+1, failing with an
// address error if either byte is unmapped.
func (b *Bus) Write16(addr uint16, v uint16) error {
	if addr == 0xFFFF {
		return gberr.ErrAddress
	}
	if err := b.Write(addr, byte(v)); err != nil {
		return err
	}
	return b.Write(addr+1, byte(v>>8))
}
