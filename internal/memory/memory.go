// Package memory implements the owned byte buffer and the bus-pluggable
// Component wrapper around it. A Component never holds a raw pointer into
// another component's storage; it holds a reference to a Memory plus the
// [Start,End] range it is currently plugged at on the bus, so the bus can
// resolve cells as (memory, offset) pairs.
package memory

import "gbcore/internal/gberr"

// Memory is a fixed-size, owned byte buffer. Size is immutable once
// created; individual bytes are freely mutable.
type Memory struct {
	buf []byte
}

// NewMemory allocates a zeroed buffer of size bytes. size must be >= 1.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		return nil, gberr.ErrBadParameter
	}
	return &Memory{buf: make([]byte, size)}, nil
}

// Size returns the buffer's fixed length.
func (m *Memory) Size() int { return len(m.buf) }

// Get reads the byte at offset. Callers that may pass an out-of-range
// offset should check against Size first; the bus never does because it
// only dereferences offsets it itself computed during a plug.
func (m *Memory) Get(offset int) byte { return m.buf[offset] }

// Set writes the byte at offset.
func (m *Memory) Set(offset int, v byte) { m.buf[offset] = v }

// Load copies src into the buffer starting at offset 0, truncating src if
// it is longer than the buffer.
func (m *Memory) Load(src []byte) {
	copy(m.buf, src)
}

// Component wraps a Memory with the address range it is currently plugged
// at on a bus. start=end=0 means unplugged. A component either owns its
// Memory (Create) or shares another's (Share, e.g. echo-RAM aliasing
// work-RAM) — in both cases the bus resolves through Mem, never through a
// pointer captured at plug time.
type Component struct {
	Mem   *Memory
	Start uint16
	End   uint16
}

// Create allocates a new owned Memory of the given size for the component.
// size==0 leaves Mem nil (a component with no backing store, which the bus
// refuses to plug).
func Create(size int) (*Component, error) {
	if size == 0 {
		return &Component{}, nil
	}
	mem, err := NewMemory(size)
	if err != nil {
		return nil, err
	}
	return &Component{Mem: mem}, nil
}

// Share creates a new component referencing donor's Memory without taking
// ownership of it; used for echo-RAM aliasing work-RAM.
func Share(donor *Component) *Component {
	return &Component{Mem: donor.Mem}
}
