// Package joypad implements the joypad register the core exposes to the
// host GUI: a key-state bitfield the host writes, combined with the
// P14/P15 select bits the game reads back through REG_JOYP, with a
// falling-edge JOYPAD interrupt on keypress.
package joypad

import (
	"gbcore/internal/addr"
	"gbcore/internal/bitutil"
	"gbcore/internal/bus"
	"gbcore/internal/memory"
)

// Button bit positions within the lower nibble of the host key-state
// bitfield, shared between the direction and action rows per the real
// hardware's P14/P15 multiplexing.
const (
	ButtonRight  = 0
	ButtonA      = 0
	ButtonLeft   = 1
	ButtonB      = 1
	ButtonUp     = 2
	ButtonSelect = 2
	ButtonDown   = 3
	ButtonStart  = 3
)

type interruptRequester interface {
	RequestInterrupt(bit uint) error
}

// Joypad owns the single byte backing REG_JOYP. It is plugged directly
// (forced over whatever the general registers component mapped there) so
// that every recomputation writes straight into its own backing memory
// without going through Bus.Write.
type Joypad struct {
	cpu        interruptRequester
	bus        *bus.Bus
	Component  *memory.Component
	directions byte // bit set = pressed, for Right/Left/Up/Down
	actions    byte // bit set = pressed, for A/B/Select/Start
	selectLine byte // raw value last written to JOYP's select bits
}

// New allocates the JOYP component and binds it to the CPU (for JOYPAD
// interrupt requests). Plug still has to map it onto the bus at
// addr.RegJOYP.
func New(cpu interruptRequester, b *bus.Bus) (*Joypad, error) {
	c, err := memory.Create(1)
	if err != nil {
		return nil, err
	}
	j := &Joypad{cpu: cpu, bus: b, Component: c, selectLine: 0x30}
	j.sync()
	return j, nil
}

// Plug force-plugs the joypad's 1-byte component over REG_JOYP, replacing
// whatever the registers component previously mapped there.
func (j *Joypad) Plug() error {
	return j.bus.ForcedPlug(j.Component, addr.RegJOYP, addr.RegJOYP, 0)
}

// SetKeyState replaces the host's full button bitfield: bit 0..3 of
// directions maps to Right/Left/Up/Down, bit 0..3 of actions maps to
// A/B/Select/Start. A set bit means pressed.
func (j *Joypad) SetKeyState(directions, actions byte) error {
	oldSelected := j.selectedNibble()
	j.directions, j.actions = directions, actions
	j.sync()
	return j.requestIfFallingEdge(oldSelected)
}

// selectedNibble returns the 4 currently-visible (active-low) key bits
// given the last-selected row(s).
func (j *Joypad) selectedNibble() byte {
	var bits byte
	selectDirections := bitutil.BitGet(j.selectLine, 4) // P14, active low select
	selectActions := bitutil.BitGet(j.selectLine, 5)    // P15
	if !selectDirections {
		bits |= j.directions
	}
	if !selectActions {
		bits |= j.actions
	}
	return ^bits & 0x0F
}

// sync recomputes the visible byte and writes it straight into backing
// memory: upper nibble mirrors the select bits (plus two always-set
// unused bits), lower nibble is the active-low key state for whichever
// row(s) are selected.
func (j *Joypad) sync() {
	j.Component.Mem.Set(0, 0xC0|(j.selectLine&0x30)|j.selectedNibble())
}

// OnBusWrite reacts to a write at REG_JOYP: only the select bits (4,5) are
// writable; a change that newly selects a row with a pressed key firing a
// falling edge on the active-low nibble raises the JOYPAD interrupt,
// matching real hardware's wake-on-keypress behavior.
func (j *Joypad) OnBusWrite(writeAddr uint16) error {
	if writeAddr != addr.RegJOYP {
		return nil
	}
	oldSelected := j.selectedNibble()
	j.selectLine = j.bus.Read(addr.RegJOYP) & 0x30
	j.sync()
	return j.requestIfFallingEdge(oldSelected)
}

func (j *Joypad) requestIfFallingEdge(oldSelected byte) error {
	newSelected := j.selectedNibble()
	// Active-low: a key newly appearing "active" is a bit going from 1 to 0.
	if oldSelected&^newSelected != 0 {
		return j.cpu.RequestInterrupt(addr.IntJoypad)
	}
	return nil
}
