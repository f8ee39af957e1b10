// Package gameboy wires the core's components together: the fixed six
// memory regions, echo-RAM alias, CPU, timer, LCD, cartridge, boot ROM and
// joypad, all sharing one 64 KiB bus, advanced one emulated cycle at a
// time by RunUntil.
package gameboy

import (
	"gbcore/internal/addr"
	"gbcore/internal/bootrom"
	"gbcore/internal/bus"
	"gbcore/internal/cart"
	"gbcore/internal/cpu"
	"gbcore/internal/joypad"
	"gbcore/internal/lcd"
	"gbcore/internal/memory"
	"gbcore/internal/serial"
	"gbcore/internal/timer"
)

// setupComponent creates a memory.Component sized to exactly span
// [start,end] and plugs it onto the bus.
func setupComponent(b *bus.Bus, start, end uint16) (*memory.Component, error) {
	c, err := memory.Create(int(end-start) + 1)
	if err != nil {
		return nil, err
	}
	if err := b.Plug(c, start, end); err != nil {
		return nil, err
	}
	return c, nil
}

// listener is the shape every gameboy-level bus listener implements: react
// to the address the CPU wrote this step, ignoring 0 ("no write") and any
// address it doesn't care about.
type listener interface {
	OnBusWrite(writeAddr uint16) error
}

// Gameboy aggregates every core component behind one bus and drives them
// with a fixed per-step sequence: timer, then CPU, then LCD, then every
// listener observing the CPU's write address.
type Gameboy struct {
	bus *bus.Bus

	workRAM   *memory.Component
	echoRAM   *memory.Component
	videoRAM  *memory.Component
	externRAM *memory.Component
	graphRAM  *memory.Component
	registers *memory.Component
	useless   *memory.Component

	CPU    *cpu.CPU
	Timer  *timer.Timer
	LCD    *lcd.LCD
	Cart   *cart.Cartridge
	Boot   *bootrom.BootROM
	Joypad *joypad.Joypad
	Serial *serial.Tap

	listeners []listener

	cycles uint64
	boot   bool
}

// New constructs every component in construction-order-sensitive sequence
// and wires them onto one shared bus. The cartridge image must
// already be loaded (cart.Load/cart.LoadBytes) since the no-mapper core
// does not know how to fetch one itself.
func New(cartridge *cart.Cartridge) (*Gameboy, error) {
	b := bus.New()
	g := &Gameboy{bus: b, Cart: cartridge, boot: true}

	var err error
	if g.workRAM, err = setupComponent(b, addr.WorkRAMStart, addr.WorkRAMEnd); err != nil {
		return nil, err
	}
	// Echo-RAM aliases work-RAM's backing Memory rather than owning its own.
	g.echoRAM = memory.Share(g.workRAM)
	if err := b.Plug(g.echoRAM, addr.EchoRAMStart, addr.EchoRAMEnd); err != nil {
		return nil, err
	}
	if g.videoRAM, err = setupComponent(b, addr.VideoRAMStart, addr.VideoRAMEnd); err != nil {
		return nil, err
	}
	if g.externRAM, err = setupComponent(b, addr.ExternRAMStart, addr.ExternRAMEnd); err != nil {
		return nil, err
	}
	if g.graphRAM, err = setupComponent(b, addr.GraphRAMStart, addr.GraphRAMEnd); err != nil {
		return nil, err
	}
	if g.registers, err = setupComponent(b, addr.RegistersStart, addr.RegistersEnd); err != nil {
		return nil, err
	}
	if g.useless, err = setupComponent(b, addr.UselessStart, addr.UselessEnd); err != nil {
		return nil, err
	}

	// CPU: init then plug, which maps high-RAM and exposes IE/IF on the bus.
	c := cpu.New(b)
	if err := c.Plug(); err != nil {
		return nil, err
	}
	g.CPU = c

	t := timer.New(c, b)
	g.Timer = t

	// Cartridge plugged now so the first boot-ROM-disable write already has
	// somewhere to force-plug over, even before the write actually happens.
	if err := b.Plug(cartridge.Component, addr.BankROM0Start, addr.BankROM1End); err != nil {
		return nil, err
	}

	boot, err := bootrom.New()
	if err != nil {
		return nil, err
	}
	if err := b.ForcedPlug(boot.Component, addr.BootROMStart, addr.BootROMEnd, 0); err != nil {
		return nil, err
	}
	g.Boot = boot

	l, err := lcd.New(c, b)
	if err != nil {
		return nil, err
	}
	if err := l.Plug(); err != nil {
		return nil, err
	}
	g.LCD = l

	jp, err := joypad.New(c, b)
	if err != nil {
		return nil, err
	}
	if err := jp.Plug(); err != nil {
		return nil, err
	}
	g.Joypad = jp

	g.Serial = serial.New(b)

	g.listeners = []listener{t, g, g.Serial, l, jp}

	return g, nil
}

// OnBusWrite implements listener for the gameboy itself: it watches the
// boot-ROM disable register and, on the first write there, unmaps the boot
// ROM and force-plugs the cartridge back over the low address range.
func (g *Gameboy) OnBusWrite(writeAddr uint16) error {
	if writeAddr != addr.RegBootROMDisable || !g.boot {
		return nil
	}
	g.boot = false
	g.bus.Unplug(g.Boot.Component)
	return g.bus.ForcedPlug(g.Cart.Component, addr.BankROM0Start, addr.BankROM1End, 0)
}

// Cycles returns the number of emulated steps run so far.
func (g *Gameboy) Cycles() uint64 { return g.cycles }

// Bus exposes the shared bus, mainly so a host renderer or debugger can
// read VRAM/OAM/palette registers directly.
func (g *Gameboy) Bus() *bus.Bus { return g.bus }

// RunUntil advances the core one step at a time until Cycles() reaches
// target. Each step runs timer.Tick, cpu.Tick, lcd.Tick, then every
// listener observing the CPU's write address for this step. It stops early
// and returns the first error encountered.
func (g *Gameboy) RunUntil(target uint64) error {
	for g.cycles < target {
		if err := g.Timer.Tick(); err != nil {
			return err
		}
		if err := g.CPU.Tick(); err != nil {
			return err
		}
		if err := g.LCD.Tick(); err != nil {
			return err
		}
		writeAddr := g.CPU.WriteListener()
		for _, l := range g.listeners {
			if err := l.OnBusWrite(writeAddr); err != nil {
				return err
			}
		}
		g.cycles++
	}
	return nil
}
