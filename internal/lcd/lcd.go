// Package lcd implements only the slice of the LCD the core owns: a dot
// counter that advances LY and the STAT mode bits and raises VBLANK/STAT
// interrupts at the right moments. Pixel production is left to the host
// renderer; this package only keeps the timing and register state a game's
// code actually polls.
package lcd

import (
	"gbcore/internal/addr"
	"gbcore/internal/bus"
	"gbcore/internal/memory"
)

type interruptRequester interface {
	RequestInterrupt(bit uint) error
}

const (
	regLCDC uint16 = 0xFF40
	regSTAT uint16 = 0xFF41
	regSCY  uint16 = 0xFF42
	regSCX  uint16 = 0xFF43
	regLY   uint16 = 0xFF44
	regLYC  uint16 = 0xFF45
	regBGP  uint16 = 0xFF47
	regOBP0 uint16 = 0xFF48
	regOBP1 uint16 = 0xFF49
	regWY   uint16 = 0xFF4A
	regWX   uint16 = 0xFF4B

	modeHBlank = 0
	modeVBlank = 1
	modeOAM    = 2
	modeXfer   = 3

	dotsPerLine  = 456
	oamDots      = 80
	xferDots     = 172
	firstVBlankY = 144
	lastLineY    = 153
)

// LCD owns the FF40-FF4B register block and the dot/line counters. VRAM and
// OAM are separate bus components the Gameboy plugs independently, so LCD
// itself holds no pixel storage.
type LCD struct {
	cpu       interruptRequester
	bus       *bus.Bus
	Component *memory.Component

	dot int
}

// New allocates the register block; Plug still has to map it onto the bus.
func New(cpu interruptRequester, b *bus.Bus) (*LCD, error) {
	c, err := memory.Create(0x0C)
	if err != nil {
		return nil, err
	}
	l := &LCD{cpu: cpu, bus: b, Component: c}
	return l, nil
}

// Plug force-plugs the register block over FF40-FF4B.
func (l *LCD) Plug() error {
	return l.bus.ForcedPlug(l.Component, regLCDC, regWX, 0)
}

func (l *LCD) reg(addr uint16) byte       { return l.Component.Mem.Get(int(addr - regLCDC)) }
func (l *LCD) setReg(addr uint16, v byte) { l.Component.Mem.Set(int(addr-regLCDC), v) }

func (l *LCD) lcdOn() bool { return l.reg(regLCDC)&0x80 != 0 }

// Tick advances the dot counter by one cycle, stepping LY/mode and raising
// VBLANK and STAT interrupts at the appropriate transitions. It does not
// produce pixels; a host renderer samples VRAM/OAM and the palette/scroll
// registers independently via the bus.
func (l *LCD) Tick() error {
	if !l.lcdOn() {
		return nil
	}
	l.dot++

	ly := l.reg(regLY)
	var mode byte
	switch {
	case ly >= firstVBlankY:
		mode = modeVBlank
	case l.dot < oamDots:
		mode = modeOAM
	case l.dot < oamDots+xferDots:
		mode = modeXfer
	default:
		mode = modeHBlank
	}
	if err := l.setMode(mode); err != nil {
		return err
	}

	if l.dot < dotsPerLine {
		return nil
	}
	l.dot = 0
	ly++
	if ly > lastLineY {
		ly = 0
	}
	l.setReg(regLY, ly)
	if err := l.updateCoincidence(); err != nil {
		return err
	}
	if ly == firstVBlankY {
		if err := l.cpu.RequestInterrupt(addr.IntVBlank); err != nil {
			return err
		}
		if l.reg(regSTAT)&(1<<4) != 0 {
			if err := l.cpu.RequestInterrupt(addr.IntLCDStat); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *LCD) setMode(mode byte) error {
	stat := l.reg(regSTAT)
	if stat&0x03 == mode {
		return nil
	}
	l.setReg(regSTAT, (stat&^0x03)|mode)
	var statBit byte
	switch mode {
	case modeHBlank:
		statBit = 1 << 3
	case modeOAM:
		statBit = 1 << 5
	default:
		return nil
	}
	if stat&statBit != 0 {
		return l.cpu.RequestInterrupt(addr.IntLCDStat)
	}
	return nil
}

// OnBusWrite is the LCD's gameboy-level bus listener: a write to LY resets
// the line counter to 0, matching real DMG hardware (LY is read-only from
// the game's perspective, but the write still lands and immediately gets
// reset).
func (l *LCD) OnBusWrite(writeAddr uint16) error {
	if writeAddr != regLY {
		return nil
	}
	l.setReg(regLY, 0)
	l.dot = 0
	return l.updateCoincidence()
}

func (l *LCD) updateCoincidence() error {
	stat := l.reg(regSTAT)
	if l.reg(regLY) == l.reg(regLYC) {
		stat |= 1 << 2
		l.setReg(regSTAT, stat)
		if stat&(1<<6) != 0 {
			return l.cpu.RequestInterrupt(addr.IntLCDStat)
		}
		return nil
	}
	l.setReg(regSTAT, stat&^(1<<2))
	return nil
}
