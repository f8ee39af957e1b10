// Package display is the thin ebiten-backed host frontend: each GUI step
// converts wall-clock elapsed time into a target cycle count via
// GBCyclesPerSecond and calls gameboy.RunUntil, translating keyboard state
// into joypad key state. Pixel production stays outside the emulation
// core, so Draw only paints a placeholder frame; a full renderer would
// sample VRAM and OAM via Gameboy.Bus().
package display

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gbcore/internal/gameboy"
	"gbcore/internal/joypad"
)

// GBCyclesPerSecond is the DMG's fixed clock rate.
const GBCyclesPerSecond = 4_194_304

const (
	screenWidth  = 160
	screenHeight = 144
)

// Game implements ebiten.Game with just the three methods ebiten requires.
// No menu, save states, or audio.
type Game struct {
	gb       *gameboy.Gameboy
	lastTime time.Time
}

// New wraps an already-constructed Gameboy for ebiten to drive.
func New(gb *gameboy.Gameboy) *Game {
	return &Game{gb: gb, lastTime: time.Now()}
}

// Update advances the core by however many cycles have elapsed in
// wall-clock time since the last call, then samples keyboard state into
// the joypad (arrows, Z/X, Enter, right-shift).
func (g *Game) Update() error {
	now := time.Now()
	elapsed := now.Sub(g.lastTime)
	g.lastTime = now

	targetDelta := uint64(elapsed.Seconds() * GBCyclesPerSecond)
	if err := g.gb.RunUntil(g.gb.Cycles() + targetDelta); err != nil {
		return err
	}

	var directions, actions byte
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		directions |= 1 << joypad.ButtonRight
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		directions |= 1 << joypad.ButtonLeft
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		directions |= 1 << joypad.ButtonUp
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		directions |= 1 << joypad.ButtonDown
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		actions |= 1 << joypad.ButtonA
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		actions |= 1 << joypad.ButtonB
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		actions |= 1 << joypad.ButtonSelect
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		actions |= 1 << joypad.ButtonStart
	}
	return g.gb.Joypad.SetKeyState(directions, actions)
}

// Draw paints a flat placeholder frame. A real pixel-FIFO renderer is out
// of the core's scope; this exists so the window is usable for driving
// the core interactively (e.g. against test ROMs with serial output).
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x9B, G: 0xBC, B: 0x0F, A: 0xFF})
}

// Layout fixes the logical screen to the DMG's native resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}
