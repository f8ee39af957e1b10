// Command gbcore runs the emulator: one positional cartridge-path
// argument, exit code 0 on clean shutdown, non-zero on init failure. The
// -headless mode drives gameboy.RunUntil directly for a fixed emulated
// duration; otherwise an ebiten window paces the core from wall-clock
// time.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gbcore/internal/cart"
	"gbcore/internal/display"
	"gbcore/internal/gameboy"
)

type config struct {
	romPath  string
	headless bool
	seconds  float64
	trace    bool
	scale    int
	title    string
}

func parseFlags() config {
	var cfg config
	flag.BoolVar(&cfg.headless, "headless", false, "run without a window")
	flag.Float64Var(&cfg.seconds, "seconds", 5, "wall-clock seconds to emulate in headless mode")
	flag.BoolVar(&cfg.trace, "trace", false, "log each RunUntil call's cycle target")
	flag.IntVar(&cfg.scale, "scale", 3, "window scale")
	flag.StringVar(&cfg.title, "title", "gbcore", "window title")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gbcore [flags] <rom-path>")
		os.Exit(2)
	}
	cfg.romPath = flag.Arg(0)
	return cfg
}

func runHeadless(gb *gameboy.Gameboy, seconds float64, trace bool) error {
	target := uint64(seconds * display.GBCyclesPerSecond)
	if trace {
		log.Printf("running headless to cycle target %d", target)
	}
	return gb.RunUntil(target)
}

func main() {
	cfg := parseFlags()

	c, err := cart.Load(cfg.romPath)
	if err != nil {
		log.Printf("load cartridge: %v", err)
		os.Exit(1)
	}

	gb, err := gameboy.New(c)
	if err != nil {
		log.Printf("init gameboy: %v", err)
		os.Exit(1)
	}
	gb.Serial.Out = os.Stdout

	if cfg.headless {
		start := time.Now()
		if err := runHeadless(gb, cfg.seconds, cfg.trace); err != nil {
			log.Printf("run: %v", err)
			os.Exit(1)
		}
		if cfg.trace {
			log.Printf("ran %d cycles in %s", gb.Cycles(), time.Since(start))
		}
		os.Exit(0)
	}

	ebiten.SetWindowTitle(cfg.title)
	ebiten.SetWindowSize(160*cfg.scale, 144*cfg.scale)
	game := display.New(gb)
	if err := ebiten.RunGame(game); err != nil {
		log.Printf("run game: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
