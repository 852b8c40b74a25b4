// Command gbcore is a headless driver for the core: it loads a ROM image,
// runs the tick loop for a bounded number of instructions or until a
// wall-clock timeout, and optionally writes the last rendered frame to a
// PNG file. It does no windowing, input capture, or audio; those are
// external collaborators this core only exposes an interface for.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/tilecore/gbcore/internal/emu"
	"github.com/tilecore/gbcore/internal/video"
)

func main() {
	romPath := flag.String("rom", "", "path to a 32KiB ROM image")
	steps := flag.Int("steps", 5_000_000, "max CPU instructions to run")
	trace := flag.Bool("trace", false, "log every instruction's PC and cycle cost")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s); 0 disables")
	pngOut := flag.String("png", "", "write the last rendered frame to this path on exit")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("gbcore: -rom is required")
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("gbcore: read rom: %v", err)
	}

	m := emu.New(emu.Config{Trace: *trace})
	m.LoadROM(rom)
	m.ResetPostBoot()

	var deadline time.Time
	if *timeout > 0 {
		deadline = time.Now().Add(*timeout)
	}

	var lastFrame []byte
	start := time.Now()
	ran := 0
	for i := 0; i < *steps; i++ {
		m.Tick()
		ran++
		if m.FrameReady() {
			lastFrame = m.ConsumeFrame()
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("gbcore: timeout after %s\n", time.Since(start).Truncate(time.Millisecond))
			break
		}
	}

	fmt.Printf("gbcore: ran %d instructions, %d T-cycles, elapsed %s\n",
		ran, m.TotalCycles(), time.Since(start).Truncate(time.Millisecond))

	if *pngOut != "" {
		if lastFrame == nil {
			log.Fatal("gbcore: no frame was rendered, nothing to write")
		}
		if err := writePNG(*pngOut, lastFrame); err != nil {
			log.Fatalf("gbcore: write png: %v", err)
		}
	}
}

func writePNG(path string, frame []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, video.ToImage(frame))
}
