// scanline renders 3D scenes in software: to the terminal, to a window, or
// to a PNG file.
//
// Controls:
//
//	Arrows / left drag  - Orbit the camera
//	Right drag          - Rotate the focus model
//	Scroll, +/-         - Zoom
//	W/S/A/D             - Rotate the lights
//	N/M                 - Shrink/grow the focus model
//	O/P                 - Widen/narrow the field of view
//	K G H L B           - Toggle axes, grid, faces, light vectors, bounds
//	Z V X               - Toggle depth view, vertex normals, wireframe
//	R                   - Reset view
//	?                   - Toggle HUD
//	Esc, q              - Quit
package main

import (
	"context"
	"log"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

var version = "dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("scanline: ")

	err := fang.Execute(context.Background(), rootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}
