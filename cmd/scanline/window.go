package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/engine"
	"github.com/taigrr/scanline/pkg/input"
)

// windowScale is the initial window size as a multiple of the framebuffer.
const windowScale = 3

func windowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "window [model.obj|model.glb]",
		Short: "Render in a desktop window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			eng, name, err := newEngine(opts, cfg, args)
			if err != nil {
				return err
			}

			ebiten.SetWindowTitle("scanline - " + name)
			ebiten.SetWindowSize(cfg.Width*windowScale, cfg.Height*windowScale)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetTPS(cfg.TargetFPS)

			g := newWindowGame(eng)
			if err := ebiten.RunGame(g); err != nil {
				return fmt.Errorf("window: %w", err)
			}
			return nil
		},
	}
}

// keyNames maps the polled keys to the names the engine reads.
var keyNames = map[ebiten.Key]input.Key{
	ebiten.KeyUp:     input.KeyUp,
	ebiten.KeyDown:   input.KeyDown,
	ebiten.KeyLeft:   input.KeyLeft,
	ebiten.KeyRight:  input.KeyRight,
	ebiten.KeySpace:  input.KeySpace,
	ebiten.KeyEnter:  input.KeyEnter,
	ebiten.KeyTab:    input.KeyTab,
	ebiten.KeyMinus:  "-",
	ebiten.KeyEqual:  "=",
	ebiten.KeyA:      "a",
	ebiten.KeyB:      "b",
	ebiten.KeyD:      "d",
	ebiten.KeyG:      "g",
	ebiten.KeyH:      "h",
	ebiten.KeyK:      "k",
	ebiten.KeyL:      "l",
	ebiten.KeyM:      "m",
	ebiten.KeyN:      "n",
	ebiten.KeyO:      "o",
	ebiten.KeyP:      "p",
	ebiten.KeyR:      "r",
	ebiten.KeyS:      "s",
	ebiten.KeyV:      "v",
	ebiten.KeyW:      "w",
	ebiten.KeyX:      "x",
	ebiten.KeyZ:      "z",
}

var mouseButtons = map[ebiten.MouseButton]input.Button{
	ebiten.MouseButtonLeft:   input.MouseLeft,
	ebiten.MouseButtonMiddle: input.MouseMiddle,
	ebiten.MouseButtonRight:  input.MouseRight,
}

type windowGame struct {
	eng     *engine.Engine
	tracker *input.Tracker
	img     *ebiten.Image
	rgba    []byte
	failed  int
}

func newWindowGame(eng *engine.Engine) *windowGame {
	return &windowGame{eng: eng, tracker: input.NewTracker()}
}

// poll feeds this tick's key and button edges into the tracker.
func (g *windowGame) poll() {
	for k, name := range keyNames {
		if inpututil.IsKeyJustPressed(k) {
			g.tracker.KeyDown(name)
		}
		if inpututil.IsKeyJustReleased(k) {
			g.tracker.KeyUp(name)
		}
	}
	// "?" is shift+slash on most layouts.
	if inpututil.IsKeyJustPressed(ebiten.KeySlash) && ebiten.IsKeyPressed(ebiten.KeyShift) {
		g.tracker.Tap("?")
	}

	x, y := ebiten.CursorPosition()
	g.tracker.MouseMove(x, y)
	for b, name := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b) {
			g.tracker.MouseButton(name, true, x, y)
		}
		if inpututil.IsMouseButtonJustReleased(b) {
			g.tracker.MouseButton(name, false, x, y)
		}
	}

	if _, dy := ebiten.Wheel(); dy > 0 {
		g.tracker.Scroll(1)
	} else if dy < 0 {
		g.tracker.Scroll(-1)
	}
}

func (g *windowGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	g.poll()
	if err := g.eng.Update(g.tracker.Snapshot(), 1/float64(ebiten.TPS())); err != nil {
		log.Printf("update: %v", err)
	}
	if err := g.eng.Render(); err != nil {
		if g.failed++; g.failed == 1 || g.failed%100 == 0 {
			log.Printf("frame failed (%d so far): %v", g.failed, err)
		}
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	fb := g.eng.Frame()
	if g.img == nil || g.img.Bounds().Dx() != fb.Width || g.img.Bounds().Dy() != fb.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(fb.Width, fb.Height)
		g.rgba = make([]byte, fb.Width*fb.Height*4)
	}

	for i, p := range fb.Pixels {
		j := i * 4
		g.rgba[j+0] = uint8(p >> 16)
		g.rgba[j+1] = uint8(p >> 8)
		g.rgba[j+2] = uint8(p)
		g.rgba[j+3] = 0xFF
	}
	g.img.WritePixels(g.rgba)
	screen.DrawImage(g.img, nil)
}

func (g *windowGame) Layout(_, _ int) (int, int) {
	cfg := g.eng.Config()
	return cfg.Width, cfg.Height
}
