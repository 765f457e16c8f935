package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/engine"
	"github.com/taigrr/scanline/pkg/input"
)

// Mouse tracking escape sequences: any-event tracking in SGR encoding.
const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h"
	mouseOff = "\x1b[?1003l\x1b[?1006l"
)

func viewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view [model.obj|model.glb]",
		Short: "Render in the terminal with half-block characters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, args)
		},
	}
}

func runView(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	// Each cell shows two pixel rows.
	cfg.Width, cfg.Height = width, height*2

	eng, _, err := newEngine(opts, cfg, args)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	fmt.Fprint(os.Stdout, mouseOn)

	defer func() {
		fmt.Fprint(os.Stdout, mouseOff)
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	return viewLoop(cmd.Context(), term, eng)
}

// viewLoop runs frames until ctx is done or a quit key arrives. Events are
// drained between frames, so the engine is only touched from this goroutine.
func viewLoop(ctx context.Context, term *uv.Terminal, eng *engine.Engine) error {
	tracker := input.NewTracker()
	keys := input.NewTerminal(tracker)

	frameTime := time.Second / time.Duration(eng.Config().TargetFPS)
	last := time.Now()
	failed := 0

	for {
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-term.Events():
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					term.Erase()
					if err := term.Resize(ev.Width, ev.Height); err != nil {
						return fmt.Errorf("resize terminal: %w", err)
					}
					eng.Resize(ev.Width, ev.Height*2)
				case uv.KeyPressEvent:
					if ev.MatchString("esc", "q", "ctrl+c") {
						return nil
					}
				}
				keys.Handle(ev)
			default:
				break drain
			}
		}

		now := time.Now()
		dt := min(now.Sub(last).Seconds(), 0.1)
		last = now

		if err := eng.Update(tracker.Snapshot(), dt); err != nil {
			log.Printf("update: %v", err)
		}
		if err := eng.Render(); err != nil {
			// Keep going; the previous frame stays on screen.
			if failed++; failed == 1 || failed%100 == 0 {
				log.Printf("frame failed (%d so far): %v", failed, err)
			}
		}

		eng.Frame().Draw(term, term.Bounds())
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(now); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}
