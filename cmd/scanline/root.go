package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/engine"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

// options are the flags shared by every subcommand.
type options struct {
	cfg engine.Config

	background string
	segments   int
	texture    string
	wireframe  bool
	noGrid     bool
	noAxes     bool
	hud        bool
}

func rootCmd() *cobra.Command {
	opts := &options{cfg: engine.DefaultConfig()}

	root := &cobra.Command{
		Use:   "scanline [model.obj|model.glb]",
		Short: "Software 3D renderer",
		Long: `Render a model, or a chain of demo spheres when none is given, with a
CPU-only pipeline. Without a subcommand the scene is shown in the terminal.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, args)
		},
	}

	f := root.PersistentFlags()
	f.IntVar(&opts.cfg.Width, "width", opts.cfg.Width, "framebuffer width in pixels (window and snapshot)")
	f.IntVar(&opts.cfg.Height, "height", opts.cfg.Height, "framebuffer height in pixels (window and snapshot)")
	f.Float64Var(&opts.cfg.FOV, "fov", opts.cfg.FOV, "vertical field of view in degrees")
	f.Float64Var(&opts.cfg.Near, "near", opts.cfg.Near, "near clip distance")
	f.Float64Var(&opts.cfg.Far, "far", opts.cfg.Far, "far clip distance")
	f.Float64Var(&opts.cfg.Distance, "distance", opts.cfg.Distance, "camera distance from the focus model")
	f.Float64Var(&opts.cfg.Yaw, "yaw", opts.cfg.Yaw, "initial orbit yaw in degrees")
	f.Float64Var(&opts.cfg.Pitch, "pitch", opts.cfg.Pitch, "initial orbit pitch in degrees")
	f.IntVar(&opts.cfg.TargetFPS, "fps", opts.cfg.TargetFPS, "target frames per second")
	f.StringVar(&opts.background, "bg", "24,24,32", "background color as R,G,B")
	f.IntVar(&opts.segments, "segments", 3, "spheres in the demo chain")
	f.StringVar(&opts.texture, "texture", "", "texture image (PNG/JPG) applied to every material")
	f.BoolVar(&opts.wireframe, "wireframe", false, "start with wireframe on")
	f.BoolVar(&opts.noGrid, "no-grid", false, "start with the ground grid hidden")
	f.BoolVar(&opts.noAxes, "no-axes", false, "start with the world axes hidden")
	f.BoolVar(&opts.hud, "hud", false, "start with the HUD shown")

	root.AddCommand(viewCmd(opts), windowCmd(opts), snapshotCmd(opts))
	return root
}

// config applies the flag toggles to the engine config.
func (o *options) config() (engine.Config, error) {
	cfg := o.cfg
	bg, err := parseColor(o.background)
	if err != nil {
		return cfg, err
	}
	cfg.Options.Background = bg
	cfg.Options.Wireframe = o.wireframe
	cfg.Options.Grid = !o.noGrid
	cfg.Options.Axes = !o.noAxes
	return cfg, nil
}

// newEngine loads the scene named by args and starts an engine on it.
func newEngine(o *options, cfg engine.Config, args []string) (*engine.Engine, string, error) {
	sc, focus, name, err := loadScene(o, args)
	if err != nil {
		return nil, "", err
	}
	if o.texture != "" {
		tex, err := render.LoadTexture(o.texture)
		if err != nil {
			log.Printf("texture ignored: %v", err)
		} else {
			for i := range sc.Materials {
				sc.Materials[i].Texture = tex
			}
		}
	}

	eng, err := engine.New(cfg, sc, focus)
	if err != nil {
		return nil, "", err
	}
	if o.hud {
		eng.ToggleHUD()
	}
	return eng, name, nil
}

func loadScene(o *options, args []string) (*scene.Scene, scene.NodeID, string, error) {
	if len(args) == 0 {
		sc, focus, err := engine.DemoScene(o.segments)
		return sc, focus, "demo", err
	}

	path := args[0]
	var (
		mesh *models.Mesh
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		mesh, err = models.LoadOBJ(path)
	case ".glb", ".gltf":
		mesh, err = models.LoadGLB(path)
	default:
		return nil, scene.NoNode, "", fmt.Errorf("unsupported format %q (use .obj or .glb)", ext)
	}
	if err != nil {
		return nil, scene.NoNode, "", fmt.Errorf("load model: %w", err)
	}
	sc, focus, err := engine.MeshScene(mesh)
	return sc, focus, filepath.Base(path), err
}

func parseColor(s string) (render.Color, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return render.Color{}, fmt.Errorf("background %q: want R,G,B: %w", s, err)
	}
	return render.RGB(r, g, b), nil
}
