package engine

import (
	"fmt"
	"strings"
)

// HUD keeps a frame rate estimate and formats the overlay text.
type HUD struct {
	fps     float64
	frames  int
	elapsed float64
}

// Tick counts one frame of dt seconds. The rate is recomputed once a second.
func (h *HUD) Tick(dt float64) {
	h.frames++
	h.elapsed += dt
	if h.elapsed >= 1 {
		h.fps = float64(h.frames) / h.elapsed
		h.frames = 0
		h.elapsed = 0
	}
}

// FPS returns the last measured frame rate.
func (h *HUD) FPS() float64 { return h.fps }

// Lines formats the overlay for e's current state and last frame's stats.
func (h *HUD) Lines(e *Engine) []string {
	s := e.state
	st := e.Renderer.Stats
	return []string{
		fmt.Sprintf("%.0f fps", h.fps),
		fmt.Sprintf("fov %.0f dist %.1f", s.FOV, s.Distance),
		fmt.Sprintf("yaw %.0f pitch %.0f", degrees(s.Orbit.Yaw.Position), degrees(s.Orbit.Pitch.Position)),
		fmt.Sprintf("tris %d drawn %d", st.Triangles, st.Drawn),
		fmt.Sprintf("cull %d back %d clip %d", st.FrustumCulled, st.BackfaceCulled, st.Clipped),
		modeLine(s),
	}
}

func modeLine(s State) string {
	var on []string
	flags := []struct {
		name string
		set  bool
	}{
		{"faces", s.Options.Faces},
		{"wire", s.Options.Wireframe},
		{"depth", s.Options.DepthView},
		{"normals", s.Options.VertexNormals},
		{"axes", s.Options.Axes},
		{"grid", s.Options.Grid},
		{"lights", s.Options.LightVectors},
		{"bounds", s.Options.Bounds},
	}
	for _, f := range flags {
		if f.set {
			on = append(on, f.name)
		}
	}
	if len(on) == 0 {
		return "-"
	}
	return strings.Join(on, " ")
}
