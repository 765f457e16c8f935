package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

var (
	// ErrInvalidCommand is returned when a draw command references vertex
	// or index ranges outside the batch.
	ErrInvalidCommand = errors.New("render: invalid draw command")

	// ErrNonFinite is returned when NaN or Inf reaches the raster stage.
	ErrNonFinite = errors.New("render: non-finite value")
)

// Vertex is one entry of a batch's vertex buffer, in model space.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    math3d.Vec3 // Linear RGB in 0-1, multiplies the material base; zero means white
	UV       math3d.Vec2
}

// DrawCommand draws IndexCount/3 triangles. Indices are relative to
// FirstVertex, so one copy of a mesh can be drawn by many commands with
// different transforms.
type DrawCommand struct {
	FirstVertex int
	VertexCount int
	FirstIndex  int
	IndexCount  int
	MaterialID  int
	Transform   math3d.Mat4 // Model to world
	Bounds      *AABB       // Model-space bounds; nil disables bounds culling
}

// Batch holds the geometry for one frame.
type Batch struct {
	Vertices []Vertex
	Indices  []int
	Commands []DrawCommand
}

// Reset empties the batch, keeping its storage.
func (b *Batch) Reset() {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
	b.Commands = b.Commands[:0]
}

// AppendGeometry adds vertices and indices and returns where they start.
func (b *Batch) AppendGeometry(vertices []Vertex, indices []int) (firstVertex, firstIndex int) {
	firstVertex, firstIndex = len(b.Vertices), len(b.Indices)
	b.Vertices = append(b.Vertices, vertices...)
	b.Indices = append(b.Indices, indices...)
	return firstVertex, firstIndex
}

// Validate checks every command's ranges.
func (b *Batch) Validate() error {
	for i, cmd := range b.Commands {
		if err := b.validateCommand(cmd); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	return nil
}

func (b *Batch) validateCommand(cmd DrawCommand) error {
	switch {
	case cmd.FirstVertex < 0 || cmd.VertexCount < 0 || cmd.FirstVertex+cmd.VertexCount > len(b.Vertices):
		return fmt.Errorf("vertex range [%d, %d) of %d: %w",
			cmd.FirstVertex, cmd.FirstVertex+cmd.VertexCount, len(b.Vertices), ErrInvalidCommand)
	case cmd.FirstIndex < 0 || cmd.IndexCount < 0 || cmd.FirstIndex+cmd.IndexCount > len(b.Indices):
		return fmt.Errorf("index range [%d, %d) of %d: %w",
			cmd.FirstIndex, cmd.FirstIndex+cmd.IndexCount, len(b.Indices), ErrInvalidCommand)
	case cmd.IndexCount%3 != 0:
		return fmt.Errorf("index count %d not a multiple of 3: %w", cmd.IndexCount, ErrInvalidCommand)
	}
	for _, idx := range b.Indices[cmd.FirstIndex : cmd.FirstIndex+cmd.IndexCount] {
		if idx < 0 || idx >= cmd.VertexCount {
			return fmt.Errorf("index %d of %d vertices: %w", idx, cmd.VertexCount, ErrInvalidCommand)
		}
	}
	return nil
}

// Frame is everything the renderer needs for one image.
type Frame struct {
	Camera    *Camera
	Batch     *Batch
	Materials []Material // Indexed by DrawCommand.MaterialID
	Lights    []Light    // World space
	HUD       []string   // Lines of text drawn top-left
}

// Options toggles what the renderer draws.
type Options struct {
	Faces         bool // Filled, shaded triangles
	Wireframe     bool // Triangle edges
	DepthView     bool // Replace colors with the z-buffer in grayscale
	VertexNormals bool // A short line along each vertex normal
	Axes          bool // World X/Y/Z axes
	Grid          bool // Ground grid on y=0
	LightVectors  bool // Line from the origin to each light
	Bounds        bool // World-space box around each draw command
	Background    Color
}

// DefaultOptions draws shaded faces on a dark background.
func DefaultOptions() Options {
	return Options{
		Faces:      true,
		Background: RGB(24, 24, 32),
	}
}

// Stats counts what happened to the last frame's geometry.
type Stats struct {
	Commands       int
	CommandsCulled int // Rejected by bounds before vertex processing
	Triangles      int
	Clipped        int // A vertex at or behind the eye
	FrustumCulled  int
	BackfaceCulled int
	Drawn          int
	Fragments      int
}

var boundsColor = RGB(255, 160, 0)

// normalLength is the world-space length of vertex normal lines.
const normalLength = 0.2

// Renderer runs the pipeline and owns the output buffers. Frames are drawn
// into a back buffer that becomes visible only when the frame succeeds.
type Renderer struct {
	Options Options
	Stats   Stats

	width, height int
	front, back   *Framebuffer
	zbuf          *ZBuffer
	raster        *Rasterizer
	viewport      math3d.Mat4
	hasFrame      bool

	// Per-frame scratch
	screen  []ScreenVertex
	world   []math3d.Vec3
	view    []math3d.Vec3
	clipped []bool
	edges   [][2]math3d.Vec3
	normals [][2]math3d.Vec3
}

// NewRenderer creates a renderer producing width×height frames.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{Options: DefaultOptions()}
	r.Resize(width, height)
	return r
}

// Resize reallocates the buffers. The previous frame is discarded.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.front = NewFramebuffer(width, height)
	r.back = NewFramebuffer(width, height)
	r.zbuf = NewZBuffer(width, height)
	r.raster = NewRasterizer(r.zbuf)
	r.viewport = Viewport(width, height)
	r.hasFrame = false
}

// Width returns the frame width.
func (r *Renderer) Width() int { return r.width }

// Height returns the frame height.
func (r *Renderer) Height() int { return r.height }

// Front returns the last completed frame.
func (r *Renderer) Front() *Framebuffer { return r.front }

// Pixels returns the last completed frame as packed 0x00RRGGBB, row-major,
// top to bottom.
func (r *Renderer) Pixels() []uint32 { return r.front.Pixels }

// ZBuffer returns the depth buffer of the last frame.
func (r *Renderer) ZBuffer() *ZBuffer { return r.zbuf }

// Render draws frame. On failure the previous frame stays visible (or a
// magenta error frame if there is none) and the error is returned.
func (r *Renderer) Render(frame Frame) error {
	if err := r.render(frame); err != nil {
		r.raster.Reset()
		if !r.hasFrame {
			r.front.Clear(ColorMagenta)
			DrawText(r.front, 2, 2, "frame error", ColorWhite)
		}
		return err
	}
	r.front, r.back = r.back, r.front
	r.hasFrame = true
	return nil
}

func (r *Renderer) render(frame Frame) error {
	if frame.Camera == nil {
		return fmt.Errorf("no camera: %w", ErrInvalidCommand)
	}
	batch := frame.Batch
	if batch == nil {
		batch = &Batch{}
	}
	if err := batch.Validate(); err != nil {
		return err
	}

	cam := frame.Camera
	frustum, err := cam.Frustum()
	if err != nil {
		return err
	}
	viewMat := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	r.Stats = Stats{}
	r.back.Clear(r.Options.Background)
	r.zbuf.Clear()
	r.raster.Reset()
	r.edges = r.edges[:0]
	r.normals = r.normals[:0]

	// Lights are shaded in view space
	lights := make([]Light, len(frame.Lights))
	for i, l := range frame.Lights {
		lights[i] = l
		lights[i].Position = viewMat.MulPoint(l.Position)
	}

	for _, cmd := range batch.Commands {
		r.Stats.Commands++
		if cmd.Bounds != nil && !frustum.IntersectAABB(cmd.Bounds.Transform(cmd.Transform)) {
			r.Stats.CommandsCulled++
			continue
		}
		if err := r.drawCommand(batch, cmd, frame.Materials, lights, viewMat, proj, frustum); err != nil {
			return err
		}
	}

	r.Stats.Fragments = r.raster.Blend(r.back)

	if r.Options.DepthView {
		r.drawDepth()
	}
	r.drawOverlays(cam, batch, frame.Lights)
	r.drawHUD(frame.HUD)
	return nil
}

// hudPanel is the backdrop behind HUD text.
var hudPanel = RGB(16, 16, 20)

func (r *Renderer) drawHUD(lines []string) {
	if len(lines) == 0 {
		return
	}
	w := 0
	for _, line := range lines {
		w = max(w, TextWidth(line))
	}
	h := len(lines)*lineHeight + 2
	r.back.DrawRect(0, 0, w+4, h+2, hudPanel)
	r.back.DrawRectOutline(0, 0, w+4, h+2, ColorGray)
	for i, line := range lines {
		DrawText(r.back, 2, 2+i*lineHeight, line, ColorWhite)
	}
}

// drawCommand runs the vertex stage for one command and rasterizes its
// surviving triangles.
func (r *Renderer) drawCommand(batch *Batch, cmd DrawCommand, materials []Material, lights []Light, viewMat, proj math3d.Mat4, frustum Frustum) error {
	mat := DefaultMaterial()
	if cmd.MaterialID >= 0 && cmd.MaterialID < len(materials) {
		mat = materials[cmd.MaterialID]
	}
	shader := mat.Shading.Model()

	modelView := viewMat.Mul(cmd.Transform)
	normalMat := modelView.NormalMatrix()
	worldNormalMat := cmd.Transform.NormalMatrix()

	r.grow(cmd.VertexCount)
	vertices := batch.Vertices[cmd.FirstVertex : cmd.FirstVertex+cmd.VertexCount]
	for i, v := range vertices {
		r.world[i] = cmd.Transform.MulPoint(v.Position)
		pv := modelView.MulPoint(v.Position)
		if !pv.IsFinite() {
			return fmt.Errorf("vertex %d view position %v: %w", cmd.FirstVertex+i, pv, ErrNonFinite)
		}
		nv := normalMat.MulDir(v.Normal).Normalize()
		r.view[i] = pv

		surface := mat
		if v.Color != (math3d.Vec3{}) {
			surface.Base = mat.Base.Mul(v.Color)
		}
		color := shader.CalcColor(pv, nv, pv.Negate(), surface, lights)

		if r.Options.VertexNormals {
			r.normals = append(r.normals, [2]math3d.Vec3{
				r.world[i],
				r.world[i].Add(worldNormalMat.MulDir(v.Normal).Normalize().Scale(normalLength)),
			})
		}

		clip := proj.MulVec4(pv.Point())
		ndc, ok := clip.PerspectiveDivide(MinClipW)
		r.clipped[i] = !ok || clip.W <= MinClipW
		if r.clipped[i] {
			continue
		}
		s := r.viewport.MulPoint(ndc)
		if !s.IsFinite() {
			return fmt.Errorf("vertex %d screen position %v: %w", cmd.FirstVertex+i, s, ErrNonFinite)
		}
		r.screen[i] = ScreenVertex{X: s.X, Y: s.Y, Z: s.Z, InvW: 1 / clip.W, Color: color, UV: v.UV}
	}

	indices := batch.Indices[cmd.FirstIndex : cmd.FirstIndex+cmd.IndexCount]
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := indices[t], indices[t+1], indices[t+2]
		r.Stats.Triangles++

		if r.clipped[a] || r.clipped[b] || r.clipped[c] {
			r.Stats.Clipped++
			continue
		}
		if !frustum.TriangleVisible(r.world[a], r.world[b], r.world[c]) {
			r.Stats.FrustumCulled++
			continue
		}
		// The eye is at the view-space origin, so a vertex position is
		// also the view ray to it.
		faceNormal := r.view[b].Sub(r.view[a]).Cross(r.view[c].Sub(r.view[a]))
		if !IsFrontFacing(faceNormal, r.view[a]) {
			r.Stats.BackfaceCulled++
			continue
		}

		r.Stats.Drawn++
		if r.Options.Faces {
			r.raster.DrawTriangle([3]ScreenVertex{r.screen[a], r.screen[b], r.screen[c]}, cmd.MaterialID, mat.Texture)
		}
		if r.Options.Wireframe {
			r.edges = append(r.edges,
				[2]math3d.Vec3{r.world[a], r.world[b]},
				[2]math3d.Vec3{r.world[b], r.world[c]},
				[2]math3d.Vec3{r.world[c], r.world[a]},
			)
		}
	}
	return nil
}

func (r *Renderer) grow(n int) {
	if cap(r.screen) < n {
		r.screen = make([]ScreenVertex, n)
		r.world = make([]math3d.Vec3, n)
		r.view = make([]math3d.Vec3, n)
		r.clipped = make([]bool, n)
	}
	r.screen = r.screen[:n]
	r.world = r.world[:n]
	r.view = r.view[:n]
	r.clipped = r.clipped[:n]
}

// drawDepth paints the back buffer with the z-buffer, near bright and far
// dark. Empty pixels keep the background.
func (r *Renderer) drawDepth() {
	lo, hi, ok := r.zbuf.Range()
	if !ok {
		return
	}
	span := float64(hi - lo)
	for i, d := range r.zbuf.Depth {
		if d > hi {
			continue
		}
		t := 1.0
		if span > 0 {
			t = 1 - float64(d-lo)/span
		}
		r.back.Pixels[i] = Pack(MultiplyColor(ColorWhite, 0.15+0.85*t))
	}
}

func (r *Renderer) drawOverlays(cam *Camera, batch *Batch, lights []Light) {
	o := NewOverlay(r.back, cam.FrustumMatrix())
	if r.Options.Grid {
		o.DrawGrid(10, 1, ColorGray)
	}
	if r.Options.Axes {
		o.DrawAxes(2)
	}
	for _, e := range r.edges {
		o.DrawLine3D(e[0], e[1], ColorGreen)
	}
	for _, n := range r.normals {
		o.DrawLine3D(n[0], n[1], ColorCyan)
	}
	if r.Options.Bounds {
		for _, cmd := range batch.Commands {
			if cmd.Bounds != nil {
				o.DrawAABB(*cmd.Bounds, cmd.Transform, boundsColor)
			}
		}
	}
	if r.Options.LightVectors {
		for _, l := range lights {
			o.DrawLine3D(math3d.Zero3(), l.Position, ColorYellow)
			o.DrawPoint(l.Position, 0.2, ColorYellow)
		}
	}
}
