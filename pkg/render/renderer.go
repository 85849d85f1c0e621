// Package render implements the software rasterization pipeline: camera
// projection, back-face visibility, scanline polygon fill and per-pixel
// Phong shading into a Framebuffer.
package render

import (
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

// Options controls a Renderer. The zero value renders filled triangles with
// the any-vertex visibility policy and depth testing, on one goroutine.
type Options struct {
	Visibility       VisibilityPolicy
	DisableDepthTest bool // later triangles overwrite earlier ones
	DisableFill      bool // skip rasterization, useful with Wireframe
	Workers          int  // goroutines shading triangles; <= 1 is serial
	Wireframe        bool // stroke the edges of drawn triangles
	Normals          bool // draw vertex normals of drawn triangles
	LightMarker      bool // draw the projected light position
}

// FrameState is the camera and light for one frame. Render copies it once
// so every triangle of a frame sees the same values.
type FrameState struct {
	Camera Camera
	Light  LightSource
}

// FrameStats counts what happened to the mesh during the last frame.
type FrameStats struct {
	Triangles     int  // triangles in the mesh
	BackFacing    int  // rejected by the visibility policy
	Unprojectable int  // had a vertex at or behind the camera plane
	Empty         int  // projected but covered no pixel centers
	Drawn         int  // produced at least one sample, or outlined
	Samples       int  // samples that reached the framebuffer
	Dropped       int  // samples with non-finite attributes
	DepthRejected int  // samples hidden by a nearer one
	MeshCulled    bool // mesh bounds were outside the view volume
}

// Pixel is a shaded sample ready for the framebuffer.
type Pixel struct {
	X, Y  int
	Depth float64 // reciprocal camera depth
	Color Color
}

// Renderer draws a mesh into a framebuffer. It owns the depth buffer.
type Renderer struct {
	fb      *Framebuffer
	depth   []float64 // reciprocal depth per pixel, 0 is infinitely far
	drawn   [][3]Vertex
	Options Options
	Stats   FrameStats
}

// NewRenderer creates a renderer targeting fb.
func NewRenderer(fb *Framebuffer, opts Options) *Renderer {
	r := &Renderer{fb: fb, Options: opts}
	r.Resize()
	return r
}

// Resize matches the depth buffer to the framebuffer. Call it after
// resizing the framebuffer.
func (r *Renderer) Resize() {
	if n := r.fb.Width * r.fb.Height; len(r.depth) != n {
		r.depth = make([]float64, n)
	}
}

// ClearDepth resets every pixel to infinitely far.
func (r *Renderer) ClearDepth() {
	clear(r.depth)
}

// Depth returns the stored reciprocal depth at (x, y).
func (r *Renderer) Depth(x, y int) float64 {
	if !r.fb.Contains(x, y) {
		return 0
	}
	return r.depth[y*r.fb.Width+x]
}

type outcome int

const (
	outcomeBackFacing outcome = iota
	outcomeUnprojectable
	outcomeEmpty
	outcomeDrawn
)

// frame is the immutable per-frame context shared by triangle workers.
type frame struct {
	mesh   *models.Mesh
	proj   Projector
	shader Shader
	eye    math3d.Vec3
	width  int
	height int
	opts   Options
}

type triangleResult struct {
	outcome outcome
	tri     [3]Vertex
	pixels  []Pixel
	dropped int
}

// Render draws mesh lit by state.Light as seen from state.Camera. The
// framebuffer is not cleared; the depth buffer is. Render returns the
// frame's statistics, which are also kept in r.Stats.
func (r *Renderer) Render(mesh *models.Mesh, state FrameState, mat Material) FrameStats {
	r.Resize()
	r.ClearDepth()
	r.Stats = FrameStats{Triangles: mesh.TriangleCount()}
	r.drawn = r.drawn[:0]

	if r.fb.Width == 0 || r.fb.Height == 0 {
		return r.Stats
	}

	f := &frame{
		mesh:   mesh,
		proj:   NewProjector(state.Camera, r.fb.Width, r.fb.Height),
		shader: Shader{Light: state.Light, Material: mat, Eye: state.Camera.Position},
		eye:    state.Camera.Position,
		width:  r.fb.Width,
		height: r.fb.Height,
		opts:   r.Options,
	}

	if !f.proj.Frustum().IntersectAABB(NewAABB(mesh.BoundsMin, mesh.BoundsMax)) {
		r.Stats.MeshCulled = true
		return r.Stats
	}

	if r.Options.Workers > 1 {
		r.renderParallel(f)
	} else {
		for i := range mesh.Triangles {
			var res triangleResult
			res.outcome, res.tri, res.dropped = rasterize(f, i, r.composite)
			r.record(res)
		}
	}

	r.drawOverlays(f, state.Light)
	return r.Stats
}

// renderParallel shades triangles on a bounded set of goroutines and
// composites their pixels in mesh order, so the image matches the serial
// path exactly.
func (r *Renderer) renderParallel(f *frame) {
	results := make([]triangleResult, len(f.mesh.Triangles))

	var g errgroup.Group
	g.SetLimit(r.Options.Workers)
	for i := range results {
		g.Go(func() error {
			res := &results[i]
			res.outcome, res.tri, res.dropped = rasterize(f, i, func(p Pixel) {
				res.pixels = append(res.pixels, p)
			})
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	for _, res := range results {
		for _, p := range res.pixels {
			r.composite(p)
		}
		r.record(res)
	}
}

func (r *Renderer) record(res triangleResult) {
	r.Stats.Dropped += res.dropped
	switch res.outcome {
	case outcomeBackFacing:
		r.Stats.BackFacing++
	case outcomeUnprojectable:
		r.Stats.Unprojectable++
	case outcomeEmpty:
		r.Stats.Empty++
	case outcomeDrawn:
		r.Stats.Drawn++
		r.drawn = append(r.drawn, res.tri)
	}
}

// composite writes one pixel, honoring the depth test. Pixels always lie
// inside the viewport because the scanline pass clips to it.
func (r *Renderer) composite(p Pixel) {
	idx := p.Y*r.fb.Width + p.X
	if !r.Options.DisableDepthTest {
		if p.Depth <= r.depth[idx] {
			r.Stats.DepthRejected++
			return
		}
		r.depth[idx] = p.Depth
	}
	r.fb.Pixels[idx] = p.Color
	r.Stats.Samples++
}

// rasterize runs the per-triangle pipeline for triangle i and hands every
// shaded pixel to emit.
func rasterize(f *frame, i int, emit func(Pixel)) (out outcome, tri [3]Vertex, dropped int) {
	verts := f.mesh.TriangleVertices(i)
	if !Visible(verts, f.eye, f.opts.Visibility) {
		return outcomeBackFacing, tri, 0
	}

	tri, ok := f.proj.ProjectTriangle(verts)
	if !ok {
		return outcomeUnprojectable, tri, 0
	}
	if f.opts.DisableFill {
		return outcomeDrawn, tri, 0
	}

	scan := NewScanline(tri, f.width, f.height)
	if scan.Empty() {
		return outcomeEmpty, tri, 0
	}

	emitted := 0
	for s := range scan.Samples() {
		if !s.Position.IsFinite() || !s.Normal.IsFinite() || !math3d.IsFinite(s.Depth) {
			dropped++
			continue
		}
		emit(Pixel{X: s.X, Y: s.Y, Depth: s.Depth, Color: f.shader.ShadeRGBA(s.Position, s.Normal)})
		emitted++
	}
	if emitted == 0 {
		return outcomeEmpty, tri, dropped
	}
	return outcomeDrawn, tri, dropped
}
