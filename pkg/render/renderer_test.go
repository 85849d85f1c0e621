package render

import (
	"slices"
	"testing"

	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/models"
)

const (
	sceneWidth  = 200
	sceneHeight = 150
)

func referenceMesh(t testing.TB) *models.Mesh {
	t.Helper()
	m, err := models.NewCylinder(models.CylinderSpec{
		Radius:    40,
		Height:    70,
		Base:      math3d.V3(0, -35, 0),
		Divisions: 34,
	})
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	return m
}

func referenceState(light math3d.Vec3) FrameState {
	return FrameState{
		Camera: NewCamera(math3d.V3(0, 0, -150), math3d.Vec3{}),
		Light:  whiteLight(light),
	}
}

// renderScene renders the reference cylinder on a black background.
func renderScene(t testing.TB, opts Options, state FrameState) (*Framebuffer, FrameStats) {
	t.Helper()
	fb := NewFramebuffer(sceneWidth, sceneHeight)
	fb.Clear(ColorBlack)
	r := NewRenderer(fb, opts)
	stats := r.Render(referenceMesh(t), state, DefaultMaterial())
	return fb, stats
}

type silhouette struct {
	minX, minY, maxX, maxY int
	count                  int
}

func findSilhouette(fb *Framebuffer) silhouette {
	s := silhouette{minX: fb.Width, minY: fb.Height, maxX: -1, maxY: -1}
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.GetPixel(x, y) == ColorBlack {
				continue
			}
			s.count++
			s.minX, s.maxX = min(s.minX, x), max(s.maxX, x)
			s.minY, s.maxY = min(s.minY, y), max(s.maxY, y)
		}
	}
	return s
}

func TestRenderReferenceScene(t *testing.T) {
	fb, stats := renderScene(t, Options{}, referenceState(math3d.V3(0, 50, 100)))

	s := findSilhouette(fb)
	if s.count == 0 {
		t.Fatal("nothing was drawn")
	}

	// The cylinder is centered on the view axis.
	cx := float64(s.minX+s.maxX) / 2
	cy := float64(s.minY+s.maxY) / 2
	if cx < sceneWidth/2-3 || cx > sceneWidth/2+3 || cy < sceneHeight/2-3 || cy > sceneHeight/2+3 {
		t.Errorf("silhouette center (%g, %g), want near (%d, %d)", cx, cy, sceneWidth/2, sceneHeight/2)
	}

	// The fill is solid apart from the curved top and bottom outline.
	area := (s.maxX - s.minX + 1) * (s.maxY - s.minY + 1)
	if coverage := float64(s.count) / float64(area); coverage < 0.8 {
		t.Errorf("silhouette covers %.2f of its bounding box, want at least 0.8", coverage)
	}

	// The light is behind the cylinder: every visible point is ambient.
	ambient := RGB(40, 40, 40)
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			if c := fb.GetPixel(x, y); c != ColorBlack && c != ambient {
				t.Fatalf("pixel (%d, %d) = %v, want ambient %v", x, y, c, ambient)
			}
		}
	}

	if stats.Triangles != 4*34 {
		t.Errorf("Triangles = %d, want %d", stats.Triangles, 4*34)
	}
	if stats.BackFacing == 0 || stats.Drawn == 0 {
		t.Errorf("stats = %+v, want both culled and drawn triangles", stats)
	}
	if got := stats.BackFacing + stats.Unprojectable + stats.Empty + stats.Drawn; got != stats.Triangles {
		t.Errorf("triangle outcomes sum to %d, want %d", got, stats.Triangles)
	}
	// Folded silhouette triangles may write a pixel twice.
	if stats.Samples < s.count {
		t.Errorf("Samples = %d, fewer than the %d silhouette pixels", stats.Samples, s.count)
	}
}

func TestRenderLightInFrontHighlightsUpperHalf(t *testing.T) {
	fb, _ := renderScene(t, Options{}, referenceState(math3d.V3(0, 50, -100)))
	s := findSilhouette(fb)
	if s.count == 0 {
		t.Fatal("nothing was drawn")
	}

	mid := (s.minY + s.maxY) / 2
	var upper, lower, upperN, lowerN int
	brightest := 0
	for y := s.minY; y <= s.maxY; y++ {
		for x := s.minX; x <= s.maxX; x++ {
			c := fb.GetPixel(x, y)
			if c == ColorBlack {
				continue
			}
			brightest = max(brightest, int(c.R))
			if y < mid {
				upper += int(c.R)
				upperN++
			} else {
				lower += int(c.R)
				lowerN++
			}
		}
	}

	if brightest <= 40 {
		t.Fatalf("brightest channel %d, want a lit surface", brightest)
	}
	if upperN == 0 || lowerN == 0 {
		t.Fatal("silhouette has an empty half")
	}
	if float64(upper)/float64(upperN) <= float64(lower)/float64(lowerN) {
		t.Errorf("upper half mean %g not brighter than lower half %g",
			float64(upper)/float64(upperN), float64(lower)/float64(lowerN))
	}
}

func TestRenderParallelMatchesSerial(t *testing.T) {
	state := referenceState(math3d.V3(0, 50, -100))
	serial, serialStats := renderScene(t, Options{}, state)
	parallel, parallelStats := renderScene(t, Options{Workers: 4}, state)

	if !slices.Equal(serial.Pixels, parallel.Pixels) {
		t.Error("parallel frame differs from serial frame")
	}
	if serialStats != parallelStats {
		t.Errorf("stats differ: serial %+v, parallel %+v", serialStats, parallelStats)
	}
}

func TestRenderAllVerticesPolicyRejectsSilhouette(t *testing.T) {
	state := referenceState(math3d.V3(0, 50, 100))
	_, anyStats := renderScene(t, Options{Visibility: VisibleAnyVertex}, state)
	_, allStats := renderScene(t, Options{Visibility: VisibleAllVertices}, state)

	// Silhouette side triangles have one front-facing edge and one
	// back-facing edge; only the any-vertex policy keeps them.
	if allStats.BackFacing <= anyStats.BackFacing {
		t.Errorf("all-vertices rejected %d triangles, any-vertex %d", allStats.BackFacing, anyStats.BackFacing)
	}
	if allStats.Drawn > anyStats.Drawn || allStats.Samples > anyStats.Samples {
		t.Errorf("all-vertices frame is larger: all %+v, any %+v", allStats, anyStats)
	}
}

func TestRenderCullsMeshOutsideView(t *testing.T) {
	state := referenceState(math3d.V3(0, 50, 100))
	state.Camera.Rotation = math3d.V3(0, 180, 0) // looking away
	fb, stats := renderScene(t, Options{}, state)

	if !stats.MeshCulled {
		t.Error("mesh behind the camera should be culled")
	}
	if s := findSilhouette(fb); s.count != 0 {
		t.Errorf("%d pixels drawn for a culled mesh", s.count)
	}
}

// overlapMesh holds a near triangle followed by a larger far triangle,
// both covering the center of a camera at the origin looking down +Z.
// The far triangle's normals are tilted so it shades darker.
func overlapMesh() *models.Mesh {
	m := models.NewMesh("overlap")
	near := math3d.V3(0, 0, -1)
	far := math3d.V3(0.6, 0, -0.8)
	a := m.AddVertex(math3d.V3(-20, -20, 50), near)
	b := m.AddVertex(math3d.V3(20, -20, 50), near)
	c := m.AddVertex(math3d.V3(0, 20, 50), near)
	d := m.AddVertex(math3d.V3(-40, -40, 100), far)
	e := m.AddVertex(math3d.V3(40, -40, 100), far)
	f := m.AddVertex(math3d.V3(0, 40, 100), far)
	m.AddTriangle(a, b, c)
	m.AddTriangle(d, e, f)
	m.CalculateBounds()
	return m
}

func TestRenderDepthTest(t *testing.T) {
	state := FrameState{
		Camera: NewCamera(math3d.Vec3{}, math3d.Vec3{}),
		Light:  LightSource{Position: math3d.Vec3{}, Intensity: math3d.Splat(255)},
	}
	mat := Material{Diffuse: math3d.Splat(1), Exponent: 1}

	tests := []struct {
		name         string
		opts         Options
		wantNear     bool
		wantRejected bool
	}{
		{"depth test keeps nearest", Options{}, true, true},
		{"draw order without depth test", Options{DisableDepthTest: true}, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(100, 100)
			r := NewRenderer(fb, tc.opts)
			stats := r.Render(overlapMesh(), state, mat)

			center := fb.GetPixel(50, 50)
			if near := center == RGB(255, 255, 255); near != tc.wantNear {
				t.Errorf("center = %v, near triangle visible = %v, want %v", center, near, tc.wantNear)
			}
			if center.R < 150 {
				t.Errorf("center = %v, want a lit surface", center)
			}
			if rejected := stats.DepthRejected > 0; rejected != tc.wantRejected {
				t.Errorf("DepthRejected = %d", stats.DepthRejected)
			}
			if stats.Drawn != 2 {
				t.Errorf("Drawn = %d, want 2", stats.Drawn)
			}
		})
	}
}

func TestRenderStoresReciprocalDepth(t *testing.T) {
	fb := NewFramebuffer(100, 100)
	r := NewRenderer(fb, Options{})
	r.Render(overlapMesh(), FrameState{
		Camera: NewCamera(math3d.Vec3{}, math3d.Vec3{}),
		Light:  whiteLight(math3d.Vec3{}),
	}, DefaultMaterial())

	if got := r.Depth(50, 50); got < 1.0/50-1e-9 || got > 1.0/50+1e-9 {
		t.Errorf("center depth = %g, want %g", got, 1.0/50)
	}
	if got := r.Depth(2, 2); got != 0 {
		t.Errorf("corner depth = %g, want 0 (empty)", got)
	}
}

func TestRenderSkipsUnprojectableTriangles(t *testing.T) {
	m := models.NewMesh("crossing")
	n := math3d.V3(0, 0, -1)
	a := m.AddVertex(math3d.V3(0, 0, 10), n)
	b := m.AddVertex(math3d.V3(5, 0, 10), n)
	c := m.AddVertex(math3d.V3(0, 5, -10), n)
	m.AddTriangle(a, b, c)
	m.CalculateBounds()

	fb := NewFramebuffer(50, 50)
	stats := NewRenderer(fb, Options{}).Render(m, FrameState{
		Camera: NewCamera(math3d.Vec3{}, math3d.Vec3{}),
		Light:  whiteLight(math3d.Vec3{}),
	}, DefaultMaterial())

	if stats.Unprojectable != 1 {
		t.Errorf("Unprojectable = %d, want 1", stats.Unprojectable)
	}
	if stats.Samples != 0 {
		t.Errorf("Samples = %d, want 0", stats.Samples)
	}
}

func TestRenderWireframeWithoutFill(t *testing.T) {
	fb, stats := renderScene(t, Options{DisableFill: true, Wireframe: true},
		referenceState(math3d.V3(0, 50, 100)))

	if stats.Samples != 0 {
		t.Errorf("Samples = %d, want 0 with fill disabled", stats.Samples)
	}
	if stats.Drawn == 0 {
		t.Error("no triangles outlined")
	}
	if s := findSilhouette(fb); s.count == 0 {
		t.Error("wireframe drew nothing")
	}
	for _, p := range fb.Pixels {
		if p != ColorBlack && p != WireColor {
			t.Fatalf("unexpected pixel color %v", p)
		}
	}
}

func TestRenderOverlays(t *testing.T) {
	state := referenceState(math3d.V3(0, 50, -100))
	plain, _ := renderScene(t, Options{}, state)
	decorated, _ := renderScene(t, Options{Normals: true, LightMarker: true}, state)

	normals := 0
	for _, p := range decorated.Pixels {
		if p == NormalColor {
			normals++
		}
	}
	if normals == 0 {
		t.Error("no normal segments drawn")
	}
	if slices.Equal(plain.Pixels, decorated.Pixels) {
		t.Error("overlays changed nothing")
	}
}

func TestRenderEmptyViewport(t *testing.T) {
	r := NewRenderer(NewFramebuffer(0, 0), Options{})
	stats := r.Render(referenceMesh(t), referenceState(math3d.V3(0, 50, 100)), DefaultMaterial())
	if stats.Samples != 0 || stats.Drawn != 0 {
		t.Errorf("stats = %+v, want nothing drawn", stats)
	}
}

func BenchmarkRenderReferenceScene(b *testing.B) {
	mesh := referenceMesh(b)
	state := referenceState(math3d.V3(0, 50, -100))
	fb := NewFramebuffer(320, 240)
	r := NewRenderer(fb, Options{})

	for b.Loop() {
		fb.Clear(ColorBlack)
		r.Render(mesh, state, DefaultMaterial())
	}
}

func BenchmarkRenderReferenceSceneParallel(b *testing.B) {
	mesh := referenceMesh(b)
	state := referenceState(math3d.V3(0, 50, -100))
	fb := NewFramebuffer(320, 240)
	r := NewRenderer(fb, Options{Workers: 4})

	for b.Loop() {
		fb.Clear(ColorBlack)
		r.Render(mesh, state, DefaultMaterial())
	}
}
