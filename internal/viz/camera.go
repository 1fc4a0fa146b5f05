package viz

import (
	"math"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chargesim/internal/dynamo"
)

const (
	defaultDistance = 5.0
	minZoom         = 0.1
	maxZoom         = 10.0
)

// Camera is an orbiting perspective camera. World points are scaled by Scale,
// rotated about the X, Y and Z axes in turn, zoomed, and then viewed from
// (0, 0, Distance) looking down -Z.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
	Scale            float64
}

func NewCamera() *Camera {
	return &Camera{Distance: defaultDistance, Near: 0.1, RotX: -0.4, Zoom: 1, Scale: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(maxZoom, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(minZoom, c.Zoom/1.2) }

// Fit chooses Scale so that every point lies within one view unit of the
// origin, leaving a margin around the farthest one.
func (c *Camera) Fit(points []dynamo.Vec3) {
	extent := 0.0
	for _, p := range points {
		extent = math.Max(extent, p.Length())
	}
	if extent == 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		c.Scale = 1
		return
	}
	c.Scale = 0.8 / extent
}

// RotatePoint rotates p around the camera's axes.
func (c *Camera) RotatePoint(p dynamo.Vec3) dynamo.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Unrotate is the inverse of RotatePoint.
func (c *Camera) Unrotate(p dynamo.Vec3) dynamo.Vec3 {
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz+p.Y*sz, -p.X*sz+p.Y*cz
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy-p.Z*sy, p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx+p.Z*sx, -p.Y*sx+p.Z*cx
	return p
}

func (c *Camera) toView(p dynamo.Vec3) dynamo.Vec3 {
	return c.RotatePoint(p.Scale(c.Scale)).Scale(c.Zoom)
}

func (c *Camera) toWorld(v dynamo.Vec3) dynamo.Vec3 {
	return c.Unrotate(v.Scale(1 / c.Zoom)).Scale(1 / c.Scale)
}

// Eye is the camera position in world coordinates.
func (c *Camera) Eye() dynamo.Vec3 {
	return c.toWorld(dynamo.Vec3{Z: c.Distance})
}

func pixelScale(sw, sh int) float64 {
	return float64(min(sw, sh)) / 3.0
}

// Project converts world coordinates to screen coordinates on an sw by sh
// surface. It returns x, y, view depth and whether the point is on screen.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.toView(p)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	ps := pixelScale(sw, sh)
	sx := int(math.Round(rot.X*scale*ps)) + sw/2
	sy := int(math.Round(-rot.Y*scale*ps)) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Ray returns the world-space ray from the eye through screen point (sx, sy).
func (c *Camera) Ray(sx, sy, sw, sh int) dynamo.Ray {
	ps := pixelScale(sw, sh)
	onPlane := dynamo.Vec3{
		X: float64(sx-sw/2) / ps,
		Y: -float64(sy-sh/2) / ps,
	}
	eye := c.Eye()
	return dynamo.NewRay(eye, c.toWorld(onPlane).Sub(eye))
}

// Radius projects a world-space radius at p into screen units.
func (c *Camera) Radius(p dynamo.Vec3, r float64, sw, sh int) int {
	rot := c.toView(p)
	if rot.Z >= c.Distance-c.Near {
		return 0
	}
	scale := c.Distance / (c.Distance - rot.Z)
	return int(math.Round(r * c.Scale * c.Zoom * scale * pixelScale(sw, sh)))
}

type Edge struct {
	Start, End dynamo.Vec3
	Color      lipgloss.Color
}

// Wireframe is a batch of world-space segments drawn back to front.
type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                                  { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vec3, c lipgloss.Color) { w.Edges = append(w.Edges, Edge{s, e, c}) }
func (w *Wireframe) AddPoint(p dynamo.Vec3, c lipgloss.Color)   { w.Edges = append(w.Edges, Edge{p, p, c}) }
func (w *Wireframe) Clear()                                     { w.Edges = w.Edges[:0] }

// AddPolyline adds consecutive segments through points.
func (w *Wireframe) AddPolyline(points []dynamo.Vec3, c lipgloss.Color) {
	for i := 1; i < len(points); i++ {
		w.AddEdge(points[i-1], points[i], c)
	}
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	color          lipgloss.Color
}

// Render3D draws the wireframe to the canvas using a simple painter's algorithm.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Color})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.SetColor(e.x1, e.y1, e.color)
		} else {
			c.DrawLineColor(e.x1, e.y1, e.x2, e.y2, e.color)
		}
	}
}

// Axes returns the three coordinate axes of length l.
func Axes(l float64, c lipgloss.Color) *Wireframe {
	w, o := NewWireframe(), dynamo.Vec3{}
	w.AddEdge(o, dynamo.Vec3{X: l}, c)
	w.AddEdge(o, dynamo.Vec3{Y: l}, c)
	w.AddEdge(o, dynamo.Vec3{Z: l}, c)
	return w
}
