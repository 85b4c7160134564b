package viz

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Camera is an orthographic view of body positions. 2D positions lie in
// the z = 0 plane; rotation lets 3D systems be inspected from any side.
type Camera struct {
	RotX, RotY, RotZ float64
	Zoom             float64

	center [3]float64
	extent float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1.0, extent: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(100, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.01, c.Zoom/1.25) }

func (c *Camera) ResetView() {
	c.RotX, c.RotY, c.RotZ = 0, 0, 0
	c.Zoom = 1.0
}

// Fit centres the view on the bounding box of points and scales it so the
// box fills the view with a margin.
func (c *Camera) Fit(points []dynamo.Vector) {
	if len(points) == 0 {
		return
	}
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for k := 0; k < 3; k++ {
			v := 0.0
			if k < len(p) {
				v = p[k]
			}
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}

	extent := 0.0
	for k := 0; k < 3; k++ {
		c.center[k] = (lo[k] + hi[k]) / 2
		extent = math.Max(extent, (hi[k]-lo[k])/2)
	}
	if extent == 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		extent = 1
	}
	c.extent = extent * 1.2
}

func (c *Camera) rotate(p [3]float64) [3]float64 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p[1], p[2] = p[1]*cx-p[2]*sx, p[1]*sx+p[2]*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p[0], p[2] = p[0]*cy+p[2]*sy, -p[0]*sy+p[2]*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p[0], p[1] = p[0]*cz-p[1]*sz, p[0]*sz+p[1]*cz
	return p
}

// Scale is the number of dots per world unit for a w x h dot viewport.
func (c *Camera) Scale(w, h int) float64 {
	half := float64(min(w, h)) / 2
	return half / c.extent * c.Zoom
}

// Project maps a world position to dot coordinates of a w x h viewport and
// reports whether it lands inside.
func (c *Camera) Project(p dynamo.Vector, w, h int) (int, int, bool) {
	var q [3]float64
	for k := 0; k < len(p) && k < 3; k++ {
		q[k] = p[k] - c.center[k]
	}
	q = c.rotate(q)

	scale := c.Scale(w, h)
	fx := float64(w)/2 + q[0]*scale
	fy := float64(h)/2 - q[1]*scale
	if math.IsNaN(fx) || math.IsNaN(fy) || math.Abs(fx) > 1e9 || math.Abs(fy) > 1e9 {
		return 0, 0, false
	}
	x, y := int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, x >= 0 && x < w && y >= 0 && y < h
}
