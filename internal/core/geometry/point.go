package geometry

import "math"

// Pt is a point (or free vector) in the 2D Cartesian plane.
type Pt struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns the component-wise sum of two points.
func (p Pt) Add(o Pt) Pt { return Pt{p.X + o.X, p.Y + o.Y} }

// Sub returns the component-wise difference of two points.
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// Scale returns the point scaled by s.
func (p Pt) Scale(s float64) Pt { return Pt{p.X * s, p.Y * s} }

// Magnitude returns the Euclidean length of p as a vector.
func (p Pt) Magnitude() float64 { return math.Hypot(p.X, p.Y) }

// Normalized returns p scaled to unit length. The zero vector carries
// no direction and normalizes to itself.
func (p Pt) Normalized() Pt {
	m := p.Magnitude()
	if m == 0 {
		return Pt{}
	}
	return Pt{p.X / m, p.Y / m}
}

// Dot returns the scalar product of two vectors.
func (p Pt) Dot(o Pt) float64 { return p.X*o.X + p.Y*o.Y }

// Cross returns the 2D cross product (determinant) of two vectors.
func (p Pt) Cross(o Pt) float64 { return p.X*o.Y - p.Y*o.X }

// AngleTo returns the signed angle in radians from vector p to vector o.
// Positive values mean o lies counter-clockwise of p.
func (p Pt) AngleTo(o Pt) float64 { return math.Atan2(p.Cross(o), p.Dot(o)) }

// Distance computes Euclidean distance between two points.
func Distance(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Heading returns the unit vector pointing along the given heading angle.
func Heading(radians float64) Pt { return Pt{math.Cos(radians), math.Sin(radians)} }

// Rotate rotates a point about the origin by the given angle in radians.
func Rotate(p Pt, radians float64) Pt {
	sin, cos := math.Sincos(radians)
	return Pt{p.X*cos - p.Y*sin, p.Y*cos + p.X*sin}
}

// CloseEnough reports whether a lies within threshold of b.
func CloseEnough(a, b Pt, threshold float64) bool {
	return Distance(a, b) < threshold
}
