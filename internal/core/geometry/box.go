package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Geometry-specific errors
var (
	ErrDegenerateBox    = errors.New("box corners do not form a proper rectangle")
	ErrTargetOutsideBox = errors.New("target point lies outside the box")
)

// areaEps is the threshold below which an overlap polygon is treated as
// empty. Adjacent boxes that merely share an edge do not form a doorway.
const areaEps = 1e-9

// Box is an oriented rectangle described by three of its corners:
// A (lower left), B (upper left) and C (upper right). The fourth corner
// is implied. Each box designates a target point the agent aims for
// while inside it.
type Box struct {
	A      Pt
	B      Pt
	C      Pt
	Target Pt

	ab    Pt
	bc    Pt
	dotAB float64
	dotBC float64
}

// NewBox constructs a box from three corners and a target point. It fails
// when the corners are (near) collinear or when the target falls outside
// the resulting rectangle.
func NewBox(a, b, c, target Pt) (Box, error) {
	box := Box{A: a, B: b, C: c, Target: target}
	box.ab = b.Sub(a)
	box.bc = c.Sub(b)
	box.dotAB = box.ab.Dot(box.ab)
	box.dotBC = box.bc.Dot(box.bc)

	if math.Abs(box.ab.Cross(box.bc)) < areaEps {
		return Box{}, fmt.Errorf("%w: A=%v B=%v C=%v", ErrDegenerateBox, a, b, c)
	}
	if !box.Contains(target) {
		return Box{}, fmt.Errorf("%w: target=%v", ErrTargetOutsideBox, target)
	}
	return box, nil
}

// AlignedBox constructs an axis-aligned box from its extents.
func AlignedBox(left, right, lower, upper float64, target Pt) (Box, error) {
	return NewBox(Pt{left, lower}, Pt{left, upper}, Pt{right, upper}, target)
}

// RotatedBox constructs a box whose corners and target have been rotated
// about the origin by the given angle in radians.
func RotatedBox(a, b, c, target Pt, rotation float64) (Box, error) {
	return NewBox(
		Rotate(a, rotation),
		Rotate(b, rotation),
		Rotate(c, rotation),
		Rotate(target, rotation),
	)
}

// Contains reports whether the point lies inside the box (boundary
// inclusive). Uses the projection test: M is inside iff its projections
// onto AB and BC both fall within the respective edge lengths.
func (b Box) Contains(m Pt) bool {
	am := m.Sub(b.A)
	bm := m.Sub(b.B)
	pAB := b.ab.Dot(am)
	pBC := b.bc.Dot(bm)
	return 0 <= pAB && pAB <= b.dotAB && 0 <= pBC && pBC <= b.dotBC
}

// Corners returns the four corners in A, B, C, D walk order.
func (b Box) Corners() [4]Pt {
	return [4]Pt{b.A, b.B, b.C, b.A.Add(b.bc)}
}

// Width returns the length of the BC edge.
func (b Box) Width() float64 { return Distance(b.B, b.C) }

// Height returns the length of the AB edge.
func (b Box) Height() float64 { return Distance(b.A, b.B) }

// Overlap computes the region shared by two boxes as a convex polygon by
// clipping this box against the other (Sutherland–Hodgman). The second
// return value is false when the overlap is empty or degenerate: regions
// whose area falls below a small epsilon, such as two boxes touching
// along an edge, do not count as an overlap.
func (b Box) Overlap(other Box) (Polygon, bool) {
	bc := b.Corners()
	oc := other.Corners()
	subject := Polygon(bc[:]).counterClockwise()
	clip := Polygon(oc[:]).counterClockwise()
	clipped := clipPolygon(subject, clip)
	if len(clipped) < 3 || clipped.Area() < areaEps {
		return nil, false
	}
	return clipped, true
}

// Polygon is a convex polygon given as an ordered vertex list.
type Polygon []Pt

// signedArea is positive for counter-clockwise winding.
func (p Polygon) signedArea() float64 {
	var sum float64
	for i, v := range p {
		w := p[(i+1)%len(p)]
		sum += v.Cross(w)
	}
	return sum / 2
}

// counterClockwise returns the polygon with counter-clockwise winding,
// reversing the vertex order when needed.
func (p Polygon) counterClockwise() Polygon {
	if p.signedArea() >= 0 {
		return p
	}
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// Area returns the polygon area via the shoelace formula.
func (p Polygon) Area() float64 { return math.Abs(p.signedArea()) }

// Centroid returns the area centroid of the polygon. For the degenerate
// near-zero-area case it falls back to the vertex mean.
func (p Polygon) Centroid() Pt {
	var signed float64
	var cx, cy float64
	for i, v := range p {
		w := p[(i+1)%len(p)]
		cross := v.Cross(w)
		signed += cross
		cx += (v.X + w.X) * cross
		cy += (v.Y + w.Y) * cross
	}
	if math.Abs(signed) < areaEps {
		var mean Pt
		for _, v := range p {
			mean = mean.Add(v)
		}
		return mean.Scale(1 / float64(len(p)))
	}
	return Pt{cx / (3 * signed), cy / (3 * signed)}
}

// clipPolygon clips subject against each edge of the convex clip polygon.
func clipPolygon(subject, clip Polygon) Polygon {
	out := subject
	for i := range clip {
		edgeA := clip[i]
		edgeB := clip[(i+1)%len(clip)]
		out = clipAgainstEdge(out, edgeA, edgeB)
		if len(out) == 0 {
			return nil
		}
	}
	return out
}

// clipAgainstEdge keeps the part of the polygon on the inner side of the
// directed edge a->b. The clip polygon winds counter-clockwise, so inner
// means a non-negative cross product.
func clipAgainstEdge(poly Polygon, a, b Pt) Polygon {
	edge := b.Sub(a)
	inside := func(p Pt) bool { return edge.Cross(p.Sub(a)) >= 0 }

	var out Polygon
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn, prevIn := inside(cur), inside(prev)
		switch {
		case curIn && prevIn:
			out = append(out, cur)
		case curIn && !prevIn:
			out = append(out, intersect(prev, cur, a, b), cur)
		case !curIn && prevIn:
			out = append(out, intersect(prev, cur, a, b))
		}
	}
	return out
}

// intersect returns the intersection of segment p1-p2 with the infinite
// line through a and b.
func intersect(p1, p2, a, b Pt) Pt {
	d1 := p2.Sub(p1)
	d2 := b.Sub(a)
	denom := d1.Cross(d2)
	if math.Abs(denom) < areaEps {
		return p2
	}
	t := a.Sub(p1).Cross(d2) / denom
	return p1.Add(d1.Scale(t))
}
