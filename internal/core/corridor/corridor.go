package corridor

import (
	"errors"
	"fmt"

	"github.com/zeusync/boxnav/internal/core/geometry"
)

// Corridor-specific errors
var (
	ErrCorridorInvalid = errors.New("invalid corridor")
)

// Corridor is an ordered sequence of overlapping boxes. The overlap
// between box i and box i+1 is the doorway the agent crosses to advance.
// A corridor is built once and never mutated, so it can be shared
// read-only across a whole run.
type Corridor struct {
	boxes    []geometry.Box
	doorways []geometry.Pt
}

// New validates the box sequence and precomputes the doorway midpoint of
// every adjacent pair. Construction fails fast: a missing overlap is
// reported here, never at simulation time.
func New(boxes ...geometry.Box) (*Corridor, error) {
	if len(boxes) == 0 {
		return nil, fmt.Errorf("%w: no boxes", ErrCorridorInvalid)
	}

	c := &Corridor{
		boxes:    make([]geometry.Box, len(boxes)),
		doorways: make([]geometry.Pt, 0, len(boxes)-1),
	}
	copy(c.boxes, boxes)

	for i := 0; i+1 < len(c.boxes); i++ {
		region, ok := c.boxes[i].Overlap(c.boxes[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: boxes %d and %d do not overlap", ErrCorridorInvalid, i, i+1)
		}
		c.doorways = append(c.doorways, region.Centroid())
	}
	return c, nil
}

// Len returns the number of boxes.
func (c *Corridor) Len() int { return len(c.boxes) }

// BoxAt returns the box at index i.
func (c *Corridor) BoxAt(i int) geometry.Box { return c.boxes[i] }

// Doorway returns the midpoint of the overlap between box i and box i+1.
func (c *Corridor) Doorway(i int) geometry.Pt { return c.doorways[i] }

// FinalTarget returns the designated target of the last box.
func (c *Corridor) FinalTarget() geometry.Pt {
	return c.boxes[len(c.boxes)-1].Target
}

// ContainingIndex returns the index of the first box at or after `from`
// that contains p. The second return value is false when no remaining
// box contains the point.
func (c *Corridor) ContainingIndex(p geometry.Pt, from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(c.boxes); i++ {
		if c.boxes[i].Contains(p) {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether any box of the corridor contains p.
func (c *Corridor) Contains(p geometry.Pt) bool {
	for _, b := range c.boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}
