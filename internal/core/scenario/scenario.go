package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/boxnav/internal/core/corridor"
	"github.com/zeusync/boxnav/internal/core/geometry"
	"github.com/zeusync/boxnav/internal/core/navigator"
)

// Scenario-specific errors
var (
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Scenario describes one complete simulation setup: the corridor layout,
// the navigator kind and its motion parameters, and the starting pose.
// Angles are given in degrees in scenario files and converted to radians
// when the navigator is built.
type Scenario struct {
	Name      string         `json:"name" yaml:"name"`
	Navigator navigator.Kind `json:"navigator" yaml:"navigator"`
	Start     StartSpec      `json:"start" yaml:"start"`
	Motion    MotionSpec     `json:"motion" yaml:"motion"`
	Boxes     []BoxSpec      `json:"boxes" yaml:"boxes"`
}

// StartSpec is the agent's initial pose.
type StartSpec struct {
	Position       geometry.Pt `json:"position" yaml:"position"`
	HeadingDegrees float64     `json:"heading_degrees" yaml:"heading_degrees"`
}

// MotionSpec carries the navigator parameters in file-friendly units.
type MotionSpec struct {
	StepDistance           float64 `json:"step_distance" yaml:"step_distance"`
	RotationLimitDegrees   float64 `json:"rotation_limit_degrees" yaml:"rotation_limit_degrees"`
	DistanceTolerance      float64 `json:"distance_tolerance" yaml:"distance_tolerance"`
	RandomDeviationDegrees float64 `json:"random_deviation_degrees" yaml:"random_deviation_degrees"`
	Seed                   int64   `json:"seed" yaml:"seed"`
	ActionLimit            int     `json:"action_limit" yaml:"action_limit"`
	AllowOutOfBounds       bool    `json:"allow_out_of_bounds" yaml:"allow_out_of_bounds"`
}

// BoxSpec describes one corridor box either by three corners (lower
// left, upper left, upper right) or by axis-aligned extents. An optional
// rotation in degrees spins the box about the origin.
type BoxSpec struct {
	Corners         *CornerSpec  `json:"corners,omitempty" yaml:"corners,omitempty"`
	Aligned         *AlignedSpec `json:"aligned,omitempty" yaml:"aligned,omitempty"`
	Target          geometry.Pt  `json:"target" yaml:"target"`
	RotationDegrees float64      `json:"rotation_degrees,omitempty" yaml:"rotation_degrees,omitempty"`
}

type CornerSpec struct {
	A geometry.Pt `json:"a" yaml:"a"`
	B geometry.Pt `json:"b" yaml:"b"`
	C geometry.Pt `json:"c" yaml:"c"`
}

type AlignedSpec struct {
	Left  float64 `json:"left" yaml:"left"`
	Right float64 `json:"right" yaml:"right"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// LoadYAML loads a scenario from a YAML reader.
func LoadYAML(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario yaml: %w", err)
	}
	return &s, nil
}

// LoadJSON loads a scenario from a JSON reader.
func LoadJSON(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario json: %w", err)
	}
	return &s, nil
}

// LoadFile loads a scenario from disk, picking the decoder from the file
// extension.
func LoadFile(path string) (*Scenario, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: unsupported scenario format %q", ErrInvalidScenario, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	if ext == ".json" {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Validate checks the scenario before anything is constructed from it.
func (s *Scenario) Validate() error {
	switch s.Navigator {
	case navigator.KindPerfect, navigator.KindWandering:
	default:
		return fmt.Errorf("%w: unknown navigator kind %q", ErrInvalidScenario, s.Navigator)
	}
	if len(s.Boxes) == 0 {
		return fmt.Errorf("%w: at least one box is required", ErrInvalidScenario)
	}
	for i, b := range s.Boxes {
		if (b.Corners == nil) == (b.Aligned == nil) {
			return fmt.Errorf("%w: box %d must set exactly one of corners or aligned", ErrInvalidScenario, i)
		}
	}
	return nil
}

// NavigatorConfig converts the motion parameters to radians.
func (s *Scenario) NavigatorConfig() navigator.Config {
	return navigator.Config{
		StepDistance:      s.Motion.StepDistance,
		RotationLimit:     radians(s.Motion.RotationLimitDegrees),
		DistanceTolerance: s.Motion.DistanceTolerance,
		RandomDeviation:   radians(s.Motion.RandomDeviationDegrees),
		Seed:              s.Motion.Seed,
		ActionLimit:       s.Motion.ActionLimit,
		AllowOutOfBounds:  s.Motion.AllowOutOfBounds,
	}
}

// StartPose converts the starting pose to radians.
func (s *Scenario) StartPose() navigator.Pose {
	return navigator.Pose{
		Position: s.Start.Position,
		Heading:  radians(s.Start.HeadingDegrees),
	}
}

// BuildCorridor constructs and validates the corridor.
func (s *Scenario) BuildCorridor() (*corridor.Corridor, error) {
	boxes := make([]geometry.Box, 0, len(s.Boxes))
	for i, spec := range s.Boxes {
		box, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
		boxes = append(boxes, box)
	}
	return corridor.New(boxes...)
}

// Build validates the scenario and constructs the corridor plus the
// navigator placed at the starting pose.
func (s *Scenario) Build() (*corridor.Corridor, navigator.Navigator, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	c, err := s.BuildCorridor()
	if err != nil {
		return nil, nil, err
	}
	nav, err := navigator.New(s.Navigator, c, s.StartPose(), s.NavigatorConfig())
	if err != nil {
		return nil, nil, err
	}
	return c, nav, nil
}

func (b BoxSpec) build() (geometry.Box, error) {
	rotation := radians(b.RotationDegrees)
	if b.Aligned != nil {
		a := b.Aligned
		if rotation != 0 {
			return geometry.RotatedBox(
				geometry.Pt{X: a.Left, Y: a.Lower},
				geometry.Pt{X: a.Left, Y: a.Upper},
				geometry.Pt{X: a.Right, Y: a.Upper},
				b.Target, rotation,
			)
		}
		return geometry.AlignedBox(a.Left, a.Right, a.Lower, a.Upper, b.Target)
	}
	if rotation != 0 {
		return geometry.RotatedBox(b.Corners.A, b.Corners.B, b.Corners.C, b.Target, rotation)
	}
	return geometry.NewBox(b.Corners.A, b.Corners.B, b.Corners.C, b.Target)
}

func radians(degrees float64) float64 { return degrees * math.Pi / 180 }

// Default returns the built-in scenario: the three-box hallway route the
// project ships as its reference corridor, starting at the origin facing
// along +y.
func Default() *Scenario {
	return &Scenario{
		Name:      "hallway",
		Navigator: navigator.KindPerfect,
		Start:     StartSpec{Position: geometry.Pt{X: 0, Y: 0}, HeadingDegrees: 90},
		Motion: MotionSpec{
			StepDistance:         50,
			RotationLimitDegrees: 5,
			DistanceTolerance:    50,
			Seed:                 1,
			ActionLimit:          1000,
		},
		Boxes: []BoxSpec{
			{
				Corners: &CornerSpec{
					A: geometry.Pt{X: -185, Y: 1250},
					B: geometry.Pt{X: 420, Y: 1250},
					C: geometry.Pt{X: 420, Y: -350},
				},
				Target: geometry.Pt{X: 10, Y: 650},
			},
			{
				Corners: &CornerSpec{
					A: geometry.Pt{X: -1110, Y: 775},
					B: geometry.Pt{X: 420, Y: 775},
					C: geometry.Pt{X: 420, Y: 450},
				},
				Target: geometry.Pt{X: -835, Y: 650},
			},
			{
				Corners: &CornerSpec{
					A: geometry.Pt{X: -910, Y: 100},
					B: geometry.Pt{X: -910, Y: 775},
					C: geometry.Pt{X: -750, Y: 775},
				},
				Target: geometry.Pt{X: -820, Y: 200},
			},
		},
	}
}
