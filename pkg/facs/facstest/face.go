// Package facstest builds synthetic face meshes for tests.
package facstest

import "github.com/teslashibe/recemotion/pkg/facs"

// Face describes a synthetic frontal face. Only the landmarks used by the
// feature extractor are placed; every other point sits at the nose root.
//
// With the defaults the eye corners are 3 units apart, each eye is 1 unit
// wide, and the nose root is at the origin.
type Face struct {
	EyeOpen    float64 // Half height of the lid points (EAR = 2*EyeOpen)
	InnerBrowY float64 // Height of the inner brows above the nose root
	InnerBrowX float64 // Half gap between the inner brows
	OuterBrowY float64 // Height of the outer brows
	OuterBrowX float64 // Horizontal offset of the outer brows
	YawZ       float64 // Depth offset applied to the left eye corner
	Scale      float64 // Uniform scale applied to every point
}

// Neutral returns the default face.
func Neutral() Face {
	return Face{
		EyeOpen:    0.1,
		InnerBrowY: 0.4,
		InnerBrowX: 0.3,
		OuterBrowY: 0.8,
		OuterBrowX: 0.6,
		Scale:      1,
	}
}

// Frame renders the face into a full mesh.
func (f Face) Frame() facs.Frame {
	s := f.Scale
	if s == 0 {
		s = 1
	}
	frame := make(facs.Frame, facs.MeshSize)

	set := func(i int, x, y, z float64) {
		frame[i] = facs.Point3D{X: x * s, Y: y * s, Z: z * s}
	}

	// Left eye: outer -1.5, inner -0.5.
	set(facs.LeftEye[0], -1.5, 0, f.YawZ)
	set(facs.LeftEye[1], -1.2, f.EyeOpen, 0)
	set(facs.LeftEye[2], -0.8, f.EyeOpen, 0)
	set(facs.LeftEye[3], -0.5, 0, 0)
	set(facs.LeftEye[4], -0.8, -f.EyeOpen, 0)
	set(facs.LeftEye[5], -1.2, -f.EyeOpen, 0)

	// Right eye: inner 0.5, outer 1.5.
	set(facs.RightEye[0], 0.5, 0, 0)
	set(facs.RightEye[1], 0.8, f.EyeOpen, 0)
	set(facs.RightEye[2], 1.2, f.EyeOpen, 0)
	set(facs.RightEye[3], 1.5, 0, 0)
	set(facs.RightEye[4], 1.2, -f.EyeOpen, 0)
	set(facs.RightEye[5], 0.8, -f.EyeOpen, 0)

	set(facs.BrowLeftInner, f.InnerBrowX, f.InnerBrowY, 0)
	set(facs.BrowRightInner, -f.InnerBrowX, f.InnerBrowY, 0)
	set(facs.BrowLeftOuter, f.OuterBrowX, f.OuterBrowY, 0)
	set(facs.BrowRightOuter, -f.OuterBrowX, f.OuterBrowY, 0)

	return frame
}

// Flat renders the face as packed x,y,z coordinates.
func (f Face) Flat() []float64 {
	frame := f.Frame()
	out := make([]float64, 0, len(frame)*3)
	for _, p := range frame {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}
