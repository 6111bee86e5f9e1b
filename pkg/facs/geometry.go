// Package facs infers a discrete emotion from 3D face mesh landmarks.
//
// Frames are reduced to a handful of scale-normalized geometric features that
// approximate FACS action units. A per-user baseline is learned from the first
// frames of a session (median and MAD-derived sigma per feature) and later frames
// are scored against it and classified with ordered threshold rules.
package facs

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point3D is a single landmark position. Coordinates follow the MediaPipe
// face mesh convention (x, y normalized to the image, z relative depth).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the point as a gonum vector.
func (p Point3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Finite reports whether every coordinate is a finite number.
func (p Point3D) Finite() bool {
	return finite(p.X) && finite(p.Y) && finite(p.Z)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance returns the Euclidean distance between two points.
func (p Point3D) Distance(other Point3D) float64 {
	return r3.Norm(r3.Sub(p.Vec(), other.Vec()))
}

// Frame is one ordered set of mesh landmarks.
type Frame []Point3D

// FrameFromFlat converts packed x,y,z triples into a Frame.
// A trailing partial triple is ignored.
func FrameFromFlat(coords []float64) Frame {
	n := len(coords) / 3
	frame := make(Frame, n)
	for i := 0; i < n; i++ {
		frame[i] = Point3D{X: coords[i*3], Y: coords[i*3+1], Z: coords[i*3+2]}
	}
	return frame
}

// Valid reports whether the frame has enough points for the mesh topology.
func (f Frame) Valid() bool {
	return len(f) >= MeshSize
}
