package facs

import (
	"fmt"
	"math"
)

// Feature identifies one geometric measurement.
type Feature int

const (
	// FeatureEAR is the mean eye aspect ratio of both eyes.
	FeatureEAR Feature = iota
	// FeatureAU1 is the inner brow to nose root distance (inner brow raiser).
	FeatureAU1
	// FeatureAU2 is the outer brow to nose root distance (outer brow raiser).
	FeatureAU2
	// FeatureAU4 is the distance between the inner brows (brow lowerer).
	FeatureAU4
)

// Features lists every feature the extractor produces, in a stable order.
var Features = []Feature{FeatureEAR, FeatureAU1, FeatureAU2, FeatureAU4}

var featureNames = map[Feature]string{
	FeatureEAR: "EAR",
	FeatureAU1: "AU1_Dist",
	FeatureAU2: "AU2_Dist",
	FeatureAU4: "AU4_Dist",
}

// String returns the wire name of the feature.
func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Feature(%d)", int(f))
}

// ParseFeature resolves a wire name such as "AU4_Dist".
func ParseFeature(name string) (Feature, bool) {
	for f, n := range featureNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// MarshalText lets FeatureVector encode with string keys.
func (f Feature) MarshalText() ([]byte, error) {
	if _, ok := featureNames[f]; !ok {
		return nil, fmt.Errorf("unknown feature %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText parses a wire name.
func (f *Feature) UnmarshalText(text []byte) error {
	parsed, ok := ParseFeature(string(text))
	if !ok {
		return fmt.Errorf("unknown feature %q", text)
	}
	*f = parsed
	return nil
}

// FeatureVector holds the measurements extracted from one frame.
type FeatureVector map[Feature]float64

// GateConfig holds the head-pose quality thresholds.
type GateConfig struct {
	MaxYawRatio float64 // Reject when |z33 - z263| / ipd exceeds this
	MinIPD      float64 // Reject when the eye corners are closer than this
}

// DefaultGateConfig returns thresholds tuned for a handheld front camera.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxYawRatio: 0.25, // ~15-20 degrees of yaw
		MinIPD:      0.1,
	}
}

// CheckHeadPose rejects frames where the face is turned or too far away.
// Off-angle frames would otherwise skew the calibration baseline.
func CheckHeadPose(frame Frame, cfg GateConfig) error {
	if !frame.Valid() {
		return fmt.Errorf("%w: got %d points, need %d", ErrInsufficientLandmarks, len(frame), MeshSize)
	}
	if err := checkFinite(frame); err != nil {
		return err
	}

	left := frame[LeftEyeCorner]
	right := frame[RightEyeCorner]

	ipd := left.Distance(right)
	if !finite(ipd) {
		return fmt.Errorf("%w: ipd %v", ErrNonFiniteLandmarks, ipd)
	}
	if ipd < cfg.MinIPD {
		return fmt.Errorf("%w: ipd %.4f < %.4f", ErrFaceTooSmall, ipd, cfg.MinIPD)
	}

	yaw := math.Abs(left.Z-right.Z) / ipd
	if !finite(yaw) {
		return fmt.Errorf("%w: yaw ratio %v", ErrNonFiniteLandmarks, yaw)
	}
	if yaw > cfg.MaxYawRatio {
		return fmt.Errorf("%w: ratio %.3f > %.3f", ErrHeadPoseYaw, yaw, cfg.MaxYawRatio)
	}
	return nil
}

// checkFinite rejects frames with NaN or infinite coordinates on any landmark
// the extractor reads.
func checkFinite(frame Frame) error {
	for _, i := range usedLandmarks {
		if !frame[i].Finite() {
			return fmt.Errorf("%w: point %d", ErrNonFiniteLandmarks, i)
		}
	}
	return nil
}

// Extract computes the feature vector for a frame.
// It has no side effects. Short frames return ErrInsufficientLandmarks and
// frames whose features are not finite return ErrNonFiniteLandmarks.
func Extract(frame Frame) (FeatureVector, error) {
	if !frame.Valid() {
		return nil, fmt.Errorf("%w: got %d points, need %d", ErrInsufficientLandmarks, len(frame), MeshSize)
	}
	if err := checkFinite(frame); err != nil {
		return nil, err
	}

	ipd := ipdScale(frame)
	noseRoot := frame[NoseRoot]

	ear := (eyeAspectRatio(frame, LeftEye) + eyeAspectRatio(frame, RightEye)) / 2

	inner := (frame[BrowLeftInner].Distance(noseRoot) + frame[BrowRightInner].Distance(noseRoot)) / 2
	outer := (frame[BrowLeftOuter].Distance(noseRoot) + frame[BrowRightOuter].Distance(noseRoot)) / 2
	brows := frame[BrowLeftInner].Distance(frame[BrowRightInner])

	fv := FeatureVector{
		FeatureEAR: ear, // ratio, already scale invariant
		FeatureAU1: inner / ipd,
		FeatureAU2: outer / ipd,
		FeatureAU4: brows / ipd,
	}
	for f, v := range fv {
		if !finite(v) {
			return nil, fmt.Errorf("%w: %s is %v", ErrNonFiniteLandmarks, f, v)
		}
	}
	return fv, nil
}

// ipdScale is the eye-corner distance, floored at 1.0 so degenerate meshes
// cannot blow up the normalized distances.
func ipdScale(frame Frame) float64 {
	d := frame[LeftEyeCorner].Distance(frame[RightEyeCorner])
	if d < 1.0 {
		return 1.0
	}
	return d
}

func eyeAspectRatio(frame Frame, eye [6]int) float64 {
	v1 := frame[eye[1]].Distance(frame[eye[5]])
	v2 := frame[eye[2]].Distance(frame[eye[4]])
	h := frame[eye[0]].Distance(frame[eye[3]])
	if h == 0 {
		return 0
	}
	return (v1 + v2) / (2 * h)
}
