package facs_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/teslashibe/recemotion/pkg/facs"
	"github.com/teslashibe/recemotion/pkg/facs/facstest"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestPoint3D_Distance(t *testing.T) {
	a := facs.Point3D{X: 1, Y: 2, Z: 3}
	b := facs.Point3D{X: 4, Y: 6, Z: 3}
	if got := a.Distance(b); !floatEquals(got, 5) {
		t.Errorf("Distance = %v, want 5", got)
	}
	if got := b.Distance(a); !floatEquals(got, 5) {
		t.Errorf("Distance should be symmetric, got %v", got)
	}
}

func TestFrameFromFlat(t *testing.T) {
	frame := facs.FrameFromFlat([]float64{1, 2, 3, 4, 5, 6, 7})
	if len(frame) != 2 {
		t.Fatalf("len = %d, want 2 (partial triple dropped)", len(frame))
	}
	if frame[1] != (facs.Point3D{X: 4, Y: 5, Z: 6}) {
		t.Errorf("frame[1] = %+v", frame[1])
	}
}

func TestExtract_NeutralFace(t *testing.T) {
	fv, err := facs.Extract(facstest.Neutral().Frame())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	want := map[facs.Feature]float64{
		facs.FeatureEAR: 0.2,
		facs.FeatureAU1: 0.5 / 3,
		facs.FeatureAU2: 1.0 / 3,
		facs.FeatureAU4: 0.6 / 3,
	}
	if len(fv) != len(want) {
		t.Fatalf("got %d features, want %d", len(fv), len(want))
	}
	for f, w := range want {
		if !floatEquals(fv[f], w) {
			t.Errorf("%s = %v, want %v", f, fv[f], w)
		}
	}
}

func TestExtract_ScaleInvariant(t *testing.T) {
	base := facstest.Neutral()
	big := base
	big.Scale = 2.5

	a, _ := facs.Extract(base.Frame())
	b, _ := facs.Extract(big.Frame())
	for _, f := range facs.Features {
		if !floatEquals(a[f], b[f]) {
			t.Errorf("%s changed with scale: %v vs %v", f, a[f], b[f])
		}
	}
}

func TestExtract_IPDFloor(t *testing.T) {
	face := facstest.Neutral()
	face.Scale = 0.1 // ipd 0.3, floored to 1

	fv, _ := facs.Extract(face.Frame())
	if !floatEquals(fv[facs.FeatureAU4], 0.06) {
		t.Errorf("AU4 = %v, want 0.06 (raw distance over floored ipd)", fv[facs.FeatureAU4])
	}
	if !floatEquals(fv[facs.FeatureEAR], 0.2) {
		t.Errorf("EAR = %v, want 0.2", fv[facs.FeatureEAR])
	}
}

func TestExtract_ZeroFrame(t *testing.T) {
	fv, err := facs.Extract(make(facs.Frame, facs.MeshSize))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	for _, f := range facs.Features {
		if fv[f] != 0 {
			t.Errorf("%s = %v, want 0 for degenerate mesh", f, fv[f])
		}
	}
}

func TestExtract_InsufficientLandmarks(t *testing.T) {
	_, err := facs.Extract(make(facs.Frame, facs.MeshSize-1))
	if !errors.Is(err, facs.ErrInsufficientLandmarks) {
		t.Errorf("err = %v, want ErrInsufficientLandmarks", err)
	}
}

func TestExtract_ClosedEyes(t *testing.T) {
	face := facstest.Neutral()
	face.EyeOpen = 0
	fv, _ := facs.Extract(face.Frame())
	if fv[facs.FeatureEAR] != 0 {
		t.Errorf("EAR = %v, want 0", fv[facs.FeatureEAR])
	}
}

func TestCheckHeadPose(t *testing.T) {
	cfg := facs.DefaultGateConfig()

	tests := []struct {
		name    string
		face    func() facstest.Face
		wantErr error
	}{
		{"frontal", facstest.Neutral, nil},
		{"slight yaw", func() facstest.Face {
			f := facstest.Neutral()
			f.YawZ = 0.5
			return f
		}, nil},
		{"turned away", func() facstest.Face {
			f := facstest.Neutral()
			f.YawZ = 1
			return f
		}, facs.ErrHeadPoseYaw},
		{"too far", func() facstest.Face {
			f := facstest.Neutral()
			f.Scale = 0.02
			return f
		}, facs.ErrFaceTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := facs.CheckHeadPose(tt.face().Frame(), cfg)
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// nonFiniteFrames returns neutral faces broken in ways only non-finite checks catch.
func nonFiniteFrames() map[string]facs.Frame {
	nan := facstest.Neutral().Frame()
	for i := range nan {
		nan[i] = facs.Point3D{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}

	nanBrow := facstest.Neutral().Frame()
	nanBrow[facs.BrowLeftInner].Y = math.NaN()

	infEye := facstest.Neutral().Frame()
	infEye[facs.LeftEye[1]].Y = math.Inf(1)

	// Finite coordinates whose difference overflows: ipd is +Inf and the
	// yaw ratio is Inf/Inf.
	overflow := facstest.Neutral().Frame()
	overflow[facs.LeftEyeCorner].Z = 1e308
	overflow[facs.RightEyeCorner].Z = -1e308

	return map[string]facs.Frame{
		"all NaN":      nan,
		"NaN brow":     nanBrow,
		"Inf eyelid":   infEye,
		"yaw overflow": overflow,
	}
}

func TestCheckHeadPose_NonFinite(t *testing.T) {
	for name, frame := range nonFiniteFrames() {
		err := facs.CheckHeadPose(frame, facs.DefaultGateConfig())
		if !errors.Is(err, facs.ErrNonFiniteLandmarks) {
			t.Errorf("%s: err = %v, want ErrNonFiniteLandmarks", name, err)
		}
	}
}

func TestExtract_NonFinite(t *testing.T) {
	for name, frame := range nonFiniteFrames() {
		if name == "yaw overflow" {
			continue // features stay finite here, CheckHeadPose rejects it
		}
		if _, err := facs.Extract(frame); !errors.Is(err, facs.ErrNonFiniteLandmarks) {
			t.Errorf("%s: err = %v, want ErrNonFiniteLandmarks", name, err)
		}
	}

	// Finite inputs whose distance overflows
	wide := facstest.Neutral().Frame()
	wide[facs.BrowLeftInner].X = 1e308
	wide[facs.BrowRightInner].X = -1e308
	if _, err := facs.Extract(wide); !errors.Is(err, facs.ErrNonFiniteLandmarks) {
		t.Errorf("overflowing brows: err = %v, want ErrNonFiniteLandmarks", err)
	}
}

func TestCheckHeadPose_ShortFrame(t *testing.T) {
	err := facs.CheckHeadPose(make(facs.Frame, 10), facs.DefaultGateConfig())
	if !errors.Is(err, facs.ErrInsufficientLandmarks) {
		t.Errorf("err = %v, want ErrInsufficientLandmarks", err)
	}
}

func TestFeature_Names(t *testing.T) {
	want := map[facs.Feature]string{
		facs.FeatureEAR: "EAR",
		facs.FeatureAU1: "AU1_Dist",
		facs.FeatureAU2: "AU2_Dist",
		facs.FeatureAU4: "AU4_Dist",
	}
	for f, name := range want {
		if f.String() != name {
			t.Errorf("String() = %q, want %q", f.String(), name)
		}
		parsed, ok := facs.ParseFeature(name)
		if !ok || parsed != f {
			t.Errorf("ParseFeature(%q) = %v, %v", name, parsed, ok)
		}
	}
	if _, ok := facs.ParseFeature("AU9_Dist"); ok {
		t.Error("ParseFeature should reject unknown names")
	}
}

func TestFeatureVector_JSON(t *testing.T) {
	data, err := json.Marshal(facs.FeatureVector{facs.FeatureAU4: 0.25})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(data) != `{"AU4_Dist":0.25}` {
		t.Errorf("got %s", data)
	}

	var fv facs.FeatureVector
	if err := json.Unmarshal([]byte(`{"EAR":0.3}`), &fv); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if fv[facs.FeatureEAR] != 0.3 {
		t.Errorf("EAR = %v, want 0.3", fv[facs.FeatureEAR])
	}
}
