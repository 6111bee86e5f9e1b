package facs

// Indices into the 468-point MediaPipe face mesh.
const (
	MeshSize = 468

	NoseRoot = 6

	BrowLeftInner  = 336
	BrowRightInner = 107
	BrowLeftOuter  = 296
	BrowRightOuter = 66

	LeftEyeCorner  = 33
	RightEyeCorner = 263
)

// Eye contours in canonical order: outer corner, two upper lid points,
// inner corner, two lower lid points. Points 1/5 and 2/4 face each other.
var (
	LeftEye  = [6]int{33, 160, 158, 133, 153, 144}
	RightEye = [6]int{362, 385, 387, 263, 373, 380}
)

// usedLandmarks lists every index the gate and the extractor read.
var usedLandmarks = func() []int {
	idx := []int{NoseRoot, BrowLeftInner, BrowRightInner, BrowLeftOuter, BrowRightOuter}
	idx = append(idx, LeftEye[:]...)
	return append(idx, RightEye[:]...)
}()
