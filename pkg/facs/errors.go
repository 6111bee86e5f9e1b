package facs

import "errors"

var (
	// ErrInsufficientLandmarks is returned for frames shorter than MeshSize.
	ErrInsufficientLandmarks = errors.New("insufficient landmarks")

	// ErrHeadPoseYaw is returned when the head is turned too far from the camera.
	ErrHeadPoseYaw = errors.New("head yaw out of range")

	// ErrNonFiniteLandmarks is returned when a landmark the extractor reads is
	// NaN or infinite, or when distances between them overflow.
	ErrNonFiniteLandmarks = errors.New("non-finite landmarks")

	// ErrFaceTooSmall is returned when the eye corners are too close together.
	ErrFaceTooSmall = errors.New("face too small")
)
