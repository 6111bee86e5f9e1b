package gateway

import "errors"

// ErrDeviceNotConnected is returned when sending to an unknown device.
var ErrDeviceNotConnected = errors.New("device not connected")
