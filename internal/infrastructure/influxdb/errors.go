package influxdb

import "errors"

var (
	// ErrDisabled is returned when telemetry is switched off in config.
	ErrDisabled = errors.New("influxdb disabled")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrNotConnected is returned when an operation runs on a closed client.
	ErrNotConnected = errors.New("influxdb not connected")
)
