// Package influxdb provides an optional time-series sink for device
// state samples. When disabled the bridge runs without it.
package influxdb
