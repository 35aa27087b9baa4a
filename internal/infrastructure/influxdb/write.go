package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// RecordStateSample writes one device state reading. Samples arrive
// from successful platform state queries, so the series reflects what
// the assistant actually observed.
//
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) RecordStateSample(deviceID, instance string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id": deviceID,
			"instance":  instance,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
