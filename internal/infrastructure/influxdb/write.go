package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurements written by the marquee.
//
// frames      one point per rendered frame batch (count + draw time)
// messages    one point per accepted display message
// connection  one point per broker connect/disconnect transition
// brightness  one point per brightness change

// WriteFrameMetric records a rendered-frame sample.
//
// The engine calls this once per second with the frames drawn in that
// window and the mean draw duration, keeping telemetry off the tick path.
//
// Parameters:
//   - frames: Frames rendered in the sample window
//   - drawTime: Mean time spent drawing a frame
func (c *Client) WriteFrameMetric(frames int, drawTime time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"frames",
		map[string]string{
			"device_id": c.deviceID,
		},
		map[string]interface{}{
			"count":        frames,
			"draw_time_us": drawTime.Microseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteMessageMetric records an accepted display message.
//
// Parameters:
//   - lineCount: Number of display lines after splitting/wrapping
//   - payloadBytes: Raw payload size
func (c *Client) WriteMessageMetric(lineCount int, payloadBytes int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"messages",
		map[string]string{
			"device_id": c.deviceID,
		},
		map[string]interface{}{
			"lines":         lineCount,
			"payload_bytes": payloadBytes,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteConnectionEvent records a broker connectivity transition.
//
// Parameters:
//   - connected: true on (re)connect, false on loss
func (c *Client) WriteConnectionEvent(connected bool) {
	if !c.IsConnected() {
		return
	}

	state := 0.0
	if connected {
		state = 1.0
	}

	point := write.NewPoint(
		"connection",
		map[string]string{
			"device_id": c.deviceID,
		},
		map[string]interface{}{
			"connected": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteBrightnessMetric records a brightness change (post-clamp level).
func (c *Client) WriteBrightnessMetric(level int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"brightness",
		map[string]string{
			"device_id": c.deviceID,
		},
		map[string]interface{}{
			"level": level,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
