package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// boolField converts a bool to the 0/1 convention used in dashboards.
func boolField(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteTVStatus records the outcome of a TV status probe.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Volume and mute are only meaningful when the TV was reachable, so they
// are omitted otherwise.
//
// Parameters:
//   - tvHost: The TV's host, used as the series tag
//   - reachable: Whether the probe reached the TV
//   - volume: Current volume (ignored when unreachable)
//   - mute: Current mute state (ignored when unreachable)
func (c *Client) WriteTVStatus(tvHost string, reachable bool, volume int, mute bool) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"reachable": boolField(reachable),
	}
	if reachable {
		fields["volume"] = volume
		fields["mute"] = boolField(mute)
	}

	point := write.NewPoint(
		"tv_status",
		map[string]string{
			"tv": tvHost,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommand records one handled MQTT command.
//
// Tags keep cardinality low: the operation is the resolved operation kind
// (send_key, set_volume, ...), not the raw payload.
//
// Parameters:
//   - tvHost: The TV's host
//   - operation: Resolved operation kind
//   - outcome: ok, error, or dropped
func (c *Client) WriteCommand(tvHost, operation, outcome string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"tv_command",
		map[string]string{
			"tv":        tvHost,
			"operation": operation,
			"outcome":   outcome,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
