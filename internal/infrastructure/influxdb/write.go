package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteFiring records a behaviour firing to InfluxDB.
//
// This is the primary method for recording engine telemetry.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - behaviourID: Unique identifier for the behaviour
//   - name: Human-readable behaviour name
//   - group: Execution group name (empty for ungrouped behaviours)
//   - actionsRun: Number of actions executed successfully
//   - actionsFailed: Number of actions that returned errors
//   - at: Timestamp of the event that caused the firing
//
// Example:
//
//	client.WriteFiring("b-1234", "duck-music", "evening", 2, 0, time.Now())
func (c *Client) WriteFiring(behaviourID, name, group string, actionsRun, actionsFailed int, at time.Time) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"behaviour_id": behaviourID,
		"name":         name,
	}
	if group != "" {
		tags["group"] = group
	}

	point := write.NewPoint(
		"behaviour_firings",
		tags,
		map[string]interface{}{
			"actions_run":    actionsRun,
			"actions_failed": actionsFailed,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WriteSessionLevel records an audio session's volume and peak level.
//
// Used for charting per-process audio activity over time.
//
// Parameters:
//   - process: Process name owning the session (e.g., "game.exe")
//   - volume: Session volume scalar in [0.0, 1.0]
//   - peak: Instantaneous peak meter value in [0.0, 1.0]
//   - at: Timestamp of the state snapshot
func (c *Client) WriteSessionLevel(process string, volume, peak float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"session_levels",
		map[string]string{
			"process": process,
		},
		map[string]interface{}{
			"volume": volume,
			"peak":   peak,
		},
		at,
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
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "avm-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
