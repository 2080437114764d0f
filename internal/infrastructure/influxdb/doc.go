// Package influxdb provides optional telemetry for the marquee daemon.
//
// When enabled, the engine records render throughput, accepted messages,
// broker connectivity transitions, and brightness changes to an InfluxDB
// v2 bucket. Writes are batched and non-blocking; a slow or unreachable
// InfluxDB never affects the render loop; failed writes surface only
// through the SetOnError callback.
//
// The package is disabled by default:
//
//	influxdb:
//	  enabled: true
//	  url: "http://localhost:8086"
//	  org: "home"
//	  bucket: "marquee"
//	  # token via MARQUEE_INFLUXDB_TOKEN
package influxdb
