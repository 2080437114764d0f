package mqtt

import "fmt"

// Topic prefixes for the marquee hierarchy.
//
// All topics live under a single root:
//
//	marquee/{device}/message      incoming display text (UTF-8, \n = new line)
//	marquee/{device}/brightness   incoming brightness level (integer 0-100)
//	marquee/system/status         retained online/offline status (LWT)
//	marquee/system/event/{type}   engine lifecycle events
const (
	// TopicRoot is the base for all marquee topics.
	TopicRoot = "marquee"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "marquee/system"
)

// Topics provides builders for marquee MQTT topics.
//
// A Topics value is bound to a device ID so callers never assemble topic
// strings by hand:
//
//	topics := mqtt.Topics{Device: "lobby-sign"}
//	topics.Message() // "marquee/lobby-sign/message"
type Topics struct {
	// Device is the marquee device ID used in per-device topics.
	Device string
}

// Message returns the topic carrying display text for this device.
//
// Example: marquee/lobby-sign/message
func (t Topics) Message() string {
	return fmt.Sprintf("%s/%s/message", TopicRoot, t.Device)
}

// Brightness returns the topic carrying brightness levels for this device.
//
// Example: marquee/lobby-sign/brightness
func (t Topics) Brightness() string {
	return fmt.Sprintf("%s/%s/brightness", TopicRoot, t.Device)
}

// SystemStatus returns the retained status topic (also used for the LWT).
//
// Example: marquee/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemEvent returns the topic for engine lifecycle events.
//
// Example: marquee/system/event/state_changed
func (t Topics) SystemEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixSystem, eventType)
}

// AllDevices returns a wildcard subscription matching every device's
// message topic. Useful for a shared feed driving several signs.
//
// Example: marquee/+/message
func (t Topics) AllDevices() string {
	return fmt.Sprintf("%s/+/message", TopicRoot)
}
