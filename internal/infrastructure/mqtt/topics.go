package mqtt

// DefaultTopicRoot is the base for derived topic prefixes when no explicit
// command topic is configured.
//
// Derived scheme: panasonic/viera/{tv_host}/{channel}
const DefaultTopicRoot = "panasonic/viera"

// Topics builds the bridge's MQTT topics from a shared prefix.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.NewTopics("panasonic/viera/192.168.1.50")
//	topics.Command() // "panasonic/viera/192.168.1.50/command"
//	topics.Status()  // "panasonic/viera/192.168.1.50/status"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder rooted at the given prefix.
// The prefix must not end with a slash.
func NewTopics(prefix string) Topics {
	return Topics{prefix: prefix}
}

// Prefix returns the shared topic prefix.
func (t Topics) Prefix() string {
	return t.prefix
}

// Command returns the topic the bridge listens on for TV commands.
//
// Example: panasonic/viera/192.168.1.50/command
func (t Topics) Command() string {
	return t.prefix + "/command"
}

// Status returns the topic for retained TV status updates.
//
// Example: panasonic/viera/192.168.1.50/status
func (t Topics) Status() string {
	return t.prefix + "/status"
}

// Apps returns the topic the installed-app list is published to.
//
// Example: panasonic/viera/192.168.1.50/apps
func (t Topics) Apps() string {
	return t.prefix + "/apps"
}

// DeviceInfo returns the topic device descriptions are published to.
//
// Example: panasonic/viera/192.168.1.50/device_info
func (t Topics) DeviceInfo() string {
	return t.prefix + "/device_info"
}

// Result returns the topic per-command outcomes are published to.
//
// Example: panasonic/viera/192.168.1.50/result
func (t Topics) Result() string {
	return t.prefix + "/result"
}

// Bridge returns the bridge availability topic. The retained online/offline
// lifecycle payloads (including the LWT) live here, separate from the TV
// status topic so a crash never clobbers the last known TV state.
//
// Example: panasonic/viera/192.168.1.50/bridge
func (t Topics) Bridge() string {
	return t.prefix + "/bridge"
}
