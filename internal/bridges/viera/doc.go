// Package viera bridges MQTT and Panasonic Viera televisions.
//
// The bridge subscribes to a command topic and forwards payloads to the
// TV as remote control key presses, volume/mute changes, or app
// launches. Query payloads (APPS, DEVICE_INFO, VOLUME) publish their
// answers to sibling topics. Every handled command produces a result
// message, an optional history record, and an optional telemetry point.
//
// # Topics
//
//	{prefix}/command      incoming commands (subscribed)
//	{prefix}/status       TV status, retained
//	{prefix}/apps         answer to APPS
//	{prefix}/device_info  answer to DEVICE_INFO
//	{prefix}/result       per-command results
//
// # Payloads
//
// A command payload may be a bare key name ("VOLUME_UP"), a raw key
// code ("NRC_VOLUP-ONOFF"), a JSON object with a "key" or "action"
// field, or a structured command such as {"set_volume": 25},
// {"mute": true}, or {"launch_app": "0010000200000001"}.
//
// # Switched-off TVs
//
// A TV that cannot be reached is not an error condition: the bridge
// publishes a retained {"power":"off","reason":"TV switched off"}
// status and keeps running. The StatusReporter probes the TV on an
// interval so the retained status tracks the TV's power state.
//
// All dependencies are injected through small interfaces (MQTTClient,
// TV, CommandRecorder, Telemetry) so the bridge can be tested without
// a broker or a television.
package viera
