// Package history records every command the bridge handles in SQLite.
//
// The audit trail keeps the MQTT topic, the raw payload, the operation it
// resolved to, and the outcome. It answers the "what did the bridge
// actually do last night" question without needing broker logs.
package history
