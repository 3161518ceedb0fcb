// Package config loads and validates viera2mqtt configuration.
//
// Configuration is layered: hardcoded defaults, then an optional YAML
// file, then environment variables. The environment layer exists because
// the bridge is usually deployed as a container with no config file at
// all — MQTT_BROKER, MQTT_PORT, MQTT_TOPIC, TV_HOST and TV_PORT are the
// documented deployment interface, with MQTT_QOS, MQTT_CLIENT_ID,
// MQTT_USERNAME, MQTT_PASSWORD, TV_APP_ID, TV_ENC_KEY and LOG_LEVEL as
// optional extras.
//
// Validation happens once at load time; a Config that came out of Load
// can be trusted downstream.
package config
