// Package config loads and validates the bridge configuration.
//
// Configuration comes from a YAML file with environment variable overrides
// (KHAWASU_BRIDGE_* pattern). Secrets — the OAuth client credentials, MQTT
// password, InfluxDB token — should be supplied via the environment rather
// than committed in config.yaml.
package config
