// Package mqtt wraps paho.mqtt.golang for the link between the bridge and
// the Khawasu logical driver.
//
// The wrapper handles connection lifecycle (LWT on the status topic,
// auto-reconnect, re-subscription after reconnect) so callers deal only
// with Publish and Subscribe. The Khawasu RPC protocol itself lives in
// internal/khawasu.
package mqtt
