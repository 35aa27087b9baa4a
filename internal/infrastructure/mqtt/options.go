package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/khawasu/cloud-bridge/internal/infrastructure/config"
)

// Connection constants.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time (ms) to wait for pending
	// operations on disconnect.
	defaultDisconnectQuiesce = 1000

	defaultKeepAlive = 60 * time.Second

	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// buildClientOptions creates paho MQTT options from bridge config.
func buildClientOptions(cfg config.MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(cfg.Broker.ClientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// configureLWT sets the Last Will and Testament so the broker announces
// the bridge going offline after a crash or network failure.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	opts.SetWill(StatusTopic, buildStatusPayload(clientID, "offline", "unexpected_disconnect"), 1, true)
}

func buildOnlinePayload(clientID string) string {
	return buildStatusPayload(clientID, "online", "")
}

func buildOfflinePayload(clientID string) string {
	return buildStatusPayload(clientID, "offline", "graceful_shutdown")
}

func buildStatusPayload(clientID, status, reason string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	if reason == "" {
		return fmt.Sprintf(`{"status":"%s","client_id":"%s","timestamp":"%s"}`, status, clientID, ts)
	}
	return fmt.Sprintf(`{"status":"%s","client_id":"%s","reason":"%s","timestamp":"%s"}`, status, clientID, reason, ts)
}
