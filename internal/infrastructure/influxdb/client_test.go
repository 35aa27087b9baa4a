package influxdb_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/khawasu/cloud-bridge/internal/infrastructure/config"
	"github.com/khawasu/cloud-bridge/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for a local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "dev-token",
		Org:           "khawasu",
		Bucket:        "state",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// skipIfNoInfluxDB skips the test unless an InfluxDB is reachable.
func skipIfNoInfluxDB(t *testing.T) *influxdb.Client {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		t.Skip("set RUN_INTEGRATION to run InfluxDB integration tests")
	}
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skipf("InfluxDB not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	if _, err := influxdb.Connect(cfg); err != influxdb.ErrDisabled {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestRecordStateSample(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	client.RecordStateSample("0.12", "brightness", 50)
	client.RecordStateSample("0.33", "temperature", 21.5)
	client.Flush()
	time.Sleep(100 * time.Millisecond)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck after writes: %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// Writes after close must be silent no-ops.
	client.RecordStateSample("0.12", "brightness", 1)
	client.Flush()
}
