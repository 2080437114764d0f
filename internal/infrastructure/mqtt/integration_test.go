//go:build integration

package mqtt

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/marquee/internal/infrastructure/config"
)

// Integration tests for broker connectivity and round-trip delivery.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "marquee-integration-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func TestConnect(t *testing.T) {
	client, err := Connect(integrationConfig(), "test-sign")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	cfg := integrationConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg, "test-sign")
	if err == nil {
		t.Fatal("Connect() expected error for invalid broker")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	client, err := Connect(integrationConfig(), "test-sign")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var received atomic.Int32
	topic := client.Topics().Message()

	err = client.Subscribe(topic, 1, func(_ string, payload []byte) error {
		if string(payload) == "Hello\nWorld" {
			received.Add(1)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := client.PublishString(topic, "Hello\nWorld", 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for received.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for message delivery")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestSubscriptionTracking(t *testing.T) {
	client, err := Connect(integrationConfig(), "test-sign")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := client.Topics().Brightness()
	noop := func(_ string, _ []byte) error { return nil }

	if err := client.Subscribe(topic, 1, noop); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if !client.HasSubscription(topic) {
		t.Error("HasSubscription() = false after Subscribe")
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe")
	}
}
