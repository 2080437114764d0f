// Package mqtt provides MQTT client connectivity for the marquee daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The marquee is a pure subscriber on its message and brightness topics and
// publishes only its own status and lifecycle events:
//
//	Publishers (feeds, dashboards) -> MQTT Broker -> marquee
//
// Reconnection is owned entirely by the paho client (exponential backoff
// between reconnect.initial_delay and reconnect.max_delay); the scroll
// engine only observes connect/disconnect callbacks to drive its state
// machine and status display. There is no queue of missed messages: a
// message published while the sign is offline is simply never shown.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, cfg.Device.ID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().Message(), 1,
//	    func(topic string, payload []byte) error {
//	        return handler.HandleMessage(payload)
//	    })
package mqtt
