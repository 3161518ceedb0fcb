// Package mqtt provides MQTT client connectivity for viera2mqtt.
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
// The bridge uses MQTT as its command and status surface. Home-automation
// systems publish commands to the TV's command topic and observe the
// retained status topics:
//
//	Home Automation ↔ MQTT Broker ↔ viera2mqtt ↔ Panasonic Viera TV
//
// # Security Considerations
//
//   - TLS is available for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.TopicPrefix())
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to TV commands
//	err = client.Subscribe(topics.Command(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish retained status
//	client.PublishRetained(topics.Status(), []byte(`{"power":"on"}`))
package mqtt
