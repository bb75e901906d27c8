// Package mqtt provides MQTT client connectivity for AVM Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// AVM uses MQTT as the message bus connecting the Core to audio
// adapters that sample session state and apply mixer commands. The
// broker (Mosquitto) decouples Core from platform-specific mixers.
//
//	Audio Adapter → MQTT Broker → AVM Core → MQTT Broker → Audio Adapter
//	  (state)                     (engine)    (commands)
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to session state updates
//	err = client.Subscribe(mqtt.Topics{}.StateSessions(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish command
//	topic := mqtt.Topics{}.CommandAudio()
//	client.Publish(topic, []byte(`{"process":"game.exe","command":"set_volume","volume":0.4}`), 1, false)
package mqtt
