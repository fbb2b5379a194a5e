// Package bus connects the nodes to the MQTT broker and decodes sensor payloads.
package bus

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/loggo"
	"github.com/pkg/errors"
)

var log = loggo.GetLogger("powermon.bus")

// invalidValues are placeholder payloads published when a sensor drops out
var invalidValues = map[string]bool{
	"Undefined":   true,
	"unavailable": true,
	"":            true,
}

// forward builds the message handler shared by every subscription
func forward(ctx context.Context, msgChan chan<- SensorMessage) mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		value := string(msg.Payload())

		// Skip invalid values - sensor has dropped out
		if invalidValues[value] {
			return
		}

		sensorMsg := SensorMessage{
			Topic:    msg.Topic(),
			Value:    value,
			Received: time.Now(),
		}
		select {
		case msgChan <- sensorMsg:
		case <-ctx.Done():
			return
		}
	}
}

// SubscribeWorker manages the MQTT connection and forwards messages to a channel.
// Each new client is handed to clientChan so the sender worker can publish.
// Failing to reach the broker at startup is returned as an error.
func SubscribeWorker(
	ctx context.Context,
	opts *mqtt.ClientOptions,
	topics []string,
	msgChan chan<- SensorMessage,
	clientChan chan<- mqtt.Client,
) error {
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Warningf("MQTT connection lost: %v", err)
	})

	handler := forward(ctx, msgChan)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Infof("Connected to MQTT broker")

		// Send the new client to the sender worker
		if clientChan != nil {
			select {
			case clientChan <- client:
				log.Debugf("Sent new MQTT client to sender worker")
			case <-ctx.Done():
				return
			}
		}

		// Subscribe to all topics
		for _, topic := range topics {
			token := client.Subscribe(topic, 0, handler)
			if token.Wait() && token.Error() != nil {
				log.Errorf("Failed to subscribe to topic %s: %v", topic, token.Error())
			} else {
				log.Infof("Subscribed to topic: %s", topic)
			}
		}
	})

	client := mqtt.NewClient(opts)

	log.Infof("Connecting to MQTT broker at %v...", opts.Servers)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrap(token.Error(), "connecting to MQTT broker")
	}

	// Keep worker alive until context is done
	<-ctx.Done()

	if client.IsConnected() {
		client.Disconnect(250)
		log.Infof("Disconnected from MQTT broker")
	}
	return nil
}
