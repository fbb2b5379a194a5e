package bus

import (
	"context"
	"encoding/json"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTMessage represents an outgoing MQTT message
type MQTTMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// Sender wraps a channel for sending MQTT messages with helper methods
type Sender struct {
	ch chan<- MQTTMessage
}

// NewSender creates a new Sender wrapping the given channel
func NewSender(ch chan<- MQTTMessage) *Sender {
	return &Sender{ch: ch}
}

// Send sends a raw MQTTMessage
func (s *Sender) Send(msg MQTTMessage) {
	s.ch <- msg
}

// DeviceID turns a display name into a Home Assistant identifier
func DeviceID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// StateTopic returns the state topic for a device
func StateTopic(deviceName string) string {
	return "homeassistant/sensor/" + DeviceID(deviceName) + "/state"
}

// CreateEnergyEntity creates the consumed energy sensor via MQTT discovery
func (s *Sender) CreateEnergyEntity(deviceName, manufacturer string) error {
	type haDeviceConfig struct {
		Identifiers  []string `json:"identifiers"`
		Name         string   `json:"name"`
		Manufacturer string   `json:"manufacturer,omitempty"`
		Model        string   `json:"model,omitempty"`
	}

	type haEntityConfig struct {
		Name             string         `json:"name,omitempty"`
		DeviceClass      string         `json:"device_class"`
		StateTopic       string         `json:"state_topic"`
		UnitOfMeasure    string         `json:"unit_of_measurement,omitempty"`
		ValueTemplate    string         `json:"value_template"`
		UniqueId         string         `json:"unique_id"`
		StateClass       string         `json:"state_class,omitempty"`
		DisplayPrecision int            `json:"suggested_display_precision,omitempty"`
		Device           haDeviceConfig `json:"device"`
	}

	deviceId := DeviceID(deviceName)

	config := haEntityConfig{
		Name:             "Energy Consumed",
		DeviceClass:      "energy",
		StateTopic:       StateTopic(deviceName),
		UnitOfMeasure:    "Wh",
		ValueTemplate:    "{{ value_json.energy_wh }}",
		UniqueId:         deviceId + "_energy_wh",
		StateClass:       "total_increasing",
		DisplayPrecision: 3,
		Device: haDeviceConfig{
			Identifiers:  []string{deviceId},
			Name:         deviceName,
			Manufacturer: manufacturer,
			Model:        "Power Monitor",
		},
	}

	payload, err := json.Marshal(config)
	if err != nil {
		return err
	}

	s.Send(MQTTMessage{
		Topic:   "homeassistant/sensor/" + deviceId + "_energy_wh/config",
		Payload: payload,
		QoS:     2,
		Retain:  true,
	})

	return nil
}

// PublishEnergy publishes the consumed energy state for a device
func (s *Sender) PublishEnergy(deviceName string, wattHours float64, elapsedSeconds float64) error {
	payload, err := json.Marshal(map[string]float64{
		"energy_wh":       wattHours,
		"elapsed_seconds": elapsedSeconds,
	})
	if err != nil {
		return err
	}

	s.Send(MQTTMessage{
		Topic:   StateTopic(deviceName),
		Payload: payload,
		QoS:     0,
		Retain:  false,
	})
	return nil
}

// publisher is the subset of mqtt.Client the sender worker needs
type publisher interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// publish sends one message and logs failures
func publish(client publisher, msg MQTTMessage) {
	token := client.Publish(msg.Topic, msg.QoS, msg.Retain, msg.Payload)
	token.Wait()
	if token.Error() != nil {
		log.Errorf("Failed to publish to %s: %v", msg.Topic, token.Error())
	}
}

// SenderWorker handles outgoing MQTT messages, queuing them until a client connects
func SenderWorker(
	ctx context.Context,
	outgoingChan <-chan MQTTMessage,
	clientChan <-chan mqtt.Client,
) {
	log.Infof("MQTT sender worker started")

	var client publisher
	var messageQueue []MQTTMessage

	for {
		select {
		case newClient := <-clientChan:
			log.Debugf("MQTT sender worker received new client")
			client = newClient

			// Process any queued messages now that we have a client
			if client != nil && client.IsConnected() {
				queuedCount := len(messageQueue)
				for _, msg := range messageQueue {
					publish(client, msg)
				}
				messageQueue = nil
				if queuedCount > 0 {
					log.Infof("MQTT sender worker processed %d queued messages", queuedCount)
				}
			}

		case msg := <-outgoingChan:
			if client != nil && client.IsConnected() {
				publish(client, msg)
			} else {
				messageQueue = append(messageQueue, msg)
				log.Debugf("MQTT sender worker queued message (total queued: %d)", len(messageQueue))
			}

		case <-ctx.Done():
			log.Infof("MQTT sender worker stopped")
			return
		}
	}
}
