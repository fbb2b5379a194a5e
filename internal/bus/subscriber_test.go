package bus

import (
	"context"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessage carries a topic and payload; other mqtt.Message methods panic
type fakeMessage struct {
	mqtt.Message
	topic   string
	payload string
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return []byte(m.payload) }

func TestForward_PassesValues(t *testing.T) {
	msgChan := make(chan SensorMessage, 1)
	handler := forward(context.Background(), msgChan)

	before := time.Now()
	handler(nil, fakeMessage{topic: "shuntCurrent", payload: "0.12"})

	select {
	case msg := <-msgChan:
		assert.Equal(t, "shuntCurrent", msg.Topic)
		assert.Equal(t, "0.12", msg.Value)
		assert.False(t, msg.Received.Before(before))
	default:
		require.FailNow(t, "message not forwarded")
	}
}

func TestForward_DropsPlaceholders(t *testing.T) {
	msgChan := make(chan SensorMessage, 3)
	handler := forward(context.Background(), msgChan)

	for _, v := range []string{"unavailable", "Undefined", ""} {
		handler(nil, fakeMessage{topic: "busVoltage", payload: v})
	}

	assert.Empty(t, msgChan)
}

func TestForward_GivesUpWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered with no reader: only cancellation lets the handler return
	handler := forward(ctx, make(chan SensorMessage))
	handler(nil, fakeMessage{topic: "busVoltage", payload: "7.9"})
}

func TestSubscribeWorker_ConnectFailure(t *testing.T) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://127.0.0.1:1")
	opts.SetConnectTimeout(time.Second)

	err := SubscribeWorker(context.Background(), opts, []string{"busVoltage"}, make(chan SensorMessage), nil)
	assert.ErrorContains(t, err, "connecting to MQTT broker")
}
