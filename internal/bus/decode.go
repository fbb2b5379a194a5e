package bus

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrMalformed is returned when a payload cannot be decoded
var ErrMalformed = errors.New("malformed payload")

// SensorMessage represents an MQTT message with topic and value
type SensorMessage struct {
	Topic    string
	Value    string
	Received time.Time
}

// dataMessage matches the JSON form of std_msgs Float32 and Float32MultiArray
type dataMessage struct {
	Data json.RawMessage `json:"data"`
}

// stamp is the ROS time representation
type stamp struct {
	Secs  int64 `json:"secs"`
	Nsecs int64 `json:"nsecs"`
}

// temperatureMessage matches the JSON form of sensor_msgs Temperature
type temperatureMessage struct {
	Header struct {
		Stamp stamp `json:"stamp"`
	} `json:"header"`
	Temperature *float64 `json:"temperature"`
}

// isJSONObject checks whether a trimmed payload looks like a JSON object
func isJSONObject(value string) bool {
	return strings.HasPrefix(value, "{")
}

// ParseScalar decodes a plain number or a {"data": x} payload
func ParseScalar(value string) (float64, error) {
	value = strings.TrimSpace(value)

	if isJSONObject(value) {
		var msg dataMessage
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			return 0, errors.Wrap(ErrMalformed, err.Error())
		}
		if len(msg.Data) == 0 {
			return 0, errors.Wrap(ErrMalformed, "missing data field")
		}
		var f float64
		if err := json.Unmarshal(msg.Data, &f); err != nil {
			return 0, errors.Wrap(ErrMalformed, err.Error())
		}
		return f, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "not a number: %q", value)
	}
	return f, nil
}

// ParseArray decodes a JSON array, a {"data": [...]} payload or a comma separated list
func ParseArray(value string) ([]float64, error) {
	value = strings.TrimSpace(value)

	var raw []byte
	switch {
	case isJSONObject(value):
		var msg dataMessage
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			return nil, errors.Wrap(ErrMalformed, err.Error())
		}
		if len(msg.Data) == 0 {
			return nil, errors.Wrap(ErrMalformed, "missing data field")
		}
		raw = msg.Data
	case strings.HasPrefix(value, "["):
		raw = []byte(value)
	default:
		if value == "" {
			return []float64{}, nil
		}
		parts := strings.Split(value, ",")
		values := make([]float64, 0, len(parts))
		for _, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformed, "not a number: %q", p)
			}
			values = append(values, f)
		}
		return values, nil
	}

	var values []float64
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if values == nil {
		values = []float64{}
	}
	return values, nil
}

// ParseTemperature decodes a temperature message into its stamp and value.
// A bare number is accepted and stamped with the receive time.
func ParseTemperature(value string, received time.Time) (time.Time, float64, error) {
	value = strings.TrimSpace(value)

	if !isJSONObject(value) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return time.Time{}, 0, errors.Wrapf(ErrMalformed, "not a number: %q", value)
		}
		return received, f, nil
	}

	var msg temperatureMessage
	if err := json.Unmarshal([]byte(value), &msg); err != nil {
		return time.Time{}, 0, errors.Wrap(ErrMalformed, err.Error())
	}
	if msg.Temperature == nil {
		return time.Time{}, 0, errors.Wrap(ErrMalformed, "missing temperature field")
	}

	ts := msg.Header.Stamp
	if ts.Secs == 0 && ts.Nsecs == 0 {
		// Unstamped messages fall back to the receive time
		return received, *msg.Temperature, nil
	}
	return time.Unix(ts.Secs, ts.Nsecs), *msg.Temperature, nil
}
