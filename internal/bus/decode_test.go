package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalar_PlainNumber(t *testing.T) {
	v, err := ParseScalar(" 24.5\n")
	require.NoError(t, err)
	assert.Equal(t, 24.5, v)
}

func TestParseScalar_DataObject(t *testing.T) {
	v, err := ParseScalar(`{"data": 0.125}`)
	require.NoError(t, err)
	assert.Equal(t, 0.125, v)
}

func TestParseScalar_Invalid(t *testing.T) {
	_, err := ParseScalar("on")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseScalar(`{"value": 1}`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseArray_Forms(t *testing.T) {
	expected := []float64{3700, 3810.5, 4200}

	v, err := ParseArray("[3700, 3810.5, 4200]")
	require.NoError(t, err)
	assert.Equal(t, expected, v)

	v, err = ParseArray(`{"layout": {"dim": []}, "data": [3700, 3810.5, 4200]}`)
	require.NoError(t, err)
	assert.Equal(t, expected, v)

	v, err = ParseArray("3700,3810.5, 4200")
	require.NoError(t, err)
	assert.Equal(t, expected, v)
}

func TestParseArray_Empty(t *testing.T) {
	v, err := ParseArray("[]")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = ParseArray("")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestParseArray_Invalid(t *testing.T) {
	_, err := ParseArray("1,two,3")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseTemperature_Stamped(t *testing.T) {
	received := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	stamp, watts, err := ParseTemperature(
		`{"header":{"seq":4,"stamp":{"secs":1700000000,"nsecs":500000000},"frame_id":""},"temperature":42.5,"variance":0}`,
		received,
	)
	require.NoError(t, err)
	assert.Equal(t, 42.5, watts)
	assert.True(t, stamp.Equal(time.Unix(1700000000, 500000000)))
}

func TestParseTemperature_BareNumberUsesReceiveTime(t *testing.T) {
	received := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	stamp, watts, err := ParseTemperature("12", received)
	require.NoError(t, err)
	assert.Equal(t, 12.0, watts)
	assert.Equal(t, received, stamp)
}

func TestParseTemperature_MissingValue(t *testing.T) {
	_, _, err := ParseTemperature(`{"header":{"stamp":{"secs":1,"nsecs":0}}}`, time.Now())
	assert.ErrorIs(t, err, ErrMalformed)
}
