package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectHeadSprite(t *testing.T) {
	tests := []struct {
		name         string
		air          int
		wantHead     string
		wantAdvisory bool
	}{
		{"polluted air wears mask", 30, HeadMask, true},
		{"clean air", 60, HeadDefault, false},
		{"threshold is clean", MaskThreshold, HeadDefault, false},
		{"just below threshold", MaskThreshold - 1, HeadMask, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{AirIndex: tt.air, Temperature: 20}
			assert.Equal(t, tt.wantHead, SelectHeadSprite(s))

			advisory, msg := Advisory(s)
			assert.Equal(t, tt.wantAdvisory, advisory)
			if tt.wantAdvisory {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestSelectBodySprite(t *testing.T) {
	assert.Equal(t, BodyDefault, SelectBodySprite(State{AirIndex: 80, Temperature: 20}))
	assert.Equal(t, BodyDefault, SelectBodySprite(State{AirIndex: 80, Temperature: ColdThreshold}))
	assert.Equal(t, BodyCoat, SelectBodySprite(State{AirIndex: 80, Temperature: -10}))
}

func TestApply(t *testing.T) {
	s := Default()

	s = s.Apply(AirDown)
	assert.Equal(t, 70, s.AirIndex)

	s = s.Apply(Colder).Apply(Colder)
	assert.Equal(t, 10.0, s.Temperature)

	t.Run("air index stays within bounds", func(t *testing.T) {
		low := State{AirIndex: 5}.Apply(AirDown)
		assert.Equal(t, MinAirIndex, low.AirIndex)

		high := State{AirIndex: 95}.Apply(AirUp)
		assert.Equal(t, MaxAirIndex, high.AirIndex)
	})

	t.Run("temperature stays within bounds", func(t *testing.T) {
		cold := State{Temperature: MinTemperature}.Apply(Colder)
		assert.Equal(t, MinTemperature, cold.Temperature)

		hot := State{Temperature: MaxTemperature}.Apply(Warmer)
		assert.Equal(t, MaxTemperature, hot.Temperature)
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		assert.Equal(t, Default(), State{AirIndex: 1, Temperature: -20}.Apply(Reset))
	})

	t.Run("unknown event only normalizes", func(t *testing.T) {
		assert.Equal(t, State{AirIndex: 100, Temperature: 20}, State{AirIndex: 150, Temperature: 20}.Apply("bogus"))
	})

	t.Run("apply does not mutate the receiver", func(t *testing.T) {
		orig := Default()
		_ = orig.Apply(AirDown)
		assert.Equal(t, Default(), orig)
	})
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("warmer")
	require.NoError(t, err)
	assert.Equal(t, Warmer, ev)

	_, err = ParseEvent("hotter")
	assert.Error(t, err)
}

func TestShiverAmplitude(t *testing.T) {
	assert.Equal(t, 0.0, ShiverAmplitude(State{Temperature: 20}))
	assert.Equal(t, 0.0, ShiverAmplitude(State{Temperature: ColdThreshold}))
	assert.InDelta(t, MaxShiver, ShiverAmplitude(State{Temperature: MinTemperature}), 1e-9)

	mid := ShiverAmplitude(State{Temperature: (ColdThreshold + MinTemperature) / 2})
	assert.InDelta(t, MaxShiver/2, mid, 1e-9)
}
