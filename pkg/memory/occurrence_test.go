package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/srobinson/attention-matters/pkg/phasor"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

func newTestOccurrence() *Occurrence {
	return &Occurrence{
		ID:       1,
		Word:     "hello",
		Position: quaternion.Identity(),
		Phasor:   phasor.New(0),
	}
}

func TestActivateIncrementsCount(t *testing.T) {
	o := newTestOccurrence()
	now := time.Now()
	o.Activate(now)
	assert.Equal(t, uint32(1), o.ActivationCount)
	assert.Equal(t, now, o.LastActivatedAt)
}

func TestPlasticityTable(t *testing.T) {
	cases := []struct {
		count    uint32
		expected float64
	}{
		{0, 1.0},
		{1, 0.5906},
		{10, 0.2943},
		{100, 0.1779},
	}
	for _, c := range cases {
		o := newTestOccurrence()
		o.ActivationCount = c.count
		assert.InDelta(t, c.expected, o.Plasticity(), 1e-3)
	}
}

func TestDriftRateZeroContainer(t *testing.T) {
	o := newTestOccurrence()
	assert.Equal(t, 0.0, o.DriftRate(0))
}

func TestDriftRateBelowThreshold(t *testing.T) {
	o := newTestOccurrence()
	o.ActivationCount = 4
	assert.InDelta(t, 0.8, o.DriftRate(10), 1e-9)
	assert.False(t, o.Anchored)
}

func TestDriftRateAtThresholdAnchors(t *testing.T) {
	o := newTestOccurrence()
	o.ActivationCount = 5
	assert.Equal(t, 0.0, o.DriftRate(10))
	assert.True(t, o.Anchored)
}

func TestDriftRateAboveThresholdAnchors(t *testing.T) {
	o := newTestOccurrence()
	o.ActivationCount = 6
	assert.Equal(t, 0.0, o.DriftRate(10))
	assert.True(t, o.Anchored)
}

func TestAnchoredStaysAnchored(t *testing.T) {
	o := newTestOccurrence()
	o.ActivationCount = 6
	o.DriftRate(10)
	assert.True(t, o.Anchored)

	o.ActivationCount = 0
	assert.Equal(t, 0.0, o.DriftRate(10))
	assert.True(t, o.Anchored)
}
