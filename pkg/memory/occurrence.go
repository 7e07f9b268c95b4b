package memory

import (
	"math"
	"time"

	"github.com/srobinson/attention-matters/pkg/phasor"
	"github.com/srobinson/attention-matters/pkg/quaternion"
)

// OccurrenceID is a dense arena index, not a UUID: entity identity is
// fully determined by insertion order so that two systems built from the
// same seed and operation sequence produce identical ids.
type OccurrenceID uint64

// Occurrence is a single word instance living at a point on S³ with its
// own phase.
type Occurrence struct {
	ID              OccurrenceID
	NeighborhoodID  NeighborhoodID
	Word            string
	Position        quaternion.Quaternion
	Phasor          phasor.Phasor
	ActivationCount uint32
	Anchored        bool
	CreatedAt       time.Time
	LastActivatedAt time.Time
}

// Activate increments the occurrence's activation count and refreshes
// its last-activated timestamp.
func (o *Occurrence) Activate(now time.Time) {
	o.ActivationCount++
	o.LastActivatedAt = now
}

// Plasticity returns 1/(1+ln(1+c)), the diminishing-returns factor that
// controls how far the occurrence may still drift.
func (o *Occurrence) Plasticity() float64 {
	return 1.0 / (1.0 + math.Log(1+float64(o.ActivationCount)))
}

// DriftRate returns (activation_count/neighborhoodTotal)/Θ clamped to
// [0,1]. Once the ratio reaches 1 the occurrence is anchored permanently
// and every subsequent call returns 0.
func (o *Occurrence) DriftRate(neighborhoodTotal uint32) float64 {
	if o.Anchored {
		return 0
	}
	if neighborhoodTotal == 0 {
		return 0
	}

	ratio := float64(o.ActivationCount) / float64(neighborhoodTotal)
	rate := ratio / Threshold
	if rate >= 1 {
		o.Anchored = true
		return 0
	}
	if rate < 0 {
		rate = 0
	}
	return rate
}
