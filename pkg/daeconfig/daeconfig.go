// Package daeconfig loads the memory engine's tunables the way the rest
// of the codebase loads configuration: a viper-backed struct with sane
// defaults that can be overridden by a config file or environment
// variables.
package daeconfig

import (
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/srobinson/attention-matters/pkg/phasor"
)

// DriftWeighting selects how a drifting occurrence's step size is split
// between the two occurrences in a pair.
type DriftWeighting string

const (
	// DriftWeightingAsymmetric is the spec-fixed default: occurrence a's
	// step toward b is weighted by idf(b)/(idf(a)+idf(b)).
	DriftWeightingAsymmetric DriftWeighting = "asymmetric"
	// DriftWeightingAverage splits the step evenly regardless of IDF,
	// provided for bit-compatibility with snapshots produced under a
	// different weighting convention.
	DriftWeightingAverage DriftWeighting = "average"
)

// CouplingMode selects how the Kuramoto step splits K_con/K_sub.
type CouplingMode string

const (
	// CouplingModeMassDerived computes K_con, for each query, as the
	// conscious share of the mass held by occurrences of words present in
	// both manifolds.
	CouplingModeMassDerived CouplingMode = "mass-derived"
	// CouplingModeFixed uses a fixed K_con for every query.
	CouplingModeFixed CouplingMode = "fixed"
)

// Config holds every engine tunable. Geometric constants default to their
// φ/π-derived values and are validated at System construction; they exist
// here purely for controlled experimentation, not for runtime mutation.
type Config struct {
	DriftWeighting     DriftWeighting
	CouplingMode       CouplingMode
	FixedKCon          float64
	NeighborhoodRadius float64
	Threshold          float64
	SlerpThreshold      float64
}

// Default returns the engine's default configuration, matching the
// constants fixed by the specification.
func Default() *Config {
	return &Config{
		DriftWeighting:     DriftWeightingAsymmetric,
		CouplingMode:       CouplingModeMassDerived,
		FixedKCon:          0.5,
		NeighborhoodRadius: math.Pi / phasor.Phi,
		Threshold:          0.5,
		SlerpThreshold:      0.9995,
	}
}

// Load reads configuration from path (if non-empty) and DAE_-prefixed
// environment variables, layered over Default().
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DAE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := Default()
	v.SetDefault("drift_weighting", string(def.DriftWeighting))
	v.SetDefault("coupling_mode", string(def.CouplingMode))
	v.SetDefault("fixed_k_con", def.FixedKCon)
	v.SetDefault("neighborhood_radius", def.NeighborhoodRadius)
	v.SetDefault("threshold", def.Threshold)
	v.SetDefault("slerp_threshold", def.SlerpThreshold)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return &Config{
		DriftWeighting:     DriftWeighting(v.GetString("drift_weighting")),
		CouplingMode:       CouplingMode(v.GetString("coupling_mode")),
		FixedKCon:          v.GetFloat64("fixed_k_con"),
		NeighborhoodRadius: v.GetFloat64("neighborhood_radius"),
		Threshold:          v.GetFloat64("threshold"),
		SlerpThreshold:      v.GetFloat64("slerp_threshold"),
	}, nil
}
