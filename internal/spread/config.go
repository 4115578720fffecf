package spread

import "fmt"

// Config enumerates every option the spread engine recognizes. Callers build
// one from DefaultConfig, optionally overlay a parameter file, and validate
// once before handing it to the engine; the engine itself never re-defaults
// or coerces values.
type Config struct {
	// Spread potential weights. They need not sum to 1; the output clip is
	// the safety net.
	WindWeight    float64 `yaml:"wind_weight"`
	SlopeWeight   float64 `yaml:"slope_weight"`
	DrynessWeight float64 `yaml:"dryness_weight"`

	// Normalization caps for the potential factors.
	SlopeMaxDeg float64 `yaml:"slope_max_deg"` // slope at which the slope factor saturates
	WindNormMax float64 `yaml:"wind_norm_max"` // wind speed (m/s) at which the wind factor saturates

	// Propagation rule.
	SpreadThreshold float64 `yaml:"spread_threshold"` // minimum potential to ignite a neighbor
	Neighbors       int     `yaml:"neighbors"`        // 4 (cross) or 8 (full 3x3 block)
	SeedStrength    float64 `yaml:"seed_strength"`    // intensity written at detection cells
	NTimesteps      int     `yaml:"n_timesteps"`

	// Monte Carlo perturbation magnitudes (fraction of field value).
	WindPerturbation float64 `yaml:"wind_perturbation"`
	TempPerturbation float64 `yaml:"temp_perturbation"`
	RHPerturbation   float64 `yaml:"rh_perturbation"`

	// Ensemble.
	NEnsemble int   `yaml:"n_ensemble"`
	BaseSeed  int64 `yaml:"base_seed"`
}

// DefaultConfig returns the reference parameterization.
func DefaultConfig() Config {
	return Config{
		WindWeight:       0.5,
		SlopeWeight:      0.3,
		DrynessWeight:    0.2,
		SlopeMaxDeg:      45,
		WindNormMax:      20,
		SpreadThreshold:  0.3,
		Neighbors:        8,
		SeedStrength:     1.0,
		NTimesteps:       24,
		WindPerturbation: 0.2,
		TempPerturbation: 0.05,
		RHPerturbation:   0.1,
		NEnsemble:        20,
		BaseSeed:         42,
	}
}

// Validate rejects configurations the engine cannot honor. Violations are
// configuration errors, not degenerate runs.
func (c Config) Validate() error {
	if c.WindWeight < 0 || c.SlopeWeight < 0 || c.DrynessWeight < 0 {
		return fmt.Errorf("spread config: weights must be non-negative (wind=%v slope=%v dryness=%v)",
			c.WindWeight, c.SlopeWeight, c.DrynessWeight)
	}
	if c.SlopeMaxDeg <= 0 {
		return fmt.Errorf("spread config: slope_max_deg must be positive, got %v", c.SlopeMaxDeg)
	}
	if c.WindNormMax <= 0 {
		return fmt.Errorf("spread config: wind_norm_max must be positive, got %v", c.WindNormMax)
	}
	if c.SpreadThreshold < 0 || c.SpreadThreshold > 1 {
		return fmt.Errorf("spread config: spread_threshold must be in [0,1], got %v", c.SpreadThreshold)
	}
	if c.Neighbors != 4 && c.Neighbors != 8 {
		return fmt.Errorf("spread config: neighbors must be 4 or 8, got %d", c.Neighbors)
	}
	if c.SeedStrength <= 0 || c.SeedStrength > 1 {
		return fmt.Errorf("spread config: seed_strength must be in (0,1], got %v", c.SeedStrength)
	}
	if c.NTimesteps < 0 {
		return fmt.Errorf("spread config: n_timesteps must be non-negative, got %d", c.NTimesteps)
	}
	if c.WindPerturbation < 0 || c.TempPerturbation < 0 || c.RHPerturbation < 0 {
		return fmt.Errorf("spread config: perturbation magnitudes must be non-negative")
	}
	if c.NEnsemble < 1 {
		return fmt.Errorf("spread config: n_ensemble must be at least 1, got %d", c.NEnsemble)
	}
	return nil
}
