package reinforcement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the solver parameters. It is passed by value into every solve, so
// concurrent solves with different parameters never interfere.
type Config struct {
	// Gamma is the discount factor applied to successor values.
	Gamma float64
	// Theta is the convergence threshold on the largest per-sweep value change.
	Theta float64
	// MaxIter caps the number of sweeps.
	MaxIter int
	// GoalBonus is added to the discounted goal value for any action landing on the goal.
	GoalBonus float64
	// Rewards
	GoalReward     float64
	ObstacleReward float64
	StepReward     float64
}

// DefaultConfig returns the standard gridworld parameters.
func DefaultConfig() Config {
	return Config{
		Gamma:          0.9,
		Theta:          1e-4,
		MaxIter:        1000,
		GoalBonus:      5,
		GoalReward:     20,
		ObstacleReward: -10,
		StepReward:     -0.5,
	}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid solver config")

// Validate checks that the parameters describe a terminating, discounted problem.
func (cfg Config) Validate() error {
	if cfg.Gamma < 0 || cfg.Gamma >= 1 {
		return fmt.Errorf("%w: gamma %v not in [0,1)", ErrInvalidConfig, cfg.Gamma)
	}
	if cfg.Theta <= 0 {
		return fmt.Errorf("%w: theta %v must be positive", ErrInvalidConfig, cfg.Theta)
	}
	if cfg.MaxIter < 1 {
		return fmt.Errorf("%w: maxIter %d must be positive", ErrInvalidConfig, cfg.MaxIter)
	}
	return nil
}

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// SolverConfig is the on-disk form of the solver parameters: a list of named
// hyper-parameters, any of which may be omitted in favor of the defaults.
type SolverConfig struct {
	// HyperParams is a key-val pair of param names and their value.
	HyperParams []HyperParameter `yaml:"hyperparams"`
	// Settings holds string-valued options for the hosting process, e.g. durations.
	// Keys are lowercase, as viper folds the case of every map key it reads.
	Settings map[string]string `yaml:"settings"`
}

type HyperParameter struct {
	Key string  `yaml:"key"`
	Val float64 `yaml:"val"`
}

func (sc *SolverConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range sc.HyperParams {
		if kvp.Key == param {
			return kvp.Val
		}
	}
	return defaultVal
}

// GetDurationOrDefault parses the named setting as a time.Duration.
func (sc *SolverConfig) GetDurationOrDefault(key string, defaultVal time.Duration) (time.Duration, error) {
	val, ok := sc.Settings[strings.ToLower(key)]
	if !ok {
		return defaultVal, nil
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("setting %s: %w", key, err)
	}
	return duration, nil
}

// Config resolves the hyper-parameters against DefaultConfig.
func (sc *SolverConfig) Config() Config {
	def := DefaultConfig()
	return Config{
		Gamma:          sc.GetHyperParamOrDefault("gamma", def.Gamma),
		Theta:          sc.GetHyperParamOrDefault("theta", def.Theta),
		MaxIter:        int(sc.GetHyperParamOrDefault("maxIter", float64(def.MaxIter))),
		GoalBonus:      sc.GetHyperParamOrDefault("goalBonus", def.GoalBonus),
		GoalReward:     sc.GetHyperParamOrDefault("goalReward", def.GoalReward),
		ObstacleReward: sc.GetHyperParamOrDefault("obstacleReward", def.ObstacleReward),
		StepReward:     sc.GetHyperParamOrDefault("stepReward", def.StepReward),
	}
}

// FromYaml reads a {kind, def} document. The def body is re-decoded with yaml so that
// different kinds can carry differently shaped bodies.
func FromYaml(path string) (*SolverConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}

	var body []byte
	if body, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := &SolverConfig{}
	if err = yaml.Unmarshal(body, innerConfig); err != nil {
		return nil, err
	}

	return innerConfig, nil
}
