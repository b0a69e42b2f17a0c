package experiment

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config describes a sweep over the number of stored messages.
type Config struct {
	Clusters int `yaml:"clusters"`
	Fanals   int `yaml:"fanals"`
	MinOrder int `yaml:"min_order"`
	MaxOrder int `yaml:"max_order"`

	MinMessages int `yaml:"min_messages"`
	MaxMessages int `yaml:"max_messages"`
	Steps       int `yaml:"steps"`

	// Unknowns is the number of sub-messages erased before recall.
	Unknowns   int `yaml:"unknowns"`
	Iterations int `yaml:"iterations"`

	// A step stops once TargetErrors guided recalls have failed, or after
	// MinTrials trials if blind recall has not failed at all. MaxTrials
	// bounds the number of trials per step; 0 means no bound.
	TargetErrors int `yaml:"target_errors"`
	MinTrials    int `yaml:"min_trials"`
	MaxTrials    int `yaml:"max_trials"`

	Seed    uint64 `yaml:"seed"`
	Workers int    `yaml:"workers"`
}

// DefaultConfig reproduces the published experiment: 100 clusters of 64
// fanals, messages of order 12 with 3 erased sub-messages, from 450000 down
// to 50000 stored messages. Steps run on all CPUs.
func DefaultConfig() Config {
	return Config{
		Clusters:     100,
		Fanals:       64,
		MinOrder:     12,
		MaxOrder:     12,
		MinMessages:  50000,
		MaxMessages:  450000,
		Steps:        30,
		Unknowns:     3,
		Iterations:   4,
		TargetErrors: 100,
		MinTrials:    10,
		Workers:      runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every inconsistent parameter.
func (c Config) Validate() error {
	var errs []error
	if c.Clusters < 2 {
		errs = append(errs, fmt.Errorf("clusters must be at least 2, got %d", c.Clusters))
	}
	if c.Fanals < 1 {
		errs = append(errs, fmt.Errorf("fanals must be positive, got %d", c.Fanals))
	}
	if c.MinOrder < 1 || c.MinOrder > c.MaxOrder {
		errs = append(errs, fmt.Errorf("order range [%d,%d] is empty", c.MinOrder, c.MaxOrder))
	}
	if c.MaxOrder > c.Clusters {
		errs = append(errs, fmt.Errorf("max_order %d exceeds %d clusters", c.MaxOrder, c.Clusters))
	}
	if c.Unknowns < 0 || c.Unknowns >= c.MinOrder {
		errs = append(errs, fmt.Errorf("unknowns must be in [0,%d), got %d", c.MinOrder, c.Unknowns))
	}
	if c.MinMessages < 1 || c.MinMessages > c.MaxMessages {
		errs = append(errs, fmt.Errorf("message range [%d,%d] is empty", c.MinMessages, c.MaxMessages))
	}
	if c.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must not be negative, got %d", c.Steps))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.TargetErrors < 1 {
		errs = append(errs, fmt.Errorf("target_errors must be positive, got %d", c.TargetErrors))
	}
	if c.MinTrials < 0 || c.MaxTrials < 0 {
		errs = append(errs, errors.New("trial bounds must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// StepSize is the decrease in stored messages between two steps.
func (c Config) StepSize() int {
	if c.Steps == 0 {
		return 0
	}
	return (c.MaxMessages - c.MinMessages) / c.Steps
}

// Messages is the number of messages stored at step i.
func (c Config) Messages(step int) int {
	return c.MaxMessages - step*c.StepSize()
}
