package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/mitchellh/go-homedir"
	"github.com/sdcio/parsort/pkg/sorting"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Sort       *SortConfig `yaml:"sort,omitempty" json:"sort,omitempty"`
	Pool       *PoolConfig `yaml:"pool,omitempty" json:"pool,omitempty"`
	Prometheus *PromConfig `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
}

type SortConfig struct {
	Algorithm string `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	Items     int    `yaml:"items,omitempty" json:"items,omitempty"`
	// Seed for the input generator; 0 derives one from the process id.
	Seed uint32 `yaml:"seed,omitempty" json:"seed,omitempty"`
	// MaxGoroutines caps concurrent merges of the bounded algorithm.
	MaxGoroutines int `yaml:"max-goroutines,omitempty" json:"max-goroutines,omitempty"`
	ForkDepth     int `yaml:"fork-depth,omitempty" json:"fork-depth,omitempty"`
}

type PoolConfig struct {
	Workers      int  `yaml:"workers,omitempty" json:"workers,omitempty"`
	LockOSThread bool `yaml:"lock-os-thread,omitempty" json:"lock-os-thread,omitempty"`
}

type PromConfig struct {
	// Address serves /metrics while sorting when set.
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	// Dump writes the collected metrics to stderr after the run.
	Dump bool `yaml:"dump,omitempty" json:"dump,omitempty"`
}

// New reads file (if not empty) and fills in defaults.
func New(file string) (*Config, error) {
	c := new(Config)
	if file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		err = yaml.UnmarshalStrict(b, c)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	err := c.ValidateSetDefaults()
	return c, err
}

// ValidateSetDefaults is exported so command line overrides can be
// re-validated after they are applied.
func (c *Config) ValidateSetDefaults() error {
	if c.Sort == nil {
		c.Sort = &SortConfig{}
	}
	if err := c.Sort.validateSetDefaults(); err != nil {
		return err
	}
	if c.Pool == nil {
		c.Pool = &PoolConfig{}
	}
	if err := c.Pool.validateSetDefaults(); err != nil {
		return err
	}
	if c.Prometheus == nil {
		c.Prometheus = &PromConfig{}
	}
	return nil
}

func (s *SortConfig) validateSetDefaults() error {
	if s.Algorithm == "" {
		s.Algorithm = defaultAlgorithm
	}
	if !slices.Contains(sorting.Algorithms(), s.Algorithm) {
		return fmt.Errorf("unknown sort algorithm %q, expected one of %v", s.Algorithm, sorting.Algorithms())
	}
	if s.Items < 0 {
		return fmt.Errorf("items must not be negative, got %d", s.Items)
	}
	if s.Items == 0 {
		s.Items = defaultItems
	}
	if s.MaxGoroutines < 0 {
		return errors.New("max-goroutines must not be negative")
	}
	if s.MaxGoroutines == 0 {
		s.MaxGoroutines = defaultMaxGoroutines
	}
	if s.ForkDepth <= 0 {
		s.ForkDepth = defaultForkDepth
	}
	return nil
}

func (p *PoolConfig) validateSetDefaults() error {
	if p.Workers < 0 {
		return fmt.Errorf("pool workers must not be negative, got %d", p.Workers)
	}
	if p.Workers == 0 {
		p.Workers = runtime.NumCPU()
	}
	return nil
}
