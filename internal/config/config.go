package config

import (
	"fmt"
	"os"

	"github.com/fxnlabs/fftbench/internal/bench"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Metrics struct {
		// Textfile, when set, receives the Prometheus text exposition of the
		// run's metrics on exit.
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
	Sweep struct {
		Cases   []bench.Params `yaml:"cases"`
		Threads []int          `yaml:"threads"`
		Output  string         `yaml:"output"`
	} `yaml:"sweep"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var config Config
	config.Logger.Verbosity = "info"
	config.Sweep.Cases = bench.DefaultCases()
	config.Sweep.Threads = bench.DefaultThreads()
	return &config
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

// Validate rejects sweep settings no benchmark could run with.
func (c *Config) Validate() error {
	for i, p := range c.Sweep.Cases {
		if p.Batch <= 0 || p.Length <= 0 {
			return fmt.Errorf("sweep case %d: batch and length must be positive, got %d and %d", i, p.Batch, p.Length)
		}
	}
	for i, n := range c.Sweep.Threads {
		if n <= 0 {
			return fmt.Errorf("sweep thread count %d: must be positive, got %d", i, n)
		}
	}
	return nil
}
