package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the demo configuration, loaded from a YAML file and then
// overridden by any flags given on the command line.
type Config struct {
	Name        string        `yaml:"name"`
	LogLevel    string        `yaml:"logLevel"`
	Delay       time.Duration `yaml:"delay"`       // simulated processing time per value
	Producers   int           `yaml:"producers"`   // number of producer goroutines
	Interval    time.Duration `yaml:"interval"`    // time between sends, per producer
	Duration    time.Duration `yaml:"duration"`    // how long to run; 0 means until interrupted
	MetricsAddr string        `yaml:"metricsAddr"` // if set, serve /metrics here
}

func defaultConfig() Config {
	return Config{
		Name:      "layout",
		LogLevel:  "info",
		Delay:     time.Second,
		Producers: 2,
		Interval:  100 * time.Millisecond,
		Duration:  5 * time.Second,
	}
}

// loadConfig reads a configuration from filename. Settings missing from the
// file keep their default values. If filename is empty, loadConfig returns
// the defaults.
func loadConfig(filename string) (Config, error) {
	cfg := defaultConfig()
	if filename == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", filename, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative: %v", c.Delay))
	}
	if c.Producers <= 0 {
		errs = append(errs, fmt.Errorf("producers must be positive: %d", c.Producers))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive: %v", c.Interval))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative: %v", c.Duration))
	}
	return errors.Join(errs...)
}
