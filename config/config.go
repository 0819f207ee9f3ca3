// Package config loads the citrine CLI configuration from YAML. A
// config file overlays DefaultConfig; unknown keys are rejected.
package config

import (
	"bytes"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/citrinelab/citrine/pkg/errors"
)

// Duration is a time.Duration that decodes from YAML strings like
// "5s" or "30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.NewValidationError("duration", "not a duration (want e.g. \"5s\")", raw)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// HTTPConfig tunes the REST client.
type HTTPConfig struct {
	Timeout     Duration `yaml:"timeout"`
	RetryBudget Duration `yaml:"retry_budget"`
}

// PollConfig tunes long-running job polling.
type PollConfig struct {
	Interval Duration `yaml:"interval"`
	Deadline Duration `yaml:"deadline"`
}

// LearnConfig parameterizes the sequential-learning command.
type LearnConfig struct {
	Target      string   `yaml:"target"`
	Goal        string   `yaml:"goal"`
	Iterations  int      `yaml:"iterations"`
	BatchSize   int      `yaml:"batch_size"`
	Acquisition string   `yaml:"acquisition"`
	Selection   string   `yaml:"selection"`
	Pool        []string `yaml:"pool"`
	EarlyStop   *float64 `yaml:"early_stop"`
}

// LogConfig tunes logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the root configuration.
type Config struct {
	// Site is the platform base URL.
	Site string `yaml:"site"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`

	HTTP    HTTPConfig  `yaml:"http"`
	Poll    PollConfig  `yaml:"poll"`
	Learn   LearnConfig `yaml:"learn"`
	Logging LogConfig   `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site:      "https://citrination.com",
		APIKeyEnv: "CITRINATION_API_KEY",
		HTTP: HTTPConfig{
			Timeout:     Duration(2 * time.Minute),
			RetryBudget: Duration(90 * time.Second),
		},
		Poll: PollConfig{
			Interval: Duration(5 * time.Second),
			Deadline: Duration(30 * time.Minute),
		},
		Learn: LearnConfig{
			Goal:        "Max",
			Iterations:  10,
			BatchSize:   1,
			Acquisition: "MLI",
			Selection:   "design",
		},
		Logging: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for nonsense values.
func (c *Config) Validate() error {
	if c.Site == "" {
		return errors.NewValidationError("site", "site URL required", "")
	}
	if c.APIKeyEnv == "" {
		return errors.NewValidationError("api_key_env", "API key variable name required", "")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.NewValidationError("http.timeout", "must be positive", c.HTTP.Timeout.Std().String())
	}
	if c.Poll.Interval <= 0 {
		return errors.NewValidationError("poll.interval", "must be positive", c.Poll.Interval.Std().String())
	}
	if c.Poll.Deadline <= c.Poll.Interval {
		return errors.NewValidationError("poll.deadline", "must exceed poll.interval", c.Poll.Deadline.Std().String())
	}
	if c.Learn.Goal != "Max" && c.Learn.Goal != "Min" {
		return errors.NewValidationError("learn.goal", "goal must be Max or Min", c.Learn.Goal)
	}
	if c.Learn.Iterations <= 0 {
		return errors.NewValidationError("learn.iterations", "must be positive", c.Learn.Iterations)
	}
	if c.Learn.BatchSize <= 0 {
		return errors.NewValidationError("learn.batch_size", "must be positive", c.Learn.BatchSize)
	}
	switch c.Learn.Selection {
	case "design", "predict":
	default:
		return errors.NewValidationError("learn.selection", "selection must be design or predict", c.Learn.Selection)
	}
	return nil
}

// APIKey resolves the API key from the configured environment
// variable.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.APIKeyEnv)
	if key == "" {
		return "", errors.Newf("environment variable %s is empty; export your API key there", c.APIKeyEnv)
	}
	return key, nil
}
