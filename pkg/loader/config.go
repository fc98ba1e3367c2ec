package loader

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/netpublish/sifloader/pkg/fetch"
	"github.com/netpublish/sifloader/pkg/validation"
)

// Defaults applied by LoadConfig when the file leaves a field unset.
const (
	DefaultWorkers     = 4
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
	DefaultFileTimeout = 5 * time.Minute
)

// Config drives a load run. Loaded from a YAML file.
type Config struct {
	// Input selection. SIFDir is scanned for *.sif; SingleFile restricts
	// the run to one file inside it.
	SIFDir     string `yaml:"sif_dir" validate:"required"`
	SingleFile string `yaml:"single_file"`

	// Pipeline inputs.
	LoadPlan          string   `yaml:"load_plan" validate:"required"`
	GeneSymbolMaps    []string `yaml:"gene_symbol_maps"`
	NetworkAttributes string   `yaml:"network_attributes"`
	Style             string   `yaml:"style"`
	HasHeader         bool     `yaml:"has_header"`

	// Destination.
	Server   string `yaml:"server" validate:"omitempty,url"`
	Owner    string `yaml:"owner" validate:"required"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Resolver service endpoint. Empty uses the service default.
	ResolverURL string `yaml:"resolver_url" validate:"omitempty,url"`

	// Stamped onto every network as the "version" attribute.
	ReleaseVersion string `yaml:"release_version"`

	// Post-build passes.
	AdjudicateRedundantEdges bool `yaml:"adjudicate_redundant_edges"`

	// Run behavior.
	Workers     int           `yaml:"workers" validate:"omitempty,gte=1,lte=64"`
	MaxAttempts int           `yaml:"max_attempts" validate:"omitempty,gte=1"`
	Backoff     time.Duration `yaml:"backoff"`
	FileTimeout time.Duration `yaml:"file_timeout"`

	// Optional object-store fetch run before scanning SIFDir.
	Fetch *fetch.Config `yaml:"fetch"`
}

// LoadConfig reads, defaults, and validates a run configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
		if n := runtime.NumCPU(); n < c.Workers {
			c.Workers = n
		}
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.FileTimeout <= 0 {
		c.FileTimeout = DefaultFileTimeout
	}
}

// Validate checks tag constraints and filesystem preconditions.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("loader config: %w", err)
	}

	cv := validation.NewConfigValidator("loader").
		DirExists("sif_dir", c.SIFDir).
		FileExists("load_plan", c.LoadPlan).
		Positive("workers", c.Workers).
		MinDuration("backoff", c.Backoff, 10*time.Millisecond).
		MinDuration("file_timeout", c.FileTimeout, time.Second)

	for _, p := range c.GeneSymbolMaps {
		cv.FileExists("gene_symbol_maps", p)
	}
	if c.NetworkAttributes != "" {
		cv.FileExists("network_attributes", c.NetworkAttributes)
	}
	if c.Style != "" {
		cv.FileExists("style", c.Style)
	}
	if c.Username != "" || c.Server != "" {
		cv.Custom("credentials", func() error {
			if c.Server != "" && (c.Username == "" || c.Password == "") {
				return fmt.Errorf("server %s requires username and password", c.Server)
			}
			return nil
		})
	}

	return cv.Err()
}
