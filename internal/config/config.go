// Package config loads the spne command line configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"

	"github.com/timpalpant/spne"
	"github.com/timpalpant/spne/games/ultimatum"
)

// DefaultPath is the config file read when none is given on the command line.
var DefaultPath = filepath.Join(xdg.ConfigHome, "spne", "config.hcl")

// Config is the complete command line configuration.
type Config struct {
	Solver    *SolverSettings    `hcl:"solver,block"`
	Output    *OutputSettings    `hcl:"output,block"`
	Ultimatum *ultimatum.Payoffs `hcl:"ultimatum,block"`
	Centipede *CentipedeSettings `hcl:"centipede,block"`
}

// SolverSettings maps onto spne solver options.
type SolverSettings struct {
	Recursive             bool `hcl:"recursive,optional"`
	SharedInformationSets bool `hcl:"shared_information_sets,optional"`
	MaxDepth              int  `hcl:"max_depth,optional"`
}

// OutputSettings controls how results are written.
type OutputSettings struct {
	// Format is either "json" or "text".
	Format string `hcl:"format,optional"`
	// GraphDir, if set, receives a DOT rendering of every solved game.
	GraphDir string `hcl:"graph_dir,optional"`
	// Compress gzips rendered graphs.
	Compress bool `hcl:"compress,optional"`
}

type CentipedeSettings struct {
	Stages int `hcl:"stages,optional"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	payoffs := ultimatum.DefaultPayoffs()
	return &Config{
		Solver:    &SolverSettings{},
		Output:    &OutputSettings{Format: "text"},
		Ultimatum: &payoffs,
		Centipede: &CentipedeSettings{Stages: 10},
	}
}

// Load reads the configuration from the HCL file at filename.
// A missing file yields the default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to parse %s: %s", filename, diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, errors.Errorf("failed to decode %s: %s", filename, diags.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", filename)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Solver == nil {
		c.Solver = defaults.Solver
	}
	if c.Output == nil {
		c.Output = defaults.Output
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Ultimatum == nil {
		c.Ultimatum = defaults.Ultimatum
	}
	if c.Centipede == nil {
		c.Centipede = defaults.Centipede
	}
	if c.Centipede.Stages == 0 {
		c.Centipede.Stages = defaults.Centipede.Stages
	}
}

// Validate checks the configuration for values the solver cannot use.
func (c *Config) Validate() error {
	if c.Solver.MaxDepth < 0 {
		return errors.Errorf("invalid max_depth: %d", c.Solver.MaxDepth)
	}

	switch c.Output.Format {
	case "json", "text":
	default:
		return errors.Errorf("unknown output format: %q", c.Output.Format)
	}

	if c.Centipede.Stages < 1 {
		return errors.Errorf("invalid number of centipede stages: %d", c.Centipede.Stages)
	}

	return nil
}

// SolverOptions returns the solver options selected by the configuration.
func (c *Config) SolverOptions() []spne.Option {
	var opts []spne.Option
	if c.Solver.Recursive {
		opts = append(opts, spne.WithRecursion())
	}
	if c.Solver.SharedInformationSets {
		opts = append(opts, spne.WithSharedInformationSets())
	}
	if c.Solver.MaxDepth > 0 {
		opts = append(opts, spne.WithMaxDepth(c.Solver.MaxDepth))
	}

	return opts
}
