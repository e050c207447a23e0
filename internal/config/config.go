// Package config loads the pokerkelly HCL configuration file.
//
//	log_level = "info"
//
//	estimator {
//	  trials        = 10000
//	  shards        = 8
//	  workers       = 4
//	  tie_policy    = "half"
//	  evaluator     = "native"
//	  timeout       = "2s"
//	  max_trials    = 50000
//	  target_stderr = 0.005
//	}
//
//	kelly {
//	  half_kelly        = true
//	  starting_bankroll = 100
//	}
//
//	strategy {
//	  profile  = "Standard"
//	  gto_file = "charts/solver.json"
//	}
//
//	storage {
//	  path = "pokerkelly.db"
//	}
//
//	server {
//	  address    = "localhost:8080"
//	  max_trials = 200000
//	  timeout    = "5s"
//	}
//
// Every block and attribute is optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/pokerkelly/equity"
	"github.com/lox/pokerkelly/internal/evaluator"
	"github.com/lox/pokerkelly/internal/storage"
	"github.com/lox/pokerkelly/session"
	"github.com/lox/pokerkelly/strategy"
	"github.com/rs/zerolog"
)

// DefaultFile is the configuration file read when none is named.
const DefaultFile = "pokerkelly.hcl"

// Config represents the complete configuration.
type Config struct {
	LogLevel  string          `hcl:"log_level,optional"`
	Estimator *EstimatorBlock `hcl:"estimator,block"`
	Kelly     *KellyBlock     `hcl:"kelly,block"`
	Strategy  *StrategyBlock  `hcl:"strategy,block"`
	Storage   *StorageBlock   `hcl:"storage,block"`
	Server    *ServerBlock    `hcl:"server,block"`
}

// EstimatorBlock configures equity estimation.
type EstimatorBlock struct {
	Trials       int     `hcl:"trials,optional"`
	Shards       int     `hcl:"shards,optional"`
	Workers      int     `hcl:"workers,optional"`
	TiePolicy    string  `hcl:"tie_policy,optional"`
	Evaluator    string  `hcl:"evaluator,optional"`
	Timeout      string  `hcl:"timeout,optional"`
	MaxTrials    int     `hcl:"max_trials,optional"`
	TargetStdErr float64 `hcl:"target_stderr,optional"`
}

// KellyBlock configures bet sizing.
type KellyBlock struct {
	HalfKelly        *bool   `hcl:"half_kelly,optional"`
	StartingBankroll float64 `hcl:"starting_bankroll,optional"`
}

// StrategyBlock selects a preflop chart and an optional GTO overlay.
type StrategyBlock struct {
	Profile string `hcl:"profile,optional"`
	GTOFile string `hcl:"gto_file,optional"`
}

// StorageBlock configures the bankroll history database.
type StorageBlock struct {
	Path string `hcl:"path,optional"`
}

// ServerBlock configures the WebSocket server. MaxTrials and Timeout bound
// every request on top of the estimator limits.
type ServerBlock struct {
	Address   string `hcl:"address,optional"`
	MaxTrials int    `hcl:"max_trials,optional"`
	Timeout   string `hcl:"timeout,optional"`
}

// Request limits for the server when the file names none.
const (
	DefaultServerMaxTrials = 200_000
	DefaultServerTimeout   = "5s"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. A missing file yields DefaultConfig.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.Estimator == nil {
		c.Estimator = &EstimatorBlock{}
	}
	if c.Estimator.Trials == 0 {
		c.Estimator.Trials = 10_000
	}
	if c.Estimator.Shards == 0 {
		c.Estimator.Shards = equity.DefaultShards
	}
	if c.Estimator.Workers == 0 {
		c.Estimator.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Estimator.TiePolicy == "" {
		c.Estimator.TiePolicy = "half"
	}
	if c.Estimator.Evaluator == "" {
		c.Estimator.Evaluator = evaluator.Native
	}

	if c.Kelly == nil {
		c.Kelly = &KellyBlock{}
	}
	if c.Kelly.HalfKelly == nil {
		half := true
		c.Kelly.HalfKelly = &half
	}
	if c.Kelly.StartingBankroll == 0 {
		c.Kelly.StartingBankroll = session.DefaultBankroll
	}

	if c.Strategy == nil {
		c.Strategy = &StrategyBlock{}
	}

	if c.Storage == nil {
		c.Storage = &StorageBlock{}
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "pokerkelly.db"
	}

	if c.Server == nil {
		c.Server = &ServerBlock{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost:8080"
	}
	if c.Server.MaxTrials == 0 {
		c.Server.MaxTrials = DefaultServerMaxTrials
	}
	if c.Server.Timeout == "" {
		c.Server.Timeout = DefaultServerTimeout
	}
}

// Validate checks values that decode cleanly but cannot be used.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	e := c.Estimator
	if e.Trials < 1 {
		return fmt.Errorf("estimator: trials must be positive, got %d", e.Trials)
	}
	if e.Shards < 1 {
		return fmt.Errorf("estimator: shards must be positive, got %d", e.Shards)
	}
	if e.Workers < 1 {
		return fmt.Errorf("estimator: workers must be positive, got %d", e.Workers)
	}
	if e.MaxTrials < 0 {
		return fmt.Errorf("estimator: max_trials must not be negative, got %d", e.MaxTrials)
	}
	if e.TargetStdErr < 0 || e.TargetStdErr >= 0.5 {
		return fmt.Errorf("estimator: target_stderr %v out of range [0, 0.5)", e.TargetStdErr)
	}
	if _, err := equity.ParseTiePolicy(e.TiePolicy); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}
	if !slices.Contains(evaluator.Names(), e.Evaluator) {
		return fmt.Errorf("estimator: unknown evaluator %q (have %v)", e.Evaluator, evaluator.Names())
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}

	if c.Server.MaxTrials < 0 {
		return fmt.Errorf("server: max_trials must not be negative, got %d", c.Server.MaxTrials)
	}
	if _, err := parseTimeout("server", c.Server.Timeout); err != nil {
		return err
	}

	if c.Kelly.StartingBankroll < 0 {
		return fmt.Errorf("kelly: starting_bankroll must not be negative, got %v", c.Kelly.StartingBankroll)
	}

	if c.Strategy.Profile != "" {
		p, err := strategy.ParseProfile(c.Strategy.Profile)
		if err != nil {
			return fmt.Errorf("strategy: %w", err)
		}
		if p == strategy.GTO && c.Strategy.GTOFile == "" {
			return errors.New("strategy: profile GTO requires gto_file")
		}
	}
	return nil
}

// Timeout parses estimator.timeout. Empty means no deadline.
func (c *Config) Timeout() (time.Duration, error) {
	return parseTimeout("estimator", c.Estimator.Timeout)
}

func parseTimeout(block, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid timeout %q", block, s)
	}
	return d, nil
}

// HalfKelly reports the configured sizing mode.
func (c *Config) HalfKelly() bool {
	return *c.Kelly.HalfKelly
}

// EstimatorOptions builds estimator options from the estimator block.
func (c *Config) EstimatorOptions(logger zerolog.Logger) ([]equity.Option, error) {
	policy, err := equity.ParseTiePolicy(c.Estimator.TiePolicy)
	if err != nil {
		return nil, err
	}
	ev, err := evaluator.ByName(c.Estimator.Evaluator)
	if err != nil {
		return nil, err
	}
	return []equity.Option{
		equity.WithShards(c.Estimator.Shards),
		equity.WithWorkers(c.Estimator.Workers),
		equity.WithTiePolicy(policy),
		equity.WithEvaluator(ev),
		equity.WithLogger(logger),
	}, nil
}

// Budget builds the estimation budget.
func (c *Config) Budget() (equity.Budget, error) {
	timeout, err := c.Timeout()
	if err != nil {
		return equity.Budget{}, err
	}
	return equity.Budget{
		MaxTrials:    c.Estimator.MaxTrials,
		Timeout:      timeout,
		TargetStdErr: c.Estimator.TargetStdErr,
	}, nil
}

// ServeBudget is Budget tightened by the server block, so no client request
// runs more trials or longer than the server allows.
func (c *Config) ServeBudget() (equity.Budget, error) {
	b, err := c.Budget()
	if err != nil {
		return equity.Budget{}, err
	}
	timeout, err := parseTimeout("server", c.Server.Timeout)
	if err != nil {
		return equity.Budget{}, err
	}
	b.MaxTrials = tighter(b.MaxTrials, c.Server.MaxTrials)
	b.Timeout = tighter(b.Timeout, timeout)
	return b, nil
}

// tighter returns the smaller limit, treating zero as unlimited.
func tighter[T int | time.Duration](a, b T) T {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	}
	return min(a, b)
}

// Catalog returns the built-in charts plus the GTO overlay when gto_file is
// set.
func (c *Config) Catalog() (*strategy.Catalog, error) {
	if c.Strategy.GTOFile == "" {
		return strategy.NewCatalog(nil), nil
	}
	chart, err := strategy.LoadOverlayFile(c.Strategy.GTOFile)
	if err != nil {
		return nil, err
	}
	return strategy.NewCatalog(chart), nil
}

// StorageConfig returns the database settings.
func (c *Config) StorageConfig() storage.Config {
	return storage.DefaultConfig(c.Storage.Path)
}
