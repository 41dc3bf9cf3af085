// Package config loads run profiles from YAML, JSON or TOML files, .env
// files, and HORARIUM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"horarium/internal/evo"
	"horarium/internal/program"
	"horarium/internal/schedule"
	"horarium/internal/storage"
)

// envPrefix scopes environment overrides: HORARIUM_STORE_BACKEND maps onto
// store.backend.
const envPrefix = "HORARIUM"

// Profile describes one optimization run as configuration. A profile either
// names a registered scenario or points at a catalog file; Selection is a
// selection expression over the resulting catalog.
type Profile struct {
	Scenario  string `mapstructure:"scenario"`
	Catalog   string `mapstructure:"catalog"`
	Selection string `mapstructure:"selection"`

	Seed                  int64   `mapstructure:"seed"`
	Population            int     `mapstructure:"population"`
	Generations           int     `mapstructure:"generations"`
	MaxDepth              int     `mapstructure:"max_depth"`
	FunctionalProbability float64 `mapstructure:"functional_probability"`
	CrossoverProbability  float64 `mapstructure:"crossover_probability"`
	MutationProbability   float64 `mapstructure:"mutation_probability"`
	EliteCount            int     `mapstructure:"elite_count"`
	TournamentSize        int     `mapstructure:"tournament_size"`
	Postprocessor         string  `mapstructure:"postprocessor"`
	Workers               int     `mapstructure:"workers"`
	ExpectedBlocks        int     `mapstructure:"expected_blocks"`
	IdleThreshold         int     `mapstructure:"idle_threshold"`

	Store  StoreProfile  `mapstructure:"store"`
	Output OutputProfile `mapstructure:"output"`
	Log    LogProfile    `mapstructure:"log"`
}

// StoreProfile picks the persistence backend.
type StoreProfile struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// OutputProfile places run artifacts and exports.
type OutputProfile struct {
	BenchmarksDir string `mapstructure:"benchmarks_dir"`
	ExportsDir    string `mapstructure:"exports_dir"`
}

// LogProfile configures the logger.
type LogProfile struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads a profile. An explicit path must exist and parse; with no
// path, a horarium.{yaml,json,toml} in the working directory is used when
// present. A .env file and HORARIUM_* variables override file values, which
// override the defaults.
func Load(path string) (*Profile, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read profile %s: %w", path, err)
		}
	} else {
		v.SetConfigName("horarium")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read profile: %w", err)
			}
		}
	}

	var p Profile
	// Environment values arrive as strings and need weak typing to land in
	// the numeric fields.
	if err := v.Unmarshal(&p, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scenario", "basic")
	v.SetDefault("selection", "all")
	v.SetDefault("seed", 1)
	v.SetDefault("population", evo.DefaultPopulationSize)
	v.SetDefault("generations", evo.DefaultGenerations)
	v.SetDefault("max_depth", program.DefaultMaxDepth)
	v.SetDefault("functional_probability", program.DefaultFunctionalProbability)
	v.SetDefault("crossover_probability", evo.DefaultCrossoverProbability)
	v.SetDefault("mutation_probability", evo.DefaultMutationProbability)
	v.SetDefault("elite_count", evo.DefaultEliteCount)
	v.SetDefault("tournament_size", evo.DefaultTournamentSize)
	v.SetDefault("postprocessor", "none")
	v.SetDefault("workers", 1)
	v.SetDefault("expected_blocks", schedule.DefaultExpectedBlocks)
	v.SetDefault("idle_threshold", program.DefaultIdleThreshold)

	v.SetDefault("store.backend", storage.DefaultStoreKind())
	v.SetDefault("store.path", "horarium.db")
	v.SetDefault("output.benchmarks_dir", "benchmarks")
	v.SetDefault("output.exports_dir", "exports")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Validate applies the engine's construction rules up front so a bad
// profile fails at load time, not generations into a run.
func (p *Profile) Validate() error {
	if p.Scenario == "" && p.Catalog == "" {
		return errors.New("config: profile needs a scenario or a catalog")
	}
	if p.Population < 4 {
		return fmt.Errorf("config: population %d, need >= 4", p.Population)
	}
	if p.Generations < 1 {
		return fmt.Errorf("config: generations %d, need >= 1", p.Generations)
	}
	if p.MaxDepth < 1 {
		return fmt.Errorf("config: max depth %d, need >= 1", p.MaxDepth)
	}
	for _, prob := range []struct {
		name  string
		value float64
	}{
		{"functional_probability", p.FunctionalProbability},
		{"crossover_probability", p.CrossoverProbability},
		{"mutation_probability", p.MutationProbability},
	} {
		if prob.value < 0 || prob.value > 1 {
			return fmt.Errorf("config: %s %v outside [0,1]", prob.name, prob.value)
		}
	}
	if p.EliteCount < 0 || p.EliteCount > p.Population {
		return fmt.Errorf("config: elite count %d outside [0,%d]", p.EliteCount, p.Population)
	}
	if p.TournamentSize < 1 {
		return fmt.Errorf("config: tournament size %d, need >= 1", p.TournamentSize)
	}
	if p.Workers < 1 {
		return fmt.Errorf("config: workers %d, need >= 1", p.Workers)
	}
	if _, err := evo.PostprocessorByName(p.Postprocessor); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch p.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", p.Store.Backend)
	}
	if p.Store.Backend == "sqlite" && p.Store.Path == "" {
		return errors.New("config: sqlite backend needs store.path")
	}
	return nil
}
