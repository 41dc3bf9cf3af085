package main

import (
	"horarium/internal/config"
	horapi "horarium/pkg/horarium"
)

// runOptions carries the client wiring a run command resolved from flags
// and, when given, a profile file.
type runOptions struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
	LogLevel      string
	LogDev        bool
	CatalogPath   string
}

func requestFromProfile(p *config.Profile) horapi.RunRequest {
	return horapi.RunRequest{
		Scenario:              p.Scenario,
		Selection:             p.Selection,
		Seed:                  p.Seed,
		Population:            p.Population,
		Generations:           p.Generations,
		MaxDepth:              p.MaxDepth,
		FunctionalProbability: p.FunctionalProbability,
		CrossoverProbability:  p.CrossoverProbability,
		MutationProbability:   p.MutationProbability,
		EliteCount:            p.EliteCount,
		TournamentSize:        p.TournamentSize,
		FitnessPostprocessor:  p.Postprocessor,
		Workers:               p.Workers,
		ExpectedBlocks:        p.ExpectedBlocks,
		IdleThreshold:         p.IdleThreshold,
	}
}

// optionsFromProfile fills the client wiring from a profile, keeping any
// value the user pinned with an explicit flag.
func optionsFromProfile(p *config.Profile, opts runOptions, set map[string]bool) runOptions {
	if !set["store"] {
		opts.StoreKind = p.Store.Backend
	}
	if !set["db-path"] {
		opts.DBPath = p.Store.Path
	}
	opts.BenchmarksDir = p.Output.BenchmarksDir
	opts.ExportsDir = p.Output.ExportsDir
	if !set["log-level"] {
		opts.LogLevel = p.Log.Level
	}
	if !set["dev"] {
		opts.LogDev = p.Log.Development
	}
	if !set["catalog"] && p.Catalog != "" {
		opts.CatalogPath = p.Catalog
	}
	return opts
}

// overrideFromFlags applies explicitly set flags over a profile-loaded
// request; flag defaults never clobber profile values.
func overrideFromFlags(req *horapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "scenario":
			req.Scenario = v.(string)
		case "selection":
			req.Selection = v.(string)
		case "seed":
			req.Seed = v.(int64)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "max-depth":
			req.MaxDepth = v.(int)
		case "functional-prob":
			req.FunctionalProbability = v.(float64)
		case "crossover-prob":
			req.CrossoverProbability = v.(float64)
		case "mutation-prob":
			req.MutationProbability = v.(float64)
		case "elite":
			req.EliteCount = v.(int)
		case "tournament":
			req.TournamentSize = v.(int)
		case "fitness-postprocessor":
			req.FitnessPostprocessor = v.(string)
		case "workers":
			req.Workers = v.(int)
		case "expected-blocks":
			req.ExpectedBlocks = v.(int)
		case "idle-threshold":
			req.IdleThreshold = v.(int)
		case "overload-limit":
			req.OverloadLimit = v.(int)
		}
	}
}
