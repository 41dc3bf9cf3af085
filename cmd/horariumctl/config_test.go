package main

import (
	"testing"

	"horarium/internal/config"
)

func profileFixture() *config.Profile {
	return &config.Profile{
		Scenario:              "basic",
		Selection:             "all",
		Seed:                  21,
		Population:            40,
		Generations:           60,
		MaxDepth:              7,
		FunctionalProbability: 0.55,
		CrossoverProbability:  0.85,
		MutationProbability:   0.25,
		EliteCount:            4,
		TournamentSize:        5,
		Postprocessor:         "size_proportional",
		Workers:               3,
		ExpectedBlocks:        22,
		IdleThreshold:         2,
		Store:                 config.StoreProfile{Backend: "sqlite", Path: "profile.db"},
		Output:                config.OutputProfile{BenchmarksDir: "bench-out", ExportsDir: "export-out"},
		Log:                   config.LogProfile{Level: "debug", Development: true},
	}
}

func TestRequestFromProfile(t *testing.T) {
	req := requestFromProfile(profileFixture())

	if req.Scenario != "basic" || req.Selection != "all" {
		t.Fatalf("unexpected scenario/selection: %+v", req)
	}
	if req.Seed != 21 || req.Population != 40 || req.Generations != 60 {
		t.Fatalf("unexpected engine sizing: %+v", req)
	}
	if req.MaxDepth != 7 || req.FunctionalProbability != 0.55 {
		t.Fatalf("unexpected program settings: %+v", req)
	}
	if req.CrossoverProbability != 0.85 || req.MutationProbability != 0.25 {
		t.Fatalf("unexpected operator probabilities: %+v", req)
	}
	if req.EliteCount != 4 || req.TournamentSize != 5 {
		t.Fatalf("unexpected selection settings: %+v", req)
	}
	if req.FitnessPostprocessor != "size_proportional" {
		t.Fatalf("postprocessor not mapped: %+v", req)
	}
	if req.Workers != 3 || req.ExpectedBlocks != 22 || req.IdleThreshold != 2 {
		t.Fatalf("unexpected evaluation settings: %+v", req)
	}
}

func TestOptionsFromProfileRespectsExplicitFlags(t *testing.T) {
	p := profileFixture()
	p.Catalog = "profile-catalog.json"
	flags := runOptions{
		StoreKind:   "memory",
		DBPath:      "flag.db",
		LogLevel:    "warn",
		LogDev:      false,
		CatalogPath: "flag-catalog.json",
	}

	// Nothing pinned: profile wins everywhere.
	got := optionsFromProfile(p, flags, map[string]bool{})
	if got.StoreKind != "sqlite" || got.DBPath != "profile.db" {
		t.Fatalf("profile store not applied: %+v", got)
	}
	if got.BenchmarksDir != "bench-out" || got.ExportsDir != "export-out" {
		t.Fatalf("profile output dirs not applied: %+v", got)
	}
	if got.LogLevel != "debug" || !got.LogDev {
		t.Fatalf("profile log settings not applied: %+v", got)
	}
	if got.CatalogPath != "profile-catalog.json" {
		t.Fatalf("profile catalog not applied: %+v", got)
	}

	// Everything pinned: the flag values survive.
	set := map[string]bool{
		"store": true, "db-path": true, "log-level": true, "dev": true, "catalog": true,
	}
	got = optionsFromProfile(p, flags, set)
	if got.StoreKind != "memory" || got.DBPath != "flag.db" {
		t.Fatalf("explicit store flags clobbered: %+v", got)
	}
	if got.LogLevel != "warn" || got.LogDev {
		t.Fatalf("explicit log flags clobbered: %+v", got)
	}
	if got.CatalogPath != "flag-catalog.json" {
		t.Fatalf("explicit catalog flag clobbered: %+v", got)
	}
	// Output dirs have no flags, so the profile always decides them.
	if got.BenchmarksDir != "bench-out" || got.ExportsDir != "export-out" {
		t.Fatalf("output dirs should come from the profile: %+v", got)
	}
}

func TestOptionsFromProfileKeepsFlagCatalogWhenProfileHasNone(t *testing.T) {
	p := profileFixture()
	flags := runOptions{CatalogPath: "flag-catalog.json"}

	got := optionsFromProfile(p, flags, map[string]bool{})
	if got.CatalogPath != "flag-catalog.json" {
		t.Fatalf("empty profile catalog should not erase the flag value: %+v", got)
	}
}

func TestOverrideFromFlagsAppliesOnlySetFlags(t *testing.T) {
	req := requestFromProfile(profileFixture())

	values := map[string]any{
		"scenario":              "alt",
		"selection":             "BF",
		"seed":                  int64(99),
		"pop":                   12,
		"gens":                  5,
		"max-depth":             4,
		"functional-prob":       0.4,
		"crossover-prob":        0.7,
		"mutation-prob":         0.1,
		"elite":                 1,
		"tournament":            2,
		"fitness-postprocessor": "none",
		"workers":               8,
		"expected-blocks":       18,
		"idle-threshold":        5,
		"overload-limit":        6,
	}

	overrideFromFlags(&req, map[string]bool{"gens": true, "seed": true, "overload-limit": true}, values)

	if req.Generations != 5 || req.Seed != 99 || req.OverloadLimit != 6 {
		t.Fatalf("set flags not applied: %+v", req)
	}
	if req.Scenario != "basic" || req.Population != 40 || req.Workers != 3 {
		t.Fatalf("unset flags must not clobber profile values: %+v", req)
	}
	if req.FitnessPostprocessor != "size_proportional" {
		t.Fatalf("unset postprocessor flag clobbered profile: %+v", req)
	}

	overrideFromFlags(&req, map[string]bool{"scenario": true, "fitness-postprocessor": true}, values)
	if req.Scenario != "alt" || req.FitnessPostprocessor != "none" {
		t.Fatalf("second override pass not applied: %+v", req)
	}
	if req.Generations != 5 {
		t.Fatalf("earlier override lost: %+v", req)
	}
}

func TestOverrideFromFlagsIgnoresUnknownNames(t *testing.T) {
	req := requestFromProfile(profileFixture())
	before := req

	overrideFromFlags(&req, map[string]bool{"store": true, "db-path": true, "json": true}, map[string]any{
		"store": "memory", "db-path": "x.db",
	})

	if req != before {
		t.Fatalf("wiring flags must not touch the run request: %+v", req)
	}
}
