package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

type Configuration struct {
	Name       string   // Short name used for binary names, mention on command line
	Root       string   // Specific Go root to use for this trial ("go" from PATH if empty)
	PgoGen     bool     // Generate profiles for each configuration (path: temporary directory / config name / profiles)
	PgoUse     string   // Name of configuration that generated profiles (PGO disabled if empty)
	BuildFlags []string // BuildFlags supplied to 'go test -c' for building (e.g., "-p 1")
	GcFlags    string   // GcFlags supplied to 'go test -c' for building
	LdFlags    string   // LdFlags supplied to 'go test -c' for building
	GcEnv      []string // Environment variables supplied to 'go test -c' for building
	RunFlags   []string // Extra flags passed to the test binary
	RunEnv     []string // Extra environment variables passed to the test binary
	RunWrapper []string // (Outermost) Command and args to precede whatever the operation is
	Disabled   bool     // True if this configuration is temporarily disabled
}

type ConfList struct {
	Configurations []Configuration
}

type Benchmark struct {
	Name       string   // Short name for the benchmark binary
	Benchmarks string   // Benchmarks to run (regex for -test.bench= )
	Dir        string   // Path to the package holding the benchmarks
	RunFlags   []string // Extra flags passed to the test binary
	Disabled   bool     // True if this benchmark is temporarily disabled
}

type BenchList struct {
	Benchmarks []Benchmark
}

var errUnnamed = errors.New("each entry must have a name")

func loadConfigurations(path string) (ConfList, error) {
	var confList ConfList
	if _, err := toml.DecodeFile(path, &confList); err != nil {
		return confList, fmt.Errorf("decode configurations %s: %w", path, err)
	}
	for i, c := range confList.Configurations {
		if c.Name == "" {
			return confList, fmt.Errorf("configuration #%d: %w", i, errUnnamed)
		}
	}
	return confList, nil
}

func loadBenchmarks(path string) (BenchList, error) {
	var benchList BenchList
	if _, err := toml.DecodeFile(path, &benchList); err != nil {
		return benchList, fmt.Errorf("decode benchmarks %s: %w", path, err)
	}
	for i, b := range benchList.Benchmarks {
		if b.Name == "" {
			return benchList, fmt.Errorf("benchmark #%d: %w", i, errUnnamed)
		}
	}
	return benchList, nil
}

// nameSet parses a comma-separated list. It returns nil for an empty list.
func nameSet(list string) map[string]struct{} {
	if list == "" {
		return nil
	}
	names := make(map[string]struct{})
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names[name] = struct{}{}
		}
	}
	return names
}

// selectConfigurations enables exactly the named configurations when names
// is non-empty, even those disabled in the file.
func (l *ConfList) selectConfigurations(names string) {
	set := nameSet(names)
	if set == nil {
		return
	}
	for i := range l.Configurations {
		c := &l.Configurations[i]
		_, ok := set[c.Name]
		c.Disabled = !ok
	}
}

func (l *BenchList) selectBenchmarks(names string) {
	set := nameSet(names)
	if set == nil {
		return
	}
	for i := range l.Benchmarks {
		b := &l.Benchmarks[i]
		_, ok := set[b.Name]
		b.Disabled = !ok
	}
}

// applyDefaults fills in Dir and Benchmarks for enabled benchmarks.
func (l *BenchList) applyDefaults() {
	for i := range l.Benchmarks {
		b := &l.Benchmarks[i]
		if b.Disabled {
			continue
		}
		if b.Dir == "" {
			slog.Warn("Dir is not set, using current directory", "benchmark", b.Name)
			b.Dir = "."
		}
		if b.Benchmarks == "" {
			b.Benchmarks = "Benchmark"
		}
	}
}

// resolvePgo drops PgoUse when the configuration also generates profiles.
func (c *Configuration) resolvePgo() {
	if c.PgoGen && c.PgoUse != "" {
		slog.Warn("PgoGen is set, ignoring PgoUse", "configuration", c.Name, "pgo_use", c.PgoUse)
		c.PgoUse = ""
	}
}
