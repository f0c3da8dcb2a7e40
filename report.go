package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/montanaflynn/stats"
)

const (
	cloneScenario = "clone_vector"
	takeScenario  = "take_vector"
)

// Result is one line of 'go test -bench' output.
type Result struct {
	Name        string // Benchmark name without the Benchmark prefix and GOMAXPROCS suffix
	Iterations  int64
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// Example: BenchmarkIntVec/clone_vector-8   30   38512345 ns/op   3484.21 MB/s   134217728 B/op   1 allocs/op
var benchLine = regexp.MustCompile(`^Benchmark(\S+?)(?:-\d+)?\s+(\d+)\s+(\d+(?:\.\d+)?)\s+ns/op(?:\s+(\d+(?:\.\d+)?)\s+MB/s)?(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`)

func parseBenchmarkOutput(output string) []Result {
	var results []Result
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := benchLine.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		r := Result{Name: m[1]}
		r.Iterations, _ = strconv.ParseInt(m[2], 10, 64)
		r.NsPerOp, _ = strconv.ParseFloat(m[3], 64)
		if m[4] != "" {
			r.MBPerSec, _ = strconv.ParseFloat(m[4], 64)
		}
		if m[5] != "" {
			r.BytesPerOp, _ = strconv.ParseInt(m[5], 10, 64)
		}
		if m[6] != "" {
			r.AllocsPerOp, _ = strconv.ParseInt(m[6], 10, 64)
		}
		results = append(results, r)
	}
	return results
}

// Summary aggregates the repeated runs of one benchmark.
type Summary struct {
	Toolchain   string  `toml:"toolchain"`
	Shortname   string  `toml:"shortname"`
	Name        string  `toml:"name"`
	Runs        int     `toml:"runs"`
	MeanNs      float64 `toml:"mean_ns"`
	MedianNs    float64 `toml:"median_ns"`
	StddevNs    float64 `toml:"stddev_ns"`
	BytesPerOp  int64   `toml:"bytes_per_op"`
	AllocsPerOp int64   `toml:"allocs_per_op"`
}

// Comparison relates the clone and take scenarios of one benchmark group.
type Comparison struct {
	Toolchain string  `toml:"toolchain"`
	Group     string  `toml:"group"`
	CloneNs   float64 `toml:"clone_ns"`
	TakeNs    float64 `toml:"take_ns"`
	Ratio     float64 `toml:"ratio"`
}

type reportKey struct {
	toolchain, shortname, name string
}

// Report collects results across configurations and repetitions.
type Report struct {
	order   []reportKey
	results map[reportKey][]Result
}

func NewReport() *Report {
	return &Report{results: make(map[reportKey][]Result)}
}

func (r *Report) Add(toolchain, shortname string, results []Result) {
	for _, res := range results {
		k := reportKey{toolchain, shortname, res.Name}
		if _, ok := r.results[k]; !ok {
			r.order = append(r.order, k)
		}
		r.results[k] = append(r.results[k], res)
	}
}

func (r *Report) Summaries() ([]Summary, error) {
	summaries := make([]Summary, 0, len(r.order))
	for _, k := range r.order {
		runs := r.results[k]
		ns := make([]float64, len(runs))
		for i, res := range runs {
			ns[i] = res.NsPerOp
		}
		mean, err := stats.Mean(ns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.name, err)
		}
		median, err := stats.Median(ns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.name, err)
		}
		stddev, err := stats.StandardDeviation(ns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.name, err)
		}
		last := runs[len(runs)-1]
		summaries = append(summaries, Summary{
			Toolchain:   k.toolchain,
			Shortname:   k.shortname,
			Name:        k.name,
			Runs:        len(runs),
			MeanNs:      mean,
			MedianNs:    median,
			StddevNs:    stddev,
			BytesPerOp:  last.BytesPerOp,
			AllocsPerOp: last.AllocsPerOp,
		})
	}
	return summaries, nil
}

// splitScenario splits "IntVec/clone_vector" into group and scenario.
func splitScenario(name string) (group, scenario string) {
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

// Compare pairs clone_vector and take_vector summaries sharing a group.
// Groups missing either scenario are skipped.
func Compare(summaries []Summary) []Comparison {
	type groupKey struct{ toolchain, group string }
	clone := make(map[groupKey]float64)
	take := make(map[groupKey]float64)
	var order []groupKey
	for _, s := range summaries {
		group, scenario := splitScenario(s.Name)
		k := groupKey{s.Toolchain, group}
		switch scenario {
		case cloneScenario:
			clone[k] = s.MeanNs
		case takeScenario:
			take[k] = s.MeanNs
		default:
			continue
		}
		if !slices.Contains(order, k) {
			order = append(order, k)
		}
	}

	var comparisons []Comparison
	for _, k := range order {
		c, okc := clone[k]
		t, okt := take[k]
		if !okc || !okt {
			continue
		}
		cmp := Comparison{Toolchain: k.toolchain, Group: k.group, CloneNs: c, TakeNs: t}
		if t > 0 {
			cmp.Ratio = c / t
		}
		comparisons = append(comparisons, cmp)
	}
	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Toolchain < comparisons[j].Toolchain
	})
	return comparisons
}

func printReport(w io.Writer, summaries []Summary, comparisons []Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "toolchain\tbenchmark\truns\tmean ns/op\tmedian ns/op\tstddev\tB/op\tallocs/op")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.1f\t%.1f\t%d\t%d\n",
			s.Toolchain, s.Name, s.Runs, s.MeanNs, s.MedianNs, s.StddevNs, s.BytesPerOp, s.AllocsPerOp)
	}
	if len(comparisons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "toolchain\tgroup\tclone ns/op\ttake ns/op\tclone/take")
		for _, c := range comparisons {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f\t%.0fx\n", c.Toolchain, c.Group, c.CloneNs, c.TakeNs, c.Ratio)
		}
	}
	return tw.Flush()
}

type summaryFile struct {
	Summaries   []Summary    `toml:"summary"`
	Comparisons []Comparison `toml:"comparison"`
}

func writeSummary(path string, summaries []Summary, comparisons []Comparison) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(summaryFile{summaries, comparisons}); err != nil {
		return fmt.Errorf("encode summary %s: %w", path, err)
	}
	return f.Close()
}
