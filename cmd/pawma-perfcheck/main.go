// Command pawma-perfcheck compares two `go test -bench` outputs and fails when
// a tracked derivation benchmark got slower than the allowed ratio.
//
//	go test -run '^$' -bench . -count 5 . > new.txt
//	pawma-perfcheck -baseline old.txt -candidate new.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

const defaultThreshold = 0.30

// tracked lists the benchmarks and units that gate a change. Derivation is
// dominated by the 1021 HMAC rounds, so only time is tracked there.
var tracked = map[string][]string{
	"BenchmarkDerive":             {"ns/op"},
	"BenchmarkEngineDerive":       {"ns/op", "allocs/op"},
	"BenchmarkMetricsIncParallel": {"ns/op", "allocs/op"},
}

// samples maps benchmark name to unit to every value seen across -count runs.
type samples map[string]map[string][]float64

type comparison struct {
	Benchmark string
	Unit      string
	Baseline  float64
	Candidate float64
	Delta     float64
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pawma-perfcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baselinePath := fs.String("baseline", "", "baseline benchmark output")
	candidatePath := fs.String("candidate", "", "candidate benchmark output")
	threshold := fs.Float64("threshold", defaultThreshold, "maximum allowed slowdown (0.30 = +30%)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *baselinePath == "" || *candidatePath == "" {
		fmt.Fprintln(stderr, "-baseline and -candidate are required")
		return 2
	}
	if *threshold < 0 {
		fmt.Fprintln(stderr, "-threshold must be >= 0")
		return 2
	}

	baseline, err := parseFile(*baselinePath)
	if err != nil {
		fmt.Fprintf(stderr, "parse baseline: %v\n", err)
		return 1
	}
	candidate, err := parseFile(*candidatePath)
	if err != nil {
		fmt.Fprintf(stderr, "parse candidate: %v\n", err)
		return 1
	}

	rows, problems := compare(baseline, candidate, *threshold)
	fmt.Fprintln(stdout, "benchmark unit baseline candidate delta")
	for _, r := range rows {
		fmt.Fprintf(stdout, "%s %s %.3f %.3f %+0.2f%%\n", r.Benchmark, r.Unit, r.Baseline, r.Candidate, r.Delta*100)
	}

	if len(problems) > 0 {
		fmt.Fprintln(stderr, "performance regression threshold exceeded:")
		for _, p := range problems {
			fmt.Fprintf(stderr, "  - %s\n", p)
		}
		return 1
	}
	return 0
}

// compare returns one row per tracked metric, in stable order, and a list of
// problems: regressions past threshold and missing samples.
func compare(baseline, candidate samples, threshold float64) ([]comparison, []string) {
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	slices.Sort(names)

	var (
		rows     []comparison
		problems []string
	)
	for _, name := range names {
		for _, unit := range tracked[name] {
			base, cand := baseline[name][unit], candidate[name][unit]
			if len(base) == 0 || len(cand) == 0 {
				problems = append(problems, fmt.Sprintf("missing samples for %s %s", name, unit))
				continue
			}

			bm, cm := median(base), median(cand)
			if bm <= 0 {
				// zero allocs stays zero: any alloc is a regression
				if cm > 0 {
					problems = append(problems, fmt.Sprintf("%s %s went from 0 to %.3f", name, unit, cm))
				}
				rows = append(rows, comparison{Benchmark: name, Unit: unit, Baseline: bm, Candidate: cm})
				continue
			}

			delta := (cm - bm) / bm
			rows = append(rows, comparison{Benchmark: name, Unit: unit, Baseline: bm, Candidate: cm, Delta: delta})
			if delta > threshold {
				problems = append(problems, fmt.Sprintf("%s %s regressed by %+0.2f%% (limit %+0.2f%%)", name, unit, delta*100, threshold*100))
			}
		}
	}
	return rows, problems
}

func parseFile(path string) (samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

// parse reads benchmark lines of the form
//
//	BenchmarkDerive-8   3000   412345 ns/op   1024 B/op   12 allocs/op
func parse(r io.Reader) (samples, error) {
	out := samples{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || !strings.HasPrefix(fields[0], "Benchmark") {
			continue
		}

		name := trimProcs(fields[0])
		if _, ok := tracked[name]; !ok {
			continue
		}
		if out[name] == nil {
			out[name] = map[string][]float64{}
		}

		for i := 2; i+1 < len(fields); i += 2 {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				continue
			}
			out[name][fields[i+1]] = append(out[name][fields[i+1]], v)
		}
	}
	return out, scanner.Err()
}

// trimProcs drops the -GOMAXPROCS suffix.
func trimProcs(raw string) string {
	if idx := strings.LastIndexByte(raw, '-'); idx > 0 {
		if _, err := strconv.Atoi(raw[idx+1:]); err == nil {
			return raw[:idx]
		}
	}
	return raw
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
