// Package diff compares two evaluation runs: per-contract pass rates,
// their deltas, and optional gate thresholds that turn a regression into
// a non-zero exit.
package diff

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// LoadResults reads a JSONL run output file.
func LoadResults(path string) ([]model.RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results %s: %w", path, err)
	}
	defer f.Close()

	var results []model.RunRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec model.RunRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("results %s line %d: %w", path, lineno, err)
		}
		results = append(results, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results %s: %w", path, err)
	}
	return results, nil
}

// PassRates computes the pass rate per contract id over a run.
func PassRates(results []model.RunRecord) map[string]float64 {
	counts := make(map[string]int)
	passes := make(map[string]int)
	for _, rec := range results {
		for _, v := range rec.ContractResults {
			counts[v.ID]++
			if v.Passed {
				passes[v.ID]++
			}
		}
	}
	rates := make(map[string]float64, len(counts))
	for id, n := range counts {
		rates[id] = float64(passes[id]) / float64(n)
	}
	return rates
}

// Deltas computes b - a over the union of contract ids; a missing id
// contributes a rate of 0.
func Deltas(a, b map[string]float64) map[string]float64 {
	deltas := make(map[string]float64)
	for id := range a {
		deltas[id] = b[id] - a[id]
	}
	for id := range b {
		if _, done := deltas[id]; !done {
			deltas[id] = b[id]
		}
	}
	return deltas
}

// Gates maps a contract id to the maximum allowed absolute pass-rate
// delta between two runs.
type Gates map[string]float64

// LoadGates reads a YAML gate file. An empty file yields no gates.
func LoadGates(path string) (Gates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gates %s: %w", path, err)
	}
	var gates Gates
	if err := yaml.Unmarshal(data, &gates); err != nil {
		return nil, fmt.Errorf("parse gates %s: %w", path, err)
	}
	if gates == nil {
		gates = Gates{}
	}
	return gates, nil
}

// Apply checks deltas against gate thresholds. Gates with no matching
// delta are skipped. Returns whether all gates held and the deltas that
// breached them.
func (g Gates) Apply(deltas map[string]float64) (bool, map[string]float64) {
	passed := true
	failed := make(map[string]float64)
	for id, threshold := range g {
		delta, ok := deltas[id]
		if !ok {
			continue
		}
		if abs(delta) > threshold {
			passed = false
			failed[id] = delta
		}
	}
	return passed, failed
}

// Report is the outcome of comparing two runs.
type Report struct {
	RatesA  map[string]float64
	RatesB  map[string]float64
	Deltas  map[string]float64
	Gates   Gates
	Failed  map[string]float64
	GatesOK bool
}

// ContractIDs returns the union of contract ids, sorted.
func (r *Report) ContractIDs() []string {
	ids := make(map[string]struct{})
	for id := range r.RatesA {
		ids[id] = struct{}{}
	}
	for id := range r.RatesB {
		ids[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CompareRuns loads two result files and an optional gate file (empty
// path means no gates) and produces a report.
func CompareRuns(aPath, bPath, gatesPath string) (*Report, error) {
	aResults, err := LoadResults(aPath)
	if err != nil {
		return nil, err
	}
	bResults, err := LoadResults(bPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RatesA:  PassRates(aResults),
		RatesB:  PassRates(bResults),
		GatesOK: true,
	}
	report.Deltas = Deltas(report.RatesA, report.RatesB)

	if gatesPath != "" {
		gates, err := LoadGates(gatesPath)
		if err != nil {
			return nil, err
		}
		report.Gates = gates
		report.GatesOK, report.Failed = gates.Apply(report.Deltas)
	}
	return report, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
