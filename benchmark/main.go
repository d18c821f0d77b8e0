// Package main provides a performance benchmarking tool for the history cache of the mlforensics CLI.
// It runs the inspect command against every clone under a directory, first without a cache and then
// with the SQLite cache, treating the first successful cached run as cold and averaging the rest as warm,
// and writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - mlforensics binary installed and available in PATH
// - Clones to inspect, for example the clone root left behind by "mine --keep-clones"
//
// Usage: go run benchmark/main.go [clone-root]
//
//	clone-root: Directory whose subdirectories are Git clones
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string `csv:"repo"`
	Branch      string `csv:"branch"`
	NoCacheTime string `csv:"no_cache_avg"`
	ColdTime    string `csv:"cold_time"`
	WarmTime    string `csv:"warm_avg"`
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	CloneRoot   string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Branch      string
	Clones      []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [clone-root]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		CloneRoot:   os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Branch:      "master",
	}

	clones, err := findClones(config.CloneRoot)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}
	config.Clones = clones

	// Clear the cache using mlforensics cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("mlforensics", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// findClones verifies that the binary exists and lists the clones under root.
func findClones(root string) ([]string, error) {
	if _, err := exec.LookPath("mlforensics"); err != nil {
		return nil, fmt.Errorf("mlforensics binary not found in PATH")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read clone root %s: %w", root, err)
	}
	var clones []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, entry.Name(), ".git")); err == nil {
			clones = append(clones, entry.Name())
		}
	}
	if len(clones) == 0 {
		return nil, fmt.Errorf("no clones found under %s", root)
	}
	return clones, nil
}

// runBenchmarks executes the inspect benchmark for every clone.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d clones, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Clones), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, clone := range config.Clones {
		fmt.Printf("Benchmarking %s\n", clone)
		results = append(results, runBenchmarkSuite(config, clone, filepath.Join(config.CloneRoot, clone)))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one clone
func runBenchmarkSuite(config BenchmarkConfig, clone, clonePath string) BenchmarkResult {
	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, clonePath, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  clone,
		Branch:      config.Branch,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark inspects a clone multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, clonePath, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"inspect", clonePath,
		"--branch", config.Branch,
		"--cache-backend", cacheBackend,
		"--output", "json",
		"--log-file", "",
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("mlforensics", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output holds a completed evaluation
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, `"outcome"`) && strings.Contains(outputStr, `"metrics"`)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("mlforensics_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("Inspect:\n")
	for _, result := range results {
		fmt.Printf("  %-32s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
