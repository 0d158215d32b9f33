// voiceprintctl is the control CLI for the voiceprint subsystem.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voiceprint/internal/config"
	"voiceprint/internal/fingerprint"
	"voiceprint/pkg/voiceprint"
)

var (
	configPath = flag.String("config", "", "path to config file")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	switch cmd {
	case "analyze":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl analyze <file>")
			os.Exit(1)
		}
		cmdAnalyze(args[0])
	case "fingerprint":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl fingerprint <file> <file> <file> [file...]")
			os.Exit(1)
		}
		cmdFingerprint(args)
	case "compare":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl compare <a.json> <b.json>")
			os.Exit(1)
		}
		cmdCompare(args[0], args[1])
	case "evolve":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl evolve <old-dir> <new-dir>")
			os.Exit(1)
		}
		cmdEvolve(args[0], args[1])
	case "record":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl record <user-id> <file>")
			os.Exit(1)
		}
		cmdRecord(args[0], args[1])
	case "similar":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: voiceprintctl similar <user-id>")
			os.Exit(1)
		}
		cmdSimilar(args[0])
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `voiceprintctl - Control utility for the voiceprint subsystem

Usage: voiceprintctl [options] <command> [args]

Commands:
  analyze <file>                     Extract stylometric metrics from a text file
  fingerprint <file> <file> <file>   Build a voice fingerprint from 3+ sample files
  compare <a.json> <b.json>          Compare two saved fingerprints (0-100)
  evolve <old-dir> <new-dir>         Measure voice drift between two sample sets
  record <user-id> <file>            Fold a sample into a user's stored voice DNA
  similar <user-id>                  Find users with similar stored fingerprints
  help                               Show this help

Options:
  -config <path>   Path to config file`)
}

func newService() *voiceprint.Service {
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	svc, err := voiceprint.New(cfg)
	if err != nil {
		fatal(err)
	}
	return svc
}

func cmdAnalyze(path string) {
	svc := newService()
	defer svc.Close()

	m, err := svc.Analyze(context.Background(), readFile(path))
	if err != nil {
		fatal(err)
	}
	printJSON(m)
}

func cmdFingerprint(paths []string) {
	svc := newService()
	defer svc.Close()

	samples := make([]string, len(paths))
	for i, p := range paths {
		samples[i] = readFile(p)
	}
	traits, err := svc.CreateFingerprint(context.Background(), samples)
	if err != nil {
		fatal(err)
	}
	printJSON(traits)
}

func cmdCompare(pathA, pathB string) {
	svc := newService()
	defer svc.Close()

	a := loadTraits(pathA)
	b := loadTraits(pathB)
	score := svc.CompareVoices(a, b)
	printJSON(map[string]int{"similarity": score})
}

func cmdEvolve(oldDir, newDir string) {
	svc := newService()
	defer svc.Close()

	evolution, err := svc.DetectEvolution(context.Background(), readDir(oldDir), readDir(newDir))
	if err != nil {
		fatal(err)
	}
	printJSON(evolution)
}

func cmdRecord(userID, path string) {
	svc := newService()
	defer svc.Close()

	rec, err := svc.RecordSample(context.Background(), userID, readFile(path))
	if err != nil {
		fatal(err)
	}
	if rec == nil {
		fatal(fmt.Errorf("store unavailable; sample not recorded"))
	}
	printJSON(rec)
}

func cmdSimilar(userID string) {
	svc := newService()
	defer svc.Close()

	matches := svc.SimilarProfiles(context.Background(), userID, 0)
	printJSON(matches)
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	return string(data)
}

// readDir collects the contents of every .txt and .md file in dir, sorted
// by name for deterministic fingerprints.
func readDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fatal(err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".txt" || ext == ".md" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	samples := make([]string, len(paths))
	for i, p := range paths {
		samples[i] = readFile(p)
	}
	return samples
}

func loadTraits(path string) *fingerprint.Traits {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal(err)
	}
	var traits fingerprint.Traits
	if err := json.Unmarshal(data, &traits); err != nil {
		fatal(fmt.Errorf("parse fingerprint %s: %w", path, err))
	}
	return &traits
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
