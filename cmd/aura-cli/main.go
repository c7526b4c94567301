package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sharanyaa30/aura-cognitive-monitor/internal/profile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
		dir := validateCmd.String("dir", "", "directory containing monitor profile YAML files")
		schema := validateCmd.String("schema", "", "path to the profile JSON schema (default: auto-detect)")
		validateCmd.Parse(os.Args[2:])

		if *dir == "" {
			fmt.Fprintln(os.Stderr, "Error: --dir flag is required")
			validateCmd.Usage()
			os.Exit(2)
		}
		os.Exit(runValidate(*dir, *schema))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: aura validate --dir <path> [--schema <file>]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Checks every profile YAML in the directory against the schema and")
	fmt.Fprintln(os.Stderr, "the cross-field consistency rules.")
}

func runValidate(dir, schemaPath string) int {
	if schemaPath == "" {
		schemaPath = findSchemaFile()
	}
	if schemaPath == "" {
		fmt.Fprintln(os.Stderr, "Error: schema not found; pass --schema or run from the repository root")
		return 1
	}

	validator, err := profile.NewValidator(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	problems := validator.ValidateDirectory(dir)
	if len(problems) == 0 {
		fmt.Printf("OK: all profiles in %s are valid\n", dir)
		return 0
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].File != problems[j].File {
			return problems[i].File < problems[j].File
		}
		return problems[i].Path < problems[j].Path
	})

	fmt.Fprintf(os.Stderr, "%d problem(s) in %s:\n", len(problems), dir)
	for _, p := range problems {
		loc := filepath.Base(p.File)
		if p.Path != "" {
			loc += " " + p.Path
		}
		fmt.Fprintf(os.Stderr, "  %s: %s\n", loc, p.Message)
	}
	return 1
}

// findSchemaFile probes upward from the working directory so the CLI works
// from the repo root and from package subdirectories.
func findSchemaFile() string {
	for _, path := range []string{
		"schemas/profile_v1.json",
		filepath.Join("..", "schemas", "profile_v1.json"),
		filepath.Join("..", "..", "schemas", "profile_v1.json"),
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
