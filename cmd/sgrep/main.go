// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the sgrep CLI: structural search, replace, and
// rule evaluation over tree-sitter ASTs.
//
// Usage:
//
//	sgrep search <pattern> --lang go              Search a single snippet
//	sgrep replace <pattern> --lang go --fix ...    Rewrite a single snippet
//	sgrep file-search <pattern> [roots...]         Search a file tree
//	sgrep file-replace <pattern> [roots...]        Rewrite a file tree
//	sgrep rule-search <rule-id> [roots...]         Evaluate a catalog rule
//	sgrep rule-replace <rule-id> [roots...]        Apply a catalog rule's fix
//	sgrep validate-rule <file>                     Check a rule document
//	sgrep ast --lang go                            Dump a parse tree
//	sgrep languages                                List registered languages
//	sgrep rule list|get|create|delete              Manage the rule catalog
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags carries the flags every subcommand inherits: output mode,
// verbosity, and color policy.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	Verbose int
	NoColor bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		jsonOutput  = flag.Bool("json", false, "Output as JSON")
		quiet       = flag.Bool("quiet", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		ruleDir     = flag.String("rule-dir", "", "Additional rule directory (beyond .sgrep/config.yaml)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `sgrep - structural search, replace, and rule evaluation

Usage:
  sgrep <command> [options] [args...]

Commands:
  search          Search a single code snippet for a pattern
  replace         Rewrite a single code snippet against a pattern and fix
  file-search     Search a file tree for a pattern
  file-replace    Rewrite a file tree against a pattern and fix
  rule-search     Evaluate a rule (by id or file) against a file tree
  rule-replace    Apply a rule's fix template across a file tree
  validate-rule   Parse and structurally validate a rule document
  ast             Dump a parse tree and its node kinds
  languages       List every registered language
  rule            Manage the rule catalog: list, get, create, delete

Global Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  sgrep search 'fmt.Println($X)' --lang go --code-file main.go
  sgrep file-search 'fmt.Println($X)' --lang go ./...
  sgrep rule-search no-console-log . --json
  sgrep rule list

Environment Variables:
  SGREP_RULE_DIR             Rule directory override (wins over .sgrep/config.yaml)
  SGREP_MAX_FILE_SIZE_BYTES  Per-file size cap before a skip diagnostic (default 4MiB)
  SGREP_MAX_RESULTS          Page size for file_search/file_replace
  SGREP_CACHE_CAPACITY       Compiled-pattern LRU capacity
  SGREP_CONCURRENCY          Worker count setting (file-tree traversal is sequential and ignores it)

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("sgrep version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		Quiet:   *quiet || *jsonOutput,
		NoColor: *noColor,
	}
	if *verbose {
		globals.Verbose = 1
	}
	initColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "search":
		runSearch(cmdArgs, globals)
	case "replace":
		runReplace(cmdArgs, globals)
	case "file-search":
		runFileSearch(cmdArgs, globals, *ruleDir)
	case "file-replace":
		runFileReplace(cmdArgs, globals, *ruleDir)
	case "rule-search":
		runRuleSearch(cmdArgs, globals, *ruleDir)
	case "rule-replace":
		runRuleReplace(cmdArgs, globals, *ruleDir)
	case "validate-rule":
		runValidateRule(cmdArgs, globals, *ruleDir)
	case "ast":
		runGenerateAST(cmdArgs, globals)
	case "languages":
		runListLanguages(cmdArgs, globals)
	case "rule":
		runRule(cmdArgs, globals, *ruleDir)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
