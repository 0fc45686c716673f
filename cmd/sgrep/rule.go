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

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/sgrep/internal/output"
	"github.com/kraklabs/sgrep/pkg/rule"
	"github.com/kraklabs/sgrep/pkg/service"
)

// resolveRuleRef reads --rule-file when set (an inline rule, parsed and
// validated but not required to already be in the catalog) and otherwise
// treats the first positional argument as a catalog rule id. It returns the
// remaining positional arguments as the roots the caller should resolve.
func resolveRuleRef(fs *flag.FlagSet, ruleFile string, globals GlobalFlags) (service.RuleRef, []string) {
	if ruleFile != "" {
		data, err := os.ReadFile(ruleFile)
		if err != nil {
			fatal(err, globals)
		}
		rf, err := rule.ParseRuleFile(data, ruleFile)
		if err != nil {
			fatal(err, globals)
		}
		return service.RuleRef{Inline: rf}, fs.Args()
	}
	if fs.NArg() == 0 {
		exitUsage(fs.Usage)
	}
	return service.RuleRef{RuleID: fs.Arg(0)}, fs.Args()[1:]
}

func runRuleSearch(args []string, globals GlobalFlags, ruleDir string) {
	fs := flag.NewFlagSet("rule-search", flag.ExitOnError)
	ruleFile := fs.String("rule-file", "", "Evaluate this rule document instead of a catalog id")
	ff := bindFileFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep rule-search <rule-id> [roots...] [options]
       sgrep rule-search --rule-file <file> [roots...] [options]

Evaluates a rule (loaded from the catalog by id, or read inline from
--rule-file) against every file under the sandboxed roots.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ref, rootArgs := resolveRuleRef(fs, *ruleFile, globals)
	roots, proj, err := rootsFromArgs(rootArgs)
	if err != nil {
		fatal(err, globals)
	}

	svc, err := newService(proj, ruleDir)
	if err != nil {
		fatal(err, globals)
	}

	spinner := NewSpinner(NewProgressConfig(globals), "Evaluating")
	opts := ff.options(spinner)
	result, err := svc.RuleSearch(service.RuleSearchRequest{Roots: roots, RuleRef: ref, Options: opts})
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		fatal(err, globals)
	}
	printSearchResult(result, globals)
}

func runRuleReplace(args []string, globals GlobalFlags, ruleDir string) {
	fs := flag.NewFlagSet("rule-replace", flag.ExitOnError)
	ruleFile := fs.String("rule-file", "", "Evaluate this rule document instead of a catalog id")
	dryRun := fs.Bool("dry-run", false, "Report what would change without writing to disk")
	ff := bindFileFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep rule-replace <rule-id> [roots...] [options]
       sgrep rule-replace --rule-file <file> [roots...] [options]

Evaluates a rule the same way rule-search does, then rewrites every match
using the rule's own fix template.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ref, rootArgs := resolveRuleRef(fs, *ruleFile, globals)
	roots, proj, err := rootsFromArgs(rootArgs)
	if err != nil {
		fatal(err, globals)
	}

	svc, err := newService(proj, ruleDir)
	if err != nil {
		fatal(err, globals)
	}

	spinner := NewSpinner(NewProgressConfig(globals), "Rewriting")
	opts := ff.options(spinner)
	result, err := svc.RuleReplace(service.RuleReplaceRequest{
		RuleSearchRequest: service.RuleSearchRequest{Roots: roots, RuleRef: ref, Options: opts},
		DryRun:            *dryRun,
	})
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		fatal(err, globals)
	}
	printReplaceResult(result, globals)
}

func runValidateRule(args []string, globals GlobalFlags, ruleDir string) {
	fs := flag.NewFlagSet("validate-rule", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep validate-rule <file>

Parses and structurally validates a rule document, checking its required
fields, severity enum, and matches(id) references for cycles against the
configured rule catalog, without requiring it to already be loaded.
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		exitUsage(fs.Usage)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fatal(err, globals)
	}

	proj, err := loadProject()
	if err != nil {
		fatal(err, globals)
	}
	svc, err := newService(proj, ruleDir)
	if err != nil {
		fatal(err, globals)
	}

	rf, err := svc.ValidateRule(data, fs.Arg(0))
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		if err := output.JSON(rf); err != nil {
			fatal(err, globals)
		}
		return
	}
	fmt.Printf("%s: valid\n", rf.ID)
}
