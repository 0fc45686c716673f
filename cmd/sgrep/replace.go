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
	"github.com/kraklabs/sgrep/pkg/service"
)

func runReplace(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("replace", flag.ExitOnError)
	lang := fs.String("lang", "", "Language the snippet is parsed as (required)")
	codeFile := fs.String("code-file", "-", "File to read the snippet from (\"-\" for stdin)")
	fix := fs.String("fix", "", "Replacement template, referencing the pattern's metavariables (required)")
	pf := bindPatternFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep replace <pattern> --lang <language> --fix <template> [options]

Rewrites a single code snippet (read from --code-file or stdin), replacing
every match of <pattern> with --fix, and prints the rewritten source.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 || *lang == "" || *fix == "" {
		exitUsage(fs.Usage)
	}

	source, err := readSource(*codeFile)
	if err != nil {
		fatal(err, globals)
	}
	spec, err := pf.spec(fs.Arg(0))
	if err != nil {
		fatal(err, globals)
	}

	svc, err := service.New(service.Config{})
	if err != nil {
		fatal(err, globals)
	}
	result, err := svc.Replace(service.ReplaceRequest{
		MatchRequest: service.MatchRequest{Language: *lang, Source: source, PatternSpec: spec},
		Fix:          *fix,
	})
	if err != nil {
		fatal(err, globals)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			fatal(err, globals)
		}
		return
	}
	fmt.Print(result.Source)
}

func runFileReplace(args []string, globals GlobalFlags, ruleDir string) {
	fs := flag.NewFlagSet("file-replace", flag.ExitOnError)
	pf := bindPatternFlags(fs)
	ff := bindFileFlags(fs)
	fix := fs.String("fix", "", "Replacement template, referencing the pattern's metavariables (required)")
	dryRun := fs.Bool("dry-run", false, "Report what would change without writing to disk")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep file-replace <pattern> [roots...] --fix <template> [options]

Rewrites every file under the sandboxed roots that matches <pattern>,
substituting --fix, and writes each changed file atomically unless
--dry-run is set.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 || *fix == "" {
		exitUsage(fs.Usage)
	}

	patternText := fs.Arg(0)
	roots, proj, err := rootsFromArgs(fs.Args()[1:])
	if err != nil {
		fatal(err, globals)
	}
	spec, err := pf.spec(patternText)
	if err != nil {
		fatal(err, globals)
	}

	svc, err := newService(proj, ruleDir)
	if err != nil {
		fatal(err, globals)
	}

	spinner := NewSpinner(NewProgressConfig(globals), "Rewriting")
	result, err := svc.FileReplace(service.FileReplaceRequest{
		FileMatchRequest: service.FileMatchRequest{
			Roots:       roots,
			PatternSpec: spec,
			Options:     ff.options(spinner),
		},
		Fix:    *fix,
		DryRun: *dryRun,
	})
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		fatal(err, globals)
	}
	printReplaceResult(result, globals)
}
