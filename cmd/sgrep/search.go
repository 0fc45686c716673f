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
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/sgrep/internal/bootstrap"
	"github.com/kraklabs/sgrep/internal/contract"
	"github.com/kraklabs/sgrep/pkg/pattern"
	"github.com/kraklabs/sgrep/pkg/pipeline"
	"github.com/kraklabs/sgrep/pkg/service"
)

// patternFlags binds the fields pkg/service.PatternSpec needs to a
// flag.FlagSet, shared by every command that compiles a pattern.
type patternFlags struct {
	context    *string
	selector   *string
	strictness *string
}

func bindPatternFlags(fs *flag.FlagSet) patternFlags {
	return patternFlags{
		context:    fs.String("context", "", "Context template the pattern is embedded in (for patterns that aren't valid standalone statements)"),
		selector:   fs.String("selector", "", "Node kind selected out of --context's parse tree"),
		strictness: fs.String("strictness", "", "Match strictness: smart (default), cst, ast, relaxed, signature"),
	}
}

func (p patternFlags) spec(patternText string) (service.PatternSpec, error) {
	strictness, err := pattern.ParseStrictness(*p.strictness)
	if err != nil {
		return service.PatternSpec{}, err
	}
	return service.PatternSpec{
		Pattern:    patternText,
		Context:    *p.context,
		Selector:   *p.selector,
		Strictness: strictness,
	}, nil
}

func runSearch(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	lang := fs.String("lang", "", "Language the snippet is parsed as (required)")
	codeFile := fs.String("code-file", "-", "File to read the snippet from (\"-\" for stdin)")
	pf := bindPatternFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep search <pattern> --lang <language> [options]

Searches a single code snippet (read from --code-file or stdin) for every
non-overlapping match of <pattern>.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 || *lang == "" {
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
	matches, err := svc.Search(service.MatchRequest{Language: *lang, Source: source, PatternSpec: spec})
	if err != nil {
		fatal(err, globals)
	}
	printMatches(matches, globals)
}

// fileFlags binds the traversal/pagination fields pipeline.Options needs.
type fileFlags struct {
	glob             *string
	languageOverride *string
	embeddedLang     *string
	maxResults       *int
	contextLines     *int
}

func bindFileFlags(fs *flag.FlagSet) fileFlags {
	return fileFlags{
		glob:             fs.String("glob", "**/*", "Glob the sandboxed roots are filtered by"),
		languageOverride: fs.String("language", "", "Force every file to this language instead of detecting by extension"),
		embeddedLang:     fs.String("embedded-lang", "", "Match against this embedded language's regions instead of the host language"),
		maxResults:       fs.Int("max-results", 0, "Page size (0 uses SGREP_MAX_RESULTS/contract.DefaultMaxResults)"),
		contextLines:     fs.Int("context-lines", 0, "Lines of surrounding context to attach to each match"),
	}
}

func (f fileFlags) options(bar *progressbar.ProgressBar) pipeline.Options {
	maxResults := *f.maxResults
	if maxResults <= 0 {
		maxResults = contract.MaxResults()
	}
	return pipeline.Options{
		Glob:             *f.glob,
		LanguageOverride: *f.languageOverride,
		EmbeddedLang:     *f.embeddedLang,
		MaxResults:       maxResults,
		MaxFileSize:      contract.MaxFileSize(),
		ContextLines:     *f.contextLines,
		Progress:         fileTreeProgress(bar),
	}
}

func runFileSearch(args []string, globals GlobalFlags, ruleDir string) {
	fs := flag.NewFlagSet("file-search", flag.ExitOnError)
	pf := bindPatternFlags(fs)
	ff := bindFileFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sgrep file-search <pattern> [roots...] [options]

Searches every file under the sandboxed roots (default: the working
directory, or the project's configured roots) for every non-overlapping
match of <pattern>.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
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

	spinner := NewSpinner(NewProgressConfig(globals), "Scanning")
	result, err := svc.FileSearch(service.FileMatchRequest{
		Roots:       roots,
		PatternSpec: spec,
		Options:     ff.options(spinner),
	})
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		fatal(err, globals)
	}
	printSearchResult(result, globals)
}

// rootsFromArgs discovers the project config and resolves roots, a helper
// shared by every file-tree subcommand so each one's arg-parsing stays a
// single call.
func rootsFromArgs(args []string) ([]string, *bootstrap.ProjectConfig, error) {
	proj, err := loadProject()
	if err != nil {
		return nil, nil, err
	}
	roots, err := resolveRoots(proj, args)
	if err != nil {
		return nil, nil, err
	}
	return roots, proj, nil
}
