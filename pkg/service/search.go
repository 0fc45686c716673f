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

package service

import (
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/sgrep/internal/metrics"
	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pattern"
	"github.com/kraklabs/sgrep/pkg/pipeline"
	"github.com/kraklabs/sgrep/pkg/sandbox"
)

// PatternSpec is the pattern half shared by the search and replace
// operations, in both their single-snippet and file-tree forms.
type PatternSpec struct {
	Pattern    string
	Context    string
	Selector   string
	Strictness pattern.Strictness
}

func (p PatternSpec) compileOptions() pattern.CompileOptions {
	return pattern.CompileOptions{
		Strictness: p.Strictness,
		Selector:   p.Selector,
		Context:    p.Context,
	}
}

// MatchRequest is the input to the single-snippet Search operation: a
// source snippet, the language to parse it as, and the pattern spec to
// match against it.
type MatchRequest struct {
	Language string
	Source   string
	PatternSpec
}

// Search compiles req.Pattern for req.Language, parses req.Source, and
// returns every non-overlapping match. Unlike FileSearch, this never
// touches the sandbox: the source is supplied in-line by the caller.
func (s *Service) Search(req MatchRequest) ([]*matcher.Match, error) {
	start := time.Now()
	l, err := s.registry.LanguageForName(req.Language)
	if err != nil {
		return nil, err
	}
	p, err := s.cache.CompileCached(l, req.Pattern, req.PatternSpec.compileOptions())
	if err != nil {
		return nil, err
	}
	root, err := parseSource(l, []byte(req.Source))
	if err != nil {
		return nil, err
	}
	matches := matcher.FindAll(p, root, []byte(req.Source))
	metrics.RecordMatches(len(matches))
	metrics.RecordSearchDuration(time.Since(start).Seconds())
	return matches, nil
}

// FileMatchRequest is the input shared by FileSearch and FileReplace:
// the sandbox roots the glob may resolve within, plus the pipeline.Options
// that govern traversal, pagination, and embedded-language targeting.
type FileMatchRequest struct {
	Roots []string
	PatternSpec
	pipeline.Options
}

func (s *Service) buildSandbox(roots []string) (*sandbox.Sandbox, error) {
	return sandbox.New(roots)
}

// newPatternMatchFunc adapts a compiled pattern into a pipeline.MatchFunc.
// pkg/pipeline may invoke it against an embedded-language's *lang.Language
// rather than the file's host language, so the compile happens per call;
// the shared pattern.Cache makes repeat calls cheap.
func (s *Service) newPatternMatchFunc(spec PatternSpec) pipeline.MatchFunc {
	opts := spec.compileOptions()
	return func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
		p, err := s.cache.CompileCached(l, spec.Pattern, opts)
		if err != nil {
			return nil, err
		}
		return matcher.FindAll(p, root, source), nil
	}
}

// FileSearch resolves req.Roots into a sandbox, then runs pipeline.Search
// over req.Glob with req.Pattern as the match function.
func (s *Service) FileSearch(req FileMatchRequest) (*pipeline.SearchResult, error) {
	start := time.Now()
	sb, err := s.buildSandbox(req.Roots)
	if err != nil {
		return nil, err
	}
	result, err := pipeline.Search(s.registry, sb, req.Options, s.newPatternMatchFunc(req.PatternSpec))
	if err != nil {
		return nil, err
	}
	recordFileSearchMetrics(result, time.Since(start))
	return result, nil
}

func recordFileSearchMetrics(result *pipeline.SearchResult, elapsed time.Duration) {
	metrics.RecordFilesScanned(result.FilesScanned)
	metrics.RecordFilesSkipped(len(result.Skipped))
	total := 0
	for _, f := range result.Files {
		total += len(f.Matches)
	}
	metrics.RecordMatches(total)
	metrics.RecordSearchDuration(elapsed.Seconds())
}
