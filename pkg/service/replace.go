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
	"github.com/kraklabs/sgrep/pkg/pipeline"
	"github.com/kraklabs/sgrep/pkg/replace"
)

// ReplaceRequest is the input to the single-snippet `replace` operation:
// the same match inputs as Search, plus a fix template.
type ReplaceRequest struct {
	MatchRequest
	Fix string
}

// ReplaceResult carries the rewritten source plus the matches that drove
// it, so a caller can show a diff without re-running the search.
type ReplaceResult struct {
	Source  string
	Matches []*matcher.Match
}

// Replace finds every match of req.Pattern in req.Source, substitutes
// req.Fix against each match's bindings, and rewrites the buffer
// right-to-left. It never touches disk: the caller supplies and receives
// source text directly.
func (s *Service) Replace(req ReplaceRequest) (*ReplaceResult, error) {
	matches, err := s.Search(req.MatchRequest)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &ReplaceResult{Source: req.Source}, nil
	}

	edits := make([]replace.Edit, len(matches))
	for i, m := range matches {
		text, err := replace.Substitute(req.Language, req.Fix, m.Vars)
		if err != nil {
			return nil, err
		}
		edits[i] = replace.Edit{StartByte: m.StartByte, EndByte: m.EndByte, Replacement: text}
	}

	rewritten, err := replace.Rewrite([]byte(req.Source), edits)
	if err != nil {
		return nil, err
	}
	return &ReplaceResult{Source: string(rewritten), Matches: matches}, nil
}

// FileReplaceRequest is the input to FileReplace/RuleReplace's shared
// file-tree machinery: a FileMatchRequest plus the fix template and the
// dry-run flag.
type FileReplaceRequest struct {
	FileMatchRequest
	Fix    string
	DryRun bool
}

// FileReplace resolves req.Roots into a sandbox, locates matches the same
// way FileSearch does, and either rewrites matching files atomically or,
// in dry-run mode, reports what would change.
//
// pipeline.ReplaceFunc only receives the match, not the language it came
// from, so file replacement needs the per-file language pkg/pipeline
// resolved (the rest-initializer policy in pkg/langconfig is keyed by
// language name). pkg/pipeline processes one file to completion — matching
// then replacing every one of its matches — before moving to the next, so
// a matchFn/replaceFn pair may safely share a single mutable "current
// language" cell rather than threading it through the ReplaceFunc
// signature.
func (s *Service) FileReplace(req FileReplaceRequest) (*pipeline.ReplaceResult, error) {
	start := time.Now()
	sb, err := s.buildSandbox(req.Roots)
	if err != nil {
		return nil, err
	}

	var currentLang string
	opts := req.PatternSpec.compileOptions()
	matchFn := func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
		currentLang = l.Name
		p, err := s.cache.CompileCached(l, req.Pattern, opts)
		if err != nil {
			return nil, err
		}
		return matcher.FindAll(p, root, source), nil
	}
	replaceFn := func(m *matcher.Match) (string, error) {
		return replace.Substitute(currentLang, req.Fix, m.Vars)
	}

	result, err := pipeline.Replace(s.registry, sb, req.Options, matchFn, replaceFn, req.DryRun)
	if err != nil {
		return nil, err
	}
	recordFileReplaceMetrics(result, time.Since(start))
	return result, nil
}

func recordFileReplaceMetrics(result *pipeline.ReplaceResult, elapsed time.Duration) {
	metrics.RecordFilesScanned(result.FilesScanned)
	metrics.RecordFilesSkipped(len(result.Skipped))
	matched, applied := 0, 0
	for _, f := range result.Files {
		matched += f.MatchCount
		if f.Applied {
			applied++
		}
	}
	metrics.RecordMatches(matched)
	metrics.RecordReplaceApplied(applied)
	metrics.RecordSearchDuration(elapsed.Seconds())
}
