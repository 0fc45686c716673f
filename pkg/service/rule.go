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

	"github.com/kraklabs/sgrep/pkg/lang"
	"github.com/kraklabs/sgrep/pkg/matcher"
	"github.com/kraklabs/sgrep/pkg/pipeline"
	"github.com/kraklabs/sgrep/pkg/replace"
	"github.com/kraklabs/sgrep/pkg/rule"
)

// RuleRef identifies which rule a rule_search/rule_replace call evaluates:
// either an id already loaded into the catalog, or one supplied inline
// (e.g. from a CLI flag, before it has ever been saved to a file).
type RuleRef struct {
	RuleID string
	Inline *rule.RuleFile
}

func (s *Service) resolveRule(ref RuleRef) (*rule.RuleFile, error) {
	if ref.Inline != nil {
		if err := ref.Inline.Validate(); err != nil {
			return nil, err
		}
		return ref.Inline, nil
	}
	return s.catalog.Get(ref.RuleID)
}

func (s *Service) ruleMatchFunc(rf *rule.RuleFile) pipeline.MatchFunc {
	return func(l *lang.Language, root *sitter.Node, source []byte) ([]*matcher.Match, error) {
		ectx := &rule.EvalContext{Lang: l, Cache: s.cache, Catalog: s.catalog}
		return rule.Evaluate(rf.Rule, ectx, root, source)
	}
}

// RuleSearchRequest is the input to rule_search: the sandbox roots and
// glob/pagination options of FileMatchRequest, minus its pattern fields,
// plus a RuleRef.
type RuleSearchRequest struct {
	Roots []string
	RuleRef
	pipeline.Options
}

// RuleSearch resolves req.RuleRef to a RuleFile and evaluates it against
// every file req.Glob selects, the same traversal/pagination contract as
// FileSearch.
func (s *Service) RuleSearch(req RuleSearchRequest) (*pipeline.SearchResult, error) {
	start := time.Now()
	sb, err := s.buildSandbox(req.Roots)
	if err != nil {
		return nil, err
	}
	rf, err := s.resolveRule(req.RuleRef)
	if err != nil {
		return nil, err
	}
	opts := req.Options
	if opts.LanguageOverride == "" {
		opts.LanguageOverride = rf.Language
	}
	result, err := pipeline.Search(s.registry, sb, opts, s.ruleMatchFunc(rf))
	if err != nil {
		return nil, err
	}
	recordFileSearchMetrics(result, time.Since(start))
	return result, nil
}

// RuleReplaceRequest is the input to RuleReplace: a RuleSearchRequest plus
// the dry-run flag. The replacement template is the resolved rule's own
// Fix field, not a caller-supplied one.
type RuleReplaceRequest struct {
	RuleSearchRequest
	DryRun bool
}

// RuleReplace evaluates req.RuleRef the same way RuleSearch does, then
// substitutes and rewrites every match using the rule's fix template.
func (s *Service) RuleReplace(req RuleReplaceRequest) (*pipeline.ReplaceResult, error) {
	start := time.Now()
	sb, err := s.buildSandbox(req.Roots)
	if err != nil {
		return nil, err
	}
	rf, err := s.resolveRule(req.RuleRef)
	if err != nil {
		return nil, err
	}
	if rf.Fix == "" {
		return nil, &rule.ValidationError{Reason: "rule \"" + rf.ID + "\" has no fix template; it cannot be used with rule_replace"}
	}

	opts := req.Options
	if opts.LanguageOverride == "" {
		opts.LanguageOverride = rf.Language
	}
	replaceFn := func(m *matcher.Match) (string, error) {
		return replace.Substitute(rf.Language, rf.Fix, m.Vars)
	}
	result, err := pipeline.Replace(s.registry, sb, opts, s.ruleMatchFunc(rf), replaceFn, req.DryRun)
	if err != nil {
		return nil, err
	}
	recordFileReplaceMetrics(result, time.Since(start))
	return result, nil
}

// ValidateRule parses and structurally validates a rule document, without
// requiring it to already be part of the catalog: this is the check a
// caller runs on a document before saving it
// with CreateRule. Cycle detection treats rf as if it were already loaded,
// walking its `matches(id)` references into the live catalog so a
// reference to (or from) an already-loaded rule is caught the same way
// LoadDirs would catch it.
func (s *Service) ValidateRule(data []byte, path string) (*rule.RuleFile, error) {
	rf, err := rule.ParseRuleFile(data, path)
	if err != nil {
		return nil, err
	}
	if err := s.detectRuleCycle(rf); err != nil {
		return nil, err
	}
	return rf, nil
}

// matchesRefs returns the `matches(id)` references a rule tree contains,
// mirroring pkg/rule's own (unexported) walk used at catalog-load time.
func matchesRefs(r *rule.Rule) []string {
	if r == nil {
		return nil
	}
	var out []string
	if r.Kind == rule.KindMatches {
		out = append(out, r.RefID)
	}
	for _, c := range r.Children {
		out = append(out, matchesRefs(c)...)
	}
	out = append(out, matchesRefs(r.Inner)...)
	out = append(out, matchesRefs(r.Self)...)
	out = append(out, matchesRefs(r.Other)...)
	return out
}

// detectRuleCycle walks rf's `matches(id)` references, resolving any id
// other than rf's own through the live catalog, and reports a cycle if the
// walk revisits an id still on the current path. Dangling references (an
// id not in the catalog and not rf itself) are not this function's
// concern: Evaluate surfaces those as a lookup failure when it runs.
func (s *Service) detectRuleCycle(rf *rule.RuleFile) error {
	visiting := map[string]bool{}

	var visit func(id string, r *rule.Rule, chain []string) error
	visit = func(id string, r *rule.Rule, chain []string) error {
		if visiting[id] {
			return &rule.CycleError{Chain: append(append([]string{}, chain...), id)}
		}
		visiting[id] = true
		defer delete(visiting, id)

		for _, ref := range matchesRefs(r) {
			refFile := rf
			if ref != rf.ID {
				var err error
				refFile, err = s.catalog.Get(ref)
				if err != nil {
					continue
				}
			}
			if err := visit(ref, refFile.Rule, append(chain, id)); err != nil {
				return err
			}
		}
		return nil
	}

	return visit(rf.ID, rf.Rule, nil)
}
