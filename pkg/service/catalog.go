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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/sgrep/pkg/rule"
)

// ListRule returns every rule currently loaded, in catalog load order.
func (s *Service) ListRule() []*rule.RuleFile {
	return s.catalog.List()
}

// GetRule resolves one rule ID to its winning RuleFile.
func (s *Service) GetRule(id string) (*rule.RuleFile, error) {
	return s.catalog.Get(id)
}

// CreateRule persists rf as a YAML document under dir and reloads the
// catalog from every configured rule directory.
//
// Catalog is immutable once loaded: a refresh swaps a new map in
// atomically, so creating a rule is a filesystem write followed by a full
// Reload rather than a mutation method on Catalog itself — the same
// swap-in-a-new-map story a running refresh already follows, just
// triggered by this call instead of a timer or a signal.
func (s *Service) CreateRule(dir string, rf *rule.RuleFile) error {
	if err := rf.Validate(); err != nil {
		return err
	}
	if err := s.detectRuleCycle(rf); err != nil {
		return err
	}

	path := filepath.Join(dir, rf.ID+".yaml")
	if _, err := os.Stat(path); err == nil {
		return &rule.ValidationError{Reason: fmt.Sprintf("a rule file already exists at %s", path)}
	}

	data, err := marshalRuleFile(rf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	if !containsDir(s.ruleDirs, dir) {
		s.ruleDirs = append(s.ruleDirs, dir)
	}
	return s.Reload()
}

// DeleteRule removes the file backing id's winning entry and reloads the
// catalog.
func (s *Service) DeleteRule(id string) error {
	rf, err := s.catalog.Get(id)
	if err != nil {
		return err
	}
	if err := os.Remove(rf.Path); err != nil {
		return err
	}
	return s.Reload()
}

func containsDir(dirs []string, dir string) bool {
	for _, d := range dirs {
		if d == dir {
			return true
		}
	}
	return false
}

// marshalRuleFile mirrors rule.RuleFile's persisted shape for marshaling: the
// rule.RuleFile type itself has no MarshalYAML/UnmarshalYAML needed for
// writing since its fields already carry the right yaml tags, but Rule's
// UnmarshalYAML (pkg/rule/yaml.go) has no matching Marshal side, so rules
// are serialized back into the flat mapping form by hand here.
func marshalRuleFile(rf *rule.RuleFile) ([]byte, error) {
	doc := map[string]any{
		"id":       rf.ID,
		"language": rf.Language,
		"rule":     ruleToMapping(rf.Rule),
	}
	if rf.Message != "" {
		doc["message"] = rf.Message
	}
	if rf.Severity != "" {
		doc["severity"] = rf.Severity
	}
	if rf.Fix != "" {
		doc["fix"] = rf.Fix
	}
	return yaml.Marshal(doc)
}

// ruleToMapping renders a Rule tree back into the tagged-union mapping form
// pkg/rule/yaml.go's UnmarshalYAML decodes, the write side of the same
// contract.
func ruleToMapping(r *rule.Rule) map[string]any {
	if r == nil {
		return nil
	}
	switch r.Kind {
	case rule.KindPattern:
		if r.Context == "" && r.Selector == "" && r.Strictness == 0 {
			return map[string]any{"pattern": r.PatternText}
		}
		pat := map[string]any{"pattern": r.PatternText}
		if r.Context != "" {
			pat["context"] = r.Context
		}
		if r.Selector != "" {
			pat["selector"] = r.Selector
		}
		if r.Strictness != 0 {
			pat["strictness"] = r.Strictness.String()
		}
		return map[string]any{"pattern": pat}

	case rule.KindNodeKind:
		return map[string]any{"kind": r.NodeKind}

	case rule.KindRegex:
		return map[string]any{"regex": r.RegexSrc}

	case rule.KindMatches:
		return map[string]any{"matches": r.RefID}

	case rule.KindAll, rule.KindAny:
		children := make([]map[string]any, len(r.Children))
		for i, c := range r.Children {
			children[i] = ruleToMapping(c)
		}
		key := "all"
		if r.Kind == rule.KindAny {
			key = "any"
		}
		return map[string]any{key: children}

	case rule.KindNot:
		return map[string]any{"not": ruleToMapping(r.Inner)}

	case rule.KindInside, rule.KindHas, rule.KindFollows, rule.KindPrecedes:
		out := map[string]any{}
		if r.Self != nil {
			for k, v := range ruleToMapping(r.Self) {
				out[k] = v
			}
		}
		out[string(r.Kind)] = ruleToMapping(r.Other)
		return out

	default:
		return map[string]any{}
	}
}
