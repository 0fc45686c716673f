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

package rule

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/sgrep/pkg/pattern"
)

var atomicKeys = map[string]bool{"pattern": true, "kind": true, "regex": true, "matches": true}
var logicalKeys = map[string]bool{"all": true, "any": true, "not": true}
var relationalKeys = map[string]Kind{
	"inside":   KindInside,
	"has":      KindHas,
	"follows":  KindFollows,
	"precedes": KindPrecedes,
}

var knownRuleKeys = func() map[string]bool {
	m := map[string]bool{}
	for k := range atomicKeys {
		m[k] = true
	}
	for k := range logicalKeys {
		m[k] = true
	}
	for k := range relationalKeys {
		m[k] = true
	}
	return m
}()

// UnmarshalYAML implements yaml.Unmarshaler, decoding one rule object
// into its tagged-union form. Unknown fields are rejected: every key must
// be a recognized atomic, logical, or relational form.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return &ValidationError{Reason: "rule object must be a mapping"}
	}

	raw := map[string]yaml.Node{}
	if err := value.Decode(&raw); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("decoding rule object: %s", err)}
	}

	var presentAtomic, presentLogical []string
	var presentRelational string
	for k := range raw {
		switch {
		case !knownRuleKeys[k]:
			return &ValidationError{Reason: fmt.Sprintf("unknown rule field %q", k)}
		case atomicKeys[k]:
			presentAtomic = append(presentAtomic, k)
		case logicalKeys[k]:
			presentLogical = append(presentLogical, k)
		case relationalKeys[k] != "":
			if presentRelational != "" {
				return &ValidationError{Reason: "at most one relational field (inside/has/follows/precedes) is permitted per rule object"}
			}
			presentRelational = k
		}
	}

	switch {
	case len(presentLogical) == 1 && len(presentAtomic) == 0 && presentRelational == "":
		return decodeLogical(r, presentLogical[0], raw)

	case presentRelational != "":
		relKind := relationalKeys[presentRelational]
		if len(presentAtomic) > 1 {
			return &ValidationError{Reason: "a relational rule's anchor must be a single atomic field"}
		}
		if len(presentAtomic) == 1 {
			self := &Rule{}
			if err := decodeAtomic(self, presentAtomic[0], raw); err != nil {
				return err
			}
			r.Self = self
		}
		other := &Rule{}
		n := raw[presentRelational]
		if err := n.Decode(other); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("decoding %s rule object: %s", presentRelational, err)}
		}
		r.Kind = relKind
		r.Other = other
		return nil

	case len(presentAtomic) == 1 && len(presentLogical) == 0:
		return decodeAtomic(r, presentAtomic[0], raw)

	default:
		return &ValidationError{Reason: "rule object must carry exactly one of pattern/kind/regex/matches, all/any/not, or a relational field"}
	}
}

func decodeAtomic(r *Rule, key string, raw map[string]yaml.Node) error {
	n := raw[key]
	switch key {
	case "pattern":
		r.Kind = KindPattern
		if n.Kind == yaml.ScalarNode {
			r.PatternText = n.Value
			return nil
		}
		var obj struct {
			Pattern    string `yaml:"pattern"`
			Context    string `yaml:"context"`
			Selector   string `yaml:"selector"`
			Strictness string `yaml:"strictness"`
		}
		if err := n.Decode(&obj); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("decoding pattern object: %s", err)}
		}
		if obj.Pattern == "" {
			return &ValidationError{Reason: "pattern object requires a non-empty \"pattern\" field"}
		}
		r.PatternText = obj.Pattern
		r.Context = obj.Context
		r.Selector = obj.Selector
		if obj.Strictness != "" {
			s, err := pattern.ParseStrictness(obj.Strictness)
			if err != nil {
				return &ValidationError{Reason: err.Error()}
			}
			r.Strictness = s
		}
		return nil

	case "kind":
		r.Kind = KindNodeKind
		if n.Kind != yaml.ScalarNode {
			return &ValidationError{Reason: "kind must be a string"}
		}
		r.NodeKind = n.Value
		return nil

	case "regex":
		r.Kind = KindRegex
		if n.Kind != yaml.ScalarNode {
			return &ValidationError{Reason: "regex must be a string"}
		}
		re, err := regexp.Compile(n.Value)
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("invalid regex %q: %s", n.Value, err)}
		}
		r.RegexSrc = n.Value
		r.regex = re
		return nil

	case "matches":
		r.Kind = KindMatches
		if n.Kind != yaml.ScalarNode {
			return &ValidationError{Reason: "matches must be a rule ID string"}
		}
		r.RefID = n.Value
		return nil
	}
	return &ValidationError{Reason: fmt.Sprintf("unreachable atomic key %q", key)}
}

func decodeLogical(r *Rule, key string, raw map[string]yaml.Node) error {
	n := raw[key]
	switch key {
	case "all", "any":
		if n.Kind != yaml.SequenceNode {
			return &ValidationError{Reason: fmt.Sprintf("%s must be a sequence of rule objects", key)}
		}
		var children []*Rule
		if err := n.Decode(&children); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("decoding %s children: %s", key, err)}
		}
		if key == "all" {
			r.Kind = KindAll
		} else {
			r.Kind = KindAny
		}
		r.Children = children
		return nil

	case "not":
		inner := &Rule{}
		if err := n.Decode(inner); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("decoding not rule: %s", err)}
		}
		r.Kind = KindNot
		r.Inner = inner
		return nil
	}
	return &ValidationError{Reason: fmt.Sprintf("unreachable logical key %q", key)}
}
