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

	"github.com/kraklabs/sgrep/pkg/pattern"
)

// Kind discriminates a Rule's variant. Evaluation switches on Kind alone; no
// code path infers the variant from which fields happen to be populated.
type Kind string

const (
	KindPattern  Kind = "pattern"
	KindNodeKind Kind = "kind"
	KindRegex    Kind = "regex"
	KindMatches  Kind = "matches"
	KindAll      Kind = "all"
	KindAny      Kind = "any"
	KindNot      Kind = "not"
	KindInside   Kind = "inside"
	KindHas      Kind = "has"
	KindFollows  Kind = "follows"
	KindPrecedes Kind = "precedes"
)

// Rule is one node of a rule tree. It is a sealed tagged union: exactly the
// fields relevant to Kind are meaningful.
//
//   - atomic pattern:   PatternText, Strictness, Selector, Context
//   - atomic kind:      NodeKind
//   - atomic regex:     RegexSrc (+ compiled regex)
//   - atomic matches:   RefID
//   - logical all/any:  Children
//   - logical not:      Inner
//   - relational:       Self (the anchor; nil means "every named node") and
//     Other (the related rule)
type Rule struct {
	Kind Kind

	PatternText string
	Strictness  pattern.Strictness
	Selector    string
	Context     string

	NodeKind string

	RegexSrc string
	regex    *regexp.Regexp

	RefID string

	Children []*Rule

	Inner *Rule

	Self  *Rule
	Other *Rule
}

// ValidationError reports a malformed rule document: an unknown field, an
// ambiguous or empty variant combination, or a missing required field on a
// RuleFile.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rule validation: %s", e.Reason)
}

// CycleError reports a cycle among `matches(id)` references detected at
// catalog load time.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("rule validation: cyclic matches() reference: %v", e.Chain)
}

// UnsupportedRelationalError reports a relational Kind this evaluator does
// not (yet) lower to matcher operations. The evaluator in this package
// implements all four relational forms, so this is reserved for a Kind
// value that reaches Evaluate without having come through the decoder —
// an unsupported form is reported as an error, never a silent never-match.
type UnsupportedRelationalError struct {
	Kind Kind
}

func (e *UnsupportedRelationalError) Error() string {
	return fmt.Sprintf("rule: unsupported relational form %q", e.Kind)
}
